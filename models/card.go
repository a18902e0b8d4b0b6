package models

// CardType is the deck-building category printed on a card.
type CardType string

const (
	CardTypePersonality CardType = "personality"
	CardTypeBackground  CardType = "background"
	CardTypeSpecialty   CardType = "specialty"
	CardTypeRole        CardType = "role"
)

// Aspects, in display order. Personality cards use their aspect as source set.
const (
	AspectAWA = "AWA"
	AspectFIT = "FIT"
	AspectFOC = "FOC"
	AspectSPI = "SPI"
)

var Aspects = []string{AspectAWA, AspectFIT, AspectFOC, AspectSPI}

var BackgroundSets = []string{"Artisan", "Forager", "Shepherd", "Traveler"}

var SpecialtySets = []string{"Artificer", "Conciliator", "Explorer", "Shaper"}

// Card is immutable reference data seeded from the catalog.
type Card struct {
	ID        string   `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string   `gorm:"uniqueIndex;not null" json:"name"`
	CardType  CardType `gorm:"not null;index" json:"card_type"`
	SourceSet string   `gorm:"not null;index" json:"source_set"` // AWA/FIT/FOC/SPI | Artisan/… | Artificer/…
	Aspect    *string  `json:"aspect"`                           // nil for role cards
	Cost      *int     `json:"cost"`                             // nil = X cost
	Tags      []string `gorm:"serializer:json;type:jsonb" json:"tags"`
	IsExpert  bool     `gorm:"default:false" json:"is_expert"`
}
