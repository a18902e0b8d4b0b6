package models

import "time"

// Ranger is a player character. The foundation fields are written once at
// creation; the current deck is derived from them plus the trade ledger.
type Ranger struct {
	ID             string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CampaignID     string `gorm:"not null;index" json:"campaign_id"`
	Name           string `gorm:"not null" json:"name"`
	AspectCardName string `gorm:"not null" json:"aspect_card_name"`
	AWA            int    `gorm:"column:awa;not null" json:"awa"`
	FIT            int    `gorm:"column:fit;not null" json:"fit"`
	FOC            int    `gorm:"column:foc;not null" json:"foc"`
	SPI            int    `gorm:"column:spi;not null" json:"spi"`

	// Foundation: each deck card is included twice.
	PersonalityCardIDs    []string `gorm:"serializer:json;type:jsonb;not null" json:"personality_card_ids"`
	BackgroundSet         string   `gorm:"not null" json:"background_set"`
	BackgroundCardIDs     []string `gorm:"serializer:json;type:jsonb;not null" json:"background_card_ids"`
	SpecialtySet          string   `gorm:"not null" json:"specialty_set"`
	SpecialtyCardIDs      []string `gorm:"serializer:json;type:jsonb;not null" json:"specialty_card_ids"`
	RoleCardID            string   `gorm:"not null" json:"role_card_id"` // starts in play, never in deck
	OutsideInterestCardID string   `gorm:"not null" json:"outside_interest_card_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Trades []RangerTrade `gorm:"foreignKey:RangerID" json:"trades,omitempty"`
}

// RangerTrade is an append-only ledger entry swapping one deck card for one
// pool card. Reverting flips Reverted; rows are never deleted.
type RangerTrade struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	RangerID       string    `gorm:"not null;index" json:"ranger_id"`
	DayID          string    `gorm:"not null;index" json:"day_id"`
	OriginalCardID string    `gorm:"not null" json:"original_card_id"`
	RewardCardID   string    `gorm:"not null" json:"reward_card_id"`
	Reverted       bool      `gorm:"not null;default:false" json:"reverted"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}
