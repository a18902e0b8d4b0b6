package models

type Storyline struct {
	ID         string               `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name       string               `gorm:"uniqueIndex;not null" json:"name"`
	MinRangers int                  `gorm:"not null;default:1" json:"min_rangers"`
	MaxRangers int                  `gorm:"not null;default:4" json:"max_rangers"`
	DayPresets []StorylineDayPreset `gorm:"foreignKey:StorylineID" json:"day_presets,omitempty"`
}

// StorylineDayPreset fixes the weather of each day. Only day 1 carries a
// starting location; later days get theirs when the previous day closes.
type StorylineDayPreset struct {
	ID                 string  `gorm:"primaryKey;type:varchar(36)" json:"-"`
	StorylineID        string  `gorm:"not null;index" json:"-"`
	DayNumber          int     `gorm:"not null" json:"day_number"`
	Weather            string  `gorm:"not null" json:"weather"`
	DefaultLocation    *string `json:"default_location,omitempty"`
	DefaultPathTerrain *string `json:"default_path_terrain,omitempty"`
}
