package models

import "time"

type CampaignStatus string

const (
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusArchived  CampaignStatus = "archived"
)

func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignStatusActive, CampaignStatusCompleted, CampaignStatusArchived:
		return true
	}
	return false
}

type DayStatus string

const (
	DayStatusUpcoming  DayStatus = "upcoming"
	DayStatusActive    DayStatus = "active"
	DayStatusCompleted DayStatus = "completed"
)

func (s DayStatus) Valid() bool {
	switch s {
	case DayStatusUpcoming, DayStatusActive, DayStatusCompleted:
		return true
	}
	return false
}

type Campaign struct {
	ID          string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	StorylineID string         `gorm:"not null;index" json:"-"`
	OwnerID     *string        `gorm:"index" json:"owner_id,omitempty"` // external user id; nil = unowned
	Status      CampaignStatus `gorm:"not null;default:'active'" json:"status"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`

	Storyline Storyline     `gorm:"foreignKey:StorylineID" json:"storyline"`
	Days      []CampaignDay `gorm:"foreignKey:CampaignID" json:"days,omitempty"`

	CurrentDay *CampaignDay `gorm:"-" json:"current_day"`
}

// ActiveDay returns the single active day among c.Days, if any.
func (c *Campaign) ActiveDay() *CampaignDay {
	for i := range c.Days {
		if c.Days[i].Status == DayStatusActive {
			return &c.Days[i]
		}
	}
	return nil
}

// CampaignDay is one play session. Location and path terrain describe where
// the party is heading; they are recorded when the previous day closes.
type CampaignDay struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CampaignID  string    `gorm:"not null;index" json:"-"`
	DayNumber   int       `gorm:"not null" json:"day_number"`
	Weather     string    `gorm:"not null" json:"weather"`
	Status      DayStatus `gorm:"not null;default:'upcoming'" json:"status"`
	Location    *string   `json:"location"`
	PathTerrain *string   `json:"path_terrain"`
}

// CampaignReward is one pool entry. Library entries (CardID set) take part in
// trades; free-form entries (CardName only) are manual bookkeeping.
type CampaignReward struct {
	ID         string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CampaignID string  `gorm:"not null;index" json:"-"`
	CardID     *string `gorm:"index" json:"card_id,omitempty"`
	CardName   *string `json:"card_name,omitempty"`
	Quantity   int     `gorm:"not null;default:1" json:"quantity"`

	Card *Card `gorm:"foreignKey:CardID" json:"card,omitempty"`
}

// DisplayName is the library card name when linked, else the free-form name.
func (r *CampaignReward) DisplayName() string {
	if r.Card != nil {
		return r.Card.Name
	}
	if r.CardName != nil {
		return *r.CardName
	}
	return ""
}

// Mission progress runs 0..MaxProgress; MaxProgress 0 means pass/fail.
type Mission struct {
	ID             string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CampaignID     string  `gorm:"not null;index" json:"campaign_id"`
	Name           string  `gorm:"not null" json:"name"`
	DayStartedID   *string `json:"day_started_id"`
	DayCompletedID *string `json:"day_completed_id"`
	Progress       int     `gorm:"not null;default:0" json:"progress"`
	MaxProgress    int     `gorm:"not null;default:0" json:"max_progress"`
}

const MaxMissionProgress = 3

type NotableEvent struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CampaignID string    `gorm:"not null;index" json:"campaign_id"`
	DayID      string    `gorm:"not null;index" json:"day_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
