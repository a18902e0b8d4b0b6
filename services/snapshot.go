package services

import (
	"time"

	"earthborne-tracker/models"

	"github.com/gosimple/slug"
)

// SnapshotVersion is the only document version Import accepts.
const SnapshotVersion = 1

// Snapshot is the portable form of a campaign. Cards and days are referenced
// by name and number so a snapshot can move between servers whose catalog
// ids differ.
type Snapshot struct {
	Version    int               `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Campaign   *SnapshotCampaign `json:"campaign"`
}

type SnapshotCampaign struct {
	Name          string                `json:"name"`
	Status        models.CampaignStatus `json:"status"`
	StorylineName string                `json:"storyline_name"`
	Days          []SnapshotDay         `json:"days"`
	Rangers       []SnapshotRanger      `json:"rangers"`
	Missions      []SnapshotMission     `json:"missions"`
	Events        []SnapshotEvent       `json:"events"`
	Rewards       []SnapshotReward      `json:"rewards"`
}

type SnapshotDay struct {
	DayNumber   int              `json:"day_number"`
	Weather     string           `json:"weather"`
	Status      models.DayStatus `json:"status"`
	Location    *string          `json:"location"`
	PathTerrain *string          `json:"path_terrain"`
}

type SnapshotRanger struct {
	Name                    string          `json:"name"`
	AspectCardName          string          `json:"aspect_card_name"`
	AWA                     int             `json:"awa"`
	FIT                     int             `json:"fit"`
	FOC                     int             `json:"foc"`
	SPI                     int             `json:"spi"`
	BackgroundSet           string          `json:"background_set"`
	SpecialtySet            string          `json:"specialty_set"`
	PersonalityCardNames    []string        `json:"personality_card_names"`
	BackgroundCardNames     []string        `json:"background_card_names"`
	SpecialtyCardNames      []string        `json:"specialty_card_names"`
	RoleCardName            string          `json:"role_card_name"`
	OutsideInterestCardName string          `json:"outside_interest_card_name"`
	Trades                  []SnapshotTrade `json:"trades"`
}

type SnapshotTrade struct {
	DayNumber        int    `json:"day_number"`
	OriginalCardName string `json:"original_card_name"`
	RewardCardName   string `json:"reward_card_name"`
	Reverted         bool   `json:"reverted"`
}

type SnapshotMission struct {
	Name               string `json:"name"`
	MaxProgress        int    `json:"max_progress"`
	Progress           int    `json:"progress"`
	DayStartedNumber   *int   `json:"day_started_number"`
	DayCompletedNumber *int   `json:"day_completed_number"`
}

type SnapshotEvent struct {
	Text      string `json:"text"`
	DayNumber int    `json:"day_number"`
}

// SnapshotReward is a pool entry. LibraryCard marks entries that refer to a
// catalog card and take part in trades.
type SnapshotReward struct {
	CardName    string `json:"card_name"`
	Quantity    int    `json:"quantity"`
	LibraryCard bool   `json:"library_card,omitempty"`
}

// SnapshotFilename names the export file after the campaign.
func SnapshotFilename(campaignName string) string {
	name := slug.Make(campaignName)
	if name == "" {
		name = "campaign"
	}
	return name + ".json"
}
