package models

import "time"

// CampaignCollaborator grants write access to a campaign for a user
// authenticated upstream by the gateway.
type CampaignCollaborator struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"-"`
	CampaignID     string    `gorm:"not null;uniqueIndex:idx_campaign_collaborator" json:"campaign_id"`
	ExternalUserID string    `gorm:"not null;uniqueIndex:idx_campaign_collaborator" json:"user_id"`
	AddedAt        time.Time `gorm:"autoCreateTime" json:"added_at"`
}

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&Card{},
		&Storyline{},
		&StorylineDayPreset{},
		&Campaign{},
		&CampaignDay{},
		&CampaignReward{},
		&Mission{},
		&NotableEvent{},
		&Ranger{},
		&RangerTrade{},
		&CampaignCollaborator{},
	}
}
