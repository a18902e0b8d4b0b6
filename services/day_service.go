package services

import (
	"fmt"
	"strings"

	"earthborne-tracker/apperr"
	"earthborne-tracker/metrics"
	"earthborne-tracker/models"

	"gorm.io/gorm"
)

const CodeDayNotActive = "day_not_active"

// DayClose carries where the party is heading; it is recorded on the next day.
// Blank fields keep whatever the next day already holds.
type DayClose struct {
	Location    string `json:"location"`
	PathTerrain string `json:"path_terrain"`
}

func (s *CampaignService) GetDay(campaignID, dayID string) (*models.CampaignDay, error) {
	if _, err := findCampaign(s.DB, campaignID); err != nil {
		return nil, err
	}
	return dayOfCampaign(s.DB, campaignID, dayID)
}

// CloseDay completes the active day and activates the next one. Closing the
// last day completes the campaign.
func (s *CampaignService) CloseDay(campaignID, dayID string, req DayClose) (*models.CampaignDay, error) {
	location := strings.TrimSpace(req.Location)
	pathTerrain := strings.TrimSpace(req.PathTerrain)

	var closed models.CampaignDay
	var finished bool
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		campaign, err := lockCampaign(tx, campaignID)
		if err != nil {
			return err
		}
		day, err := dayOfCampaign(tx, campaign.ID, dayID)
		if err != nil {
			return err
		}
		if day.Status != models.DayStatusActive {
			return apperr.Validation(CodeDayNotActive,
				"Day %d is not active (current status: %s)", day.DayNumber, day.Status)
		}

		if err := tx.Model(day).Update("status", models.DayStatusCompleted).Error; err != nil {
			return fmt.Errorf("complete day: %w", err)
		}
		day.Status = models.DayStatusCompleted
		closed = *day

		var next models.CampaignDay
		res := tx.Where("campaign_id = ? AND day_number = ?", campaign.ID, day.DayNumber+1).Limit(1).Find(&next)
		if res.Error != nil {
			return fmt.Errorf("load next day: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			finished = true
			return tx.Model(campaign).Update("status", models.CampaignStatusCompleted).Error
		}

		// Blank fields leave the next day's preset in place.
		updates := map[string]interface{}{"status": models.DayStatusActive}
		if location != "" {
			updates["location"] = location
		}
		if pathTerrain != "" {
			updates["path_terrain"] = pathTerrain
		}
		return tx.Model(&next).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.DaysClosed.Inc()
	if finished {
		metrics.CampaignsCompleted.Inc()
	}
	return &closed, nil
}
