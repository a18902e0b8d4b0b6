package services

import (
	"database/sql"
	"errors"
	"fmt"

	"earthborne-tracker/apperr"
	"earthborne-tracker/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Codes for lookups shared across services.
const (
	CodeCampaignNotFound = "campaign_not_found"
	CodeDayNotFound      = "day_not_found"
	CodeRangerNotFound   = "ranger_not_found"
	CodeStorylineMissing = "storyline_not_found"
)

// lockCampaign loads the campaign row FOR UPDATE. Every mutation of campaign
// state takes this lock first, so writers to one campaign serialize.
func lockCampaign(tx *gorm.DB, campaignID string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", campaignID).
		First(&campaign).Error
	if err != nil {
		return nil, notFoundOr(err, CodeCampaignNotFound, "Campaign not found")
	}
	return &campaign, nil
}

// snapshotTxOptions asks postgres for one consistent read view across every
// query of the transaction. Other dialects use their defaults.
func snapshotTxOptions(db *gorm.DB) []*sql.TxOptions {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return []*sql.TxOptions{{Isolation: sql.LevelRepeatableRead, ReadOnly: true}}
}

func findCampaign(db *gorm.DB, campaignID string) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := db.Where("id = ?", campaignID).First(&campaign).Error; err != nil {
		return nil, notFoundOr(err, CodeCampaignNotFound, "Campaign not found")
	}
	return &campaign, nil
}

// dayOfCampaign loads a day, treating a day of another campaign as absent.
func dayOfCampaign(db *gorm.DB, campaignID, dayID string) (*models.CampaignDay, error) {
	var day models.CampaignDay
	err := db.Where("id = ? AND campaign_id = ?", dayID, campaignID).First(&day).Error
	if err != nil {
		return nil, notFoundOr(err, CodeDayNotFound, "Day not found in this campaign")
	}
	return &day, nil
}

func rangerOfCampaign(db *gorm.DB, campaignID, rangerID string) (*models.Ranger, error) {
	var ranger models.Ranger
	err := db.Where("id = ? AND campaign_id = ?", rangerID, campaignID).First(&ranger).Error
	if err != nil {
		return nil, notFoundOr(err, CodeRangerNotFound, "Ranger not found")
	}
	return &ranger, nil
}

// notFoundOr maps gorm.ErrRecordNotFound to an apperr not-found error and
// wraps anything else as a storage failure.
func notFoundOr(err error, code, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(code, "%s", msg)
	}
	return fmt.Errorf("%s: %w", code, err)
}
