package services

import (
	"fmt"
	"strings"

	"earthborne-tracker/apperr"
	"earthborne-tracker/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxNameLength = 200

type CampaignService struct {
	DB *gorm.DB
}

func NewCampaignService(db *gorm.DB) *CampaignService {
	return &CampaignService{DB: db}
}

type CampaignUpdate struct {
	Name   *string                `json:"name"`
	Status *models.CampaignStatus `json:"status"`
}

func orderedDays(db *gorm.DB) *gorm.DB {
	return db.Order("day_number")
}

// ListStorylines returns every storyline with its day presets.
func (s *CampaignService) ListStorylines() ([]models.Storyline, error) {
	var storylines []models.Storyline
	err := s.DB.Preload("DayPresets", orderedDays).Order("name").Find(&storylines).Error
	if err != nil {
		return nil, fmt.Errorf("list storylines: %w", err)
	}
	return storylines, nil
}

// CreateCampaign starts a campaign on a storyline: one day per preset, day 1
// active and the rest upcoming.
func (s *CampaignService) CreateCampaign(name, storylineID string, ownerID *string) (*models.Campaign, error) {
	name = strings.TrimSpace(name)
	if err := checkName("name", name); err != nil {
		return nil, err
	}

	campaignID := uuid.NewString()
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var storyline models.Storyline
		if err := tx.Where("id = ?", storylineID).First(&storyline).Error; err != nil {
			return notFoundOr(err, CodeStorylineMissing, "Storyline not found")
		}

		var presets []models.StorylineDayPreset
		if err := tx.Where("storyline_id = ?", storyline.ID).Order("day_number").Find(&presets).Error; err != nil {
			return fmt.Errorf("load day presets: %w", err)
		}
		if len(presets) == 0 {
			return apperr.Validation("storyline_no_presets", "Storyline has no day presets configured")
		}

		campaign := models.Campaign{
			ID:          campaignID,
			Name:        name,
			StorylineID: storyline.ID,
			OwnerID:     ownerID,
			Status:      models.CampaignStatusActive,
		}
		if err := tx.Omit("Storyline", "Days").Create(&campaign).Error; err != nil {
			return fmt.Errorf("create campaign: %w", err)
		}

		days := make([]models.CampaignDay, 0, len(presets))
		for i, p := range presets {
			status := models.DayStatusUpcoming
			if i == 0 {
				status = models.DayStatusActive
			}
			days = append(days, models.CampaignDay{
				ID:          uuid.NewString(),
				CampaignID:  campaignID,
				DayNumber:   p.DayNumber,
				Weather:     p.Weather,
				Status:      status,
				Location:    p.DefaultLocation,
				PathTerrain: p.DefaultPathTerrain,
			})
		}
		if err := tx.Create(&days).Error; err != nil {
			return fmt.Errorf("create campaign days: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCampaign(campaignID)
}

// ListCampaigns returns all campaigns, newest first, each with its active day.
func (s *CampaignService) ListCampaigns() ([]models.Campaign, error) {
	var campaigns []models.Campaign
	err := s.DB.
		Preload("Storyline").
		Preload("Days", "status = ?", models.DayStatusActive).
		Order("created_at DESC").
		Find(&campaigns).Error
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	for i := range campaigns {
		campaigns[i].CurrentDay = campaigns[i].ActiveDay()
		campaigns[i].Days = nil
	}
	return campaigns, nil
}

// ActiveCampaignIDs lists campaigns still in play.
func (s *CampaignService) ActiveCampaignIDs() ([]string, error) {
	var ids []string
	err := s.DB.Model(&models.Campaign{}).
		Where("status = ?", models.CampaignStatusActive).
		Order("created_at").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list active campaigns: %w", err)
	}
	return ids, nil
}

// GetCampaign loads a campaign with its storyline and ordered days.
func (s *CampaignService) GetCampaign(id string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := s.DB.
		Preload("Storyline").
		Preload("Days", orderedDays).
		Where("id = ?", id).
		First(&campaign).Error
	if err != nil {
		return nil, notFoundOr(err, CodeCampaignNotFound, "Campaign not found")
	}
	campaign.CurrentDay = campaign.ActiveDay()
	return &campaign, nil
}

func (s *CampaignService) UpdateCampaign(id string, upd CampaignUpdate) (*models.Campaign, error) {
	updates := map[string]interface{}{}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if err := checkName("name", name); err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return nil, apperr.Validation("campaign_status", "status must be 'active', 'completed', or 'archived'")
		}
		updates["status"] = *upd.Status
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		campaign, err := lockCampaign(tx, id)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.Campaign{}).Where("id = ?", campaign.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetCampaign(id)
}

// DeleteCampaign removes a campaign and everything it owns.
func (s *CampaignService) DeleteCampaign(id string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := lockCampaign(tx, id); err != nil {
			return err
		}

		rangerIDs := tx.Model(&models.Ranger{}).Select("id").Where("campaign_id = ?", id)
		if err := tx.Where("ranger_id IN (?)", rangerIDs).Delete(&models.RangerTrade{}).Error; err != nil {
			return fmt.Errorf("delete trades: %w", err)
		}
		owned := []any{
			&models.Ranger{},
			&models.Mission{},
			&models.NotableEvent{},
			&models.CampaignReward{},
			&models.CampaignCollaborator{},
			&models.CampaignDay{},
		}
		for _, model := range owned {
			if err := tx.Where("campaign_id = ?", id).Delete(model).Error; err != nil {
				return fmt.Errorf("delete %T: %w", model, err)
			}
		}
		return tx.Where("id = ?", id).Delete(&models.Campaign{}).Error
	})
}

func checkName(field, name string) error {
	if name == "" {
		return apperr.Validation(field+"_empty", "%s must not be empty", field)
	}
	if len(name) > maxNameLength {
		return apperr.Validation(field+"_too_long", "%s must be at most %d characters", field, maxNameLength)
	}
	return nil
}
