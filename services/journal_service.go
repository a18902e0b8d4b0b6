package services

import (
	"fmt"
	"strings"

	"earthborne-tracker/apperr"
	"earthborne-tracker/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CodeMissionNotFound = "mission_not_found"
	CodeMissionProgress = "mission_progress"
	CodeMissionDay      = "mission_day"
	CodeEventNotFound   = "event_not_found"
	CodeEventDay        = "event_day"
	maxEventText        = 5000
)

// JournalService keeps the campaign's missions and notable events.
type JournalService struct {
	DB *gorm.DB
}

func NewJournalService(db *gorm.DB) *JournalService {
	return &JournalService{DB: db}
}

type MissionCreate struct {
	Name         string  `json:"name"`
	MaxProgress  int     `json:"max_progress"`
	DayStartedID *string `json:"day_started_id"`
}

type MissionUpdate struct {
	Progress       *int    `json:"progress"`
	DayCompletedID *string `json:"day_completed_id"`
}

type EventCreate struct {
	DayID string `json:"day_id"`
	Text  string `json:"text"`
}

func (s *JournalService) ListMissions(campaignID string) ([]models.Mission, error) {
	if _, err := findCampaign(s.DB, campaignID); err != nil {
		return nil, err
	}
	var missions []models.Mission
	if err := s.DB.Where("campaign_id = ?", campaignID).Order("name").Find(&missions).Error; err != nil {
		return nil, fmt.Errorf("list missions: %w", err)
	}
	return missions, nil
}

// CreateMission opens a mission. Without an explicit start day it starts on
// the campaign's active day.
func (s *JournalService) CreateMission(campaignID string, req MissionCreate) (*models.Mission, error) {
	name := strings.TrimSpace(req.Name)
	if err := checkName("name", name); err != nil {
		return nil, err
	}
	if req.MaxProgress < 0 || req.MaxProgress > models.MaxMissionProgress {
		return nil, apperr.Validation(CodeMissionProgress,
			"max_progress must be between 0 and %d", models.MaxMissionProgress)
	}

	mission := models.Mission{
		ID:          uuid.NewString(),
		CampaignID:  campaignID,
		Name:        name,
		MaxProgress: req.MaxProgress,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := lockCampaign(tx, campaignID); err != nil {
			return err
		}
		if req.DayStartedID != nil {
			if _, err := dayOfCampaign(tx, campaignID, *req.DayStartedID); err != nil {
				return asDayValidation(err, CodeMissionDay, "day_started_id does not belong to this campaign")
			}
			mission.DayStartedID = req.DayStartedID
		} else {
			var active models.CampaignDay
			res := tx.Where("campaign_id = ? AND status = ?", campaignID, models.DayStatusActive).Limit(1).Find(&active)
			if res.Error != nil {
				return fmt.Errorf("load active day: %w", res.Error)
			}
			if res.RowsAffected > 0 {
				mission.DayStartedID = &active.ID
			}
		}
		return tx.Create(&mission).Error
	})
	if err != nil {
		return nil, err
	}
	return &mission, nil
}

// UpdateMission moves progress within 0..max_progress and can mark the day
// the mission was completed.
func (s *JournalService) UpdateMission(campaignID, missionID string, req MissionUpdate) (*models.Mission, error) {
	var mission models.Mission
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := lockCampaign(tx, campaignID); err != nil {
			return err
		}
		err := tx.Where("id = ? AND campaign_id = ?", missionID, campaignID).First(&mission).Error
		if err != nil {
			return notFoundOr(err, CodeMissionNotFound, "Mission not found")
		}

		updates := map[string]interface{}{}
		if req.Progress != nil {
			p := *req.Progress
			if p < 0 || p > mission.MaxProgress {
				return apperr.Validation(CodeMissionProgress,
					"progress must be between 0 and %d for this mission", mission.MaxProgress)
			}
			updates["progress"] = p
			mission.Progress = p
		}
		if req.DayCompletedID != nil {
			if _, err := dayOfCampaign(tx, campaignID, *req.DayCompletedID); err != nil {
				return asDayValidation(err, CodeMissionDay, "day_completed_id does not belong to this campaign")
			}
			updates["day_completed_id"] = *req.DayCompletedID
			mission.DayCompletedID = req.DayCompletedID
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.Mission{}).Where("id = ?", mission.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &mission, nil
}

func (s *JournalService) ListEvents(campaignID string) ([]models.NotableEvent, error) {
	if _, err := findCampaign(s.DB, campaignID); err != nil {
		return nil, err
	}
	var events []models.NotableEvent
	if err := s.DB.Where("campaign_id = ?", campaignID).Order("created_at").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *JournalService) CreateEvent(campaignID string, req EventCreate) (*models.NotableEvent, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperr.Validation("event_text", "text must not be empty")
	}
	if len(text) > maxEventText {
		return nil, apperr.Validation("event_text", "text must be at most %d characters", maxEventText)
	}

	event := models.NotableEvent{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		DayID:      req.DayID,
		Text:       text,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := lockCampaign(tx, campaignID); err != nil {
			return err
		}
		if _, err := dayOfCampaign(tx, campaignID, req.DayID); err != nil {
			return asDayValidation(err, CodeEventDay, "day_id does not belong to this campaign")
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *JournalService) DeleteEvent(campaignID, eventID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := lockCampaign(tx, campaignID); err != nil {
			return err
		}
		res := tx.Where("id = ? AND campaign_id = ?", eventID, campaignID).Delete(&models.NotableEvent{})
		if res.Error != nil {
			return fmt.Errorf("delete event: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound(CodeEventNotFound, "Event not found")
		}
		return nil
	})
}

// asDayValidation reports a foreign or unknown day reference in a request
// body as a validation failure rather than a missing resource.
func asDayValidation(err error, code, msg string) error {
	if apperr.CodeOf(err) == CodeDayNotFound {
		return apperr.Validation(code, "%s", msg)
	}
	return err
}
