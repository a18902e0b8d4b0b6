package services

import (
	"errors"
	"fmt"
	"strings"

	"earthborne-tracker/apperr"
	"earthborne-tracker/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CodeAccessDenied         = "access_denied"
	CodeIdentityMissing      = "identity_missing"
	CodeCollaboratorExists   = "collaborator_exists"
	CodeCollaboratorNotFound = "collaborator_not_found"
)

// AccessService decides who may change a campaign. Identities are external
// user ids asserted by the gateway.
type AccessService struct {
	DB *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{DB: db}
}

// RequireWrite allows unowned campaigns, the owner and collaborators.
func (s *AccessService) RequireWrite(campaignID, userID string) error {
	campaign, err := findCampaign(s.DB, campaignID)
	if err != nil {
		return err
	}
	if campaign.OwnerID == nil {
		return nil
	}
	if userID == "" {
		return apperr.Forbidden(CodeIdentityMissing, "Missing user identity")
	}
	if *campaign.OwnerID == userID {
		return nil
	}

	var collab models.CampaignCollaborator
	res := s.DB.Where("campaign_id = ? AND external_user_id = ?", campaignID, userID).Limit(1).Find(&collab)
	if res.Error != nil {
		return fmt.Errorf("load collaborator: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Forbidden(CodeAccessDenied, "Access denied")
	}
	return nil
}

// RequireOwner allows only the campaign owner.
func (s *AccessService) RequireOwner(campaignID, userID string) error {
	campaign, err := findCampaign(s.DB, campaignID)
	if err != nil {
		return err
	}
	if userID == "" {
		return apperr.Forbidden(CodeIdentityMissing, "Missing user identity")
	}
	if campaign.OwnerID == nil || *campaign.OwnerID != userID {
		return apperr.Forbidden(CodeAccessDenied, "Access denied")
	}
	return nil
}

func (s *AccessService) ListCollaborators(campaignID string) ([]models.CampaignCollaborator, error) {
	var collabs []models.CampaignCollaborator
	if err := s.DB.Where("campaign_id = ?", campaignID).Order("added_at").Find(&collabs).Error; err != nil {
		return nil, fmt.Errorf("list collaborators: %w", err)
	}
	return collabs, nil
}

func (s *AccessService) AddCollaborator(campaignID, userID string) (*models.CampaignCollaborator, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.Validation("collaborator_user", "user_id must not be empty")
	}

	collab := models.CampaignCollaborator{
		ID:             uuid.NewString(),
		CampaignID:     campaignID,
		ExternalUserID: userID,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		campaign, err := lockCampaign(tx, campaignID)
		if err != nil {
			return err
		}
		if campaign.OwnerID != nil && *campaign.OwnerID == userID {
			return apperr.Conflict(CodeCollaboratorExists, "User already owns this campaign")
		}
		var count int64
		if err := tx.Model(&models.CampaignCollaborator{}).
			Where("campaign_id = ? AND external_user_id = ?", campaignID, userID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("count collaborators: %w", err)
		}
		if count > 0 {
			return apperr.Conflict(CodeCollaboratorExists, "User is already a collaborator")
		}
		if err := tx.Create(&collab).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict(CodeCollaboratorExists, "User is already a collaborator")
			}
			return fmt.Errorf("add collaborator: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &collab, nil
}

func (s *AccessService) RemoveCollaborator(campaignID, userID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := lockCampaign(tx, campaignID); err != nil {
			return err
		}
		res := tx.Where("campaign_id = ? AND external_user_id = ?", campaignID, userID).
			Delete(&models.CampaignCollaborator{})
		if res.Error != nil {
			return fmt.Errorf("remove collaborator: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound(CodeCollaboratorNotFound, "Collaborator not found")
		}
		return nil
	})
}
