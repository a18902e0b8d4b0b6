package services

import (
	"fmt"
	"sort"
	"strings"

	"earthborne-tracker/apperr"
	"earthborne-tracker/catalog"
	"earthborne-tracker/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CodePoolEntryNotFound = "reward_not_found"
	CodePoolUnderflow     = "pool_underflow"
	maxRewardQuantity     = 999
)

// PoolService manages a campaign's rewards pool. Library entries are keyed by
// card id and move through trades; free-form entries are keyed by name.
type PoolService struct {
	DB      *gorm.DB
	Catalog *catalog.Catalog
}

func NewPoolService(db *gorm.DB, cat *catalog.Catalog) *PoolService {
	return &PoolService{DB: db, Catalog: cat}
}

// RewardAdd adds copies to the pool, either of a library card or under a
// free-form name. Exactly one of CardID and CardName must be set.
type RewardAdd struct {
	CardID   string `json:"card_id"`
	CardName string `json:"card_name"`
	Quantity int    `json:"quantity"`
}

// Adjust moves the quantity of a library card in the pool by delta, creating
// the entry on first increment and deleting it when it reaches zero. It must
// run inside the caller's transaction. Taking more copies than the pool holds
// is an invariant violation; callers check availability first.
func (s *PoolService) Adjust(tx *gorm.DB, campaignID, cardID string, delta int) error {
	if delta == 0 {
		return nil
	}

	var entry models.CampaignReward
	res := tx.Where("campaign_id = ? AND card_id = ?", campaignID, cardID).Limit(1).Find(&entry)
	if res.Error != nil {
		return fmt.Errorf("load pool entry: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		if delta < 0 {
			return apperr.Invariant(CodePoolUnderflow,
				"pool has no copies of card %s to remove (campaign %s)", cardID, campaignID)
		}
		id := cardID
		return tx.Create(&models.CampaignReward{
			ID:         uuid.NewString(),
			CampaignID: campaignID,
			CardID:     &id,
			Quantity:   delta,
		}).Error
	}

	quantity := entry.Quantity + delta
	switch {
	case quantity < 0:
		return apperr.Invariant(CodePoolUnderflow,
			"pool holds %d of card %s, cannot remove %d (campaign %s)", entry.Quantity, cardID, -delta, campaignID)
	case quantity == 0:
		return tx.Delete(&models.CampaignReward{}, "id = ?", entry.ID).Error
	default:
		return tx.Model(&models.CampaignReward{}).Where("id = ?", entry.ID).Update("quantity", quantity).Error
	}
}

// Release removes up to n copies of a library card from the pool and reports
// how many it removed. Unlike Adjust it never fails for lack of copies.
func (s *PoolService) Release(tx *gorm.DB, campaignID, cardID string, n int) (int, error) {
	held, err := s.available(tx, campaignID, cardID)
	if err != nil {
		return 0, err
	}
	take := min(held, n)
	if take <= 0 {
		return 0, nil
	}
	return take, s.Adjust(tx, campaignID, cardID, -take)
}

// available reports how many copies of a library card the pool holds.
func (s *PoolService) available(tx *gorm.DB, campaignID, cardID string) (int, error) {
	var entry models.CampaignReward
	res := tx.Where("campaign_id = ? AND card_id = ?", campaignID, cardID).Limit(1).Find(&entry)
	if res.Error != nil {
		return 0, fmt.Errorf("load pool entry: %w", res.Error)
	}
	return entry.Quantity, nil
}

// ListRewards returns the pool ordered by display name.
func (s *PoolService) ListRewards(campaignID string) ([]models.CampaignReward, error) {
	if _, err := findCampaign(s.DB, campaignID); err != nil {
		return nil, err
	}
	var entries []models.CampaignReward
	if err := s.DB.Where("campaign_id = ?", campaignID).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	s.attachCards(entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DisplayName() < entries[j].DisplayName()
	})
	return entries, nil
}

// AddReward puts copies into the pool. Library cards go through Adjust;
// free-form names merge with an existing entry of the same name.
func (s *PoolService) AddReward(campaignID string, req RewardAdd) (*models.CampaignReward, error) {
	if req.Quantity < 1 || req.Quantity > maxRewardQuantity {
		return nil, apperr.Validation("reward_quantity", "quantity must be between 1 and %d", maxRewardQuantity)
	}
	cardID := strings.TrimSpace(req.CardID)
	name := strings.TrimSpace(req.CardName)
	switch {
	case cardID != "" && name != "":
		return nil, apperr.Validation("reward_kind", "set either card_id or card_name, not both")
	case cardID == "" && name == "":
		return nil, apperr.Validation("reward_name", "card_name must not be empty")
	case len(name) > maxNameLength:
		return nil, apperr.Validation("reward_name", "card_name must be at most %d characters", maxNameLength)
	}
	if cardID != "" {
		if _, ok := s.Catalog.Card(cardID); !ok {
			return nil, apperr.NotFound("card_not_found", "Card %s not found", cardID)
		}
	}

	var entry models.CampaignReward
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := lockCampaign(tx, campaignID); err != nil {
			return err
		}
		if cardID != "" {
			if err := s.Adjust(tx, campaignID, cardID, req.Quantity); err != nil {
				return err
			}
			return tx.Where("campaign_id = ? AND card_id = ?", campaignID, cardID).First(&entry).Error
		}
		return s.addNamed(tx, campaignID, name, req.Quantity, &entry)
	})
	if err != nil {
		return nil, err
	}
	s.attachCard(&entry)
	return &entry, nil
}

func (s *PoolService) addNamed(tx *gorm.DB, campaignID, name string, quantity int, out *models.CampaignReward) error {
	res := tx.Where("campaign_id = ? AND card_name = ? AND card_id IS NULL", campaignID, name).Limit(1).Find(out)
	if res.Error != nil {
		return fmt.Errorf("load pool entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		*out = models.CampaignReward{
			ID:         uuid.NewString(),
			CampaignID: campaignID,
			CardName:   &name,
			Quantity:   quantity,
		}
		return tx.Create(out).Error
	}
	out.Quantity += quantity
	return tx.Model(&models.CampaignReward{}).Where("id = ?", out.ID).Update("quantity", out.Quantity).Error
}

// RemoveReward deletes a pool entry outright, whatever its quantity.
func (s *PoolService) RemoveReward(campaignID, entryID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := lockCampaign(tx, campaignID); err != nil {
			return err
		}
		res := tx.Where("id = ? AND campaign_id = ?", entryID, campaignID).Delete(&models.CampaignReward{})
		if res.Error != nil {
			return fmt.Errorf("delete reward: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound(CodePoolEntryNotFound, "Reward entry not found")
		}
		return nil
	})
}

func (s *PoolService) attachCards(entries []models.CampaignReward) {
	for i := range entries {
		s.attachCard(&entries[i])
	}
}

func (s *PoolService) attachCard(entry *models.CampaignReward) {
	if entry.CardID == nil {
		return
	}
	if card, ok := s.Catalog.Card(*entry.CardID); ok {
		entry.Card = &card
	}
}
