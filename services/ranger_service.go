package services

import (
	"fmt"
	"strings"

	"earthborne-tracker/apperr"
	"earthborne-tracker/catalog"
	"earthborne-tracker/metrics"
	"earthborne-tracker/models"
	"earthborne-tracker/rules"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	CodeRangerLimit = "ranger_limit"
	CodeRangerStat  = "ranger_stat"
	maxStat         = 10
)

type RangerService struct {
	DB      *gorm.DB
	Catalog *catalog.Catalog
	Log     *zap.Logger
}

func NewRangerService(db *gorm.DB, cat *catalog.Catalog, log *zap.Logger) *RangerService {
	return &RangerService{DB: db, Catalog: cat, Log: log}
}

type RangerCreate struct {
	Name           string `json:"name"`
	AspectCardName string `json:"aspect_card_name"`
	AWA            int    `json:"awa"`
	FIT            int    `json:"fit"`
	FOC            int    `json:"foc"`
	SPI            int    `json:"spi"`
	rules.Build
}

// TradeView is a trade with both cards resolved.
type TradeView struct {
	models.RangerTrade
	OriginalCard models.Card `json:"original_card"`
	RewardCard   models.Card `json:"reward_card"`
}

// RangerView is a ranger with its trades and current deck.
type RangerView struct {
	models.Ranger
	Trades          []TradeView       `json:"trades"`
	CurrentDecklist []rules.DeckEntry `json:"current_decklist"`
}

func (s *RangerService) ListRangers(campaignID string) ([]RangerView, error) {
	if _, err := findCampaign(s.DB, campaignID); err != nil {
		return nil, err
	}
	var rangers []models.Ranger
	err := s.DB.Preload("Trades", orderedTrades).
		Where("campaign_id = ?", campaignID).
		Order("created_at").
		Find(&rangers).Error
	if err != nil {
		return nil, fmt.Errorf("list rangers: %w", err)
	}
	views := make([]RangerView, 0, len(rangers))
	for i := range rangers {
		views = append(views, s.view(&rangers[i]))
	}
	return views, nil
}

func (s *RangerService) GetRanger(campaignID, rangerID string) (*RangerView, error) {
	var ranger models.Ranger
	err := s.DB.Preload("Trades", orderedTrades).
		Where("id = ? AND campaign_id = ?", rangerID, campaignID).
		First(&ranger).Error
	if err != nil {
		return nil, notFoundOr(err, CodeRangerNotFound, "Ranger not found")
	}
	v := s.view(&ranger)
	return &v, nil
}

// CreateRanger validates the build against the deck rules and the cards the
// campaign's other rangers hold, then stores the ranger. Nothing is written
// when any rule fails.
func (s *RangerService) CreateRanger(campaignID string, req RangerCreate) (*RangerView, error) {
	if err := checkRangerFields(req); err != nil {
		return nil, err
	}

	var ranger models.Ranger
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		campaign, err := lockCampaign(tx, campaignID)
		if err != nil {
			return err
		}

		var storyline models.Storyline
		if err := tx.Where("id = ?", campaign.StorylineID).First(&storyline).Error; err != nil {
			return fmt.Errorf("load storyline: %w", err)
		}
		var existing []models.Ranger
		if err := tx.Where("campaign_id = ?", campaign.ID).Find(&existing).Error; err != nil {
			return fmt.Errorf("load rangers: %w", err)
		}
		if len(existing) >= storyline.MaxRangers {
			return apperr.Validation(CodeRangerLimit,
				"Campaign already has the maximum of %d rangers", storyline.MaxRangers)
		}

		if err := rules.ValidateBuild(req.Build, s.Catalog, rules.ClaimedBy(existing)); err != nil {
			return err
		}

		ranger = newRanger(campaign.ID, req)
		return tx.Omit("Trades").Create(&ranger).Error
	})
	if err != nil {
		if code := apperr.CodeOf(err); code != "" && code != CodeCampaignNotFound {
			metrics.BuildRejections.WithLabelValues(code).Inc()
		}
		return nil, err
	}

	metrics.RangersCreated.Inc()
	s.Log.Info("ranger created",
		zap.String("campaign_id", campaignID),
		zap.String("ranger_id", ranger.ID),
		zap.String("specialty", ranger.SpecialtySet))
	v := s.view(&ranger)
	return &v, nil
}

func newRanger(campaignID string, req RangerCreate) models.Ranger {
	return models.Ranger{
		ID:                    uuid.NewString(),
		CampaignID:            campaignID,
		Name:                  strings.TrimSpace(req.Name),
		AspectCardName:        strings.TrimSpace(req.AspectCardName),
		AWA:                   req.AWA,
		FIT:                   req.FIT,
		FOC:                   req.FOC,
		SPI:                   req.SPI,
		PersonalityCardIDs:    req.PersonalityCardIDs,
		BackgroundSet:         req.BackgroundSet,
		BackgroundCardIDs:     req.BackgroundCardIDs,
		SpecialtySet:          req.SpecialtySet,
		SpecialtyCardIDs:      req.SpecialtyCardIDs,
		RoleCardID:            req.RoleCardID,
		OutsideInterestCardID: req.OutsideInterestCardID,
	}
}

func checkRangerFields(req RangerCreate) error {
	if err := checkName("name", strings.TrimSpace(req.Name)); err != nil {
		return err
	}
	if err := checkName("aspect_card_name", strings.TrimSpace(req.AspectCardName)); err != nil {
		return err
	}
	stats := []struct {
		name  string
		value int
	}{{"awa", req.AWA}, {"fit", req.FIT}, {"foc", req.FOC}, {"spi", req.SPI}}
	for _, st := range stats {
		if st.value < 0 || st.value > maxStat {
			return apperr.Validation(CodeRangerStat, "%s must be between 0 and %d", st.name, maxStat)
		}
	}
	return nil
}

func (s *RangerService) view(r *models.Ranger) RangerView {
	trades := make([]TradeView, 0, len(r.Trades))
	for _, t := range r.Trades {
		trades = append(trades, s.tradeView(t))
	}
	deck := rules.DeriveDeck(rules.BuildOf(r), r.Trades, s.Catalog)
	r.Trades = nil
	return RangerView{Ranger: *r, Trades: trades, CurrentDecklist: deck}
}

func (s *RangerService) tradeView(t models.RangerTrade) TradeView {
	return TradeView{
		RangerTrade:  t,
		OriginalCard: s.cardOrStub(t.OriginalCardID),
		RewardCard:   s.cardOrStub(t.RewardCardID),
	}
}

func (s *RangerService) cardOrStub(id string) models.Card {
	if card, ok := s.Catalog.Card(id); ok {
		return card
	}
	return models.Card{ID: id, Name: id}
}

func orderedTrades(db *gorm.DB) *gorm.DB {
	return db.Order("created_at")
}
