package services

import (
	"fmt"

	"earthborne-tracker/apperr"
	"earthborne-tracker/metrics"
	"earthborne-tracker/models"
	"earthborne-tracker/rules"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	CodeTradeNotFound  = "trade_not_found"
	CodeTradeNotInDeck = "trade_original_not_in_deck"
	CodeTradeNotInPool = "trade_reward_not_in_pool"
	CodeTradeReverted  = "trade_already_reverted"
)

// TradeService records card swaps between a ranger's deck and the campaign
// pool. Trades are never deleted; reverting flips a flag and undoes the pool
// movement.
type TradeService struct {
	DB      *gorm.DB
	Rangers *RangerService
	Pool    *PoolService
	Log     *zap.Logger
}

func NewTradeService(db *gorm.DB, rangers *RangerService, pool *PoolService, log *zap.Logger) *TradeService {
	return &TradeService{DB: db, Rangers: rangers, Pool: pool, Log: log}
}

type TradeCreate struct {
	DayID          string `json:"day_id"`
	OriginalCardID string `json:"original_card_id"`
	RewardCardID   string `json:"reward_card_id"`
}

// CreateTrade swaps one copy of a deck card for one copy of a pool card. The
// reward leaves the pool and the original enters it.
func (s *TradeService) CreateTrade(campaignID, rangerID string, req TradeCreate) (*TradeView, error) {
	var trade models.RangerTrade
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		trade, err = s.createTrade(tx, campaignID, rangerID, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.TradesCreated.Inc()
	s.Log.Info("trade created",
		zap.String("campaign_id", campaignID),
		zap.String("ranger_id", rangerID),
		zap.String("trade_id", trade.ID))
	v := s.Rangers.tradeView(trade)
	return &v, nil
}

func (s *TradeService) createTrade(tx *gorm.DB, campaignID, rangerID string, req TradeCreate) (models.RangerTrade, error) {
	if _, err := lockCampaign(tx, campaignID); err != nil {
		return models.RangerTrade{}, err
	}
	ranger, err := rangerOfCampaign(tx, campaignID, rangerID)
	if err != nil {
		return models.RangerTrade{}, err
	}
	if _, err := dayOfCampaign(tx, campaignID, req.DayID); err != nil {
		return models.RangerTrade{}, err
	}

	var trades []models.RangerTrade
	if err := tx.Where("ranger_id = ?", ranger.ID).Find(&trades).Error; err != nil {
		return models.RangerTrade{}, fmt.Errorf("load trades: %w", err)
	}
	deck := rules.DeckCounts(rules.BuildOf(ranger), trades)
	if deck[req.OriginalCardID] <= 0 {
		return models.RangerTrade{}, apperr.Validation(CodeTradeNotInDeck,
			"Original card '%s' is not in the ranger's current deck", s.Rangers.Catalog.Name(req.OriginalCardID))
	}

	inPool, err := s.Pool.available(tx, campaignID, req.RewardCardID)
	if err != nil {
		return models.RangerTrade{}, err
	}
	if inPool < 1 {
		return models.RangerTrade{}, apperr.Validation(CodeTradeNotInPool,
			"Reward card '%s' is not available in the campaign rewards pool", s.Rangers.Catalog.Name(req.RewardCardID))
	}

	trade := models.RangerTrade{
		ID:             uuid.NewString(),
		RangerID:       ranger.ID,
		DayID:          req.DayID,
		OriginalCardID: req.OriginalCardID,
		RewardCardID:   req.RewardCardID,
	}
	if err := tx.Create(&trade).Error; err != nil {
		return models.RangerTrade{}, fmt.Errorf("create trade: %w", err)
	}
	if err := s.Pool.Adjust(tx, campaignID, req.RewardCardID, -1); err != nil {
		return models.RangerTrade{}, err
	}
	if err := s.Pool.Adjust(tx, campaignID, req.OriginalCardID, +1); err != nil {
		return models.RangerTrade{}, err
	}
	return trade, nil
}

// RevertTrade undoes a trade: the original returns to the deck (leaving the
// pool) and the reward returns to the pool.
func (s *TradeService) RevertTrade(campaignID, rangerID, tradeID string) (*TradeView, error) {
	var trade models.RangerTrade
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		trade, err = s.revertTrade(tx, campaignID, rangerID, tradeID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.TradesReverted.Inc()
	s.Log.Info("trade reverted",
		zap.String("campaign_id", campaignID),
		zap.String("ranger_id", rangerID),
		zap.String("trade_id", trade.ID))
	v := s.Rangers.tradeView(trade)
	return &v, nil
}

func (s *TradeService) revertTrade(tx *gorm.DB, campaignID, rangerID, tradeID string) (models.RangerTrade, error) {
	if _, err := lockCampaign(tx, campaignID); err != nil {
		return models.RangerTrade{}, err
	}
	if _, err := rangerOfCampaign(tx, campaignID, rangerID); err != nil {
		return models.RangerTrade{}, err
	}

	var trade models.RangerTrade
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND ranger_id = ?", tradeID, rangerID).
		First(&trade).Error
	if err != nil {
		return models.RangerTrade{}, notFoundOr(err, CodeTradeNotFound, "Trade not found")
	}
	if trade.Reverted {
		return models.RangerTrade{}, apperr.Conflict(CodeTradeReverted, "Trade is already reverted")
	}

	if err := tx.Model(&trade).Update("reverted", true).Error; err != nil {
		return models.RangerTrade{}, fmt.Errorf("revert trade: %w", err)
	}
	trade.Reverted = true

	// The original went into the pool. A later trade may already have taken
	// it, in which case there is nothing left to pull back.
	taken, err := s.Pool.Release(tx, campaignID, trade.OriginalCardID, 1)
	if err != nil {
		return models.RangerTrade{}, err
	}
	if taken == 0 {
		s.Log.Debug("trade original already left the pool",
			zap.String("trade_id", trade.ID), zap.String("card_id", trade.OriginalCardID))
	}
	if err := s.Pool.Adjust(tx, campaignID, trade.RewardCardID, +1); err != nil {
		return models.RangerTrade{}, err
	}
	return trade, nil
}
