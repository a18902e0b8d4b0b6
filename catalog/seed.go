package catalog

import (
	"fmt"

	"earthborne-tracker/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seed inserts the card library and storylines when they are missing. Safe
// to run on every boot.
func Seed(db *gorm.DB, log *zap.Logger) error {
	cards, err := LibraryCards()
	if err != nil {
		return err
	}
	storylines, err := LibraryStorylines()
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Card{}).Count(&count).Error; err != nil {
			return fmt.Errorf("count cards: %w", err)
		}
		if count == 0 {
			for i := range cards {
				cards[i].ID = uuid.NewString()
			}
			if err := tx.CreateInBatches(&cards, 50).Error; err != nil {
				return fmt.Errorf("insert cards: %w", err)
			}
			log.Info("[seed] inserted card library", zap.Int("cards", len(cards)))
		} else {
			log.Debug("[seed] cards already present, skipping", zap.Int64("cards", count))
		}

		for _, s := range storylines {
			var existing int64
			if err := tx.Model(&models.Storyline{}).Where("name = ?", s.Name).Count(&existing).Error; err != nil {
				return fmt.Errorf("lookup storyline %q: %w", s.Name, err)
			}
			if existing > 0 {
				log.Debug("[seed] storyline already present, skipping", zap.String("storyline", s.Name))
				continue
			}

			s.ID = uuid.NewString()
			presets := s.DayPresets
			s.DayPresets = nil
			if err := tx.Create(&s).Error; err != nil {
				return fmt.Errorf("insert storyline %q: %w", s.Name, err)
			}
			for i := range presets {
				presets[i].ID = uuid.NewString()
				presets[i].StorylineID = s.ID
			}
			if err := tx.Create(&presets).Error; err != nil {
				return fmt.Errorf("insert day presets for %q: %w", s.Name, err)
			}
			log.Info("[seed] inserted storyline", zap.String("storyline", s.Name), zap.Int("days", len(presets)))
		}
		return nil
	})
}
