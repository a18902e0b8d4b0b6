// Package catalog holds the read-only card library: the embedded reference
// data, the seeder that loads it into the database and the in-memory index
// the rules engine reads from.
package catalog

import (
	"fmt"
	"sort"

	"earthborne-tracker/models"

	"gorm.io/gorm"
)

// Catalog is an immutable index over the card library. Safe for concurrent use.
type Catalog struct {
	byID   map[string]models.Card
	byName map[string]models.Card
	sorted []models.Card
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	CardType  models.CardType
	SourceSet string
}

func New(cards []models.Card) *Catalog {
	c := &Catalog{
		byID:   make(map[string]models.Card, len(cards)),
		byName: make(map[string]models.Card, len(cards)),
		sorted: make([]models.Card, len(cards)),
	}
	copy(c.sorted, cards)
	for _, card := range cards {
		c.byID[card.ID] = card
		c.byName[card.Name] = card
	}
	sort.Slice(c.sorted, func(i, j int) bool {
		if c.sorted[i].SourceSet != c.sorted[j].SourceSet {
			return c.sorted[i].SourceSet < c.sorted[j].SourceSet
		}
		return c.sorted[i].Name < c.sorted[j].Name
	})
	return c
}

// Load builds the catalog from the cards table.
func Load(db *gorm.DB) (*Catalog, error) {
	var cards []models.Card
	if err := db.Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("load card catalog: %w", err)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("load card catalog: no cards seeded")
	}
	return New(cards), nil
}

func (c *Catalog) Card(id string) (models.Card, bool) {
	card, ok := c.byID[id]
	return card, ok
}

func (c *Catalog) ByName(name string) (models.Card, bool) {
	card, ok := c.byName[name]
	return card, ok
}

// CardsByIDs returns the cards that resolve; unknown ids are absent.
func (c *Catalog) CardsByIDs(ids []string) map[string]models.Card {
	out := make(map[string]models.Card, len(ids))
	for _, id := range ids {
		if card, ok := c.byID[id]; ok {
			out[id] = card
		}
	}
	return out
}

// Name returns the card name for id, or the id itself when unknown.
func (c *Catalog) Name(id string) string {
	if card, ok := c.byID[id]; ok {
		return card.Name
	}
	return id
}

// List returns matching cards ordered by source set, then name.
func (c *Catalog) List(f Filter) []models.Card {
	out := make([]models.Card, 0, len(c.sorted))
	for _, card := range c.sorted {
		if f.CardType != "" && card.CardType != f.CardType {
			continue
		}
		if f.SourceSet != "" && card.SourceSet != f.SourceSet {
			continue
		}
		out = append(out, card)
	}
	return out
}

func (c *Catalog) Len() int { return len(c.sorted) }
