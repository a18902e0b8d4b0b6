package rules

import (
	"sort"

	"earthborne-tracker/models"
)

// CopiesPerCard is how many physical copies of each foundation pick go into
// the starting deck.
const CopiesPerCard = 2

type DeckEntry struct {
	Card     models.Card `json:"card"`
	Quantity int         `json:"quantity"`
}

// DeckCounts derives the current deck from a foundation and its trade history.
// The role card starts in play and is never counted. Reverted trades are
// ignored; ids whose net count drops to zero or below are omitted.
func DeckCounts(b Build, trades []models.RangerTrade) map[string]int {
	counts := make(map[string]int)
	for _, id := range b.PersonalityCardIDs {
		counts[id] += CopiesPerCard
	}
	for _, id := range b.BackgroundCardIDs {
		counts[id] += CopiesPerCard
	}
	for _, id := range b.SpecialtyCardIDs {
		counts[id] += CopiesPerCard
	}
	if b.OutsideInterestCardID != "" {
		counts[b.OutsideInterestCardID] += CopiesPerCard
	}

	for _, t := range trades {
		if t.Reverted {
			continue
		}
		counts[t.OriginalCardID]--
		counts[t.RewardCardID]++
	}

	for id, n := range counts {
		if n <= 0 {
			delete(counts, id)
		}
	}
	return counts
}

// DeriveDeck resolves DeckCounts against the catalog and orders entries by
// card name, then id. Unknown ids keep a bare card carrying only the id.
func DeriveDeck(b Build, trades []models.RangerTrade, cards CardLookup) []DeckEntry {
	counts := DeckCounts(b, trades)
	deck := make([]DeckEntry, 0, len(counts))
	for id, n := range counts {
		card, ok := cards.Card(id)
		if !ok {
			card = models.Card{ID: id, Name: id}
		}
		deck = append(deck, DeckEntry{Card: card, Quantity: n})
	}
	sort.Slice(deck, func(i, j int) bool {
		if deck[i].Card.Name != deck[j].Card.Name {
			return deck[i].Card.Name < deck[j].Card.Name
		}
		return deck[i].Card.ID < deck[j].Card.ID
	})
	return deck
}

// DeckSize sums the quantities of a derived deck.
func DeckSize(deck []DeckEntry) int {
	total := 0
	for _, e := range deck {
		total += e.Quantity
	}
	return total
}
