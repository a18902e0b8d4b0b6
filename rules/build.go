// Package rules is the deck-construction rules engine. It has no storage
// dependencies: callers pass a card lookup and the campaign's claimed cards.
package rules

import "earthborne-tracker/models"

// Build is a proposed ranger foundation.
type Build struct {
	PersonalityCardIDs    []string `json:"personality_card_ids"`
	BackgroundSet         string   `json:"background_set"`
	BackgroundCardIDs     []string `json:"background_card_ids"`
	SpecialtySet          string   `json:"specialty_set"`
	SpecialtyCardIDs      []string `json:"specialty_card_ids"`
	RoleCardID            string   `json:"role_card_id"`
	OutsideInterestCardID string   `json:"outside_interest_card_id"`
}

// BuildOf extracts the frozen foundation of a persisted ranger.
func BuildOf(r *models.Ranger) Build {
	return Build{
		PersonalityCardIDs:    r.PersonalityCardIDs,
		BackgroundSet:         r.BackgroundSet,
		BackgroundCardIDs:     r.BackgroundCardIDs,
		SpecialtySet:          r.SpecialtySet,
		SpecialtyCardIDs:      r.SpecialtyCardIDs,
		RoleCardID:            r.RoleCardID,
		OutsideInterestCardID: r.OutsideInterestCardID,
	}
}

// CardIDs lists every distinct card the build claims, role and outside
// interest included, in first-seen order.
func (b Build) CardIDs() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, id := range b.PersonalityCardIDs {
		add(id)
	}
	for _, id := range b.BackgroundCardIDs {
		add(id)
	}
	for _, id := range b.SpecialtyCardIDs {
		add(id)
	}
	add(b.RoleCardID)
	add(b.OutsideInterestCardID)
	return out
}

// CardLookup resolves catalog cards by id.
type CardLookup interface {
	Card(id string) (models.Card, bool)
}

// ClaimedCards is the set of card ids held in foundations across a campaign.
type ClaimedCards map[string]struct{}

func (c ClaimedCards) Has(id string) bool {
	_, ok := c[id]
	return ok
}

// Claim adds every card of b.
func (c ClaimedCards) Claim(b Build) {
	for _, id := range b.CardIDs() {
		c[id] = struct{}{}
	}
}

// ClaimedBy collects the foundation cards of rangers.
func ClaimedBy(rangers []models.Ranger) ClaimedCards {
	claimed := make(ClaimedCards)
	for i := range rangers {
		claimed.Claim(BuildOf(&rangers[i]))
	}
	return claimed
}
