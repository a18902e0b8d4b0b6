package rules

import (
	"slices"
	"sort"
	"strings"

	"earthborne-tracker/apperr"
	"earthborne-tracker/models"
)

// Rule codes carried by validator errors.
const (
	CodePersonalityCount     = "personality_count"
	CodePersonalityUnknown   = "personality_unknown"
	CodePersonalityType      = "personality_type"
	CodePersonalityAspect    = "personality_duplicate_aspect"
	CodePersonalityCoverage  = "personality_aspects"
	CodeBackgroundSet        = "background_set"
	CodeBackgroundCount      = "background_count"
	CodeBackgroundUnknown    = "background_unknown"
	CodeBackgroundCard       = "background_card"
	CodeBackgroundDuplicate  = "background_duplicate"
	CodeSpecialtySet         = "specialty_set"
	CodeSpecialtyCount       = "specialty_count"
	CodeSpecialtyUnknown     = "specialty_unknown"
	CodeSpecialtyRole        = "specialty_role_card"
	CodeSpecialtyCard        = "specialty_card"
	CodeSpecialtyDuplicate   = "specialty_duplicate"
	CodeRoleUnknown          = "role_unknown"
	CodeRoleCard             = "role_card"
	CodeOutsideInterestTaken = "outside_interest_taken"
	CodeOutsideUnknown       = "outside_interest_unknown"
	CodeOutsideType          = "outside_interest_type"
	CodeOutsideExpert        = "outside_interest_expert"
	CodeCardClaimed          = "card_claimed"
)

const (
	personalityCount = 4
	backgroundCount  = 5
	specialtyCount   = 5
)

// ValidateBuild checks b against the deck-building rules and the cards other
// rangers of the campaign already hold. The first violated rule wins; the
// returned *apperr.Error names the rule and the offending cards.
func ValidateBuild(b Build, cards CardLookup, claimed ClaimedCards) error {
	checks := []func(Build, CardLookup) error{
		checkPersonality,
		checkBackground,
		checkSpecialty,
		checkRole,
		checkOutsideInterest,
	}
	for _, check := range checks {
		if err := check(b, cards); err != nil {
			return err
		}
	}
	return checkClaimed(b, cards, claimed)
}

func checkPersonality(b Build, cards CardLookup) error {
	if len(b.PersonalityCardIDs) != personalityCount {
		return apperr.Validation(CodePersonalityCount, "Exactly %d personality cards required", personalityCount)
	}

	seen := make(map[string]bool, personalityCount)
	for _, id := range b.PersonalityCardIDs {
		card, ok := cards.Card(id)
		if !ok {
			return apperr.Validation(CodePersonalityUnknown, "Personality card %q not found", id)
		}
		if card.CardType != models.CardTypePersonality {
			return apperr.Validation(CodePersonalityType, "'%s' is not a personality card", card.Name)
		}
		if seen[card.SourceSet] {
			return apperr.Validation(CodePersonalityAspect,
				"Duplicate aspect %s ('%s'): choose one personality card per aspect", card.SourceSet, card.Name)
		}
		seen[card.SourceSet] = true
	}

	for _, aspect := range models.Aspects {
		if !seen[aspect] {
			return apperr.Validation(CodePersonalityCoverage,
				"Must choose one personality card for each aspect: %s", strings.Join(models.Aspects, ", "))
		}
	}
	return nil
}

func checkBackground(b Build, cards CardLookup) error {
	if !slices.Contains(models.BackgroundSets, b.BackgroundSet) {
		return apperr.Validation(CodeBackgroundSet,
			"background_set must be one of %s", strings.Join(models.BackgroundSets, ", "))
	}
	if len(b.BackgroundCardIDs) != backgroundCount {
		return apperr.Validation(CodeBackgroundCount, "Exactly %d background cards required", backgroundCount)
	}
	for _, id := range b.BackgroundCardIDs {
		card, ok := cards.Card(id)
		if !ok {
			return apperr.Validation(CodeBackgroundUnknown, "Background card %q not found", id)
		}
		if card.CardType != models.CardTypeBackground || card.SourceSet != b.BackgroundSet {
			return apperr.Validation(CodeBackgroundCard, "'%s' is not a %s background card", card.Name, b.BackgroundSet)
		}
	}
	if dup, ok := firstDuplicate(b.BackgroundCardIDs); ok {
		return apperr.Validation(CodeBackgroundDuplicate,
			"Duplicate cards in background selection: '%s'", nameOf(cards, dup))
	}
	return nil
}

func checkSpecialty(b Build, cards CardLookup) error {
	if !slices.Contains(models.SpecialtySets, b.SpecialtySet) {
		return apperr.Validation(CodeSpecialtySet,
			"specialty_set must be one of %s", strings.Join(models.SpecialtySets, ", "))
	}
	if len(b.SpecialtyCardIDs) != specialtyCount {
		return apperr.Validation(CodeSpecialtyCount, "Exactly %d specialty cards required", specialtyCount)
	}
	for _, id := range b.SpecialtyCardIDs {
		card, ok := cards.Card(id)
		if !ok {
			return apperr.Validation(CodeSpecialtyUnknown, "Specialty card %q not found", id)
		}
		if card.CardType == models.CardTypeRole {
			return apperr.Validation(CodeSpecialtyRole, "'%s' is a role card and cannot be added to the deck", card.Name)
		}
		if card.CardType != models.CardTypeSpecialty || card.SourceSet != b.SpecialtySet {
			return apperr.Validation(CodeSpecialtyCard, "'%s' is not a %s specialty card", card.Name, b.SpecialtySet)
		}
	}
	if dup, ok := firstDuplicate(b.SpecialtyCardIDs); ok {
		return apperr.Validation(CodeSpecialtyDuplicate,
			"Duplicate cards in specialty selection: '%s'", nameOf(cards, dup))
	}
	return nil
}

func checkRole(b Build, cards CardLookup) error {
	card, ok := cards.Card(b.RoleCardID)
	if !ok {
		return apperr.Validation(CodeRoleUnknown, "Role card %q not found", b.RoleCardID)
	}
	if card.CardType != models.CardTypeRole || card.SourceSet != b.SpecialtySet {
		return apperr.Validation(CodeRoleCard, "'%s' is not a %s role card", card.Name, b.SpecialtySet)
	}
	return nil
}

func checkOutsideInterest(b Build, cards CardLookup) error {
	id := b.OutsideInterestCardID
	if slices.Contains(b.BackgroundCardIDs, id) || slices.Contains(b.SpecialtyCardIDs, id) {
		return apperr.Validation(CodeOutsideInterestTaken,
			"Outside interest card '%s' is already chosen as a background or specialty card", nameOf(cards, id))
	}
	card, ok := cards.Card(id)
	if !ok {
		return apperr.Validation(CodeOutsideUnknown, "Outside interest card %q not found", id)
	}
	if card.CardType != models.CardTypeBackground && card.CardType != models.CardTypeSpecialty {
		return apperr.Validation(CodeOutsideType,
			"Outside interest must be a background or specialty card, '%s' is a %s card", card.Name, card.CardType)
	}
	if card.IsExpert {
		return apperr.Validation(CodeOutsideExpert,
			"'%s' has the Expert trait and cannot be chosen as outside interest", card.Name)
	}
	return nil
}

func checkClaimed(b Build, cards CardLookup, claimed ClaimedCards) error {
	var names []string
	for _, id := range b.CardIDs() {
		if claimed.Has(id) {
			names = append(names, nameOf(cards, id))
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	return apperr.Conflict(CodeCardClaimed,
		"The following cards are already selected by another ranger in this campaign: %s", strings.Join(names, ", "))
}

func firstDuplicate(ids []string) (string, bool) {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return id, true
		}
		seen[id] = true
	}
	return "", false
}

func nameOf(cards CardLookup, id string) string {
	if card, ok := cards.Card(id); ok {
		return card.Name
	}
	return id
}
