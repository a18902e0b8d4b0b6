package rules_test

import (
	"errors"
	"testing"

	"earthborne-tracker/apperr"
	"earthborne-tracker/catalog"
	"earthborne-tracker/models"
	"earthborne-tracker/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// library keys every card by its name so builds read naturally.
func library(t *testing.T) *catalog.Catalog {
	t.Helper()
	cards, err := catalog.LibraryCards()
	require.NoError(t, err)
	for i := range cards {
		cards[i].ID = cards[i].Name
	}
	return catalog.New(cards)
}

func artificerBuild() rules.Build {
	return rules.Build{
		PersonalityCardIDs: []string{"Insightful", "Passionate", "Meticulous", "Persuasive"},
		BackgroundSet:      "Artisan",
		BackgroundCardIDs: []string{
			"Universal Power Cells", "Functional Replica", "The Right Tool",
			"Pocketed Belt Pouch", "The Mother of Invention",
		},
		SpecialtySet: "Artificer",
		SpecialtyCardIDs: []string{
			"Ferinodex", "Carbonforged Cable", "Dayhowler", "Trail Markers", "Spiderpad Gloves",
		},
		RoleCardID:            "Masterful Engineer",
		OutsideInterestCardID: "Familiar Ground",
	}
}

func explorerBuild() rules.Build {
	return rules.Build{
		PersonalityCardIDs: []string{"Vigilant", "Balanced", "Versatile", "Thoughtful"},
		BackgroundSet:      "Traveler",
		BackgroundCardIDs: []string{
			"Eagle Eye", "Strider", "Trail Mix", "Perfect Recall", "Ironwool Boots",
		},
		SpecialtySet: "Explorer",
		SpecialtyCardIDs: []string{
			"A Leaf in the Breeze", "Hydrolens Goggles", "Boundary Sensor", "Field Journal", "Hidden Trail",
		},
		RoleCardID:            "Undaunted Seeker",
		OutsideInterestCardID: "Secret Garden",
	}
}

func TestValidateBuild_AcceptsValidBuilds(t *testing.T) {
	lib := library(t)
	assert.NoError(t, rules.ValidateBuild(artificerBuild(), lib, nil))
	assert.NoError(t, rules.ValidateBuild(explorerBuild(), lib, rules.ClaimedCards{}))
}

func TestValidateBuild_Rejections(t *testing.T) {
	lib := library(t)

	tests := []struct {
		name   string
		mutate func(b *rules.Build)
		code   string
		msg    string
	}{
		{
			name:   "three personality cards",
			mutate: func(b *rules.Build) { b.PersonalityCardIDs = b.PersonalityCardIDs[:3] },
			code:   rules.CodePersonalityCount,
			msg:    "Exactly 4 personality cards required",
		},
		{
			name:   "unknown personality card",
			mutate: func(b *rules.Build) { b.PersonalityCardIDs[0] = "Grumpy" },
			code:   rules.CodePersonalityUnknown,
			msg:    `Personality card "Grumpy" not found`,
		},
		{
			name:   "background card in personality slot",
			mutate: func(b *rules.Build) { b.PersonalityCardIDs[3] = "Favorite Gear" },
			code:   rules.CodePersonalityType,
			msg:    "'Favorite Gear' is not a personality card",
		},
		{
			name:   "two AWA and no FIT",
			mutate: func(b *rules.Build) { b.PersonalityCardIDs[1] = "Vigilant" },
			code:   rules.CodePersonalityAspect,
			msg:    "Duplicate aspect AWA ('Vigilant'): choose one personality card per aspect",
		},
		{
			name:   "unknown background set",
			mutate: func(b *rules.Build) { b.BackgroundSet = "Sailor" },
			code:   rules.CodeBackgroundSet,
		},
		{
			name:   "four background cards",
			mutate: func(b *rules.Build) { b.BackgroundCardIDs = b.BackgroundCardIDs[:4] },
			code:   rules.CodeBackgroundCount,
		},
		{
			name:   "background from another set",
			mutate: func(b *rules.Build) { b.BackgroundCardIDs[4] = "Secret Garden" },
			code:   rules.CodeBackgroundCard,
			msg:    "'Secret Garden' is not a Artisan background card",
		},
		{
			name:   "duplicate background card",
			mutate: func(b *rules.Build) { b.BackgroundCardIDs[4] = "The Right Tool" },
			code:   rules.CodeBackgroundDuplicate,
		},
		{
			name:   "unknown specialty set",
			mutate: func(b *rules.Build) { b.SpecialtySet = "Sorcerer" },
			code:   rules.CodeSpecialtySet,
		},
		{
			name:   "role card among specialties",
			mutate: func(b *rules.Build) { b.SpecialtyCardIDs[0] = "Exceptional Tinkerer" },
			code:   rules.CodeSpecialtyRole,
			msg:    "'Exceptional Tinkerer' is a role card and cannot be added to the deck",
		},
		{
			name:   "specialty from another set",
			mutate: func(b *rules.Build) { b.SpecialtyCardIDs[0] = "Root Snare" },
			code:   rules.CodeSpecialtyCard,
		},
		{
			name:   "duplicate specialty card",
			mutate: func(b *rules.Build) { b.SpecialtyCardIDs[1] = "Ferinodex" },
			code:   rules.CodeSpecialtyDuplicate,
		},
		{
			name:   "role from another specialty",
			mutate: func(b *rules.Build) { b.RoleCardID = "Guardian" },
			code:   rules.CodeRoleCard,
			msg:    "'Guardian' is not a Artificer role card",
		},
		{
			name:   "unknown role",
			mutate: func(b *rules.Build) { b.RoleCardID = "" },
			code:   rules.CodeRoleUnknown,
		},
		{
			name:   "outside interest already picked",
			mutate: func(b *rules.Build) { b.OutsideInterestCardID = "Dayhowler" },
			code:   rules.CodeOutsideInterestTaken,
		},
		{
			name:   "outside interest is a personality card",
			mutate: func(b *rules.Build) { b.OutsideInterestCardID = "Bold" },
			code:   rules.CodeOutsideType,
		},
		{
			name:   "expert outside interest",
			mutate: func(b *rules.Build) { b.OutsideInterestCardID = "Green Thumb" },
			code:   rules.CodeOutsideExpert,
			msg:    "'Green Thumb' has the Expert trait and cannot be chosen as outside interest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := artificerBuild()
			tt.mutate(&b)

			err := rules.ValidateBuild(b, lib, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidation), "want validation error, got %v", err)
			assert.Equal(t, tt.code, apperr.CodeOf(err))
			if tt.msg != "" {
				assert.Equal(t, tt.msg, err.Error())
			}
		})
	}
}

func TestValidateBuild_ExpertRejectedFromEitherPool(t *testing.T) {
	lib := library(t)
	for _, card := range lib.List(catalog.Filter{}) {
		if !card.IsExpert {
			continue
		}
		b := artificerBuild()
		b.OutsideInterestCardID = card.ID
		err := rules.ValidateBuild(b, lib, nil)
		require.Error(t, err, card.Name)
		assert.Equal(t, rules.CodeOutsideExpert, apperr.CodeOf(err), card.Name)
	}
}

func TestValidateBuild_FirstFailureWins(t *testing.T) {
	lib := library(t)
	b := artificerBuild()
	b.PersonalityCardIDs = nil
	b.BackgroundSet = "nope"
	b.OutsideInterestCardID = "Green Thumb"

	assert.Equal(t, rules.CodePersonalityCount, apperr.CodeOf(rules.ValidateBuild(b, lib, nil)))
}

func TestValidateBuild_CampaignUniqueness(t *testing.T) {
	lib := library(t)

	first := artificerBuild()
	claimed := rules.ClaimedCards{}
	claimed.Claim(first)

	// A disjoint build is accepted alongside the first.
	require.NoError(t, rules.ValidateBuild(explorerBuild(), lib, claimed))

	second := explorerBuild()
	second.PersonalityCardIDs[0] = "Insightful"
	second.OutsideInterestCardID = "Familiar Ground"

	err := rules.ValidateBuild(second, lib, claimed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
	assert.Equal(t, rules.CodeCardClaimed, apperr.CodeOf(err))
	assert.Equal(t,
		"The following cards are already selected by another ranger in this campaign: Familiar Ground, Insightful",
		err.Error())
}

func TestValidateBuild_RoleCountsTowardUniqueness(t *testing.T) {
	lib := library(t)
	claimed := rules.ClaimedCards{}
	claimed.Claim(artificerBuild())

	b := explorerBuild()
	b.SpecialtySet = "Artificer"
	b.SpecialtyCardIDs = []string{"Wrist-mounted Darter", "Infusion Canteen", "Memorill Sketchpad", "Memlev Trekking Poles", "Camoweave Cloak"}
	b.RoleCardID = "Masterful Engineer"

	err := rules.ValidateBuild(b, lib, claimed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Masterful Engineer")
}

func TestClaimedBy(t *testing.T) {
	a, e := artificerBuild(), explorerBuild()
	rangers := []models.Ranger{
		{PersonalityCardIDs: a.PersonalityCardIDs, BackgroundCardIDs: a.BackgroundCardIDs, SpecialtyCardIDs: a.SpecialtyCardIDs, RoleCardID: a.RoleCardID, OutsideInterestCardID: a.OutsideInterestCardID},
		{PersonalityCardIDs: e.PersonalityCardIDs, BackgroundCardIDs: e.BackgroundCardIDs, SpecialtyCardIDs: e.SpecialtyCardIDs, RoleCardID: e.RoleCardID, OutsideInterestCardID: e.OutsideInterestCardID},
	}

	claimed := rules.ClaimedBy(rangers)
	assert.Len(t, claimed, 32)
	assert.True(t, claimed.Has("Masterful Engineer"))
	assert.True(t, claimed.Has("Secret Garden"))
	assert.False(t, claimed.Has("Wrist-mounted Darter"))
}
