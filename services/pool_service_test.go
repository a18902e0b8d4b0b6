package services

import (
	"errors"
	"testing"

	"earthborne-tracker/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddReward_FreeFormMergesByName(t *testing.T) {
	f := newFixture(t)
	c := f.newCampaign(t, nil)

	first, err := f.pool.AddReward(c.ID, RewardAdd{CardName: "  Biscuit Delivery ", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, "Biscuit Delivery", *first.CardName)
	assert.Nil(t, first.CardID)

	merged, err := f.pool.AddReward(c.ID, RewardAdd{CardName: "Biscuit Delivery", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, 3, merged.Quantity)
}

func TestAddReward_LibraryCardStacks(t *testing.T) {
	f := newFixture(t)
	c := f.newCampaign(t, nil)

	f.addToPool(t, c.ID, "Wrist-mounted Darter", 1)
	entry, err := f.pool.AddReward(c.ID, RewardAdd{CardID: f.cardID(t, "Wrist-mounted Darter"), Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, entry.Quantity)
	require.NotNil(t, entry.Card)
	assert.Equal(t, "Wrist-mounted Darter", entry.Card.Name)

	// A free-form entry sharing the card's name stays separate.
	_, err = f.pool.AddReward(c.ID, RewardAdd{CardName: "Wrist-mounted Darter", Quantity: 1})
	require.NoError(t, err)
	assert.Len(t, f.poolState(t, c.ID), 2)
}

func TestAddReward_Rejections(t *testing.T) {
	f := newFixture(t)
	c := f.newCampaign(t, nil)

	tests := []struct {
		name string
		req  RewardAdd
		kind error
		msg  string
	}{
		{"empty name", RewardAdd{CardName: "  ", Quantity: 1}, apperr.ErrValidation, "card_name must not be empty"},
		{"zero quantity", RewardAdd{CardName: "Thing", Quantity: 0}, apperr.ErrValidation, ""},
		{"both kinds", RewardAdd{CardID: f.cardID(t, "Dayhowler"), CardName: "Thing", Quantity: 1}, apperr.ErrValidation, ""},
		{"unknown card", RewardAdd{CardID: "nope", Quantity: 1}, apperr.ErrNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.pool.AddReward(c.ID, tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), err.Error())
			if tt.msg != "" {
				assert.Equal(t, tt.msg, err.Error())
			}
		})
	}
	assert.Empty(t, f.poolState(t, c.ID))
}

func TestListRewards_OrderedByDisplayName(t *testing.T) {
	f := newFixture(t)
	c := f.newCampaign(t, nil)

	f.addToPool(t, c.ID, "Wrist-mounted Darter", 1)
	_, err := f.pool.AddReward(c.ID, RewardAdd{CardName: "Apple Pie", Quantity: 1})
	require.NoError(t, err)
	f.addToPool(t, c.ID, "Infusion Canteen", 1)

	list, err := f.pool.ListRewards(c.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	names := []string{list[0].DisplayName(), list[1].DisplayName(), list[2].DisplayName()}
	assert.Equal(t, []string{"Apple Pie", "Infusion Canteen", "Wrist-mounted Darter"}, names)
}

func TestRemoveReward(t *testing.T) {
	f := newFixture(t)
	c := f.newCampaign(t, nil)
	entry, err := f.pool.AddReward(c.ID, RewardAdd{CardID: f.cardID(t, "Dayhowler"), Quantity: 5})
	require.NoError(t, err)

	other := f.newCampaign(t, nil)
	err = f.pool.RemoveReward(other.ID, entry.ID)
	assert.Equal(t, CodePoolEntryNotFound, apperr.CodeOf(err))

	require.NoError(t, f.pool.RemoveReward(c.ID, entry.ID))
	assert.Empty(t, f.poolState(t, c.ID))
}

func TestRelease_TakesOnlyWhatThePoolHolds(t *testing.T) {
	f := newFixture(t)
	c := f.newCampaign(t, nil)
	darter := f.cardID(t, "Wrist-mounted Darter")
	f.addToPool(t, c.ID, "Wrist-mounted Darter", 2)

	taken, err := f.pool.Release(f.db, c.ID, darter, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, taken)
	assert.Empty(t, f.poolState(t, c.ID))

	taken, err = f.pool.Release(f.db, c.ID, darter, 1)
	require.NoError(t, err)
	assert.Zero(t, taken)

	// Adjust still refuses to go below zero.
	err = f.pool.Adjust(f.db, c.ID, darter, -1)
	assert.Equal(t, CodePoolUnderflow, apperr.CodeOf(err))
}
