package services

import (
	"testing"

	"earthborne-tracker/catalog"
	"earthborne-tracker/database"
	"earthborne-tracker/models"
	"earthborne-tracker/rules"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db        *gorm.DB
	cat       *catalog.Catalog
	campaigns *CampaignService
	rangers   *RangerService
	pool      *PoolService
	trades    *TradeService
	journal   *JournalService
	access    *AccessService
	snapshots *SnapshotService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := database.Open(sqlite.Open(dsn), logger.Silent)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	log := zap.NewNop()
	require.NoError(t, catalog.Seed(db, log))
	cat, err := catalog.Load(db)
	require.NoError(t, err)

	pool := NewPoolService(db, cat)
	rangers := NewRangerService(db, cat, log)
	return &fixture{
		db:        db,
		cat:       cat,
		campaigns: NewCampaignService(db),
		rangers:   rangers,
		pool:      pool,
		trades:    NewTradeService(db, rangers, pool, log),
		journal:   NewJournalService(db),
		access:    NewAccessService(db),
		snapshots: NewSnapshotService(db, cat, pool, log),
	}
}

func (f *fixture) cardID(t *testing.T, name string) string {
	t.Helper()
	card, ok := f.cat.ByName(name)
	require.True(t, ok, "card %q not in catalog", name)
	return card.ID
}

func (f *fixture) cardIDs(t *testing.T, names ...string) []string {
	t.Helper()
	ids := make([]string, 0, len(names))
	for _, n := range names {
		ids = append(ids, f.cardID(t, n))
	}
	return ids
}

func (f *fixture) storylineID(t *testing.T) string {
	t.Helper()
	var s models.Storyline
	require.NoError(t, f.db.Where("name = ?", "Lore of the Valley").First(&s).Error)
	return s.ID
}

func (f *fixture) newCampaign(t *testing.T, owner *string) *models.Campaign {
	t.Helper()
	c, err := f.campaigns.CreateCampaign("Test Campaign", f.storylineID(t), owner)
	require.NoError(t, err)
	return c
}

// Four mutually disjoint builds, one per background/specialty pairing.
var buildNames = map[string]struct {
	personality []string
	bgSet       string
	background  []string
	spSet       string
	specialty   []string
	role        string
	outside     string
}{
	"artificer": {
		personality: []string{"Insightful", "Passionate", "Meticulous", "Persuasive"},
		bgSet:       "Artisan",
		background:  []string{"Universal Power Cells", "Functional Replica", "The Right Tool", "Pocketed Belt Pouch", "The Mother of Invention"},
		spSet:       "Artificer",
		specialty:   []string{"Ferinodex", "Carbonforged Cable", "Dayhowler", "Trail Markers", "Spiderpad Gloves"},
		role:        "Masterful Engineer",
		outside:     "Familiar Ground",
	},
	"explorer": {
		personality: []string{"Vigilant", "Balanced", "Versatile", "Thoughtful"},
		bgSet:       "Traveler",
		background:  []string{"Eagle Eye", "Strider", "Trail Mix", "Perfect Recall", "Ironwool Boots"},
		spSet:       "Explorer",
		specialty:   []string{"A Leaf in the Breeze", "Hydrolens Goggles", "Boundary Sensor", "Field Journal", "Hidden Trail"},
		role:        "Undaunted Seeker",
		outside:     "Secret Garden",
	},
	"conciliator": {
		personality: []string{"Perceptive", "Determined", "Inventive", "Engaging"},
		bgSet:       "Shepherd",
		background:  []string{"One Eye Open", "A Gentle Nudge", "Homeward Bound", "A Deeper Understanding", "Healing Touch"},
		spSet:       "Conciliator",
		specialty:   []string{"Surveyed Land", "Tranquilisnare", "One With Nature", "Follow in Footsteps", "Tracked"},
		role:        "Voice of the Elders",
		outside:     "Favorite Gear",
	},
	"shaper": {
		personality: []string{"Thorough", "Bold", "Astute", "Compassionate"},
		bgSet:       "Forager",
		background:  []string{"Loose-leaf Tea Kit", "Carbonforged Trowel", "Local Fare", "Puffercrawler Spores", "Static Sifter"},
		spSet:       "Shaper",
		specialty:   []string{"Root Snare", "Sky Whip", "What Should Never Be", "Shape the Earth", "Throng of Life"},
		role:        "Prodigy of the Floating Tower",
		outside:     "Calming Presence",
	},
}

func (f *fixture) rangerReq(t *testing.T, kind string) RangerCreate {
	t.Helper()
	b, ok := buildNames[kind]
	require.True(t, ok, kind)
	return RangerCreate{
		Name:           "Ranger " + kind,
		AspectCardName: "Aspect " + kind,
		AWA:            2, FIT: 2, FOC: 2, SPI: 2,
		Build: rules.Build{
			PersonalityCardIDs:    f.cardIDs(t, b.personality...),
			BackgroundSet:         b.bgSet,
			BackgroundCardIDs:     f.cardIDs(t, b.background...),
			SpecialtySet:          b.spSet,
			SpecialtyCardIDs:      f.cardIDs(t, b.specialty...),
			RoleCardID:            f.cardID(t, b.role),
			OutsideInterestCardID: f.cardID(t, b.outside),
		},
	}
}

func (f *fixture) newRanger(t *testing.T, campaignID, kind string) *RangerView {
	t.Helper()
	r, err := f.rangers.CreateRanger(campaignID, f.rangerReq(t, kind))
	require.NoError(t, err)
	return r
}

// poolState maps pool entries by card id (or name for free-form entries).
func (f *fixture) poolState(t *testing.T, campaignID string) map[string]int {
	t.Helper()
	var entries []models.CampaignReward
	require.NoError(t, f.db.Where("campaign_id = ?", campaignID).Find(&entries).Error)
	out := make(map[string]int, len(entries))
	for _, e := range entries {
		key := ""
		if e.CardID != nil {
			key = *e.CardID
		} else if e.CardName != nil {
			key = "name:" + *e.CardName
		}
		out[key] = e.Quantity
	}
	return out
}

func (f *fixture) deck(t *testing.T, campaignID, rangerID string) map[string]int {
	t.Helper()
	r, err := f.rangers.GetRanger(campaignID, rangerID)
	require.NoError(t, err)
	out := make(map[string]int, len(r.CurrentDecklist))
	for _, e := range r.CurrentDecklist {
		out[e.Card.ID] = e.Quantity
	}
	return out
}

func (f *fixture) addToPool(t *testing.T, campaignID, cardName string, qty int) {
	t.Helper()
	_, err := f.pool.AddReward(campaignID, RewardAdd{CardID: f.cardID(t, cardName), Quantity: qty})
	require.NoError(t, err)
}

func ptr[T any](v T) *T { return &v }
