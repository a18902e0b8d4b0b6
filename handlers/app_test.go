package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"earthborne-tracker/catalog"
	"earthborne-tracker/database"
	"earthborne-tracker/models"
	"earthborne-tracker/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
)

const testToken = "gateway-secret"

type testServer struct {
	app *fiber.App
	api *API
}

func newTestServer(t *testing.T) *testServer {
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

	api := NewAPI(db, cat, log)
	app := NewApp(api, AppOptions{
		ServiceToken: testToken,
		Origins:      "http://localhost:3000",
		BodyLimit:    4 << 20,
	})
	return &testServer{app: app, api: api}
}

type reply struct {
	status int
	header http.Header
	body   []byte
}

func (r reply) decode(t *testing.T, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body, out), string(r.body))
}

func (r reply) errorBody(t *testing.T) (msg, code string) {
	t.Helper()
	var e struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	r.decode(t, &e)
	return e.Error, e.Code
}

// call sends an authenticated gateway request; user may be empty.
func (s *testServer) call(t *testing.T, method, path, user string, body any) reply {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return reply{status: resp.StatusCode, header: resp.Header, body: raw}
}

func (s *testServer) cardID(t *testing.T, name string) string {
	t.Helper()
	c, ok := s.api.Catalog.ByName(name)
	require.True(t, ok, name)
	return c.ID
}

func (s *testServer) cardIDs(t *testing.T, names ...string) []string {
	ids := make([]string, len(names))
	for i, n := range names {
		ids[i] = s.cardID(t, n)
	}
	return ids
}

func (s *testServer) campaign(t *testing.T, user string) models.Campaign {
	t.Helper()
	storylines, err := s.api.Campaigns.ListStorylines()
	require.NoError(t, err)
	r := s.call(t, http.MethodPost, "/api/campaigns", user, fiber.Map{
		"name":         "Valley Run",
		"storyline_id": storylines[0].ID,
	})
	require.Equal(t, http.StatusCreated, r.status, string(r.body))
	var c models.Campaign
	r.decode(t, &c)
	return c
}

func (s *testServer) artificer(t *testing.T) fiber.Map {
	return fiber.Map{
		"name":                     "Kal",
		"aspect_card_name":         "Artificer aspect",
		"awa":                      2, "fit": 2, "foc": 3, "spi": 1,
		"personality_card_ids":     s.cardIDs(t, "Insightful", "Passionate", "Meticulous", "Persuasive"),
		"background_set":           "Artisan",
		"background_card_ids":      s.cardIDs(t, "Universal Power Cells", "Functional Replica", "The Right Tool", "Pocketed Belt Pouch", "The Mother of Invention"),
		"specialty_set":            "Artificer",
		"specialty_card_ids":       s.cardIDs(t, "Ferinodex", "Carbonforged Cable", "Dayhowler", "Trail Markers", "Spiderpad Gloves"),
		"role_card_id":             s.cardID(t, "Masterful Engineer"),
		"outside_interest_card_id": s.cardID(t, "Familiar Ground"),
	}
}

func TestGatewayGuard(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/cards", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/cards", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	for _, path := range []string{"/healthz", "/metrics"} {
		resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestListCards_Filter(t *testing.T) {
	s := newTestServer(t)

	r := s.call(t, http.MethodGet, "/api/cards?card_type=role", "", nil)
	require.Equal(t, http.StatusOK, r.status)
	var roles []models.Card
	r.decode(t, &roles)
	assert.Len(t, roles, 8)

	r = s.call(t, http.MethodGet, "/api/cards?card_type=background&source_set=Artisan", "", nil)
	var artisan []models.Card
	r.decode(t, &artisan)
	require.NotEmpty(t, artisan)
	for _, c := range artisan {
		assert.Equal(t, "Artisan", c.SourceSet)
	}

	r = s.call(t, http.MethodGet, "/api/cards/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, r.status)
}

func TestRangerLifecycle(t *testing.T) {
	s := newTestServer(t)
	c := s.campaign(t, "alice")
	base := "/api/campaigns/" + c.ID

	r := s.call(t, http.MethodPost, base+"/rangers", "alice", s.artificer(t))
	require.Equal(t, http.StatusCreated, r.status, string(r.body))
	var ranger services.RangerView
	r.decode(t, &ranger)
	total := 0
	for _, e := range ranger.CurrentDecklist {
		total += e.Quantity
	}
	assert.Equal(t, 30, total)

	// The same foundation again collides with the first ranger.
	again := s.artificer(t)
	again["name"] = "Copycat"
	r = s.call(t, http.MethodPost, base+"/rangers", "alice", again)
	assert.Equal(t, http.StatusConflict, r.status)
	_, code := r.errorBody(t)
	assert.Equal(t, "card_claimed", code)

	bad := s.artificer(t)
	bad["personality_card_ids"] = s.cardIDs(t, "Insightful", "Passionate", "Meticulous")
	r = s.call(t, http.MethodPost, base+"/rangers", "alice", bad)
	assert.Equal(t, http.StatusBadRequest, r.status)
	msg, code := r.errorBody(t)
	assert.Equal(t, "Exactly 4 personality cards required", msg)
	assert.Equal(t, "personality_count", code)

	r = s.call(t, http.MethodGet, base+"/rangers/"+ranger.ID, "", nil)
	assert.Equal(t, http.StatusOK, r.status)
}

func TestTradeOverHTTP(t *testing.T) {
	s := newTestServer(t)
	c := s.campaign(t, "")
	base := "/api/campaigns/" + c.ID

	r := s.call(t, http.MethodPost, base+"/rangers", "", s.artificer(t))
	require.Equal(t, http.StatusCreated, r.status, string(r.body))
	var ranger services.RangerView
	r.decode(t, &ranger)

	r = s.call(t, http.MethodPost, base+"/rewards", "", fiber.Map{"card_id": s.cardID(t, "Wrist-mounted Darter")})
	require.Equal(t, http.StatusCreated, r.status, string(r.body))

	r = s.call(t, http.MethodPost, base+"/rangers/"+ranger.ID+"/trades", "", fiber.Map{
		"day_id":           c.CurrentDay.ID,
		"original_card_id": s.cardID(t, "Ferinodex"),
		"reward_card_id":   s.cardID(t, "Wrist-mounted Darter"),
	})
	require.Equal(t, http.StatusCreated, r.status, string(r.body))
	var trade services.TradeView
	r.decode(t, &trade)
	assert.Equal(t, "Ferinodex", trade.OriginalCard.Name)

	revert := base + "/rangers/" + ranger.ID + "/trades/" + trade.ID + "/revert"
	r = s.call(t, http.MethodPost, revert, "", nil)
	require.Equal(t, http.StatusOK, r.status, string(r.body))
	r = s.call(t, http.MethodPost, revert, "", nil)
	assert.Equal(t, http.StatusConflict, r.status)
	msg, _ := r.errorBody(t)
	assert.Equal(t, "Trade is already reverted", msg)
}

func TestCloseDay(t *testing.T) {
	s := newTestServer(t)
	c := s.campaign(t, "")
	base := "/api/campaigns/" + c.ID + "/days/"

	r := s.call(t, http.MethodPost, base+c.Days[1].ID+"/close", "", fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, r.status)
	_, code := r.errorBody(t)
	assert.Equal(t, services.CodeDayNotActive, code)

	r = s.call(t, http.MethodPost, base+"missing/close", "", fiber.Map{})
	assert.Equal(t, http.StatusNotFound, r.status)

	r = s.call(t, http.MethodPost, base+c.Days[0].ID+"/close", "", fiber.Map{"location": "Lone Tree Station", "path_terrain": "Woods"})
	require.Equal(t, http.StatusOK, r.status, string(r.body))

	r = s.call(t, http.MethodGet, base+c.Days[1].ID, "", nil)
	var day models.CampaignDay
	r.decode(t, &day)
	assert.Equal(t, models.DayStatusActive, day.Status)
	assert.Equal(t, "Lone Tree Station", *day.Location)
}

func TestWriteAccess(t *testing.T) {
	s := newTestServer(t)
	c := s.campaign(t, "alice")
	missions := "/api/campaigns/" + c.ID + "/missions"
	mission := fiber.Map{"name": "Biscuit Delivery", "max_progress": 2}

	r := s.call(t, http.MethodPost, missions, "bob", mission)
	assert.Equal(t, http.StatusForbidden, r.status)
	r = s.call(t, http.MethodPost, missions, "", mission)
	assert.Equal(t, http.StatusForbidden, r.status)
	_, code := r.errorBody(t)
	assert.Equal(t, services.CodeIdentityMissing, code)

	access := "/api/campaigns/" + c.ID + "/access"
	r = s.call(t, http.MethodPost, access, "bob", fiber.Map{"user_id": "bob"})
	assert.Equal(t, http.StatusForbidden, r.status, "only the owner manages access")

	r = s.call(t, http.MethodPost, access, "alice", fiber.Map{"user_id": "bob"})
	require.Equal(t, http.StatusCreated, r.status, string(r.body))
	r = s.call(t, http.MethodPost, access, "alice", fiber.Map{"user_id": "bob"})
	assert.Equal(t, http.StatusConflict, r.status)

	r = s.call(t, http.MethodPost, missions, "bob", mission)
	assert.Equal(t, http.StatusCreated, r.status, string(r.body))

	r = s.call(t, http.MethodDelete, access+"/bob", "alice", nil)
	assert.Equal(t, http.StatusNoContent, r.status)
	r = s.call(t, http.MethodPost, missions, "bob", mission)
	assert.Equal(t, http.StatusForbidden, r.status)

	// Reads stay open.
	r = s.call(t, http.MethodGet, missions, "bob", nil)
	assert.Equal(t, http.StatusOK, r.status)
}

func TestExportImport(t *testing.T) {
	s := newTestServer(t)
	c := s.campaign(t, "alice")

	r := s.call(t, http.MethodGet, "/api/campaigns/"+c.ID+"/export", "", nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Contains(t, r.header.Get("Content-Disposition"), `filename="valley-run.json"`)
	var snap services.Snapshot
	r.decode(t, &snap)
	assert.Equal(t, services.SnapshotVersion, snap.Version)

	r = s.call(t, http.MethodPost, "/api/campaigns/import", "bob", snap)
	require.Equal(t, http.StatusCreated, r.status, string(r.body))
	var imported models.Campaign
	r.decode(t, &imported)
	assert.NotEqual(t, c.ID, imported.ID)
	require.NotNil(t, imported.OwnerID)
	assert.Equal(t, "bob", *imported.OwnerID)

	snap.Version = 9
	snap.Campaign.StorylineName = "Nowhere"
	r = s.call(t, http.MethodPost, "/api/campaigns/import", "bob", snap)
	assert.Equal(t, http.StatusBadRequest, r.status)
	var body struct {
		Code    string   `json:"code"`
		Details []string `json:"details"`
	}
	r.decode(t, &body)
	assert.Equal(t, services.CodeImportInvalid, body.Code)
	assert.Len(t, body.Details, 2)
}

func TestDeleteCampaign(t *testing.T) {
	s := newTestServer(t)
	c := s.campaign(t, "alice")

	r := s.call(t, http.MethodDelete, "/api/campaigns/"+c.ID, "bob", nil)
	assert.Equal(t, http.StatusForbidden, r.status)
	r = s.call(t, http.MethodDelete, "/api/campaigns/"+c.ID, "alice", nil)
	assert.Equal(t, http.StatusNoContent, r.status)
	r = s.call(t, http.MethodGet, "/api/campaigns/"+c.ID, "alice", nil)
	assert.Equal(t, http.StatusNotFound, r.status)
}
