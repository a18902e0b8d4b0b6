package handlers

import (
	"earthborne-tracker/catalog"
	"earthborne-tracker/middleware"
	"earthborne-tracker/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API bundles the services behind the /api routes.
type API struct {
	DB        *gorm.DB
	Catalog   *catalog.Catalog
	Campaigns *services.CampaignService
	Rangers   *services.RangerService
	Trades    *services.TradeService
	Pool      *services.PoolService
	Journal   *services.JournalService
	Access    *services.AccessService
	Snapshots *services.SnapshotService
	Log       *zap.Logger
}

func NewAPI(db *gorm.DB, cat *catalog.Catalog, log *zap.Logger) *API {
	pool := services.NewPoolService(db, cat)
	rangers := services.NewRangerService(db, cat, log)
	return &API{
		DB:        db,
		Catalog:   cat,
		Campaigns: services.NewCampaignService(db),
		Rangers:   rangers,
		Trades:    services.NewTradeService(db, rangers, pool, log),
		Pool:      pool,
		Journal:   services.NewJournalService(db),
		Access:    services.NewAccessService(db),
		Snapshots: services.NewSnapshotService(db, cat, pool, log),
		Log:       log,
	}
}

// Register mounts every route under /api. Callers install gateway auth
// before this.
func (a *API) Register(app *fiber.App) {
	api := app.Group("/api", middleware.UserContextMiddleware(a.Log))

	SetupCatalogRoutes(api, a)
	SetupCampaignRoutes(api, a)
	SetupRangerRoutes(api, a)
	SetupPoolRoutes(api, a)
	SetupJournalRoutes(api, a)
	SetupAccessRoutes(api, a)
}

// requireWrite rejects callers who may not change :campaign_id.
func (a *API) requireWrite(c *fiber.Ctx) error {
	if err := a.Access.RequireWrite(c.Params("campaign_id"), middleware.UserID(c)); err != nil {
		return a.fail(c, err)
	}
	return c.Next()
}

func (a *API) requireOwner(c *fiber.Ctx) error {
	if err := a.Access.RequireOwner(c.Params("campaign_id"), middleware.UserID(c)); err != nil {
		return a.fail(c, err)
	}
	return c.Next()
}
