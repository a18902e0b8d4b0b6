package handlers

import (
	"earthborne-tracker/middleware"
	"earthborne-tracker/services"

	"github.com/gofiber/fiber/v2"
)

func SetupCampaignRoutes(router fiber.Router, a *API) {
	router.Get("/campaigns", a.listCampaigns)
	router.Post("/campaigns", a.createCampaign)
	router.Post("/campaigns/import", a.importCampaign)

	router.Get("/campaigns/:campaign_id", a.getCampaign)
	router.Patch("/campaigns/:campaign_id", a.requireWrite, a.updateCampaign)
	router.Delete("/campaigns/:campaign_id", a.requireWrite, a.deleteCampaign)
	router.Get("/campaigns/:campaign_id/export", a.exportCampaign)

	router.Get("/campaigns/:campaign_id/days/:day_id", a.getDay)
	router.Post("/campaigns/:campaign_id/days/:day_id/close", a.requireWrite, a.closeDay)
}

type campaignCreate struct {
	Name        string `json:"name"`
	StorylineID string `json:"storyline_id"`
}

// owner is the caller identity, or nil for anonymous callers.
func owner(c *fiber.Ctx) *string {
	if id := middleware.UserID(c); id != "" {
		return &id
	}
	return nil
}

func (a *API) listCampaigns(c *fiber.Ctx) error {
	campaigns, err := a.Campaigns.ListCampaigns()
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(campaigns)
}

func (a *API) createCampaign(c *fiber.Ctx) error {
	var req campaignCreate
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, err)
	}
	campaign, err := a.Campaigns.CreateCampaign(req.Name, req.StorylineID, owner(c))
	if err != nil {
		return a.fail(c, err)
	}
	return a.created(c, campaign)
}

func (a *API) getCampaign(c *fiber.Ctx) error {
	campaign, err := a.Campaigns.GetCampaign(c.Params("campaign_id"))
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(campaign)
}

func (a *API) updateCampaign(c *fiber.Ctx) error {
	var req services.CampaignUpdate
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, err)
	}
	campaign, err := a.Campaigns.UpdateCampaign(c.Params("campaign_id"), req)
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(campaign)
}

func (a *API) deleteCampaign(c *fiber.Ctx) error {
	if err := a.Campaigns.DeleteCampaign(c.Params("campaign_id")); err != nil {
		return a.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (a *API) exportCampaign(c *fiber.Ctx) error {
	snap, err := a.Snapshots.Export(c.Params("campaign_id"))
	if err != nil {
		return a.fail(c, err)
	}
	c.Attachment(services.SnapshotFilename(snap.Campaign.Name))
	return c.JSON(snap)
}

func (a *API) importCampaign(c *fiber.Ctx) error {
	var doc services.Snapshot
	if err := a.bind(c, &doc); err != nil {
		return a.fail(c, err)
	}
	campaign, err := a.Snapshots.Import(&doc, owner(c))
	if err != nil {
		return a.fail(c, err)
	}
	return a.created(c, campaign)
}

func (a *API) getDay(c *fiber.Ctx) error {
	day, err := a.Campaigns.GetDay(c.Params("campaign_id"), c.Params("day_id"))
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(day)
}

func (a *API) closeDay(c *fiber.Ctx) error {
	var req services.DayClose
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, err)
	}
	day, err := a.Campaigns.CloseDay(c.Params("campaign_id"), c.Params("day_id"), req)
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(day)
}
