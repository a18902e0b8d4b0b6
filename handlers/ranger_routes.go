package handlers

import (
	"earthborne-tracker/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRangerRoutes(router fiber.Router, a *API) {
	rangers := router.Group("/campaigns/:campaign_id/rangers")

	rangers.Get("/", a.listRangers)
	rangers.Post("/", a.requireWrite, a.createRanger)
	rangers.Get("/:ranger_id", a.getRanger)

	rangers.Post("/:ranger_id/trades", a.requireWrite, a.createTrade)
	rangers.Post("/:ranger_id/trades/:trade_id/revert", a.requireWrite, a.revertTrade)
}

func (a *API) listRangers(c *fiber.Ctx) error {
	rangers, err := a.Rangers.ListRangers(c.Params("campaign_id"))
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(rangers)
}

func (a *API) createRanger(c *fiber.Ctx) error {
	var req services.RangerCreate
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, err)
	}
	ranger, err := a.Rangers.CreateRanger(c.Params("campaign_id"), req)
	if err != nil {
		return a.fail(c, err)
	}
	return a.created(c, ranger)
}

func (a *API) getRanger(c *fiber.Ctx) error {
	ranger, err := a.Rangers.GetRanger(c.Params("campaign_id"), c.Params("ranger_id"))
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(ranger)
}

func (a *API) createTrade(c *fiber.Ctx) error {
	var req services.TradeCreate
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, err)
	}
	trade, err := a.Trades.CreateTrade(c.Params("campaign_id"), c.Params("ranger_id"), req)
	if err != nil {
		return a.fail(c, err)
	}
	return a.created(c, trade)
}

func (a *API) revertTrade(c *fiber.Ctx) error {
	trade, err := a.Trades.RevertTrade(c.Params("campaign_id"), c.Params("ranger_id"), c.Params("trade_id"))
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(trade)
}
