package handlers

import (
	"earthborne-tracker/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPoolRoutes(router fiber.Router, a *API) {
	router.Get("/campaigns/:campaign_id/rewards", a.listRewards)
	router.Post("/campaigns/:campaign_id/rewards", a.requireWrite, a.addReward)
	router.Delete("/campaigns/:campaign_id/rewards/:reward_id", a.requireWrite, a.removeReward)
}

func (a *API) listRewards(c *fiber.Ctx) error {
	rewards, err := a.Pool.ListRewards(c.Params("campaign_id"))
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(rewards)
}

func (a *API) addReward(c *fiber.Ctx) error {
	req := services.RewardAdd{Quantity: 1}
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, err)
	}
	entry, err := a.Pool.AddReward(c.Params("campaign_id"), req)
	if err != nil {
		return a.fail(c, err)
	}
	return a.created(c, entry)
}

func (a *API) removeReward(c *fiber.Ctx) error {
	if err := a.Pool.RemoveReward(c.Params("campaign_id"), c.Params("reward_id")); err != nil {
		return a.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
