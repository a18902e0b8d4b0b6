package handlers

import (
	"earthborne-tracker/services"

	"github.com/gofiber/fiber/v2"
)

func SetupJournalRoutes(router fiber.Router, a *API) {
	router.Get("/campaigns/:campaign_id/missions", a.listMissions)
	router.Post("/campaigns/:campaign_id/missions", a.requireWrite, a.createMission)
	router.Patch("/campaigns/:campaign_id/missions/:mission_id", a.requireWrite, a.updateMission)

	router.Get("/campaigns/:campaign_id/events", a.listEvents)
	router.Post("/campaigns/:campaign_id/events", a.requireWrite, a.createEvent)
	router.Delete("/campaigns/:campaign_id/events/:event_id", a.requireWrite, a.deleteEvent)
}

func (a *API) listMissions(c *fiber.Ctx) error {
	missions, err := a.Journal.ListMissions(c.Params("campaign_id"))
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(missions)
}

func (a *API) createMission(c *fiber.Ctx) error {
	var req services.MissionCreate
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, err)
	}
	mission, err := a.Journal.CreateMission(c.Params("campaign_id"), req)
	if err != nil {
		return a.fail(c, err)
	}
	return a.created(c, mission)
}

func (a *API) updateMission(c *fiber.Ctx) error {
	var req services.MissionUpdate
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, err)
	}
	mission, err := a.Journal.UpdateMission(c.Params("campaign_id"), c.Params("mission_id"), req)
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(mission)
}

func (a *API) listEvents(c *fiber.Ctx) error {
	events, err := a.Journal.ListEvents(c.Params("campaign_id"))
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(events)
}

func (a *API) createEvent(c *fiber.Ctx) error {
	var req services.EventCreate
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, err)
	}
	event, err := a.Journal.CreateEvent(c.Params("campaign_id"), req)
	if err != nil {
		return a.fail(c, err)
	}
	return a.created(c, event)
}

func (a *API) deleteEvent(c *fiber.Ctx) error {
	if err := a.Journal.DeleteEvent(c.Params("campaign_id"), c.Params("event_id")); err != nil {
		return a.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
