package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Collaborator management is reserved to the campaign owner.
func SetupAccessRoutes(router fiber.Router, a *API) {
	router.Get("/campaigns/:campaign_id/access", a.requireOwner, a.listCollaborators)
	router.Post("/campaigns/:campaign_id/access", a.requireOwner, a.addCollaborator)
	router.Delete("/campaigns/:campaign_id/access/:user_id", a.requireOwner, a.removeCollaborator)
}

type collaboratorAdd struct {
	UserID string `json:"user_id"`
}

func (a *API) listCollaborators(c *fiber.Ctx) error {
	collabs, err := a.Access.ListCollaborators(c.Params("campaign_id"))
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(collabs)
}

func (a *API) addCollaborator(c *fiber.Ctx) error {
	var req collaboratorAdd
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, err)
	}
	collab, err := a.Access.AddCollaborator(c.Params("campaign_id"), req.UserID)
	if err != nil {
		return a.fail(c, err)
	}
	return a.created(c, collab)
}

func (a *API) removeCollaborator(c *fiber.Ctx) error {
	if err := a.Access.RemoveCollaborator(c.Params("campaign_id"), c.Params("user_id")); err != nil {
		return a.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
