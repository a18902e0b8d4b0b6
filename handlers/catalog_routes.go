package handlers

import (
	"earthborne-tracker/apperr"
	"earthborne-tracker/catalog"
	"earthborne-tracker/models"

	"github.com/gofiber/fiber/v2"
)

func SetupCatalogRoutes(router fiber.Router, a *API) {
	router.Get("/cards", a.listCards)
	router.Get("/cards/:card_id", a.getCard)
	router.Get("/storylines", a.listStorylines)
}

// listCards filters by ?card_type= and ?source_set=.
func (a *API) listCards(c *fiber.Ctx) error {
	cards := a.Catalog.List(catalog.Filter{
		CardType:  models.CardType(c.Query("card_type")),
		SourceSet: c.Query("source_set"),
	})
	return c.JSON(cards)
}

func (a *API) getCard(c *fiber.Ctx) error {
	card, ok := a.Catalog.Card(c.Params("card_id"))
	if !ok {
		return a.fail(c, apperr.NotFound("card_not_found", "Card not found"))
	}
	return c.JSON(card)
}

func (a *API) listStorylines(c *fiber.Ctx) error {
	storylines, err := a.Campaigns.ListStorylines()
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(storylines)
}
