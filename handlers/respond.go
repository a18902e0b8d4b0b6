package handlers

import (
	"errors"

	"earthborne-tracker/apperr"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const codeInvalidBody = "invalid_body"

func statusOf(kind error) int {
	switch {
	case errors.Is(kind, apperr.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(kind, apperr.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(kind, apperr.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(kind, apperr.ErrForbidden):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// fail writes err as a JSON error body. Rule rejections keep their message;
// anything else is logged and hidden behind "internal error".
func (a *API) fail(c *fiber.Ctx, err error) error {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		a.Log.Error("request failed",
			zap.String("method", c.Method()), zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	status := statusOf(appErr.Kind)
	if status == fiber.StatusInternalServerError {
		a.Log.Error("invariant violated",
			zap.String("path", c.Path()), zap.String("code", appErr.Code), zap.String("error", appErr.Message))
	}

	body := fiber.Map{"error": appErr.Message, "code": appErr.Code}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	return c.Status(status).JSON(body)
}

// bind decodes the JSON body into out.
func (a *API) bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Validation(codeInvalidBody, "Invalid request body: %v", err)
	}
	return nil
}

func (a *API) created(c *fiber.Ctx, v any) error {
	return c.Status(fiber.StatusCreated).JSON(v)
}
