package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/repository"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// serverError logs err, reports it to Sentry and answers 500. Only the
// repository error kind is exposed to the client.
func serverError(c *fiber.Ctx, message string, err error) error {
	kind := repository.KindOf(err)
	slog.Error(message,
		"request_id", requestID(c),
		"route", c.Route().Path,
		"kind", kind,
		"error", err,
	)
	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}

	var details []string
	var repoErr *repository.Error
	if errors.As(err, &repoErr) {
		details = []string{string(kind)}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail(message, details...))
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Authentication required"))
}

func badRequest(c *fiber.Ctx, message string, details ...string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(message, details...))
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
