// Package server assembles the Fiber application from its dependencies.
package server

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/auth"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/config"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/repository"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/routes"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/services"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/storage"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Deps are the long-lived collaborators created by main.
type Deps struct {
	Authenticator *auth.Authenticator
	ReportCards   repository.ReportCardRepository
	Profiles      repository.ProfileRepository
	DB            repository.Pinger
	Store         storage.ObjectStore
}

func New(cfg *config.Config, deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "identity-finder",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: errorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	var fileHandler *handlers.FileHandler
	if mem, ok := deps.Store.(*storage.MemoryStore); ok {
		fileHandler = handlers.NewFileHandler(mem)
	}

	routes.Setup(app, cfg, deps.Authenticator,
		handlers.NewHealthHandler(deps.DB, deps.Store),
		handlers.NewReportCardHandler(services.NewReportCardService(deps.ReportCards)),
		handlers.NewUploadHandler(services.NewUploadService(deps.Store, cfg.UploadMaxBytes)),
		handlers.NewProfileHandler(services.NewProfileService(deps.Profiles)),
		fileHandler,
	)

	return app
}

// errorHandler answers with the JSON envelope. Client error messages are
// passed through, server errors are masked.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code == fiber.StatusRequestEntityTooLarge {
		code = fiber.StatusBadRequest
		message = "File size too large"
	}

	if code >= fiber.StatusInternalServerError {
		slog.Error("unhandled server error", "method", c.Method(), "route", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.Fail(message))
}
