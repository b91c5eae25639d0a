package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/auth"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/config"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

const uploadRateLimitPerMin = 10

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authn *auth.Authenticator,
	healthHandler *handlers.HealthHandler,
	reportCardHandler *handlers.ReportCardHandler,
	uploadHandler *handlers.UploadHandler,
	profileHandler *handlers.ProfileHandler,
	fileHandler *handlers.FileHandler,
) {
	api := app.Group("/api")

	// General API rate limit per IP
	api.Use(limiter.New(limiter.Config{
		Max:               cfg.RateLimitPerMin,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached:      rateLimited,
	}))

	api.Get("/health", healthHandler.Check)

	requireAuth := middleware.RequireAuth(authn)

	cards := api.Group("/report-cards", requireAuth)
	cards.Post("/", reportCardHandler.Create)
	cards.Get("/", reportCardHandler.List)
	cards.Post("/found", reportCardHandler.CreateFound)
	cards.Get("/stats", reportCardHandler.Stats)
	cards.Patch("/:id/status", reportCardHandler.UpdateStatus)

	// Uploads are heavier; stricter limit per IP
	api.Post("/upload", limiter.New(limiter.Config{
		Max:               uploadRateLimitPerMin,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached:      rateLimited,
	}), requireAuth, uploadHandler.Upload)

	profile := api.Group("/profile", requireAuth)
	profile.Get("/", profileHandler.Get)
	profile.Put("/", profileHandler.Update)

	if fileHandler != nil {
		app.Get("/files/*", fileHandler.Get)
	}
}

func rateLimited(c *fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.Fail("Too many requests"))
}
