package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/repository"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/storage"
	"github.com/gofiber/fiber/v2"
)

const healthCheckTimeout = 2 * time.Second

type HealthHandler struct {
	db    repository.Pinger
	store storage.ObjectStore
}

func NewHealthHandler(db repository.Pinger, store storage.ObjectStore) *HealthHandler {
	return &HealthHandler{db: db, store: store}
}

// Check always answers 200; a failing dependency turns status into "degraded".
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	status := "ok"
	dbStatus := probe(ctx, "db", h.db)
	storageStatus := probe(ctx, "storage", h.store)
	if dbStatus != "ok" || storageStatus != "ok" {
		status = "degraded"
	}

	return c.JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Storage:   storageStatus,
	})
}

// probe answers "unhealthy" without the cause; the error is only logged.
func probe(ctx context.Context, name string, p repository.Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		slog.Error("health check failed", "dependency", name, "kind", repository.KindOf(err), "error", err)
		return "unhealthy"
	}
	return "ok"
}
