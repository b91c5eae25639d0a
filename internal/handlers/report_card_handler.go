package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/auth"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/models"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/owner"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/repository"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ListUnavailableWarning accompanies an empty list served while storage is failing.
const ListUnavailableWarning = "report cards are temporarily unavailable"

type ReportCardHandler struct {
	reportCardService *services.ReportCardService
}

func NewReportCardHandler(reportCardService *services.ReportCardService) *ReportCardHandler {
	return &ReportCardHandler{reportCardService: reportCardService}
}

// Create stores a report about a document the caller lost.
func (h *ReportCardHandler) Create(c *fiber.Ctx) error {
	return h.create(c, h.reportCardService.Submit)
}

// CreateFound stores a report about a document the caller found.
func (h *ReportCardHandler) CreateFound(c *fiber.Ctx) error {
	return h.create(c, h.reportCardService.SubmitFound)
}

type submitFunc func(ctx context.Context, caller auth.Identity, req *dto.CreateReportCardRequest) (*models.ReportCard, error)

func (h *ReportCardHandler) create(c *fiber.Ctx, submit submitFunc) error {
	caller, err := owner.Get(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateReportCardRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	card, err := submit(c.UserContext(), caller, &req)
	if err != nil {
		var verr *services.ValidationError
		var ferr *services.InvalidFieldsError
		switch {
		case errors.As(err, &verr):
			return badRequest(c, "Missing required fields", verr.Fields...)
		case errors.As(err, &ferr):
			return badRequest(c, "Invalid report card fields", ferr.Messages...)
		case errors.Is(err, repository.ErrValidationFailed):
			return badRequest(c, "Invalid report card fields", string(repository.KindOf(err)))
		}
		return serverError(c, "Failed to create report card submission", err)
	}

	slog.Info("report card created", "request_id", requestID(c), "owner_id", caller.ID, "id", card.ID, "status", card.Status)
	return c.JSON(dto.OK(card))
}

// UpdateStatus moves one of the caller's cards to lost, found or resolved.
func (h *ReportCardHandler) UpdateStatus(c *fiber.Ctx) error {
	caller, err := owner.Get(c)
	if err != nil {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report card id")
	}

	var req dto.UpdateReportCardStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	card, err := h.reportCardService.UpdateStatus(c.UserContext(), caller, id, models.ReportStatus(req.Status))
	if err != nil {
		var ferr *services.InvalidFieldsError
		switch {
		case errors.As(err, &ferr):
			return badRequest(c, "Invalid report card status", ferr.Messages...)
		case errors.Is(err, repository.ErrValidationFailed):
			return badRequest(c, "Invalid report card status", string(repository.KindOf(err)))
		case errors.Is(err, repository.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail("Report card not found"))
		}
		return serverError(c, "Failed to update report card status", err)
	}

	slog.Info("report card status updated", "request_id", requestID(c), "owner_id", caller.ID, "id", card.ID, "status", card.Status)
	return c.JSON(dto.OK(card))
}

// List answers 200 with an empty list and a warning when storage fails.
func (h *ReportCardHandler) List(c *fiber.Ctx) error {
	caller, err := owner.Get(c)
	if err != nil {
		return unauthorized(c)
	}

	cards, err := h.reportCardService.ListOwn(c.UserContext(), caller)
	if err != nil {
		slog.Error("failed to list report cards, serving empty list",
			"request_id", requestID(c),
			"owner_id", caller.ID,
			"kind", repository.KindOf(err),
			"error", err,
		)
		return c.JSON(dto.Response{
			Success: true,
			Data:    []models.ReportCard{},
			Warning: ListUnavailableWarning,
		})
	}

	return c.JSON(dto.OK(cards))
}

func (h *ReportCardHandler) Stats(c *fiber.Ctx) error {
	caller, err := owner.Get(c)
	if err != nil {
		return unauthorized(c)
	}
	return c.JSON(dto.OK(h.reportCardService.Stats(c.UserContext(), caller)))
}
