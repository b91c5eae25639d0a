package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/owner"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/repository"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	caller, err := owner.Get(c)
	if err != nil {
		return unauthorized(c)
	}

	profile, warning, err := h.profileService.Get(c.UserContext(), caller)
	if err != nil {
		return serverError(c, "Failed to fetch profile", err)
	}
	return c.JSON(dto.Response{Success: true, Data: profile, Warning: warning})
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	caller, err := owner.Get(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	profile, err := h.profileService.Update(c.UserContext(), caller, &req)
	if err != nil {
		var ferr *services.InvalidFieldsError
		switch {
		case errors.As(err, &ferr):
			return badRequest(c, "Invalid profile fields", ferr.Messages...)
		case errors.Is(err, repository.ErrValidationFailed):
			return badRequest(c, "Invalid profile fields", string(repository.KindOf(err)))
		}
		return serverError(c, "Failed to update profile", err)
	}
	return c.JSON(dto.OK(profile))
}
