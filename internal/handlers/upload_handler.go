package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/owner"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UploadHandler struct {
	uploadService *services.UploadService
}

func NewUploadHandler(uploadService *services.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// Upload accepts a multipart form with a single "file" part.
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	caller, err := owner.Get(c)
	if err != nil {
		return unauthorized(c)
	}

	header, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "No file provided")
	}
	f, err := header.Open()
	if err != nil {
		return badRequest(c, "Unable to read uploaded file")
	}
	defer f.Close()

	url, err := h.uploadService.Upload(c.UserContext(), caller.ID, &services.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Size:        header.Size,
		Body:        f,
	})
	switch {
	case errors.Is(err, services.ErrMissingFile):
		return badRequest(c, "No file provided")
	case errors.Is(err, services.ErrUnsupportedMediaType):
		return badRequest(c, "Invalid file type. Only JPEG, PNG, and PDF files are allowed")
	case errors.Is(err, services.ErrPayloadTooLarge):
		return badRequest(c, "File size too large. Maximum size is 5MB")
	case err != nil:
		return serverError(c, "Failed to upload file", err)
	}

	return c.JSON(dto.OK(dto.UploadResponse{FileURL: url}))
}
