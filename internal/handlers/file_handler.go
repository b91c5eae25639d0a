package handlers

import (
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/storage"
	"github.com/gofiber/fiber/v2"
)

// FileHandler serves uploads kept by the in-memory object store in local runs.
type FileHandler struct {
	store *storage.MemoryStore
}

func NewFileHandler(store *storage.MemoryStore) *FileHandler {
	return &FileHandler{store: store}
}

func (h *FileHandler) Get(c *fiber.Ctx) error {
	data, contentType, ok := h.store.Get(c.Params("*"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.Fail("File not found"))
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}
