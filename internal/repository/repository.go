// Package repository isolates route handlers from the storage technology.
// Every method returns errors as *Error so callers branch on Kind only.
package repository

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/models"
	"github.com/google/uuid"
)

type ReportCardRepository interface {
	// Create assigns id, status (fields.Status, default "lost") and timestamps,
	// then persists in one insert. An unknown status fails with KindValidationFailed.
	Create(ctx context.Context, ownerID string, fields models.ReportCardFields) (*models.ReportCard, error)
	// ListByOwner returns the owner's cards, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]models.ReportCard, error)
	CountByOwnerAndStatus(ctx context.Context, ownerID string, status models.ReportStatus) (int64, error)
	// UpdateStatus moves one of the owner's cards to status. Cards of other
	// owners are reported as KindNotFound.
	UpdateStatus(ctx context.Context, ownerID string, id uuid.UUID, status models.ReportStatus) (*models.ReportCard, error)
}

type ProfileRepository interface {
	// GetProfile fails with KindNotFound when no profile is stored.
	GetProfile(ctx context.Context, id string) (*models.UserProfile, error)
	CreateProfile(ctx context.Context, profile *models.UserProfile) error
	SaveProfile(ctx context.Context, profile *models.UserProfile) error
}

// Pinger reports whether the backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
