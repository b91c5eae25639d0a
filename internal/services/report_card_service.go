package services

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/auth"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/models"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type ReportCardService struct {
	repo repository.ReportCardRepository
}

func NewReportCardService(repo repository.ReportCardRepository) *ReportCardService {
	return &ReportCardService{repo: repo}
}

// Submit validates the request and stores it as a new lost card owned by the
// caller. A request with empty required fields fails with *ValidationError;
// values longer than their columns fail with *InvalidFieldsError.
func (s *ReportCardService) Submit(ctx context.Context, caller auth.Identity, req *dto.CreateReportCardRequest) (*models.ReportCard, error) {
	return s.submit(ctx, caller, req, models.StatusLost)
}

// SubmitFound stores a report about a document the caller has found.
// Validation is the same as for Submit.
func (s *ReportCardService) SubmitFound(ctx context.Context, caller auth.Identity, req *dto.CreateReportCardRequest) (*models.ReportCard, error) {
	return s.submit(ctx, caller, req, models.StatusFound)
}

func (s *ReportCardService) submit(ctx context.Context, caller auth.Identity, req *dto.CreateReportCardRequest, status models.ReportStatus) (*models.ReportCard, error) {
	if missing := ValidateSubmission(req); len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}
	fields := normalizeSubmission(req)
	if err := checkSubmissionLimits(fields); err != nil {
		return nil, err
	}
	fields.Status = status
	return s.repo.Create(ctx, caller.ID, fields)
}

// UpdateStatus moves one of the caller's cards to status. An unknown status
// fails with *InvalidFieldsError before the repository is called.
func (s *ReportCardService) UpdateStatus(ctx context.Context, caller auth.Identity, id uuid.UUID, status models.ReportStatus) (*models.ReportCard, error) {
	if !status.Valid() {
		return nil, &InvalidFieldsError{Messages: []string{"status must be one of [lost found resolved]"}}
	}
	return s.repo.UpdateStatus(ctx, caller.ID, id, status)
}

func (s *ReportCardService) ListOwn(ctx context.Context, caller auth.Identity) ([]models.ReportCard, error) {
	return s.repo.ListByOwner(ctx, caller.ID)
}

// Stats counts the caller's cards per status. The counts run concurrently and
// a failed count is reported as zero.
func (s *ReportCardService) Stats(ctx context.Context, caller auth.Identity) models.ReportStats {
	var stats models.ReportStats
	targets := []struct {
		status models.ReportStatus
		dst    *int64
	}{
		{models.StatusLost, &stats.CardsReported},
		{models.StatusFound, &stats.CardsFound},
		{models.StatusResolved, &stats.CardsResolved},
	}

	var g errgroup.Group
	for _, t := range targets {
		t := t
		g.Go(func() error {
			n, err := s.repo.CountByOwnerAndStatus(ctx, caller.ID, t.status)
			if err != nil {
				slog.Warn("report card count failed, using 0",
					"owner_id", caller.ID, "status", t.status, "kind", repository.KindOf(err), "error", err)
				return nil
			}
			*t.dst = n
			return nil
		})
	}
	_ = g.Wait()

	return stats
}
