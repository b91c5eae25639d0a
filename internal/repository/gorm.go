package repository

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/models"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/owner"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Postgres implements the repositories on a GORM handle owned by the caller.
type Postgres struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

func (r *Postgres) Create(ctx context.Context, ownerID string, fields models.ReportCardFields) (*models.ReportCard, error) {
	card, err := newReportCard(ownerID, fields, r.now().UTC())
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Create(card).Error; err != nil {
		return nil, wrap("create report card", err)
	}
	return card, nil
}

func (r *Postgres) ListByOwner(ctx context.Context, ownerID string) ([]models.ReportCard, error) {
	cards := make([]models.ReportCard, 0)
	err := r.db.WithContext(ctx).
		Scopes(owner.Scope(ownerID)).
		Order("created_at DESC").
		Find(&cards).Error
	if err != nil {
		return nil, wrap("list report cards", err)
	}
	return cards, nil
}

func (r *Postgres) CountByOwnerAndStatus(ctx context.Context, ownerID string, status models.ReportStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.ReportCard{}).
		Scopes(owner.Scope(ownerID)).
		Where("status = ?", status).
		Count(&n).Error
	if err != nil {
		return 0, wrap("count report cards", err)
	}
	return n, nil
}

func (r *Postgres) UpdateStatus(ctx context.Context, ownerID string, id uuid.UUID, status models.ReportStatus) (*models.ReportCard, error) {
	if !status.Valid() {
		return nil, &Error{Kind: KindValidationFailed, Op: "update report card status"}
	}

	var card models.ReportCard
	err := r.db.WithContext(ctx).
		Scopes(owner.Scope(ownerID)).
		First(&card, "id = ?", id).Error
	if err != nil {
		return nil, wrap("update report card status", err)
	}

	now := r.now().UTC()
	err = r.db.WithContext(ctx).
		Model(&card).
		Updates(map[string]any{"status": status, "updated_at": now}).Error
	if err != nil {
		return nil, wrap("update report card status", err)
	}
	card.Status = status
	card.UpdatedAt = now
	return &card, nil
}

func (r *Postgres) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, wrap("get profile", err)
	}
	return &p, nil
}

// CreateProfile inserts the profile; a concurrent insert for the same id
// wins and this call becomes a no-op.
func (r *Postgres) CreateProfile(ctx context.Context, p *models.UserProfile) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(p).Error
	return wrap("create profile", err)
}

func (r *Postgres) SaveProfile(ctx context.Context, p *models.UserProfile) error {
	return wrap("save profile", r.db.WithContext(ctx).Save(p).Error)
}

func (r *Postgres) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return wrap("ping", err)
	}
	return wrap("ping", sqlDB.PingContext(ctx))
}

func newReportCard(ownerID string, f models.ReportCardFields, now time.Time) (*models.ReportCard, error) {
	status := f.Status
	if status == "" {
		status = models.StatusLost
	}
	if !status.Valid() {
		return nil, &Error{Kind: KindValidationFailed, Op: "create report card"}
	}

	return &models.ReportCard{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		FullName:        f.FullName,
		Phone:           f.Phone,
		Email:           f.Email,
		IDType:          f.IDType,
		IDDescription:   f.IDDescription,
		FileDescription: f.FileDescription,
		FileURL:         f.FileURL,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}
