package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/models"
	"github.com/google/uuid"
)

// Memory is a process-local backend for tests and single-node dev runs.
type Memory struct {
	mu       sync.RWMutex
	cards    []models.ReportCard
	profiles map[string]models.UserProfile
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		profiles: make(map[string]models.UserProfile),
		now:      time.Now,
	}
}

// WithClock replaces the time source; returns the receiver for chaining.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) Create(ctx context.Context, ownerID string, fields models.ReportCardFields) (*models.ReportCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("create report card", err)
	}
	card, err := newReportCard(ownerID, fields, m.now().UTC())
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.cards = append(m.cards, *card)
	m.mu.Unlock()

	return card, nil
}

func (m *Memory) ListByOwner(ctx context.Context, ownerID string) ([]models.ReportCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("list report cards", err)
	}

	m.mu.RLock()
	out := make([]models.ReportCard, 0)
	for _, c := range m.cards {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) CountByOwnerAndStatus(ctx context.Context, ownerID string, status models.ReportStatus) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, wrap("count report cards", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, c := range m.cards {
		if c.OwnerID == ownerID && c.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *Memory) UpdateStatus(ctx context.Context, ownerID string, id uuid.UUID, status models.ReportStatus) (*models.ReportCard, error) {
	const op = "update report card status"
	if err := ctx.Err(); err != nil {
		return nil, wrap(op, err)
	}
	if !status.Valid() {
		return nil, &Error{Kind: KindValidationFailed, Op: op}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.cards {
		c := &m.cards[i]
		if c.ID == id && c.OwnerID == ownerID {
			c.Status = status
			c.UpdatedAt = m.now().UTC()
			out := *c
			return &out, nil
		}
	}
	return nil, &Error{Kind: KindNotFound, Op: op}
}

func (m *Memory) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("get profile", err)
	}

	m.mu.RLock()
	p, ok := m.profiles[id]
	m.mu.RUnlock()
	if !ok {
		return nil, &Error{Kind: KindNotFound, Op: "get profile"}
	}
	return &p, nil
}

func (m *Memory) CreateProfile(ctx context.Context, p *models.UserProfile) error {
	if err := ctx.Err(); err != nil {
		return wrap("create profile", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.profiles[p.ID]; exists {
		return nil
	}
	m.stamp(p, true)
	m.profiles[p.ID] = *p
	return nil
}

func (m *Memory) SaveProfile(ctx context.Context, p *models.UserProfile) error {
	if err := ctx.Err(); err != nil {
		return wrap("save profile", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.profiles[p.ID]
	m.stamp(p, !exists)
	m.profiles[p.ID] = *p
	return nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return wrap("ping", ctx.Err())
}

// stamp mirrors GORM's autoCreateTime/autoUpdateTime behaviour.
func (m *Memory) stamp(p *models.UserProfile, created bool) {
	now := m.now().UTC()
	if created && p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}
