package models

import (
	"time"

	"github.com/google/uuid"
)

type ReportStatus string

const (
	StatusLost     ReportStatus = "lost"
	StatusFound    ReportStatus = "found"
	StatusResolved ReportStatus = "resolved"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case StatusLost, StatusFound, StatusResolved:
		return true
	}
	return false
}

// ReportCard is a report about a lost or found identification document.
// Owner and timestamps are set server-side only.
type ReportCard struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID         string       `gorm:"size:128;not null;index:idx_report_cards_owner_created,priority:1" json:"ownerId"`
	FullName        string       `gorm:"not null;size:255" json:"fullName"`
	Phone           string       `gorm:"not null;size:50" json:"phone"`
	Email           string       `gorm:"not null;size:255" json:"email"`
	IDType          string       `gorm:"column:id_type;not null;size:50" json:"idType"`
	IDDescription   string       `gorm:"column:id_description;not null;type:text" json:"idDescription"`
	FileDescription *string      `gorm:"type:text" json:"fileDescription"`
	FileURL         *string      `gorm:"column:file_url;size:2048" json:"fileUrl,omitempty"`
	Status          ReportStatus `gorm:"not null;default:'lost';size:20;check:chk_report_cards_status,status IN ('lost','found','resolved')" json:"status"`
	CreatedAt       time.Time    `gorm:"not null;index:idx_report_cards_owner_created,priority:2,sort:desc" json:"createdAt"`
	UpdatedAt       time.Time    `gorm:"not null" json:"updatedAt"`
}

// ReportCardFields are the caller-supplied parts of a ReportCard.
// An empty Status means StatusLost.
type ReportCardFields struct {
	Status          ReportStatus
	FullName        string
	Phone           string
	Email           string
	IDType          string
	IDDescription   string
	FileDescription *string
	FileURL         *string
}

// ReportStats summarises one owner's report cards by status.
type ReportStats struct {
	CardsReported int64 `json:"cardsReported"`
	CardsFound    int64 `json:"cardsFound"`
	CardsResolved int64 `json:"cardsResolved"`
}
