package repository

import (
	"context"
	"database/sql"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Kind classifies a repository failure independent of the backend driver.
type Kind string

const (
	KindDuplicateKey     Kind = "duplicate_key"
	KindValidationFailed Kind = "validation_failed"
	KindUnavailable      Kind = "unavailable"
	KindNotFound         Kind = "not_found"
	KindUnknown          Kind = "unknown"
)

// Error wraps a backend failure with a stable Kind. errors.Is matches by Kind.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

var (
	ErrDuplicateKey     = &Error{Kind: KindDuplicateKey}
	ErrValidationFailed = &Error{Kind: KindValidationFailed}
	ErrUnavailable      = &Error{Kind: KindUnavailable}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrUnknown          = &Error{Kind: KindUnknown}
)

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// wrap classifies a driver error. Errors that already carry a Kind are kept.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	return &Error{Kind: classify(err), Op: op, Err: err}
}

func classify(err error) Kind {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifySQLState(pgErr.Code)
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, sql.ErrNoRows):
		return KindNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return KindDuplicateKey
	case errors.Is(err, gorm.ErrCheckConstraintViolated),
		errors.Is(err, gorm.ErrInvalidData),
		errors.Is(err, gorm.ErrInvalidField):
		return KindValidationFailed
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, sql.ErrConnDone),
		errors.As(err, &connectErr),
		errors.As(err, &netErr),
		pgconn.Timeout(err):
		return KindUnavailable
	}
	return KindUnknown
}

// classifySQLState maps PostgreSQL SQLSTATE codes.
func classifySQLState(code string) Kind {
	switch code {
	case "23505":
		return KindDuplicateKey
	case "23502", "23514", "23503", "22001", "22P02", "22007", "22008", "22023":
		return KindValidationFailed
	case "57P01", "57P02", "57P03", "53300", "57014":
		return KindUnavailable
	}
	if len(code) >= 2 && code[:2] == "08" {
		return KindUnavailable
	}
	return KindUnknown
}
