package services

import (
	"errors"
	"fmt"

	"github.com/anonto42/pressroom/backend/internal/repositories"
)

// Kind classifies workflow failures; the HTTP boundary maps each kind to a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindForbidden
	KindNotFound
	KindRateLimit
	KindConflict
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindRateLimit:
		return "rate_limit"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	}
	return "internal"
}

// Error is a classified workflow error carrying a message fit for the client.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func ValidationError(format string, args ...any) error {
	return newError(KindValidation, format, args...)
}

func ForbiddenError(format string, args ...any) error {
	return newError(KindForbidden, format, args...)
}

func NotFoundError(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

func RateLimitError(format string, args ...any) error {
	return newError(KindRateLimit, format, args...)
}

func ConflictError(format string, args ...any) error {
	return newError(KindConflict, format, args...)
}

func UnauthorizedError(format string, args ...any) error {
	return newError(KindUnauthorized, format, args...)
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// orNotFound converts a repository miss into a NotFound error with msg.
func orNotFound(err error, msg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return NotFoundError("%s", msg)
	}
	return err
}
