package services

import (
	"errors"
	"fmt"

	"github.com/shashiranjanraj/groupcart/app/repositories"
)

// Kind classifies an AppError for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// AppError is the error every service returns to its callers. Message is
// safe to show to clients; Err carries the cause for logs.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
	Fields  map[string]string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func newErr(kind Kind, msg string, err error) *AppError {
	return &AppError{Kind: kind, Message: msg, Err: err}
}

func validation(msg string) *AppError          { return newErr(KindValidation, msg, nil) }
func notFound(msg string) *AppError            { return newErr(KindNotFound, msg, nil) }
func conflict(msg string, err error) *AppError { return newErr(KindConflict, msg, err) }
func forbidden(msg string) *AppError           { return newErr(KindForbidden, msg, nil) }
func internal(msg string, err error) *AppError { return newErr(KindInternal, msg, err) }

// Sentinels callers can match with errors.Is.
var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrCartEmpty      = ErrEmptyCart
	ErrAlreadyOrdered = errors.New("group has already been ordered")
	ErrLocked         = errors.New("checkout already in progress for this group")
	ErrNegativeRate   = errors.New("rates must not be negative")
	ErrGroupClosed    = errors.New("group is no longer accepting changes")
	ErrNotMember      = errors.New("not a member of this group")
	ErrNotOwner       = errors.New("cart item belongs to another participant")
)

// KindOf reports the Kind of err, or KindInternal when err is not an
// AppError.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// lookup maps a repository read failure onto NotFound or Internal.
func lookup(what string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound(what + " not found")
	}
	return internal("failed to load "+what, err)
}
