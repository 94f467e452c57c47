// Package apperr is the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
)

type Kind int

const (
	KindStore Kind = iota
	KindValidation
	KindNotFound
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindTransient:
		return "transient"
	default:
		return "store"
	}
}

// Error carries a kind and a caller-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error { return &Error{Kind: KindValidation, Message: msg} }

func NotFound(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }

// Transient marks a temporary refusal; msg is the retry-later text shown to users.
func Transient(msg string, err error) error {
	return &Error{Kind: KindTransient, Message: msg, Err: err}
}

func Store(err error) error { return &Error{Kind: KindStore, Err: err} }

// KindOf reports the kind of err; unclassified errors are store errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

func Is(err error, k Kind) bool { return err != nil && KindOf(err) == k }

// Message returns the caller-facing text for err.
// Transient and validation errors expose only their message; store errors expose the raw cause.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindValidation, KindNotFound, KindTransient:
			return e.Message
		}
		if e.Err != nil {
			return e.Err.Error()
		}
		return e.Message
	}
	return err.Error()
}

// Postgres SQLSTATE codes that mean "try again shortly".
var transientCodes = map[string]struct{}{
	"55P03": {}, // lock_not_available
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
}

// IsTransientStore reports whether a raw store error is a temporary refusal.
func IsTransientStore(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if _, ok := transientCodes[pgErr.Code]; ok {
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "streaming buffer")
}

// FromStore classifies a raw store error. transientMsg is used when the store
// refuses a mutation temporarily; reads pass "" and keep the raw message.
func FromStore(err error, transientMsg string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if transientMsg != "" && IsTransientStore(err) {
		return Transient(transientMsg, err)
	}
	return Store(err)
}

// FromValidator maps the first failed validator tag to msg.
// Non-validator errors are returned as a validation error with their own text.
func FromValidator(err error, msg string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return Validation(msg)
	}
	return Validation(err.Error())
}
