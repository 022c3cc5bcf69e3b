package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error so callers can react without string matching.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindInvalidSelection Kind = "invalid_selection"
	KindImmutable        Kind = "immutable"
	KindValidation       Kind = "validation"
	KindUnauthorized     Kind = "unauthorized"
	KindConflict         Kind = "conflict"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidSelection = errors.New("some records not found, not owned, or already invoiced")
	ErrImmutable        = errors.New("record cannot be modified in its current state")
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrConflict         = errors.New("conflict")
)

var kindSentinels = map[Kind]error{
	KindNotFound:         ErrNotFound,
	KindInvalidSelection: ErrInvalidSelection,
	KindImmutable:        ErrImmutable,
	KindValidation:       ErrValidation,
	KindUnauthorized:     ErrUnauthorized,
	KindConflict:         ErrConflict,
}

// Error is a classified failure carrying the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = kindSentinels[e.Kind].Error()
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// NotFound reports a missing or foreign record.
func NotFound(op, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Validation reports malformed input.
func Validation(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Immutable reports a mutation rejected by the record's state.
func Immutable(op, format string, args ...any) *Error {
	return &Error{Kind: KindImmutable, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// InvalidSelection reports a failed claim over shift or mileage ids.
func InvalidSelection(op string, err error) *Error {
	return &Error{Kind: KindInvalidSelection, Op: op, Msg: ErrInvalidSelection.Error(), Err: err}
}

// Unauthorized reports a failed credential or token check.
func Unauthorized(op, msg string) *Error {
	return &Error{Kind: KindUnauthorized, Op: op, Msg: msg}
}

// Conflict reports a uniqueness or dependency clash.
func Conflict(op, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first domain error in err's chain.
func KindOf(err error) (Kind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}
