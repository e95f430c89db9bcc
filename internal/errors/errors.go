package errors

import (
	"errors"
	"fmt"
)

var ErrUnauthorized = errors.New("user is not authorized")
var ErrForbidden = errors.New("operation is forbidden for user")

// Kind classifies a domain failure. Handlers map kinds to HTTP status codes.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindInvalidInput
	KindUnauthorized
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthorized:
		return "unauthorized"
	case KindStorage:
		return "storage_failure"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by the service layer.
type Error struct {
	Kind   Kind
	Entity string
	ID     int64
	Field  string
	Reason string
	Action string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
	case KindConflict:
		return e.Reason
	case KindInvalidInput:
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	case KindUnauthorized:
		if e.Reason != "" {
			return e.Reason
		}
		return fmt.Sprintf("not permitted to %s", e.Action)
	case KindStorage:
		// storage details stay in logs
		return "a storage error occurred"
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "unexpected error"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(entity string, id int64) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Reason: fmt.Sprintf(format, args...)}
}

func Invalid(field, reason string) *Error {
	return &Error{Kind: KindInvalidInput, Field: field, Reason: reason}
}

func Unauthorized(action string) *Error {
	return &Error{Kind: KindUnauthorized, Action: action, Err: ErrForbidden}
}

// Unauthenticated is an Unauthorized error with a fixed user-facing message,
// used for failed logins where the cause must not be revealed.
func Unauthenticated(reason string) *Error {
	return &Error{Kind: KindUnauthorized, Action: "authenticate", Reason: reason, Err: ErrUnauthorized}
}

func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Wrap returns err unchanged when it already carries a kind,
// otherwise it is classified as a storage failure.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindUnknown {
		return err
	}
	return Storage(err)
}
