package progress

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes progress errors.
type ErrorCode string

const (
	// ErrCodeCatalog indicates a missing, empty or malformed catalog.
	// Fatal: nothing can be scheduled.
	ErrCodeCatalog ErrorCode = "CATALOG"

	// ErrCodeSnapshotRead indicates the persisted snapshot could not be read
	// or parsed. Recoverable: defaults were used instead.
	ErrCodeSnapshotRead ErrorCode = "SNAPSHOT_READ"

	// ErrCodePersistWrite indicates the table could not be written.
	// Recoverable: memory stays authoritative for the session.
	ErrCodePersistWrite ErrorCode = "PERSIST_WRITE"

	// ErrCodeInvalidArgument indicates a caller bug such as a non-positive
	// card id. Nothing was mutated.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("progress store is closed")

	// ErrNotReady is returned by mutations before Init has succeeded.
	ErrNotReady = errors.New("progress store is not initialized")
)

// Error is a categorized progress error.
type Error struct {
	Code    ErrorCode
	Message string

	// CardID identifies the card involved, if any.
	CardID int

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.CardID != 0 {
		msg = fmt.Sprintf("%s (card=%d)", msg, e.CardID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the ErrorCode of err, or "" if err is not an *Error.
func CodeOf(err error) ErrorCode {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsCatalogError reports whether err blocks all further use.
func IsCatalogError(err error) bool {
	return CodeOf(err) == ErrCodeCatalog
}

// IsRecoverable reports whether err is a warning the session can continue past.
func IsRecoverable(err error) bool {
	switch CodeOf(err) {
	case ErrCodeSnapshotRead, ErrCodePersistWrite:
		return true
	default:
		return false
	}
}

// IsInvalidArgument reports whether err was caused by a bad command argument.
func IsInvalidArgument(err error) bool {
	return CodeOf(err) == ErrCodeInvalidArgument
}

func newCatalogError(err error) *Error {
	return &Error{Code: ErrCodeCatalog, Message: "catalog cannot be scheduled", Err: err}
}

func newSnapshotError(err error) *Error {
	return &Error{Code: ErrCodeSnapshotRead, Message: "saved progress could not be loaded, starting fresh", Err: err}
}

func newWriteError(err error) *Error {
	return &Error{Code: ErrCodePersistWrite, Message: "progress may not persist", Err: err}
}

func newInvalidArgument(cardID int, message string) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Message: message, CardID: cardID}
}
