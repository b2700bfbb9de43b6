package ledger

import (
	"errors"
	"fmt"

	"github.com/mmynk/familyspend/internal/storage"
)

// Domain error codes.
const (
	CodeNoAdmin        = "no-admin"
	CodeTargetIsAdmin  = "target-is-admin"
	CodeMemberNotFound = "member-not-found"
	CodeAdminExists    = "admin-exists"
)

// ErrNoSession is returned when an operation is attempted without a session.
var ErrNoSession = errors.New("not signed in")

// ValidationError reports a missing or malformed input field.
// It is always returned before any store call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// DomainError reports a business-rule violation. No mutation has happened.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// RemoteError wraps a store failure.
type RemoteError struct {
	Op  string
	Err error

	// NotFound is set when the target row does not exist.
	NotFound bool

	// Partial is set when a multi-step operation committed its first step
	// before failing. Repeating the operation completes it.
	Partial bool
}

func (e *RemoteError) Error() string {
	if e.Partial {
		return fmt.Sprintf("%s: partially applied: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func remoteError(op string, err error) *RemoteError {
	return &RemoteError{
		Op:       op,
		Err:      err,
		NotFound: errors.Is(err, storage.ErrNotFound),
	}
}

func validationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func domainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}
