package records

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

var (
	ErrValidation          = errors.New("records: validation failed")
	ErrStoreUnavailable    = errors.New("records: store unavailable")
	ErrNotFound            = errors.New("records: record not found")
	ErrReorderInconsistent = errors.New("records: reorder failed, order may be inconsistent")

	ErrNoDraft        = errors.New("records: no draft open")
	ErrSaveInProgress = errors.New("records: save already in progress")
	ErrFieldPath      = errors.New("records: invalid field path")
	ErrIDImmutable    = errors.New("records: id cannot be edited")
	ErrActorRequired  = errors.New("records: acting user id required")
)

// ValidationError reports which fields blocked a save. The draft stays open.
type ValidationError struct {
	Collection string
	Issues     validation.Errors
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Collection, e.Issues.Error())
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Fields returns the offending field names in sorted order.
func (e *ValidationError) Fields() []string {
	if e == nil {
		return nil
	}
	out := make([]string, 0, len(e.Issues))
	for field := range e.Issues {
		out = append(out, field)
	}
	slices.Sort(out)
	return out
}

func newValidationError(collection string, issues validation.Errors) *ValidationError {
	return &ValidationError{Collection: collection, Issues: issues}
}

// NotFoundError reports a record that vanished between refresh and action.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func notFound(collection string, id uuid.UUID) error {
	return &NotFoundError{Resource: collection, Key: id.String()}
}

// StoreError wraps a transport or backend failure raised by the table store.
type StoreError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrStoreUnavailable.Error(), e.Op, e.Collection, e.Err)
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ReorderError reports a swap where the first write landed and the second did not.
type ReorderError struct {
	Collection string
	Moved      uuid.UUID
	Neighbor   uuid.UUID
	Err        error
}

func (e *ReorderError) Error() string {
	return fmt.Sprintf("%s: %s %s<->%s: %v", ErrReorderInconsistent.Error(), e.Collection, e.Moved, e.Neighbor, e.Err)
}

func (e *ReorderError) Is(target error) bool {
	return target == ErrReorderInconsistent
}

func (e *ReorderError) Unwrap() error {
	return e.Err
}

// Kind classifies err into the taxonomy surfaced to the shell.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrReorderInconsistent):
		return "reorder_inconsistent"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "internal"
	}
}

func requiredIssue(field string) error {
	code := "records." + strings.ReplaceAll(field, ".", "_") + "_required"
	return validation.NewError(code, field+" is required")
}
