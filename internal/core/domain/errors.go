package domain

import "errors"

// ============================================================================
// Error Kinds
// ============================================================================

// Every registry error carries one or more kinds. Callers match either the
// concrete error or its kind with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation error")
	ErrUnresolvable = errors.New("unresolvable")
)

type registryError struct {
	msg   string
	kinds []error
}

func (e *registryError) Error() string   { return e.msg }
func (e *registryError) Unwrap() []error { return e.kinds }

func newError(msg string, kinds ...error) error {
	return &registryError{msg: msg, kinds: kinds}
}

// ============================================================================
// Model Registry Errors
// ============================================================================

// Not found errors
var (
	ErrModelNotFound   = newError("registered model not found", ErrNotFound)
	ErrVersionNotFound = newError("model version not found", ErrNotFound)
)

// Conflict errors
var (
	ErrModelNameConflict = newError("model with this name already exists", ErrConflict)
	ErrVersionConflict   = newError("could not allocate a unique version number", ErrConflict)

	// ErrVersionNumberTaken is returned by repositories when the allocated
	// number lost a race. Services retry it; callers never see it.
	ErrVersionNumberTaken = newError("version number already taken", ErrConflict)
)

// Validation errors
var (
	ErrInvalidModelName     = newError("model name must be non-empty and must not contain '/'", ErrValidation)
	ErrInvalidMetadata      = newError("metadata must map non-empty string keys to JSON values", ErrValidation)
	ErrInvalidLabel         = newError("labels must be non-empty strings", ErrValidation)
	ErrInvalidCheckpointRef = newError("checkpoint reference is required", ErrValidation)
	ErrInvalidVersionNumber = newError("version number must be a positive integer", ErrValidation)
	ErrInvalidSortBy        = newError("unsupported sort_by value", ErrValidation)
	ErrInvalidOrder         = newError("order must be ASC or DESC", ErrValidation)
)

// Checkpoint errors
var (
	ErrCheckpointNotFound = newError("checkpoint could not be resolved", ErrUnresolvable, ErrNotFound)
)
