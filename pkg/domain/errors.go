package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an element ID does not resolve in the forest.
var ErrNotFound = errors.New("element not found")

// ErrInvalidTarget is returned when a parent is missing or is not a container,
// or when two elements expected to be siblings do not share a parent.
var ErrInvalidTarget = errors.New("invalid target")

// ErrCycle is returned when a move would nest an element under itself or one of its descendants.
var ErrCycle = errors.New("move would create a cycle")

// ErrDuplicateID is returned when an inserted element reuses an ID already present in the forest.
var ErrDuplicateID = errors.New("duplicate element id")

// ErrInvalidProps is returned when a props patch cannot be merged or fails validation.
var ErrInvalidProps = errors.New("invalid props")

// ErrInvalidNode is returned when an element handed to insert is malformed.
var ErrInvalidNode = errors.New("invalid element")

// ErrNestingLimit is returned when an insert or move exceeds the configured container depth.
// It wraps ErrInvalidTarget so callers treating both alike keep working.
var ErrNestingLimit = fmt.Errorf("%w: container nesting limit exceeded", ErrInvalidTarget)

// Code returns a stable, snake_case name for the sentinel err wraps, or "internal".
// ErrNestingLimit is reported as "nesting_limit" even though it also matches ErrInvalidTarget.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrSessionExists):
		return "session_exists"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNestingLimit):
		return "nesting_limit"
	case errors.Is(err, ErrInvalidTarget):
		return "invalid_target"
	case errors.Is(err, ErrCycle):
		return "cycle"
	case errors.Is(err, ErrDuplicateID):
		return "duplicate_id"
	case errors.Is(err, ErrInvalidProps):
		return "invalid_props"
	case errors.Is(err, ErrInvalidNode):
		return "invalid_node"
	default:
		return "internal"
	}
}

// MutationError annotates a failed mutation with the operation and element involved.
type MutationError struct {
	Op  string
	ID  string
	Err error
}

func (e *MutationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.ID, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// ErrSessionNotFound is returned when a session ID is not known to the session manager.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExists is returned when creating a session whose ID is already in use.
var ErrSessionExists = errors.New("session already exists")
