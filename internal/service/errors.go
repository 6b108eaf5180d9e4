package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Pratham4590/PBM-OP-sub000/internal/lifecycle"
	"github.com/Pratham4590/PBM-OP-sub000/internal/model"
	"github.com/Pratham4590/PBM-OP-sub000/internal/repository"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrDuplicate = errors.New("already exists")

	// ErrReelHasRulings blocks hard deletion of a reel that rulings reference.
	ErrReelHasRulings = errors.New("reel has rulings and cannot be deleted")

	// ErrExtractionUnavailable means the label extraction service could not be reached.
	ErrExtractionUnavailable = errors.New("extraction service unavailable")
)

// ValidationError carries every field problem found in one request. Keys are JSON
// paths such as "entries[1].cutoff_cm".
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// InsufficientCapacityError is returned when a submission asks for more sheets than
// the reel has left.
type InsufficientCapacityError struct {
	Requested int64
	Available int64
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity: requested %d sheets, %d available", e.Requested, e.Available)
}

// InvalidReelStateError is returned when the reel is Finished or on Hold.
type InvalidReelStateError struct {
	Status model.ReelStatus
}

func (e *InvalidReelStateError) Error() string {
	return fmt.Sprintf("reel is %s and does not accept rulings", e.Status)
}

// ConflictError means the atomic unit kept losing races and gave up. Callers may
// resubmit.
type ConflictError struct {
	Attempts int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("concurrent update conflict after %d attempts", e.Attempts)
}

func (e *ConflictError) Unwrap() error { return repository.ErrConflict }

// PersistenceError wraps a storage failure that survived the retry budget.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return "persistence failure: " + e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }

// isCallerError reports errors caused by the request itself. These are never retried.
func isCallerError(err error) bool {
	var (
		ve  *ValidationError
		ice *InsufficientCapacityError
		ise *InvalidReelStateError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &ice), errors.As(err, &ise):
		return true
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden), errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrReelHasRulings):
		return true
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrDuplicate):
		return true
	case errors.Is(err, lifecycle.ErrNoChange), errors.Is(err, lifecycle.ErrNotElevated),
		errors.Is(err, lifecycle.ErrUnknownStatus), errors.Is(err, lifecycle.ErrBlocked):
		return true
	}
	return false
}

// translate maps repository sentinels onto the service taxonomy.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrDuplicate
	}
	return err
}
