// Package lifecycle holds the reel status rules.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/Pratham4590/PBM-OP-sub000/internal/model"
)

// Roles allowed to override a reel's status by hand.
const (
	RoleOperator   = "operator"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

var (
	// ErrBlocked is returned by CanRule for reels in Finished or Hold.
	ErrBlocked = errors.New("reel does not accept rulings in its current status")
	// ErrNotElevated is returned by AuthorizeManual for roles below supervisor.
	ErrNotElevated = errors.New("manual status change requires an elevated role")
	// ErrUnknownStatus is returned by Parse.
	ErrUnknownStatus = errors.New("unknown reel status")
	// ErrNoChange is returned by AuthorizeManual when from == to.
	ErrNoChange = errors.New("reel already has the requested status")
)

var statuses = map[string]model.ReelStatus{
	string(model.ReelAvailable): model.ReelAvailable,
	string(model.ReelInUse):     model.ReelInUse,
	string(model.ReelFinished):  model.ReelFinished,
	string(model.ReelHold):      model.ReelHold,
}

// Parse maps a wire value onto a ReelStatus.
func Parse(s string) (model.ReelStatus, error) {
	st, ok := statuses[s]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

// CanRule reports whether a reel in status may take new ruling entries.
func CanRule(status model.ReelStatus) error {
	switch status {
	case model.ReelFinished, model.ReelHold:
		return ErrBlocked
	}
	return nil
}

// AfterRuling is the automatic transition applied once a ruling commits.
func AfterRuling(newAvailable, finishThreshold int64) model.ReelStatus {
	if newAvailable < finishThreshold {
		return model.ReelFinished
	}
	return model.ReelInUse
}

// IsElevated reports whether role may perform manual overrides.
func IsElevated(role string) bool {
	return role == RoleSupervisor || role == RoleAdmin
}

// AuthorizeManual checks a manual transition. Any state may move to any other
// state, but only for elevated roles.
func AuthorizeManual(role string, from, to model.ReelStatus) error {
	if !IsElevated(role) {
		return ErrNotElevated
	}
	if _, ok := statuses[string(to)]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if from == to {
		return ErrNoChange
	}
	return nil
}

// CountsTowardStock reports whether a reel in status contributes to its paper
// type's stock aggregate.
func CountsTowardStock(status model.ReelStatus) bool {
	return status != model.ReelFinished
}
