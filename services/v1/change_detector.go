package v1

import (
	"context"
	"fmt"

	"statuspulse/models"
)

type Transition int

const (
	NoChange Transition = iota
	Degrade
	Recover
)

func (t Transition) String() string {
	switch t {
	case Degrade:
		return "degrade"
	case Recover:
		return "recover"
	default:
		return "no-change"
	}
}

// Change is the classification of the two most recent checks.
type Change struct {
	Transition Transition
	Current    models.StatusCheck
	Previous   models.StatusCheck
}

// Classify compares the two newest checks (newest first). Only IsUp
// matters; with fewer than two checks nothing has changed.
func Classify(checks []models.StatusCheck) Change {
	if len(checks) < 2 {
		return Change{Transition: NoChange}
	}
	current, previous := checks[0], checks[1]
	c := Change{Current: current, Previous: previous}
	switch {
	case previous.IsUp && !current.IsUp:
		c.Transition = Degrade
	case !previous.IsUp && current.IsUp:
		c.Transition = Recover
	default:
		c.Transition = NoChange
	}
	return c
}

type ChangeDetector struct {
	store CheckStore
}

func NewChangeDetector(store CheckStore) *ChangeDetector {
	return &ChangeDetector{store: store}
}

func (d *ChangeDetector) Detect(ctx context.Context, serviceID int64) (Change, error) {
	checks, err := d.store.FindRecentStatusChecks(ctx, serviceID, 2)
	if err != nil {
		return Change{Transition: NoChange}, fmt.Errorf("load recent checks: %w", err)
	}
	return Classify(checks), nil
}
