package rentals

import (
	"fmt"

	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// Open rentals hold their vehicle.
func (s Status) Open() bool { return s == StatusPending || s == StatusActive }

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusActive: true, StatusCancelled: true},
	StatusActive:    {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted: {},
	StatusCancelled: {},
}

// order in which NextStatuses lists targets
var statusOrder = []Status{StatusPending, StatusActive, StatusCompleted, StatusCancelled}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// NextStatuses lists the legal targets from s.
func NextStatuses(s Status) []Status {
	out := []Status{}
	for _, to := range statusOrder {
		if validNext[s][to] {
			out = append(out, to)
		}
	}
	return out
}

// Step is what a legal transition requires besides the status write.
type Step struct {
	From, To Status
	// VehicleStatus is written with the rental; empty leaves the vehicle alone.
	VehicleStatus catalog.Status
	// ReconcilePrice asks for the total to be re-derived when it is zero.
	ReconcilePrice bool
}

// Next validates from -> to and returns the step to perform.
func Next(from, to Status) (Step, error) {
	if !to.Valid() {
		return Step{}, fmt.Errorf("%w: unknown status %q", ErrIllegalTransition, to)
	}
	if !CanTransition(from, to) {
		return Step{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	st := Step{From: from, To: to}
	switch to {
	case StatusActive:
		st.ReconcilePrice = true
	case StatusCompleted, StatusCancelled:
		st.VehicleStatus = catalog.StatusAvailable
	}
	return st, nil
}
