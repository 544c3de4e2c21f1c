package sales

import (
	"fmt"

	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// Holds reports whether a sale in this status keeps its vehicle terjual.
func (s Status) Holds() bool { return s == StatusPending || s == StatusCompleted }

// A sale has no active state: pending resolves once, either way.
var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted: {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func NextStatuses(s Status) []Status {
	out := []Status{}
	for _, to := range []Status{StatusCompleted, StatusCancelled} {
		if validNext[s][to] {
			out = append(out, to)
		}
	}
	return out
}

type Step struct {
	From, To      Status
	VehicleStatus catalog.Status
}

func Next(from, to Status) (Step, error) {
	if !to.Valid() {
		return Step{}, fmt.Errorf("%w: unknown status %q", ErrIllegalTransition, to)
	}
	if !CanTransition(from, to) {
		return Step{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	st := Step{From: from, To: to}
	switch to {
	case StatusCompleted:
		st.VehicleStatus = catalog.StatusSold
	case StatusCancelled:
		st.VehicleStatus = catalog.StatusAvailable
	}
	return st, nil
}
