// README: Booking-flow step identifiers and the canonical step list.
package progress

import (
	"errors"
	"fmt"
)

type StepID string

const (
	StepTimeSchedule StepID = "timeSchedule"
	StepAddresses    StepID = "addresses"
	StepConfirmation StepID = "confirmation"
)

var ErrUnknownStep = errors.New("unknown progress step")

// Step is one projected entry of the booking flow.
type Step struct {
	ID          StepID `json:"id"`
	Title       string `json:"title"`
	Icon        string `json:"icon"`
	IsActive    bool   `json:"isActive"`
	IsCompleted bool   `json:"isCompleted"`
}

type definition struct {
	id    StepID
	title string
	icon  string
}

// canonical is an array value, so every read works on a copy.
var canonical = [...]definition{
	{id: StepTimeSchedule, title: "Time Schedule", icon: "calendar"},
	{id: StepAddresses, title: "Addresses", icon: "location"},
	{id: StepConfirmation, title: "Confirmation", icon: "checkmark-circle"},
}

// AllowedTransitions represents the booking flow as code: one step forward or back.
var AllowedTransitions = map[StepID][]StepID{
	StepTimeSchedule: {StepAddresses},
	StepAddresses:    {StepConfirmation, StepTimeSchedule},
	StepConfirmation: {StepAddresses},
}

func CanTransition(from, to StepID) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

func ParseStepID(s string) (StepID, error) {
	id := StepID(s)
	if index(id) < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownStep, s)
	}
	return id, nil
}

func index(id StepID) int {
	for i, d := range canonical {
		if d.id == id {
			return i
		}
	}
	return -1
}
