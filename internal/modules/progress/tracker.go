// README: Pure projection of the booking flow from the caller-owned current step.
package progress

// Steps projects the canonical flow for current. An unknown current step
// yields every step inactive and incomplete.
func Steps(current StepID) []Step {
	cur := index(current)
	out := make([]Step, len(canonical))
	for i, d := range canonical {
		out[i] = Step{
			ID:          d.id,
			Title:       d.title,
			Icon:        d.icon,
			IsActive:    d.id == current,
			IsCompleted: cur >= 0 && i < cur,
		}
	}
	return out
}

// Next returns the step after id; confirmation has no successor.
func Next(id StepID) (StepID, bool) {
	i := index(id)
	if i < 0 || i+1 >= len(canonical) {
		return "", false
	}
	return canonical[i+1].id, true
}

func Previous(id StepID) (StepID, bool) {
	i := index(id)
	if i <= 0 {
		return "", false
	}
	return canonical[i-1].id, true
}

func IsTerminal(id StepID) bool {
	return id == StepConfirmation
}
