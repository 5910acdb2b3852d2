package progress

import (
	"errors"
	"testing"
)

type flags struct{ active, completed bool }

func TestSteps(t *testing.T) {
	tests := []struct {
		current StepID
		want    []flags
	}{
		{StepTimeSchedule, []flags{{true, false}, {false, false}, {false, false}}},
		{StepAddresses, []flags{{false, true}, {true, false}, {false, false}}},
		{StepConfirmation, []flags{{false, true}, {false, true}, {true, false}}},
		{"payment", []flags{{false, false}, {false, false}, {false, false}}},
	}
	order := []StepID{StepTimeSchedule, StepAddresses, StepConfirmation}

	for _, tt := range tests {
		t.Run(string(tt.current), func(t *testing.T) {
			got := Steps(tt.current)
			if len(got) != len(order) {
				t.Fatalf("Steps() returned %d steps", len(got))
			}
			for i, s := range got {
				if s.ID != order[i] {
					t.Fatalf("step %d id = %s, want %s", i, s.ID, order[i])
				}
				if s.IsActive != tt.want[i].active || s.IsCompleted != tt.want[i].completed {
					t.Errorf("step %s active=%v completed=%v, want %+v", s.ID, s.IsActive, s.IsCompleted, tt.want[i])
				}
				if s.Title == "" || s.Icon == "" {
					t.Errorf("step %s missing title/icon", s.ID)
				}
			}
		})
	}
}

func TestSteps_DoesNotShareState(t *testing.T) {
	first := Steps(StepAddresses)
	first[0].Title = "mutated"
	first[2].IsActive = true

	again := Steps(StepTimeSchedule)
	if again[0].Title != "Time Schedule" {
		t.Fatalf("canonical title mutated through returned slice: %q", again[0].Title)
	}
	if again[2].IsActive {
		t.Fatalf("active flag leaked between calls")
	}
}

func TestParseStepID(t *testing.T) {
	for _, s := range []string{"timeSchedule", "addresses", "confirmation"} {
		if _, err := ParseStepID(s); err != nil {
			t.Errorf("ParseStepID(%q) = %v", s, err)
		}
	}
	if _, err := ParseStepID("Addresses"); !errors.Is(err, ErrUnknownStep) {
		t.Errorf("ParseStepID is case-sensitive, got %v", err)
	}
}

func TestNextPrevious(t *testing.T) {
	if n, ok := Next(StepTimeSchedule); !ok || n != StepAddresses {
		t.Errorf("Next(timeSchedule) = %s, %v", n, ok)
	}
	if n, ok := Next(StepAddresses); !ok || n != StepConfirmation {
		t.Errorf("Next(addresses) = %s, %v", n, ok)
	}
	if _, ok := Next(StepConfirmation); ok {
		t.Errorf("confirmation should have no successor")
	}
	if p, ok := Previous(StepConfirmation); !ok || p != StepAddresses {
		t.Errorf("Previous(confirmation) = %s, %v", p, ok)
	}
	if _, ok := Previous(StepTimeSchedule); ok {
		t.Errorf("timeSchedule should have no predecessor")
	}
	if _, ok := Next("bogus"); ok {
		t.Errorf("unknown step should have no successor")
	}
	if !IsTerminal(StepConfirmation) || IsTerminal(StepAddresses) {
		t.Errorf("only confirmation is terminal")
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to StepID
		want     bool
	}{
		{StepTimeSchedule, StepAddresses, true},
		{StepAddresses, StepConfirmation, true},
		{StepAddresses, StepTimeSchedule, true},
		{StepConfirmation, StepAddresses, true},
		// skipping steps
		{StepTimeSchedule, StepConfirmation, false},
		{StepConfirmation, StepTimeSchedule, false},
		// self loops and unknown states
		{StepAddresses, StepAddresses, false},
		{"bogus", StepAddresses, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
