// README: Weekly recurring trip schedule, per-day overrides and day/time value types.
package schedule

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

type Day string

const (
	Monday    Day = "mon"
	Tuesday   Day = "tue"
	Wednesday Day = "wed"
	Thursday  Day = "thu"
	Friday    Day = "fri"
	Saturday  Day = "sat"
	Sunday    Day = "sun"
)

// Days is the canonical week order.
var Days = [7]Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func ParseDay(s string) (Day, error) {
	d := Day(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: unknown day %q", ErrInvalidSchedule, s)
	}
	return d, nil
}

func (d Day) Valid() bool {
	return d.index() >= 0
}

func (d Day) index() int {
	for i, v := range Days {
		if v == d {
			return i
		}
	}
	return -1
}

func (d Day) Weekday() time.Weekday {
	// Days starts on Monday, time.Weekday on Sunday.
	return time.Weekday((d.index() + 1) % 7)
}

func DayOf(w time.Weekday) Day {
	return Days[(int(w)+6)%7]
}

// TimeOfDay is a wall-clock time encoded as "HH:MM".
type TimeOfDay struct {
	Hour   int
	Minute int
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: time %q must be HH:MM", ErrInvalidSchedule, s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func MustTime(s string) *TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return &t
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On returns t on the calendar date of date, in date's location.
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, date.Location())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time of day: %w", err)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// DayTimes overrides the default times for one day. A nil field falls back
// to the schedule default.
type DayTimes struct {
	OutboundTime *TimeOfDay `json:"outboundTime"`
	ReturnTime   *TimeOfDay `json:"returnTime"`
}

type CustomizedDays map[Day]DayTimes

func (c CustomizedDays) clone() CustomizedDays {
	out := make(CustomizedDays, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

type WeeklySchedule struct {
	SelectedDays   []Day          `json:"selectedDays"`
	SelectedTime   *TimeOfDay     `json:"selectedTime"`
	ReturnTime     *TimeOfDay     `json:"returnTime"`
	IsReturnTrip   bool           `json:"isReturnTrip"`
	CustomizedDays CustomizedDays `json:"customizedDays"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Validate checks day tokens and that every override belongs to a selected day.
func (w WeeklySchedule) Validate() error {
	seen := make(map[Day]bool, len(w.SelectedDays))
	for _, d := range w.SelectedDays {
		if !d.Valid() {
			return fmt.Errorf("%w: unknown day %q", ErrInvalidSchedule, d)
		}
		if seen[d] {
			return fmt.Errorf("%w: day %q selected twice", ErrInvalidSchedule, d)
		}
		seen[d] = true
	}
	for d := range w.CustomizedDays {
		if !d.Valid() {
			return fmt.Errorf("%w: unknown customized day %q", ErrInvalidSchedule, d)
		}
		if !seen[d] {
			return fmt.Errorf("%w: day %q customized but not selected", ErrInvalidSchedule, d)
		}
	}
	return nil
}

// Normalize dedupes selected days into week order, drops unknown day tokens
// and drops overrides for days that are no longer selected.
func (w WeeklySchedule) Normalize() WeeklySchedule {
	set := make(map[Day]bool, len(w.SelectedDays))
	days := make([]Day, 0, len(w.SelectedDays))
	for _, d := range w.SelectedDays {
		if !d.Valid() || set[d] {
			continue
		}
		set[d] = true
		days = append(days, d)
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].index() < days[j].index() })
	w.SelectedDays = days

	custom := make(CustomizedDays, len(w.CustomizedDays))
	for d, t := range w.CustomizedDays {
		if set[d] {
			custom[d] = t
		}
	}
	w.CustomizedDays = custom
	return w
}

func (w WeeklySchedule) IsSelected(d Day) bool {
	for _, s := range w.SelectedDays {
		if s == d {
			return true
		}
	}
	return false
}

// TimesFor resolves the effective times for d: the override wins over the
// default, and the return time is dropped for one-way schedules.
func (w WeeklySchedule) TimesFor(d Day) (DayTimes, bool) {
	if !w.IsSelected(d) {
		return DayTimes{}, false
	}
	out := DayTimes{OutboundTime: w.SelectedTime, ReturnTime: w.ReturnTime}
	if o, ok := w.CustomizedDays[d]; ok {
		if o.OutboundTime != nil {
			out.OutboundTime = o.OutboundTime
		}
		if o.ReturnTime != nil {
			out.ReturnTime = o.ReturnTime
		}
	}
	if !w.IsReturnTrip {
		out.ReturnTime = nil
	}
	return out, true
}

// Trip is one dated occurrence of the weekly schedule.
type Trip struct {
	Date     time.Time  `json:"date"`
	Day      Day        `json:"day"`
	Outbound time.Time  `json:"outbound"`
	Return   *time.Time `json:"return,omitempty"`
}

// Occurrences expands the schedule over days calendar days starting at from's
// date. Days without a resolvable outbound time are skipped.
func (w WeeklySchedule) Occurrences(from time.Time, days int) []Trip {
	var trips []Trip
	y, m, d := from.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, from.Location())
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)
		day := DayOf(date.Weekday())
		times, ok := w.TimesFor(day)
		if !ok || times.OutboundTime == nil {
			continue
		}
		trip := Trip{Date: date, Day: day, Outbound: times.OutboundTime.On(date)}
		if times.ReturnTime != nil {
			ret := times.ReturnTime.On(date)
			trip.Return = &ret
		}
		trips = append(trips, trip)
	}
	return trips
}

// customizedRecord is the persisted form of CustomizedDays.
type customizedRecord struct {
	CustomizedDays CustomizedDays `json:"customizedDays"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Snapshot is the aggregate read returned by LoadAll.
type Snapshot struct {
	Schedule       *WeeklySchedule `json:"schedule"`
	CustomizedDays CustomizedDays  `json:"customizedDays"`
	RetrievedAt    time.Time       `json:"retrievedAt"`
}
