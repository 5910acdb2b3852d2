// README: Schedule service scopes storage per rider and owns merge/validation rules.
package schedule

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"commute/internal/kv"
	"commute/internal/types"
)

var (
	ErrStorageWrite       = errors.New("schedule storage write failed")
	ErrStorageUnavailable = errors.New("schedule storage unavailable")
	ErrInvalidSchedule    = errors.New("invalid schedule")
	ErrNotFound           = errors.New("schedule not found")
	ErrBadRequest         = errors.New("bad request")
)

// MaxTripWindowDays bounds UpcomingTrips expansion.
const MaxTripWindowDays = 62

type Service struct {
	backend kv.Backend
	log     *zap.Logger
	now     func() time.Time
}

func NewService(backend kv.Backend, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{backend: backend, log: log, now: time.Now}
}

// Store returns the schedule store scoped to one rider.
func (s *Service) Store(rider types.ID) *Store {
	st := NewStore(kv.Namespace(s.backend, "rider:"+string(rider)+":"), s.log.With(zap.String("rider_id", string(rider))))
	st.now = s.now
	return st
}

func (s *Service) Get(ctx context.Context, rider types.ID) (Snapshot, error) {
	if !rider.Valid() {
		return Snapshot{}, ErrBadRequest
	}
	return s.Store(rider).LoadAll(ctx)
}

// Save normalizes, validates and atomically persists a full schedule.
func (s *Service) Save(ctx context.Context, rider types.ID, w WeeklySchedule) (WeeklySchedule, error) {
	if !rider.Valid() {
		return WeeklySchedule{}, ErrBadRequest
	}
	if err := w.Validate(); err != nil {
		return WeeklySchedule{}, err
	}
	w = w.Normalize()
	w.Timestamp = s.now().UTC()
	if err := s.Store(rider).SaveAll(ctx, w); err != nil {
		s.log.Error("save schedule", zap.String("rider_id", string(rider)), zap.Error(err))
		return WeeklySchedule{}, err
	}
	s.log.Info("schedule saved",
		zap.String("rider_id", string(rider)),
		zap.Int("days", len(w.SelectedDays)),
		zap.Int("customized", len(w.CustomizedDays)),
		zap.Bool("return_trip", w.IsReturnTrip),
	)
	return w, nil
}

// SetDayOverride merges one day's times into the stored schedule.
func (s *Service) SetDayOverride(ctx context.Context, rider types.ID, day Day, times DayTimes) (WeeklySchedule, error) {
	if !day.Valid() {
		return WeeklySchedule{}, ErrInvalidSchedule
	}
	w, err := s.load(ctx, rider)
	if err != nil {
		return WeeklySchedule{}, err
	}
	// Stored records may predate validation; repair before merging.
	w = w.Normalize()
	if !w.IsSelected(day) {
		return WeeklySchedule{}, ErrInvalidSchedule
	}
	w.CustomizedDays = w.CustomizedDays.clone()
	w.CustomizedDays[day] = times
	return s.Save(ctx, rider, w)
}

// ClearDayOverride drops a day's override; the day keeps the default times.
func (s *Service) ClearDayOverride(ctx context.Context, rider types.ID, day Day) (WeeklySchedule, error) {
	if !day.Valid() {
		return WeeklySchedule{}, ErrInvalidSchedule
	}
	w, err := s.load(ctx, rider)
	if err != nil {
		return WeeklySchedule{}, err
	}
	w = w.Normalize()
	if _, ok := w.CustomizedDays[day]; !ok {
		return w, nil
	}
	w.CustomizedDays = w.CustomizedDays.clone()
	delete(w.CustomizedDays, day)
	return s.Save(ctx, rider, w)
}

func (s *Service) Clear(ctx context.Context, rider types.ID) error {
	if !rider.Valid() {
		return ErrBadRequest
	}
	if err := s.Store(rider).Clear(ctx); err != nil {
		return err
	}
	s.log.Info("schedule cleared", zap.String("rider_id", string(rider)))
	return nil
}

// UpcomingTrips expands the stored schedule into dated trips starting at from.
func (s *Service) UpcomingTrips(ctx context.Context, rider types.ID, from time.Time, days int) ([]Trip, error) {
	if days <= 0 || days > MaxTripWindowDays {
		return nil, ErrBadRequest
	}
	w, err := s.load(ctx, rider)
	if err != nil {
		return nil, err
	}
	return w.Occurrences(from, days), nil
}

func (s *Service) load(ctx context.Context, rider types.ID) (WeeklySchedule, error) {
	if !rider.Valid() {
		return WeeklySchedule{}, ErrBadRequest
	}
	w, err := s.Store(rider).LoadSchedule(ctx)
	if err != nil {
		return WeeklySchedule{}, err
	}
	if w == nil {
		return WeeklySchedule{}, ErrNotFound
	}
	return *w, nil
}
