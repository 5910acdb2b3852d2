// README: Schedule store over a generic key-value backend (two logical keys).
package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"commute/internal/kv"
)

// Logical keys shared with previously persisted data; do not rename.
const (
	scheduleKey   = "flexibleSchedule"
	customizedKey = "customizedSchedule"
)

type Store struct {
	kv  kv.Backend
	log *zap.Logger
	now func() time.Time
}

func NewStore(backend kv.Backend, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kv: backend, log: log, now: time.Now}
}

// SaveSchedule overwrites the flexible schedule record. A zero Timestamp is
// stamped with the current time. Nil SelectedDays and CustomizedDays are
// written as empty collections, so they load back as empty, non-nil values.
func (s *Store) SaveSchedule(ctx context.Context, w WeeklySchedule) error {
	raw, err := s.encodeSchedule(w)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, scheduleKey, raw); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrStorageWrite, scheduleKey, err)
	}
	return nil
}

// LoadSchedule returns nil when the record is missing or cannot be decoded.
func (s *Store) LoadSchedule(ctx context.Context) (*WeeklySchedule, error) {
	raw, err := s.kv.Get(ctx, scheduleKey)
	if kv.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, scheduleKey, err)
	}
	return s.decodeSchedule(raw), nil
}

func (s *Store) SaveCustomizedDays(ctx context.Context, days CustomizedDays) error {
	raw, err := s.encodeCustomized(days, s.now())
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, customizedKey, raw); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrStorageWrite, customizedKey, err)
	}
	return nil
}

// LoadCustomizedDays returns nil when the record is missing or cannot be decoded.
func (s *Store) LoadCustomizedDays(ctx context.Context) (CustomizedDays, error) {
	raw, err := s.kv.Get(ctx, customizedKey)
	if kv.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, customizedKey, err)
	}
	return s.decodeCustomized(raw), nil
}

// SaveAll writes the schedule and its customized-days record in one atomic
// backend call so the two keys cannot drift apart.
func (s *Store) SaveAll(ctx context.Context, w WeeklySchedule) error {
	if w.Timestamp.IsZero() {
		w.Timestamp = s.now()
	}
	sched, err := s.encodeSchedule(w)
	if err != nil {
		return err
	}
	custom, err := s.encodeCustomized(w.CustomizedDays, w.Timestamp)
	if err != nil {
		return err
	}
	err = s.kv.SetMany(ctx, map[string][]byte{
		scheduleKey:   sched,
		customizedKey: custom,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	return nil
}

// LoadAll reads both records in one round trip. It never writes.
func (s *Store) LoadAll(ctx context.Context) (Snapshot, error) {
	got, err := s.kv.GetMany(ctx, scheduleKey, customizedKey)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	snap := Snapshot{RetrievedAt: s.now().UTC()}
	if raw, ok := got[scheduleKey]; ok {
		snap.Schedule = s.decodeSchedule(raw)
	}
	if raw, ok := got[customizedKey]; ok {
		snap.CustomizedDays = s.decodeCustomized(raw)
	}
	return snap, nil
}

// Clear removes both records. Missing keys are not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, scheduleKey, customizedKey); err != nil {
		return fmt.Errorf("%w: clear: %w", ErrStorageWrite, err)
	}
	return nil
}

func (s *Store) encodeSchedule(w WeeklySchedule) ([]byte, error) {
	if w.Timestamp.IsZero() {
		w.Timestamp = s.now()
	}
	w.Timestamp = w.Timestamp.UTC()
	if w.SelectedDays == nil {
		w.SelectedDays = []Day{}
	}
	if w.CustomizedDays == nil {
		w.CustomizedDays = CustomizedDays{}
	}
	raw, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s: %w", ErrStorageWrite, scheduleKey, err)
	}
	return raw, nil
}

func (s *Store) encodeCustomized(days CustomizedDays, ts time.Time) ([]byte, error) {
	if days == nil {
		days = CustomizedDays{}
	}
	raw, err := json.Marshal(customizedRecord{CustomizedDays: days, Timestamp: ts.UTC()})
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s: %w", ErrStorageWrite, customizedKey, err)
	}
	return raw, nil
}

func (s *Store) decodeSchedule(raw []byte) *WeeklySchedule {
	var w WeeklySchedule
	if err := json.Unmarshal(raw, &w); err != nil {
		s.log.Warn("discarding unreadable schedule record", zap.String("key", scheduleKey), zap.Error(err))
		return nil
	}
	return &w
}

func (s *Store) decodeCustomized(raw []byte) CustomizedDays {
	var rec customizedRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.log.Warn("discarding unreadable customized days record", zap.String("key", customizedKey), zap.Error(err))
		return nil
	}
	if rec.CustomizedDays == nil {
		return CustomizedDays{}
	}
	return rec.CustomizedDays
}
