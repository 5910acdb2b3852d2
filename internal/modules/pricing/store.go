// README: Quote ledger backed by PostgreSQL.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS fare_quotes (
            id           UUID PRIMARY KEY,
            origin       TEXT NOT NULL,
            destination  TEXT NOT NULL,
            distance_km  DOUBLE PRECISION NOT NULL,
            duration_min DOUBLE PRECISION NOT NULL,
            driver_level INT NOT NULL,
            rating       DOUBLE PRECISION NOT NULL,
            fare         INT NOT NULL,
            breakdown    JSONB NOT NULL,
            pickup_at    TIMESTAMPTZ NOT NULL,
            quoted_at    TIMESTAMPTZ NOT NULL
        )`)
	return err
}

func (s *Store) AppendQuote(ctx context.Context, q Quote) error {
	breakdown, err := json.Marshal(q.Breakdown)
	if err != nil {
		return fmt.Errorf("encode breakdown: %w", err)
	}
	_, err = s.db.Exec(ctx, `
        INSERT INTO fare_quotes (
            id, origin, destination, distance_km, duration_min,
            driver_level, rating, fare, breakdown, pickup_at, quoted_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		q.ID,
		q.Origin,
		q.Destination,
		q.Context.DistanceKm,
		q.Context.DurationMin,
		q.Context.DriverLevel,
		q.Context.Rating,
		q.Fare,
		breakdown,
		q.PickupAt,
		q.QuotedAt,
	)
	return err
}

func (s *Store) GetQuote(ctx context.Context, id uuid.UUID) (Quote, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, origin, destination, distance_km, duration_min,
               driver_level, rating, fare, breakdown, pickup_at, quoted_at
        FROM fare_quotes
        WHERE id = $1`, id,
	)
	var q Quote
	var breakdown []byte
	err := row.Scan(
		&q.ID, &q.Origin, &q.Destination, &q.Context.DistanceKm, &q.Context.DurationMin,
		&q.Context.DriverLevel, &q.Context.Rating, &q.Fare, &breakdown, &q.PickupAt, &q.QuotedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Quote{}, ErrQuoteNotFound
	}
	if err != nil {
		return Quote{}, err
	}
	if err := json.Unmarshal(breakdown, &q.Breakdown); err != nil {
		return Quote{}, fmt.Errorf("decode breakdown: %w", err)
	}
	q.Context.IsPeakHours, q.Context.IsNightHours, q.Context.IsWeekend = flagsFromFactors(q.Breakdown.TimeFactors)
	return q, nil
}

func flagsFromFactors(factors []TimeFactor) (peak, night, weekend bool) {
	for _, f := range factors {
		switch f.Name {
		case "peak":
			peak = true
		case "night":
			night = true
		case "weekend":
			weekend = true
		}
	}
	return peak, night, weekend
}
