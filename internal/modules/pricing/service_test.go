package pricing

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type stubRouter struct {
	route Route
	err   error
	calls int
}

func (r *stubRouter) Route(_ context.Context, _, _ string) (Route, error) {
	r.calls++
	return r.route, r.err
}

func TestService_Estimate(t *testing.T) {
	s := NewService(nil, nil, nil, nil) // Store and router not needed for Estimate
	b, err := s.Estimate(context.Background(), FareContext{DistanceKm: 5, DurationMin: 20, DriverLevel: 3, Rating: 4.8})
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	if b.Fare != 25 || !b.Clamped {
		t.Fatalf("Estimate() = %+v, want clamped fare 25", b)
	}
	if _, err := s.Estimate(context.Background(), FareContext{DistanceKm: -1, DriverLevel: 1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Estimate(negative) error = %v, want ErrInvalidInput", err)
	}
}

func TestService_Quote(t *testing.T) {
	taipei := time.FixedZone("UTC+8", 8*3600)
	router := &stubRouter{route: Route{DistanceKm: 1, DurationMin: 5}}
	s := NewService(nil, router, taipei, nil)
	s.now = func() time.Time { return time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC) }

	// 2026-10-17 10:00 UTC is Saturday 18:00 in UTC+8: peak and weekend.
	pickup := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	q, err := s.Quote(context.Background(), QuoteRequest{
		Origin: "A", Destination: "B", DriverLevel: 1, Rating: 0, PickupAt: pickup,
	})
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if !q.Context.IsPeakHours || !q.Context.IsWeekend || q.Context.IsNightHours {
		t.Fatalf("time context = %+v, want peak weekend", q.Context)
	}
	if q.Fare != 13 {
		t.Fatalf("Quote fare = %d, want 13", q.Fare)
	}
	if router.calls != 1 {
		t.Fatalf("router called %d times", router.calls)
	}
	if !q.PickupAt.Equal(pickup) || q.QuotedAt.IsZero() {
		t.Fatalf("quote timestamps = %v / %v", q.PickupAt, q.QuotedAt)
	}
}

func TestService_QuoteDefaultsPickupToNow(t *testing.T) {
	now := time.Date(2026, 10, 14, 23, 30, 0, 0, time.UTC) // Wednesday night
	s := NewService(nil, &stubRouter{route: Route{DistanceKm: 3, DurationMin: 9}}, time.UTC, nil)
	s.now = func() time.Time { return now }

	q, err := s.Quote(context.Background(), QuoteRequest{Origin: "A", Destination: "B", DriverLevel: 2, Rating: 4.7})
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if !q.PickupAt.Equal(now) || !q.Context.IsNightHours {
		t.Fatalf("quote = %+v, want night pickup at now", q)
	}
}

func TestService_QuoteErrors(t *testing.T) {
	ctx := context.Background()
	req := QuoteRequest{Origin: "A", Destination: "B", DriverLevel: 1}

	if _, err := NewService(nil, nil, nil, nil).Quote(ctx, req); !errors.Is(err, ErrRoutingUnavailable) {
		t.Fatalf("no router error = %v, want ErrRoutingUnavailable", err)
	}

	routeErr := errors.New("no route found")
	s := NewService(nil, &stubRouter{err: routeErr}, nil, nil)
	if _, err := s.Quote(ctx, req); !errors.Is(err, routeErr) {
		t.Fatalf("router failure error = %v", err)
	}

	s = NewService(nil, &stubRouter{}, nil, nil)
	bad := req
	bad.Destination = ""
	if _, err := s.Quote(ctx, bad); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing destination error = %v, want ErrInvalidInput", err)
	}
	bad = req
	bad.DriverLevel = 9
	if _, err := s.Quote(ctx, bad); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad level error = %v, want ErrInvalidInput", err)
	}

	// Negative values from the router are rejected at the boundary.
	s = NewService(nil, &stubRouter{route: Route{DistanceKm: -2}}, nil, nil)
	if _, err := s.Quote(ctx, req); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative route error = %v, want ErrInvalidInput", err)
	}

	if _, err := s.GetQuote(ctx, [16]byte{}); !errors.Is(err, ErrLedgerUnavailable) {
		t.Fatalf("GetQuote without store error = %v, want ErrLedgerUnavailable", err)
	}
}

func TestStore_QuoteLedger(t *testing.T) {
	dsn := os.Getenv("COMMUTE_TEST_DB_DSN")
	if dsn == "" {
		t.Skip("COMMUTE_TEST_DB_DSN not set; skipping integration test")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()
	store := NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	s := NewService(store, &stubRouter{route: Route{DistanceKm: 4, DurationMin: 15}}, time.UTC, nil)
	q, err := s.Quote(ctx, QuoteRequest{
		Origin: "Home", Destination: "Office", DriverLevel: 4, Rating: 4.9,
		PickupAt: time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	got, err := s.GetQuote(ctx, q.ID)
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if got.Fare != q.Fare || got.Context != q.Context || got.Origin != "Home" {
		t.Fatalf("ledger round trip = %+v, want %+v", got, q)
	}
}
