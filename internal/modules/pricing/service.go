// README: Pricing service validates inputs, resolves routes and issues fare quotes.
package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrRoutingUnavailable = errors.New("routing is not configured")
	ErrLedgerUnavailable  = errors.New("quote ledger is not configured")
	ErrQuoteNotFound      = errors.New("quote not found")
)

// Router resolves distance and duration for a trip. Values it returns are
// trusted as already validated.
type Router interface {
	Route(ctx context.Context, origin, destination string) (Route, error)
}

type Service struct {
	store  *Store
	router Router
	loc    *time.Location
	log    *zap.Logger
	now    func() time.Time
}

// NewService accepts a nil store (no ledger) and a nil router (no address quotes).
func NewService(store *Store, router Router, loc *time.Location, log *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, router: router, loc: loc, log: log, now: time.Now}
}

// Estimate validates c and returns its full breakdown.
func (s *Service) Estimate(ctx context.Context, c FareContext) (FareBreakdown, error) {
	if err := c.Validate(); err != nil {
		return FareBreakdown{}, err
	}
	return Breakdown(c), nil
}

// ContextAt builds a FareContext for a trip starting at t, using the service
// location to decide peak, night and weekend.
func (s *Service) ContextAt(t time.Time, route Route, level int, rating float64) FareContext {
	local := t.In(s.loc)
	peak, night, weekend := TimeFlags(local.Hour(), local.Weekday())
	return FareContext{
		DistanceKm:   route.DistanceKm,
		DurationMin:  route.DurationMin,
		DriverLevel:  level,
		Rating:       rating,
		IsPeakHours:  peak,
		IsNightHours: night,
		IsWeekend:    weekend,
	}
}

func (s *Service) Quote(ctx context.Context, req QuoteRequest) (Quote, error) {
	if err := validateStruct(req); err != nil {
		return Quote{}, err
	}
	if s.router == nil {
		return Quote{}, ErrRoutingUnavailable
	}
	route, err := s.router.Route(ctx, req.Origin, req.Destination)
	if err != nil {
		return Quote{}, err
	}

	now := s.now()
	pickup := req.PickupAt
	if pickup.IsZero() {
		pickup = now
	}
	fc := s.ContextAt(pickup, route, req.DriverLevel, req.Rating)
	breakdown, err := s.Estimate(ctx, fc)
	if err != nil {
		return Quote{}, err
	}

	q := Quote{
		ID:          uuid.New(),
		Origin:      req.Origin,
		Destination: req.Destination,
		Context:     fc,
		Breakdown:   breakdown,
		Fare:        breakdown.Fare,
		PickupAt:    pickup.UTC(),
		QuotedAt:    now.UTC(),
	}
	if s.store != nil {
		if err := s.store.AppendQuote(ctx, q); err != nil {
			s.log.Warn("quote ledger append failed", zap.String("quote_id", q.ID.String()), zap.Error(err))
		}
	}
	s.log.Debug("fare quoted",
		zap.String("quote_id", q.ID.String()),
		zap.Float64("distance_km", fc.DistanceKm),
		zap.Float64("duration_min", fc.DurationMin),
		zap.Int("driver_level", fc.DriverLevel),
		zap.Int("fare", q.Fare),
		zap.Bool("clamped", breakdown.Clamped),
	)
	return q, nil
}

func (s *Service) GetQuote(ctx context.Context, id uuid.UUID) (Quote, error) {
	if s.store == nil {
		return Quote{}, ErrLedgerUnavailable
	}
	return s.store.GetQuote(ctx, id)
}
