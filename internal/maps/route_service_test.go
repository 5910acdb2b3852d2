package maps

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"googlemaps.github.io/maps"

	"commute/internal/modules/pricing"
)

func TestRouteFromLegs(t *testing.T) {
	legs := []*maps.Leg{
		{Distance: maps.Distance{Meters: 3200}, Duration: 9 * time.Minute},
		nil,
		{Distance: maps.Distance{Meters: 1800}, Duration: 6*time.Minute + 30*time.Second},
	}
	got, err := routeFromLegs(legs)
	if err != nil {
		t.Fatalf("routeFromLegs: %v", err)
	}
	if math.Abs(got.DistanceKm-5.0) > 1e-9 {
		t.Errorf("DistanceKm = %v, want 5", got.DistanceKm)
	}
	if math.Abs(got.DurationMin-15.5) > 1e-9 {
		t.Errorf("DurationMin = %v, want 15.5", got.DurationMin)
	}

	if _, err := routeFromLegs(nil); !errors.Is(err, ErrNoRoute) {
		t.Errorf("routeFromLegs(nil) error = %v, want ErrNoRoute", err)
	}
}

func TestRoute_RequiresEndpoints(t *testing.T) {
	s, err := NewRouteService("test-key", "en", "")
	if err != nil {
		t.Fatalf("NewRouteService: %v", err)
	}
	if _, err := s.Route(context.Background(), " ", "Office"); !errors.Is(err, pricing.ErrInvalidInput) {
		t.Fatalf("Route with blank origin error = %v, want ErrInvalidInput", err)
	}
}

var _ pricing.Router = (*RouteService)(nil)
