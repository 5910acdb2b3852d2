// README: Google Directions routing for fare quotes.
package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"commute/internal/modules/pricing"
)

var ErrNoRoute = errors.New("no route found")

// RouteService resolves driving distance and duration through the Google
// Directions API. It implements pricing.Router.
type RouteService struct {
	client   *maps.Client
	language string
	region   string
}

// NewRouteService creates a new RouteService with the given API Key.
func NewRouteService(apiKey, language, region string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client, language: language, region: region}, nil
}

func (s *RouteService) Route(ctx context.Context, origin, destination string) (pricing.Route, error) {
	if strings.TrimSpace(origin) == "" || strings.TrimSpace(destination) == "" {
		return pricing.Route{}, fmt.Errorf("%w: origin and destination are required", pricing.ErrInvalidInput)
	}
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
		Language:    s.language,
		Region:      s.region,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return pricing.Route{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 {
		return pricing.Route{}, ErrNoRoute
	}
	return routeFromLegs(routes[0].Legs)
}

// routeFromLegs sums every leg so waypoints are priced end to end.
func routeFromLegs(legs []*maps.Leg) (pricing.Route, error) {
	if len(legs) == 0 {
		return pricing.Route{}, ErrNoRoute
	}
	var meters int
	var minutes float64
	for _, leg := range legs {
		if leg == nil {
			continue
		}
		meters += leg.Distance.Meters
		minutes += leg.Duration.Minutes()
	}
	return pricing.Route{
		DistanceKm:  float64(meters) / 1000.0,
		DurationMin: minutes,
	}, nil
}
