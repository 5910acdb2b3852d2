// README: Straight-line route estimates between "lat,lng" endpoints (haversine).
package maps

import (
	"context"
	"fmt"
	"math"
	"strings"

	"googlemaps.github.io/maps"

	"commute/internal/modules/pricing"
)

const (
	earthRadiusKm = 6371.0

	// detourFactor stretches the great-circle distance towards a road distance.
	detourFactor = 1.3
)

// EstimateRouter prices "lat,lng" endpoints without calling Google: haversine
// distance times detourFactor, driven at a fixed average speed. It implements
// pricing.Router and is the fallback when no Maps API key is configured.
type EstimateRouter struct {
	speedKmh float64
}

func NewEstimateRouter(speedKmh float64) *EstimateRouter {
	if speedKmh <= 0 {
		speedKmh = 25
	}
	return &EstimateRouter{speedKmh: speedKmh}
}

func (e *EstimateRouter) Route(ctx context.Context, origin, destination string) (pricing.Route, error) {
	if err := ctx.Err(); err != nil {
		return pricing.Route{}, err
	}
	from, err := parseLatLng(origin)
	if err != nil {
		return pricing.Route{}, fmt.Errorf("%w: origin: %w", pricing.ErrInvalidInput, err)
	}
	to, err := parseLatLng(destination)
	if err != nil {
		return pricing.Route{}, fmt.Errorf("%w: destination: %w", pricing.ErrInvalidInput, err)
	}
	km := haversineKm(from.Lat, from.Lng, to.Lat, to.Lng) * detourFactor
	return pricing.Route{
		DistanceKm:  km,
		DurationMin: km / e.speedKmh * 60,
	}, nil
}

// parseLatLng guards maps.ParseLatLng, which indexes past a missing comma.
func parseLatLng(s string) (maps.LatLng, error) {
	s = strings.ReplaceAll(s, " ", "")
	if strings.Count(s, ",") != 1 {
		return maps.LatLng{}, fmt.Errorf("expected \"lat,lng\", got %q", s)
	}
	ll, err := maps.ParseLatLng(s)
	if err != nil {
		return maps.LatLng{}, err
	}
	if math.Abs(ll.Lat) > 90 || math.Abs(ll.Lng) > 180 {
		return maps.LatLng{}, fmt.Errorf("coordinates out of range: %s", s)
	}
	return ll, nil
}

// haversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
