// README: Fare inputs, breakdown and quote records.
package pricing

import (
	"time"

	"github.com/google/uuid"
)

// FareContext is built fresh for every fare request and never persisted.
type FareContext struct {
	DistanceKm   float64 `json:"distanceKm" validate:"gte=0"`
	DurationMin  float64 `json:"durationMin" validate:"gte=0"`
	DriverLevel  int     `json:"driverLevel" validate:"min=1,max=7"`
	Rating       float64 `json:"rating" validate:"gte=0,lte=5"`
	IsPeakHours  bool    `json:"isPeakHours"`
	IsNightHours bool    `json:"isNightHours"`
	IsWeekend    bool    `json:"isWeekend"`
}

type TimeFactor struct {
	Name   string  `json:"name"`
	Factor float64 `json:"factor"`
}

// FareBreakdown records every intermediate value of one ComputeFare run.
type FareBreakdown struct {
	Base            float64      `json:"base"`
	LevelMultiplier float64      `json:"levelMultiplier"`
	RatingBonus     float64      `json:"ratingBonus"`
	TimeFactors     []TimeFactor `json:"timeFactors"`
	Unclamped       float64      `json:"unclamped"`
	Clamped         bool         `json:"clamped"`
	Fare            int          `json:"fare"`
}

// Route is what the routing collaborator resolves for an origin/destination pair.
type Route struct {
	DistanceKm  float64 `json:"distanceKm"`
	DurationMin float64 `json:"durationMin"`
}

type QuoteRequest struct {
	Origin      string    `json:"origin" validate:"required"`
	Destination string    `json:"destination" validate:"required"`
	DriverLevel int       `json:"driverLevel" validate:"min=1,max=7"`
	Rating      float64   `json:"rating" validate:"gte=0,lte=5"`
	PickupAt    time.Time `json:"pickupAt"`
}

type Quote struct {
	ID          uuid.UUID     `json:"id"`
	Origin      string        `json:"origin"`
	Destination string        `json:"destination"`
	Context     FareContext   `json:"context"`
	Breakdown   FareBreakdown `json:"breakdown"`
	Fare        int           `json:"fare"`
	PickupAt    time.Time     `json:"pickupAt"`
	QuotedAt    time.Time     `json:"quotedAt"`
}
