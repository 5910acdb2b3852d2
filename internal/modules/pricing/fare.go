// README: Fare calculator: base + tier multiplier + rating tier + time factors, clamped.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	BasePrice      = 8.0
	PricePerKm     = 1.5
	PricePerMinute = 0.2
	MinPrice       = 5
	MaxPrice       = 25
)

// levelMultipliers is keyed by driver level; unknown levels price at 1.0.
var levelMultipliers = map[int]float64{
	1: 1.0,
	2: 1.1,
	3: 1.2,
	4: 1.3,
	5: 1.4,
	6: 1.5,
	7: 2.0,
}

type ratingTier struct {
	threshold float64
	bonus     float64
}

// ratingTiers is ordered highest threshold first; only the first match applies.
var ratingTiers = []ratingTier{
	{threshold: 5.0, bonus: 0.20},
	{threshold: 4.9, bonus: 0.15},
	{threshold: 4.7, bonus: 0.10},
	{threshold: 4.5, bonus: 0.05},
}

// Time factors compound in this order.
const (
	peakFactor    = 1.15
	nightFactor   = 1.25
	weekendFactor = 1.10
)

var ErrInvalidInput = errors.New("invalid fare input")

var validate = validator.New()

func LevelMultiplier(level int) float64 {
	if m, ok := levelMultipliers[level]; ok {
		return m
	}
	return 1.0
}

func RatingBonus(rating float64) float64 {
	for _, t := range ratingTiers {
		if rating >= t.threshold {
			return t.bonus
		}
	}
	return 0
}

// ComputeFare is pure and total: any input yields an integer in [MinPrice, MaxPrice].
func ComputeFare(c FareContext) int {
	return Breakdown(c).Fare
}

func Breakdown(c FareContext) FareBreakdown {
	b := FareBreakdown{
		Base:            BasePrice + c.DistanceKm*PricePerKm + c.DurationMin*PricePerMinute,
		LevelMultiplier: LevelMultiplier(c.DriverLevel),
		RatingBonus:     RatingBonus(c.Rating),
		TimeFactors:     []TimeFactor{},
	}
	price := b.Base * b.LevelMultiplier
	price *= 1 + b.RatingBonus

	if c.IsPeakHours {
		price *= peakFactor
		b.TimeFactors = append(b.TimeFactors, TimeFactor{Name: "peak", Factor: peakFactor})
	}
	if c.IsNightHours {
		price *= nightFactor
		b.TimeFactors = append(b.TimeFactors, TimeFactor{Name: "night", Factor: nightFactor})
	}
	if c.IsWeekend {
		price *= weekendFactor
		b.TimeFactors = append(b.TimeFactors, TimeFactor{Name: "weekend", Factor: weekendFactor})
	}

	b.Unclamped = price
	clamped := clamp(price)
	b.Clamped = clamped != price
	b.Fare = int(math.Floor(clamped))
	return b
}

// clamp also maps NaN to MinPrice.
func clamp(p float64) float64 {
	if !(p >= MinPrice) {
		return MinPrice
	}
	if p > MaxPrice {
		return MaxPrice
	}
	return p
}

// Validate rejects inputs that would price a nonsensical trip. ComputeFare does
// not call it; boundaries do.
func (c FareContext) Validate() error {
	return validateStruct(c)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(fields, "; "))
}

var peakHours = map[int]bool{7: true, 8: true, 9: true, 17: true, 18: true, 19: true}

// TimeFlags derives the surcharge flags from a local hour and weekday.
func TimeFlags(hour int, day time.Weekday) (peak, night, weekend bool) {
	peak = peakHours[hour]
	night = hour >= 22 || hour <= 6
	weekend = day == time.Saturday || day == time.Sunday
	return peak, night, weekend
}
