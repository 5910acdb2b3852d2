// README: Synthetic trip scenarios for fixtures and simulations (not on the pricing path).
package pricing

import (
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultRating is used when a caller does not pick a rating.
const DefaultRating = 4.8

type Scenario struct {
	DistanceKm   float64      `json:"distanceKm"`
	DurationMin  float64      `json:"durationMin"`
	Price        int          `json:"price"`
	IsPeakHours  bool         `json:"isPeakHours"`
	IsNightHours bool         `json:"isNightHours"`
	IsWeekend    bool         `json:"isWeekend"`
	Hour         int          `json:"hour"`
	Weekday      time.Weekday `json:"weekday"`
	DriverLevel  int          `json:"driverLevel"`
	Rating       float64      `json:"rating"`
}

func (sc Scenario) FareContext() FareContext {
	return FareContext{
		DistanceKm:   sc.DistanceKm,
		DurationMin:  sc.DurationMin,
		DriverLevel:  sc.DriverLevel,
		Rating:       sc.Rating,
		IsPeakHours:  sc.IsPeakHours,
		IsNightHours: sc.IsNightHours,
		IsWeekend:    sc.IsWeekend,
	}
}

// Generator is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a generator whose output is fully determined by seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (g *Generator) Generate(driverLevel int, rating float64) Scenario {
	g.mu.Lock()
	distance := 2 + g.rng.Float64()*13
	duration := 10 + g.rng.Float64()*35
	hour := g.rng.IntN(24)
	day := time.Weekday(g.rng.IntN(7))
	g.mu.Unlock()

	peak, night, weekend := TimeFlags(hour, day)
	sc := Scenario{
		DistanceKm:   distance,
		DurationMin:  duration,
		IsPeakHours:  peak,
		IsNightHours: night,
		IsWeekend:    weekend,
		Hour:         hour,
		Weekday:      day,
		DriverLevel:  driverLevel,
		Rating:       rating,
	}
	sc.Price = ComputeFare(sc.FareContext())
	return sc
}

func (g *Generator) GenerateBatch(n, driverLevel int, rating float64) []Scenario {
	if n <= 0 {
		return nil
	}
	out := make([]Scenario, n)
	for i := range out {
		out[i] = g.Generate(driverLevel, rating)
	}
	return out
}
