// README: Fixture dumper; prints generated fare scenarios as JSON lines.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"commute/internal/modules/pricing"
)

func main() {
	var (
		count  = flag.Int("n", 20, "number of scenarios per driver level")
		level  = flag.Int("level", 0, "driver level 1..7 (0 = every level)")
		rating = flag.Float64("rating", pricing.DefaultRating, "driver rating 0..5")
		seed   = flag.Uint64("seed", 0, "generator seed (0 = time based)")
	)
	flag.Parse()

	if err := run(*count, *level, *rating, *seed); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(count, level int, rating float64, seed uint64) error {
	if count <= 0 {
		return fmt.Errorf("n must be positive, got %d", count)
	}
	levels := []int{level}
	if level == 0 {
		levels = []int{1, 2, 3, 4, 5, 6, 7}
	}
	for _, l := range levels {
		probe := pricing.FareContext{DriverLevel: l, Rating: rating}
		if err := probe.Validate(); err != nil {
			return err
		}
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	gen := pricing.NewGenerator(seed)
	w := bufio.NewWriter(os.Stdout)
	enc := json.NewEncoder(w)
	for _, l := range levels {
		for _, sc := range gen.GenerateBatch(count, l, rating) {
			if err := enc.Encode(sc); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}
