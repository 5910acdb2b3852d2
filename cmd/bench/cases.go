// README: Bench cases; env checks, schedule/fare/progress API flows, last-write-wins race and load.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"commute/internal/modules/pricing"
	"commute/internal/modules/schedule"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
	rider string
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
		rider: fmt.Sprintf("bench-%d", time.Now().UnixNano()),
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

var benchSchedule = map[string]any{
	"selectedDays": []string{"mon", "wed", "fri"},
	"selectedTime": "08:00",
	"returnTime":   "18:00",
	"isReturnTrip": true,
	"customizedDays": map[string]any{
		"fri": map[string]any{"outboundTime": "09:30", "returnTime": "16:00"},
	},
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	riderURL := base + "/api/riders/" + r.rider + "/schedule"
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "dsn not set"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				var exists bool
				err := r.db.QueryRow(ctx,
					"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
					"kv_entries",
				).Scan(&exists)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS", Note: fmt.Sprintf("kv_entries=%t", exists)}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "redis not set"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},

		httpCase("API: health", http.MethodGet, base+"/health", nil, http.StatusOK, nil),

		// Schedule flow
		httpCase("Schedule: empty snapshot", http.MethodGet, riderURL, nil, http.StatusOK, func(body []byte) error {
			var snap schedule.Snapshot
			if err := json.Unmarshal(body, &snap); err != nil {
				return err
			}
			if snap.Schedule != nil {
				return fmt.Errorf("expected no schedule for fresh rider")
			}
			return nil
		}),
		httpCase("Schedule: save", http.MethodPut, riderURL, benchSchedule, http.StatusOK, nil),
		httpCase("Schedule: invalid override -> 400", http.MethodPut, riderURL, map[string]any{
			"selectedDays":   []string{"mon"},
			"customizedDays": map[string]any{"sun": map[string]any{"outboundTime": "10:00"}},
		}, http.StatusBadRequest, nil),
		httpCase("Schedule: load both records", http.MethodGet, riderURL, nil, http.StatusOK, func(body []byte) error {
			var snap schedule.Snapshot
			if err := json.Unmarshal(body, &snap); err != nil {
				return err
			}
			if snap.Schedule == nil || len(snap.Schedule.SelectedDays) != 3 {
				return fmt.Errorf("unexpected schedule %+v", snap.Schedule)
			}
			if _, ok := snap.CustomizedDays[schedule.Friday]; !ok {
				return fmt.Errorf("fri override missing from customized record")
			}
			return nil
		}),
		httpCase("Schedule: day override", http.MethodPut, riderURL+"/days/mon", map[string]any{"outboundTime": "07:15"}, http.StatusOK, nil),
		httpCase("Schedule: upcoming trips", http.MethodGet, riderURL+"/trips?days=14", nil, http.StatusOK, func(body []byte) error {
			var resp struct {
				Trips []schedule.Trip `json:"trips"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				return err
			}
			if len(resp.Trips) != 6 {
				return fmt.Errorf("expected 6 trips over 14 days, got %d", len(resp.Trips))
			}
			return nil
		}),
		{
			Name: "Schedule: concurrent saves stay consistent",
			Run: func(ctx context.Context, r *Runner) Result {
				return concurrentSaves(ctx, r, riderURL)
			},
		},
		httpCase("Schedule: clear", http.MethodDelete, riderURL, nil, http.StatusNoContent, nil),
		httpCase("Schedule: clear is idempotent", http.MethodDelete, riderURL, nil, http.StatusNoContent, nil),

		// Fares
		httpCase("Fare: compute", http.MethodPost, base+"/api/fares/compute", map[string]any{
			"distanceKm": 5, "durationMin": 20, "driverLevel": 3, "rating": 4.8,
		}, http.StatusOK, func(body []byte) error {
			var b pricing.FareBreakdown
			if err := json.Unmarshal(body, &b); err != nil {
				return err
			}
			if b.Fare != 25 {
				return fmt.Errorf("expected fare 25, got %d", b.Fare)
			}
			return nil
		}),
		httpCase("Fare: negative distance -> 400", http.MethodPost, base+"/api/fares/compute", map[string]any{
			"distanceKm": -1, "durationMin": 20, "driverLevel": 3, "rating": 4.8,
		}, http.StatusBadRequest, nil),
		httpCase("Fare: scenarios within bounds", http.MethodGet, base+"/api/fares/scenario?level=7&rating=5&count=50", nil, http.StatusOK, func(body []byte) error {
			var resp struct {
				Scenarios []pricing.Scenario `json:"scenarios"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				return err
			}
			for _, sc := range resp.Scenarios {
				if sc.Price < pricing.MinPrice || sc.Price > pricing.MaxPrice {
					return fmt.Errorf("price %d out of [%d,%d]", sc.Price, pricing.MinPrice, pricing.MaxPrice)
				}
			}
			return nil
		}),
		httpCase("Fare: quote between coordinates", http.MethodPost, base+"/api/fares/quote", map[string]any{
			"origin": "25.0478,121.5170", "destination": "25.0340,121.5645", "driverLevel": 2, "rating": 4.6,
		}, http.StatusCreated, func(body []byte) error {
			var q pricing.Quote
			if err := json.Unmarshal(body, &q); err != nil {
				return err
			}
			if q.Context.DistanceKm <= 0 {
				return fmt.Errorf("expected positive route distance, got %v", q.Context.DistanceKm)
			}
			return nil
		}),

		httpCase("Progress: addresses", http.MethodGet, base+"/api/progress?step=addresses", nil, http.StatusOK, nil),
		httpCase("Progress: unknown step -> 400", http.MethodGet, base+"/api/progress?step=payment", nil, http.StatusBadRequest, nil),

		{
			Name: "Perf: fare compute load",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/fares/compute", map[string]any{
					"distanceKm": 8, "durationMin": 25, "driverLevel": 4, "rating": 4.9, "isPeakHours": true,
				})
			},
		},
	}
}

type response struct {
	status  int
	body    []byte
	latency time.Duration
	err     error
}

func (res response) expect(status int, check func([]byte) error) Result {
	if res.err != nil {
		return Result{Status: "FAIL", Note: res.err.Error()}
	}
	note := fmt.Sprintf("status=%d", res.status)
	if res.status != status {
		return Result{Status: "FAIL", Latency: res.latency, Note: note}
	}
	if check != nil {
		if err := check(res.body); err != nil {
			return Result{Status: "FAIL", Latency: res.latency, Note: err.Error()}
		}
	}
	return Result{Status: "PASS", Latency: res.latency, Note: note}
}

func doJSON(ctx context.Context, r *Runner, method, url string, body any) response {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return response{err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if r.cfg.APIKey != "" {
		req.Header.Set("X-API-Key", r.cfg.APIKey)
	}
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return response{err: err}
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	return response{status: resp.StatusCode, body: b, latency: time.Since(start), err: err}
}

func httpCase(name, method, url string, body any, status int, check func([]byte) error) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			return doJSON(ctx, r, method, url, body).expect(status, check)
		},
	}
}

// concurrentSaves fires overlapping full saves with distinct overrides and
// checks that both persisted records come from the same writer.
func concurrentSaves(ctx context.Context, r *Runner, url string) Result {
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := map[string]any{
				"selectedDays": []string{"tue"},
				"selectedTime": "08:00",
				"customizedDays": map[string]any{
					"tue": map[string]any{"outboundTime": fmt.Sprintf("%02d:%02d", 6+i%12, i%60)},
				},
			}
			res := doJSON(ctx, r, http.MethodPut, url, body)
			if res.err != nil || res.status != http.StatusOK {
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if failed > 0 {
		return Result{Status: "FAIL", Note: fmt.Sprintf("failed saves=%d", failed)}
	}

	return doJSON(ctx, r, http.MethodGet, url, nil).expect(http.StatusOK, func(body []byte) error {
		var snap schedule.Snapshot
		if err := json.Unmarshal(body, &snap); err != nil {
			return err
		}
		if snap.Schedule == nil {
			return fmt.Errorf("schedule missing after concurrent saves")
		}
		if !reflect.DeepEqual(snap.Schedule.CustomizedDays, snap.CustomizedDays) {
			return fmt.Errorf("records diverged: %v vs %v", snap.Schedule.CustomizedDays, snap.CustomizedDays)
		}
		return nil
	})
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				res := doJSON(ctx, r, http.MethodPost, url, payload)
				mu.Lock()
				if res.err != nil || res.status != http.StatusOK {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}
