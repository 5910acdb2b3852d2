// README: Entry point; loads config, wires the storage backend and services, serves HTTP until signalled.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"commute/internal/config"
	httptransport "commute/internal/http"
	"commute/internal/infra"
	"commute/internal/kv"
	"commute/internal/maps"
	"commute/internal/modules/pricing"
	"commute/internal/modules/schedule"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := infra.NewLogger(cfg.IsProduction())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("commute-api stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	var dbPool *pgxpool.Pool
	if cfg.NeedsPostgres() {
		pool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		dbPool = pool
	}

	backend, closeBackend, err := openBackend(ctx, cfg, dbPool, log)
	if err != nil {
		return err
	}
	defer closeBackend()

	loc, err := time.LoadLocation(cfg.Pricing.Timezone)
	if err != nil {
		return fmt.Errorf("pricing timezone: %w", err)
	}

	var ledger *pricing.Store
	if cfg.Pricing.LedgerEnabled {
		ledger = pricing.NewStore(dbPool)
		if err := ledger.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	var router pricing.Router
	if cfg.Maps.APIKey != "" {
		routes, err := maps.NewRouteService(cfg.Maps.APIKey, cfg.Maps.Language, cfg.Maps.Region)
		if err != nil {
			return err
		}
		router = routes
	} else {
		log.Info("maps api key not set; quoting from straight-line estimates",
			zap.Float64("speed_kmh", cfg.Maps.FallbackSpeedKmh))
		router = maps.NewEstimateRouter(cfg.Maps.FallbackSpeedKmh)
	}

	scheduleSvc := schedule.NewService(backend, log.Named("schedule"))
	pricingSvc := pricing.NewService(ledger, router, loc, log.Named("pricing"))

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Schedule:       scheduleSvc,
		Pricing:        pricingSvc,
		Scenario:       pricing.NewGenerator(uint64(time.Now().UnixNano())),
		Logger:         log.Named("http"),
		StorageTimeout: cfg.Storage.Timeout,
		APIKey:         cfg.HTTP.APIKey,
	})

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("storage", string(cfg.Storage.Driver)),
			zap.Bool("ledger", ledger != nil),
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openBackend builds the schedule key-value backend: driver, optional read
// cache, then the deployment-wide key prefix.
func openBackend(ctx context.Context, cfg config.Config, db *pgxpool.Pool, log *zap.Logger) (kv.Backend, func(), error) {
	var (
		backend kv.Backend
		closeFn = func() {}
	)
	switch cfg.Storage.Driver {
	case config.StorageRedis:
		client, err := infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		backend = kv.NewRedis(client)
		closeFn = func() { _ = client.Close() }
	case config.StoragePostgres:
		pg := kv.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
		backend = pg
	case config.StorageMemory:
		log.Warn("using in-memory schedule storage; data is lost on restart")
		backend = kv.NewMemory()
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Storage.CacheSize > 0 {
		cached, err := kv.NewCached(backend, cfg.Storage.CacheSize)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		backend = cached
	}
	return kv.Namespace(backend, cfg.Storage.KeyPrefix), closeFn, nil
}
