// README: API gateway; registers gin routes and delegates to module services.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"commute/internal/http/handlers"
	"commute/internal/http/middleware"
	"commute/internal/modules/pricing"
	"commute/internal/modules/schedule"
)

type ServerDeps struct {
	Schedule *schedule.Service
	Pricing  *pricing.Service
	Scenario *pricing.Generator
	Logger   *zap.Logger

	// StorageTimeout bounds each storage or routing call made by a handler.
	StorageTimeout time.Duration
	APIKey         string
}

type Server struct {
	schedule *schedule.Service
	pricing  *pricing.Service
	scenario *pricing.Generator
	log      *zap.Logger
	timeout  time.Duration
	apiKey   string
}

func NewServer(deps ServerDeps) *Server {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	gen := deps.Scenario
	if gen == nil {
		gen = pricing.NewGenerator(uint64(time.Now().UnixNano()))
	}
	return &Server{
		schedule: deps.Schedule,
		pricing:  deps.Pricing,
		scenario: gen,
		log:      log,
		timeout:  deps.StorageTimeout,
		apiKey:   deps.APIKey,
	}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(s.log), middleware.Logging(s.log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api", middleware.Auth(s.apiKey))

	scheduleHandler := handlers.NewScheduleHandler(s.schedule, s.timeout)
	riders := api.Group("/riders/:id")
	riders.GET("/schedule", scheduleHandler.Get)
	riders.PUT("/schedule", scheduleHandler.Put)
	riders.DELETE("/schedule", scheduleHandler.Delete)
	riders.PUT("/schedule/days/:day", scheduleHandler.PutDay)
	riders.DELETE("/schedule/days/:day", scheduleHandler.DeleteDay)
	riders.GET("/schedule/trips", scheduleHandler.Trips)

	fareHandler := handlers.NewFareHandler(s.pricing, s.scenario, s.timeout)
	api.POST("/fares/compute", fareHandler.Compute)
	api.POST("/fares/quote", fareHandler.Quote)
	api.GET("/fares/quotes/:id", fareHandler.GetQuote)
	api.GET("/fares/scenario", fareHandler.Scenario)

	progressHandler := handlers.NewProgressHandler()
	api.GET("/progress", progressHandler.Get)

	return r
}
