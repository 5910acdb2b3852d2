// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"commute/internal/maps"
	"commute/internal/modules/pricing"
	"commute/internal/modules/schedule"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, schedule.ErrBadRequest), errors.Is(err, schedule.ErrInvalidSchedule):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, schedule.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, schedule.ErrStorageUnavailable), errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusServiceUnavailable, "schedule storage unavailable")
	case errors.Is(err, schedule.ErrStorageWrite):
		writeError(c, http.StatusInternalServerError, "could not save schedule")
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeFareError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pricing.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, pricing.ErrQuoteNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, maps.ErrNoRoute):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, pricing.ErrRoutingUnavailable), errors.Is(err, pricing.ErrLedgerUnavailable):
		writeError(c, http.StatusNotImplemented, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusGatewayTimeout, "upstream timeout")
	default:
		writeError(c, http.StatusBadGateway, "pricing upstream error")
	}
}

// withTimeout bounds one storage or upstream call by d (no bound when d <= 0).
func withTimeout(c *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), d)
}
