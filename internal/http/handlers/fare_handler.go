// README: Fare handlers for compute, quote, quote lookup and generated scenarios.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"commute/internal/modules/pricing"
)

const maxScenarioCount = 100

type FareHandler struct {
	pricing   *pricing.Service
	generator *pricing.Generator
	timeout   time.Duration
}

func NewFareHandler(svc *pricing.Service, gen *pricing.Generator, timeout time.Duration) *FareHandler {
	return &FareHandler{pricing: svc, generator: gen, timeout: timeout}
}

func (h *FareHandler) Compute(c *gin.Context) {
	var req pricing.FareContext
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	b, err := h.pricing.Estimate(c.Request.Context(), req)
	if err != nil {
		writeFareError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

func (h *FareHandler) Quote(c *gin.Context) {
	var req pricing.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()
	q, err := h.pricing.Quote(ctx, req)
	if err != nil {
		writeFareError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, q)
}

func (h *FareHandler) GetQuote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid quote id")
		return
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()
	q, err := h.pricing.GetQuote(ctx, id)
	if err != nil {
		writeFareError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}

// Scenario returns ?count generated scenarios for ?level (required) and ?rating.
func (h *FareHandler) Scenario(c *gin.Context) {
	level, err := strconv.Atoi(c.Query("level"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "level must be an integer")
		return
	}
	rating := pricing.DefaultRating
	if v := c.Query("rating"); v != "" {
		rating, err = strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(c, http.StatusBadRequest, "rating must be a number")
			return
		}
	}
	count := 1
	if v := c.Query("count"); v != "" {
		count, err = strconv.Atoi(v)
		if err != nil || count < 1 || count > maxScenarioCount {
			writeError(c, http.StatusBadRequest, "count must be between 1 and 100")
			return
		}
	}
	probe := pricing.FareContext{DriverLevel: level, Rating: rating}
	if err := probe.Validate(); err != nil {
		writeFareError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"scenarios": h.generator.GenerateBatch(count, level, rating)})
}
