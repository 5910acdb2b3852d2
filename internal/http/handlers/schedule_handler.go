// README: Schedule handlers for get/save/override/clear and upcoming trips.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"commute/internal/modules/schedule"
	"commute/internal/types"
)

type ScheduleHandler struct {
	schedule *schedule.Service
	timeout  time.Duration
	now      func() time.Time
}

func NewScheduleHandler(svc *schedule.Service, timeout time.Duration) *ScheduleHandler {
	return &ScheduleHandler{schedule: svc, timeout: timeout, now: time.Now}
}

func (h *ScheduleHandler) Get(c *gin.Context) {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()
	snap, err := h.schedule.Get(ctx, types.ID(c.Param("id")))
	if err != nil {
		writeScheduleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, snap)
}

func (h *ScheduleHandler) Put(c *gin.Context) {
	var req schedule.WeeklySchedule
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()
	saved, err := h.schedule.Save(ctx, types.ID(c.Param("id")), req)
	if err != nil {
		writeScheduleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, saved)
}

func (h *ScheduleHandler) PutDay(c *gin.Context) {
	day, err := schedule.ParseDay(c.Param("day"))
	if err != nil {
		writeScheduleError(c, err)
		return
	}
	var req schedule.DayTimes
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()
	saved, err := h.schedule.SetDayOverride(ctx, types.ID(c.Param("id")), day, req)
	if err != nil {
		writeScheduleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, saved)
}

func (h *ScheduleHandler) DeleteDay(c *gin.Context) {
	day, err := schedule.ParseDay(c.Param("day"))
	if err != nil {
		writeScheduleError(c, err)
		return
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()
	saved, err := h.schedule.ClearDayOverride(ctx, types.ID(c.Param("id")), day)
	if err != nil {
		writeScheduleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, saved)
}

func (h *ScheduleHandler) Delete(c *gin.Context) {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()
	if err := h.schedule.Clear(ctx, types.ID(c.Param("id"))); err != nil {
		writeScheduleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Trips expands the schedule; ?from=RFC3339 (default now) and ?days=N (default 7).
func (h *ScheduleHandler) Trips(c *gin.Context) {
	from := h.now()
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "from must be RFC3339")
			return
		}
		from = t
	}
	days := 7
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "days must be an integer")
			return
		}
		days = n
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()
	trips, err := h.schedule.UpcomingTrips(ctx, types.ID(c.Param("id")), from, days)
	if err != nil {
		writeScheduleError(c, err)
		return
	}
	if trips == nil {
		trips = []schedule.Trip{}
	}
	writeJSON(c, http.StatusOK, gin.H{"trips": trips})
}
