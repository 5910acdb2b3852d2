// README: Progress handler projecting the booking flow for the UI step indicator.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"commute/internal/modules/progress"
)

type ProgressHandler struct{}

func NewProgressHandler() *ProgressHandler {
	return &ProgressHandler{}
}

func (h *ProgressHandler) Get(c *gin.Context) {
	step := c.DefaultQuery("step", string(progress.StepTimeSchedule))
	id, err := progress.ParseStepID(step)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	resp := gin.H{
		"currentStep": id,
		"steps":       progress.Steps(id),
		"terminal":    progress.IsTerminal(id),
	}
	if next, ok := progress.Next(id); ok {
		resp["nextStep"] = next
	}
	if prev, ok := progress.Previous(id); ok {
		resp["previousStep"] = prev
	}
	writeJSON(c, http.StatusOK, resp)
}
