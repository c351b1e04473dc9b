package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const errGetState = "failed to load device state"

// getState returns the current filtration snapshot.
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.State(c.Request.Context())
	if err != nil {
		h.log.Errorw("device_state_failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errGetState})
		return
	}
	c.JSON(http.StatusOK, st)
}

// getLastReading returns the most recently published telemetry sample.
func (h *Handler) getLastReading(c *gin.Context) {
	reading, ok := h.services.Monitoring.LastReading(c.Request.Context())
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no reading published yet"})
		return
	}
	c.JSON(http.StatusOK, reading)
}
