package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetEvents handles the GET /api/events request. It returns the latest
// event-log result, or 503 before the first successful poll.
func (h *Handler) GetEvents(c *gin.Context) {
	result, ok := h.store.EventLog()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event log unavailable"})
		return
	}
	c.JSON(http.StatusOK, result)
}
