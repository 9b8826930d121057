package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetController handles the GET /api/controller request. It returns the
// latest controller snapshot, or 503 before the first successful poll. A
// stale snapshot from a failed cycle is still served: stale-but-present
// beats flapping to unavailable.
func (h *Handler) GetController(c *gin.Context) {
	snapshot, ok := h.store.Snapshot()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "controller data unavailable"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
