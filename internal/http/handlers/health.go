package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReadyChecker reports whether the model has been loaded.
type ReadyChecker interface {
	Loaded() bool
}

type HealthHandler struct {
	ready ReadyChecker
}

func NewHealthHandler(ready ReadyChecker) *HealthHandler { return &HealthHandler{ready: ready} }

// GET /healthz
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /readyz
func (h *HealthHandler) ReadyCheck(c *gin.Context) {
	if h.ready == nil || !h.ready.Loaded() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
