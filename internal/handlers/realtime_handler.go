package handlers

import (
	"context"
	"net/http"
	"time"

	"unipool/internal/middleware"
	"unipool/internal/services"
	"unipool/internal/utils"

	"github.com/gin-gonic/gin"
)

type RealtimeHandler struct {
	authService services.RealtimeAuthService
}

func NewRealtimeHandler(authService services.RealtimeAuthService) *RealtimeHandler {
	return &RealtimeHandler{
		authService: authService,
	}
}

// IssueToken hands out a websocket token for ?userId=, falling back to the
// caller identity header.
func (h *RealtimeHandler) IssueToken(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		userID = middleware.UserID(c)
	}

	token, err := h.authService.IssueToken(userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Realtime token issued", token)
}

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	version string
	checks  map[string]Pinger
}

func NewHealthHandler(version string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		version: version,
		checks:  checks,
	}
}

// Health reports 503 when any dependency fails its ping.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	dependencies := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			dependencies[name] = "unavailable"
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		dependencies[name] = "ok"
	}

	c.JSON(code, gin.H{
		"status":       status,
		"version":      h.version,
		"dependencies": dependencies,
		"timestamp":    time.Now().UTC(),
	})
}
