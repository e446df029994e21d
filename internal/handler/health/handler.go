package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

const checkTimeout = 2 * time.Second

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

type Handler struct {
	checks map[string]Check
}

// NewHandler takes the named dependency checks run by the readiness probe.
func NewHandler(checks map[string]Check) *Handler {
	return &Handler{checks: checks}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.ReadinessCheck)
	r.GET("/health/live", h.LivenessCheck)
	r.GET("/health/ready", h.ReadinessCheck)
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	components := gin.H{}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			status = http.StatusServiceUnavailable
			components[name] = gin.H{"status": "DOWN", "reason": err.Error()}
			continue
		}
		components[name] = gin.H{"status": "UP"}
	}

	overall := "UP"
	if status != http.StatusOK {
		overall = "DOWN"
	}
	c.JSON(status, gin.H{"status": overall, "components": components})
}
