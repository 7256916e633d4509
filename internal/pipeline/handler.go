package pipeline

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Runner is satisfied by *Orchestrator.
type Runner interface {
	Run(ctx context.Context, opts Options) Report
	LastSuccessfulSync(ctx context.Context) (*time.Time, error)
	Stats(ctx context.Context) (Stats, error)
}

type Handler struct {
	Runner Runner
}

func NewHandler(r Runner) *Handler {
	return &Handler{Runner: r}
}

// RegisterStatusRoutes mounts the public read side.
func (h *Handler) RegisterStatusRoutes(rg *gin.RouterGroup) {
	rg.GET("/status", h.status) // GET /sync/status
}

// RegisterAdminRoutes mounts the trigger; rg is expected to carry auth.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/sync", h.trigger) // POST /admin/sync
}

func (h *Handler) status(c *gin.Context) {
	last, err := h.Runner.LastSuccessfulSync(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "status failed"})
		return
	}
	stats, err := h.Runner.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "status failed"})
		return
	}
	var v any
	if last != nil {
		v = last.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, gin.H{"last_successful_sync": v, "counts": stats})
}

type triggerReq struct {
	Task        string `json:"task"`
	NoTimeLimit bool   `json:"no_time_limit"`
}

func (h *Handler) trigger(c *gin.Context) {
	var req triggerReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
	}
	if t := c.Query("task"); t != "" {
		req.Task = t
	}

	// a client that hangs up does not abort the run; unknown tasks and
	// failing steps are reported in the body, not as errors
	ctx := context.WithoutCancel(c.Request.Context())
	report := h.Runner.Run(ctx, Options{Task: req.Task, NoTimeLimit: req.NoTimeLimit})
	c.JSON(http.StatusOK, report)
}
