package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/anonq-bot/internal/response"
)

const healthTimeout = 3 * time.Second

// Pinger is a dependency that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Counters is the read side of the statistics and question services.
type Counters interface {
	Snapshot(ctx context.Context) (map[string]int64, error)
}

// ActiveCounter reports how many questions still accept responses.
type ActiveCounter interface {
	ActiveCount(ctx context.Context) (int, error)
}

// OpsHandler serves health and usage endpoints.
type OpsHandler struct {
	pingers   map[string]Pinger
	counters  Counters
	active    ActiveCounter
	startTime time.Time
	log       zerolog.Logger
}

// NewOpsHandler creates a new OpsHandler. pingers are keyed by dependency name.
func NewOpsHandler(pingers map[string]Pinger, counters Counters, active ActiveCounter, log zerolog.Logger) *OpsHandler {
	return &OpsHandler{
		pingers:   pingers,
		counters:  counters,
		active:    active,
		startTime: time.Now(),
		log:       log.With().Str("component", "ops_handler").Logger(),
	}
}

type healthReport struct {
	Status       string            `json:"status"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

// Health godoc
// GET /healthz
func (h *OpsHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	report := healthReport{
		Status:       "ok",
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Dependencies: make(map[string]string, len(h.pingers)),
	}
	for name, p := range h.pingers {
		if err := p.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("health check failed")
			report.Dependencies[name] = "down"
			report.Status = "degraded"
			continue
		}
		report.Dependencies[name] = "up"
	}

	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	response.Success(c, status, report)
}

type statsReport struct {
	Counters        map[string]int64 `json:"counters"`
	ActiveQuestions int              `json:"active_questions"`
}

// Stats godoc
// GET /api/v1/stats
func (h *OpsHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	counters, err := h.counters.Snapshot(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("read statistics")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	active, err := h.active.ActiveCount(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("count active questions")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, statsReport{Counters: counters, ActiveQuestions: active})
}
