// ============================================================================
// RoboGrid - Roboter-Raster-Interpreter
// ============================================================================
//
// Package:     server
// Description: HTTP API and live feed for a shared engine
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	rgerror "github.com/msto63/robogrid/foundation/core/error"
	"github.com/msto63/robogrid/internal/board"
	"github.com/msto63/robogrid/internal/engine"
	"github.com/msto63/robogrid/internal/journal"
	"github.com/msto63/robogrid/pkg/core/cache"
	"github.com/msto63/robogrid/pkg/core/health"
	"github.com/msto63/robogrid/pkg/core/logging"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 1000
	healthTimeout       = 3 * time.Second
	defaultHistoryTTL   = 2 * time.Second
	historyCacheSize    = 64
	historyCacheSweep   = time.Minute
)

// Controller is the engine surface the API drives
type Controller interface {
	Start(raw string)
	Stop()
	Resume()
	Restart()
	Rerun()
	Reset()
	Snapshot() engine.Snapshot
}

// Handler serves the HTTP API
type Handler struct {
	engine  Controller
	board   *board.Board
	journal journal.Store
	health  *health.Registry
	hub     *Hub
	logger  *logging.Logger

	// history responses are cached per outcome count, so a new outcome
	// always misses
	lists *cache.Cache[[]*journal.Entry]
	stats *cache.Cache[*journal.Stats]
}

// HandlerOptions bundles the handler dependencies. Board, Journal and Health
// are optional.
type HandlerOptions struct {
	Engine  Controller
	Board   *board.Board
	Journal journal.Store
	Health  *health.Registry
	Hub     *Hub
	Logger  *logging.Logger
	// HistoryTTL bounds how long history responses are cached
	HistoryTTL time.Duration
}

// NewHandler creates a new API handler
func NewHandler(opts HandlerOptions) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logging.New("api")
	}
	hub := opts.Hub
	if hub == nil {
		hub = NewHub(logger)
	}
	ttl := opts.HistoryTTL
	if ttl <= 0 {
		ttl = defaultHistoryTTL
	}
	cacheCfg := cache.Config{MaxItems: historyCacheSize, TTL: ttl, CleanupInterval: historyCacheSweep}

	return &Handler{
		engine:  opts.Engine,
		board:   opts.Board,
		journal: opts.Journal,
		health:  opts.Health,
		hub:     hub,
		logger:  logger,
		lists:   cache.New[[]*journal.Entry](cacheCfg),
		stats:   cache.New[*journal.Stats](cacheCfg),
	}
}

// Hub returns the live feed hub
func (h *Handler) Hub() *Hub { return h.hub }

// Close stops the history cache sweepers
func (h *Handler) Close() {
	h.lists.Close()
	h.stats.Close()
}

// RegisterRoutes registers all routes
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	v1 := e.Group("/api/v1")
	v1.GET("/state", h.State)
	v1.POST("/run", h.Run)
	v1.POST("/stop", h.control(h.engine.Stop))
	v1.POST("/resume", h.control(h.engine.Resume))
	v1.POST("/restart", h.control(h.engine.Restart))
	v1.POST("/reset", h.control(h.engine.Reset))
	v1.POST("/rerun", h.control(h.engine.Rerun))
	v1.GET("/history", h.History)
	v1.GET("/history/stats", h.HistoryStats)
	v1.GET("/ws", h.WebSocket)
}

// RunRequest is the body of POST /api/v1/run
type RunRequest struct {
	Program string `json:"program"`
}

// StateResponse is returned by the state and control endpoints
type StateResponse struct {
	Snapshot    engine.Snapshot `json:"snapshot"`
	Cells       [][]string      `json:"cells,omitempty"`
	LastOutcome *engine.Outcome `json:"last_outcome,omitempty"`
}

// HistoryResponse is returned by GET /api/v1/history
type HistoryResponse struct {
	Entries []*journal.Entry `json:"entries"`
	Count   int              `json:"count"`
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	if h.health == nil {
		return c.JSON(http.StatusOK, map[string]string{"status": string(health.StatusHealthy)})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	report := h.health.Check(ctx)
	status := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, report)
}

// State handles GET /api/v1/state
func (h *Handler) State(c echo.Context) error {
	return c.JSON(http.StatusOK, h.state())
}

// Run handles POST /api/v1/run
func (h *Handler) Run(c echo.Context) error {
	var req RunRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, rgerror.Wrap(err, "invalid request body").WithCode(rgerror.CodeInvalidInput))
	}

	h.engine.Start(req.Program)
	h.logger.Info("run requested", "remote", c.RealIP())
	return c.JSON(http.StatusAccepted, h.state())
}

func (h *Handler) control(op func()) echo.HandlerFunc {
	return func(c echo.Context) error {
		op()
		return c.JSON(http.StatusOK, h.state())
	}
}

// History handles GET /api/v1/history
func (h *Handler) History(c echo.Context) error {
	if h.journal == nil {
		return h.fail(c, rgerror.New("journal disabled").WithCode(rgerror.CodeServiceUnavailable))
	}

	filter := journal.Filter{Kind: c.QueryParam("kind"), Limit: defaultHistoryLimit}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return h.fail(c, rgerror.Newf("invalid limit %q", raw).WithCode(rgerror.CodeInvalidInput))
		}
		if limit > maxHistoryLimit {
			limit = maxHistoryLimit
		}
		filter.Limit = limit
	}
	if filter.Kind != "" {
		if _, ok := engine.ParseOutcomeKind(filter.Kind); !ok {
			return h.fail(c, rgerror.Newf("invalid kind %q", filter.Kind).WithCode(rgerror.CodeInvalidInput))
		}
	}

	ctx := c.Request().Context()
	key := fmt.Sprintf("%d:%s:%d", h.hub.Outcomes(), filter.Kind, filter.Limit)
	entries, err := h.lists.GetOrSet(key, func() ([]*journal.Entry, error) {
		return h.journal.List(ctx, filter)
	})
	if err != nil {
		return h.fail(c, rgerror.Wrap(err, "list history").WithCode(rgerror.CodeStorageError))
	}
	if entries == nil {
		entries = []*journal.Entry{}
	}
	return c.JSON(http.StatusOK, HistoryResponse{Entries: entries, Count: len(entries)})
}

// HistoryStats handles GET /api/v1/history/stats
func (h *Handler) HistoryStats(c echo.Context) error {
	if h.journal == nil {
		return h.fail(c, rgerror.New("journal disabled").WithCode(rgerror.CodeServiceUnavailable))
	}
	ctx := c.Request().Context()
	key := fmt.Sprintf("%d", h.hub.Outcomes())
	stats, err := h.stats.GetOrSet(key, func() (*journal.Stats, error) {
		return h.journal.Stats(ctx)
	})
	if err != nil {
		return h.fail(c, rgerror.Wrap(err, "journal stats").WithCode(rgerror.CodeStorageError))
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) state() StateResponse {
	return h.stateWith(h.hub.LastOutcome())
}

func (h *Handler) stateWith(last *engine.Outcome) StateResponse {
	resp := StateResponse{Snapshot: h.engine.Snapshot(), LastOutcome: last}
	if h.board != nil {
		resp.Cells = h.board.Cells()
	}
	return resp
}

func (h *Handler) fail(c echo.Context, err error) error {
	code := rgerror.GetCode(err)
	if code.HTTPStatus() >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.Path(), "code", code, "error", err)
	} else {
		h.logger.Debug("request rejected", "path", c.Path(), "code", code, "error", err)
	}
	return c.JSON(code.HTTPStatus(), ErrorPayload{Code: code.String(), Message: err.Error()})
}
