package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/srgjo27/tripdesk/internal/core/domain"
	"github.com/srgjo27/tripdesk/internal/core/services"
	"github.com/srgjo27/tripdesk/internal/platform/clock"
)

type EventStats interface {
	Counts(ctx context.Context, day time.Time) (map[string]int64, error)
}

type LeadHandler struct {
	leads *services.LeadService
	stats EventStats
	clock clock.Clock
}

func NewLeadHandler(leads *services.LeadService, stats EventStats, clk clock.Clock) *LeadHandler {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &LeadHandler{leads: leads, stats: stats, clock: clk}
}

type stageRequest struct {
	Stage   domain.Stage `json:"stage" binding:"required"`
	Version int          `json:"version"`
}

type lostRequest struct {
	Reason  string `json:"reason"`
	Version int    `json:"version"`
}

type reminderRequest struct {
	Preset  services.ReminderPreset `json:"preset" binding:"required"`
	Version int                     `json:"version"`
}

type versionRequest struct {
	Version int `json:"version"`
}

func (h *LeadHandler) Capture(c *gin.Context) {
	var in services.LeadInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}

	lead, err := h.leads.Capture(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	success(c, http.StatusCreated, gin.H{"id": lead.ID})
}

func (h *LeadHandler) List(c *gin.Context) {
	filter := domain.LeadFilter{
		Stage: domain.Stage(c.Query("stage")),
		Owner: c.Query("owner"),
	}
	if v := c.Query("overdue"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			failure(c, http.StatusBadRequest, "INVALID_QUERY", "overdue must be a boolean")
			return
		}
		filter.OnlyOverdue = b
	}
	if v := c.Query("processed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			failure(c, http.StatusBadRequest, "INVALID_QUERY", "processed must be a boolean")
			return
		}
		filter.WithProcessed = b
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			failure(c, http.StatusBadRequest, "INVALID_QUERY", "limit must be a non-negative integer")
			return
		}
		filter.Limit = n
	}

	leads, err := h.leads.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, leads)
}

// Board returns the locally held working set without touching the store.
func (h *LeadHandler) Board(c *gin.Context) {
	success(c, http.StatusOK, h.leads.Board())
}

func (h *LeadHandler) Get(c *gin.Context) {
	lead, err := h.leads.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, lead)
}

func (h *LeadHandler) UpdateStage(c *gin.Context) {
	var req stageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	lead, err := h.leads.UpdateStage(c.Request.Context(), c.Param("id"), req.Stage, req.Version)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, lead)
}

func (h *LeadHandler) MarkLost(c *gin.Context) {
	var req lostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	lead, err := h.leads.MarkLost(c.Request.Context(), c.Param("id"), req.Reason, req.Version)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, lead)
}

func (h *LeadHandler) SetReminder(c *gin.Context) {
	var req reminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	lead, err := h.leads.SetReminder(c.Request.Context(), c.Param("id"), req.Preset, req.Version)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, lead)
}

func (h *LeadHandler) MarkProcessed(c *gin.Context) {
	var req versionRequest
	// An empty body means "latest version".
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	lead, err := h.leads.MarkProcessed(c.Request.Context(), c.Param("id"), req.Version)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, lead)
}

func (h *LeadHandler) AssignOwners(c *gin.Context) {
	n, err := h.leads.AssignOwners(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"assigned": n})
}

func (h *LeadHandler) BookingEvents(c *gin.Context) {
	day := h.clock.Now()
	if v := c.Query("date"); v != "" {
		d, err := time.Parse(time.DateOnly, v)
		if err != nil {
			failure(c, http.StatusBadRequest, "INVALID_QUERY", "date must be YYYY-MM-DD")
			return
		}
		day = d
	}

	counts, err := h.stats.Counts(c.Request.Context(), day)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{
		"date":   day.UTC().Format(time.DateOnly),
		"counts": counts,
	})
}
