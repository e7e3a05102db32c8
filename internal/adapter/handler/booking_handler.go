package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/srgjo27/tripdesk/internal/core/domain"
	"github.com/srgjo27/tripdesk/internal/core/services"
)

type BookingHandler struct {
	sessions *services.SessionManager
}

func NewBookingHandler(sessions *services.SessionManager) *BookingHandler {
	return &BookingHandler{sessions: sessions}
}

type startSessionRequest struct {
	TripID string `json:"trip_id" binding:"required"`
}

// updateDraftRequest carries any subset of the wizard fields. Fields are
// applied in order: date, route, group size, customer, notes.
type updateDraftRequest struct {
	Date      *string          `json:"date"`
	Route     *string          `json:"route"`
	GroupSize *int             `json:"group_size"`
	Customer  *domain.Customer `json:"customer"`
	Medical   *string          `json:"medical"`
	Diet      *string          `json:"diet"`
}

func (h *BookingHandler) Start(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	flow, err := h.sessions.Start(c.Request.Context(), req.TripID)
	if err != nil {
		respondError(c, err)
		return
	}

	success(c, http.StatusCreated, flow.Snapshot())
}

func (h *BookingHandler) Get(c *gin.Context) {
	flow, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, flow.Snapshot())
}

func (h *BookingHandler) Update(c *gin.Context) {
	flow, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req updateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if req.Date != nil {
		if err := flow.SetDate(*req.Date); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Route != nil {
		if err := flow.SetRoute(*req.Route); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.GroupSize != nil {
		if err := flow.SetGroupSize(c.Request.Context(), *req.GroupSize); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Customer != nil {
		if err := flow.SetCustomer(*req.Customer); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Medical != nil || req.Diet != nil {
		cur := flow.Snapshot()
		medical, diet := cur.Medical, cur.Diet
		if req.Medical != nil {
			medical = *req.Medical
		}
		if req.Diet != nil {
			diet = *req.Diet
		}
		if err := flow.SetNotes(medical, diet); err != nil {
			respondError(c, err)
			return
		}
	}

	success(c, http.StatusOK, flow.Snapshot())
}

func (h *BookingHandler) Next(c *gin.Context) {
	flow, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := flow.Next(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, flow.Snapshot())
}

func (h *BookingHandler) Back(c *gin.Context) {
	flow, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := flow.Back(); err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, flow.Snapshot())
}

func (h *BookingHandler) Confirm(c *gin.Context) {
	flow, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	summary, err := flow.Confirm(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	// The summary is the last thing the wizard shows; the session is done.
	_ = h.sessions.Close(flow.ID())

	success(c, http.StatusCreated, summary)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	if err := h.sessions.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
