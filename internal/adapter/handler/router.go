package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/srgjo27/tripdesk/internal/platform/auth"
)

type RouterDeps struct {
	Bookings *BookingHandler
	Leads    *LeadHandler
	Auth     *auth.Service
	Logger   *slog.Logger
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(d.Logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	sessions := v1.Group("/bookings/sessions")
	sessions.POST("", d.Bookings.Start)
	sessions.GET("/:id", d.Bookings.Get)
	sessions.PATCH("/:id", d.Bookings.Update)
	sessions.POST("/:id/next", d.Bookings.Next)
	sessions.POST("/:id/back", d.Bookings.Back)
	sessions.POST("/:id/confirm", d.Bookings.Confirm)
	sessions.DELETE("/:id", d.Bookings.Cancel)

	v1.POST("/leads", d.Leads.Capture)

	admin := v1.Group("/admin", AdminAuth(d.Auth))
	admin.GET("/leads", d.Leads.List)
	admin.GET("/leads/board", d.Leads.Board)
	admin.POST("/leads/assign", d.Leads.AssignOwners)
	admin.GET("/leads/:id", d.Leads.Get)
	admin.POST("/leads/:id/stage", d.Leads.UpdateStage)
	admin.POST("/leads/:id/lost", d.Leads.MarkLost)
	admin.POST("/leads/:id/reminder", d.Leads.SetReminder)
	admin.POST("/leads/:id/processed", d.Leads.MarkProcessed)
	admin.GET("/stats/booking-events", d.Leads.BookingEvents)

	return r
}
