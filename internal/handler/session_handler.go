package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"devisflow/internal/middleware"
	"devisflow/internal/service"
)

// keepAliveInterval spaces SSE comments sent while no stage changes.
const keepAliveInterval = 15 * time.Second

// SessionHandler exposes the caller's processing session.
type SessionHandler struct {
	sessions *service.SessionRegistry
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *service.SessionRegistry) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type timelineResponse struct {
	InFlight  bool                   `json:"in_flight"`
	Timelines []service.FileTimeline `json:"timelines"`
}

// Timeline handles GET /api/v1/session/timeline
func (h *SessionHandler) Timeline(c *gin.Context) {
	s := h.sessions.Get(middleware.GetUserID(c))
	RespondOK(c, timelineResponse{InFlight: s.InFlight(), Timelines: s.Timelines()})
}

// Events handles GET /api/v1/session/events. It streams one "stage" event
// per timeline transition until the client goes away.
func (h *SessionHandler) Events(c *gin.Context) {
	s := h.sessions.Get(middleware.GetUserID(c))
	events, unsubscribe := s.Subscribe()
	defer unsubscribe()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("stage", ev)
			return true
		case <-ticker.C:
			_, _ = io.WriteString(w, ": keep-alive\n\n")
			return true
		}
	})
}

// Retry handles POST /api/v1/session/retry
func (h *SessionHandler) Retry(c *gin.Context) {
	result, err := h.sessions.Get(middleware.GetUserID(c)).Retry(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Cancel handles POST /api/v1/session/cancel
func (h *SessionHandler) Cancel(c *gin.Context) {
	canceled := h.sessions.Get(middleware.GetUserID(c)).Cancel()
	c.JSON(http.StatusAccepted, APIResponse{Success: true, Data: gin.H{"canceled": canceled}})
}
