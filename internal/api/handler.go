package api

import (
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"candy-bianca-backend/internal/control"
	"candy-bianca-backend/internal/store"
	"candy-bianca-backend/internal/timer"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	registry *control.Registry
	store    store.Store
	webpush  *webpush.Options
	timers   map[string]*timer.Tracker
}

// NewHandler creates a new API handler. timers holds the countdown tracker
// of every device that has one enabled.
func NewHandler(r *control.Registry, s store.Store, webpushOptions *webpush.Options, timers map[string]*timer.Tracker) *Handler {
	if timers == nil {
		timers = map[string]*timer.Tracker{}
	}
	return &Handler{
		registry: r,
		store:    s,
		webpush:  webpushOptions,
		timers:   timers,
	}
}

// controller resolves the :id parameter or answers 404.
func (h *Handler) controller(c *gin.Context) (*control.Controller, bool) {
	ctrl, ok := h.registry.Get(c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "device not found"})
		return nil, false
	}
	return ctrl, true
}
