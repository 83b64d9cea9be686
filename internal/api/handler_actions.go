package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"candy-bianca-backend/internal/entry"
	"candy-bianca-backend/internal/pending"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func actionResponse(c *gin.Context, result entry.ActionResult, err error) {
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "result": result})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// PostStart handles POST /api/devices/:id/start. The body is optional.
func (h *Handler) PostStart(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	var o pending.Overrides
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&o); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if err := o.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := ctrl.Start(c.Request.Context(), o)
	actionResponse(c, result, err)
}

// PostStop handles POST /api/devices/:id/stop.
func (h *Handler) PostStop(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	result, err := ctrl.Stop(c.Request.Context())
	actionResponse(c, result, err)
}

// PostRefresh handles POST /api/devices/:id/refresh.
func (h *Handler) PostRefresh(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	result, err := ctrl.Refresh(c.Request.Context())
	actionResponse(c, result, err)
}

func listLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return 0, false
	}
	if n > maxListLimit {
		n = maxListLimit
	}
	return n, true
}

// GetHistory handles GET /api/devices/:id/history.
func (h *Handler) GetHistory(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	limit, ok := listLimit(c)
	if !ok {
		return
	}
	rows, err := h.store.History(c.Request.Context(), ctrl.Entry().ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve history"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetActions handles GET /api/devices/:id/actions.
func (h *Handler) GetActions(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	limit, ok := listLimit(c)
	if !ok {
		return
	}
	rows, err := h.store.Actions(c.Request.Context(), ctrl.Entry().ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve actions"})
		return
	}
	c.JSON(http.StatusOK, rows)
}
