package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"candy-bianca-backend/internal/entry"
	"candy-bianca-backend/internal/programs"
	"candy-bianca-backend/internal/status"
)

type deviceSummary struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Host             string     `json:"host"`
	Available        bool       `json:"available"`
	TestMode         bool       `json:"test_mode"`
	Mode             string     `json:"mode"`
	Program          string     `json:"program"`
	RemainingMinutes *int       `json:"remaining_minutes"`
	LastPoll         *time.Time `json:"last_poll"`
}

type deviceStatusResponse struct {
	deviceSummary
	Error      string              `json:"error,omitempty"`
	Status     status.Normalized   `json:"status"`
	LastAction *entry.ActionResult `json:"last_action"`
}

func summarize(e *entry.Entry) (deviceSummary, status.Normalized, error) {
	raw, lastPoll, err := e.Status()
	n := status.Interpret(raw)

	s := deviceSummary{
		ID:               e.ID,
		Name:             e.Name,
		Host:             e.Host,
		Available:        e.Available(),
		TestMode:         e.TestMode(),
		Mode:             n.Mode,
		Program:          n.Program,
		RemainingMinutes: n.RemainingMinutes,
	}
	if !lastPoll.IsZero() {
		s.LastPoll = &lastPoll
	}
	return s, n, err
}

// GetPrograms handles GET /api/programs.
func (h *Handler) GetPrograms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"presets":             programs.Presets(),
		"catalog":             programs.Catalog(),
		"temperature_options": programs.TemperatureOptions,
		"spin_options":        programs.SpinOptions,
	})
}

// GetDevices handles GET /api/devices.
func (h *Handler) GetDevices(c *gin.Context) {
	controllers := h.registry.List()
	out := make([]deviceSummary, 0, len(controllers))
	for _, ctrl := range controllers {
		s, _, _ := summarize(ctrl.Entry())
		out = append(out, s)
	}
	c.JSON(http.StatusOK, out)
}

// GetDeviceStatus handles GET /api/devices/:id/status.
func (h *Handler) GetDeviceStatus(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	e := ctrl.Entry()
	s, n, err := summarize(e)

	resp := deviceStatusResponse{
		deviceSummary: s,
		Status:        n,
		LastAction:    e.LastAction(),
	}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// GetSensors handles GET /api/devices/:id/sensors.
func (h *Handler) GetSensors(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	raw, _, _ := ctrl.Entry().Status()
	c.JSON(http.StatusOK, gin.H{
		"available": ctrl.Entry().Available(),
		"sensors":   status.Readings(status.Interpret(raw)),
	})
}

// GetRaw handles GET /api/devices/:id/raw.
func (h *Handler) GetRaw(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	raw, _, _ := ctrl.Entry().Status()
	if raw == nil {
		raw = status.Raw{}
	}
	c.JSON(http.StatusOK, raw)
}

// GetTimer handles GET /api/devices/:id/timer.
func (h *Handler) GetTimer(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	tr, ok := h.timers[ctrl.Entry().ID]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "timer is not enabled for this device"})
		return
	}
	c.JSON(http.StatusOK, tr.State())
}

type testModeRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// PutTestMode handles PUT /api/devices/:id/test_mode.
func (h *Handler) PutTestMode(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	var req testModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctrl.Entry().SetTestMode(*req.Enabled)
	c.JSON(http.StatusOK, gin.H{"test_mode": *req.Enabled})
}
