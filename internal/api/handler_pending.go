package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"candy-bianca-backend/internal/parse"
	"candy-bianca-backend/internal/pending"
)

// putPendingRequest changes only the fields that are present. Clear drops
// everything pending before the other fields are applied.
type putPendingRequest struct {
	Clear         bool    `json:"clear"`
	ProgramPreset *string `json:"program_preset"`
	ProgramURL    *string `json:"program_url"`
	Temperature   *int    `json:"temperature"`
	Spin          *int    `json:"spin"`
	Delay         *int    `json:"delay"`
}

func (r putPendingRequest) apply(p *pending.Options) error {
	if r.Clear {
		p.Clear()
	}
	if r.ProgramPreset != nil {
		if *r.ProgramPreset == "" {
			p.ProgramPreset = ""
		} else if err := p.SetPreset(*r.ProgramPreset); err != nil {
			return err
		}
	}
	if r.ProgramURL != nil {
		if *r.ProgramURL == "" {
			p.SetProgramURL("")
		} else {
			fragment, err := parse.ParseFragment(*r.ProgramURL)
			if err != nil {
				return err
			}
			p.SetProgramURL(fragment.String())
		}
	}
	if r.Temperature != nil {
		if err := p.SetTemperature(*r.Temperature); err != nil {
			return err
		}
	}
	if r.Spin != nil {
		if err := p.SetSpin(*r.Spin); err != nil {
			return err
		}
	}
	if r.Delay != nil {
		if err := p.SetDelay(*r.Delay); err != nil {
			return err
		}
	}
	return nil
}

// GetPending handles GET /api/devices/:id/pending.
func (h *Handler) GetPending(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ctrl.Entry().Pending())
}

// PutPending handles PUT /api/devices/:id/pending.
func (h *Handler) PutPending(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	var req putPendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := ctrl.Entry().UpdatePending(req.apply)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}
