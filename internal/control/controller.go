package control

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"candy-bianca-backend/internal/command"
	"candy-bianca-backend/internal/entry"
	"candy-bianca-backend/internal/model"
	"candy-bianca-backend/internal/pending"
	"candy-bianca-backend/internal/store"
)

const (
	ActionStart   = "start"
	ActionStop    = "stop"
	ActionRefresh = "refresh"
)

// ErrNoRefresher is returned by Refresh when the controller has no poller.
var ErrNoRefresher = errors.New("refresh is not available")

// Writer sends an encoded command to the washer.
type Writer interface {
	Write(ctx context.Context, params string) error
}

// Refresher runs one poll out of schedule.
type Refresher interface {
	PollOnce(ctx context.Context) error
}

// ActionListener is told about every action once it has completed.
type ActionListener interface {
	ActionCompleted(deviceID string, result entry.ActionResult)
}

// Controller runs start, stop and refresh for one washer.
type Controller struct {
	entry     *entry.Entry
	writer    Writer
	refresher Refresher
	store     store.Store
	listeners []ActionListener
	logger    *zap.Logger
	now       func() time.Time
}

// NewController wires a controller. refresher and s may be nil: without a
// store actions are not persisted, without a refresher Refresh fails.
func NewController(e *entry.Entry, w Writer, refresher Refresher, s store.Store, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		entry:     e,
		writer:    w,
		refresher: refresher,
		store:     s,
		logger:    logger.With(zap.String("device", e.ID)),
		now:       time.Now,
	}
}

// AddListener registers l for action results.
func (c *Controller) AddListener(l ActionListener) {
	c.listeners = append(c.listeners, l)
}

// Entry returns the device context this controller acts on.
func (c *Controller) Entry() *entry.Entry {
	return c.entry
}

// Start sends a start command built from overrides, pending options and the
// last known status. Pending options are consumed even when the command
// fails. In test mode the command is built but not sent.
func (c *Controller) Start(ctx context.Context, o pending.Overrides) (entry.ActionResult, error) {
	intent := c.entry.TakeStartIntent(o)
	params := command.EncodeStart(intent)

	if c.entry.TestMode() {
		c.logger.Debug("Test mode: skipping start command", zap.String("params", params))
		return c.record(ctx, ActionStart, params, nil, "Test mode: start command skipped"), nil
	}

	err := c.writer.Write(ctx, params)
	if err != nil {
		err = fmt.Errorf("error calling start program on %s: %w", c.entry.Host, err)
	}
	return c.record(ctx, ActionStart, params, err, "start program command sent"), err
}

// Stop sends the stop command.
func (c *Controller) Stop(ctx context.Context) (entry.ActionResult, error) {
	params := command.EncodeStop()
	err := c.writer.Write(ctx, params)
	if err != nil {
		err = fmt.Errorf("error calling stop program on %s: %w", c.entry.Host, err)
	}
	return c.record(ctx, ActionStop, params, err, "stop program command sent"), err
}

// Refresh polls the washer immediately.
func (c *Controller) Refresh(ctx context.Context) (entry.ActionResult, error) {
	var err error
	if c.refresher == nil {
		err = ErrNoRefresher
	} else if err = c.refresher.PollOnce(ctx); err != nil {
		err = fmt.Errorf("refresh failed for %s: %w", c.entry.Host, err)
	}
	return c.record(ctx, ActionRefresh, "", err, "Refresh completed successfully"), err
}

func (c *Controller) record(ctx context.Context, action, params string, err error, okDetail string) entry.ActionResult {
	result := entry.ActionResult{
		Action:  action,
		Success: err == nil,
		Detail:  okDetail,
		At:      c.now().UTC(),
	}
	if err != nil {
		result.Detail = err.Error()
		c.logger.Error("Action failed", zap.String("action", action), zap.Error(err))
	} else {
		c.logger.Info("Action succeeded", zap.String("action", action), zap.String("detail", okDetail))
	}

	c.entry.SetLastAction(result)

	if c.store != nil {
		log := &model.ActionLog{
			ID:        uuid.NewString(),
			DeviceID:  c.entry.ID,
			Action:    action,
			Params:    params,
			Success:   result.Success,
			Detail:    result.Detail,
			CreatedAt: result.At,
		}
		if err := c.store.RecordAction(ctx, log); err != nil {
			c.logger.Warn("Failed to persist action", zap.Error(err))
		}
	}

	for _, l := range c.listeners {
		l.ActionCompleted(c.entry.ID, result)
	}
	return result
}
