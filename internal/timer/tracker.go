package timer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"candy-bianca-backend/internal/status"
)

// Action is what a status update did to the countdown.
type Action string

const (
	ActionNone   Action = ""
	ActionStart  Action = "start" // start or resync
	ActionFinish Action = "finish"
	ActionCancel Action = "cancel"
)

// Countdown mirrors the washer's remaining time.
type Countdown struct {
	Active    bool      `json:"active"`
	Duration  string    `json:"duration,omitempty"` // HH:MM:SS at the last sync
	EndsAt    time.Time `json:"ends_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sink receives countdown changes.
type Sink interface {
	CountdownChanged(deviceID string, action Action, c Countdown)
}

// Tracker keeps one washer's countdown in step with its status.
type Tracker struct {
	deviceID string
	sinks    []Sink
	logger   *zap.Logger
	now      func() time.Time

	mu    sync.Mutex
	state Countdown
}

func NewTracker(deviceID string, logger *zap.Logger, sinks ...Sink) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		deviceID: deviceID,
		sinks:    sinks,
		logger:   logger.With(zap.String("device", deviceID)),
		now:      time.Now,
	}
}

// Observe applies a status snapshot and reports what changed.
func (t *Tracker) Observe(raw status.Raw) (Action, Countdown) {
	t.mu.Lock()
	defer t.mu.Unlock()

	mode := status.Mode(raw)
	remaining, known := status.RemainingSeconds(raw)
	now := t.now().UTC()

	if isRunning(mode, remaining, known) {
		if !known || remaining <= 0 {
			return ActionNone, t.state
		}
		t.state = Countdown{
			Active:    true,
			Duration:  FormatDuration(remaining),
			EndsAt:    now.Add(time.Duration(remaining) * time.Second),
			UpdatedAt: now,
		}
		return ActionStart, t.state
	}

	if !t.state.Active {
		return ActionNone, t.state
	}

	t.state = Countdown{UpdatedAt: now}
	if mode == status.ModeFinished {
		return ActionFinish, t.state
	}
	return ActionCancel, t.state
}

// State returns the current countdown.
func (t *Tracker) State() Countdown {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// OnStatus lets the tracker subscribe to a poller.
func (t *Tracker) OnStatus(_ context.Context, _ string, raw status.Raw) {
	action, c := t.Observe(raw)
	if action == ActionNone {
		return
	}
	t.logger.Debug("Countdown updated", zap.String("action", string(action)), zap.String("duration", c.Duration))
	for _, s := range t.sinks {
		s.CountdownChanged(t.deviceID, action, c)
	}
}

// FormatDuration renders seconds as HH:MM:SS; negative values render as zero.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

func isRunning(mode, remaining int, known bool) bool {
	if known && remaining > 0 {
		return true
	}
	switch mode {
	case status.ModeUnavailable, status.ModeStopped, status.ModeFinished, status.ModeUnknown:
		return false
	}
	return true
}
