package entry

import (
	"sync"
	"time"

	"candy-bianca-backend/config"
	"candy-bianca-backend/internal/command"
	"candy-bianca-backend/internal/pending"
	"candy-bianca-backend/internal/status"
)

// ActionResult is the outcome of the most recent start, stop or refresh.
type ActionResult struct {
	Action  string    `json:"action"`
	Success bool      `json:"success"`
	Detail  string    `json:"detail,omitempty"`
	At      time.Time `json:"at"`
}

// Entry is the per-washer context shared by the poller, the controller and
// the API. Its state lives in memory only.
type Entry struct {
	ID   string
	Name string
	Host string

	mu         sync.Mutex
	pending    pending.Options
	testMode   bool
	last       status.Raw
	lastPoll   time.Time
	lastErr    error
	lastAction *ActionResult
}

// New creates the entry for one configured device.
func New(cfg config.DeviceConfig) *Entry {
	return &Entry{
		ID:       cfg.ID,
		Name:     cfg.Name,
		Host:     cfg.Host,
		testMode: cfg.TestMode,
	}
}

// Pending returns a copy of the pending options.
func (e *Entry) Pending() pending.Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending.Clone()
}

// UpdatePending applies fn to the pending options. When fn fails the
// options are left untouched.
func (e *Entry) UpdatePending(fn func(*pending.Options) error) (pending.Options, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.pending.Clone()
	if err := fn(&next); err != nil {
		return e.pending.Clone(), err
	}
	e.pending = next
	return next.Clone(), nil
}

// TakeStartIntent builds the start parameters from overrides, pending
// options and the last known status. Pending options are consumed.
func (e *Entry) TakeStartIntent(o pending.Overrides) command.StartIntent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return pending.BuildStartIntent(&e.pending, e.last, o)
}

func (e *Entry) TestMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.testMode
}

func (e *Entry) SetTestMode(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.testMode = on
}

// SetStatus stores a successful poll.
func (e *Entry) SetStatus(raw status.Raw, at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.last = raw
	e.lastPoll = at
	e.lastErr = nil
}

// SetPollError marks the latest poll as failed. The last known status is kept.
func (e *Entry) SetPollError(err error, at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastPoll = at
	e.lastErr = err
}

// Status returns the last known raw status, the time of the latest poll
// attempt and its error, if any.
func (e *Entry) Status() (status.Raw, time.Time, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last.Clone(), e.lastPoll, e.lastErr
}

// Available reports whether the latest poll succeeded.
func (e *Entry) Available() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last != nil && e.lastErr == nil
}

func (e *Entry) SetLastAction(r ActionResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastAction = &r
}

// LastAction returns nil until the first action ran.
func (e *Entry) LastAction() *ActionResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastAction == nil {
		return nil
	}
	r := *e.lastAction
	return &r
}
