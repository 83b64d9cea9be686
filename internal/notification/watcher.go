package notification

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"candy-bianca-backend/internal/programs"
	"candy-bianca-backend/internal/status"
)

// ProgramNamePlaceholder is replaced by the program's full name in finish messages.
const ProgramNamePlaceholder = "{program_name}"

// FinishSink delivers a finish message.
type FinishSink interface {
	Finished(deviceID, message string)
}

// FinishWatcher fires once when a washer moves from a running mode into
// Finished.
type FinishWatcher struct {
	deviceID string
	template string
	sinks    []FinishSink
	logger   *zap.Logger

	mu       sync.Mutex
	lastMode int
}

func NewFinishWatcher(deviceID, template string, logger *zap.Logger, sinks ...FinishSink) *FinishWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinishWatcher{
		deviceID: deviceID,
		template: template,
		sinks:    sinks,
		logger:   logger.With(zap.String("device", deviceID)),
		lastMode: status.ModeUnknown,
	}
}

// Observe records the snapshot's mode and returns the message to send, if any.
func (w *FinishWatcher) Observe(raw status.Raw) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	current := status.Mode(raw)
	previous := w.lastMode
	w.lastMode = current

	if current != status.ModeFinished || !wasRunning(previous) {
		return "", false
	}
	return FormatMessage(w.template, programs.Name(raw)), true
}

// OnStatus lets the watcher subscribe to a poller.
func (w *FinishWatcher) OnStatus(_ context.Context, _ string, raw status.Raw) {
	msg, fire := w.Observe(raw)
	if !fire {
		return
	}
	w.logger.Info("Cycle finished", zap.String("message", msg))
	for _, s := range w.sinks {
		s.Finished(w.deviceID, msg)
	}
}

// FormatMessage fills the program name into a finish message template.
func FormatMessage(template, programName string) string {
	return strings.ReplaceAll(template, ProgramNamePlaceholder, programName)
}

func wasRunning(mode int) bool {
	switch mode {
	case status.ModeUnknown, status.ModeUnavailable, status.ModeStopped, status.ModeFinished:
		return false
	}
	return true
}
