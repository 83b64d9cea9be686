package store

import "candy-bianca-backend/internal/status"

// CycleObservation is one poll result as far as persistence is concerned.
type CycleObservation struct {
	DeviceID         string
	Mode             int
	Program          string
	RemainingSeconds int // 0 when unknown
}

// IsIdleMode reports whether a machine mode means no cycle is in progress.
// Finished counts as idle: the running period ends when the washer reports it.
func IsIdleMode(mode int) bool {
	switch mode {
	case status.ModeUnknown, status.ModeUnavailable, status.ModeStopped, status.ModeFinished:
		return true
	}
	return false
}
