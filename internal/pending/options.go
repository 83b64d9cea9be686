package pending

import (
	"errors"
	"fmt"

	"candy-bianca-backend/internal/programs"
)

var (
	ErrUnknownPreset      = errors.New("unknown program preset")
	ErrInvalidTemperature = errors.New("temperature is not one of the supported options")
	ErrInvalidSpin        = errors.New("spin is not one of the supported options")
	ErrInvalidDelay       = errors.New("delay must not be negative")
)

// Options holds settings the user picked but has not sent to the washer yet.
// The zero value is empty.
type Options struct {
	ProgramPreset string `json:"program_preset,omitempty"`
	ProgramURL    string `json:"program_url,omitempty"`
	Temperature   *int   `json:"temperature,omitempty"`
	Spin          *int   `json:"spin,omitempty"`
	Delay         *int   `json:"delay,omitempty"`
}

// Empty reports whether nothing is pending.
func (o *Options) Empty() bool {
	return o.ProgramPreset == "" && o.ProgramURL == "" &&
		o.Temperature == nil && o.Spin == nil && o.Delay == nil
}

// Clear drops every pending value.
func (o *Options) Clear() {
	*o = Options{}
}

// Clone returns a deep copy.
func (o Options) Clone() Options {
	out := Options{ProgramPreset: o.ProgramPreset, ProgramURL: o.ProgramURL}
	out.Temperature = copyInt(o.Temperature)
	out.Spin = copyInt(o.Spin)
	out.Delay = copyInt(o.Delay)
	return out
}

// SetPreset selects a preset by name.
func (o *Options) SetPreset(name string) error {
	if _, ok := programs.PresetFragment(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	o.ProgramPreset = name
	return nil
}

// SetProgramURL stores a raw program fragment.
func (o *Options) SetProgramURL(fragment string) {
	o.ProgramURL = fragment
}

// SetTemperature stores a pending wash temperature.
func (o *Options) SetTemperature(t int) error {
	if !programs.ValidTemperature(t) {
		return fmt.Errorf("%w: %d", ErrInvalidTemperature, t)
	}
	o.Temperature = &t
	return nil
}

// SetSpin stores a pending spin level.
func (o *Options) SetSpin(s int) error {
	if !programs.ValidSpin(s) {
		return fmt.Errorf("%w: %d", ErrInvalidSpin, s)
	}
	o.Spin = &s
	return nil
}

// SetDelay stores a pending start delay.
func (o *Options) SetDelay(d int) error {
	if d < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDelay, d)
	}
	o.Delay = &d
	return nil
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
