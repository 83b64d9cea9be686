package pending

import (
	"fmt"
	"strings"

	"candy-bianca-backend/internal/command"
	"candy-bianca-backend/internal/parse"
	"candy-bianca-backend/internal/programs"
	"candy-bianca-backend/internal/status"
)

// Overrides are values passed directly with a start request. They beat
// anything pending or live.
type Overrides struct {
	ProgramURL    string `json:"program_url,omitempty"`
	ProgramPreset string `json:"program_preset,omitempty"`
	Temperature   *int   `json:"temp,omitempty"`
	Spin          *int   `json:"spin,omitempty"`
	Delay         *int   `json:"delay,omitempty"`
}

// Validate checks every value that is set, with the same rules as the
// pending setters, and normalizes ProgramURL. A start request must be
// validated before it consumes pending options.
func (o *Overrides) Validate() error {
	if o.ProgramPreset != "" {
		if _, ok := programs.PresetFragment(o.ProgramPreset); !ok {
			return fmt.Errorf("%w: %q (known presets: %s)", ErrUnknownPreset, o.ProgramPreset,
				strings.Join(programs.PresetNames(), ", "))
		}
	}
	if o.ProgramURL != "" {
		fragment, err := parse.ParseFragment(o.ProgramURL)
		if err != nil {
			return err
		}
		o.ProgramURL = fragment.String()
	}
	if o.Temperature != nil && !programs.ValidTemperature(*o.Temperature) {
		return fmt.Errorf("%w: %d", ErrInvalidTemperature, *o.Temperature)
	}
	if o.Spin != nil && !programs.ValidSpin(*o.Spin) {
		return fmt.Errorf("%w: %d", ErrInvalidSpin, *o.Spin)
	}
	if o.Delay != nil && *o.Delay < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDelay, *o.Delay)
	}
	return nil
}

// BuildStartIntent merges overrides, pending options and the live status
// into the parameters of a start command, then clears p. Pending options are
// consumed by every start attempt, whether or not the command reaches the
// washer.
//
// Per field the first available source wins: override, pending, live. The
// program is taken from the override URL, the override preset, the pending
// preset, then the pending URL; presets that do not resolve are skipped.
// Without any explicit delay the live delay is kept, unless a program is
// being sent, in which case the delay is reset to 0.
func BuildStartIntent(p *Options, live status.Raw, o Overrides) command.StartIntent {
	defer p.Clear()

	intent := command.StartIntent{
		ProgramFragment: programFragment(p, o),
	}

	intent.Temperature = firstOf(o.Temperature, p.Temperature, liveInt(live, "Temp"))
	intent.Spin = firstOf(o.Spin, p.Spin, liveInt(live, "SpinSp"))

	var liveDelay *int
	if intent.ProgramFragment != "" {
		liveDelay = intPtr(0)
	} else if d, ok := status.LiveDelay(live); ok {
		liveDelay = intPtr(d)
	}
	intent.Delay = firstOf(o.Delay, p.Delay, liveDelay)

	return intent
}

func programFragment(p *Options, o Overrides) string {
	if o.ProgramURL != "" {
		return o.ProgramURL
	}
	if fragment, ok := programs.PresetFragment(o.ProgramPreset); ok {
		return fragment
	}
	if fragment, ok := programs.PresetFragment(p.ProgramPreset); ok {
		return fragment
	}
	return p.ProgramURL
}

func firstOf(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return copyInt(v)
		}
	}
	return nil
}

func liveInt(live status.Raw, key string) *int {
	if v, ok := live.Int(key); ok {
		return &v
	}
	return nil
}

func intPtr(v int) *int { return &v }
