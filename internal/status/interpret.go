package status

import "candy-bianca-backend/internal/programs"

// Labels shared by several fields.
const (
	Unavailable = "Unavailable"
	None        = "None"
	Good        = "Good"
	Alert       = "Alert"
)

// Machine mode codes that other components reason about.
const (
	ModeUnknown     = -1
	ModeUnavailable = 0
	ModeStopped     = 1
	ModeWashing     = 2
	ModePaused      = 4
	ModeDelayed     = 5
	ModeFinished    = 7
)

var modeLabels = []string{
	"Unavailable",
	"Stopped",
	"Washing",
	"Unknown_3",
	"Paused",
	"Delayed",
	"Unknown_6",
	"Finished",
}

var phaseLabels = []string{
	"Unavailable",
	"Prewash",
	"Wash",
	"Rinse",
	"Spin",
	"End",
	"Drying",
	"Steam",
	"Good Night",
}

var dryModeLabels = []string{
	"None",
	"Extra-dry",
	"Ready-to-iron",
	"Ready-to-store",
}

// Normalized is the decoded, human readable view of a Raw record.
type Normalized struct {
	OnOff            string         `json:"on_off"`
	WiFi             string         `json:"wifi"`
	Error            string         `json:"error"`
	Mode             string         `json:"mode"`
	ModeCode         int            `json:"mode_code"`
	Phase            string         `json:"phase"`
	Program          string         `json:"program"`
	ProgramShort     string         `json:"program_short"`
	Pr               int            `json:"pr"`
	PrCode           int            `json:"pr_code"`
	SoilLevel        int            `json:"soil_level"`
	Temperature      int            `json:"temperature"`
	SpinSpeed        int            `json:"spin_speed"`
	Steam            int            `json:"steam"`
	DryMode          string         `json:"dry_mode"`
	DelayHours       int            `json:"delay_hours"`
	RemainingMinutes *int           `json:"remaining_minutes"`
	Statistics       map[string]any `json:"statistics,omitempty"`
}

// Interpret decodes a raw snapshot. It never fails: every field that is
// missing or malformed falls back to its documented default.
func Interpret(raw Raw) Normalized {
	return Normalized{
		OnOff:            onOff(raw),
		WiFi:             wifi(raw),
		Error:            errorLabel(raw),
		Mode:             label(modeLabels, raw, "MachMd", Unavailable),
		ModeCode:         raw.IntOr("MachMd", ModeUnknown),
		Phase:            label(phaseLabels, raw, "PrPh", Unavailable),
		Program:          programs.Name(raw),
		ProgramShort:     programs.ShortName(raw),
		Pr:               raw.IntOr("Pr", -1),
		PrCode:           raw.IntOr("PrCode", -1),
		SoilLevel:        raw.IntOr("SLevel", -1),
		Temperature:      raw.IntOr("Temp", 0),
		SpinSpeed:        raw.IntOr("SpinSp", 0),
		Steam:            raw.IntOr("Steam", 0),
		DryMode:          label(dryModeLabels, raw, "DryT", None),
		DelayHours:       floorDiv(DelayMinutes(raw), 60),
		RemainingMinutes: remainingMinutes(raw),
		Statistics:       raw.Statistics(),
	}
}

// Mode returns the raw machine mode, or ModeUnknown.
func Mode(raw Raw) int {
	return raw.IntOr("MachMd", ModeUnknown)
}

// DelayMinutes reads the programmed delay. Firmware revisions disagree on
// the key name; DelVal is preferred over DelVl.
func DelayMinutes(raw Raw) int {
	if v, ok := LiveDelay(raw); ok {
		return v
	}
	return 0
}

// LiveDelay is DelayMinutes without the default.
func LiveDelay(raw Raw) (int, bool) {
	if v, ok := raw.Int("DelVal"); ok {
		return v, true
	}
	return raw.Int("DelVl")
}

// RemainingSeconds returns the remaining cycle time; negative or missing
// values are unknown.
func RemainingSeconds(raw Raw) (int, bool) {
	v, ok := raw.Int("RemTime")
	if !ok || v < 0 {
		return 0, false
	}
	return v, true
}

func remainingMinutes(raw Raw) *int {
	secs, ok := RemainingSeconds(raw)
	if !ok {
		return nil
	}
	m := secs / 60
	return &m
}

func onOff(raw Raw) string {
	if raw["OnOffStatus"] != nil {
		v, ok := raw.Int("OnOffStatus")
		switch {
		case ok && v == 0:
			return "Off"
		case ok && v == 1:
			return "On"
		}
		return Unavailable
	}
	mode, ok := raw.Int("MachMd")
	if !ok {
		return Unavailable
	}
	if mode > 0 {
		return "On"
	}
	return "Off"
}

func wifi(raw Raw) string {
	switch v, ok := raw.Int("WiFiStatus"); {
	case ok && v == 0:
		return "No-Wifi"
	case ok && v == 1:
		return "Wifi"
	}
	return Unavailable
}

func errorLabel(raw Raw) string {
	v := raw.IntOr("Err", 255)
	switch v {
	case 0:
		return Good
	case 255:
		return Unavailable
	}
	return Alert
}

func label(table []string, raw Raw, key, fallback string) string {
	v, ok := raw.Int(key)
	if !ok || v < 0 || v >= len(table) {
		return fallback
	}
	return table[v]
}

// floorDiv divides rounding towards negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
