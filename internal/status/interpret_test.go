package status

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpret_EmptyRecord(t *testing.T) {
	n := Interpret(Raw{})

	assert.Equal(t, Unavailable, n.Mode)
	assert.Equal(t, ModeUnknown, n.ModeCode)
	assert.Equal(t, Unavailable, n.Error)
	assert.Equal(t, Unavailable, n.OnOff)
	assert.Equal(t, Unavailable, n.WiFi)
	assert.Equal(t, Unavailable, n.Phase)
	assert.Equal(t, "Other", n.Program)
	assert.Equal(t, "Other", n.ProgramShort)
	assert.Equal(t, None, n.DryMode)
	assert.Equal(t, 0, n.Temperature)
	assert.Equal(t, 0, n.SpinSpeed)
	assert.Equal(t, 0, n.Steam)
	assert.Equal(t, 0, n.DelayHours)
	assert.Nil(t, n.RemainingMinutes)
	assert.Nil(t, n.Statistics)

	// A nil map behaves the same as an empty one.
	assert.Equal(t, n, Interpret(nil))
}

func TestInterpret_FullRecord(t *testing.T) {
	raw := Raw{
		"WiFiStatus": "1",
		"Err":        "0",
		"MachMd":     "2",
		"PrPh":       "4",
		"Pr":         "1",
		"PrCode":     "65",
		"SLevel":     "0",
		"Temp":       "40",
		"SpinSp":     "8",
		"Steam":      "0",
		"DryT":       "2",
		"DelVal":     "150",
		"RemTime":    "125",
		StatisticsKey: map[string]any{
			"totalWashCycles": "12",
		},
	}

	n := Interpret(raw)

	assert.Equal(t, "Wifi", n.WiFi)
	assert.Equal(t, Good, n.Error)
	assert.Equal(t, "On", n.OnOff)
	assert.Equal(t, "Washing", n.Mode)
	assert.Equal(t, 2, n.ModeCode)
	assert.Equal(t, "Spin", n.Phase)
	assert.Equal(t, "Cotone", n.Program)
	assert.Equal(t, 40, n.Temperature)
	assert.Equal(t, 8, n.SpinSpeed)
	assert.Equal(t, "Ready-to-iron", n.DryMode)
	assert.Equal(t, 2, n.DelayHours)
	require.NotNil(t, n.RemainingMinutes)
	assert.Equal(t, 2, *n.RemainingMinutes)
	assert.Equal(t, "12", n.Statistics["totalWashCycles"])
}

func TestInterpret_Fields(t *testing.T) {
	testCases := []struct {
		name  string
		raw   Raw
		check func(t *testing.T, n Normalized)
	}{
		{
			name: "remaining time negative is unknown",
			raw:  Raw{"RemTime": "-1"},
			check: func(t *testing.T, n Normalized) {
				assert.Nil(t, n.RemainingMinutes)
			},
		},
		{
			name: "remaining time floors to minutes",
			raw:  Raw{"RemTime": "59"},
			check: func(t *testing.T, n Normalized) {
				require.NotNil(t, n.RemainingMinutes)
				assert.Equal(t, 0, *n.RemainingMinutes)
			},
		},
		{
			name: "error alert",
			raw:  Raw{"Err": "3"},
			check: func(t *testing.T, n Normalized) {
				assert.Equal(t, Alert, n.Error)
			},
		},
		{
			name: "error 255 unavailable",
			raw:  Raw{"Err": "255"},
			check: func(t *testing.T, n Normalized) {
				assert.Equal(t, Unavailable, n.Error)
			},
		},
		{
			name: "malformed error falls back",
			raw:  Raw{"Err": "oops"},
			check: func(t *testing.T, n Normalized) {
				assert.Equal(t, Unavailable, n.Error)
			},
		},
		{
			name: "mode out of table",
			raw:  Raw{"MachMd": "9"},
			check: func(t *testing.T, n Normalized) {
				assert.Equal(t, Unavailable, n.Mode)
				assert.Equal(t, 9, n.ModeCode)
			},
		},
		{
			name: "finished mode",
			raw:  Raw{"MachMd": "7"},
			check: func(t *testing.T, n Normalized) {
				assert.Equal(t, "Finished", n.Mode)
			},
		},
		{
			name: "on/off explicit field wins",
			raw:  Raw{"OnOffStatus": "0", "MachMd": "2"},
			check: func(t *testing.T, n Normalized) {
				assert.Equal(t, "Off", n.OnOff)
			},
		},
		{
			name: "on/off malformed explicit field",
			raw:  Raw{"OnOffStatus": "x", "MachMd": "2"},
			check: func(t *testing.T, n Normalized) {
				assert.Equal(t, Unavailable, n.OnOff)
			},
		},
		{
			name: "on/off derived from idle mode",
			raw:  Raw{"MachMd": "0"},
			check: func(t *testing.T, n Normalized) {
				assert.Equal(t, "Off", n.OnOff)
			},
		},
		{
			name: "phase good night",
			raw:  Raw{"PrPh": "8"},
			check: func(t *testing.T, n Normalized) {
				assert.Equal(t, "Good Night", n.Phase)
			},
		},
		{
			name: "dry mode unknown code",
			raw:  Raw{"DryT": "7"},
			check: func(t *testing.T, n Normalized) {
				assert.Equal(t, None, n.DryMode)
			},
		},
		{
			name: "legacy delay key",
			raw:  Raw{"DelVl": "180"},
			check: func(t *testing.T, n Normalized) {
				assert.Equal(t, 3, n.DelayHours)
			},
		},
		{
			name: "delay floors to hours",
			raw:  Raw{"DelVal": "119"},
			check: func(t *testing.T, n Normalized) {
				assert.Equal(t, 1, n.DelayHours)
			},
		},
		{
			name: "temperature malformed",
			raw:  Raw{"Temp": ""},
			check: func(t *testing.T, n Normalized) {
				assert.Equal(t, 0, n.Temperature)
			},
		},
		{
			name: "numeric JSON values",
			raw:  Raw{"Temp": json.Number("30"), "SpinSp": float64(6), "MachMd": 5},
			check: func(t *testing.T, n Normalized) {
				assert.Equal(t, 30, n.Temperature)
				assert.Equal(t, 6, n.SpinSpeed)
				assert.Equal(t, "Delayed", n.Mode)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, Interpret(tc.raw))
		})
	}
}

func TestRaw_Int(t *testing.T) {
	raw := Raw{
		"s":     " 42 ",
		"f":     float64(3.9),
		"n":     json.Number("7"),
		"nf":    json.Number("2.5"),
		"bad":   "4x",
		"nil":   nil,
		"slice": []any{1},
	}

	v, ok := raw.Int("s")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	v, ok = raw.Int("f")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	v, ok = raw.Int("n")
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	v, ok = raw.Int("nf")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	for _, key := range []string{"bad", "nil", "slice", "missing"} {
		_, ok := raw.Int(key)
		assert.False(t, ok, key)
	}
	assert.Equal(t, -1, raw.IntOr("missing", -1))
}

func TestReadings(t *testing.T) {
	readings := Readings(Interpret(Raw{"MachMd": "7", "RemTime": "-1", "Temp": "60"}))
	require.Len(t, readings, len(Sensors))

	byKey := make(map[string]Reading, len(readings))
	for _, r := range readings {
		byKey[r.Key] = r
	}
	assert.Equal(t, "Finished", byKey["machmd"].Value)
	assert.Equal(t, 60, byKey["temp"].Value)
	assert.Equal(t, "°C", byKey["temp"].Unit)
	assert.Nil(t, byKey["remtime"].Value)
}
