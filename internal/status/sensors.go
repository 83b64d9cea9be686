package status

// Sensor describes one read-only value exposed for a washer.
type Sensor struct {
	Key   string
	Name  string
	Icon  string
	Unit  string
	Value func(n Normalized) any
}

// Reading is a Sensor evaluated against a snapshot.
type Reading struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Unit  string `json:"unit,omitempty"`
	Value any    `json:"value"`
}

// Sensors is the fixed list of exposed values, in display order.
var Sensors = []Sensor{
	{"wifi_status", "WiFi Status", "mdi:wifi", "", func(n Normalized) any { return n.WiFi }},
	{"on_off_status", "On/Off Status", "mdi:power-standby", "", func(n Normalized) any { return n.OnOff }},
	{"err", "Errors", "mdi:alert-circle-outline", "", func(n Normalized) any { return n.Error }},
	{"machmd", "Status", "mdi:washing-machine", "", func(n Normalized) any { return n.Mode }},
	{"machmd_int", "Status (int)", "mdi:washing-machine", "", func(n Normalized) any { return n.ModeCode }},
	{"pr", "Pr", "mdi:numeric", "", func(n Normalized) any { return n.Pr }},
	{"prcode", "PrCode", "mdi:numeric", "", func(n Normalized) any { return n.PrCode }},
	{"slevel", "Soil Level", "mdi:liquid-spot", "", func(n Normalized) any { return n.SoilLevel }},
	{"phase", "Phase", "mdi:progress-clock", "", func(n Normalized) any { return n.Phase }},
	{"program", "Program", "mdi:playlist-check", "", func(n Normalized) any { return n.Program }},
	{"program_short", "Program (short)", "mdi:playlist-edit", "", func(n Normalized) any { return n.ProgramShort }},
	{"temp", "Temperature", "mdi:thermometer", "°C", func(n Normalized) any { return n.Temperature }},
	{"spin", "Spin Speed", "mdi:sync-circle", "", func(n Normalized) any { return n.SpinSpeed }},
	{"steam", "Steam", "mdi:weather-fog", "", func(n Normalized) any { return n.Steam }},
	{"dry_mode", "Dry Mode", "mdi:tumble-dryer", "", func(n Normalized) any { return n.DryMode }},
	{"delay", "Delay", "mdi:timer-sand", "h", func(n Normalized) any { return n.DelayHours }},
	{"remtime", "Remaining Time", "mdi:timer-outline", "min", func(n Normalized) any {
		if n.RemainingMinutes == nil {
			return nil
		}
		return *n.RemainingMinutes
	}},
}

// Readings evaluates every sensor against n.
func Readings(n Normalized) []Reading {
	out := make([]Reading, 0, len(Sensors))
	for _, s := range Sensors {
		out = append(out, Reading{
			Key:   s.Key,
			Name:  s.Name,
			Icon:  s.Icon,
			Unit:  s.Unit,
			Value: s.Value(n),
		})
	}
	return out
}
