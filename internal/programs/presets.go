package programs

// Preset is a named program payload that can be sent with a start command.
type Preset struct {
	Name     string `json:"name"`
	Fragment string `json:"fragment"`
}

var presets = []Preset{
	{"Perfect Rapid 14 Min.", "PrNm=16&PrCode=7&PrStr=Rapido 14 Min.&SLevTgt=1&Dry=0"},
	{"Perfect Rapid 30 Min.", "PrNm=16&PrCode=7&PrStr=Rapido 30 Min.&SLevTgt=2&Dry=0"},
	{"Perfect Rapid 44 Min.", "PrNm=16&PrCode=7&PrStr=Rapido 44 Min.&SLevTgt=3&Dry=0"},
	{"Perfect Rapid 59 Min.", "PrNm=15&PrCode=8&PrStr=Rapido 59 Min&SLevTgt=0&Dry=0"},
	{"Asciugatura Misti (Extra Asciutto)", "PrNm=11&PrCode=77&PrStr=Extra Asciutto&SLevTgt=0&Dry=1"},
	{"Asciugatura Misti (Pronto Stiro)", "PrNm=11&PrCode=77&PrStr=Pronto Stiro&SLevTgt=0&Dry=2"},
	{"Asciugatura Misti (Pronto Armadio)", "PrNm=11&PrCode=77&PrStr=Pronto Armadio&SLevTgt=0&Dry=3"},
	{"Cotone", "PrNm=1&PrCode=65&PrStr=Cotone&SLevTgt=0&Dry=0"},
	{"Lana", "PrNm=4&PrCode=5&PrStr=Lana&SLevTgt=0&Dry=0"},
	{"Delicati", "PrNm=5&PrCode=4&PrStr=Delicati&SLevTgt=0&Dry=0"},
	{"Risciacquo (freddo)", "PrNm=7&PrCode=35&PrStr=Risciacquo&SLevTgt=0&Dry=0"},
	{"Scarico + Centrifuga", "PrNm=8&PrCode=129&PrStr=scarico e centrifuga&SLevTgt=0&Dry=0"},
	{"Programma Vapore (Steam/Refresh)", "PrNm=9&PrCode=17&PrStr=Vapore&SLevTgt=0&Dry=0"},
}

// TemperatureOptions are the wash temperatures the panel offers, in °C.
var TemperatureOptions = []int{0, 20, 30, 40, 60, 90}

// SpinOptions are the spin levels the panel offers.
var SpinOptions = []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

// Presets returns the preset table in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// PresetNames returns the preset names in display order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for _, p := range presets {
		names = append(names, p.Name)
	}
	return names
}

// PresetFragment resolves a preset name to its encoded program fragment.
func PresetFragment(name string) (string, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p.Fragment, true
		}
	}
	return "", false
}

// ValidTemperature reports whether t is one of TemperatureOptions.
func ValidTemperature(t int) bool {
	return contains(TemperatureOptions, t)
}

// ValidSpin reports whether s is one of SpinOptions.
func ValidSpin(s int) bool {
	return contains(SpinOptions, s)
}

func contains(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
