package programs

// FallbackName is reported when no catalog entry matches the running program.
const FallbackName = "Other"

// Mapping ties the program codes reported by the washer to display names.
// SoilLevel and DryMode are optional discriminators: when set, the
// corresponding status field must be present and equal for the entry to match.
type Mapping struct {
	Code      int
	Pr        int
	SoilLevel *int
	DryMode   *int
	FullName  string
	ShortName string
}

// Fields is the subset of a status record the catalog needs.
type Fields interface {
	Int(key string) (int, bool)
}

func ptr(v int) *int { return &v }

// Entries are tried in order; the first full match wins.
var catalog = []Mapping{
	{Code: 7, Pr: 16, SoilLevel: ptr(1), FullName: "Perfect Rapid 14 Min.", ShortName: "Rapid 14"},
	{Code: 7, Pr: 16, SoilLevel: ptr(2), FullName: "Perfect Rapid 30 Min.", ShortName: "Rapid 30"},
	{Code: 7, Pr: 16, SoilLevel: ptr(3), FullName: "Perfect Rapid 44 Min.", ShortName: "Rapid 44"},
	{Code: 8, Pr: 15, FullName: "Perfect Rapid 59 Min.", ShortName: "Rapid 59"},
	{Code: 77, Pr: 11, DryMode: ptr(1), FullName: "Asciugatura Misti (Extra Asciutto)", ShortName: "Drying"},
	{Code: 77, Pr: 11, DryMode: ptr(2), FullName: "Asciugatura Misti (Pronto Stiro)", ShortName: "Drying"},
	{Code: 77, Pr: 11, DryMode: ptr(3), FullName: "Asciugatura Misti (Pronto Armadio)", ShortName: "Drying"},
	{Code: 65, Pr: 1, FullName: "Cotone", ShortName: "Cotone"},
	{Code: 5, Pr: 4, FullName: "Lana", ShortName: "Lana"},
	{Code: 4, Pr: 5, FullName: "Delicati", ShortName: "Delicati"},
	{Code: 35, Pr: 7, FullName: "Risciacquo (freddo)", ShortName: "Risciacquo"},
	{Code: 129, Pr: 8, FullName: "Scarico e Centrifuga", ShortName: "Scarico/Centrifuga"},
	{Code: 17, Pr: 9, FullName: "Vapore", ShortName: "Vapore"},
}

// Catalog returns a copy of the program table in match order.
func Catalog() []Mapping {
	out := make([]Mapping, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds the catalog entry for the program reported in the status.
// A missing or malformed PrCode/Pr never matches. A missing or malformed
// SLevel/DryT only rules out the entries discriminated on that field.
func Lookup(status Fields) (Mapping, bool) {
	code, ok := status.Int("PrCode")
	if !ok {
		return Mapping{}, false
	}
	pr, ok := status.Int("Pr")
	if !ok {
		return Mapping{}, false
	}

	level, levelOK := status.Int("SLevel")
	dry, dryOK := status.Int("DryT")

	for _, m := range catalog {
		if m.Code != code || m.Pr != pr {
			continue
		}
		if m.SoilLevel != nil && (!levelOK || *m.SoilLevel != level) {
			continue
		}
		if m.DryMode != nil && (!dryOK || *m.DryMode != dry) {
			continue
		}
		return m, true
	}
	return Mapping{}, false
}

// Name returns the full program name, or FallbackName.
func Name(status Fields) string {
	if m, ok := Lookup(status); ok {
		return m.FullName
	}
	return FallbackName
}

// ShortName returns the short program label, or FallbackName.
func ShortName(status Fields) string {
	if m, ok := Lookup(status); ok {
		return m.ShortName
	}
	return FallbackName
}
