package command

import (
	"strconv"
	"strings"
)

// Stop is the fixed command that halts the running cycle and clears any delay.
const Stop = "Write=1&StSt=0&DelMd=0"

// StartIntent is everything a start command carries besides the fixed flags.
type StartIntent struct {
	ProgramFragment string `json:"program_fragment,omitempty"`
	Temperature     *int   `json:"temperature,omitempty"`
	Spin            *int   `json:"spin,omitempty"`
	Delay           *int   `json:"delay,omitempty"`
}

// EncodeStart builds the query string for a start command.
func EncodeStart(intent StartIntent) string {
	parts := []string{"Write=1", "StSt=1"}
	if fragment := SanitizeFragment(intent.ProgramFragment); fragment != "" {
		parts = append(parts, fragment)
	}
	if intent.Temperature != nil {
		parts = append(parts, "TmpTgt="+strconv.Itoa(*intent.Temperature))
	}
	if intent.Spin != nil {
		parts = append(parts, "SpdTgt="+strconv.Itoa(*intent.Spin))
	}
	if intent.Delay != nil {
		parts = append(parts, "DelVl="+strconv.Itoa(*intent.Delay))
	}
	return strings.Join(parts, "&")
}

// EncodeStop returns the stop command.
func EncodeStop() string {
	return Stop
}

// SanitizeFragment percent-encodes a program fragment for the query string.
// The fragment already consists of key=value pairs joined by '&', so '=', '&'
// and '%' are kept as is; '+' is read as a space.
func SanitizeFragment(fragment string) string {
	if fragment == "" {
		return ""
	}
	fragment = strings.ReplaceAll(fragment, "+", " ")

	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(fragment))
	for i := 0; i < len(fragment); i++ {
		c := fragment[i]
		if keep(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func keep(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '.', '_', '~', '=', '&', '%':
		return true
	}
	return false
}
