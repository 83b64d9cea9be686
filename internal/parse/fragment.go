package parse

import (
	"fmt"
	"strings"
)

// Pair is one key=value element of a program fragment.
type Pair struct {
	Key   string
	Value string
}

// Fragment is a program payload such as "PrNm=1&PrCode=65&PrStr=Cotone".
type Fragment []Pair

// ParseFragment splits a program fragment into its pairs. Values are not
// URL-decoded: the washer expects them verbatim, and '+' or "%20" are
// resolved only when the command is encoded.
func ParseFragment(raw string) (Fragment, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("empty program fragment")
	}

	var out Fragment
	for _, kv := range strings.Split(s, "&") {
		if kv == "" {
			continue
		}
		key, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("malformed pair %q in program fragment %q", kv, raw)
		}
		out = append(out, Pair{Key: key, Value: value})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no pairs in program fragment %q", raw)
	}
	if _, ok := out.Get("PrNm"); !ok {
		return nil, fmt.Errorf("program fragment %q has no PrNm", raw)
	}

	// Control fields belong to the command, not the program.
	for _, p := range out {
		switch p.Key {
		case "Write", "StSt", "TmpTgt", "SpdTgt", "DelVl", "DelMd":
			return nil, fmt.Errorf("program fragment %q must not set %s", raw, p.Key)
		}
	}
	return out, nil
}

// Get returns the raw value for key.
func (f Fragment) Get(key string) (string, bool) {
	for _, p := range f {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// String joins the pairs back into fragment form.
func (f Fragment) String() string {
	parts := make([]string, 0, len(f))
	for _, p := range f {
		parts = append(parts, p.Key+"="+p.Value)
	}
	return strings.Join(parts, "&")
}
