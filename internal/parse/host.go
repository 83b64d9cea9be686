package parse

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	schemeRe = regexp.MustCompile(`(?i)^https?://`)
	hostRe   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.\-]*(:\d{1,5})?$`)
	idRe     = regexp.MustCompile(`[^a-z0-9]+`)
)

// Host normalizes a washer address as typed by a user: surrounding space, an
// http:// prefix and trailing slashes are dropped. Anything with a path,
// query or credentials is rejected.
func Host(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = schemeRe.ReplaceAllString(s, "")
	s = strings.TrimRight(s, "/")

	if s == "" {
		return "", fmt.Errorf("empty host: %q", raw)
	}
	if !hostRe.MatchString(s) {
		return "", fmt.Errorf("invalid host: %q", raw)
	}
	return strings.ToLower(s), nil
}

// DeviceID derives a stable identifier from a normalized host, e.g.
// "192.168.1.20" -> "192_168_1_20".
func DeviceID(host string) string {
	id := idRe.ReplaceAllString(strings.ToLower(host), "_")
	return strings.Trim(id, "_")
}
