// Package validation holds the query-parameter parsing helpers shared by
// the filter layer and the handlers. Everything here is lenient: malformed
// values degrade to "absent" rather than erroring, matching how the filter
// spec treats unknown input.
package validation

import (
	"strconv"
	"strings"
)

// SplitList parses a comma-separated parameter into trimmed, non-empty
// entries. Returns nil for an empty parameter.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseInt parses an integer parameter, returning nil when absent or malformed.
func ParseInt(value string) *int {
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return nil
	}
	return &n
}

// ParseFloat parses a float parameter, returning nil when absent or malformed.
func ParseFloat(value string) *float64 {
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return nil
	}
	return &f
}

// ParseBool interprets the truthy query forms ("1", "true", "yes", "on").
// Anything else, including absence, is false.
func ParseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Clamp bounds n to [lo, hi].
func Clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// ContainsFold reports whether list has an entry equal to v, ignoring case.
func ContainsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
