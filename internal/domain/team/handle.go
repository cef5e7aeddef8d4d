package team

import (
	"strconv"
	"strings"
)

const (
	MaxHandleLength = 20
	fallbackHandle  = "team"
)

// BaseHandle lowercases name, keeps only [a-z0-9] and truncates to
// MaxHandleLength.
func BaseHandle(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == MaxHandleLength {
				break
			}
		}
	}
	if b.Len() == 0 {
		return fallbackHandle
	}
	return b.String()
}

// HandleCandidate returns base for attempt 0 and base+attempt afterwards.
// The base is shortened so the result never exceeds MaxHandleLength.
func HandleCandidate(base string, attempt int) string {
	if attempt <= 0 {
		return base
	}
	suffix := strconv.Itoa(attempt)
	if keep := MaxHandleLength - len(suffix); len(base) > keep {
		base = base[:max(keep, 0)]
	}
	return base + suffix
}
