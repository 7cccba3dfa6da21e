// Package store defines the remote-store contract shared by backends: the
// retry policy tuned to conflict semantics and the duration parsing used for
// numeric time properties.
package store

import (
	"regexp"
	"strconv"
)

var (
	isoDuration   = regexp.MustCompile(`^[Pp][Tt](?:(\d+)[Hh])?(?:(\d+)[Mm])?(?:(\d+)[Ss])?$`)
	leadingDigits = regexp.MustCompile(`^\s*(\d+)`)
)

// ParseMinutes converts a duration string to whole minutes. It accepts the
// ISO-8601 PT#H#M form and plain "N min"-style strings (integer prefix).
// Anything else yields ok=false rather than an error.
func ParseMinutes(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	if m := isoDuration.FindStringSubmatch(raw); m != nil {
		hours := atoiOrZero(m[1])
		minutes := atoiOrZero(m[2])
		if m[1] == "" && m[2] == "" && m[3] == "" {
			return 0, false
		}
		return hours*60 + minutes, true
	}
	if m := leadingDigits.FindStringSubmatch(raw); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
