package telemetry

import "strings"

// Prefix starts every series name.
const Prefix = "nvme_"

// Sanitize replaces every rune outside [a-zA-Z0-9_:] with '_'.
//
// Distinct labels may sanitize to the same string ("Temp (C)" and "Temp [C]"
// both give "Temp__C_"). They are then the same series; the registry reports
// the first time a second raw label lands on an existing name.
func Sanitize(raw string) string {
	return strings.Map(func(r rune) rune {
		if isNameRune(r) {
			return r
		}
		return '_'
	}, raw)
}

func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == ':':
		return true
	default:
		return false
	}
}

// ValidSeriesName reports whether name is a complete series name:
// the prefix followed by at least one legal rune.
func ValidSeriesName(name string) bool {
	if !strings.HasPrefix(name, Prefix) || len(name) == len(Prefix) {
		return false
	}
	for _, r := range name {
		if !isNameRune(r) {
			return false
		}
	}

	return true
}

// SeriesName builds the series name for a top-level document key.
func SeriesName(key string) string {
	return Sanitize(Prefix + strings.ToLower(strings.ReplaceAll(key, " ", "_")))
}

// MemberName extends a group's series name with a member key. Member keys
// keep their case.
func MemberName(base, member string) string {
	return Sanitize(base + "_" + member)
}
