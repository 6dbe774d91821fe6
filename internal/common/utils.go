package common

import "strings"

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ShortName returns the text before the first comma of a hierarchical
// display name ("London, Greater London, England, United Kingdom" → "London").
func ShortName(displayName string) string {
	name, _, _ := strings.Cut(displayName, ",")
	return strings.TrimSpace(name)
}

// LastPart returns the trimmed text after the last comma, which for geocoder
// display names is the country.
func LastPart(displayName string) string {
	if i := strings.LastIndex(displayName, ","); i >= 0 {
		return strings.TrimSpace(displayName[i+1:])
	}
	return strings.TrimSpace(displayName)
}
