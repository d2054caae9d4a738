package city

import "strings"

// City pairs the display string a user typed with the canonical key used for
// matching. Rows always store Raw; queries always compare by Key.
type City struct {
	Raw string
	Key string
}

// New builds a City from a raw display string.
func New(raw string) City {
	return City{Raw: raw, Key: Normalize(raw)}
}

// Normalize canonicalizes a city name for matching: lower-case, trim
// surrounding whitespace, and strip a trailing "city" token. "Davao City",
// "davao city" and " DAVAO " all normalize to "davao".
func Normalize(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if trimmed, ok := StripCitySuffix(key); ok {
		key = trimmed
	}
	return key
}

// StripCitySuffix removes a trailing " city" token (any casing, any amount of
// preceding whitespace) and reports whether anything was stripped. A bare
// "city" is left alone; only a suffix qualifies.
func StripCitySuffix(name string) (string, bool) {
	lower := strings.ToLower(name)
	if !strings.HasSuffix(lower, "city") {
		return name, false
	}
	head := name[:len(name)-len("city")]
	trimmed := strings.TrimRight(head, " \t")
	if trimmed == "" || trimmed == head {
		// Either the whole string was "city" or there was no separating
		// whitespace ("Mexicity" must not become "Mexi").
		return name, false
	}
	return trimmed, true
}
