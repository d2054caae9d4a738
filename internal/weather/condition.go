package weather

import "strings"

// conditionRules is checked in order; the first matching substring wins, so
// "sunny with wind" resolves to sun, not wind.
var conditionRules = []struct {
	cond Condition
	subs []string
}{
	{ConditionSun, []string{"sun", "clear"}},
	{ConditionCloud, []string{"cloud"}},
	{ConditionRain, []string{"rain"}},
	{ConditionWind, []string{"wind"}},
	{ConditionThunder, []string{"thunder"}},
	{ConditionSnow, []string{"snow"}},
}

// ConditionFor maps a free-text weather description to a coarse Condition.
func ConditionFor(description string) Condition {
	desc := strings.ToLower(description)
	for _, rule := range conditionRules {
		if hasAny(desc, rule.subs...) {
			return rule.cond
		}
	}
	return ConditionCloudy
}

// hasAny returns true if s contains any of the substrings.
func hasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
