package weather

// Condition is the coarse weather category derived from a free-text
// description, used for icon and background selection.
type Condition string

const (
	ConditionSun     Condition = "sun"
	ConditionCloud   Condition = "cloud"
	ConditionRain    Condition = "rain"
	ConditionWind    Condition = "wind"
	ConditionThunder Condition = "thunder"
	ConditionSnow    Condition = "snow"
	// ConditionCloudy is the fallback when no substring matches.
	ConditionCloudy Condition = "cloudy"
)

// Snapshot is the provider's current-conditions view for one city. It is
// produced fresh on every fetch and never persisted or cached.
type Snapshot struct {
	Temperature string        `json:"temperature"`
	Description string        `json:"description"`
	Wind        string        `json:"wind"`
	Forecast    []ForecastDay `json:"forecast"`
}

// ForecastDay is one upcoming day in the short forecast.
type ForecastDay struct {
	Day         string `json:"day"`
	Temperature string `json:"temperature"`
	Wind        string `json:"wind"`
}

// Background returns the dashboard background class for a condition.
func (c Condition) Background() string {
	switch c {
	case ConditionSun:
		return "sunny-bg"
	case ConditionRain:
		return "rainy-bg"
	case ConditionCloud:
		return "cloudy-bg"
	default:
		return "default-bg"
	}
}
