package dashboard

import (
	"sync"

	"github.com/lacandula/weather-dashboard/internal/city"
	"github.com/lacandula/weather-dashboard/internal/store"
	"github.com/lacandula/weather-dashboard/internal/weather"
)

// Phase is the orchestrator's position within one city-change cycle.
type Phase string

const (
	PhaseIdle                Phase = "idle"
	PhaseFetchingWeather     Phase = "fetching_weather"
	PhaseFetchingAnnotations Phase = "fetching_annotations"
	PhaseError               Phase = "error"
)

// Placeholder is what the weather panel shows when no data is available.
const Placeholder = "--"

// PlaceholderForecast returns the three placeholder forecast cards shown
// after a failed weather fetch.
func PlaceholderForecast() []weather.ForecastDay {
	cards := make([]weather.ForecastDay, 3)
	for i := range cards {
		cards[i] = weather.ForecastDay{Temperature: Placeholder, Wind: Placeholder}
	}
	return cards
}

// View is an immutable copy of the dashboard state handed to renderers.
type View struct {
	Phase      Phase
	City       city.City
	Weather    *weather.Snapshot
	Condition  weather.Condition
	Background string
	// WeatherError is the user-facing message when the last fetch failed.
	WeatherError string
	Forecast     []weather.ForecastDay

	Notes   []store.Note
	Photos  []store.CityPhoto
	History []store.HistoryEntry
}

// State is the dashboard's single source of truth. Every mutation goes
// through one of the methods below; cycle-scoped mutations carry the
// generation captured at cycle start and are dropped when a newer cycle has
// begun, so a stale response can never overwrite fresher data.
type State struct {
	mu  sync.Mutex
	gen uint64

	phase      Phase
	city       city.City
	weather    *weather.Snapshot
	condition  weather.Condition
	weatherErr string
	forecast   []weather.ForecastDay

	notes   []store.Note
	photos  []store.CityPhoto
	history []store.HistoryEntry
}

// NewState returns an idle state with placeholder weather.
func NewState() *State {
	return &State{
		phase:    PhaseIdle,
		forecast: PlaceholderForecast(),
	}
}

// BeginCycle starts a new city-change cycle and returns its generation.
// Any cycle holding an older generation becomes stale immediately.
func (s *State) BeginCycle(c city.City) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.phase = PhaseFetchingWeather
	s.city = c
	s.weather = nil
	s.weatherErr = ""
	return s.gen
}

// SetWeather installs a successful fetch result. Returns false when the
// cycle is stale and the result was discarded.
func (s *State) SetWeather(gen uint64, snap weather.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return false
	}

	cond := weather.ConditionFor(snap.Description)
	s.phase = PhaseFetchingAnnotations
	s.weather = &snap
	s.condition = cond
	s.forecast = snap.Forecast
	s.weatherErr = ""
	return true
}

// SetWeatherError records a failed fetch: the weather panel shows the error
// with placeholder forecast cards instead of the previous city's data.
func (s *State) SetWeatherError(gen uint64, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return false
	}

	s.phase = PhaseError
	s.weather = nil
	s.condition = ""
	s.weatherErr = message
	s.forecast = PlaceholderForecast()
	s.notes = nil
	s.photos = nil
	return true
}

// SetNotes installs the notes stream result; a failed stream passes nil.
func (s *State) SetNotes(gen uint64, notes []store.Note) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return false
	}
	s.notes = notes
	return true
}

// SetPhotos installs the photos stream result; a failed stream passes nil.
func (s *State) SetPhotos(gen uint64, photos []store.CityPhoto) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return false
	}
	s.photos = photos
	return true
}

// SetHistory replaces the history panel. The panel is global rather than
// city-scoped, so it is not generation-gated.
func (s *State) SetHistory(entries []store.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = entries
}

// FinishCycle returns the state to idle if the cycle is still current.
func (s *State) FinishCycle(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return false
	}
	s.phase = PhaseIdle
	return true
}

// CurrentGen returns the generation of the most recent cycle.
func (s *State) CurrentGen() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// View returns a copy of the current state for rendering.
func (s *State) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Phase:        s.phase,
		City:         s.city,
		Condition:    s.condition,
		Background:   s.condition.Background(),
		WeatherError: s.weatherErr,
		Forecast:     append([]weather.ForecastDay(nil), s.forecast...),
		Notes:        append([]store.Note(nil), s.notes...),
		Photos:       append([]store.CityPhoto(nil), s.photos...),
		History:      append([]store.HistoryEntry(nil), s.history...),
	}
	if s.weather != nil {
		snap := *s.weather
		v.Weather = &snap
	}
	return v
}
