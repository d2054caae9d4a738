package dashboard

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/lacandula/weather-dashboard/internal/city"
	"github.com/lacandula/weather-dashboard/internal/store"
	"github.com/lacandula/weather-dashboard/internal/weather"
)

// ErrEmptyNote rejects note text that trims to empty before any network
// call is made.
var ErrEmptyNote = errors.New("note text is empty")

// WeatherFetcher is the weather provider surface the orchestrator consumes.
type WeatherFetcher interface {
	Fetch(ctx context.Context, cityName string) (weather.Snapshot, error)
}

// AnnotationAPI is the backend surface the orchestrator consumes.
type AnnotationAPI interface {
	ListHistory(ctx context.Context) ([]store.HistoryEntry, error)
	RecordHistory(ctx context.Context, cityRaw, description string) error
	DeleteHistory(ctx context.Context, id uint) error
	NotesForCity(ctx context.Context, cityRaw string) ([]store.Note, error)
	CreateNote(ctx context.Context, cityRaw, text string) error
	UpdateNote(ctx context.Context, id uint, text string) error
	DeleteNote(ctx context.Context, id uint) error
	PhotosForCity(ctx context.Context, cityRaw string) ([]store.CityPhoto, error)
}

// Orchestrator drives the dashboard through city-change cycles: fetch
// weather, then refresh annotations, then record history. All UI state flows
// through State; a newer cycle makes the older one a no-op via the
// generation check rather than aborting its requests.
type Orchestrator struct {
	weather WeatherFetcher
	api     AnnotationAPI
	state   *State

	// defaultKey is the normalized startup city, exempt from history.
	defaultKey  string
	defaultCity string
}

// New creates an Orchestrator around a fresh State.
func New(w WeatherFetcher, api AnnotationAPI, defaultCity string) *Orchestrator {
	return &Orchestrator{
		weather:     w,
		api:         api,
		state:       NewState(),
		defaultKey:  city.Normalize(defaultCity),
		defaultCity: defaultCity,
	}
}

// State exposes the dashboard state for rendering.
func (o *Orchestrator) State() *State {
	return o.state
}

// Start loads the history panel and runs the initial cycle for the default
// city. The initial cycle never records history.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.RefreshHistory(ctx)
	return o.ChangeCity(ctx, o.defaultCity)
}

// ChangeCity runs one full cycle for a newly selected city. On weather
// failure the annotation refresh and history record are skipped and the
// panel shows placeholders. Notes and photos are refreshed concurrently;
// each stream failure empties only that stream.
func (o *Orchestrator) ChangeCity(ctx context.Context, raw string) error {
	c := city.New(raw)
	gen := o.state.BeginCycle(c)

	snap, err := o.weather.Fetch(ctx, c.Raw)
	if err != nil {
		// Error cycle: show the banner with placeholders, skip annotations
		// and history, and return to idle to accept the next search.
		o.state.SetWeatherError(gen, weatherErrorMessage(err))
		o.state.FinishCycle(gen)
		return err
	}

	if !o.state.SetWeather(gen, snap) {
		// A newer cycle took over while the fetch was in flight.
		return nil
	}

	o.refreshAnnotations(ctx, gen, c)

	if c.Key != o.defaultKey {
		// Best-effort: a failed history write never disturbs the weather or
		// annotation panels.
		if err := o.api.RecordHistory(ctx, c.Raw, snap.Description); err != nil {
			log.Printf("history record failed for %s: %v", c.Raw, err)
		}
		o.RefreshHistory(ctx)
	}

	o.state.FinishCycle(gen)
	return nil
}

// refreshAnnotations fetches notes and photos concurrently. Streams are
// isolated: one failing resets only its own panel to empty.
func (o *Orchestrator) refreshAnnotations(ctx context.Context, gen uint64, c city.City) {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		notes, err := o.api.NotesForCity(ctx, c.Raw)
		if err != nil {
			log.Printf("notes fetch failed for %s: %v", c.Raw, err)
			notes = nil
		}
		o.state.SetNotes(gen, notes)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()

		photos, err := o.api.PhotosForCity(ctx, c.Raw)
		if err != nil {
			log.Printf("photos fetch failed for %s: %v", c.Raw, err)
			photos = nil
		}
		o.state.SetPhotos(gen, photos)
	}()

	wg.Wait()
}

// AddNote validates and creates a note for the current city, then re-fetches
// the city's note list rather than trusting a returned row. Whitespace-only
// text is rejected locally with no network call.
func (o *Orchestrator) AddNote(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyNote
	}

	c := o.state.View().City
	if err := o.api.CreateNote(ctx, c.Raw, text); err != nil {
		return err
	}
	return o.refreshNotes(ctx, c)
}

// EditNote replaces a note's body and re-fetches the note list.
func (o *Orchestrator) EditNote(ctx context.Context, id uint, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyNote
	}

	if err := o.api.UpdateNote(ctx, id, text); err != nil {
		return err
	}
	return o.refreshNotes(ctx, o.state.View().City)
}

// RemoveNote deletes a note and re-fetches the note list.
func (o *Orchestrator) RemoveNote(ctx context.Context, id uint) error {
	if err := o.api.DeleteNote(ctx, id); err != nil {
		return err
	}
	return o.refreshNotes(ctx, o.state.View().City)
}

func (o *Orchestrator) refreshNotes(ctx context.Context, c city.City) error {
	notes, err := o.api.NotesForCity(ctx, c.Raw)
	if err != nil {
		return err
	}
	o.state.SetNotes(o.state.CurrentGen(), notes)
	return nil
}

// RefreshHistory reloads the history panel; failure leaves it untouched.
func (o *Orchestrator) RefreshHistory(ctx context.Context) {
	entries, err := o.api.ListHistory(ctx)
	if err != nil {
		log.Printf("history fetch failed: %v", err)
		return
	}
	o.state.SetHistory(entries)
}

// ClearHistory deletes every entry with concurrent individual calls, waits
// for all of them to settle, then refreshes the list once. A failed delete
// leaves its entry behind; there is no rollback.
func (o *Orchestrator) ClearHistory(ctx context.Context) {
	entries := o.state.View().History

	var wg sync.WaitGroup
	for _, entry := range entries {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			if err := o.api.DeleteHistory(ctx, id); err != nil {
				log.Printf("history delete failed for %d: %v", id, err)
			}
		}(entry.ID)
	}
	wg.Wait()

	o.RefreshHistory(ctx)
}

// weatherErrorMessage maps fetch errors to the user-facing banner text.
func weatherErrorMessage(err error) string {
	if errors.Is(err, weather.ErrLocationNotFound) {
		return "Location not found"
	}
	return "Could not load weather"
}
