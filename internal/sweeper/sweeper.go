// Package sweeper reconciles the blob store against the relational rows that
// reference it. Blob writes and row writes are not transactional, so crashes
// and partial failures leave orphaned blobs behind; the sweeper reclaims them
// on a schedule.
package sweeper

import (
	"log"
	"path"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/lacandula/weather-dashboard/internal/blob"
	"github.com/lacandula/weather-dashboard/internal/store"
)

// Sweeper periodically deletes blobs no row references.
type Sweeper struct {
	scheduler *gocron.Scheduler
	store     *store.Store
	blobs     *blob.Store
	interval  time.Duration

	// minAge protects uploads whose row write is still in flight.
	minAge time.Duration
}

// New creates a Sweeper running every interval.
func New(st *store.Store, blobs *blob.Store, interval, minAge time.Duration) *Sweeper {
	return &Sweeper{
		scheduler: gocron.NewScheduler(time.UTC),
		store:     st,
		blobs:     blobs,
		interval:  interval,
		minAge:    minAge,
	}
}

// Start schedules the periodic sweep and starts the underlying scheduler.
func (s *Sweeper) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		removed, err := s.SweepOnce()
		if err != nil {
			log.Printf("sweeper: sweep failed: %v", err)
			return
		}
		if removed > 0 {
			log.Printf("sweeper: reclaimed %d orphaned blobs", removed)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future sweeps.
func (s *Sweeper) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// SweepOnce deletes every blob older than minAge that no note image or city
// photo row references, and returns how many were removed. Orphaned rows
// (images whose note is gone) are only reported; row cleanup is a user
// decision, not the sweeper's.
func (s *Sweeper) SweepOnce() (int, error) {
	urls, err := s.store.ReferencedImageURLs()
	if err != nil {
		return 0, err
	}

	referenced := make(map[string]bool, len(urls))
	for _, u := range urls {
		referenced[path.Base(u)] = true
	}

	entries, err := s.blobs.List()
	if err != nil {
		return 0, err
	}

	removed := 0
	cutoff := time.Now().Add(-s.minAge)
	for _, entry := range entries {
		if referenced[entry.Key] || entry.ModTime.After(cutoff) {
			continue
		}
		if err := s.blobs.Delete(entry.Key); err != nil {
			log.Printf("sweeper: failed to delete orphan blob %s: %v", entry.Key, err)
			continue
		}
		removed++
	}

	if orphanRows, err := s.store.OrphanImageRows(); err == nil && len(orphanRows) > 0 {
		log.Printf("sweeper: %d image rows reference deleted notes", len(orphanRows))
	}

	return removed, nil
}
