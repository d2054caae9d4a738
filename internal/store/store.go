package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lacandula/weather-dashboard/internal/city"
)

var (
	// ErrNotFound is returned when an operation references a row that does
	// not exist. Deletes never return it; deleting a missing id is success.
	ErrNotFound = errors.New("record not found")

	// ErrValidation is returned when a write carries no usable content,
	// e.g. a note whose text trims to empty.
	ErrValidation = errors.New("validation failed")
)

// Store is the relational annotation and history store.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the SQLite database at path and migrates the
// schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&HistoryEntry{}, &Note{}, &NoteImage{}, &CityPhoto{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// --- history ---

// RecordSearch appends a history entry. No de-duplication: searching the
// same city twice records two entries.
func (s *Store) RecordSearch(cityRaw, description string) (*HistoryEntry, error) {
	if strings.TrimSpace(cityRaw) == "" {
		return nil, fmt.Errorf("%w: city is required", ErrValidation)
	}

	entry := &HistoryEntry{
		City:        cityRaw,
		Description: description,
		SearchedAt:  time.Now().UTC(),
	}
	if err := s.db.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to record search: %w", err)
	}
	return entry, nil
}

// ListHistory returns all entries, most recent first.
func (s *Store) ListHistory() ([]HistoryEntry, error) {
	var entries []HistoryEntry
	err := s.db.Order("searched_at DESC, id DESC").Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}

// DeleteHistory removes one entry. Deleting a missing id is success.
func (s *Store) DeleteHistory(id uint) error {
	return s.db.Delete(&HistoryEntry{}, id).Error
}

// --- notes ---

// CreateNote inserts a note for a city. The raw display string is stored as
// entered. Text that trims to empty is rejected with ErrValidation.
func (s *Store) CreateNote(cityRaw, text string) (*Note, error) {
	if strings.TrimSpace(cityRaw) == "" {
		return nil, fmt.Errorf("%w: city is required", ErrValidation)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: note text is empty", ErrValidation)
	}

	note := &Note{City: cityRaw, Note: text, CreatedAt: time.Now().UTC()}
	if err := s.db.Create(note).Error; err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return note, nil
}

// ListNotes returns every note across all cities, newest first.
func (s *Store) ListNotes() ([]Note, error) {
	var notes []Note
	err := s.db.Order("created_at DESC, id DESC").Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// ListNotesForCity returns notes whose stored city normalizes to the same
// key as cityName: "Davao City", "DAVAO" and "davao city" rows all match a
// "davao" lookup. No match yields an empty list, not an error.
//
// Matching happens in Go with city.Normalize as the authoritative
// comparison. SQLite's LOWER() folds only ASCII, so an SQL pre-filter would
// silently exclude rows like "ÉVORA" from an "évora" lookup. Per-city row
// counts are small enough that a full scan is fine.
func (s *Store) ListNotesForCity(cityName string) ([]Note, error) {
	key := city.Normalize(cityName)

	var candidates []Note
	err := s.db.Order("created_at DESC, id DESC").Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notes for city: %w", err)
	}

	notes := make([]Note, 0, len(candidates))
	for _, n := range candidates {
		if city.Normalize(n.City) == key {
			notes = append(notes, n)
		}
	}
	return notes, nil
}

// UpdateNote replaces the body of an existing note.
func (s *Store) UpdateNote(id uint, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: note text is empty", ErrValidation)
	}

	res := s.db.Model(&Note{}).Where("id = ?", id).Update("note", text)
	if res.Error != nil {
		return fmt.Errorf("failed to update note: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: note %d", ErrNotFound, id)
	}
	return nil
}

// DeleteNote removes one note. Images owned by the note are not cascaded;
// their rows stay behind and are reported by OrphanImageRows.
func (s *Store) DeleteNote(id uint) error {
	return s.db.Delete(&Note{}, id).Error
}

// --- note images ---

// CreateNoteImage records an uploaded blob against its owning note.
func (s *Store) CreateNoteImage(noteID uint, imageURL string) (*NoteImage, error) {
	img := &NoteImage{NoteID: noteID, ImageURL: imageURL, UploadedAt: time.Now().UTC()}
	if err := s.db.Create(img).Error; err != nil {
		return nil, fmt.Errorf("failed to create note image: %w", err)
	}
	return img, nil
}

// ListImagesForNote returns the images of one note, newest first.
func (s *Store) ListImagesForNote(noteID uint) ([]NoteImage, error) {
	var images []NoteImage
	err := s.db.Where("note_id = ?", noteID).
		Order("uploaded_at DESC, id DESC").Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list note images: %w", err)
	}
	return images, nil
}

// GetNoteImage looks up one image row, typically to locate its blob before
// deletion.
func (s *Store) GetNoteImage(id uint) (*NoteImage, error) {
	var img NoteImage
	err := s.db.First(&img, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: image %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note image: %w", err)
	}
	return &img, nil
}

// DeleteNoteImage removes one image row. Deleting a missing id is success.
func (s *Store) DeleteNoteImage(id uint) error {
	return s.db.Delete(&NoteImage{}, id).Error
}

// --- city photos ---

// CreateCityPhoto records an uploaded blob against a city.
func (s *Store) CreateCityPhoto(cityRaw, imageURL string) (*CityPhoto, error) {
	if strings.TrimSpace(cityRaw) == "" {
		return nil, fmt.Errorf("%w: city is required", ErrValidation)
	}

	photo := &CityPhoto{City: cityRaw, ImageURL: imageURL, UploadedAt: time.Now().UTC()}
	if err := s.db.Create(photo).Error; err != nil {
		return nil, fmt.Errorf("failed to create city photo: %w", err)
	}
	return photo, nil
}

// ListPhotosForCity matches by normalized key in Go, like ListNotesForCity.
func (s *Store) ListPhotosForCity(cityName string) ([]CityPhoto, error) {
	key := city.Normalize(cityName)

	var candidates []CityPhoto
	err := s.db.Order("uploaded_at DESC, id DESC").Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list city photos: %w", err)
	}

	photos := make([]CityPhoto, 0, len(candidates))
	for _, p := range candidates {
		if city.Normalize(p.City) == key {
			photos = append(photos, p)
		}
	}
	return photos, nil
}

// GetCityPhoto looks up one photo row.
func (s *Store) GetCityPhoto(id uint) (*CityPhoto, error) {
	var photo CityPhoto
	err := s.db.First(&photo, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: photo %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get city photo: %w", err)
	}
	return &photo, nil
}

// DeleteCityPhoto removes one photo row. Deleting a missing id is success.
func (s *Store) DeleteCityPhoto(id uint) error {
	return s.db.Delete(&CityPhoto{}, id).Error
}

// --- reconciliation ---

// ReferencedImageURLs returns every image_url referenced by a note image or
// city photo row. The sweeper subtracts these from the blob listing to find
// orphaned blobs.
func (s *Store) ReferencedImageURLs() ([]string, error) {
	var urls []string

	var fromImages []string
	if err := s.db.Model(&NoteImage{}).Pluck("image_url", &fromImages).Error; err != nil {
		return nil, fmt.Errorf("failed to list referenced image urls: %w", err)
	}
	urls = append(urls, fromImages...)

	var fromPhotos []string
	if err := s.db.Model(&CityPhoto{}).Pluck("image_url", &fromPhotos).Error; err != nil {
		return nil, fmt.Errorf("failed to list referenced photo urls: %w", err)
	}
	urls = append(urls, fromPhotos...)

	return urls, nil
}

// OrphanImageRows returns note_images rows whose owning note no longer
// exists. Note deletion does not cascade, so these accumulate until an
// operator or the UI cleans them up.
func (s *Store) OrphanImageRows() ([]NoteImage, error) {
	var orphans []NoteImage
	err := s.db.
		Where("note_id NOT IN (?)", s.db.Model(&Note{}).Select("id")).
		Find(&orphans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orphan image rows: %w", err)
	}
	return orphans, nil
}
