package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return s
}

func TestHistoryRecordAndList(t *testing.T) {
	s := openTestStore(t)

	_, err := s.RecordSearch("Cebu City", "light rain")
	require.NoError(t, err)
	_, err = s.RecordSearch("Davao", "Sunny")
	require.NoError(t, err)

	entries, err := s.ListHistory()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Most recent first.
	assert.Equal(t, "Davao", entries[0].City)
	assert.Equal(t, "Cebu City", entries[1].City)
	assert.Equal(t, "light rain", entries[1].Description)
}

func TestHistoryNoDeduplication(t *testing.T) {
	s := openTestStore(t)

	_, err := s.RecordSearch("Davao", "Sunny")
	require.NoError(t, err)
	_, err = s.RecordSearch("Davao", "Sunny")
	require.NoError(t, err)

	entries, err := s.ListHistory()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestHistoryRejectsEmptyCity(t *testing.T) {
	s := openTestStore(t)

	_, err := s.RecordSearch("   ", "Sunny")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestHistoryDeleteIsIdempotent(t *testing.T) {
	s := openTestStore(t)

	entry, err := s.RecordSearch("Davao", "Sunny")
	require.NoError(t, err)

	require.NoError(t, s.DeleteHistory(entry.ID))
	require.NoError(t, s.DeleteHistory(entry.ID)) // already gone, still success
	require.NoError(t, s.DeleteHistory(9999))

	entries, err := s.ListHistory()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateNoteRejectsWhitespaceText(t *testing.T) {
	s := openTestStore(t)

	_, err := s.CreateNote("Davao", "   ")
	assert.ErrorIs(t, err, ErrValidation)

	notes, err := s.ListNotes()
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestListNotesForCityMatchesVariants(t *testing.T) {
	s := openTestStore(t)

	for _, c := range []string{"Davao City", "DAVAO", "davao city"} {
		_, err := s.CreateNote(c, "note for "+c)
		require.NoError(t, err)
	}
	_, err := s.CreateNote("Cebu", "unrelated")
	require.NoError(t, err)

	notes, err := s.ListNotesForCity("davao")
	require.NoError(t, err)
	require.Len(t, notes, 3)

	// Raw display strings survive as entered.
	cities := []string{notes[0].City, notes[1].City, notes[2].City}
	assert.ElementsMatch(t, []string{"Davao City", "DAVAO", "davao city"}, cities)
}

func TestListNotesForCityUnknownIsEmptyNotError(t *testing.T) {
	s := openTestStore(t)

	notes, err := s.ListNotesForCity("atlantis")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestListNotesForCityNonASCIICaseFold(t *testing.T) {
	s := openTestStore(t)

	// SQLite's LOWER() folds only ASCII; matching must not depend on it.
	_, err := s.CreateNote("ÉVORA", "alentejo")
	require.NoError(t, err)
	_, err = s.CreateNote("Évora City", "suffixed")
	require.NoError(t, err)

	notes, err := s.ListNotesForCity("évora")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.ElementsMatch(t, []string{"ÉVORA", "Évora City"},
		[]string{notes[0].City, notes[1].City})
}

func TestListPhotosForCityNonASCIICaseFold(t *testing.T) {
	s := openTestStore(t)

	_, err := s.CreateCityPhoto("ÉVORA", "/uploads/9-e.jpg")
	require.NoError(t, err)

	photos, err := s.ListPhotosForCity("évora")
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, "ÉVORA", photos[0].City)
}

func TestListNotesForCityNoFalsePositives(t *testing.T) {
	s := openTestStore(t)

	// Shares the "davao" prefix but normalizes differently.
	_, err := s.CreateNote("Davaoville", "other place")
	require.NoError(t, err)

	notes, err := s.ListNotesForCity("davao")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestUpdateNote(t *testing.T) {
	s := openTestStore(t)

	note, err := s.CreateNote("Davao", "original")
	require.NoError(t, err)

	require.NoError(t, s.UpdateNote(note.ID, "edited"))

	notes, err := s.ListNotesForCity("Davao")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "edited", notes[0].Note)
}

func TestUpdateNoteMissingID(t *testing.T) {
	s := openTestStore(t)
	assert.ErrorIs(t, s.UpdateNote(42, "text"), ErrNotFound)
}

func TestUpdateNoteRejectsEmptyText(t *testing.T) {
	s := openTestStore(t)

	note, err := s.CreateNote("Davao", "original")
	require.NoError(t, err)
	assert.ErrorIs(t, s.UpdateNote(note.ID, "  "), ErrValidation)
}

func TestDeleteNoteDoesNotCascadeImages(t *testing.T) {
	s := openTestStore(t)

	note, err := s.CreateNote("Davao", "with image")
	require.NoError(t, err)
	img, err := s.CreateNoteImage(note.ID, "/uploads/123-pic.jpg")
	require.NoError(t, err)

	require.NoError(t, s.DeleteNote(note.ID))

	// Image row survives and is reported as orphaned.
	got, err := s.GetNoteImage(img.ID)
	require.NoError(t, err)
	assert.Equal(t, note.ID, got.NoteID)

	orphans, err := s.OrphanImageRows()
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, img.ID, orphans[0].ID)
}

func TestNoteImagesListAndDelete(t *testing.T) {
	s := openTestStore(t)

	note, err := s.CreateNote("Davao", "n")
	require.NoError(t, err)

	first, err := s.CreateNoteImage(note.ID, "/uploads/1-a.jpg")
	require.NoError(t, err)
	_, err = s.CreateNoteImage(note.ID, "/uploads/2-b.jpg")
	require.NoError(t, err)

	images, err := s.ListImagesForNote(note.ID)
	require.NoError(t, err)
	assert.Len(t, images, 2)

	require.NoError(t, s.DeleteNoteImage(first.ID))
	require.NoError(t, s.DeleteNoteImage(first.ID)) // idempotent

	images, err = s.ListImagesForNote(note.ID)
	require.NoError(t, err)
	assert.Len(t, images, 1)

	_, err = s.GetNoteImage(first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCityPhotosMatchVariants(t *testing.T) {
	s := openTestStore(t)

	_, err := s.CreateCityPhoto("Cebu City", "/uploads/3-c.jpg")
	require.NoError(t, err)
	_, err = s.CreateCityPhoto("CEBU", "/uploads/4-d.jpg")
	require.NoError(t, err)
	_, err = s.CreateCityPhoto("Davao", "/uploads/5-e.jpg")
	require.NoError(t, err)

	photos, err := s.ListPhotosForCity("cebu city")
	require.NoError(t, err)
	assert.Len(t, photos, 2)
}

func TestReferencedImageURLs(t *testing.T) {
	s := openTestStore(t)

	note, err := s.CreateNote("Davao", "n")
	require.NoError(t, err)
	_, err = s.CreateNoteImage(note.ID, "/uploads/1-a.jpg")
	require.NoError(t, err)
	_, err = s.CreateCityPhoto("Cebu", "/uploads/2-b.jpg")
	require.NoError(t, err)

	urls, err := s.ReferencedImageURLs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/uploads/1-a.jpg", "/uploads/2-b.jpg"}, urls)
}
