package store

import "time"

// HistoryEntry is one past lookup, tagged with the weather description
// observed at lookup time. Entries are append-only; they are deleted but
// never updated in place.
type HistoryEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	City        string    `gorm:"not null" json:"city"`
	Description string    `gorm:"column:weather_description" json:"description"`
	SearchedAt  time.Time `gorm:"column:searched_at;index" json:"searched_at"`
}

func (HistoryEntry) TableName() string { return "history" }

// Note is a free-text annotation belonging to exactly one city. The City
// column holds the raw display string as entered; matching is by normalized
// key (see ListNotesForCity).
type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	City      string    `gorm:"not null" json:"city"`
	Note      string    `gorm:"column:note;not null" json:"note"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Note) TableName() string { return "notes" }

// NoteImage is an uploaded image owned by a Note. ImageURL is the public
// path of the stored blob; its basename is the blob key.
type NoteImage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	NoteID     uint      `gorm:"column:note_id;index" json:"note_id"`
	ImageURL   string    `gorm:"column:image_url" json:"image_url"`
	UploadedAt time.Time `gorm:"column:uploaded_at" json:"uploaded_at"`
}

func (NoteImage) TableName() string { return "note_images" }

// CityPhoto is an uploaded photo owned directly by a city key, with no note
// indirection.
type CityPhoto struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	City       string    `gorm:"not null" json:"city"`
	ImageURL   string    `gorm:"column:image_url" json:"image_url"`
	UploadedAt time.Time `gorm:"column:uploaded_at" json:"uploaded_at"`
}

func (CityPhoto) TableName() string { return "city_photos" }
