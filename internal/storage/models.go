package storage

import "time"

// BookmarkRecord is a saved snapshot of verses from a chapter.
type BookmarkRecord struct {
	ID          string // UUID
	Book        string
	Chapter     int
	Translation string
	Reference   string          // e.g. "John 3"
	Verses      []BookmarkVerse // Stored as JSON
	Note        string
	CreatedAt   time.Time
}

// BookmarkVerse is one verse captured in a bookmark.
type BookmarkVerse struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}
