package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_bookmark_store.go -package=mocks versecache/internal/storage BookmarkStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// BookmarkStore defines the interface for bookmark storage operations.
type BookmarkStore interface {
	// Create inserts a new bookmark. An ID is generated if empty.
	Create(ctx context.Context, bookmark *BookmarkRecord) error
	// List returns bookmarks, newest first.
	List(ctx context.Context) ([]BookmarkRecord, error)
	// GetByID gets a bookmark by ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*BookmarkRecord, error)
	// Delete removes a bookmark. Returns ErrNotFound if not found.
	Delete(ctx context.Context, id string) error
}

// BookmarkRepo provides methods for bookmark operations.
// It implements the BookmarkStore interface.
type BookmarkRepo struct {
	db *sql.DB
}

// NewBookmarkRepo creates a new BookmarkRepo.
func NewBookmarkRepo(db *sql.DB) *BookmarkRepo {
	return &BookmarkRepo{db: db}
}

// Create inserts a new bookmark and fills in ID and CreatedAt.
func (r *BookmarkRepo) Create(ctx context.Context, bookmark *BookmarkRecord) error {
	if bookmark.ID == "" {
		bookmark.ID = uuid.New().String()
	}

	verses, err := json.Marshal(bookmark.Verses)
	if err != nil {
		return fmt.Errorf("failed to encode bookmark verses: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO bookmarks (id, book, chapter, translation, reference, verses, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		bookmark.ID, bookmark.Book, bookmark.Chapter, bookmark.Translation,
		bookmark.Reference, string(verses), bookmark.Note,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bookmark: %w", err)
	}

	created, err := r.GetByID(ctx, bookmark.ID)
	if err != nil {
		return fmt.Errorf("failed to reload bookmark: %w", err)
	}
	bookmark.CreatedAt = created.CreatedAt

	return nil
}

// List returns all bookmarks ordered by creation time, newest first.
// Returns an empty slice if there are none.
func (r *BookmarkRepo) List(ctx context.Context) ([]BookmarkRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, book, chapter, translation, reference, verses, COALESCE(note, ''), created_at
		 FROM bookmarks ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	bookmarks := []BookmarkRecord{}
	for rows.Next() {
		bookmark, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, *bookmark)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return bookmarks, nil
}

// GetByID gets a bookmark by its ID. Returns ErrNotFound if not found.
func (r *BookmarkRepo) GetByID(ctx context.Context, id string) (*BookmarkRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, book, chapter, translation, reference, verses, COALESCE(note, ''), created_at
		 FROM bookmarks WHERE id = ?`,
		id,
	)

	bookmark, err := scanBookmark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return bookmark, nil
}

// Delete removes a bookmark by ID. Returns ErrNotFound if no row was deleted.
func (r *BookmarkRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM bookmarks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBookmark(row rowScanner) (*BookmarkRecord, error) {
	var bookmark BookmarkRecord
	var versesJSON, createdAtStr string

	err := row.Scan(
		&bookmark.ID, &bookmark.Book, &bookmark.Chapter, &bookmark.Translation,
		&bookmark.Reference, &versesJSON, &bookmark.Note, &createdAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan bookmark: %w", err)
	}

	if err := json.Unmarshal([]byte(versesJSON), &bookmark.Verses); err != nil {
		return nil, fmt.Errorf("failed to decode bookmark verses: %w", err)
	}

	bookmark.CreatedAt, err = parseTimestamp(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}

	return &bookmark, nil
}
