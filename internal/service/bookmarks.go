package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_bookmark_service.go -package=mocks -mock_names=BookmarkService=MockBookmarkService versecache/internal/service BookmarkService

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"versecache/internal/contextutil"
	"versecache/internal/storage"
)

// BookmarkRequest asks to save verses from a chapter.
// An empty Verses list saves the whole chapter.
type BookmarkRequest struct {
	Book        string
	Chapter     int
	Translation string
	Verses      []int
	Note        string
}

// BookmarkService saves verse snapshots independently of the content cache.
type BookmarkService interface {
	Create(ctx context.Context, req BookmarkRequest) (*storage.BookmarkRecord, error)
	List(ctx context.Context) ([]storage.BookmarkRecord, error)
	Get(ctx context.Context, id string) (*storage.BookmarkRecord, error)
	Delete(ctx context.Context, id string) error
}

type bookmarkService struct {
	resolver Resolver
	store    storage.BookmarkStore
}

// NewBookmarkService creates a new BookmarkService.
func NewBookmarkService(resolver Resolver, store storage.BookmarkStore) BookmarkService {
	return &bookmarkService{
		resolver: resolver,
		store:    store,
	}
}

// Create resolves the chapter and stores the selected verses.
func (s *bookmarkService) Create(ctx context.Context, req BookmarkRequest) (*storage.BookmarkRecord, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Book) == "" {
		return nil, &ValidationError{Field: "book", Message: "cannot be empty"}
	}
	if req.Chapter < 1 {
		return nil, &ValidationError{Field: "chapter", Message: "must be at least 1"}
	}

	unit, err := s.resolver.Resolve(ctx, req.Book, req.Chapter, req.Translation)
	if err != nil {
		return nil, WrapError(err, "failed to resolve chapter")
	}

	record := &storage.BookmarkRecord{
		Book:        strings.TrimSpace(req.Book),
		Chapter:     req.Chapter,
		Translation: req.Translation,
		Reference:   unit.Reference,
		Note:        strings.TrimSpace(req.Note),
	}

	if len(req.Verses) == 0 {
		for _, item := range unit.Items {
			record.Verses = append(record.Verses, storage.BookmarkVerse{Index: item.Index, Text: item.Text})
		}
	} else {
		selected := slices.Clone(req.Verses)
		slices.Sort(selected)
		selected = slices.Compact(selected)
		for _, index := range selected {
			item, ok := unit.ItemByIndex(index)
			if !ok {
				return nil, &ValidationError{
					Field:   "verses",
					Message: fmt.Sprintf("verse %d is not in %s", index, unit.Reference),
				}
			}
			record.Verses = append(record.Verses, storage.BookmarkVerse{Index: item.Index, Text: item.Text})
		}
	}

	if err := s.store.Create(ctx, record); err != nil {
		logger.ErrorContext(ctx, "failed to save bookmark", "reference", record.Reference, "error", err)
		return nil, WrapError(err, "failed to save bookmark")
	}

	logger.InfoContext(ctx, "bookmark created", "id", record.ID, "reference", record.Reference, "verses", len(record.Verses))
	return record, nil
}

// List returns all bookmarks, newest first.
func (s *bookmarkService) List(ctx context.Context) ([]storage.BookmarkRecord, error) {
	bookmarks, err := s.store.List(ctx)
	if err != nil {
		return nil, WrapError(err, "failed to list bookmarks")
	}
	return bookmarks, nil
}

// Get returns one bookmark or ErrNotFound.
func (s *bookmarkService) Get(ctx context.Context, id string) (*storage.BookmarkRecord, error) {
	bookmark, err := s.store.GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, WrapError(err, "failed to get bookmark")
	}
	return bookmark, nil
}

// Delete removes one bookmark or returns ErrNotFound.
func (s *bookmarkService) Delete(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return WrapError(err, "failed to delete bookmark")
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "bookmark deleted", "id", id)
	return nil
}
