// Package bundle serves chapters from a static offline dataset that is
// loaded into memory at most once per Store.
package bundle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"versecache/internal/content"
)

// OfflineVariantName labels every chapter served from the bundle,
// whatever translation was requested.
const OfflineVariantName = "KJV (Offline)"

var (
	// ErrNotFound is returned when no book or chapter matches.
	ErrNotFound = errors.New("not found in bundle")
	// ErrUnavailable is returned when the dataset could not be loaded.
	ErrUnavailable = errors.New("bundle unavailable")
)

// Record is one book of the bundled dataset.
type Record struct {
	Name     string     `json:"name"`
	Chapters [][]string `json:"chapters"`
}

// BookInfo summarizes a bundled book.
type BookInfo struct {
	Name     string `json:"name"`
	Chapters int    `json:"chapters"`
}

type book struct {
	Record
	normalized string
}

// loadFuture is the single in-flight load shared by all first callers.
type loadFuture struct {
	done  chan struct{}
	books []book
	err   error
}

// Store looks chapters up in the bundled dataset.
type Store struct {
	source Source
	logger *slog.Logger

	mu   sync.Mutex
	load *loadFuture
}

// NewStore creates a Store. Nothing is loaded until the first lookup.
func NewStore(source Source) *Store {
	return &Store{
		source: source,
		logger: slog.Default(),
	}
}

// Lookup returns the chapter of the first book matching collectionID.
// Matching is on normalized names: exact match first, then prefix match,
// in dataset order.
func (s *Store) Lookup(ctx context.Context, collectionID string, subUnit int) (*content.Unit, error) {
	books, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}

	b, ok := match(books, content.NormalizeName(collectionID))
	if !ok {
		return nil, fmt.Errorf("%w: book %q", ErrNotFound, collectionID)
	}
	if subUnit < 1 || subUnit > len(b.Chapters) {
		return nil, fmt.Errorf("%w: %s has no chapter %d", ErrNotFound, b.Name, subUnit)
	}

	lines := b.Chapters[subUnit-1]
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s %d is empty", ErrNotFound, b.Name, subUnit)
	}

	// The bundle has no verse numbers; position is the index.
	items := make([]content.Item, 0, len(lines))
	for i, line := range lines {
		items = append(items, content.Item{Index: i + 1, Text: strings.TrimSpace(line)})
	}

	return &content.Unit{
		Reference:   fmt.Sprintf("%s %d", b.Name, subUnit),
		Items:       items,
		VariantName: OfflineVariantName,
		Provenance:  content.ProvenanceBundled,
	}, nil
}

// Books lists the bundled books in dataset order.
func (s *Store) Books(ctx context.Context) ([]BookInfo, error) {
	books, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]BookInfo, 0, len(books))
	for _, b := range books {
		infos = append(infos, BookInfo{Name: b.Name, Chapters: len(b.Chapters)})
	}
	return infos, nil
}

// Loaded reports whether a non-empty dataset is in memory.
// It never triggers a load.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	f := s.load
	s.mu.Unlock()
	if f == nil {
		return false
	}

	select {
	case <-f.done:
		return f.err == nil && len(f.books) > 0
	default:
		return false
	}
}

// dataset returns the loaded books, starting the load on first use.
// The load runs detached from ctx so a cancelled first caller does not
// poison the dataset for everyone else; ctx only bounds the wait.
func (s *Store) dataset(ctx context.Context) ([]book, error) {
	s.mu.Lock()
	if s.load == nil {
		f := &loadFuture{done: make(chan struct{})}
		s.load = f
		go s.run(context.WithoutCancel(ctx), f)
	}
	f := s.load
	s.mu.Unlock()

	select {
	case <-f.done:
		return f.books, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Store) run(ctx context.Context, f *loadFuture) {
	defer close(f.done)

	data, err := s.source.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "bundled dataset unavailable, offline fallback disabled", "error", err)
		f.err = fmt.Errorf("%w: %w", ErrUnavailable, err)
		return
	}

	books, err := parse(data)
	if err != nil {
		s.logger.WarnContext(ctx, "bundled dataset could not be parsed, offline fallback disabled", "error", err)
		f.err = fmt.Errorf("%w: %w", ErrUnavailable, err)
		return
	}

	s.logger.InfoContext(ctx, "bundled dataset loaded", "books", len(books))
	f.books = books
}

func parse(data []byte) ([]book, error) {
	// Some published bundles start with a UTF-8 BOM
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}

	books := make([]book, 0, len(records))
	for _, r := range records {
		books = append(books, book{Record: r, normalized: content.NormalizeName(r.Name)})
	}
	return books, nil
}

func match(books []book, query string) (book, bool) {
	if query == "" {
		return book{}, false
	}
	for _, b := range books {
		if b.normalized == query {
			return b, true
		}
	}
	for _, b := range books {
		if strings.HasPrefix(b.normalized, query) {
			return b, true
		}
	}
	return book{}, false
}
