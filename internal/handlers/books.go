package handlers

import (
	"context"
	"net/http"

	"versecache/internal/bundle"
	"versecache/internal/contextutil"
)

// BookCatalog lists the books available offline.
type BookCatalog interface {
	Books(ctx context.Context) ([]bundle.BookInfo, error)
}

// BooksHandler serves the bundled book list.
type BooksHandler struct {
	catalog BookCatalog
}

// NewBooksHandler creates a new BooksHandler.
func NewBooksHandler(catalog BookCatalog) *BooksHandler {
	return &BooksHandler{catalog: catalog}
}

// BooksResponse represents the HTTP response payload for the book list.
type BooksResponse struct {
	Books []BookResponse `json:"books"`
}

// BookResponse is one book and its chapter count.
type BookResponse struct {
	Name     string `json:"name"`
	Chapters int    `json:"chapters"`
}

// ServeHTTP handles GET /api/books.
func (h *BooksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	books, err := h.catalog.Books(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list bundled books", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Book list unavailable")
		return
	}

	resp := BooksResponse{Books: make([]BookResponse, 0, len(books))}
	for _, b := range books {
		resp.Books = append(resp.Books, BookResponse{Name: b.Name, Chapters: b.Chapters})
	}
	writeJSON(w, http.StatusOK, resp)
}
