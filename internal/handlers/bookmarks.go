package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"versecache/internal/contextutil"
	"versecache/internal/service"
	"versecache/internal/storage"
)

// BookmarkHandler handles HTTP requests for bookmarks.
type BookmarkHandler struct {
	bookmarkService    service.BookmarkService
	validate           *validator.Validate
	defaultTranslation string
}

// NewBookmarkHandler creates a new BookmarkHandler.
func NewBookmarkHandler(bookmarkService service.BookmarkService, defaultTranslation string) *BookmarkHandler {
	return &BookmarkHandler{
		bookmarkService:    bookmarkService,
		validate:           newValidator(),
		defaultTranslation: defaultTranslation,
	}
}

// CreateBookmarkRequest represents the HTTP request payload for a new bookmark.
type CreateBookmarkRequest struct {
	Book        string `json:"book" validate:"required,max=64"`
	Chapter     int    `json:"chapter" validate:"min=1,max=200"`
	Translation string `json:"translation" validate:"omitempty,printascii,max=32"`
	Verses      []int  `json:"verses" validate:"omitempty,max=200,dive,min=1"`
	Note        string `json:"note" validate:"max=1000"`
}

// BookmarkResponse represents a bookmark in responses.
type BookmarkResponse struct {
	ID          string          `json:"id"`
	Book        string          `json:"book"`
	Chapter     int             `json:"chapter"`
	Translation string          `json:"translation"`
	Reference   string          `json:"reference"`
	Verses      []VerseResponse `json:"verses"`
	Note        string          `json:"note,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// BookmarksResponse represents a list of bookmarks.
type BookmarksResponse struct {
	Bookmarks []BookmarkResponse `json:"bookmarks"`
}

// Create handles POST /api/bookmarks.
func (h *BookmarkHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req CreateBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Book = strings.TrimSpace(req.Book)
	if err := validateRequest(h.validate, req); err != nil {
		handleServiceError(w, ctx, err, "Invalid request")
		return
	}

	translation := strings.TrimSpace(req.Translation)
	if translation == "" {
		translation = h.defaultTranslation
	}

	bookmark, err := h.bookmarkService.Create(ctx, service.BookmarkRequest{
		Book:        req.Book,
		Chapter:     req.Chapter,
		Translation: translation,
		Verses:      req.Verses,
		Note:        req.Note,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to create bookmark")
		return
	}

	writeJSON(w, http.StatusCreated, toBookmarkResponse(bookmark))
}

// List handles GET /api/bookmarks.
func (h *BookmarkHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bookmarks, err := h.bookmarkService.List(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list bookmarks")
		return
	}

	resp := BookmarksResponse{Bookmarks: make([]BookmarkResponse, 0, len(bookmarks))}
	for i := range bookmarks {
		resp.Bookmarks = append(resp.Bookmarks, toBookmarkResponse(&bookmarks[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/bookmarks/{id}.
func (h *BookmarkHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bookmark, err := h.bookmarkService.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to get bookmark")
		return
	}
	writeJSON(w, http.StatusOK, toBookmarkResponse(bookmark))
}

// Delete handles DELETE /api/bookmarks/{id}.
func (h *BookmarkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.bookmarkService.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, ctx, err, "Failed to delete bookmark")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toBookmarkResponse(b *storage.BookmarkRecord) BookmarkResponse {
	verses := make([]VerseResponse, 0, len(b.Verses))
	for _, v := range b.Verses {
		verses = append(verses, VerseResponse{Verse: v.Index, Text: v.Text})
	}
	return BookmarkResponse{
		ID:          b.ID,
		Book:        b.Book,
		Chapter:     b.Chapter,
		Translation: b.Translation,
		Reference:   b.Reference,
		Verses:      verses,
		Note:        b.Note,
		CreatedAt:   b.CreatedAt,
	}
}
