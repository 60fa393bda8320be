package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"versecache/internal/contextutil"
	"versecache/internal/markup"
	"versecache/internal/service"
)

// ChapterHandler serves chapter content through the resolver.
type ChapterHandler struct {
	resolver           service.Resolver
	renderer           *markup.Renderer
	validate           *validator.Validate
	defaultTranslation string
}

// NewChapterHandler creates a new ChapterHandler.
// defaultTranslation is used when the request has no translation parameter.
func NewChapterHandler(resolver service.Resolver, renderer *markup.Renderer, defaultTranslation string) *ChapterHandler {
	return &ChapterHandler{
		resolver:           resolver,
		renderer:           renderer,
		validate:           newValidator(),
		defaultTranslation: defaultTranslation,
	}
}

// chapterParams are the validated inputs of a chapter request.
type chapterParams struct {
	Book        string `json:"book" validate:"required,max=64"`
	Chapter     int    `json:"chapter" validate:"min=1,max=200"`
	Translation string `json:"translation" validate:"required,printascii,max=32"`
	Format      string `json:"format" validate:"omitempty,oneof=raw plain html"`
}

// ChapterResponse represents the HTTP response payload for a chapter.
type ChapterResponse struct {
	Reference       string          `json:"reference"`
	TranslationName string          `json:"translation_name"`
	ResolvedAt      time.Time       `json:"resolved_at,omitzero"`
	Source          string          `json:"source"`
	Verses          []VerseResponse `json:"verses"`
}

// VerseResponse is one verse in a response.
type VerseResponse struct {
	Verse int    `json:"verse"`
	Text  string `json:"text"`
}

// ServeHTTP handles GET /api/chapters/{book}/{chapter}.
func (h *ChapterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	chapter, err := strconv.Atoi(chi.URLParam(r, "chapter"))
	if err != nil {
		logger.WarnContext(ctx, "invalid chapter parameter", "chapter", chi.URLParam(r, "chapter"))
		writeError(w, http.StatusBadRequest, "Validation error: chapter must be a number")
		return
	}

	params := chapterParams{
		Book:        strings.TrimSpace(chi.URLParam(r, "book")),
		Chapter:     chapter,
		Translation: strings.TrimSpace(r.URL.Query().Get("translation")),
		Format:      strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format"))),
	}
	if params.Translation == "" {
		params.Translation = h.defaultTranslation
	}
	if err := validateRequest(h.validate, params); err != nil {
		handleServiceError(w, ctx, err, "Invalid request")
		return
	}

	unit, err := h.resolver.Resolve(ctx, params.Book, params.Chapter, params.Translation)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to resolve chapter")
		return
	}

	resp := ChapterResponse{
		Reference:       unit.Reference,
		TranslationName: unit.VariantName,
		ResolvedAt:      unit.ResolvedAt,
		Source:          string(unit.Provenance),
		Verses:          make([]VerseResponse, 0, len(unit.Items)),
	}
	format := markup.Format(params.Format)
	for _, item := range unit.Items {
		text, err := h.renderer.Render(format, item.Text)
		if err != nil {
			logger.ErrorContext(ctx, "failed to render verse", "verse", item.Index, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to render chapter")
			return
		}
		resp.Verses = append(resp.Verses, VerseResponse{Verse: item.Index, Text: text})
	}

	writeJSON(w, http.StatusOK, resp)
}
