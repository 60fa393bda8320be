package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"versecache/internal/handlers"
	"versecache/internal/markup"
	"versecache/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Resolver           service.Resolver
	Bookmarks          service.BookmarkService
	Books              handlers.BookCatalog
	DB                 handlers.Pinger
	Bundle             handlers.BundleStatus
	Breaker            handlers.BreakerStatus // optional
	Renderer           *markup.Renderer
	DefaultTranslation string
	Metrics            http.Handler // optional; serves /metrics
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	renderer := deps.Renderer
	if renderer == nil {
		renderer = markup.NewRenderer()
	}

	chapterHandler := handlers.NewChapterHandler(deps.Resolver, renderer, deps.DefaultTranslation)
	booksHandler := handlers.NewBooksHandler(deps.Books)
	bookmarkHandler := handlers.NewBookmarkHandler(deps.Bookmarks, deps.DefaultTranslation)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Bundle, deps.Breaker)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)
		r.Method(http.MethodGet, "/books", booksHandler)
		r.Method(http.MethodGet, "/chapters/{book}/{chapter}", chapterHandler)

		r.Route("/bookmarks", func(r chi.Router) {
			r.Post("/", bookmarkHandler.Create)
			r.Get("/", bookmarkHandler.List)
			r.Get("/{id}", bookmarkHandler.Get)
			r.Delete("/{id}", bookmarkHandler.Delete)
		})
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	return r
}
