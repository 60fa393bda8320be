package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"versecache/internal/bundle"
)

type stubPinger struct{ err error }

func (s stubPinger) PingContext(context.Context) error { return s.err }

type stubBundle struct{ loaded bool }

func (s stubBundle) Loaded() bool { return s.loaded }

type stubBreaker struct{ state string }

func (s stubBreaker) State() string { return s.state }

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		bundle     BundleStatus
		breaker    BreakerStatus
		method     string
		wantStatus int
		wantState  string
		wantChecks map[string]string
	}{
		{
			name:       "healthy",
			db:         stubPinger{},
			bundle:     stubBundle{loaded: true},
			breaker:    stubBreaker{state: "closed"},
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
			wantState:  "healthy",
			wantChecks: map[string]string{"database": "ok", "bundle": "ok", "upstream": "closed"},
		},
		{
			name:       "bundle missing is degraded",
			db:         stubPinger{},
			bundle:     stubBundle{loaded: false},
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
			wantState:  "degraded",
			wantChecks: map[string]string{"database": "ok", "bundle": "unavailable"},
		},
		{
			name:       "open breaker is degraded",
			db:         stubPinger{},
			bundle:     stubBundle{loaded: true},
			breaker:    stubBreaker{state: "open"},
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
			wantState:  "degraded",
			wantChecks: map[string]string{"database": "ok", "bundle": "ok", "upstream": "open"},
		},
		{
			name:       "database down is unhealthy",
			db:         stubPinger{err: errors.New("sql: database is closed")},
			bundle:     stubBundle{loaded: true},
			method:     http.MethodGet,
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "unhealthy",
			wantChecks: map[string]string{"database": "error", "bundle": "ok"},
		},
		{
			name:       "method not allowed",
			db:         stubPinger{},
			bundle:     stubBundle{loaded: true},
			method:     http.MethodPost,
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.db, tt.bundle, tt.breaker)
			req := httptest.NewRequest(tt.method, "/api/health", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantState == "" {
				return
			}

			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.wantState {
				t.Errorf("status = %q, want %q", resp.Status, tt.wantState)
			}
			if len(resp.Checks) != len(tt.wantChecks) {
				t.Errorf("checks = %v, want %v", resp.Checks, tt.wantChecks)
			}
			for k, v := range tt.wantChecks {
				if resp.Checks[k] != v {
					t.Errorf("checks[%s] = %q, want %q", k, resp.Checks[k], v)
				}
			}
			if resp.Timestamp == "" {
				t.Error("timestamp missing")
			}
		})
	}
}

type stubCatalog struct {
	books []bundle.BookInfo
	err   error
}

func (s stubCatalog) Books(context.Context) ([]bundle.BookInfo, error) { return s.books, s.err }

func TestBooksHandler_ServeHTTP(t *testing.T) {
	handler := NewBooksHandler(stubCatalog{books: []bundle.BookInfo{{Name: "Genesis", Chapters: 50}, {Name: "Exodus", Chapters: 40}}})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/books", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200", w.Code)
	}
	var resp BooksResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Books) != 2 || resp.Books[1] != (BookResponse{Name: "Exodus", Chapters: 40}) {
		t.Errorf("books = %+v", resp.Books)
	}

	failing := NewBooksHandler(stubCatalog{err: bundle.ErrUnavailable})
	w = httptest.NewRecorder()
	failing.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/books", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %v, want 503", w.Code)
	}
}
