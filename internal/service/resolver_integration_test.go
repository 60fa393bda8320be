package service_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"versecache/internal/bibleapi"
	"versecache/internal/bundle"
	"versecache/internal/content"
	"versecache/internal/service"
	"versecache/internal/storage"
)

// chapterAPI serves John 3 (21 verses) and 404 for everything else.
type chapterAPI struct {
	server *httptest.Server
	hits   atomic.Int32
	status atomic.Int32
}

func newChapterAPI(t *testing.T) *chapterAPI {
	t.Helper()
	api := &chapterAPI{}
	api.status.Store(http.StatusOK)

	api.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.hits.Add(1)
		if status := int(api.status.Load()); status != http.StatusOK {
			http.Error(w, "upstream unavailable", status)
			return
		}
		if r.URL.Path != "/John+3" {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}

		verses := make([]bibleapi.Verse, 0, 21)
		for i := 1; i <= 21; i++ {
			verses = append(verses, bibleapi.Verse{BookName: "John", Chapter: 3, Verse: i, Text: fmt.Sprintf("John 3:%d text\n", i)})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(bibleapi.ChapterResponse{
			Reference:       "John 3",
			TranslationName: "World English Bible",
			Verses:          verses,
		})
	}))
	t.Cleanup(api.server.Close)
	return api
}

// offlineURL returns a base URL nothing is listening on.
func offlineURL(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	return url
}

func writeBundle(t *testing.T) string {
	t.Helper()

	lines := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("line %d", i+1)
		}
		return out
	}
	psalms := make([][]string, 150)
	for i := range psalms {
		psalms[i] = lines(3)
	}
	psalms[22] = lines(6)
	corinthians := make([][]string, 16)
	for i := range corinthians {
		corinthians[i] = lines(13)
	}

	records := []bundle.Record{
		{Name: "Psalms", Chapters: psalms},
		{Name: "1 Corinthians", Chapters: corinthians},
		{Name: "John", Chapters: [][]string{lines(2), lines(2), lines(36)}},
	}
	data, err := json.Marshal(records)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "bible-kjv.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

type stack struct {
	resolver service.Resolver
	cache    *storage.CacheRepo
}

func newStack(t *testing.T, baseURL string) stack {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, storage.Migrate(db))

	cache := storage.NewCacheRepo(db)
	client := bibleapi.NewClient(baseURL, bibleapi.WithHTTPClient(&http.Client{Timeout: 2 * time.Second}))
	fetcher := bibleapi.NewBreakerFetcher(client, bibleapi.DefaultBreakerConfig())
	store := bundle.NewStore(bundle.FileSource{Path: writeBundle(t)})

	return stack{
		resolver: service.NewResolver(cache, fetcher, store),
		cache:    cache,
	}
}

func TestResolverIntegration_NetworkThenCache(t *testing.T) {
	api := newChapterAPI(t)
	s := newStack(t, api.server.URL)

	first, err := s.resolver.Resolve(testContext(), "John", 3, "web")
	require.NoError(t, err)
	assert.Equal(t, content.ProvenanceNetwork, first.Provenance)
	assert.Equal(t, "John 3", first.Reference)
	assert.Len(t, first.Items, 21)
	assert.Equal(t, "John 3:1 text", first.Items[0].Text)

	cached, err := s.cache.Get(testContext(), content.BuildKey("john", 3, "web"))
	require.NoError(t, err)
	assert.Equal(t, first.Items, cached.Items)

	second, err := s.resolver.Resolve(testContext(), "John", 3, "web")
	require.NoError(t, err)
	assert.Equal(t, content.ProvenanceCache, second.Provenance)
	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, first.Reference, second.Reference)
	assert.Equal(t, int32(1), api.hits.Load(), "cache hit must not call the network")
}

func TestResolverIntegration_CacheServesWhileOffline(t *testing.T) {
	api := newChapterAPI(t)
	s := newStack(t, api.server.URL)

	_, err := s.resolver.Resolve(testContext(), "John", 3, "web")
	require.NoError(t, err)

	api.status.Store(http.StatusInternalServerError)

	got, err := s.resolver.Resolve(testContext(), "John", 3, "web")
	require.NoError(t, err)
	assert.Equal(t, content.ProvenanceCache, got.Provenance)
	assert.Len(t, got.Items, 21)
}

func TestResolverIntegration_BundledFallback(t *testing.T) {
	tests := []struct {
		name    string
		baseURL func(t *testing.T) string
	}{
		{
			name:    "network error",
			baseURL: offlineURL,
		},
		{
			name: "server error",
			baseURL: func(t *testing.T) string {
				api := newChapterAPI(t)
				api.status.Store(http.StatusInternalServerError)
				return api.server.URL
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStack(t, tt.baseURL(t))

			got, err := s.resolver.Resolve(testContext(), "Psalm", 23, "web")
			require.NoError(t, err)
			assert.Equal(t, content.ProvenanceBundled, got.Provenance)
			assert.Equal(t, bundle.OfflineVariantName, got.VariantName)
			assert.Equal(t, "Psalms 23", got.Reference)
			require.Len(t, got.Items, 6)
			for i, item := range got.Items {
				assert.Equal(t, i+1, item.Index)
			}

			_, err = s.cache.Get(testContext(), content.BuildKey("psalm", 23, "web"))
			assert.ErrorIs(t, err, storage.ErrNotFound, "bundled results are not written to the cache")
		})
	}
}

func TestResolverIntegration_PrefixMatch(t *testing.T) {
	s := newStack(t, offlineURL(t))

	got, err := s.resolver.Resolve(testContext(), "1co", 13, "web")
	require.NoError(t, err)
	assert.Equal(t, content.ProvenanceBundled, got.Provenance)
	assert.Equal(t, "1 Corinthians 13", got.Reference)
	assert.Len(t, got.Items, 13)
}

func TestResolverIntegration_Unavailable(t *testing.T) {
	s := newStack(t, offlineURL(t))

	tests := []struct {
		name    string
		book    string
		chapter int
	}{
		{name: "unknown book", book: "Nonexistent", chapter: 1},
		{name: "chapter out of range", book: "Psalms", chapter: 151},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.resolver.Resolve(testContext(), tt.book, tt.chapter, "web")
			assert.ErrorIs(t, err, service.ErrContentUnavailable)
			assert.Nil(t, got)
		})
	}
}

func TestResolverIntegration_OpenBreakerStillFallsBack(t *testing.T) {
	api := newChapterAPI(t)
	api.status.Store(http.StatusServiceUnavailable)
	s := newStack(t, api.server.URL)

	for i := 0; i < 6; i++ {
		got, err := s.resolver.Resolve(testContext(), "John", 3, "web")
		require.NoError(t, err)
		assert.Equal(t, content.ProvenanceBundled, got.Provenance)
		assert.Len(t, got.Items, 36)
	}

	assert.Equal(t, int32(bibleapi.DefaultBreakerConfig().MaxFailures), api.hits.Load(),
		"open breaker should stop calling the upstream")
}
