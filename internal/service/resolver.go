package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_content_cache.go -package=mocks versecache/internal/service ContentCache
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_content_fetcher.go -package=mocks versecache/internal/service ContentFetcher
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_fallback_store.go -package=mocks versecache/internal/service FallbackStore
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_resolver.go -package=mocks -mock_names=Resolver=MockResolver versecache/internal/service Resolver

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"versecache/internal/content"
	"versecache/internal/contextutil"
	"versecache/internal/storage"
)

const tracerName = "versecache/internal/service"

// ContentCache is the persistent local cache as seen by the resolver.
type ContentCache interface {
	// Get returns the unit stored under key, or an error on a miss.
	Get(ctx context.Context, key string) (*content.Unit, error)
	// Put stores unit under key, overwriting any previous value.
	Put(ctx context.Context, key string, unit *content.Unit) error
}

// ContentFetcher retrieves a chapter from the remote content API.
type ContentFetcher interface {
	Fetch(ctx context.Context, book string, chapter int, translation string) (*content.Unit, error)
}

// FallbackStore serves chapters from the bundled offline dataset.
type FallbackStore interface {
	Lookup(ctx context.Context, book string, chapter int) (*content.Unit, error)
}

// Recorder receives resolution outcomes for metrics.
type Recorder interface {
	ResolutionServed(provenance content.Provenance)
	ResolutionFailed()
	CacheError(op string)
	FetchObserved(success bool, d time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) ResolutionServed(content.Provenance) {}
func (noopRecorder) ResolutionFailed()                   {}
func (noopRecorder) CacheError(string)                   {}
func (noopRecorder) FetchObserved(bool, time.Duration)   {}

// Resolver produces chapter content from the first tier that has it:
// local cache, then the remote API, then the bundled dataset.
type Resolver interface {
	// Resolve returns the chapter tagged with the tier that produced it.
	// It fails with ErrContentUnavailable only when every tier is exhausted.
	Resolve(ctx context.Context, book string, chapter int, translation string) (*content.Unit, error)
}

// ResolverOption configures the resolver.
type ResolverOption func(*resolver)

// WithRecorder reports outcomes to r.
func WithRecorder(r Recorder) ResolverOption {
	return func(res *resolver) {
		if r != nil {
			res.recorder = r
		}
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) ResolverOption {
	return func(res *resolver) {
		if t != nil {
			res.tracer = t
		}
	}
}

// resolver implements Resolver.
type resolver struct {
	cache    ContentCache
	fetcher  ContentFetcher
	fallback FallbackStore
	recorder Recorder
	tracer   trace.Tracer
}

// NewResolver creates a new Resolver over the three tiers.
func NewResolver(cache ContentCache, fetcher ContentFetcher, fallback FallbackStore, opts ...ResolverOption) Resolver {
	r := &resolver{
		cache:    cache,
		fetcher:  fetcher,
		fallback: fallback,
		recorder: noopRecorder{},
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// tierResult is what a single tier produced. Exactly one of unit and err is set.
type tierResult struct {
	unit *content.Unit
	err  error
}

func (t tierResult) ok() bool {
	return t.err == nil && t.unit != nil
}

// Resolve implements Resolver.
func (r *resolver) Resolve(ctx context.Context, book string, chapter int, translation string) (*content.Unit, error) {
	key := content.BuildKey(book, chapter, translation)

	ctx, span := r.tracer.Start(ctx, "Resolver.Resolve", trace.WithAttributes(
		attribute.String("content.key", key),
	))
	defer span.End()

	logger := contextutil.LoggerFromContext(ctx).With("key", key)

	if res := r.fromCache(ctx, key); res.ok() {
		return r.served(ctx, span, logger, res.unit, content.ProvenanceCache), nil
	} else if errors.Is(res.err, storage.ErrNotFound) {
		logger.DebugContext(ctx, "cache miss")
	} else {
		r.recorder.CacheError("get")
		logger.WarnContext(ctx, "cache read failed, treating as miss", "error", res.err)
	}

	fetched := r.fromNetwork(ctx, book, chapter, translation)
	if fetched.ok() {
		if err := r.cache.Put(ctx, key, fetched.unit); err != nil {
			r.recorder.CacheError("put")
			logger.WarnContext(ctx, "cache write failed", "error", err)
		}
		return r.served(ctx, span, logger, fetched.unit, content.ProvenanceNetwork), nil
	}
	logger.WarnContext(ctx, "fetch failed, falling back to bundled data", "error", fetched.err)

	bundled := r.fromBundle(ctx, book, chapter)
	if bundled.ok() {
		return r.served(ctx, span, logger, bundled.unit, content.ProvenanceBundled), nil
	}

	logger.ErrorContext(ctx, "content unavailable from every tier", "bundle_error", bundled.err)
	r.recorder.ResolutionFailed()
	span.SetStatus(codes.Error, ErrContentUnavailable.Error())
	return nil, ErrContentUnavailable
}

func (r *resolver) served(ctx context.Context, span trace.Span, logger *slog.Logger, unit *content.Unit, p content.Provenance) *content.Unit {
	span.SetAttributes(attribute.String("content.provenance", string(p)))
	r.recorder.ResolutionServed(p)
	logger.InfoContext(ctx, "chapter resolved", "provenance", p, "reference", unit.Reference, "items", len(unit.Items))
	return unit.WithProvenance(p)
}

func (r *resolver) fromCache(ctx context.Context, key string) tierResult {
	ctx, span := r.tracer.Start(ctx, "cache.get")
	defer span.End()

	unit, err := r.cache.Get(ctx, key)
	if err == nil && unit == nil {
		err = storage.ErrNotFound
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return tierResult{err: err}
	}
	return tierResult{unit: unit}
}

func (r *resolver) fromNetwork(ctx context.Context, book string, chapter int, translation string) tierResult {
	ctx, span := r.tracer.Start(ctx, "network.fetch")
	defer span.End()

	start := time.Now()
	unit, err := r.fetcher.Fetch(ctx, book, chapter, translation)
	if err == nil && unit == nil {
		err = errors.New("fetcher returned no content")
	}
	r.recorder.FetchObserved(err == nil, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return tierResult{err: err}
	}
	return tierResult{unit: unit}
}

func (r *resolver) fromBundle(ctx context.Context, book string, chapter int) tierResult {
	ctx, span := r.tracer.Start(ctx, "bundle.lookup")
	defer span.End()

	unit, err := r.fallback.Lookup(ctx, book, chapter)
	if err == nil && unit == nil {
		err = errors.New("bundle returned no content")
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return tierResult{err: err}
	}
	return tierResult{unit: unit}
}
