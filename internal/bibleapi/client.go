package bibleapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"versecache/internal/content"
	"versecache/internal/contextutil"
)

// ErrFetchFailed is wrapped by every error Fetch returns.
// Callers only need to know that the network tier produced nothing.
var ErrFetchFailed = errors.New("fetch failed")

// Client is a client for a bible-api.com compatible chapter API.
type Client struct {
	BaseURL string
	client  *http.Client
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithClock overrides the clock used to stamp ResolvedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new chapter API client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChapterResponse is the JSON body returned by the chapter endpoint.
type ChapterResponse struct {
	Reference       string  `json:"reference"`
	TranslationName string  `json:"translation_name"`
	Verses          []Verse `json:"verses"`
}

// Verse is a single verse in a ChapterResponse.
type Verse struct {
	BookName string `json:"book_name,omitempty"`
	Chapter  int    `json:"chapter,omitempty"`
	Verse    int    `json:"verse"`
	Text     string `json:"text"`
}

// Fetch requests one chapter and normalizes it into a content.Unit.
// It performs a single attempt and never touches the cache.
func (c *Client) Fetch(ctx context.Context, book string, chapter int, translation string) (*content.Unit, error) {
	logger := contextutil.LoggerFromContext(ctx)
	reqURL := c.chapterURL(book, chapter, translation)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to send request: %w", ErrFetchFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: bad status %d: %s", ErrFetchFailed, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var chapterResp ChapterResponse
	if err := json.NewDecoder(resp.Body).Decode(&chapterResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrFetchFailed, err)
	}

	unit, err := normalizeResponse(chapterResp, c.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	logger.DebugContext(ctx, "fetched chapter", "reference", unit.Reference, "verses", len(unit.Items))
	return unit, nil
}

// chapterURL builds {base}/{book}+{chapter}?translation={id}.
// Whitespace is removed from the book name ("1 John" -> "1John").
func (c *Client) chapterURL(book string, chapter int, translation string) string {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, book)

	path := url.PathEscape(compact) + "+" + strconv.Itoa(chapter)
	query := url.Values{}
	query.Set("translation", strings.TrimSpace(translation))
	return c.BaseURL + "/" + path + "?" + query.Encode()
}

// normalizeResponse converts an API response into the canonical shape.
func normalizeResponse(resp ChapterResponse, resolvedAt time.Time) (*content.Unit, error) {
	if len(resp.Verses) == 0 {
		return nil, errors.New("response contains no verses")
	}

	items := make([]content.Item, 0, len(resp.Verses))
	for _, v := range resp.Verses {
		items = append(items, content.Item{
			Index: v.Verse,
			Text:  strings.TrimSpace(v.Text),
		})
	}

	return &content.Unit{
		Reference:   strings.TrimSpace(resp.Reference),
		Items:       items,
		VariantName: strings.TrimSpace(resp.TranslationName),
		ResolvedAt:  resolvedAt,
		Provenance:  content.ProvenanceNetwork,
	}, nil
}
