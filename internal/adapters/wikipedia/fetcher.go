// Package wikipedia resolves an article URL to the plain-text introduction
// of the page through the MediaWiki extracts API.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/okian/artmap/pkg/logger"
	"github.com/okian/artmap/pkg/metrics"
)

// Defaults for the Spanish Wikipedia.
const (
	DefaultAPI       = "https://es.wikipedia.org/w/api.php"
	DefaultUserAgent = "artmap/1.0 (painters-by-movement map viewer)"
	maxResponseBytes = 4 << 20
)

// Fetcher looks up article summaries.
type Fetcher struct {
	api       string
	userAgent string
	http      *http.Client
	logger    logger.Logger
}

// NewFetcher creates a Fetcher for the Spanish Wikipedia by default.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		api:       DefaultAPI,
		userAgent: DefaultUserAgent,
		http:      http.DefaultClient,
		logger:    logger.Current().Named("wikipedia"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Title extracts the page title from the last path segment of articleURL
// and percent-decodes it. Escapes that do not form UTF-8 are rejected.
func Title(articleURL string) (string, error) {
	if strings.TrimSpace(articleURL) == "" {
		return "", fmt.Errorf("%w: empty URL", ErrMalformedTitle)
	}
	raw := articleURL[strings.LastIndex(articleURL, "/")+1:]
	title, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedTitle, err)
	}
	if title == "" {
		return "", fmt.Errorf("%w: no title in %q", ErrMalformedTitle, articleURL)
	}
	if !utf8.ValidString(title) {
		return "", fmt.Errorf("%w: %q does not decode to UTF-8", ErrMalformedTitle, raw)
	}
	return title, nil
}

// FetchSummary runs Summary in the background and reports through exactly
// one of the callbacks. Nil callbacks are allowed.
func (f *Fetcher) FetchSummary(ctx context.Context, articleURL string, onSuccess func(string), onError func(error)) {
	go func() {
		text, err := f.Summary(ctx, articleURL)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onSuccess != nil {
			onSuccess(text)
		}
	}()
}

// Summary returns the introductory plain-text extract of the article.
func (f *Fetcher) Summary(ctx context.Context, articleURL string) (string, error) {
	start := time.Now()
	text, err := f.summary(ctx, articleURL)
	metrics.RecordEnrichment(outcome(err), float64(time.Since(start).Milliseconds()))
	if err != nil {
		f.logger.Debug(ctx, "summary lookup failed", logger.String("article", articleURL), logger.Error(err))
		metrics.RecordErrorByComponent("wikipedia", outcome(err))
	}
	return text, err
}

func (f *Fetcher) summary(ctx context.Context, articleURL string) (string, error) {
	title, err := Title(articleURL)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(f.api)
	if err != nil {
		return "", fmt.Errorf("%w: api: %v", ErrUnreachable, err)
	}
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("prop", "extracts")
	params.Set("exintro", "true")
	params.Set("explaintext", "true")
	params.Set("redirects", "1")
	params.Set("titles", title)
	params.Set("origin", "*")
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: HTTP %d", ErrUnreachable, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrUnreachable, err)
	}
	return ParseExtract(body)
}

type page struct {
	Extract *string          `json:"extract"`
	Missing *json.RawMessage `json:"missing"`
}

type extractResponse struct {
	Query *struct {
		Pages map[string]*page `json:"pages"`
	} `json:"query"`
}

// ParseExtract interprets an extracts API response. The first page (by id)
// decides the outcome.
func ParseExtract(body []byte) (string, error) {
	var resp extractResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if resp.Query == nil || resp.Query.Pages == nil {
		return "", fmt.Errorf("%w: no pages", ErrBadResponse)
	}
	if len(resp.Query.Pages) == 0 {
		return "", ErrExtractUnavailable
	}
	ids := make([]string, 0, len(resp.Query.Pages))
	for id := range resp.Query.Pages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	p := resp.Query.Pages[ids[0]]
	switch {
	case p == nil:
		return "", ErrExtractUnavailable
	case p.Extract != nil && strings.TrimSpace(*p.Extract) != "":
		return strings.TrimSpace(*p.Extract), nil
	case p.Missing != nil:
		return "", ErrPageNotFound
	default:
		return "", ErrExtractUnavailable
	}
}
