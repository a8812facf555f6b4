// Package sparql queries the knowledge-graph endpoint for the painters of a
// movement and decodes the bindings into painter records.
package sparql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/artmap/internal/domain/model"
	"github.com/okian/artmap/pkg/logger"
	"github.com/okian/artmap/pkg/metrics"
)

// Defaults for the public Wikidata endpoint.
const (
	DefaultEndpoint  = "https://query.wikidata.org/sparql"
	DefaultUserAgent = "artmap/1.0 (painters-by-movement map viewer)"
	resultsMediaType = "application/sparql-results+json"
	maxResponseBytes = 16 << 20
)

// QueryBuilder turns a movement id into a query string; "" means the id was
// rejected.
type QueryBuilder interface {
	Build(ctx context.Context, movement model.MovementID) string
}

// Client issues painter queries.
type Client struct {
	builder   QueryBuilder
	endpoint  string
	userAgent string
	http      *http.Client
	logger    logger.Logger
}

// NewClient creates a Client using builder for query text.
func NewClient(builder QueryBuilder, opts ...Option) *Client {
	c := &Client{
		builder:   builder,
		endpoint:  DefaultEndpoint,
		userAgent: DefaultUserAgent,
		http:      http.DefaultClient,
		logger:    logger.Current().Named("sparql"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type originKey struct{}

// WithOrigin tags ctx with the reason for a query ("prefetch", "on_demand")
// for metrics.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

func originOf(ctx context.Context) string {
	if o, ok := ctx.Value(originKey{}).(string); ok && o != "" {
		return o
	}
	return "unknown"
}

// Painters fetches the painters of movement. An id the builder rejects
// returns ErrEmptyQuery without any request being made.
func (c *Client) Painters(ctx context.Context, movement model.MovementID) (model.ResultSet, error) {
	const op = "sparql.painters"
	q := c.builder.Build(ctx, movement)
	if q == "" {
		return model.ResultSet{}, fmt.Errorf("%s %s: %w", op, movement, ErrEmptyQuery)
	}

	origin := originOf(ctx)
	start := time.Now()
	body, err := c.do(ctx, q)
	metrics.RecordSPARQLLatency(origin, float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordSPARQLRequest(origin, "transport_error")
		metrics.RecordErrorByComponent("sparql", "transport")
		return model.ResultSet{}, fmt.Errorf("%s %s: %w", op, movement, err)
	}

	records, err := Decode(body)
	if err != nil {
		metrics.RecordSPARQLRequest(origin, "decode_error")
		metrics.RecordErrorByComponent("sparql", "decode")
		return model.ResultSet{}, fmt.Errorf("%s %s: %w", op, movement, err)
	}
	metrics.RecordSPARQLRequest(origin, "ok")
	metrics.RecordSPARQLRecords(len(records))

	c.logger.Debug(ctx, "painters fetched",
		logger.String("movement", movement.String()),
		logger.String("origin", origin),
		logger.Int("records", len(records)),
		logger.Duration("took", time.Since(start)),
	)
	return model.ResultSet{Movement: movement, Records: records, FetchedAt: time.Now()}, nil
}

func (c *Client) do(ctx context.Context, q string) ([]byte, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: endpoint: %v", ErrTransport, err)
	}
	params := u.Query()
	params.Set("query", q)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", resultsMediaType)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, fmt.Errorf("%w: HTTP %d", ErrTransport, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}
	return body, nil
}

// Binding is one result row: variable name -> typed value.
type Binding map[string]struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type response struct {
	Results *struct {
		Bindings []Binding `json:"bindings"`
	} `json:"results"`
}

// Decode parses a SPARQL JSON results document into painter records.
func Decode(body []byte) ([]model.PainterRecord, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if resp.Results == nil {
		return nil, fmt.Errorf("%w: missing results", ErrDecode)
	}
	records := make([]model.PainterRecord, 0, len(resp.Results.Bindings))
	for _, b := range resp.Results.Bindings {
		records = append(records, b.Record())
	}
	return records, nil
}
