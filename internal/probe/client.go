package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/artmap/internal/domain/panel"
	"github.com/okian/artmap/internal/domain/types"
)

// ErrStatus is returned for any non-2xx reply.
var ErrStatus = errors.New("unexpected status")

// Client is a thin JSON client for the artmap API.
type Client struct {
	base   string
	client *http.Client
}

// NewClient creates a client for the server at base.
func NewClient(base string, timeout time.Duration) *Client {
	return &Client{base: base, client: &http.Client{Timeout: timeout}}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr types.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("%w: %s %s: %d %s", ErrStatus, method, path, resp.StatusCode, apiErr.Message)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Health checks /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// Movements lists the catalog.
func (c *Client) Movements(ctx context.Context) (types.MovementsResponse, error) {
	var out types.MovementsResponse
	err := c.do(ctx, http.MethodGet, "/api/movements", nil, &out)
	return out, err
}

// CreateSession opens a session and returns its id.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	var out types.SessionResponse
	err := c.do(ctx, http.MethodPost, "/api/sessions", nil, &out)
	return out.ID, err
}

// CloseSession closes session id.
func (c *Client) CloseSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/sessions/"+id, nil, nil)
}

// Refresh triggers an update for movement.
func (c *Client) Refresh(ctx context.Context, id, movement string) (types.RefreshResponse, error) {
	var out types.RefreshResponse
	err := c.do(ctx, http.MethodPost, "/api/sessions/"+id+"/refresh", types.RefreshRequest{Movement: movement}, &out)
	return out, err
}

// Markers fetches the marker layer.
func (c *Client) Markers(ctx context.Context, id string) (types.MarkersResponse, error) {
	var out types.MarkersResponse
	err := c.do(ctx, http.MethodGet, "/api/sessions/"+id+"/markers", nil, &out)
	return out, err
}

// Click clicks marker.
func (c *Client) Click(ctx context.Context, id, marker string) (panel.View, error) {
	var out panel.View
	err := c.do(ctx, http.MethodPost, "/api/sessions/"+id+"/markers/"+marker+"/click", nil, &out)
	return out, err
}

// Panel reads the detail panel.
func (c *Client) Panel(ctx context.Context, id string) (panel.View, error) {
	var out panel.View
	err := c.do(ctx, http.MethodGet, "/api/sessions/"+id+"/panel", nil, &out)
	return out, err
}
