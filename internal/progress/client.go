// Package progress provides the client for the run-progress service. The
// simulation records finished runs through it; the Client interface exists so
// the engine and tests can swap in a mock.
package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Record is a single run's progress entry as carried on the wire.
type Record struct {
	ID              string    `json:"id,omitempty"`
	StartedAt       time.Time `json:"startedAt,omitempty"`
	FinishedAt      time.Time `json:"finishedAt,omitempty"`
	VerdictCategory string    `json:"verdictCategory,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt,omitempty"`
}

// OutputRecord is a published run artifact: the final HTML buffer plus a JSON
// summary of how the run ended.
type OutputRecord struct {
	ID          string    `json:"id,omitempty"`
	HTML        string    `json:"html,omitempty"`
	SummaryJSON string    `json:"summaryJson,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Creator is the narrow interface the game engine depends on.
type Creator interface {
	CreateProgress(ctx context.Context, rec Record) (Record, error)
}

// OutputCreator publishes run outputs.
type OutputCreator interface {
	CreateOutput(ctx context.Context, rec OutputRecord) (OutputRecord, error)
}

// Client is the full progress-service surface.
type Client interface {
	Creator
	GetProgress(ctx context.Context, id string) (Record, error)
	ListProgress(ctx context.Context) ([]Record, error)
	UpdateProgress(ctx context.Context, id string, rec Record) (Record, error)
	DeleteProgress(ctx context.Context, id string) error
}

// HTTPClient talks to a progress service over its JSON API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

var (
	_ Client        = (*HTTPClient)(nil)
	_ OutputCreator = (*HTTPClient)(nil)
)

// NewHTTPClient creates a client for the service rooted at baseURL
// (e.g. "http://127.0.0.1:8787").
func NewHTTPClient(baseURL string, log *zap.Logger) *HTTPClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

func (c *HTTPClient) CreateProgress(ctx context.Context, rec Record) (Record, error) {
	var out Record
	err := c.do(ctx, http.MethodPost, "/api/progress", rec, &out)
	return out, err
}

func (c *HTTPClient) GetProgress(ctx context.Context, id string) (Record, error) {
	var out Record
	err := c.do(ctx, http.MethodGet, "/api/progress/"+id, nil, &out)
	return out, err
}

func (c *HTTPClient) ListProgress(ctx context.Context) ([]Record, error) {
	var out []Record
	err := c.do(ctx, http.MethodGet, "/api/progress", nil, &out)
	return out, err
}

func (c *HTTPClient) UpdateProgress(ctx context.Context, id string, rec Record) (Record, error) {
	var out Record
	err := c.do(ctx, http.MethodPut, "/api/progress/"+id, rec, &out)
	return out, err
}

func (c *HTTPClient) DeleteProgress(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/progress/"+id, nil, nil)
}

func (c *HTTPClient) CreateOutput(ctx context.Context, rec OutputRecord) (OutputRecord, error) {
	var out OutputRecord
	err := c.do(ctx, http.MethodPost, "/api/output", rec, &out)
	return out, err
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, msg)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
