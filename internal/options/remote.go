package options

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"courtsim/internal/catalog"
)

// remoteTimeout bounds a catalog fetch; scenario selection should never hang
// on a slow source.
const remoteTimeout = 3 * time.Second

// RemoteProvider fetches the scenario catalog from a courtsim server. Any
// failure (transport, status, shape) falls back to the wrapped provider.
type RemoteProvider struct {
	url      string
	http     *http.Client
	fallback Provider
	log      *zap.Logger
}

var _ Provider = (*RemoteProvider)(nil)

// NewRemoteProvider fetches from baseURL's /api/options endpoint, falling
// back to fallback on failure. A nil fallback means the built-in catalog.
func NewRemoteProvider(baseURL string, fallback Provider, log *zap.Logger) *RemoteProvider {
	if fallback == nil {
		fallback = Builtin()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RemoteProvider{
		url:      baseURL + "/api/options",
		http:     &http.Client{Timeout: remoteTimeout},
		fallback: fallback,
		log:      log,
	}
}

func (p *RemoteProvider) Fetch(ctx context.Context) Payload {
	opts, err := p.fetch(ctx)
	if err != nil {
		p.log.Warn("remote scenario fetch failed, using fallback",
			zap.String("url", p.url),
			zap.Error(err))
		fb := p.fallback.Fetch(ctx)
		fb.Source = SourceFallback
		return fb
	}
	return Payload{Source: SourceRemote, Options: opts}
}

func (p *RemoteProvider) fetch(ctx context.Context) ([]catalog.ScenarioOption, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	var payload Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if err := Validate(payload.Options); err != nil {
		return nil, err
	}
	return payload.Options, nil
}
