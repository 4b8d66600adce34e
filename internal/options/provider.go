// Package options supplies the scenario catalog the player picks from. Three
// sources exist: the built-in catalog, a local YAML file (hot-reloaded on
// change), and a remote service. Remote failures fall back to another
// provider; scenario selection never hard-fails on a flaky source.
package options

import (
	"context"
	"fmt"

	"courtsim/internal/catalog"
)

// Catalog sources, reported alongside the options so clients can tell where
// the catalog came from.
const (
	SourceLocal    = "local"
	SourceRemote   = "remote"
	SourceFallback = "fallback"
)

// Payload is a scenario catalog tagged with its source.
type Payload struct {
	Source  string                   `json:"source"`
	Options []catalog.ScenarioOption `json:"options"`
}

// Provider yields the current scenario catalog. Implementations return copies
// so callers can't mutate shared state.
type Provider interface {
	Fetch(ctx context.Context) Payload
}

// ByID finds a scenario in a provider's current catalog. Returns nil when
// absent.
func ByID(ctx context.Context, p Provider, id string) *catalog.ScenarioOption {
	for _, opt := range p.Fetch(ctx).Options {
		if opt.ID == id {
			o := opt
			return &o
		}
	}
	return nil
}

// Validate checks a loaded catalog: non-empty unique ids and titles.
// Malformed bias values are not an error; the engine treats them as absent.
func Validate(opts []catalog.ScenarioOption) error {
	if len(opts) == 0 {
		return fmt.Errorf("scenario catalog is empty")
	}
	seen := make(map[string]bool, len(opts))
	for _, opt := range opts {
		if opt.ID == "" {
			return fmt.Errorf("scenario has empty id")
		}
		if opt.Title == "" {
			return fmt.Errorf("scenario %s has empty title", opt.ID)
		}
		if seen[opt.ID] {
			return fmt.Errorf("duplicate scenario id %s", opt.ID)
		}
		seen[opt.ID] = true
	}
	return nil
}

// Builtin returns a provider backed by the compiled-in catalog.
func Builtin() Provider {
	return staticProvider{opts: catalog.Options()}
}

// Static returns a provider over a fixed catalog, reported as a local source.
func Static(opts []catalog.ScenarioOption) Provider {
	return staticProvider{opts: opts}
}

type staticProvider struct {
	opts []catalog.ScenarioOption
}

func (p staticProvider) Fetch(context.Context) Payload {
	out := make([]catalog.ScenarioOption, len(p.opts))
	copy(out, p.opts)
	return Payload{Source: SourceLocal, Options: out}
}
