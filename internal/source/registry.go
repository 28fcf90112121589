package source

import (
	"fmt"
	"log/slog"
	"sort"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/infrastructure/httpclient"
	"NewsDigest/internal/ports"
)

// Deps are the run-scoped resources handed to every adapter.
type Deps struct {
	HTTP   *httpclient.Client
	Logger *slog.Logger
}

// Factory builds one adapter from its config entry.
type Factory func(cfg config.AdapterConfig, deps Deps) (ports.SourceAdapter, error)

// Registry keeps a mapping from adapter types to their factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register adds or replaces a factory for the given type.
func (r *Registry) Register(kind string, factory Factory) {
	if r.factories == nil {
		r.factories = map[string]Factory{}
	}
	r.factories[kind] = factory
}

// Types lists registered adapter types in sorted order.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		out = append(out, kind)
	}
	sort.Strings(out)
	return out
}

// Build instantiates every enabled adapter entry.
// An unknown type or a rejected entry is a configuration error.
func (r *Registry) Build(entries []config.AdapterConfig, deps Deps) ([]ports.SourceAdapter, error) {
	adapters := make([]ports.SourceAdapter, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsEnabled() {
			continue
		}
		factory, ok := r.factories[entry.Type]
		if !ok {
			return nil, fmt.Errorf("%w: adapter %s: type %q is not registered", domain.ErrConfiguration, entry.Name, entry.Type)
		}
		entryDeps := deps
		if deps.Logger != nil {
			entryDeps.Logger = deps.Logger.With("component", "adapter."+entry.Name)
		}
		adapter, err := factory(entry, entryDeps)
		if err != nil {
			return nil, fmt.Errorf("%w: adapter %s: %v", domain.ErrConfiguration, entry.Name, err)
		}
		adapters = append(adapters, adapter)
	}
	return adapters, nil
}
