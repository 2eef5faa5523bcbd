package fetch

import (
	"context"
	"fmt"

	"ContentPipeline/internal/domain"
)

// Result carries the raw content extracted from a source URL.
type Result struct {
	Title string
	Body  string
}

// Fetcher captures a single fetch strategy (static HTML, rendered page).
type Fetcher interface {
	Mode() domain.FetchMode
	Fetch(ctx context.Context, url string) (Result, error)
}

// Registry keeps a mapping from fetch modes to their implementations.
type Registry struct {
	fetchers map[domain.FetchMode]Fetcher
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: map[domain.FetchMode]Fetcher{}}
}

// Register adds or replaces a fetcher implementation.
func (r *Registry) Register(f Fetcher) {
	if r.fetchers == nil {
		r.fetchers = map[domain.FetchMode]Fetcher{}
	}
	r.fetchers[f.Mode()] = f
}

// Resolve returns a fetcher by mode or an error if it is absent.
func (r *Registry) Resolve(mode domain.FetchMode) (Fetcher, error) {
	if f, ok := r.fetchers[mode]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("fetch mode %s is not registered", mode)
}
