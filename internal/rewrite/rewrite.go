package rewrite

import "context"

// Provider captures a single external rewriting backend.
type Provider interface {
	Name() string
	Rewrite(ctx context.Context, text, style string) (string, error)
}

// Registry keeps a mapping from provider names to their implementations.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: map[string]Provider{}}
}

// Register adds or replaces a provider implementation.
func (r *Registry) Register(p Provider) {
	if r.providers == nil {
		r.providers = map[string]Provider{}
	}
	r.providers[p.Name()] = p
}

// Resolve returns a provider by name. An unknown name yields an
// unsupported-provider error without any network involvement.
func (r *Registry) Resolve(name string) (Provider, error) {
	if p, ok := r.providers[name]; ok {
		return p, nil
	}
	return nil, NewError(KindUnsupportedProvider, name, nil)
}
