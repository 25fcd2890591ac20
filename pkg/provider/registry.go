package provider

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultOrder is the canonical provider preference.
var DefaultOrder = []string{IDGesetze, IDDejure, IDBuzer, IDLexparency}

// ResolveOrder arranges the known providers by preference. Duplicates keep
// their first occurrence, unknown identifiers are dropped silently and the
// providers not mentioned follow in canonical order.
func ResolveOrder(preferred []string) []string {
	return ArrangeOrder(preferred, DefaultOrder)
}

// ArrangeOrder is ResolveOrder over an arbitrary canonical list.
func ArrangeOrder(preferred, canonical []string) []string {
	known := make(map[string]bool, len(canonical))
	for _, id := range canonical {
		known[id] = true
	}

	order := make([]string, 0, len(canonical))
	seen := make(map[string]bool, len(canonical))
	for _, id := range preferred {
		if !known[id] || seen[id] {
			continue
		}
		seen[id] = true
		order = append(order, id)
	}
	for _, id := range canonical {
		if !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	return order
}

// Registry holds providers by identifier. Thread-safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// NewDefaultRegistry registers the four providers with their embedded
// indexes. Per-provider options override the defaults.
func NewDefaultRegistry(overrides map[string][]Option) (*Registry, error) {
	for id := range overrides {
		if _, ok := variants[id]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, id)
		}
	}

	registry := NewRegistry()
	for _, id := range DefaultOrder {
		provider, err := New(id, overrides[id]...)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(provider); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Register adds a provider.
// Returns an error if the provider is nil, has an empty identifier, or a
// provider with the same identifier is already registered.
func (r *Registry) Register(provider Provider) error {
	if provider == nil {
		return fmt.Errorf("provider cannot be nil")
	}
	id := provider.ID()
	if id == "" {
		return fmt.Errorf("provider identifier cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[id]; exists {
		return fmt.Errorf("provider %q already registered", id)
	}
	r.providers[id] = provider
	return nil
}

// Replace swaps a registered provider for one with the same identifier.
// Returns an error if no such provider is registered.
func (r *Registry) Replace(provider Provider) error {
	if provider == nil {
		return fmt.Errorf("provider cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[provider.ID()]; !exists {
		return fmt.Errorf("provider %q not found", provider.ID())
	}
	r.providers[provider.ID()] = provider
	return nil
}

// Unregister removes a provider by identifier.
// Returns an error if the provider is not found.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[id]; !exists {
		return fmt.Errorf("provider %q not found", id)
	}
	delete(r.providers, id)
	return nil
}

// Get returns a provider by identifier.
func (r *Registry) Get(id string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[id]
	return provider, ok
}

// List returns the registered identifiers in canonical order: the known
// providers first, then any others sorted by name.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.canonicalOrder()
}

// Ordered returns the registered providers arranged by preference.
func (r *Registry) Ordered(preferred []string) []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order := ArrangeOrder(preferred, r.canonicalOrder())
	providers := make([]Provider, 0, len(order))
	for _, id := range order {
		providers = append(providers, r.providers[id])
	}
	return providers
}

// Count returns the number of registered providers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// canonicalOrder must be called under read lock.
func (r *Registry) canonicalOrder() []string {
	ids := make([]string, 0, len(r.providers))
	for _, id := range DefaultOrder {
		if _, ok := r.providers[id]; ok {
			ids = append(ids, id)
		}
	}

	var others []string
	for id := range r.providers {
		if _, ok := variants[id]; !ok {
			others = append(others, id)
		}
	}
	sort.Strings(others)
	return append(ids, others...)
}
