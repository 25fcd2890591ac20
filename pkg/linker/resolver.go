// Package linker picks a provider for every citation in a text and rewrites
// the citations into anchor tags.
package linker

import (
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/coolbeans/gesetze/pkg/citation"
	"github.com/coolbeans/gesetze/pkg/provider"
)

// ErrNoProviders is returned when a resolver is created without providers.
var ErrNoProviders = errors.New("no providers configured")

// DefaultCacheSize is the number of resolved citations memoized per config.
const DefaultCacheSize = 1024

// Config controls provider selection and link markup. It is treated as an
// immutable value; use Resolver.SetConfig to change it between passes.
type Config struct {
	// Order lists provider identifiers by preference. Unknown identifiers
	// are ignored and unmentioned providers follow in canonical order.
	Order []string `json:"order" yaml:"order"`

	// BlockList names providers that are never used.
	BlockList []string `json:"block" yaml:"block"`

	// Title selects the title attribute content.
	Title provider.TitleMode `json:"title" yaml:"title"`

	// Attributes are added to every link before href, title and target.
	Attributes Attributes `json:"attributes" yaml:"attributes"`
}

// Resolution is the outcome of resolving one citation.
type Resolution struct {
	Provider   string     `json:"provider"`
	Attributes Attributes `json:"attributes"`
}

// Href returns the link target.
func (resolution Resolution) Href() string {
	href, _ := resolution.Attributes.Get("href")
	return href
}

// Title returns the link title.
func (resolution Resolution) Title() string {
	title, _ := resolution.Attributes.Get("title")
	return title
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCacheSize sets how many resolutions are memoized. Zero disables
// the cache.
func WithCacheSize(size int) Option {
	return func(r *Resolver) {
		if size >= 0 {
			r.cacheSize = size
		}
	}
}

// WithPattern replaces the citation grammar.
func WithPattern(pattern *citation.Pattern) Option {
	return func(r *Resolver) {
		if pattern != nil {
			r.pattern = pattern
		}
	}
}

// Resolver links citations using the first capable provider. It is safe for
// concurrent use; every rewrite pass works on a consistent snapshot of the
// configuration.
type Resolver struct {
	mu        sync.RWMutex
	registry  *provider.Registry
	config    Config
	state     *passState
	pattern   *citation.Pattern
	cacheSize int
}

// passState is everything one rewrite pass needs. It is never mutated after
// construction, except for the cache which is safe for concurrent use.
type passState struct {
	providers []provider.Provider
	config    Config
	cache     *lru.Cache[string, resolved]
}

type resolved struct {
	resolution Resolution
	ok         bool
}

// NewResolver creates a resolver over the given providers.
func NewResolver(providers []provider.Provider, cfg Config, opts ...Option) (*Resolver, error) {
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}

	registry := provider.NewRegistry()
	for _, p := range providers {
		if err := registry.Register(p); err != nil {
			return nil, fmt.Errorf("registering provider: %w", err)
		}
	}
	return newResolver(registry, cfg, opts...)
}

// NewDefaultResolver creates a resolver over the four providers with their
// embedded indexes.
func NewDefaultResolver(cfg Config, opts ...Option) (*Resolver, error) {
	registry, err := provider.NewDefaultRegistry(nil)
	if err != nil {
		return nil, err
	}
	return newResolver(registry, cfg, opts...)
}

func newResolver(registry *provider.Registry, cfg Config, opts ...Option) (*Resolver, error) {
	r := &Resolver{
		registry:  registry,
		pattern:   citation.DefaultPattern(),
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.config = cloneConfig(cfg)
	state, err := r.buildState()
	if err != nil {
		return nil, err
	}
	r.state = state
	return r, nil
}

// buildState must be called with the write lock held or before r is shared.
func (r *Resolver) buildState() (*passState, error) {
	blocked := make(map[string]bool, len(r.config.BlockList))
	for _, id := range r.config.BlockList {
		blocked[id] = true
	}

	var active []provider.Provider
	for _, p := range r.registry.Ordered(r.config.Order) {
		if !blocked[p.ID()] {
			active = append(active, p)
		}
	}

	state := &passState{providers: active, config: r.config}
	if r.cacheSize > 0 {
		cache, err := lru.New[string, resolved](r.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating resolution cache: %w", err)
		}
		state.cache = cache
	}
	return state, nil
}

func (r *Resolver) snapshot() *passState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Config returns a copy of the current configuration.
func (r *Resolver) Config() Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneConfig(r.config)
}

// SetConfig replaces the configuration. Passes already running finish with
// the previous one.
func (r *Resolver) SetConfig(cfg Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous := r.config
	r.config = cloneConfig(cfg)
	state, err := r.buildState()
	if err != nil {
		r.config = previous
		return err
	}
	r.state = state
	return nil
}

// ReplaceProvider swaps in a provider with the same identifier, e.g. after
// its index was reloaded.
func (r *Resolver) ReplaceProvider(p provider.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.registry.Replace(p); err != nil {
		return err
	}
	state, err := r.buildState()
	if err != nil {
		return err
	}
	r.state = state
	return nil
}

// Providers returns the identifiers of all providers in effective order,
// blocked ones included.
func (r *Resolver) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ordered := r.registry.Ordered(r.config.Order)
	ids := make([]string, 0, len(ordered))
	for _, p := range ordered {
		ids = append(ids, p.ID())
	}
	return ids
}

// Provider returns a registered provider, blocked or not.
func (r *Resolver) Provider(id string) (provider.Provider, bool) {
	return r.registry.Get(id)
}

// Active returns the providers consulted for each citation, in order.
func (r *Resolver) Active() []provider.Provider {
	state := r.snapshot()
	active := make([]provider.Provider, len(state.providers))
	copy(active, state.providers)
	return active
}

// Pattern returns the citation grammar in use.
func (r *Resolver) Pattern() *citation.Pattern {
	return r.pattern
}

// Validate reports whether any active provider can serve the first citation
// in text.
func (r *Resolver) Validate(text string) bool {
	if text == "" {
		return false
	}
	match, ok := r.pattern.Analyze(text)
	if !ok {
		return false
	}

	for _, p := range r.snapshot().providers {
		if p.Validate(match) {
			return true
		}
	}
	return false
}

// Resolve finds the first active provider able to serve the citation and
// builds the link attributes.
func (r *Resolver) Resolve(match *citation.Match) (Resolution, bool) {
	return r.snapshot().resolve(match)
}

// BuildAttributes returns the anchor attributes for a citation, or nil when
// no provider can serve it.
func (r *Resolver) BuildAttributes(match *citation.Match) Attributes {
	resolution, ok := r.Resolve(match)
	if !ok {
		return nil
	}
	return resolution.Attributes
}

// Link renders the citation as an anchor tag, or returns its text unchanged
// when no provider can serve it.
func (r *Resolver) Link(match *citation.Match) string {
	return r.snapshot().link(match)
}

func (state *passState) resolve(match *citation.Match) (Resolution, bool) {
	if match == nil {
		return Resolution{}, false
	}

	if state.cache != nil {
		if cached, ok := state.cache.Get(match.Text); ok {
			return cached.resolution.clone(), cached.ok
		}
	}

	resolution, ok := state.resolveUncached(match)
	if state.cache != nil {
		state.cache.Add(match.Text, resolved{resolution: resolution.clone(), ok: ok})
	}
	return resolution, ok
}

func (state *passState) resolveUncached(match *citation.Match) (Resolution, bool) {
	for _, p := range state.providers {
		if !p.Validate(match) {
			continue
		}

		// A build error after validation skips the provider.
		href, err := p.BuildURL(match)
		if err != nil {
			continue
		}
		title, err := p.BuildTitle(match, state.config.Title)
		if err != nil {
			continue
		}

		attrs := state.config.Attributes.Clone()
		attrs.Set("href", href)
		attrs.Set("title", title)
		if !attrs.Has("target") {
			attrs.Set("target", "_blank")
		}
		return Resolution{Provider: p.ID(), Attributes: attrs}, true
	}
	return Resolution{}, false
}

func (state *passState) link(match *citation.Match) string {
	if match == nil {
		return ""
	}
	resolution, ok := state.resolve(match)
	if !ok {
		return match.Text
	}
	return "<a" + resolution.Attributes.String() + ">" + match.Text + "</a>"
}

func (resolution Resolution) clone() Resolution {
	return Resolution{Provider: resolution.Provider, Attributes: resolution.Attributes.Clone()}
}

func cloneConfig(cfg Config) Config {
	return Config{
		Order:      append([]string(nil), cfg.Order...),
		BlockList:  append([]string(nil), cfg.BlockList...),
		Title:      cfg.Title,
		Attributes: cfg.Attributes.Clone(),
	}
}
