// Package provider builds links to the legal-text websites that publish German
// and European norms. Every provider owns a law index and decides on its own
// whether it can serve a citation.
package provider

import (
	"errors"
	"fmt"

	"github.com/coolbeans/gesetze/pkg/citation"
	"github.com/coolbeans/gesetze/pkg/library"
)

var (
	// ErrUnknownProvider is returned for identifiers outside the known set.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrUnknownLaw means the provider's index lacks the cited law.
	ErrUnknownLaw = errors.New("unknown law")

	// ErrUnknownNorm means the law is indexed but the cited norm is not.
	ErrUnknownNorm = errors.New("unknown norm")
)

// Provider validates citations against its law index and builds link targets.
// Implementations must be safe for concurrent use.
type Provider interface {
	// ID returns the stable identifier, e.g. "gesetze".
	ID() string

	// Name returns the website name, e.g. "gesetze-im-internet.de".
	Name() string

	// Library returns the law index backing the provider.
	Library() *library.Library

	// Validate reports whether both the law and the norm are indexed.
	// A nil match is never valid.
	Validate(match *citation.Match) bool

	// ValidateText analyzes text and validates its first citation.
	ValidateText(text string) bool

	// BuildURL returns the link target for a citation.
	BuildURL(match *citation.Match) (string, error)

	// BuildTitle returns the link title for the given mode.
	BuildTitle(match *citation.Match, mode TitleMode) (string, error)
}

// LawProvider is a Provider driven by a law index and a URL rule.
type LawProvider struct {
	variant variant
	library *library.Library
}

type options struct {
	libraryFile string
	library     *library.Library
}

// Option configures New.
type Option func(*options)

// WithLibraryFile loads the index from a JSON or YAML file instead of the
// embedded default.
func WithLibraryFile(path string) Option {
	return func(o *options) {
		o.libraryFile = path
	}
}

// WithLibrary uses an already loaded index. Its URL fragments must have been
// computed with LoadOptions for the same provider.
func WithLibrary(lib *library.Library) Option {
	return func(o *options) {
		o.library = lib
	}
}

// New creates the provider with the given identifier. Without options the
// embedded index is used.
func New(id string, opts ...Option) (*LawProvider, error) {
	v, ok := variants[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, id)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var (
		lib *library.Library
		err error
	)
	switch {
	case o.library != nil:
		lib = o.library
	case o.libraryFile != "":
		lib, err = library.Load(o.libraryFile, v.loadOptions()...)
	default:
		lib, err = library.LoadFS(embeddedData, v.dataFile(), v.loadOptions()...)
	}
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", id, err)
	}

	return &LawProvider{variant: v, library: lib}, nil
}

// LoadOptions returns the index options a provider's library must be loaded
// with, e.g. when reloading an index file from disk.
func LoadOptions(id string) ([]library.LoadOption, error) {
	v, ok := variants[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, id)
	}
	return v.loadOptions(), nil
}

// ID returns the provider identifier.
func (p *LawProvider) ID() string {
	return p.variant.id
}

// Name returns the website name.
func (p *LawProvider) Name() string {
	return p.variant.name
}

// Library returns the backing index.
func (p *LawProvider) Library() *library.Library {
	return p.library
}

// Validate reports whether the provider can serve the citation.
func (p *LawProvider) Validate(match *citation.Match) bool {
	_, _, err := p.lookup(match)
	return err == nil
}

// ValidateText validates the first citation found in text.
func (p *LawProvider) ValidateText(text string) bool {
	match, ok := citation.Analyze(text)
	if !ok {
		return false
	}
	return p.Validate(match)
}

// BuildURL returns the absolute URL of the cited norm.
func (p *LawProvider) BuildURL(match *citation.Match) (string, error) {
	law, entry, err := p.lookup(match)
	if err != nil {
		return "", err
	}
	return p.variant.url(law, entry), nil
}

// BuildTitle returns the link title. TitleNone yields "" without consulting
// the index.
func (p *LawProvider) BuildTitle(match *citation.Match, mode TitleMode) (string, error) {
	if mode == TitleNone {
		return "", nil
	}

	law, entry, err := p.lookup(match)
	if err != nil {
		return "", err
	}

	switch mode {
	case TitleLight:
		return law.ShortTitle, nil
	case TitleNormal:
		return law.FullTitle, nil
	case TitleFull:
		return entry.Heading, nil
	default:
		return "", fmt.Errorf("%w: %d", ErrInvalidTitleMode, int(mode))
	}
}

func (p *LawProvider) lookup(match *citation.Match) (*library.LawEntry, library.NormEntry, error) {
	if match == nil {
		return nil, library.NormEntry{}, fmt.Errorf("%w: no citation", ErrUnknownLaw)
	}

	law, ok := p.library.Lookup(match.Gesetz())
	if !ok {
		return nil, library.NormEntry{}, fmt.Errorf("%s: %w: %q", p.variant.id, ErrUnknownLaw, match.Gesetz())
	}

	entry, ok := law.Norm(match.Norm())
	if !ok {
		return nil, library.NormEntry{}, fmt.Errorf("%s: %w: %q in %s", p.variant.id, ErrUnknownNorm, match.Norm(), law.ShortTitle)
	}

	return law, entry, nil
}
