// Package library loads the per-provider law indexes that map a law
// abbreviation to its titles, URL slug and known norms.
package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// ErrLibraryLoad wraps every failure to read or decode an index.
var ErrLibraryLoad = errors.New("law library load failed")

// Format identifies the encoding of an index file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Library is an immutable index of laws, keyed by lowercase abbreviation.
// It is safe to share between goroutines and providers.
type Library struct {
	laws   map[string]*LawEntry
	source string
}

type loadOptions struct {
	fragment FragmentFunc
}

// LoadOption configures index decoding.
type LoadOption func(*loadOptions)

// WithFragmentFunc sets how each norm's URL fragment is derived.
func WithFragmentFunc(fragment FragmentFunc) LoadOption {
	return func(options *loadOptions) {
		if fragment != nil {
			options.fragment = fragment
		}
	}
}

// Load reads an index file from disk.
func Load(path string, opts ...LoadOption) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", ErrLibraryLoad, path, err)
	}
	return LoadBytes(data, FormatFromPath(path), path, opts...)
}

// LoadFS reads an index file from a file system, e.g. an embed.FS.
func LoadFS(fsys fs.FS, path string, opts ...LoadOption) (*Library, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", ErrLibraryLoad, path, err)
	}
	return LoadBytes(data, FormatFromPath(path), path, opts...)
}

// LoadBytes decodes an index. The source names the origin in errors.
func LoadBytes(data []byte, format Format, source string, opts ...LoadOption) (*Library, error) {
	options := loadOptions{fragment: DefaultFragment}
	for _, opt := range opts {
		opt(&options)
	}

	var rawLaws map[string]rawLaw
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &rawLaws)
	case FormatJSON:
		err = json.Unmarshal(data, &rawLaws)
	default:
		return nil, fmt.Errorf("%w: %s: unsupported format %q", ErrLibraryLoad, source, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrLibraryLoad, source, err)
	}
	if len(rawLaws) == 0 {
		return nil, fmt.Errorf("%w: %s contains no laws", ErrLibraryLoad, source)
	}

	laws := make(map[string]*LawEntry, len(rawLaws))
	for key, raw := range rawLaws {
		abbreviation := strings.ToLower(strings.TrimSpace(key))
		if abbreviation == "" {
			return nil, fmt.Errorf("%w: %s has a law with an empty abbreviation", ErrLibraryLoad, source)
		}

		law := &LawEntry{
			Abbreviation: abbreviation,
			ShortTitle:   norm.NFC.String(raw.Law),
			FullTitle:    norm.NFC.String(raw.Title),
			Slug:         raw.Slug,
		}
		if law.ShortTitle == "" {
			law.ShortTitle = strings.ToUpper(abbreviation)
		}

		rawNorms := raw.entries()
		law.Norms = make(map[string]NormEntry, len(rawNorms))
		for normID, rawEntry := range rawNorms {
			law.Norms[normID] = newNormEntry(law, normID, rawEntry, options.fragment)
		}
		addCanonicalNorms(law, rawNorms, options.fragment)

		laws[abbreviation] = law
	}

	return &Library{laws: laws, source: source}, nil
}

func newNormEntry(law *LawEntry, normID string, raw rawNorm, fragment FragmentFunc) NormEntry {
	return NormEntry{
		Heading:     norm.NFC.String(raw.Text),
		URLFragment: fragment(law, normID, RawNorm(raw)),
	}
}

// addCanonicalNorms makes zero-padded numeric keys ("012") reachable by their
// integer form ("12"). Keys already in the index win over aliases.
func addCanonicalNorms(law *LawEntry, rawNorms map[string]rawNorm, fragment FragmentFunc) {
	normIDs := make([]string, 0, len(rawNorms))
	for normID := range rawNorms {
		normIDs = append(normIDs, normID)
	}
	sort.Strings(normIDs)

	for _, normID := range normIDs {
		canonical, ok := canonicalInteger(normID)
		if !ok || canonical == normID {
			continue
		}
		if _, exists := law.Norms[canonical]; exists {
			continue
		}
		law.Norms[canonical] = newNormEntry(law, canonical, rawNorms[normID], fragment)
	}
}

// Lookup finds a law by abbreviation, ignoring case.
func (lib *Library) Lookup(abbreviation string) (*LawEntry, bool) {
	if lib == nil {
		return nil, false
	}
	law, ok := lib.laws[strings.ToLower(abbreviation)]
	return law, ok
}

// Len returns the number of laws.
func (lib *Library) Len() int {
	if lib == nil {
		return 0
	}
	return len(lib.laws)
}

// Abbreviations returns the lowercase keys in sorted order.
func (lib *Library) Abbreviations() []string {
	if lib == nil {
		return []string{}
	}
	abbreviations := make([]string, 0, len(lib.laws))
	for abbreviation := range lib.laws {
		abbreviations = append(abbreviations, abbreviation)
	}
	sort.Strings(abbreviations)
	return abbreviations
}

// Source returns where the index was loaded from.
func (lib *Library) Source() string {
	if lib == nil {
		return ""
	}
	return lib.source
}
