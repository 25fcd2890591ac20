package library

import (
	"strconv"
)

// NormEntry is the per-norm metadata a provider needs: the heading shown as
// link title and the URL fragment appended to the law's base URL.
type NormEntry struct {
	Heading     string `json:"heading"`
	URLFragment string `json:"url_fragment"`
}

// LawEntry describes one law in a provider's index.
type LawEntry struct {
	// Abbreviation is the lowercase lookup key, e.g. "bgb".
	Abbreviation string `json:"abbreviation"`

	// ShortTitle is the canonical abbreviation, e.g. "BGB".
	ShortTitle string `json:"short_title"`

	// FullTitle is the official name, e.g. "Bürgerliches Gesetzbuch".
	FullTitle string `json:"full_title"`

	// Slug is the law's path segment on the provider's site.
	Slug string `json:"slug"`

	// Norms maps a norm identifier ("433", "12a") to its metadata.
	Norms map[string]NormEntry `json:"norms"`
}

// Norm looks up a norm identifier. Purely numeric identifiers fall back to
// their canonical integer form, so "012" finds an entry stored as "12".
func (law *LawEntry) Norm(normID string) (NormEntry, bool) {
	if law == nil {
		return NormEntry{}, false
	}
	if entry, ok := law.Norms[normID]; ok {
		return entry, true
	}

	canonical, ok := canonicalInteger(normID)
	if !ok || canonical == normID {
		return NormEntry{}, false
	}
	entry, ok := law.Norms[canonical]
	return entry, ok
}

// HasNorm reports whether the law contains the norm.
func (law *LawEntry) HasNorm(normID string) bool {
	_, ok := law.Norm(normID)
	return ok
}

func canonicalInteger(value string) (string, bool) {
	if value == "" {
		return "", false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	number, err := strconv.Atoi(value)
	if err != nil {
		return "", false
	}
	return strconv.Itoa(number), true
}

// RawNorm is a norm's metadata as decoded from an index file, before the
// provider turns it into a NormEntry. Indexes carry either a flat heading
// string or an object with text and slug.
type RawNorm struct {
	Text string
	Slug string
}

// FragmentFunc resolves the URL fragment of a norm at load time.
type FragmentFunc func(law *LawEntry, normID string, raw RawNorm) string

// DefaultFragment uses the slug carried by the index.
func DefaultFragment(law *LawEntry, normID string, raw RawNorm) string {
	return raw.Slug
}
