package citation

import (
	"regexp"
	"strings"
)

// Grammar pieces, in match order. Longer keywords come before their
// prefixes ("litera" before "lit") because alternation is leftmost-first.
const (
	sectionMarker = `(?:§+|&sect;|Artikel|Art\.?)\s*`
	normGroup     = `(\d+(?:[A-Za-z]\b)?)\s*`
	absatzGroup   = `(?:(?:Absatz|Abs\.?)\s*)?((?:\d+|[IVX]+)(?:[A-Za-z]\b)?)`
	satzGroup     = `(?:(?:Satz|S\.?)\s*(\d+))`
	nrGroup       = `(?:(?:Nummer|Nr\.?)\s*(\d+(?:[A-Za-z]\b)?))`
	litGroup      = `(?:(?:litera|lit\.?|Buchstabe|Buchst\.?)\s*([a-z]?))`
	fillerLimit   = `.{0,10}?`
	gesetzGroup   = `(\b[A-Z][A-Za-z]*[A-Z](?:(?:\s|\b)[IVX]+)?\b)`
)

// Expression is the citation grammar in RE2 syntax.
var Expression = strings.Join([]string{
	sectionMarker,
	normGroup,
	`(?:`, absatzGroup, `)?\s*`,
	satzGroup, `?\s*`,
	nrGroup, `?\s*`,
	litGroup, `?`,
	fillerLimit,
	gesetzGroup,
}, "")

// Pattern pairs the compiled grammar with the field each capture group fills.
// A Pattern is immutable and safe for concurrent use.
type Pattern struct {
	expression *regexp.Regexp
	fields     []Field
}

var defaultPattern = NewPattern()

// NewPattern compiles the citation grammar.
func NewPattern() *Pattern {
	return &Pattern{
		expression: regexp.MustCompile(Expression),
		fields:     Fields,
	}
}

// DefaultPattern returns the shared compiled grammar.
func DefaultPattern() *Pattern {
	return defaultPattern
}

// Regexp exposes the compiled expression.
func (pattern *Pattern) Regexp() *regexp.Regexp {
	return pattern.expression
}

// Analyze returns the first citation in text. Finding none is not an error.
func (pattern *Pattern) Analyze(text string) (*Match, bool) {
	matchIndices := pattern.expression.FindStringSubmatchIndex(text)
	if matchIndices == nil {
		return nil, false
	}
	return pattern.buildMatch(text, matchIndices), true
}

// ExtractAll returns every citation in text, left to right. Matches never
// overlap since each one consumes its own law abbreviation.
func (pattern *Pattern) ExtractAll(text string) []*Match {
	allIndices := pattern.expression.FindAllStringSubmatchIndex(text, -1)
	matches := make([]*Match, 0, len(allIndices))
	for _, matchIndices := range allIndices {
		matches = append(matches, pattern.buildMatch(text, matchIndices))
	}
	return matches
}

// Extract returns the matched citation strings.
func (pattern *Pattern) Extract(text string) []string {
	found := pattern.expression.FindAllString(text, -1)
	if found == nil {
		return []string{}
	}
	return found
}

func (pattern *Pattern) buildMatch(text string, matchIndices []int) *Match {
	match := &Match{
		Text:  text[matchIndices[0]:matchIndices[1]],
		Start: matchIndices[0],
		End:   matchIndices[1],
		Parts: make(map[Field]string, len(pattern.fields)),
	}

	for groupIndex, field := range pattern.fields {
		start := matchIndices[2*(groupIndex+1)]
		end := matchIndices[2*(groupIndex+1)+1]
		if start < 0 {
			continue
		}
		match.Parts[field] = text[start:end]
	}

	return match
}

// Analyze runs DefaultPattern().Analyze.
func Analyze(text string) (*Match, bool) {
	return defaultPattern.Analyze(text)
}

// ExtractAll runs DefaultPattern().ExtractAll.
func ExtractAll(text string) []*Match {
	return defaultPattern.ExtractAll(text)
}

// Extract runs DefaultPattern().Extract.
func Extract(text string) []string {
	return defaultPattern.Extract(text)
}
