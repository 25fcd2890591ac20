// Package citation recognizes German legal-norm citations such as
// "Art. 12 Abs. 1 GG" or "§ 433 II BGB" and splits them into their parts.
package citation

import (
	"fmt"
	"strings"
)

// Field names one semantic part of a citation.
type Field string

const (
	FieldNorm   Field = "norm"
	FieldAbsatz Field = "absatz"
	FieldSatz   Field = "satz"
	FieldNr     Field = "nr"
	FieldLit    Field = "lit"
	FieldGesetz Field = "gesetz"
)

// Fields lists the parts in the order the grammar captures them.
var Fields = []Field{FieldNorm, FieldAbsatz, FieldSatz, FieldNr, FieldLit, FieldGesetz}

// Match is one citation found in a text.
type Match struct {
	// Text is the exact substring matched in the source.
	Text string `json:"text"`

	// Byte offsets of Text in the source.
	Start int `json:"start"`
	End   int `json:"end"`

	// Parts holds only the fields the grammar captured. A field that took
	// part in the match with an empty capture is present with "".
	Parts map[Field]string `json:"parts"`
}

// Part returns the value of a field and whether it was captured.
func (match *Match) Part(field Field) (string, bool) {
	if match == nil || match.Parts == nil {
		return "", false
	}
	value, ok := match.Parts[field]
	return value, ok
}

// Norm returns the section or article number.
func (match *Match) Norm() string {
	value, _ := match.Part(FieldNorm)
	return value
}

// Gesetz returns the law abbreviation as written.
func (match *Match) Gesetz() string {
	value, _ := match.Part(FieldGesetz)
	return value
}

func (match *Match) Absatz() (string, bool) { return match.Part(FieldAbsatz) }
func (match *Match) Satz() (string, bool)   { return match.Part(FieldSatz) }
func (match *Match) Nr() (string, bool)     { return match.Part(FieldNr) }
func (match *Match) Lit() (string, bool)    { return match.Part(FieldLit) }

// ArabicAbsatz returns the subsection with a roman numeral converted to its
// arabic value. A trailing letter suffix is kept ("IIa" -> "2a", "IIC" -> "2C").
// Arabic subsections are returned unchanged.
func (match *Match) ArabicAbsatz() (string, error) {
	absatz, ok := match.Absatz()
	if !ok {
		return "", fmt.Errorf("citation %q has no subsection", match.Text)
	}

	numeral, suffix := splitLetterSuffix(absatz)
	if !IsRoman(numeral) {
		return absatz, nil
	}

	value, err := RomanToArabic(numeral)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d%s", value, suffix), nil
}

// String renders the parts in grammar order, e.g. "norm=1 absatz=2 gesetz=BGB".
func (match *Match) String() string {
	var builder strings.Builder
	for _, field := range Fields {
		value, ok := match.Part(field)
		if !ok {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(string(field))
		builder.WriteByte('=')
		builder.WriteString(value)
	}
	return builder.String()
}

// splitLetterSuffix separates a single trailing letter. Subsection numerals
// only use I, V and X, so an uppercase I, V or X stays part of the numeral.
func splitLetterSuffix(value string) (string, string) {
	if len(value) < 2 {
		return value, ""
	}
	last := value[len(value)-1]
	switch {
	case last >= 'a' && last <= 'z':
		return value[:len(value)-1], string(last)
	case last >= 'A' && last <= 'Z' && !strings.ContainsRune("IVX", rune(last)):
		return value[:len(value)-1], string(last)
	}
	return value, ""
}
