package citation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRomanNumeral is returned for empty input or input containing
// characters other than I, V, X, L, C, D and M.
var ErrInvalidRomanNumeral = errors.New("invalid roman numeral")

// romanValues lists two-letter subtractive pairs before the single letters
// so the longest matching prefix wins.
var romanValues = []struct {
	symbol string
	value  int
}{
	{"CM", 900},
	{"CD", 400},
	{"XC", 90},
	{"XL", 40},
	{"IX", 9},
	{"IV", 4},
	{"M", 1000},
	{"D", 500},
	{"C", 100},
	{"L", 50},
	{"X", 10},
	{"V", 5},
	{"I", 1},
}

// RomanToArabic converts a roman numeral to its integer value, ignoring case.
// Well-formedness is not checked: "VX" yields 15.
func RomanToArabic(numeral string) (int, error) {
	if !IsRoman(numeral) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRomanNumeral, numeral)
	}

	remaining := strings.ToUpper(numeral)
	result := 0
	for remaining != "" {
		for _, entry := range romanValues {
			if strings.HasPrefix(remaining, entry.symbol) {
				result += entry.value
				remaining = remaining[len(entry.symbol):]
				break
			}
		}
	}

	return result, nil
}

// IsRoman reports whether s is non-empty and consists only of roman numeral
// characters, in either case.
func IsRoman(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch r {
		case 'I', 'V', 'X', 'L', 'C', 'D', 'M', 'i', 'v', 'x', 'l', 'c', 'd', 'm':
		default:
			return false
		}
	}
	return true
}
