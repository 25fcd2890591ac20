package provider

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidTitleMode is returned when a title mode name is not recognized.
var ErrInvalidTitleMode = errors.New("invalid title mode")

// TitleMode selects what goes into a link's title attribute.
type TitleMode int

const (
	// TitleNone leaves the title empty.
	TitleNone TitleMode = iota
	// TitleLight uses the law abbreviation, e.g. "BGB".
	TitleLight
	// TitleNormal uses the law's full name.
	TitleNormal
	// TitleFull uses the norm heading.
	TitleFull
)

var titleModeNames = []string{"none", "light", "normal", "full"}

// TitleModeNames lists the accepted names in enum order.
func TitleModeNames() []string {
	names := make([]string, len(titleModeNames))
	copy(names, titleModeNames)
	return names
}

// ParseTitleMode parses a mode name case-insensitively. The empty string
// and "false" select TitleNone.
func ParseTitleMode(name string) (TitleMode, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" || normalized == "false" {
		return TitleNone, nil
	}
	for index, modeName := range titleModeNames {
		if modeName == normalized {
			return TitleMode(index), nil
		}
	}
	return TitleNone, fmt.Errorf("%w: %q (want one of %s)", ErrInvalidTitleMode, name, strings.Join(titleModeNames, ", "))
}

func (mode TitleMode) String() string {
	if mode < 0 || int(mode) >= len(titleModeNames) {
		return fmt.Sprintf("TitleMode(%d)", int(mode))
	}
	return titleModeNames[mode]
}

// MarshalText implements encoding.TextMarshaler.
func (mode TitleMode) MarshalText() ([]byte, error) {
	if mode < 0 || int(mode) >= len(titleModeNames) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTitleMode, int(mode))
	}
	return []byte(titleModeNames[mode]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (mode *TitleMode) UnmarshalText(text []byte) error {
	parsed, err := ParseTitleMode(string(text))
	if err != nil {
		return err
	}
	*mode = parsed
	return nil
}

// UnmarshalYAML accepts a mode name or a boolean false.
func (mode *TitleMode) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: %w: expected a scalar", node.Line, ErrInvalidTitleMode)
	}
	parsed, err := ParseTitleMode(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*mode = parsed
	return nil
}
