package library

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// rawLaw mirrors one entry of an index file. Different index generations
// use "headings" or "norms" for the same mapping.
type rawLaw struct {
	Law      string             `json:"law" yaml:"law"`
	Title    string             `json:"title" yaml:"title"`
	Slug     string             `json:"slug" yaml:"slug"`
	Headings map[string]rawNorm `json:"headings" yaml:"headings"`
	Norms    map[string]rawNorm `json:"norms" yaml:"norms"`
}

func (law rawLaw) entries() map[string]rawNorm {
	if len(law.Headings) > 0 {
		return law.Headings
	}
	return law.Norms
}

// rawNorm accepts a flat heading string or a nested object.
type rawNorm RawNorm

type nestedNorm struct {
	Text  string `json:"text" yaml:"text"`
	Title string `json:"title" yaml:"title"`
	Slug  string `json:"slug" yaml:"slug"`
	URI   string `json:"uri" yaml:"uri"`
}

func (nested nestedNorm) toRaw() rawNorm {
	raw := rawNorm{Text: nested.Text, Slug: nested.Slug}
	if raw.Text == "" {
		raw.Text = nested.Title
	}
	if raw.Slug == "" {
		raw.Slug = nested.URI
	}
	return raw
}

// UnmarshalJSON decodes either shape.
func (raw *rawNorm) UnmarshalJSON(data []byte) error {
	var heading string
	if err := json.Unmarshal(data, &heading); err == nil {
		*raw = rawNorm{Text: heading}
		return nil
	}

	var nested nestedNorm
	if err := json.Unmarshal(data, &nested); err != nil {
		return fmt.Errorf("norm must be a string or an object: %w", err)
	}
	*raw = nested.toRaw()
	return nil
}

// UnmarshalYAML decodes either shape.
func (raw *rawNorm) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*raw = rawNorm{Text: node.Value}
		return nil
	case yaml.MappingNode:
		var nested nestedNorm
		if err := node.Decode(&nested); err != nil {
			return err
		}
		*raw = nested.toRaw()
		return nil
	default:
		return fmt.Errorf("line %d: norm must be a string or a mapping", node.Line)
	}
}
