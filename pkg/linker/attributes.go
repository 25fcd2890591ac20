package linker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Attribute is one name/value pair of a generated anchor tag.
type Attribute struct {
	Name  string
	Value string
}

// Attributes is an ordered attribute list. Order is preserved when
// rendering, so configured extras come first.
type Attributes []Attribute

// Get returns the value of an attribute.
func (attrs Attributes) Get(name string) (string, bool) {
	for _, attr := range attrs {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Has reports whether the attribute is set.
func (attrs Attributes) Has(name string) bool {
	_, ok := attrs.Get(name)
	return ok
}

// Set replaces an existing value in place or appends a new attribute.
func (attrs *Attributes) Set(name, value string) {
	for index, attr := range *attrs {
		if attr.Name == name {
			(*attrs)[index].Value = value
			return
		}
	}
	*attrs = append(*attrs, Attribute{Name: name, Value: value})
}

// Clone returns a copy that can be modified independently.
func (attrs Attributes) Clone() Attributes {
	if attrs == nil {
		return nil
	}
	cloned := make(Attributes, len(attrs))
	copy(cloned, attrs)
	return cloned
}

// String renders the list as ` name="value"` pairs. Double quotes in values
// are escaped.
func (attrs Attributes) String() string {
	var builder strings.Builder
	for _, attr := range attrs {
		builder.WriteByte(' ')
		builder.WriteString(attr.Name)
		builder.WriteString(`="`)
		builder.WriteString(strings.ReplaceAll(attr.Value, `"`, "&quot;"))
		builder.WriteByte('"')
	}
	return builder.String()
}

// ParseAttribute parses "name=value".
func ParseAttribute(pair string) (Attribute, error) {
	name, value, found := strings.Cut(pair, "=")
	name = strings.TrimSpace(name)
	if !found || name == "" {
		return Attribute{}, fmt.Errorf("attribute %q: expected name=value", pair)
	}
	if strings.ContainsAny(name, " \t\n\"'<>=/") {
		return Attribute{}, fmt.Errorf("attribute %q: invalid name", pair)
	}
	return Attribute{Name: name, Value: value}, nil
}

// MarshalJSON encodes the list as an object with keys in list order.
func (attrs Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for index, attr := range attrs {
		if index > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(attr.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(attr.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, keeping key order.
func (attrs *Attributes) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if token == nil {
		*attrs = nil
		return nil
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("attributes must be an object")
	}

	var decoded Attributes
	for decoder.More() {
		keyToken, err := decoder.Token()
		if err != nil {
			return err
		}
		var value string
		if err := decoder.Decode(&value); err != nil {
			return fmt.Errorf("attribute %v: %w", keyToken, err)
		}
		decoded.Set(keyToken.(string), value)
	}
	if _, err := decoder.Token(); err != nil {
		return err
	}

	*attrs = decoded
	return nil
}

// UnmarshalYAML decodes a mapping, keeping key order.
func (attrs *Attributes) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: attributes must be a mapping", node.Line)
	}

	decoded := make(Attributes, 0, len(node.Content)/2)
	for index := 0; index+1 < len(node.Content); index += 2 {
		keyNode, valueNode := node.Content[index], node.Content[index+1]
		if valueNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: attribute %q must be a scalar", valueNode.Line, keyNode.Value)
		}
		decoded.Set(keyNode.Value, valueNode.Value)
	}

	*attrs = decoded
	return nil
}
