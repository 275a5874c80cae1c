package entityp

import (
	"fmt"
	"os"
	"regexp"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Definition is the mapping metadata of one entity: its name, which is also its table
// name, and its ordered attributes. Attribute order is column order for every statement.
type Definition struct {
	Name       string
	Attributes []Attribute
}

// Attribute is one persisted field of an entity. Type is passed through to the store
// verbatim as the column type.
type Attribute struct {
	Name   string
	Type   string
	Unique bool
}

// Define builds a definition from its attributes, in order.
func Define(name string, attrs ...Attribute) Definition {
	return Definition{Name: name, Attributes: attrs}
}

// Attr declares an attribute.
func Attr(name, typ string) Attribute {
	return Attribute{Name: name, Type: typ}
}

// UniqueAttr declares an attribute whose column carries a UNIQUE constraint.
func UniqueAttr(name, typ string) Attribute {
	return Attribute{Name: name, Type: typ, Unique: true}
}

// Column is the storage name of the attribute.
func (a Attribute) Column() string {
	return ToStorage(a.Name)
}

// Attribute looks up a declared attribute by field name.
func (d Definition) Attribute(name string) (Attribute, bool) {
	for _, a := range d.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Columns returns the storage names of all attributes, in order.
func (d Definition) Columns() []string {
	out := make([]string, len(d.Attributes))
	for i, a := range d.Attributes {
		out[i] = a.Column()
	}
	return out
}

////////////////////////////////////////////////////////////////////////////////
// Validation

// IDField is the field and column name of every entity's identity.
const IDField = "id"

var (
	entityNameRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	attrNameRE   = regexp.MustCompile(`^[a-z][A-Za-z0-9]*$`)
	typeTagRE    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9 _(),]*$`)
)

// Validate checks every identifier that ends up in generated SQL, and reports all problems
// at once. Names and type tags are restricted to a small alphabet so nothing from a
// definition can break out of a statement.
func (d Definition) Validate() error {
	var err error
	if !entityNameRE.MatchString(d.Name) {
		err = multierr.Append(err, invalid("name", "entity name %q must match %s", d.Name, entityNameRE))
	}
	columns := make(map[string]string, len(d.Attributes))
	for i, a := range d.Attributes {
		field := fmt.Sprintf("attributes[%d]", i)
		if !attrNameRE.MatchString(a.Name) {
			err = multierr.Append(err, invalid(field, "attribute name %q must match %s", a.Name, attrNameRE))
			continue
		}
		if a.Name == IDField {
			err = multierr.Append(err, invalid(field, "attribute name %q is reserved for the identity", a.Name))
			continue
		}
		if !typeTagRE.MatchString(a.Type) {
			err = multierr.Append(err, invalid(field, "type %q of %s must match %s", a.Type, a.Name, typeTagRE))
		}
		if other, ok := columns[a.Column()]; ok {
			err = multierr.Append(err, invalid(field, "attribute %s maps to column %s, already used by %s", a.Name, a.Column(), other))
			continue
		}
		columns[a.Column()] = a.Name
	}
	return err
}

////////////////////////////////////////////////////////////////////////////////
// YAML

type yamlDefinition struct {
	Name       string    `yaml:"name"`
	Attributes yaml.Node `yaml:"attributes"`
}

type yamlAttribute struct {
	Type   string `yaml:"type"`
	Unique bool   `yaml:"unique"`
}

// ParseDefinition reads a definition from YAML, keeping attribute order:
//
//	name: widget
//	attributes:
//	  label: {type: text}
//	  email: {type: text, unique: true}
//
// An attribute may also be given as just its type (`label: text`). The result is validated.
func ParseDefinition(data []byte) (Definition, error) {
	var doc yamlDefinition
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Definition{}, fmt.Errorf("failed to parse definition: %w", err)
	}
	def := Definition{Name: doc.Name}

	node := doc.Attributes
	switch node.Kind {
	case 0:
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			var attr yamlAttribute
			if value.Kind == yaml.ScalarNode {
				attr.Type = value.Value
			} else if err := value.Decode(&attr); err != nil {
				return Definition{}, fmt.Errorf("failed to parse attribute %s: %w", key.Value, err)
			}
			def.Attributes = append(def.Attributes, Attribute{Name: key.Value, Type: attr.Type, Unique: attr.Unique})
		}
	default:
		return Definition{}, fmt.Errorf("failed to parse definition: attributes must be a mapping (line %d)", node.Line)
	}

	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// LoadDefinition reads and parses a YAML definition file.
func LoadDefinition(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("failed to read definition: %w", err)
	}
	return ParseDefinition(data)
}
