package tools

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// ParamType is the JSON type of a tool parameter.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
)

// Param declares one named tool parameter.
type Param struct {
	Name        string
	Type        ParamType
	Items       ParamType // element type, arrays only
	Description string
	Required    bool
}

// Descriptor is the typed declaration of a callable operation.
// Resolve must succeed before Validate is used.
type Descriptor struct {
	Name        string
	Description string
	Params      []Param

	resolved *jsonschema.Resolved
}

// Required returns the names of required parameters in declaration order.
func (d *Descriptor) Required() []string {
	var req []string
	for _, p := range d.Params {
		if p.Required {
			req = append(req, p.Name)
		}
	}
	return req
}

// Schema renders the parameters as a JSON Schema object.
func (d *Descriptor) Schema() *jsonschema.Schema {
	props := make(map[string]*jsonschema.Schema, len(d.Params))
	for _, p := range d.Params {
		s := &jsonschema.Schema{Type: string(p.Type), Description: p.Description}
		if p.Type == TypeArray {
			s.Items = &jsonschema.Schema{Type: string(p.Items)}
		}
		props[p.Name] = s
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   d.Required(),
	}
}

// Resolve checks the declaration and compiles its schema.
func (d *Descriptor) Resolve() error {
	if d.Name == "" {
		return fmt.Errorf("descriptor without name")
	}
	seen := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		if p.Name == "" {
			return fmt.Errorf("%s: parameter without name", d.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("%s: duplicate parameter %q", d.Name, p.Name)
		}
		seen[p.Name] = true
		switch p.Type {
		case TypeString, TypeInteger, TypeNumber, TypeBoolean:
		case TypeArray:
			if p.Items == "" || p.Items == TypeArray {
				return fmt.Errorf("%s.%s: array parameter needs a scalar item type", d.Name, p.Name)
			}
		default:
			return fmt.Errorf("%s.%s: unsupported type %q", d.Name, p.Name, p.Type)
		}
	}

	rs, err := d.Schema().Resolve(nil)
	if err != nil {
		return fmt.Errorf("%s: %w", d.Name, err)
	}
	d.resolved = rs
	return nil
}

// Validate checks args against the compiled schema.
func (d *Descriptor) Validate(args map[string]any) error {
	if d.resolved == nil {
		return fmt.Errorf("%s: descriptor not resolved", d.Name)
	}
	if args == nil {
		args = map[string]any{}
	}
	return d.resolved.Validate(args)
}
