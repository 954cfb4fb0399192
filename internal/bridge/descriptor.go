package bridge

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/mark3labs/mcp-go/mcp"

	"stockadvisor/pkg/errors"
)

// Scalar parameter types a Callable coerces arguments to.
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeBool   = "bool"
)

// Param is one named tool argument.
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// Descriptor is a discovered remote tool. Immutable after Start.
type Descriptor struct {
	Name        string
	Description string
	Params      []Param
}

// Param returns the declared parameter called name.
func (d Descriptor) Param(name string) (Param, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// describe converts an MCP tool listing into a descriptor. Parameters are
// ordered required first, then by name, so the order is stable.
func describe(t mcp.Tool) Descriptor {
	required := make(map[string]bool, len(t.InputSchema.Required))
	for _, name := range t.InputSchema.Required {
		required[name] = true
	}

	params := make([]Param, 0, len(t.InputSchema.Properties))
	for name, raw := range t.InputSchema.Properties {
		p := Param{Name: name, Type: TypeString, Required: required[name]}
		if prop, ok := raw.(map[string]any); ok {
			if typ, ok := prop["type"].(string); ok {
				p.Type = scalarType(typ)
			}
			if desc, ok := prop["description"].(string); ok {
				p.Description = desc
			}
		}
		params = append(params, p)
	}
	sort.Slice(params, func(i, j int) bool {
		if params[i].Required != params[j].Required {
			return params[i].Required
		}
		return params[i].Name < params[j].Name
	})

	return Descriptor{Name: t.Name, Description: t.Description, Params: params}
}

// scalarType maps JSON schema types; anything unknown is treated as a string.
func scalarType(schemaType string) string {
	switch schemaType {
	case "integer":
		return TypeInt
	case "number":
		return TypeFloat
	case "boolean":
		return TypeBool
	default:
		return TypeString
	}
}

func schemaType(scalar string) string {
	switch scalar {
	case TypeInt:
		return "integer"
	case TypeFloat:
		return "number"
	case TypeBool:
		return "boolean"
	default:
		return "string"
	}
}

// Schema renders the descriptor as the JSON schema handed to the model.
func (d Descriptor) Schema() *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(d.Params)),
		Required:   []string{},
	}
	for _, p := range d.Params {
		s.Properties[p.Name] = &jsonschema.Schema{Type: schemaType(p.Type), Description: p.Description}
		if p.Required {
			s.Required = append(s.Required, p.Name)
		}
	}
	return s
}

// bind validates args against the descriptor and coerces each value to its
// declared type. Missing optional params are left out.
func (d Descriptor) bind(args map[string]any) (map[string]any, error) {
	for key := range args {
		if _, ok := d.Param(key); !ok {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "unexpected argument %q", key)
		}
	}

	bound := make(map[string]any, len(args))
	for _, p := range d.Params {
		v, ok := args[p.Name]
		if !ok || v == nil {
			if p.Required {
				return nil, errors.Wrapf(errors.ErrInvalidInput, "missing required argument %q", p.Name)
			}
			continue
		}
		coerced, err := coerce(p.Type, v)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "argument %q: %v", p.Name, err)
		}
		bound[p.Name] = coerced
	}
	return bound, nil
}

// int64Bound is 2^63, the first float64 beyond the int64 range.
const int64Bound = float64(1 << 63)

func coerce(typ string, v any) (any, error) {
	switch typ {
	case TypeInt:
		switch x := v.(type) {
		case int:
			return x, nil
		case int64:
			return int(x), nil
		case float64:
			if x != math.Trunc(x) {
				return nil, fmt.Errorf("%v is not an integer", x)
			}
			if x < -int64Bound || x >= int64Bound {
				return nil, fmt.Errorf("%v is out of integer range", x)
			}
			return int(x), nil
		case string:
			return strconv.Atoi(strings.TrimSpace(x))
		}
	case TypeFloat:
		switch x := v.(type) {
		case float64:
			return x, nil
		case int:
			return float64(x), nil
		case int64:
			return float64(x), nil
		case string:
			return strconv.ParseFloat(strings.TrimSpace(x), 64)
		}
	case TypeBool:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			return strconv.ParseBool(strings.TrimSpace(x))
		}
	default:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil
	}
	return nil, fmt.Errorf("cannot convert %T to %s", v, typ)
}
