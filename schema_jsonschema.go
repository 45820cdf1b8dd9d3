package metify

import (
	"reflect"
	"time"

	js "github.com/reoring/metify/jsonschema"
)

// JSONSchema exports the model as a JSON Schema object. With byAlias the
// property names are the alias keys Dump would produce. Strict models forbid
// additional properties.
func (s *Schema) JSONSchema(byAlias bool) (*js.Schema, error) {
	if byAlias && !s.HasAliasSource() {
		return nil, &ConfigurationError{Model: s.name, Reason: "JSON Schema by alias requested but no alias or alias generator is configured"}
	}
	return s.jsonSchema(byAlias, map[*Schema]bool{}), nil
}

func (s *Schema) jsonSchema(byAlias bool, stack map[*Schema]bool) *js.Schema {
	out := js.Object(s.name)
	if stack[s] {
		// recursive reference: emit an unconstrained object
		out.Properties = nil
		return out
	}
	stack[s] = true
	defer delete(stack, s)
	for _, f := range s.fields {
		key := s.keyFor(f, byAlias)
		p := tagSchema(f.tag, byAlias, stack)
		p.Description = f.desc
		if f.alias != "" && !byAlias {
			p.Alias = f.alias
		}
		if def, ok := f.DefaultValue(); ok && def != nil {
			p.Default = def
		}
		out.Properties[key] = p
		if f.Required() {
			out.Required = append(out.Required, key)
		}
	}
	if s.cfg.strict() {
		out.AdditionalProperties = false
	}
	return out
}

var timeType = reflect.TypeFor[time.Time]()

func tagSchema(t TypeTag, byAlias bool, stack map[*Schema]bool) *js.Schema {
	switch t.kind {
	case KindModel:
		child := t.Model()
		if child == nil {
			return &js.Schema{Type: "object"}
		}
		childAlias := byAlias && child.HasAliasSource()
		return child.jsonSchema(childAlias, stack)
	case KindList:
		return &js.Schema{Type: "array", Items: tagSchema(t.Elem(), byAlias, stack)}
	case KindMap:
		return &js.Schema{Type: "object", AdditionalProperties: tagSchema(t.Elem(), byAlias, stack)}
	case KindScalar:
		if t.rt == timeType {
			return &js.Schema{Type: "string", Format: "date-time"}
		}
		switch t.rt.Kind() {
		case reflect.String:
			return &js.Schema{Type: "string"}
		case reflect.Bool:
			return &js.Schema{Type: "boolean"}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return &js.Schema{Type: "integer"}
		case reflect.Float32, reflect.Float64:
			return &js.Schema{Type: "number"}
		case reflect.Slice:
			if t.rt.Elem().Kind() == reflect.Uint8 {
				return &js.Schema{Type: "string", Format: "byte"}
			}
			return &js.Schema{Type: "array"}
		}
	}
	return &js.Schema{}
}
