package metify

import (
	"errors"
	"fmt"
	"reflect"
)

// DumpOpt controls Dump. Unset switches fall back to the model config.
type DumpOpt struct {
	Exclude     []string // top-level field names to skip; not applied to nested models
	ExcludeNone Switch
	ByAlias     Switch
	Strict      Switch
	Registry    *Registry // nil means DefaultRegistry()
}

type dumper struct {
	reg         *Registry
	excludeNone bool
	byAlias     bool
	strict      bool
	maxDepth    int
}

// Dump converts the instance into an ordered plain value tree.
//
// Per field: the field serializer (terminal), else nested models, sequences
// and mappings are converted recursively, else a type serializer from the
// model's JSONEncoders or the registry is applied, else the value passes
// through. Under non-strict mode a failing serializer yields
// "<serialization error: ...>" for that key only.
func (m *Instance) Dump(opts ...DumpOpt) (*Document, error) {
	var opt DumpOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	cfg := m.schema.cfg
	d := &dumper{
		reg:         pickRegistry(opt.Registry),
		excludeNone: opt.ExcludeNone.Enabled(cfg.excludeNone()),
		byAlias:     opt.ByAlias.Enabled(cfg.byAlias()),
		strict:      opt.Strict.Enabled(cfg.strict()),
		maxDepth:    cfg.maxDepth(),
	}
	if d.byAlias && !m.schema.HasAliasSource() {
		return nil, &ConfigurationError{Model: m.schema.name, Reason: "dump by alias requested but no alias or alias generator is configured"}
	}
	var exclude map[string]struct{}
	if len(opt.Exclude) > 0 {
		exclude = make(map[string]struct{}, len(opt.Exclude))
		for _, n := range opt.Exclude {
			exclude[n] = struct{}{}
		}
	}
	return d.instance(m, exclude, 0)
}

func (d *dumper) instance(m *Instance, exclude map[string]struct{}, depth int) (*Document, error) {
	s := m.schema
	if depth > d.maxDepth {
		return nil, &RecursionError{Model: s.name, Depth: depth}
	}
	doc := NewDocument()
	for i, f := range s.fields {
		if _, skip := exclude[f.name]; skip {
			continue
		}
		v, ok := m.values[i], m.set[i]
		if !ok {
			if v, ok = f.Produce(); !ok {
				continue
			}
		}
		if v == nil && d.excludeNone {
			continue
		}
		out, err := d.field(s, f, v, depth)
		if err != nil {
			var se *SerializationError
			if d.strict || !errors.As(err, &se) {
				return nil, err
			}
			out = fmt.Sprintf("<serialization error: %v>", se.Cause)
		}
		doc.Set(s.keyFor(f, d.byAlias), out)
	}
	return doc, nil
}

func (d *dumper) field(s *Schema, f FieldSpec, v any, depth int) (any, error) {
	if f.serializer != nil {
		out, err := f.serializer(v)
		if err != nil {
			return nil, &SerializationError{Model: s.name, Field: f.name, Cause: err}
		}
		return out, nil
	}
	out, err := d.value(s, v, depth)
	if err != nil {
		var se *SerializationError
		if errors.As(err, &se) && se.Field == "" {
			se.Model, se.Field = s.name, f.name
		}
		return nil, err
	}
	return out, nil
}

func (d *dumper) value(s *Schema, v any, depth int) (any, error) {
	if depth > d.maxDepth {
		return nil, &RecursionError{Model: s.name, Depth: depth}
	}
	switch t := v.(type) {
	case nil:
		return nil, nil
	case *Instance:
		if t == nil {
			return nil, nil
		}
		return d.nested(t, depth+1)
	case *Document:
		out := NewDocument()
		for _, k := range t.keys {
			cv, err := d.value(s, t.vals[k], depth+1)
			if err != nil {
				return nil, err
			}
			out.Set(k, cv)
		}
		return out, nil
	case []byte:
		return d.typed(s, v)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			cv, err := d.value(s, e, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			cv, err := d.value(s, e, depth+1)
			if err != nil {
				return nil, err
			}
			out[k] = cv
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if !d.hasTypeSerializer(s, rv.Type()) {
			out := make([]any, rv.Len())
			for i := range out {
				cv, err := d.value(s, rv.Index(i).Interface(), depth+1)
				if err != nil {
					return nil, err
				}
				out[i] = cv
			}
			return out, nil
		}
	case reflect.Map:
		if !d.hasTypeSerializer(s, rv.Type()) {
			out := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				cv, err := d.value(s, iter.Value().Interface(), depth+1)
				if err != nil {
					return nil, err
				}
				out[fmt.Sprint(iter.Key().Interface())] = cv
			}
			return out, nil
		}
	}
	return d.typed(s, v)
}

// nested dumps a child model. Aliasing follows the parent's request; a child
// without any alias source keeps its field names.
func (d *dumper) nested(m *Instance, depth int) (*Document, error) {
	child := *d
	if child.byAlias && !m.schema.HasAliasSource() {
		child.byAlias = false
	}
	return child.instance(m, nil, depth)
}

func (d *dumper) hasTypeSerializer(s *Schema, t reflect.Type) bool {
	if _, ok := s.cfg.JSONEncoders[t]; ok {
		return true
	}
	_, ok := d.reg.Serializer(t)
	return ok
}

func (d *dumper) typed(s *Schema, v any) (any, error) {
	t := reflect.TypeOf(v)
	fn, ok := s.cfg.JSONEncoders[t]
	if !ok {
		fn, ok = d.reg.Serializer(t)
	}
	if !ok {
		return v, nil
	}
	out, err := fn(v)
	if err != nil {
		return nil, &SerializationError{Model: s.name, Cause: err}
	}
	return out, nil
}

// Item is one key/value pair of a dumped instance.
type Item struct {
	Key   string
	Value any
}

// Items returns the dumped entries in order.
func (m *Instance) Items(opts ...DumpOpt) ([]Item, error) {
	doc, err := m.Dump(opts...)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, doc.Len())
	doc.Range(func(k string, v any) bool {
		items = append(items, Item{Key: k, Value: v})
		return true
	})
	return items, nil
}
