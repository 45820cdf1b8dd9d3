package metify

import (
	"fmt"
	"reflect"
	"sort"
)

// LoadOpt controls Load. Unset switches fall back to the model config:
// ByAlias to SerializeByAlias, Strict to Strict.
type LoadOpt struct {
	ByAlias  Switch
	Strict   Switch
	Registry *Registry // nil means DefaultRegistry()
}

type loader struct {
	reg      *Registry
	byAlias  bool
	strict   bool
	maxDepth int
}

// Load builds an instance from a plain mapping (map[string]any or *Document).
//
// Explicit aliases are always accepted as input keys; with ByAlias the
// alias generator's keys are accepted too. Nested models, lists and maps of
// models are loaded recursively and registered deserializers are applied by
// declared type. Unknown keys fail under strict mode and are dropped
// otherwise. Validator failures are always collected and reported. Every
// failure is returned as a *LoadError.
func (s *Schema) Load(data any, opts ...LoadOpt) (*Instance, error) {
	var opt LoadOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	l := &loader{
		reg:      pickRegistry(opt.Registry),
		byAlias:  opt.ByAlias.Enabled(s.cfg.byAlias()),
		strict:   opt.Strict.Enabled(s.cfg.strict()),
		maxDepth: s.cfg.maxDepth(),
	}
	if l.byAlias && !s.HasAliasSource() {
		return nil, &LoadError{Model: s.name, Path: "/", Errs: []error{
			&ConfigurationError{Model: s.name, Reason: "load by alias requested but no alias or alias generator is configured"},
		}}
	}
	in, ok := asMapping(data)
	if !ok {
		return nil, &LoadError{Model: s.name, Path: "/", Errs: []error{
			&ConfigurationError{Model: s.name, Reason: fmt.Sprintf("expected a mapping, got %T", data)},
		}}
	}
	return l.load(s, in, "/", 0)
}

// MustLoad is like Load but panics on error.
func (s *Schema) MustLoad(data any, opts ...LoadOpt) *Instance {
	m, err := s.Load(data, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

func asMapping(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case *Document:
		if t == nil {
			return nil, false
		}
		out := make(map[string]any, t.Len())
		for _, k := range t.keys {
			out[k] = t.vals[k]
		}
		return out, true
	}
	return nil, false
}

func (l *loader) load(s *Schema, in map[string]any, path string, depth int) (*Instance, error) {
	if depth > l.maxDepth {
		return nil, &LoadError{Model: s.name, Path: path, Errs: []error{&RecursionError{Model: s.name, Depth: depth}}}
	}
	fail := func(errs ...error) error { return &LoadError{Model: s.name, Path: path, Errs: errs} }

	// rename aliases, working on a copy
	kv := make(map[string]any, len(in))
	for k, v := range in {
		kv[k] = v
	}
	rename := func(from, to string) {
		if from == "" || from == to {
			return
		}
		if v, ok := kv[from]; ok {
			if _, taken := kv[to]; !taken {
				kv[to] = v
				delete(kv, from)
			}
		}
	}
	for _, f := range s.fields {
		if a := f.alias; a != "" && s.aliases[a] == f.name {
			rename(a, f.name)
		}
	}
	if l.byAlias && s.cfg.AliasGenerator != nil {
		for _, f := range s.fields {
			if f.alias == "" {
				rename(s.cfg.AliasGenerator(f.name), f.name)
			}
		}
	}

	// nested models and typed values
	var errs []error
	for _, f := range s.fields {
		v, ok := kv[f.name]
		if !ok || v == nil {
			continue
		}
		nv, err := l.value(s, f.name, f.tag, v, pointerJoin(path, f.name), depth)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		kv[f.name] = nv
	}
	if len(errs) > 0 {
		return nil, fail(errs...)
	}

	// unknown keys
	var unknown []string
	for k := range kv {
		if _, ok := s.index[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		if l.strict {
			sort.Strings(unknown)
			return nil, fail(&UnknownFieldError{Model: s.name, Keys: unknown})
		}
		for _, k := range unknown {
			delete(kv, k)
		}
	}

	m, err := s.construct(kv)
	if err != nil {
		if es, ok := err.(Errors); ok {
			return nil, fail(es...)
		}
		return nil, fail(err)
	}
	return m, nil
}

// value converts one input value according to its declared tag.
func (l *loader) value(s *Schema, field string, tag TypeTag, v any, path string, depth int) (any, error) {
	if depth > l.maxDepth {
		return nil, &LoadError{Model: s.name, Path: path, Errs: []error{&RecursionError{Model: s.name, Depth: depth}}}
	}
	switch tag.kind {
	case KindModel:
		child := tag.Model()
		if child == nil {
			return v, nil
		}
		in, ok := asMapping(v)
		if !ok {
			return v, nil
		}
		sub := *l
		if sub.byAlias && !child.HasAliasSource() {
			sub.byAlias = false
		}
		return sub.load(child, in, path, depth+1)

	case KindList:
		items, ok := v.([]any)
		if !ok {
			return v, nil
		}
		out := make([]any, len(items))
		var errs []error
		for i, e := range items {
			if e == nil {
				continue
			}
			cv, err := l.value(s, field, tag.Elem(), e, pointerIndex(path, i), depth+1)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out[i] = cv
		}
		if err := joinErrors(errs); err != nil {
			return nil, err
		}
		return out, nil

	case KindMap:
		entries, ok := asMapping(v)
		if !ok {
			return v, nil
		}
		keys := make([]string, 0, len(entries))
		for k := range entries {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(entries))
		var errs []error
		for _, k := range keys {
			e := entries[k]
			if e == nil {
				out[k] = nil
				continue
			}
			cv, err := l.value(s, field, tag.Elem(), e, pointerJoin(path, k), depth+1)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out[k] = cv
		}
		if err := joinErrors(errs); err != nil {
			return nil, err
		}
		return out, nil

	case KindScalar:
		if reflect.TypeOf(v) == tag.rt {
			return v, nil
		}
		fn, ok := l.reg.Deserializer(tag.rt)
		if !ok {
			return v, nil
		}
		out, err := fn(v)
		if err != nil {
			return nil, &FieldValidationError{Model: s.name, Field: field, Cause: fmt.Errorf("at %s: %w", path, err)}
		}
		return out, nil
	}
	return v, nil
}
