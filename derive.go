package metify

import (
	"fmt"
	"reflect"
)

// Derive starts a builder whose fields are read from struct type T.
//
// Each field resolves, in order: an override FieldSpec with the same name,
// else the `metify:"..."` tag (name=, alias=, desc=, required, noinit,
// norepr), else a synthesized field whose default is the template's non-zero
// value. Zero-valued scalars are required; nil-able kinds default to nil.
// Nested structs become nested models derived the same way from the
// template's nested value; a struct type reached more than once keeps its
// first derivation. Overrides naming no struct field are appended.
func Derive[T any](name string, template T, overrides ...FieldSpec) *objectBuilder {
	b := Object(name)
	rv := reflect.ValueOf(&template).Elem()
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			rv = reflect.New(rv.Type().Elem()).Elem()
		} else {
			rv = rv.Elem()
		}
	}
	if rv.Kind() != reflect.Struct {
		b.errs = append(b.errs, &ConfigurationError{Model: name, Reason: fmt.Sprintf("Derive requires a struct, got %s", rv.Type())})
		return b
	}
	dc := &deriveCache{schemas: map[reflect.Type]*Schema{}, building: map[reflect.Type]bool{}}
	root := rv.Type()
	dc.building[root] = true
	b.onBuild = append(b.onBuild, func(s *Schema) { dc.schemas[root] = s })
	dc.fields(b, rv, overrides)
	if dc.err != nil {
		b.errs = append(b.errs, dc.err)
	}
	return b
}

type deriveCache struct {
	schemas  map[reflect.Type]*Schema
	building map[reflect.Type]bool
	err      error
}

// opaque types are kept as scalars: they carry their own wire format.
func opaque(rt reflect.Type) bool {
	if defaultRegistry.Has(rt) {
		return true
	}
	return rt.Implements(textMarshalerType) || rt.Implements(jsonMarshalerType) ||
		reflect.PointerTo(rt).Implements(textMarshalerType)
}

// tagFor maps a Go type to a TypeTag. tmpl, when valid, is the template's
// value of that type and seeds nested model defaults.
func (dc *deriveCache) tagFor(rt reflect.Type, tmpl reflect.Value) TypeTag {
	if opaque(rt) {
		return TypeFor(rt)
	}
	switch rt.Kind() {
	case reflect.Pointer:
		if rt.Elem().Kind() == reflect.Struct && !opaque(rt.Elem()) {
			var elem reflect.Value
			if tmpl.IsValid() && !tmpl.IsNil() {
				elem = tmpl.Elem()
			}
			return dc.tagFor(rt.Elem(), elem)
		}
	case reflect.Struct:
		dc.ensure(rt, tmpl)
		return ModelRef(func() *Schema { return dc.schemas[rt] })
	case reflect.Slice:
		if rt.Elem().Kind() != reflect.Uint8 {
			return ListOf(dc.tagFor(rt.Elem(), reflect.Value{}))
		}
	case reflect.Map:
		if rt.Key().Kind() == reflect.String {
			return MapOf(dc.tagFor(rt.Elem(), reflect.Value{}))
		}
	case reflect.Interface:
		return Any()
	}
	return TypeFor(rt)
}

func (dc *deriveCache) ensure(rt reflect.Type, tmpl reflect.Value) {
	if _, ok := dc.schemas[rt]; ok || dc.building[rt] {
		return
	}
	dc.building[rt] = true
	if !tmpl.IsValid() {
		tmpl = reflect.New(rt).Elem()
	}
	b := Object(rt.Name())
	dc.fields(b, tmpl, nil)
	s, err := b.Build()
	if err != nil {
		if dc.err == nil {
			dc.err = err
		}
		return
	}
	dc.schemas[rt] = s
}

func (dc *deriveCache) fields(b *objectBuilder, rv reflect.Value, overrides []FieldSpec) {
	rt := rv.Type()
	byName := make(map[string]FieldSpec, len(overrides))
	for _, o := range overrides {
		byName[o.name] = o
	}
	used := map[string]bool{}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := ResolveStructKey(sf)
		if key == "-" || key == "" {
			continue
		}
		if o, ok := byName[key]; ok {
			b.Attach(o)
			used[key] = true
			continue
		}
		st := parseStructTag(sf)
		fv := rv.Field(i)
		step := b.Field(key, dc.tagFor(sf.Type, fv))
		if st.alias != "" {
			step.Alias(st.alias)
		}
		if st.desc != "" {
			step.Desc(st.desc)
		}
		if st.noInit {
			step.NoInit()
		}
		if st.noRepr {
			step.NoRepr()
		}
		if st.required {
			continue
		}
		switch {
		case !fv.IsZero() && literalKind(sf.Type):
			step.Default(fv.Interface())
		case nillable(sf.Type.Kind()):
			step.Default(nil)
		}
	}
	for _, o := range overrides {
		if !used[o.name] {
			b.Attach(o)
		}
	}
}

func literalKind(rt reflect.Type) bool {
	switch rt.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return opaque(rt)
}

func nillable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return true
	}
	return false
}
