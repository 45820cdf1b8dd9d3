package metify

import (
	"errors"
	"maps"
)

// Validator checks and optionally normalizes a field value.
type Validator func(v any) (any, error)

// Serializer converts a value into its plain representation. Its result is
// terminal: Dump does not recurse into it.
type Serializer func(v any) (any, error)

// Deserializer rebuilds a typed value from its plain representation.
type Deserializer func(v any) (any, error)

// FieldSpec is the immutable metadata of one field.
type FieldSpec struct {
	name       string
	tag        TypeTag
	def        any
	hasDef     bool
	factory    func() any
	alias      string
	desc       string
	validator  Validator
	serializer Serializer
	noInit     bool
	noRepr     bool
	extras     map[string]any
}

func (f FieldSpec) Name() string  { return f.name }
func (f FieldSpec) Type() TypeTag { return f.tag }
func (f FieldSpec) Alias() string { return f.alias }
func (f FieldSpec) Desc() string  { return f.desc }

// Init reports whether the constructor accepts this field as a keyword.
func (f FieldSpec) Init() bool { return !f.noInit }

// Repr reports whether the field appears in String().
func (f FieldSpec) Repr() bool { return !f.noRepr }

// HasDefault reports whether a default value or factory is set.
func (f FieldSpec) HasDefault() bool { return f.hasDef || f.factory != nil }

// Required reports whether construction fails without this field.
func (f FieldSpec) Required() bool { return !f.HasDefault() && f.Init() }

// DefaultValue returns the literal default, if any. Factories are not invoked.
func (f FieldSpec) DefaultValue() (any, bool) { return f.def, f.hasDef }

// Produce returns a fresh default: factories are invoked on each call and
// literal mapping/sequence defaults are copied.
func (f FieldSpec) Produce() (any, bool) {
	if f.factory != nil {
		return f.factory(), true
	}
	if f.hasDef {
		return cloneTree(f.def), true
	}
	return nil, false
}

func (f FieldSpec) Validator() Validator   { return f.validator }
func (f FieldSpec) Serializer() Serializer { return f.serializer }

// Extras returns a copy of the opaque extras map.
func (f FieldSpec) Extras() map[string]any { return maps.Clone(f.extras) }

// FieldDraft assembles a FieldSpec outside of a schema builder, for use with
// Attach or as a Derive override.
type FieldDraft struct {
	spec FieldSpec
}

// NewField starts a standalone field declaration.
func NewField(name string, tag TypeTag) *FieldDraft {
	return &FieldDraft{spec: FieldSpec{name: name, tag: tag}}
}

func (d *FieldDraft) Alias(alias string) *FieldDraft { d.spec.alias = alias; return d }
func (d *FieldDraft) Desc(desc string) *FieldDraft   { d.spec.desc = desc; return d }

// Default sets a literal default. nil is a valid default.
func (d *FieldDraft) Default(v any) *FieldDraft {
	d.spec.def, d.spec.hasDef = v, true
	return d
}

// DefaultFactory sets a function producing a fresh default per construction.
func (d *FieldDraft) DefaultFactory(fn func() any) *FieldDraft { d.spec.factory = fn; return d }

func (d *FieldDraft) Validator(fn Validator) *FieldDraft   { d.spec.validator = fn; return d }
func (d *FieldDraft) Serializer(fn Serializer) *FieldDraft { d.spec.serializer = fn; return d }

// NoInit excludes the field from constructor keywords.
func (d *FieldDraft) NoInit() *FieldDraft { d.spec.noInit = true; return d }

// NoRepr hides the field from String().
func (d *FieldDraft) NoRepr() *FieldDraft { d.spec.noRepr = true; return d }

// Extra records an opaque key/value on the field.
func (d *FieldDraft) Extra(key string, v any) *FieldDraft {
	if d.spec.extras == nil {
		d.spec.extras = map[string]any{}
	}
	d.spec.extras[key] = v
	return d
}

// Spec validates and returns the field.
func (d *FieldDraft) Spec() (FieldSpec, error) {
	if err := d.spec.check(); err != nil {
		return FieldSpec{}, err
	}
	f := d.spec
	f.extras = maps.Clone(d.spec.extras)
	return f, nil
}

// MustSpec is like Spec but panics on error.
func (d *FieldDraft) MustSpec() FieldSpec {
	f, err := d.Spec()
	if err != nil {
		panic(err)
	}
	return f
}

func (f FieldSpec) check() error {
	if f.name == "" {
		return errors.New("field name must not be empty")
	}
	if f.hasDef && f.factory != nil {
		return errors.New("field " + f.name + ": default and default factory are mutually exclusive")
	}
	return nil
}

// cloneTree copies plain mapping and sequence values so a literal default is
// never shared between instances.
func cloneTree(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return t
		}
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = cloneTree(vv)
		}
		return out
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = cloneTree(vv)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case map[string]string:
		return maps.Clone(t)
	}
	return v
}
