package metify

import (
	"fmt"
	"maps"
	"slices"
)

// Schema is the immutable description of a model: ordered fields, alias map,
// required set and the merged Config. Build it with Object(...).Build().
type Schema struct {
	name     string
	parent   *Schema
	fields   []FieldSpec
	index    map[string]int
	aliases  map[string]string // explicit alias -> field name
	required []string
	cfg      Config
}

func (s *Schema) Name() string { return s.name }

// Parent returns the schema this one extends, or nil.
func (s *Schema) Parent() *Schema { return s.parent }

// Fields returns the fields in declaration order.
func (s *Schema) Fields() []FieldSpec { return slices.Clone(s.fields) }

// Field looks up a field by name.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	i, ok := s.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.fields[i], true
}

// Aliases returns a copy of the explicit alias map (alias -> field name).
func (s *Schema) Aliases() map[string]string { return maps.Clone(s.aliases) }

// Required returns the names of required fields in declaration order.
func (s *Schema) Required() []string { return slices.Clone(s.required) }

// Config returns the merged configuration.
func (s *Schema) Config() Config { return s.cfg }

// HasAliasSource reports whether any field has an explicit alias or the
// config carries an alias generator.
func (s *Schema) HasAliasSource() bool {
	return len(s.aliases) > 0 || s.cfg.AliasGenerator != nil
}

// keyFor returns the external key of a field when aliasing is requested.
func (s *Schema) keyFor(f FieldSpec, byAlias bool) string {
	if !byAlias {
		return f.name
	}
	if f.alias != "" {
		return f.alias
	}
	if s.cfg.AliasGenerator != nil {
		return s.cfg.AliasGenerator(f.name)
	}
	return f.name
}

type objectBuilder struct {
	name   string
	parent *Schema
	drafts []*FieldDraft
	cfg    Config
	cfgSet bool
	errs   []error
	// onBuild hooks see the finished schema (self-referencing derived models)
	onBuild []func(*Schema)
}

type fieldStep struct {
	*objectBuilder
	d *FieldDraft
}

// Object creates a new model builder.
func Object(name string) *objectBuilder {
	return &objectBuilder{name: name}
}

// Extends makes the model inherit parent's fields and config.
func (b *objectBuilder) Extends(parent *Schema) *objectBuilder {
	b.parent = parent
	return b
}

// Configure sets the model's own config; it is merged over the parent's.
// Calling it again merges over the previous call.
func (b *objectBuilder) Configure(c Config) *objectBuilder {
	if b.cfgSet {
		b.cfg = b.cfg.Merge(c)
	} else {
		b.cfg, b.cfgSet = c, true
	}
	return b
}

// ConfigureMap is Configure for the mapping form accepted by ConfigFromMap.
func (b *objectBuilder) ConfigureMap(m map[string]any) *objectBuilder {
	c, err := ConfigFromMap(b.name, m)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	return b.Configure(c)
}

// Field declares a field and returns a step for setting its options.
func (b *objectBuilder) Field(name string, tag TypeTag) *fieldStep {
	d := NewField(name, tag)
	b.drafts = append(b.drafts, d)
	return &fieldStep{objectBuilder: b, d: d}
}

// Attach adds prebuilt field declarations.
func (b *objectBuilder) Attach(fields ...FieldSpec) *objectBuilder {
	for _, f := range fields {
		b.drafts = append(b.drafts, &FieldDraft{spec: f})
	}
	return b
}

func (f *fieldStep) Alias(alias string) *fieldStep           { f.d.Alias(alias); return f }
func (f *fieldStep) Desc(desc string) *fieldStep             { f.d.Desc(desc); return f }
func (f *fieldStep) Default(v any) *fieldStep                { f.d.Default(v); return f }
func (f *fieldStep) DefaultFactory(fn func() any) *fieldStep { f.d.DefaultFactory(fn); return f }
func (f *fieldStep) Validator(fn Validator) *fieldStep       { f.d.Validator(fn); return f }
func (f *fieldStep) Serializer(fn Serializer) *fieldStep     { f.d.Serializer(fn); return f }
func (f *fieldStep) NoInit() *fieldStep                      { f.d.NoInit(); return f }
func (f *fieldStep) NoRepr() *fieldStep                      { f.d.NoRepr(); return f }
func (f *fieldStep) Extra(key string, v any) *fieldStep      { f.d.Extra(key, v); return f }

// Build resolves inheritance and returns the immutable schema. Conflicting
// declarations fail here rather than at first use.
func (b *objectBuilder) Build() (*Schema, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	s := &Schema{
		name:    b.name,
		parent:  b.parent,
		index:   map[string]int{},
		aliases: map[string]string{},
	}
	if b.parent != nil {
		s.fields = slices.Clone(b.parent.fields)
		maps.Copy(s.index, b.parent.index)
		s.cfg = b.parent.cfg.Merge(b.cfg)
	} else {
		s.cfg = b.cfg
	}

	for _, d := range b.drafts {
		f := d.spec
		if err := f.check(); err != nil {
			return nil, &ConfigurationError{Model: b.name, Reason: err.Error()}
		}
		f.extras = maps.Clone(f.extras)
		if i, ok := s.index[f.name]; ok {
			// a redeclared field replaces the earlier one in place
			s.fields[i] = f
			continue
		}
		s.index[f.name] = len(s.fields)
		s.fields = append(s.fields, f)
	}

	for _, f := range s.fields {
		if f.alias != "" {
			if prev, ok := s.aliases[f.alias]; ok && prev != f.name {
				logger().Warn("metify: duplicate alias, later declaration wins",
					"model", s.name, "alias", f.alias, "previous", prev, "field", f.name)
			}
			s.aliases[f.alias] = f.name
		}
		if f.Required() {
			s.required = append(s.required, f.name)
		}
	}
	for _, f := range s.fields {
		if f.alias == "" || f.alias == f.name || s.aliases[f.alias] != f.name {
			continue
		}
		if _, clash := s.index[f.alias]; clash {
			return nil, &ConfigurationError{Model: s.name, Reason: fmt.Sprintf("alias %q of field %q collides with a field name", f.alias, f.name)}
		}
	}
	if s.cfg.AliasGenerator != nil {
		// generated keys must stay unique in a by-alias dump
		owner := make(map[string]FieldSpec, len(s.fields))
		for _, f := range s.fields {
			key := s.keyFor(f, true)
			if prev, ok := owner[key]; ok && (prev.alias == "" || f.alias == "") {
				return nil, &ConfigurationError{Model: s.name, Reason: fmt.Sprintf("fields %q and %q share the by-alias key %q", prev.name, f.name, key)}
			}
			owner[key] = f
		}
	}
	for _, fn := range b.onBuild {
		fn(s)
	}
	return s, nil
}

// MustBuild is like Build but panics on error.
func (b *objectBuilder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
