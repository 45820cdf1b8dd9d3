package metify

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// Instance is one record of a Schema. It owns its field values.
type Instance struct {
	schema *Schema
	values []any
	set    []bool
	frozen bool
}

// New constructs an instance from keyword data. Every init field is taken from
// kwargs (and validated), else from its default, else reported missing. All
// validation failures, then all missing fields, then all unexpected keys are
// reported together.
func (s *Schema) New(kwargs map[string]any) (*Instance, error) {
	if !s.cfg.generateInit() {
		return nil, &ConfigurationError{Model: s.name, Reason: "constructor generation is disabled"}
	}
	return s.construct(kwargs)
}

// MustNew is like New but panics on error.
func (s *Schema) MustNew(kwargs map[string]any) *Instance {
	m, err := s.New(kwargs)
	if err != nil {
		panic(err)
	}
	return m
}

// Blank returns an instance holding only defaults. It is available even when
// constructor generation is disabled; required fields stay unset.
func (s *Schema) Blank() *Instance {
	m := s.alloc()
	for i, f := range s.fields {
		if v, ok := f.Produce(); ok {
			m.values[i], m.set[i] = v, true
		}
	}
	m.frozen = s.cfg.frozen()
	return m
}

func (s *Schema) alloc() *Instance {
	return &Instance{
		schema: s,
		values: make([]any, len(s.fields)),
		set:    make([]bool, len(s.fields)),
	}
}

func (s *Schema) construct(kwargs map[string]any) (*Instance, error) {
	m := s.alloc()
	consumed := make(map[string]struct{}, len(kwargs))
	var invalid []error
	var missing []string

	for i, f := range s.fields {
		if f.Init() {
			if v, ok := kwargs[f.name]; ok {
				consumed[f.name] = struct{}{}
				if f.validator != nil {
					nv, err := f.validator(v)
					if err != nil {
						invalid = append(invalid, &FieldValidationError{Model: s.name, Field: f.name, Cause: err})
						continue
					}
					v = nv
				}
				m.values[i], m.set[i] = v, true
				continue
			}
		}
		if v, ok := f.Produce(); ok {
			m.values[i], m.set[i] = v, true
			continue
		}
		if f.Init() {
			missing = append(missing, f.name)
		}
	}

	errs := invalid
	if len(missing) > 0 {
		errs = append(errs, &MissingFieldsError{Model: s.name, Fields: missing})
	}
	if len(consumed) < len(kwargs) {
		var extra []string
		for k := range kwargs {
			if _, ok := consumed[k]; !ok {
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)
		errs = append(errs, &UnexpectedArgumentsError{Model: s.name, Keys: extra})
	}
	if err := joinErrors(errs); err != nil {
		return nil, err
	}
	m.frozen = s.cfg.frozen()
	return m, nil
}

// Schema returns the instance's schema.
func (m *Instance) Schema() *Schema { return m.schema }

// Get returns a field value and whether it is set.
func (m *Instance) Get(name string) (any, bool) {
	i, ok := m.schema.index[name]
	if !ok || !m.set[i] {
		return nil, false
	}
	return m.values[i], true
}

// Value is Get without the presence flag.
func (m *Instance) Value(name string) any {
	v, _ := m.Get(name)
	return v
}

// Has reports whether a field holds a value.
func (m *Instance) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// Set assigns a field after running its validator. Frozen instances refuse.
func (m *Instance) Set(name string, v any) error {
	i, ok := m.schema.index[name]
	if !ok {
		return &UnknownFieldError{Model: m.schema.name, Keys: []string{name}}
	}
	if m.frozen {
		return &FrozenModelError{Model: m.schema.name, Field: name, Op: "set"}
	}
	if fn := m.schema.fields[i].validator; fn != nil {
		nv, err := fn(v)
		if err != nil {
			return &FieldValidationError{Model: m.schema.name, Field: name, Cause: err}
		}
		v = nv
	}
	m.values[i], m.set[i] = v, true
	return nil
}

// Delete unsets a field. Frozen instances refuse.
func (m *Instance) Delete(name string) error {
	i, ok := m.schema.index[name]
	if !ok {
		return &UnknownFieldError{Model: m.schema.name, Keys: []string{name}}
	}
	if m.frozen {
		return &FrozenModelError{Model: m.schema.name, Field: name, Op: "delete"}
	}
	m.values[i], m.set[i] = nil, false
	return nil
}

// Frozen reports whether mutation is disabled.
func (m *Instance) Frozen() bool { return m.frozen }

// AsMap returns the raw field values by name without any conversion. Unset
// fields with a default get a freshly produced default.
func (m *Instance) AsMap() map[string]any {
	out := make(map[string]any, len(m.values))
	for i, f := range m.schema.fields {
		if m.set[i] {
			out[f.name] = m.values[i]
		} else if v, ok := f.Produce(); ok {
			out[f.name] = v
		}
	}
	return out
}

// String renders the instance as Name(field=value, ...) using repr fields.
func (m *Instance) String() string {
	if !m.schema.cfg.generateRepr() {
		return fmt.Sprintf("%s@%p", m.schema.name, m)
	}
	parts := make([]string, 0, len(m.values))
	for i, f := range m.schema.fields {
		if !f.Repr() || !m.set[i] {
			continue
		}
		parts = append(parts, f.name+"="+reprValue(m.values[i]))
	}
	return m.schema.name + "(" + strings.Join(parts, ", ") + ")"
}

func reprValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "nil"
	case string:
		return fmt.Sprintf("%q", t)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprintf("%v", v)
}

// nested *Instance and *Document values compare through their Equal methods
var equalOpts = cmp.Exporter(func(reflect.Type) bool { return true })

// Equal reports whether both instances share a schema and hold equal values.
// Values with an Equal method (time.Time, ...) are compared with it.
func (m *Instance) Equal(o *Instance) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.schema != o.schema || !slices.Equal(m.set, o.set) {
		return false
	}
	for i := range m.values {
		if !cmp.Equal(m.values[i], o.values[i], equalOpts) {
			return false
		}
	}
	return true
}
