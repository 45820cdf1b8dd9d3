package metify

import (
	"fmt"
	"reflect"
)

// Switch is a tri-state flag. The zero value inherits from the enclosing
// configuration (parent model, model config, or library default).
type Switch int8

const (
	Inherit Switch = iota // Use the inherited value.
	On                    // Force enabled.
	Off                   // Force disabled.
)

// SwitchOf converts a plain bool into an explicit Switch.
func SwitchOf(b bool) Switch {
	if b {
		return On
	}
	return Off
}

// Or returns s, or fallback when s is Inherit.
func (s Switch) Or(fallback Switch) Switch {
	if s == Inherit {
		return fallback
	}
	return s
}

// Enabled resolves the switch using def for Inherit.
func (s Switch) Enabled(def bool) bool {
	switch s {
	case On:
		return true
	case Off:
		return false
	}
	return def
}

func (s Switch) String() string {
	switch s {
	case On:
		return "on"
	case Off:
		return "off"
	}
	return "inherit"
}

// Kind classifies a TypeTag.
type Kind int

const (
	KindAny    Kind = iota // Unconstrained value.
	KindScalar             // A concrete Go type (string, int64, time.Time, ...).
	KindModel              // A nested model.
	KindList               // An ordered sequence of Elem.
	KindMap                // A string-keyed mapping of Elem.
)

// TypeTag is the declared type of a field. It drives nested-model and sequence
// detection and registry lookups during Load; it is not enforced on values.
type TypeTag struct {
	kind  Kind
	rt    reflect.Type
	model func() *Schema
	elem  *TypeTag
}

// Any declares an unconstrained field.
func Any() TypeTag { return TypeTag{kind: KindAny} }

// String declares a string field.
func String() TypeTag { return TypeOf[string]() }

// Int declares an integer field. Decoded JSON integers are int64.
func Int() TypeTag { return TypeOf[int64]() }

// Float declares a floating point field.
func Float() TypeTag { return TypeOf[float64]() }

// Bool declares a boolean field.
func Bool() TypeTag { return TypeOf[bool]() }

// TypeOf declares a field of Go type T. Registered deserializers for T are
// applied on Load.
func TypeOf[T any]() TypeTag { return TypeTag{kind: KindScalar, rt: reflect.TypeFor[T]()} }

// TypeFor is the reflect.Type flavored form of TypeOf.
func TypeFor(rt reflect.Type) TypeTag {
	if rt == nil {
		return Any()
	}
	return TypeTag{kind: KindScalar, rt: rt}
}

// ModelOf declares a nested model field.
func ModelOf(s *Schema) TypeTag {
	return TypeTag{kind: KindModel, model: func() *Schema { return s }}
}

// ModelRef declares a nested model resolved lazily, which allows
// self-referential and mutually recursive schemas.
func ModelRef(resolve func() *Schema) TypeTag {
	return TypeTag{kind: KindModel, model: resolve}
}

// ListOf declares a sequence of elem.
func ListOf(elem TypeTag) TypeTag { return TypeTag{kind: KindList, elem: &elem} }

// MapOf declares a string-keyed mapping of elem.
func MapOf(elem TypeTag) TypeTag { return TypeTag{kind: KindMap, elem: &elem} }

func (t TypeTag) Kind() Kind { return t.kind }

// Type returns the Go type of a scalar tag, nil otherwise.
func (t TypeTag) Type() reflect.Type { return t.rt }

// Model resolves the nested schema of a model tag, nil otherwise.
func (t TypeTag) Model() *Schema {
	if t.kind != KindModel || t.model == nil {
		return nil
	}
	return t.model()
}

// Elem returns the element tag of a list or map tag, Any otherwise.
func (t TypeTag) Elem() TypeTag {
	if t.elem == nil {
		return Any()
	}
	return *t.elem
}

func (t TypeTag) String() string {
	switch t.kind {
	case KindScalar:
		return t.rt.String()
	case KindModel:
		if s := t.Model(); s != nil {
			return s.Name()
		}
		return "model"
	case KindList:
		return "[]" + t.Elem().String()
	case KindMap:
		return fmt.Sprintf("map[string]%s", t.Elem())
	}
	return "any"
}
