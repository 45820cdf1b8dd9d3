package metify

import (
	"fmt"
	"reflect"
)

// Registry maps exact runtime types to serializers and deserializers. Lookup
// never walks embedded types or interfaces. Registry has no internal locking:
// register everything before Dump/Load run concurrently.
type Registry struct {
	ser   map[reflect.Type]Serializer
	deser map[reflect.Type]Deserializer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ser:   map[reflect.Type]Serializer{},
		deser: map[reflect.Type]Deserializer{},
	}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used when no registry is
// passed to Dump or Load.
func DefaultRegistry() *Registry { return defaultRegistry }

// Register sets the serializer for t, replacing any previous entry.
func (r *Registry) Register(t reflect.Type, fn Serializer) {
	r.ser[t] = fn
}

// RegisterDeserializer sets the deserializer for t, replacing any previous entry.
func (r *Registry) RegisterDeserializer(t reflect.Type, fn Deserializer) {
	r.deser[t] = fn
}

// Serializer returns the serializer registered for exactly t.
func (r *Registry) Serializer(t reflect.Type) (Serializer, bool) {
	fn, ok := r.ser[t]
	return fn, ok
}

// Deserializer returns the deserializer registered for exactly t.
func (r *Registry) Deserializer(t reflect.Type) (Deserializer, bool) {
	fn, ok := r.deser[t]
	return fn, ok
}

// Has reports whether t has a serializer or a deserializer.
func (r *Registry) Has(t reflect.Type) bool {
	_, s := r.ser[t]
	_, d := r.deser[t]
	return s || d
}

// RegisterSerializer registers a typed serializer for T. A nil registry means
// the default registry.
func RegisterSerializer[T any](r *Registry, fn func(T) (any, error)) {
	if r == nil {
		r = defaultRegistry
	}
	r.Register(reflect.TypeFor[T](), func(v any) (any, error) {
		t, ok := v.(T)
		if !ok {
			return nil, fmt.Errorf("expected %s, got %T", reflect.TypeFor[T](), v)
		}
		return fn(t)
	})
}

// RegisterDeserializer registers a typed deserializer for T. A nil registry
// means the default registry.
func RegisterDeserializer[T any](r *Registry, fn func(any) (T, error)) {
	if r == nil {
		r = defaultRegistry
	}
	r.RegisterDeserializer(reflect.TypeFor[T](), func(v any) (any, error) {
		return fn(v)
	})
}

func pickRegistry(r *Registry) *Registry {
	if r == nil {
		return defaultRegistry
	}
	return r
}
