package metify

import (
	"fmt"
	"reflect"
)

// Bind copies an instance into struct type T using the same key resolution as
// Derive. Nested instances fill nested structs (or pointers to them), lists
// fill slices, and numeric or string values are converted when needed.
func Bind[T any](m *Instance) (T, error) {
	var out T
	rv := reflect.ValueOf(&out).Elem()
	if rv.Kind() != reflect.Struct {
		return out, fmt.Errorf("metify: Bind requires a struct type, got %s", rv.Type())
	}
	if err := bindInstance(rv, m); err != nil {
		return out, err
	}
	return out, nil
}

func bindInstance(dst reflect.Value, m *Instance) error {
	rt := dst.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := ResolveStructKey(sf)
		if key == "-" {
			continue
		}
		v, ok := m.Get(key)
		if !ok {
			if f, known := m.schema.Field(key); known {
				v, ok = f.Produce()
			}
		}
		if !ok || v == nil {
			continue
		}
		if err := assign(dst.Field(i), v); err != nil {
			return fmt.Errorf("metify: bind %s.%s: %w", m.schema.name, key, err)
		}
	}
	return nil
}

func assign(dst reflect.Value, v any) error {
	if v == nil {
		return nil
	}
	if in, ok := v.(*Instance); ok {
		switch dst.Kind() {
		case reflect.Struct:
			return bindInstance(dst, in)
		case reflect.Pointer:
			if dst.Type().Elem().Kind() == reflect.Struct {
				p := reflect.New(dst.Type().Elem())
				if err := bindInstance(p.Elem(), in); err != nil {
					return err
				}
				dst.Set(p)
				return nil
			}
		case reflect.Interface:
			dst.Set(reflect.ValueOf(in))
			return nil
		}
		return fmt.Errorf("cannot bind model %s to %s", in.schema.name, dst.Type())
	}

	sv := reflect.ValueOf(v)
	if sv.Type().AssignableTo(dst.Type()) {
		dst.Set(sv)
		return nil
	}
	switch dst.Kind() {
	case reflect.Pointer:
		p := reflect.New(dst.Type().Elem())
		if err := assign(p.Elem(), v); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	case reflect.Slice:
		if sv.Kind() == reflect.Slice || sv.Kind() == reflect.Array {
			out := reflect.MakeSlice(dst.Type(), sv.Len(), sv.Len())
			for i := 0; i < sv.Len(); i++ {
				if err := assign(out.Index(i), sv.Index(i).Interface()); err != nil {
					return fmt.Errorf("[%d]: %w", i, err)
				}
			}
			dst.Set(out)
			return nil
		}
	case reflect.Map:
		if sv.Kind() == reflect.Map && dst.Type().Key().Kind() == reflect.String {
			out := reflect.MakeMapWithSize(dst.Type(), sv.Len())
			iter := sv.MapRange()
			for iter.Next() {
				ev := reflect.New(dst.Type().Elem()).Elem()
				k := fmt.Sprint(iter.Key().Interface())
				if err := assign(ev, iter.Value().Interface()); err != nil {
					return fmt.Errorf("[%s]: %w", k, err)
				}
				out.SetMapIndex(reflect.ValueOf(k).Convert(dst.Type().Key()), ev)
			}
			dst.Set(out)
			return nil
		}
	}
	if numeric(sv.Kind()) && numeric(dst.Kind()) || sv.Kind() == reflect.String && dst.Kind() == reflect.String {
		dst.Set(sv.Convert(dst.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", v, dst.Type())
}

func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
