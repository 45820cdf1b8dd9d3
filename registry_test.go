package metify_test

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/metify"
)

type date struct {
	Year  int
	Month time.Month
	Day   int
}

type birthday date

func dateRegistry(t *testing.T) *metify.Registry {
	t.Helper()
	reg := metify.NewRegistry()
	metify.RegisterSerializer(reg, func(d date) (any, error) {
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day), nil
	})
	metify.RegisterDeserializer(reg, func(v any) (date, error) {
		s, ok := v.(string)
		if !ok {
			return date{}, fmt.Errorf("expected a date string, got %T", v)
		}
		tm, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return date{}, err
		}
		return date{tm.Year(), tm.Month(), tm.Day()}, nil
	})
	return reg
}

func TestRegistry_CustomTypeRoundTrip(t *testing.T) {
	reg := dateRegistry(t)
	ev := metify.Object("Event").
		Field("name", metify.String()).
		Field("on", metify.TypeOf[date]()).
		MustBuild()

	m, err := ev.Load(map[string]any{"name": "launch", "on": "2024-03-01"}, metify.LoadOpt{Registry: reg})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(date{2024, time.March, 1}, m.Value("on")); diff != "" {
		t.Fatalf("deserialized mismatch (-want +got):\n%s", diff)
	}

	doc, err := m.Dump(metify.DumpOpt{Registry: reg})
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"name": "launch", "on": "2024-03-01"}, doc.Map()); diff != "" {
		t.Fatalf("dump mismatch (-want +got):\n%s", diff)
	}

	// the process registry knows nothing about date
	doc, _ = m.Dump()
	if _, ok := doc.Map()["on"].(date); !ok {
		t.Fatalf("unregistered value must pass through, got %T", doc.Map()["on"])
	}
}

func TestRegistry_DeserializerFailureIsValidationError(t *testing.T) {
	reg := dateRegistry(t)
	ev := metify.Object("Event").Field("on", metify.TypeOf[date]()).MustBuild()

	_, err := ev.Load(map[string]any{"on": "not a date"}, metify.LoadOpt{Registry: reg})
	var fe *metify.FieldValidationError
	if !errors.As(err, &fe) || fe.Field != "on" {
		t.Fatalf("expected FieldValidationError, got %v", err)
	}
}

func TestRegistry_ExactTypeOnly(t *testing.T) {
	reg := dateRegistry(t)
	if !reg.Has(reflect.TypeFor[date]()) {
		t.Fatalf("date must be registered")
	}
	if reg.Has(reflect.TypeFor[birthday]()) {
		t.Fatalf("a distinct named type must not inherit the registration")
	}

	s := metify.Object("Person").Field("born", metify.TypeOf[birthday]()).MustBuild()
	m := s.MustNew(map[string]any{"born": birthday{2000, time.January, 2}})
	doc, err := m.Dump(metify.DumpOpt{Registry: reg})
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if _, ok := doc.Map()["born"].(birthday); !ok {
		t.Fatalf("birthday must pass through unchanged, got %#v", doc.Map()["born"])
	}
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	reg := metify.NewRegistry()
	metify.RegisterSerializer(reg, func(d date) (any, error) { return "first", nil })
	metify.RegisterSerializer(reg, func(d date) (any, error) { return "second", nil })

	fn, ok := reg.Serializer(reflect.TypeFor[date]())
	if !ok {
		t.Fatalf("missing serializer")
	}
	got, _ := fn(date{})
	if got != "second" {
		t.Fatalf("later registration must win, got %v", got)
	}
}

type stamp int

func TestRegistry_NilMeansDefault(t *testing.T) {
	metify.RegisterSerializer(nil, func(s stamp) (any, error) { return int(s) * 10, nil })
	if !metify.DefaultRegistry().Has(reflect.TypeFor[stamp]()) {
		t.Fatalf("nil registry must target the default registry")
	}

	s := metify.Object("Log").Field("at", metify.TypeOf[stamp]()).MustBuild()
	doc, err := s.MustNew(map[string]any{"at": stamp(4)}).Dump()
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if v, _ := doc.Get("at"); v != 40 {
		t.Fatalf("default registry not consulted, got %v", v)
	}
}
