// Package codec registers stock serializer/deserializer pairs on a
// metify.Registry: RFC3339 times, Go duration strings and UUIDs.
package codec

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/reoring/metify"
)

// RegisterDefaults registers every codec in this package. A nil registry
// means metify.DefaultRegistry().
func RegisterDefaults(r *metify.Registry) {
	RegisterTime(r)
	RegisterDuration(r)
	RegisterUUID(r)
}

// RegisterTime dumps time.Time as a canonical RFC3339 string (UTC, trailing
// zeros trimmed) and loads RFC3339 or RFC3339Nano strings back.
func RegisterTime(r *metify.Registry) {
	metify.RegisterSerializer(r, func(t time.Time) (any, error) {
		return FormatRFC3339(t), nil
	})
	metify.RegisterDeserializer(r, func(v any) (time.Time, error) {
		s, ok := v.(string)
		if !ok {
			return time.Time{}, fmt.Errorf("expected RFC3339 string, got %T", v)
		}
		return ParseRFC3339(s)
	})
}

// RegisterDuration dumps time.Duration as its String() form ("1h30m0s") and
// loads either that form or a number of nanoseconds.
func RegisterDuration(r *metify.Registry) {
	metify.RegisterSerializer(r, func(d time.Duration) (any, error) {
		return d.String(), nil
	})
	metify.RegisterDeserializer(r, func(v any) (time.Duration, error) {
		switch t := v.(type) {
		case string:
			return time.ParseDuration(t)
		case int64:
			return time.Duration(t), nil
		case float64:
			return time.Duration(t), nil
		}
		return 0, fmt.Errorf("expected duration string, got %T", v)
	})
}

// RegisterUUID dumps uuid.UUID in its canonical string form and parses any
// form accepted by uuid.Parse.
func RegisterUUID(r *metify.Registry) {
	metify.RegisterSerializer(r, func(id uuid.UUID) (any, error) {
		return id.String(), nil
	})
	metify.RegisterDeserializer(r, func(v any) (uuid.UUID, error) {
		s, ok := v.(string)
		if !ok {
			return uuid.Nil, fmt.Errorf("expected UUID string, got %T", v)
		}
		return uuid.Parse(s)
	})
}

// ParseRFC3339 accepts RFC3339Nano (trailing zeros optional) and RFC3339.
func ParseRFC3339(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

// FormatRFC3339 normalizes to UTC and formats using RFC3339Nano (Go trims
// trailing zeros).
func FormatRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
