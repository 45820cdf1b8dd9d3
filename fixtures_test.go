package metify_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/reoring/metify"
)

func userSchema(t *testing.T) *metify.Schema {
	t.Helper()
	s, err := metify.Object("User").
		Field("user_id", metify.Int()).Alias("userId").
		Field("full_name", metify.String()).Alias("fullName").
		Field("middle_name", metify.String()).Default(nil).
		Build()
	if err != nil {
		t.Fatalf("build User: %v", err)
	}
	return s
}

func addressSchema(t *testing.T) *metify.Schema {
	t.Helper()
	s, err := metify.Object("Address").
		Field("street", metify.String()).
		Field("city", metify.String()).
		Field("country", metify.String()).
		Build()
	if err != nil {
		t.Fatalf("build Address: %v", err)
	}
	return s
}

func personSchema(t *testing.T, address *metify.Schema) *metify.Schema {
	t.Helper()
	s, err := metify.Object("Person").
		Field("name", metify.String()).
		Field("address", metify.ModelOf(address)).
		Build()
	if err != nil {
		t.Fatalf("build Person: %v", err)
	}
	return s
}

// captureLogs routes package warnings into a buffer for the test's lifetime.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	metify.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { metify.SetLogger(nil) })
	return &buf
}
