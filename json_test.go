package metify_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/metify"
)

func TestJSONDumps(t *testing.T) {
	u := userSchema(t).MustNew(map[string]any{"user_id": int64(123), "full_name": "John Doe"})

	got, err := u.JSONDumps(metify.JSONOpt{Dump: metify.DumpOpt{ByAlias: metify.On, ExcludeNone: metify.On}})
	if err != nil {
		t.Fatalf("dumps: %v", err)
	}
	if want := `{"userId":123,"fullName":"John Doe"}`; got != want {
		t.Fatalf("want %s, got %s", want, got)
	}

	got, err = u.JSONDumps(metify.JSONOpt{Indent: "  ", SortKeys: true})
	if err != nil {
		t.Fatalf("dumps: %v", err)
	}
	want := "{\n  \"full_name\": \"John Doe\",\n  \"middle_name\": null,\n  \"user_id\": 123\n}"
	if got != want {
		t.Fatalf("want %s, got %s", want, got)
	}

	b, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"user_id":123,"full_name":"John Doe","middle_name":null}` {
		t.Fatalf("MarshalJSON must keep field order, got %s", b)
	}
}

func TestJSONLoads(t *testing.T) {
	user := userSchema(t)
	u, err := user.JSONLoads([]byte(`{"userId": 123, "fullName": "John Doe", "middle_name": "Q"}`))
	if err != nil {
		t.Fatalf("loads: %v", err)
	}
	want := map[string]any{"user_id": int64(123), "full_name": "John Doe", "middle_name": "Q"}
	if diff := cmp.Diff(want, u.AsMap()); diff != "" {
		t.Fatalf("loaded mismatch (-want +got):\n%s", diff)
	}

	addr := addressSchema(t)
	person := personSchema(t, addr)
	p, err := person.JSONLoads([]byte(`{"name":"Bob","address":{"street":"Main","city":"Boston","country":"US"}}`))
	if err != nil {
		t.Fatalf("nested loads: %v", err)
	}
	s, err := p.JSONDumps()
	if err != nil {
		t.Fatalf("dumps: %v", err)
	}
	if s != `{"name":"Bob","address":{"street":"Main","city":"Boston","country":"US"}}` {
		t.Fatalf("round trip mismatch: %s", s)
	}
}

func TestJSONLoads_DecodeErrors(t *testing.T) {
	user := userSchema(t)

	_, err := user.JSONLoads([]byte(`{"userId": }`))
	var de *metify.JSONDecodeError
	if !errors.As(err, &de) || de.Offset < 0 {
		t.Fatalf("expected JSONDecodeError with offset, got %v", err)
	}

	_, err = user.JSONLoads([]byte(`[1, 2]`))
	if !errors.As(err, &de) {
		t.Fatalf("non-object input must be a decode error, got %v", err)
	}

	_, err = user.JSONLoads([]byte(`{"userId": 1} {}`))
	if !errors.As(err, &de) {
		t.Fatalf("trailing data must be a decode error, got %v", err)
	}

	iss, ok := metify.AsIssues(&metify.JSONDecodeError{Adapter: "json", Offset: 11, Cause: errors.New("bad")})
	if !ok || iss[0].Code != metify.CodeParseError || iss[0].Offset != 11 {
		t.Fatalf("unexpected issues: %+v", iss)
	}
}

func TestAdapterFallback(t *testing.T) {
	logs := captureLogs(t)
	u := userSchema(t).MustNew(map[string]any{"user_id": int64(1), "full_name": "A"})

	got, err := u.JSONDumps(metify.JSONOpt{Adapter: "does-not-exist"})
	if err != nil {
		t.Fatalf("fallback must not fail: %v", err)
	}
	if got != `{"user_id":1,"full_name":"A","middle_name":null}` {
		t.Fatalf("unexpected output: %s", got)
	}
	if !strings.Contains(logs.String(), "falling back") || !strings.Contains(logs.String(), "does-not-exist") {
		t.Fatalf("expected a fallback warning, logs: %s", logs.String())
	}
	if metify.GetDecoder("does-not-exist") == nil {
		t.Fatalf("decoder fallback must never be nil")
	}
}

func TestRegisterJSONAdapter(t *testing.T) {
	metify.RegisterJSONAdapter("test-upper", func(v any, _ metify.EncodeOpt) ([]byte, error) {
		b, err := json.Marshal(v)
		return []byte(strings.ToUpper(string(b))), err
	}, nil)

	found := false
	for _, n := range metify.JSONAdapters() {
		found = found || n == "test-upper"
	}
	if !found {
		t.Fatalf("adapter not listed: %v", metify.JSONAdapters())
	}

	s := metify.Object("Shout").
		Field("word", metify.String()).
		Configure(metify.Config{JSONAdapter: "test-upper"}).
		MustBuild()
	got, err := s.MustNew(map[string]any{"word": "hi"}).JSONDumps()
	if err != nil {
		t.Fatalf("dumps: %v", err)
	}
	if got != `{"WORD":"HI"}` {
		t.Fatalf("configured adapter not used: %s", got)
	}
	// the missing decoder half falls back to the default
	captureLogs(t)
	m, err := s.JSONLoads([]byte(`{"word":"hi"}`))
	if err != nil || m.Value("word") != "hi" {
		t.Fatalf("decode fallback: %v %v", m, err)
	}
}

type point struct{ x, y int }

func TestJSONDefaultHandler(t *testing.T) {
	s := metify.Object("Shape").
		Field("origin", metify.Any()).
		Configure(metify.Config{JSONDefaultHandler: func(v any) (any, error) {
			if p, ok := v.(point); ok {
				return []any{p.x, p.y}, nil
			}
			return nil, fmt.Errorf("cannot encode %T", v)
		}}).
		MustBuild()

	got, err := s.MustNew(map[string]any{"origin": point{1, 2}}).JSONDumps()
	if err != nil {
		t.Fatalf("dumps: %v", err)
	}
	if got != `{"origin":[1,2]}` {
		t.Fatalf("handler not applied: %s", got)
	}

	_, err = s.MustNew(map[string]any{"origin": struct{}{}}).JSONDumps()
	var se *metify.SerializationError
	if !errors.As(err, &se) {
		t.Fatalf("expected SerializationError, got %v", err)
	}
}

func TestDocumentOrderAndEquality(t *testing.T) {
	d := metify.NewDocument()
	d.Set("b", 1)
	d.Set("a", 2)
	d.Set("b", 3)

	if diff := cmp.Diff([]string{"b", "a"}, d.Keys()); diff != "" {
		t.Fatalf("overwrite must keep position (-want +got):\n%s", diff)
	}
	b, err := json.Marshal(d)
	if err != nil || string(b) != `{"b":3,"a":2}` {
		t.Fatalf("ordered marshal: %s %v", b, err)
	}

	e := metify.NewDocument()
	e.Set("a", 2)
	e.Set("b", 3)
	if d.Equal(e) {
		t.Fatalf("documents with different key order must differ")
	}
	d.Delete("b")
	e.Delete("b")
	if !d.Equal(e) || d.Len() != 1 {
		t.Fatalf("expected equal documents after delete")
	}
}
