package metify_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/metify"
	"github.com/reoring/metify/alias"
)

func TestLoad_NestedModel(t *testing.T) {
	addr := addressSchema(t)
	person := personSchema(t, addr)

	p, err := person.Load(map[string]any{
		"name":    "Bob",
		"address": map[string]any{"street": "Main", "city": "Boston", "country": "US"},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	a, ok := p.Value("address").(*metify.Instance)
	if !ok || a.Schema() != addr {
		t.Fatalf("address must load as an Address instance, got %T", p.Value("address"))
	}
	if a.Value("city") != "Boston" {
		t.Fatalf("unexpected city: %v", a.Value("city"))
	}

	doc, err := p.Dump()
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	want := map[string]any{
		"name":    "Bob",
		"address": map[string]any{"street": "Main", "city": "Boston", "country": "US"},
	}
	if diff := cmp.Diff(want, doc.Map()); diff != "" {
		t.Fatalf("dump mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_NestedErrorsCarryPaths(t *testing.T) {
	addr := addressSchema(t)
	person := personSchema(t, addr)

	_, err := person.Load(map[string]any{"name": "Bob", "address": map[string]any{"street": "Main"}})
	var le *metify.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	var me *metify.MissingFieldsError
	if !errors.As(err, &me) || me.Model != "Address" {
		t.Fatalf("expected nested MissingFieldsError, got %v", err)
	}

	iss, ok := metify.AsIssues(err)
	if !ok {
		t.Fatalf("expected issues")
	}
	var got []string
	for _, it := range iss {
		got = append(got, it.Code+" "+it.Path)
	}
	want := []string{"required /address/city", "required /address/country"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_UnknownKeys(t *testing.T) {
	s := metify.Object("One").Field("a", metify.Int()).MustBuild()
	in := map[string]any{"a": int64(1), "unknown_key": 2, "another": 3}

	_, err := s.Load(in)
	var ue *metify.UnknownFieldError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnknownFieldError, got %v", err)
	}
	if diff := cmp.Diff([]string{"another", "unknown_key"}, ue.Keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}

	m, err := s.Load(in, metify.LoadOpt{Strict: metify.Off})
	if err != nil {
		t.Fatalf("lenient load: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"a": int64(1)}, m.AsMap()); diff != "" {
		t.Fatalf("unknown keys must be dropped (-want +got):\n%s", diff)
	}
	// input untouched
	if len(in) != 3 {
		t.Fatalf("load mutated its input")
	}

	lenient := metify.Object("Lenient").Field("a", metify.Int()).
		Configure(metify.Config{Strict: metify.Off}).MustBuild()
	if _, err := lenient.Load(in); err != nil {
		t.Fatalf("config strict=false must drop unknown keys: %v", err)
	}
}

func TestLoad_AliasRenaming(t *testing.T) {
	user := userSchema(t)

	// explicit aliases are accepted without ByAlias
	u, err := user.Load(map[string]any{"userId": int64(1), "fullName": "A"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if u.Value("user_id") != int64(1) {
		t.Fatalf("alias not renamed: %v", u)
	}
	// field names still work
	if _, err := user.Load(map[string]any{"user_id": int64(1), "full_name": "A"}); err != nil {
		t.Fatalf("load by name: %v", err)
	}

	gen := metify.Object("Gen").
		Field("first_name", metify.String()).
		Configure(metify.Config{AliasGenerator: alias.Camel}).
		MustBuild()
	if _, err := gen.Load(map[string]any{"firstName": "Ada"}); err == nil {
		t.Fatalf("generated alias must not be accepted without ByAlias under strict mode")
	}
	m, err := gen.Load(map[string]any{"firstName": "Ada"}, metify.LoadOpt{ByAlias: metify.On})
	if err != nil {
		t.Fatalf("load by generated alias: %v", err)
	}
	if m.Value("first_name") != "Ada" {
		t.Fatalf("unexpected value: %v", m)
	}
}

func TestLoad_ByAliasWithoutSource(t *testing.T) {
	addr := addressSchema(t)
	_, err := addr.Load(map[string]any{}, metify.LoadOpt{ByAlias: metify.On})
	var ce *metify.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestLoad_RejectsNonMapping(t *testing.T) {
	addr := addressSchema(t)
	for _, in := range []any{nil, "x", []any{1}, (*metify.Document)(nil)} {
		_, err := addr.Load(in)
		var ce *metify.ConfigurationError
		if !errors.As(err, &ce) {
			t.Fatalf("input %#v: expected ConfigurationError, got %v", in, err)
		}
	}
}

// Validator failures are reported regardless of strictness.
func TestLoad_ValidatorFailureIsCollected(t *testing.T) {
	s := metify.Object("Counter").
		Field("n", metify.Int()).Validator(nonNegative).
		Field("label", metify.String()).
		MustBuild()

	for _, strict := range []metify.Switch{metify.On, metify.Off} {
		_, err := s.Load(map[string]any{"n": int64(-1)}, metify.LoadOpt{Strict: strict})
		var fe *metify.FieldValidationError
		if !errors.As(err, &fe) || !errors.Is(err, errNegative) {
			t.Fatalf("strict=%v: expected FieldValidationError, got %v", strict, err)
		}
		var me *metify.MissingFieldsError
		if !errors.As(err, &me) {
			t.Fatalf("strict=%v: missing label must be reported alongside, got %v", strict, err)
		}
	}
}

func TestLoad_FromDocument(t *testing.T) {
	user := userSchema(t)
	d := metify.NewDocument()
	d.Set("userId", int64(5))
	d.Set("fullName", "Doc")

	u, err := user.Load(d)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if u.Value("user_id") != int64(5) {
		t.Fatalf("unexpected instance: %v", u)
	}
}

func TestLoad_RecursionLimit(t *testing.T) {
	node := nodeSchema()
	in := map[string]any{"name": "leaf"}
	for i := 0; i < 20; i++ {
		in = map[string]any{"name": "n", "next": in}
	}

	_, err := node.Load(in)
	var re *metify.RecursionError
	if !errors.As(err, &re) {
		t.Fatalf("expected RecursionError, got %v", err)
	}

	shallow := map[string]any{"name": "a", "next": map[string]any{"name": "b", "next": map[string]any{"name": "c"}}}
	m, err := node.Load(shallow)
	if err != nil {
		t.Fatalf("shallow load: %v", err)
	}
	doc, err := m.Dump()
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	back, err := node.Load(doc)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !m.Equal(back) {
		t.Fatalf("round trip mismatch: %v vs %v", m, back)
	}
}

func richSchemas(t *testing.T) (*metify.Schema, *metify.Schema) {
	t.Helper()
	tag := metify.Object("Tag").
		Field("label", metify.String()).Alias("Label").
		MustBuild()
	post := metify.Object("Post").
		Field("post_id", metify.Int()).Alias("postId").
		Field("title", metify.String()).
		Field("tags", metify.ListOf(metify.ModelOf(tag))).
		Field("by_key", metify.MapOf(metify.ModelOf(tag))).Default(nil).
		Field("extra", metify.Any()).Default(nil).
		Configure(metify.Config{AliasGenerator: alias.Camel}).
		MustBuild()
	return tag, post
}

func branchSchema() *metify.Schema {
	var branch *metify.Schema
	branch = metify.Object("Branch").
		Field("name", metify.String()).
		Field("kids", metify.ListOf(metify.ModelRef(func() *metify.Schema { return branch }))).Default(nil).
		Configure(metify.Config{MaxDepth: 4}).
		MustBuild()
	return branch
}

func TestDepthLimit_ListsCountTheSameInLoadAndDump(t *testing.T) {
	branch := branchSchema()
	leaf := map[string]any{"name": "c"}
	three := map[string]any{"name": "a", "kids": []any{map[string]any{"name": "b", "kids": []any{leaf}}}}

	m, err := branch.Load(three)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := m.Dump(); err != nil {
		t.Fatalf("dump: %v", err)
	}

	var re *metify.RecursionError
	four := map[string]any{"name": "top", "kids": []any{three}}
	if _, err := branch.Load(four); !errors.As(err, &re) {
		t.Fatalf("load: expected RecursionError, got %v", err)
	}
	top := branch.MustNew(map[string]any{"name": "top", "kids": []any{m}})
	if _, err := top.Dump(); !errors.As(err, &re) {
		t.Fatalf("dump: expected RecursionError, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	tag, post := richSchemas(t)
	m := post.MustNew(map[string]any{
		"post_id": int64(10),
		"title":   "Hello",
		"tags": []any{
			tag.MustNew(map[string]any{"label": "go"}),
			tag.MustNew(map[string]any{"label": "json"}),
		},
		"by_key": map[string]any{"k": tag.MustNew(map[string]any{"label": "k"})},
		"extra":  map[string]any{"n": int64(1), "list": []any{"a", true}},
	})

	for _, byAlias := range []metify.Switch{metify.Off, metify.On} {
		doc, err := m.Dump(metify.DumpOpt{ByAlias: byAlias})
		if err != nil {
			t.Fatalf("byAlias=%v dump: %v", byAlias, err)
		}
		back, err := post.Load(doc, metify.LoadOpt{ByAlias: byAlias})
		if err != nil {
			t.Fatalf("byAlias=%v load: %v", byAlias, err)
		}
		if !m.Equal(back) {
			t.Fatalf("byAlias=%v round trip mismatch:\n%v\n%v", byAlias, m, back)
		}
	}
}

func TestLoad_DeterministicErrors(t *testing.T) {
	s := metify.Object("Wide").
		Field("a", metify.String()).
		Field("b", metify.String()).
		Field("c", metify.String()).
		MustBuild()
	in := map[string]any{"z": 1, "y": 2, "x": 3, "w": 4, "v": 5}

	var first string
	for i := 0; i < 25; i++ {
		_, err := s.Load(in)
		if err == nil {
			t.Fatalf("expected an error")
		}
		if i == 0 {
			first = err.Error()
			continue
		}
		if err.Error() != first {
			t.Fatalf("non-deterministic error:\n%s\n%s", first, err.Error())
		}
	}

	// constructor path: missing and unexpected together
	for i := 0; i < 25; i++ {
		_, err := s.New(in)
		iss, _ := metify.AsIssues(err)
		var got []string
		for _, it := range iss {
			got = append(got, it.Path)
		}
		want := []string{"/a", "/b", "/c", "/v", "/w", "/x", "/y", "/z"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("issue paths mismatch (-want +got):\n%s", diff)
		}
	}
}
