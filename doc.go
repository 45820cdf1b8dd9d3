package metify

// Package metify provides:
//
// - Declarative record schemas built once and immutable afterwards (Object().Field(...).Build())
// - Keyword construction with exhaustive missing/unexpected/validation reporting
// - Recursive Dump/Load between instances and plain value trees, with aliases,
//   exclude-none, strict mode, nested models and per-type (de)serializers
// - A pluggable JSON codec registry with fallback, and a stable error model via Issues
//
// Design policy:
// - Keep the public API in the root package; alias generators live in alias/,
//   stock (de)serializers in codec/, optional codecs under adapter/.
// - Schemas and configs are values that never change after Build, so Dump/Load on
//   independent instances may run in parallel.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	user := metify.Object("User").
//		Field("user_id", metify.Int()).Alias("userId").
//		Field("full_name", metify.String()).Alias("fullName").
//		Field("middle_name", metify.String()).Default(nil).
//		MustBuild()
//
//	u, err := user.Load(map[string]any{"userId": 123, "fullName": "John Doe"}, metify.LoadOpt{ByAlias: metify.On})
//	doc, err := u.Dump(metify.DumpOpt{ByAlias: metify.On, ExcludeNone: metify.On})
//	s, err := u.JSONDumps()
