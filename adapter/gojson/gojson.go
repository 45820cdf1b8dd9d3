// Package gojson registers a "go-json" codec backed by goccy/go-json.
// Import it for side effects:
//
//	import _ "github.com/reoring/metify/adapter/gojson"
package gojson

import (
	"bytes"
	"errors"

	j "github.com/goccy/go-json"

	"github.com/reoring/metify"
)

// Name is the adapter name to use in Config.JSONAdapter or JSONOpt.Adapter.
const Name = "go-json"

func init() { metify.RegisterJSONAdapter(Name, Encode, Decode) }

// Encode marshals v with go-json. *metify.Document keeps its key order
// through its MarshalJSON method.
func Encode(v any, opt metify.EncodeOpt) ([]byte, error) {
	if opt.Indent != "" {
		return j.MarshalIndent(v, "", opt.Indent)
	}
	return j.Marshal(v)
}

// Decode unmarshals data with go-json, normalizing numbers to int64/float64.
func Decode(data []byte) (any, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		off := int64(-1)
		var se *j.SyntaxError
		if errors.As(err, &se) {
			off = se.Offset
		}
		return nil, &metify.JSONDecodeError{Adapter: Name, Offset: off, Cause: err}
	}
	return normalize(v), nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case j.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	}
	return metify.NormalizeNumbers(v)
}
