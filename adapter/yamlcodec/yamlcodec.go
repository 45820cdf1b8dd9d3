// Package yamlcodec registers a "yaml" codec backed by gopkg.in/yaml.v3, so
// JSONDumps/JSONLoads can emit and read YAML documents.
package yamlcodec

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/metify"
)

// Name is the adapter name to use in Config.JSONAdapter or JSONOpt.Adapter.
const Name = "yaml"

func init() { metify.RegisterJSONAdapter(Name, Encode, Decode) }

// Encode marshals v as YAML. Indent sets the indentation width by its length
// (default 4, the yaml.v3 default).
func Encode(v any, opt metify.EncodeOpt) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if n := len(opt.Indent); n > 0 {
		enc.SetIndent(n)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a single YAML document into a JSON-like tree.
func Decode(data []byte) (any, error) {
	var node any
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &metify.JSONDecodeError{Adapter: Name, Offset: -1, Cause: err}
	}
	return metify.NormalizeNumbers(normalizeValue(node)), nil
}

// normalizeValue converts YAML-decoded values (which may contain map[any]any)
// into JSON-like values recursively.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[keyString(k)] = normalizeValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = normalizeValue(vv)
		}
		return out
	}
	return v
}

func keyString(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return strings.TrimSpace(fmt.Sprint(k))
}
