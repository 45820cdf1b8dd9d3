package metify

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

// Document is an insertion-ordered string-keyed value tree, the output of
// Dump. It marshals to JSON and YAML in key order.
type Document struct {
	keys []string
	vals map[string]any
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{vals: map[string]any{}}
}

// Set stores v under k. Existing keys keep their position.
func (d *Document) Set(k string, v any) {
	if _, ok := d.vals[k]; !ok {
		d.keys = append(d.keys, k)
	}
	d.vals[k] = v
}

func (d *Document) Get(k string) (any, bool) {
	v, ok := d.vals[k]
	return v, ok
}

// Delete removes k.
func (d *Document) Delete(k string) {
	if _, ok := d.vals[k]; !ok {
		return
	}
	delete(d.vals, k)
	d.keys = slices.DeleteFunc(d.keys, func(s string) bool { return s == k })
}

// Keys returns the keys in insertion order.
func (d *Document) Keys() []string { return slices.Clone(d.keys) }

func (d *Document) Len() int { return len(d.keys) }

// Range calls fn for each entry in order until fn returns false.
func (d *Document) Range(fn func(k string, v any) bool) {
	for _, k := range d.keys {
		if !fn(k, d.vals[k]) {
			return
		}
	}
}

// Map converts the document, and every document nested in it, into plain
// maps. Key order is lost.
func (d *Document) Map() map[string]any {
	out := make(map[string]any, len(d.keys))
	for _, k := range d.keys {
		out[k] = unorder(d.vals[k])
	}
	return out
}

func unorder(v any) any {
	switch t := v.(type) {
	case *Document:
		return t.Map()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = unorder(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = unorder(e)
		}
		return out
	}
	return v
}

// Equal compares keys (in order) and values.
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}
	if !slices.Equal(d.keys, o.keys) {
		return false
	}
	for _, k := range d.keys {
		if !cmp.Equal(d.vals[k], o.vals[k], equalOpts) {
			return false
		}
	}
	return true
}

// MarshalJSON writes the entries in insertion order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(d.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML returns a mapping node that preserves insertion order.
func (d *Document) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range d.keys {
		kn := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		vn := &yaml.Node{}
		if err := vn.Encode(d.vals[k]); err != nil {
			return nil, err
		}
		n.Content = append(n.Content, kn, vn)
	}
	return n, nil
}
