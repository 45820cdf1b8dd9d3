package metify

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
)

// JSONOpt controls JSONDumps and JSONLoads.
type JSONOpt struct {
	Adapter  string // codec name; defaults to Config.JSONAdapter, then "json"
	Indent   string
	SortKeys bool
	Dump     DumpOpt
	Load     LoadOpt
}

func lastJSONOpt(opts []JSONOpt) JSONOpt {
	if len(opts) > 0 {
		return opts[len(opts)-1]
	}
	return JSONOpt{}
}

// JSONDumps dumps the instance and encodes it with the selected codec.
// Values the codec cannot represent go through Config.JSONDefaultHandler.
func (m *Instance) JSONDumps(opts ...JSONOpt) (string, error) {
	opt := lastJSONOpt(opts)
	doc, err := m.Dump(opt.Dump)
	if err != nil {
		return "", err
	}
	var v any = doc
	if h := m.schema.cfg.JSONDefaultHandler; h != nil {
		if v, err = applyDefaultHandler(doc, h); err != nil {
			return "", &SerializationError{Model: m.schema.name, Cause: err}
		}
	}
	if opt.SortKeys {
		v = unorder(v)
	}
	name := opt.Adapter
	if name == "" {
		name = m.schema.cfg.jsonAdapterName()
	}
	b, err := GetEncoder(name)(v, EncodeOpt{Indent: opt.Indent})
	if err != nil {
		return "", &SerializationError{Model: m.schema.name, Cause: err}
	}
	return string(b), nil
}

// MarshalJSON encodes the default Dump with encoding/json.
func (m *Instance) MarshalJSON() ([]byte, error) {
	doc, err := m.Dump()
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// JSONLoads decodes data with the selected codec and loads the result.
func (s *Schema) JSONLoads(data []byte, opts ...JSONOpt) (*Instance, error) {
	opt := lastJSONOpt(opts)
	name := opt.Adapter
	if name == "" {
		name = s.cfg.jsonAdapterName()
	}
	v, err := GetDecoder(name)(data)
	if err != nil {
		if _, ok := err.(*JSONDecodeError); ok {
			return nil, err
		}
		return nil, &JSONDecodeError{Adapter: name, Offset: -1, Cause: err}
	}
	if _, ok := asMapping(v); !ok {
		return nil, &JSONDecodeError{Adapter: name, Offset: -1, Cause: fmt.Errorf("expected an object, got %T", v)}
	}
	return s.Load(v, opt.Load)
}

var (
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// applyDefaultHandler replaces leaves that are neither plain JSON values nor
// self-marshaling with the handler's result.
func applyDefaultHandler(v any, h func(any) (any, error)) (any, error) {
	switch t := v.(type) {
	case nil, string, bool, float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return v, nil
	case *Document:
		out := NewDocument()
		for _, k := range t.keys {
			cv, err := applyDefaultHandler(t.vals[k], h)
			if err != nil {
				return nil, err
			}
			out.Set(k, cv)
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			cv, err := applyDefaultHandler(e, h)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			cv, err := applyDefaultHandler(e, h)
			if err != nil {
				return nil, err
			}
			out[k] = cv
		}
		return out, nil
	}
	rt := reflect.TypeOf(v)
	if rt.Implements(jsonMarshalerType) || rt.Implements(textMarshalerType) {
		return v, nil
	}
	return h(v)
}
