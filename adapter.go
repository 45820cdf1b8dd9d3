package metify

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"sync"
)

const defaultAdapterName = "json"

// EncodeOpt is passed to an Encoder.
type EncodeOpt struct {
	Indent string // empty means compact output
}

// Encoder turns a plain value tree into bytes. *Document values implement
// json.Marshaler and yaml.Marshaler so key order survives encoding.
type Encoder func(v any, opt EncodeOpt) ([]byte, error)

// Decoder turns bytes into a plain value tree. Numbers should come back as
// int64 when integral and float64 otherwise (see NormalizeNumbers). Parse
// failures may be returned as *JSONDecodeError to report an offset.
type Decoder func(data []byte) (any, error)

type jsonAdapter struct {
	enc Encoder
	dec Decoder
}

var (
	adaptersMu sync.RWMutex
	adapters   = map[string]jsonAdapter{
		defaultAdapterName: {enc: stdEncode, dec: stdDecode},
	}
)

// RegisterJSONAdapter adds or replaces a named codec. nil functions keep the
// existing half (or the default) so encoder-only adapters are possible.
func RegisterJSONAdapter(name string, enc Encoder, dec Decoder) {
	adaptersMu.Lock()
	defer adaptersMu.Unlock()
	a := adapters[name]
	if enc != nil {
		a.enc = enc
	}
	if dec != nil {
		a.dec = dec
	}
	adapters[name] = a
}

// JSONAdapters lists the registered adapter names, sorted.
func JSONAdapters() []string {
	adaptersMu.RLock()
	defer adaptersMu.RUnlock()
	names := make([]string, 0, len(adapters))
	for n := range adapters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// GetEncoder returns the named encoder. Unknown names fall back to the
// built-in "json" encoder and log a warning; this never fails.
func GetEncoder(name string) Encoder {
	adaptersMu.RLock()
	a, ok := adapters[name]
	std := adapters[defaultAdapterName]
	adaptersMu.RUnlock()
	if ok && a.enc != nil {
		return a.enc
	}
	logger().Warn("metify: json encoder not available, falling back", "requested", name, "fallback", defaultAdapterName)
	if std.enc == nil {
		return stdEncode
	}
	return std.enc
}

// GetDecoder returns the named decoder with the same fallback as GetEncoder.
func GetDecoder(name string) Decoder {
	adaptersMu.RLock()
	a, ok := adapters[name]
	std := adapters[defaultAdapterName]
	adaptersMu.RUnlock()
	if ok && a.dec != nil {
		return a.dec
	}
	logger().Warn("metify: json decoder not available, falling back", "requested", name, "fallback", defaultAdapterName)
	if std.dec == nil {
		return stdDecode
	}
	return std.dec
}

func stdEncode(v any, opt EncodeOpt) ([]byte, error) {
	if opt.Indent != "" {
		return json.MarshalIndent(v, "", opt.Indent)
	}
	return json.Marshal(v)
}

func stdDecode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		off := int64(-1)
		var se *json.SyntaxError
		if errors.As(err, &se) {
			off = se.Offset
		}
		return nil, &JSONDecodeError{Adapter: defaultAdapterName, Offset: off, Cause: err}
	}
	if dec.More() {
		return nil, &JSONDecodeError{Adapter: defaultAdapterName, Offset: dec.InputOffset(), Cause: errors.New("trailing data after JSON value")}
	}
	return NormalizeNumbers(v), nil
}

// NormalizeNumbers rewrites json.Number leaves into int64 or float64 and
// integral Go ints into int64, recursively.
func NormalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case uint64:
		if t <= 1<<63-1 {
			return int64(t)
		}
		return float64(t)
	case map[string]any:
		for k, e := range t {
			t[k] = NormalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = NormalizeNumbers(e)
		}
		return t
	}
	return v
}
