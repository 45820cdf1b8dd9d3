package metify

import (
	"fmt"
	"maps"
	"reflect"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/reoring/metify/alias"
)

// DefaultMaxDepth bounds Dump/Load nesting when Config.MaxDepth is unset.
const DefaultMaxDepth = 64

// Config holds per-model behavior. Zero-valued fields inherit from the parent
// model, then from the library defaults (Strict, GenerateInit and GenerateRepr
// default to on, everything else to off).
type Config struct {
	SerializeByAlias     Switch
	AliasGenerator       func(name string) string
	ExcludeNoneByDefault Switch
	Strict               Switch
	Frozen               Switch
	GenerateInit         Switch
	GenerateRepr         Switch

	// JSONAdapter names the codec used by JSONDumps/JSONLoads ("json" when empty).
	JSONAdapter string
	// JSONEncoders maps exact runtime types to serializers scoped to this model.
	JSONEncoders map[reflect.Type]Serializer
	// JSONDefaultHandler converts values the JSON helpers cannot represent.
	JSONDefaultHandler func(v any) (any, error)
	// MaxDepth bounds nesting during Dump and Load. Every nested model, list
	// and mapping counts as one level, the same way in both directions.
	MaxDepth int
}

// Merge returns c overlaid with child: every key set on child wins, unset keys
// keep c's value. JSONEncoders are merged per type.
func (c Config) Merge(child Config) Config {
	out := c
	out.SerializeByAlias = child.SerializeByAlias.Or(c.SerializeByAlias)
	out.ExcludeNoneByDefault = child.ExcludeNoneByDefault.Or(c.ExcludeNoneByDefault)
	out.Strict = child.Strict.Or(c.Strict)
	out.Frozen = child.Frozen.Or(c.Frozen)
	out.GenerateInit = child.GenerateInit.Or(c.GenerateInit)
	out.GenerateRepr = child.GenerateRepr.Or(c.GenerateRepr)
	if child.AliasGenerator != nil {
		out.AliasGenerator = child.AliasGenerator
	}
	if child.JSONAdapter != "" {
		out.JSONAdapter = child.JSONAdapter
	}
	if child.JSONDefaultHandler != nil {
		out.JSONDefaultHandler = child.JSONDefaultHandler
	}
	if child.MaxDepth > 0 {
		out.MaxDepth = child.MaxDepth
	}
	if len(child.JSONEncoders) > 0 {
		m := maps.Clone(c.JSONEncoders)
		if m == nil {
			m = make(map[reflect.Type]Serializer, len(child.JSONEncoders))
		}
		maps.Copy(m, child.JSONEncoders)
		out.JSONEncoders = m
	}
	return out
}

func (c Config) strict() bool       { return c.Strict.Enabled(true) }
func (c Config) byAlias() bool      { return c.SerializeByAlias.Enabled(false) }
func (c Config) excludeNone() bool  { return c.ExcludeNoneByDefault.Enabled(false) }
func (c Config) frozen() bool       { return c.Frozen.Enabled(false) }
func (c Config) generateInit() bool { return c.GenerateInit.Enabled(true) }
func (c Config) generateRepr() bool { return c.GenerateRepr.Enabled(true) }
func (c Config) jsonAdapterName() string {
	if c.JSONAdapter == "" {
		return defaultAdapterName
	}
	return c.JSONAdapter
}

func (c Config) maxDepth() int {
	if c.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}

// ConfigFromMap reads the mapping form of a model configuration. Recognized
// keys: serialize_by_alias, strict, alias_generator, exclude_none_by_default,
// json_default_handler, json_encoders, json_encoder, json_adapter, repr, init,
// slots, frozen, max_depth. Unknown keys are ignored; a recognized key with a
// value of the wrong type is a ConfigurationError.
func ConfigFromMap(model string, m map[string]any) (Config, error) {
	var c Config
	bad := func(key string, v any) error {
		return &ConfigurationError{Model: model, Reason: fmt.Sprintf("config key %q: unsupported value %v (%T)", key, v, v)}
	}
	switches := map[string]*Switch{
		"serialize_by_alias":      &c.SerializeByAlias,
		"strict":                  &c.Strict,
		"exclude_none_by_default": &c.ExcludeNoneByDefault,
		"frozen":                  &c.Frozen,
		"init":                    &c.GenerateInit,
		"repr":                    &c.GenerateRepr,
	}
	for _, key := range slices.Sorted(maps.Keys(m)) {
		v := m[key]
		if dst, ok := switches[key]; ok {
			b, ok := v.(bool)
			if !ok {
				return Config{}, bad(key, v)
			}
			*dst = SwitchOf(b)
			continue
		}
		switch key {
		case "alias_generator":
			switch g := v.(type) {
			case func(string) string:
				c.AliasGenerator = g
			case string:
				fn, ok := alias.ByName(g)
				if !ok {
					return Config{}, bad(key, v)
				}
				c.AliasGenerator = fn
			default:
				return Config{}, bad(key, v)
			}
		case "json_encoder", "json_adapter":
			name, ok := v.(string)
			if !ok {
				return Config{}, bad(key, v)
			}
			c.JSONAdapter = name
		case "json_default_handler":
			fn, ok := v.(func(any) (any, error))
			if !ok {
				return Config{}, bad(key, v)
			}
			c.JSONDefaultHandler = fn
		case "json_encoders":
			switch enc := v.(type) {
			case map[reflect.Type]Serializer:
				c.JSONEncoders = maps.Clone(enc)
			case map[reflect.Type]func(any) (any, error):
				c.JSONEncoders = make(map[reflect.Type]Serializer, len(enc))
				for t, fn := range enc {
					c.JSONEncoders[t] = fn
				}
			default:
				return Config{}, bad(key, v)
			}
		case "max_depth":
			switch n := v.(type) {
			case int:
				c.MaxDepth = n
			case int64:
				c.MaxDepth = int(n)
			case float64:
				c.MaxDepth = int(n)
			default:
				return Config{}, bad(key, v)
			}
		case "slots":
			// accepted for compatibility; field storage is always fixed
		}
	}
	return c, nil
}

// LoadConfigYAML decodes a YAML mapping with the keys accepted by ConfigFromMap.
func LoadConfigYAML(model string, data []byte) (Config, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Config{}, &ConfigurationError{Model: model, Reason: "yaml: " + err.Error()}
	}
	return ConfigFromMap(model, m)
}
