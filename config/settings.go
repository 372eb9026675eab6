package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Settings is a read view over the merged configuration tree.
type Settings struct {
	v *viper.Viper
}

// NewSettings wraps an existing viper instance.
func NewSettings(v *viper.Viper) *Settings {
	return &Settings{v: v}
}

// FromMap builds Settings from a nested map. Useful in tests and for
// embedding filekit without a config file.
func FromMap(values map[string]any) *Settings {
	v := viper.New()
	for k, val := range values {
		v.Set(k, val)
	}
	return &Settings{v: v}
}

// Viper exposes the underlying viper instance.
func (s *Settings) Viper() *viper.Viper { return s.v }

// String returns the string value at key.
func (s *Settings) String(key string) string { return s.v.GetString(key) }

// IsSet reports whether key has a value from any source.
func (s *Settings) IsSet(key string) bool { return s.v.IsSet(key) }

// Set overrides key for the lifetime of this Settings.
func (s *Settings) Set(key string, value any) { s.v.Set(key, value) }

// Unmarshal decodes the whole tree into cfg.
func (s *Settings) Unmarshal(cfg any) error { return s.v.Unmarshal(cfg) }

// UnmarshalKey decodes the subtree at key into cfg.
func (s *Settings) UnmarshalKey(key string, cfg any) error { return s.v.UnmarshalKey(key, cfg) }

// Map returns a copy of the subtree at key, or nil when key is not a map.
//
// It walks AllSettings rather than calling GetStringMap because a single
// environment override such as filesystem.disks.local.root would otherwise
// shadow the sibling keys read from the config file.
func (s *Settings) Map(key string) map[string]any {
	var node any = s.v.AllSettings()
	for _, part := range strings.Split(strings.ToLower(key), ".") {
		m, ok := asMap(node)
		if !ok {
			return nil
		}
		node, ok = m[part]
		if !ok {
			return nil
		}
	}
	m, ok := asMap(node)
	if !ok {
		return nil
	}
	return copyMap(m)
}

// Keys returns the immediate child keys of the map at key.
func (s *Settings) Keys(key string) []string {
	m := s.Map(key)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func asMap(node any) (map[string]any, bool) {
	switch m := node.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			if ks, ok := k.(string); ok {
				out[ks] = v
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if child, ok := asMap(v); ok {
			out[k] = copyMap(child)
			continue
		}
		out[k] = v
	}
	return out
}
