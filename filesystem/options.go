package filesystem

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Options is a disk's merged configuration as handed to a DriverFactory.
// Keys are lower-case.
type Options map[string]any

// MergeOptions layers maps left to right; later keys win. Keys are
// lower-cased so "Root" in an override replaces "root" from a file.
func MergeOptions(layers ...map[string]any) Options {
	out := make(Options)
	for _, layer := range layers {
		for k, v := range layer {
			out[strings.ToLower(k)] = v
		}
	}
	return out
}

// String returns the value at key formatted as a string, or "".
func (o Options) String(key string) string {
	v, ok := o[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Clone returns a shallow copy.
func (o Options) Clone() Options {
	return MergeOptions(o)
}

// Decode fills out from the options using mapstructure tags. Strings are
// weakly converted so values from environment variables decode into
// bools, ints and durations.
func (o Options) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(o))
}
