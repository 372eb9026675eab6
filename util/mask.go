package util

import (
	"fmt"
	"sort"
	"strings"
)

// secretKeys are option names whose values never appear in output.
var secretKeys = []string{"secret", "key", "signing_key", "password", "token", "credentials"}

// IsSecretKey reports whether an option named key holds a credential.
func IsSecretKey(key string) bool {
	key = strings.ToLower(key)
	for _, s := range secretKeys {
		if key == s || strings.HasSuffix(key, "_"+s) {
			return true
		}
	}
	return false
}

// MaskSecret hides all but the first visiblePrefix characters of s. Values
// no longer than the prefix are fully masked.
func MaskSecret(s string, visiblePrefix int) string {
	if len(s) <= visiblePrefix {
		return "***"
	}
	return s[:visiblePrefix] + "***"
}

// FormatOptions renders options as sorted "k=v" pairs with credential
// values masked.
func FormatOptions(options map[string]any) string {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := fmt.Sprint(options[k])
		if IsSecretKey(k) {
			v = MaskSecret(v, 2)
		}
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, " ")
}
