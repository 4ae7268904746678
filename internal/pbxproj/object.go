package pbxproj

import "strings"

// Object is a single record of the objects table. Values are strings,
// []any lists or map[string]any dictionaries, as decoded.
type Object map[string]any

// String returns the string value at key with surrounding quotes removed.
func (o Object) String(key string) string {
	s, _ := o[key].(string)
	return Unquote(s)
}

// Has reports whether key is present with a non-empty value.
func (o Object) Has(key string) bool {
	switch v := o[key].(type) {
	case nil:
		return false
	case string:
		return Unquote(v) != ""
	default:
		return true
	}
}

// List returns the string elements of the list at key.
func (o Object) List(key string) []string {
	raw, _ := o[key].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Append adds values to the list at key, creating it when needed.
func (o Object) Append(key string, values ...string) {
	raw, _ := o[key].([]any)
	for _, v := range values {
		raw = append(raw, v)
	}
	o[key] = raw
}

// Contains reports whether the list at key holds value.
func (o Object) Contains(key, value string) bool {
	for _, v := range o.List(key) {
		if v == value {
			return true
		}
	}
	return false
}

// LookupDict returns the dictionary at key without creating it.
func (o Object) LookupDict(key string) (Object, bool) {
	switch v := o[key].(type) {
	case map[string]any:
		return Object(v), true
	case Object:
		return v, true
	}
	return nil, false
}

// Unquote strips one pair of surrounding double quotes, which some tools
// leave around values such as PRODUCT_NAME.
func Unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}

// listOf converts strings to the decoded list representation.
func listOf(values ...string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
