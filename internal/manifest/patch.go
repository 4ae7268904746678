package manifest

import (
	"bytes"
	"fmt"

	"howett.net/plist"
)

// Plist is a decoded property list owned by someone else, such as the host
// app's Info.plist. Unlike generated manifests it is patched in place and
// re-encoded in its original format.
type Plist struct {
	values map[string]any
	format int
}

// ParsePlist decodes a property list dictionary. Empty input yields an empty
// XML dictionary, so a missing entitlements file can be created.
func ParsePlist(data []byte) (*Plist, error) {
	p := &Plist{values: make(map[string]any), format: plist.XMLFormat}
	if len(bytes.TrimSpace(data)) == 0 {
		return p, nil
	}

	format, err := plist.Unmarshal(data, &p.values)
	if err != nil {
		return nil, fmt.Errorf("decoding property list: %w", err)
	}
	p.format = format
	return p, nil
}

// Get returns the raw value stored at key.
func (p *Plist) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Strings returns the string elements of the array at key.
func (p *Plist) Strings(key string) []string {
	arr, _ := p.values[key].([]any)
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// SetDefault sets key to value only if key is absent or empty.
// Reports whether the document changed.
func (p *Plist) SetDefault(key, value string) bool {
	if cur, ok := p.values[key]; ok && cur != nil && cur != "" {
		return false
	}
	p.values[key] = value
	return true
}

// MergeArray appends values missing from the array at key, creating the
// array when absent. A non-array value at key is replaced. Reports whether
// the document changed.
func (p *Plist) MergeArray(key string, values ...string) bool {
	if len(values) == 0 {
		return false
	}

	cur, isArray := p.values[key].([]any)
	changed := !isArray
	if !isArray {
		cur = []any{}
	}

	for _, v := range values {
		if !containsAny(cur, v) {
			cur = append(cur, v)
			changed = true
		}
	}

	if changed {
		p.values[key] = cur
	}
	return changed
}

// Encode serializes the property list in the format it was read in, with
// dictionary keys sorted.
func (p *Plist) Encode() ([]byte, error) {
	out, err := plist.MarshalIndent(p.values, p.format, "\t")
	if err != nil {
		return nil, fmt.Errorf("encoding property list: %w", err)
	}
	if p.format != plist.BinaryFormat && !bytes.HasSuffix(out, []byte("\n")) {
		out = append(out, '\n')
	}
	return out, nil
}

func containsAny(list []any, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
