// Package manifest generates property-list manifests for the extension target
// and patches the host app's existing manifests.
//
// Generated manifests are rebuilt from scratch on every run. Callers pass the
// complete set of entries each time; nothing is merged with the file on disk.
//
// Foreign manifests go through Plist, which keeps values and their format but
// not layout: Encode writes dictionary keys in sorted order, so the first
// patch of a hand-ordered Info.plist reorders it. Later encodes of the same
// values are byte-identical, which keeps repeated runs from rewriting it.
package manifest

import (
	"embed"
	"fmt"
	"strings"

	"github.com/simonhull/firebird-suite/petrel/internal/render"
)

// Placeholder is replaced by the rendered entries in a manifest template.
const Placeholder = "__CONTENT__"

//go:embed templates/*
var templates embed.FS

// BaseTemplate is the XML property-list skeleton with a single Placeholder.
var BaseTemplate = mustRead("templates/base.plist")

var renderer = render.NewRenderer()

func mustRead(path string) string {
	b, err := templates.ReadFile(path)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// Entry is one key of a manifest dictionary: a string, an array of strings
// or a nested dictionary.
type Entry struct {
	Key    string
	Value  string
	Values []string
	Dict   *Document

	kind entryKind
}

type entryKind int

const (
	kindString entryKind = iota
	kindArray
	kindDict
)

// IsArray reports whether the entry renders as an <array>.
func (e Entry) IsArray() bool { return e.kind == kindArray }

// IsDict reports whether the entry renders as a nested <dict>.
func (e Entry) IsDict() bool { return e.kind == kindDict }

// Document is an ordered set of manifest entries.
type Document struct {
	entries []Entry
	index   map[string]int
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{index: make(map[string]int)}
}

// SetString sets a scalar entry. Keys keep the position of their first set.
func (d *Document) SetString(key, value string) {
	d.put(Entry{Key: key, Value: value, kind: kindString})
}

// SetDict sets a nested dictionary entry.
func (d *Document) SetDict(key string, dict *Document) {
	d.put(Entry{Key: key, Dict: dict, kind: kindDict})
}

// AppendArray appends values to the array at key, skipping values already
// present. Order is first-seen. A key that held a scalar becomes an array.
func (d *Document) AppendArray(key string, values ...string) {
	i, ok := d.index[key]
	if !ok || d.entries[i].kind != kindArray {
		d.put(Entry{Key: key, kind: kindArray})
		i = d.index[key]
	}

	e := &d.entries[i]
	for _, v := range values {
		if !containsString(e.Values, v) {
			e.Values = append(e.Values, v)
		}
	}
}

func (d *Document) put(e Entry) {
	if i, ok := d.index[e.Key]; ok {
		d.entries[i] = e
		return
	}
	d.index[e.Key] = len(d.entries)
	d.entries = append(d.entries, e)
}

// Get returns the entry stored at key.
func (d *Document) Get(key string) (Entry, bool) {
	i, ok := d.index[key]
	if !ok {
		return Entry{}, false
	}
	return d.entries[i], true
}

// Entries returns the entries to render. Empty arrays are left out.
func (d *Document) Entries() []Entry {
	out := make([]Entry, 0, len(d.entries))
	for _, e := range d.entries {
		if e.kind == kindArray && len(e.Values) == 0 {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Len returns the number of entries that would be rendered.
func (d *Document) Len() int {
	return len(d.Entries())
}

// Generate renders doc into tmpl, which must contain Placeholder exactly once.
func Generate(tmpl string, doc *Document) (string, error) {
	if n := strings.Count(tmpl, Placeholder); n != 1 {
		return "", fmt.Errorf("manifest template must contain %s exactly once, found %d", Placeholder, n)
	}

	content, err := renderer.RenderFS(templates, "templates/entries.tmpl", map[string]any{
		"Entries": doc.Entries(),
	})
	if err != nil {
		return "", fmt.Errorf("rendering manifest entries: %w", err)
	}

	return strings.Replace(tmpl, Placeholder, strings.Trim(string(content), "\n"), 1), nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
