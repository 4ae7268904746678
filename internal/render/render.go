// Package render parses and executes text templates with a shared function map.
package render

import (
	"bytes"
	"embed"
	"encoding/xml"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Renderer handles template parsing and rendering with caching
type Renderer struct {
	funcMap template.FuncMap
	cache   map[string]*template.Template
	mu      sync.RWMutex
}

// NewRenderer creates a renderer with sprig's functions plus petrel helpers
func NewRenderer() *Renderer {
	return &Renderer{
		funcMap: defaultFuncMap(),
		cache:   make(map[string]*template.Template),
	}
}

// RenderFS renders a template from an embedded filesystem. Parsed templates
// are cached by path.
func (r *Renderer) RenderFS(fsys embed.FS, path string, data any) ([]byte, error) {
	return r.render("fs:"+path, data, func() (string, error) {
		b, err := fsys.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read template from fs '%s': %w", path, err)
		}
		return string(b), nil
	})
}

func (r *Renderer) render(key string, data any, source func() (string, error)) ([]byte, error) {
	r.mu.RLock()
	tmpl, ok := r.cache[key]
	r.mu.RUnlock()

	if !ok {
		text, err := source()
		if err != nil {
			return nil, err
		}

		name := key[strings.Index(key, ":")+1:]
		tmpl, err = template.New(name).Funcs(r.funcMap).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template '%s': %w", name, err)
		}

		r.mu.Lock()
		r.cache[key] = tmpl
		r.mu.Unlock()
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render template '%s': %w", tmpl.Name(), err)
	}
	return buf.Bytes(), nil
}

func defaultFuncMap() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	funcs["xml"] = XMLEscape
	return funcs
}

// XMLEscape escapes s for use as XML character data
func XMLEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
