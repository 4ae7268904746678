package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mode is the push environment the app is signed for.
type Mode string

// Modes.
const (
	Development Mode = "development"
	Production  Mode = "production"
)

// DefaultBundleName names the extension target when none is requested.
const DefaultBundleName = "NotificationServiceExtension"

// CapabilityRequest is the normalized request. Extra values are either
// string or []string.
type CapabilityRequest struct {
	Mode                Mode
	AppGroups           []string
	RemoteNotifications bool
	Fetch               bool
	Intents             []string
	DelegateCode        string
	DelegateImports     []string
	BundleName          string
	SourceFiles         []string // absolute paths
	Frameworks          []string
	ExtraBuildSettings  map[string]any
	ExtraInfoPlist      map[string]any
}

// FieldError reports an invalid or missing configuration field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

// FieldErrors collects every invalid field of a request.
type FieldErrors []*FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the individual field errors to errors.As.
func (e FieldErrors) Unwrap() []error {
	out := make([]error, len(e))
	for i, fe := range e {
		out[i] = fe
	}
	return out
}

// Normalize validates the file and returns the fully-defaulted request.
// Relative source files resolve against projectRoot.
func (f *File) Normalize(projectRoot string) (CapabilityRequest, error) {
	var errs FieldErrors
	r := f.NSE

	req := CapabilityRequest{
		Mode:                Development,
		AppGroups:           compact(r.AppGroup),
		RemoteNotifications: true,
		Intents:             compact(r.Intents),
		DelegateCode:        r.AppDelegate.RemoteNotificationsDelegate,
		DelegateImports:     compact(r.AppDelegate.Imports),
		BundleName:          DefaultBundleName,
		Frameworks:          compact(r.Extension.Frameworks),
	}

	if strings.TrimSpace(f.App.Name) == "" {
		errs = append(errs, &FieldError{Field: "app.name", Reason: "is required"})
	}

	switch Mode(r.Mode) {
	case "":
	case Development, Production:
		req.Mode = Mode(r.Mode)
	default:
		errs = append(errs, &FieldError{Field: "nse.mode", Reason: fmt.Sprintf("must be %q or %q, got %q", Development, Production, r.Mode)})
	}

	if r.BackgroundModes.RemoteNotifications != nil {
		req.RemoteNotifications = *r.BackgroundModes.RemoteNotifications
	}
	if r.BackgroundModes.Fetch != nil {
		req.Fetch = *r.BackgroundModes.Fetch
	}

	if name := r.Extension.BundleName; name != "" {
		switch {
		case strings.TrimSpace(name) == "":
			errs = append(errs, &FieldError{Field: "nse.extension.bundleName", Reason: "must not be blank"})
		case strings.ContainsAny(name, `/\`) || name == "." || name == "..":
			errs = append(errs, &FieldError{Field: "nse.extension.bundleName", Reason: "must be a plain name, got " + name})
		default:
			req.BundleName = name
		}
	}

	// Sources are copied flat into the extension directory.
	bases := make(map[string]string)
	for _, src := range compact(r.Extension.SourceFiles) {
		if !filepath.IsAbs(src) {
			src = filepath.Join(projectRoot, src)
		}
		src = filepath.Clean(src)
		base := filepath.Base(src)
		if prev, dup := bases[base]; dup {
			errs = append(errs, &FieldError{
				Field:  "nse.extension.sourceFiles",
				Reason: fmt.Sprintf("%s and %s share the file name %s", prev, src, base),
			})
			continue
		}
		bases[base] = src
		req.SourceFiles = append(req.SourceFiles, src)
	}

	var err *FieldError
	if req.ExtraBuildSettings, err = normalizeValues("nse.extension.extraBuildSettings", r.Extension.ExtraBuildSettings, true); err != nil {
		errs = append(errs, err)
	}
	if req.ExtraInfoPlist, err = normalizeValues("nse.extension.extraInfoPlist", r.Extension.ExtraInfoPlist, false); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return CapabilityRequest{}, errs
	}
	return req, nil
}

// compact drops blank entries and duplicates, keeping first-seen order.
func compact(list StringList) []string {
	seen := make(map[string]bool, len(list))
	var out []string
	for _, s := range list {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// normalizeValues turns YAML values into strings or string lists, keeping
// scalars as written. Booleans become YES/NO when yesNo is set, as build
// settings spell them.
func normalizeValues(field string, in map[string]yaml.Node, yesNo bool) (map[string]any, *FieldError) {
	if len(in) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(in))
	for _, k := range keys {
		node := in[k]
		switch node.Kind {
		case yaml.SequenceNode:
			list := make([]string, 0, len(node.Content))
			for _, item := range node.Content {
				s, ok := scalar(item, yesNo)
				if !ok {
					return nil, &FieldError{Field: field + "." + k, Reason: "lists may only hold scalar values"}
				}
				list = append(list, s)
			}
			out[k] = list
		default:
			s, ok := scalar(&node, yesNo)
			if !ok {
				return nil, &FieldError{Field: field + "." + k, Reason: "must be a scalar or a list of scalars"}
			}
			out[k] = s
		}
	}
	return out, nil
}

func scalar(node *yaml.Node, yesNo bool) (string, bool) {
	if node.Kind != yaml.ScalarNode {
		return "", false
	}
	if yesNo && node.ShortTag() == "!!bool" {
		var b bool
		if err := node.Decode(&b); err != nil {
			return "", false
		}
		if b {
			return "YES", true
		}
		return "NO", true
	}
	return node.Value, true
}
