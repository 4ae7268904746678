// Package merge inserts generated fragments into hand-written source files.
//
// A fragment is placed immediately after a known anchor string and wrapped in
// tagged "@generated" markers:
//
//	#import "AppDelegate.h"
//	// @generated begin REMOTE_NOTIFICATIONS_DELEGATE_IMPORTS - petrel
//	#import <Foo/Foo.h>
//	// @generated end REMOTE_NOTIFICATIONS_DELEGATE_IMPORTS
//
// Merge is a one-shot insertion. It does not look for an earlier copy of the
// fragment; callers check the source for the literal fragment text before
// calling it (see Contains). The anchor is kept in place so later runs can
// find it again, which means anchors must stay byte-stable across versions of
// the host file.
package merge

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Generator is the name stamped on begin markers.
const Generator = "petrel"

// Comment describes the line comment syntax of a file type.
// Close is empty for languages with a line comment.
type Comment struct {
	Open  string
	Close string
}

var (
	// SlashComment marks regions in C, Objective-C and Swift sources.
	SlashComment = Comment{Open: "//"}

	// HashComment marks regions in Ruby, shell and YAML files.
	HashComment = Comment{Open: "#"}

	// XMLComment marks regions in property lists and other XML.
	XMLComment = Comment{Open: "<!--", Close: "-->"}
)

// CommentFor returns the comment syntax for the file at path.
// Unknown extensions fall back to "//".
func CommentFor(path string) Comment {
	base := filepath.Base(path)
	switch base {
	case "Podfile", "Gemfile", "Fastfile":
		return HashComment
	}

	switch strings.ToLower(filepath.Ext(base)) {
	case ".rb", ".sh", ".bash", ".yml", ".yaml", ".toml", ".properties":
		return HashComment
	case ".xml", ".plist", ".entitlements", ".storyboard", ".xib", ".html":
		return XMLComment
	default:
		return SlashComment
	}
}

func (c Comment) line(text string) string {
	if c.Close == "" {
		return c.Open + " " + text
	}
	return c.Open + " " + text + " " + c.Close
}

// BeginMarker returns the line that opens the region for tag.
func BeginMarker(tag string, c Comment) string {
	return c.line(fmt.Sprintf("@generated begin %s - %s", tag, Generator))
}

// EndMarker returns the line that closes the region for tag.
func EndMarker(tag string, c Comment) string {
	return c.line("@generated end " + tag)
}

// Merge returns src with fragment inserted right after the first occurrence
// of anchor, wrapped in begin/end markers for tag. When src does not contain
// anchor it is returned unchanged; a missing anchor is not an error.
func Merge(src, anchor, fragment, tag string, c Comment) string {
	idx := strings.Index(src, anchor)
	if idx < 0 {
		return src
	}

	end := idx + len(anchor)

	var b strings.Builder
	b.Grow(len(src) + len(fragment) + 2*len(tag) + 64)
	b.WriteString(src[:end])
	b.WriteString("\n")
	b.WriteString(BeginMarker(tag, c))
	b.WriteString("\n")
	b.WriteString(fragment)
	b.WriteString("\n")
	b.WriteString(EndMarker(tag, c))
	b.WriteString("\n")
	b.WriteString(src[end:])
	return b.String()
}

// Contains reports whether src already holds fragment verbatim.
// This is the caller-side half of the idempotence contract.
func Contains(src, fragment string) bool {
	return strings.Contains(src, fragment)
}

// HasRegion reports whether src holds a begin marker for tag in any comment
// syntax. Used for diagnostics only; insertion decisions go through Contains.
func HasRegion(src, tag string) bool {
	return strings.Contains(src, fmt.Sprintf("@generated begin %s - ", tag))
}

// Missing returns the fragments not yet present in src, in order and without
// duplicates.
func Missing(src string, fragments []string) []string {
	var out []string
	seen := make(map[string]bool, len(fragments))
	for _, f := range fragments {
		if f == "" || seen[f] || Contains(src, f) {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
