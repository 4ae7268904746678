package generator

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/term"
)

var (
	addStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("green"))
	removeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("red"))
	hunkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	headerStyle = lipgloss.NewStyle().Bold(true)
)

// DiffOptions configures Diff. The zero value gives a plain unified diff
// with three lines of context.
type DiffOptions struct {
	Context int  // unchanged lines around each change
	Color   bool // style added, removed and hunk lines
	Width   int  // truncate lines to this many columns; 0 keeps them whole
}

// Diff returns a unified diff from old to newer, or "" when they are equal.
// An old of nil diffs against an empty file.
func Diff(path string, old, newer []byte, opts DiffOptions) string {
	if bytes.Equal(old, newer) {
		return ""
	}
	if isBinary(old) || isBinary(newer) {
		return fmt.Sprintf("Binary files %s differ\n", path)
	}

	context := opts.Context
	if context <= 0 {
		context = 3
	}
	from := "a/" + path
	if old == nil {
		from = "/dev/null"
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(string(old)),
		B:        splitLines(string(newer)),
		FromFile: from,
		ToFile:   "b/" + path,
		Context:  context,
	})
	if err != nil {
		return fmt.Sprintf("diff %s: %v\n", path, err)
	}
	if !opts.Color && opts.Width <= 0 {
		return text
	}

	var b strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		body := strings.TrimSuffix(line, "\n")
		if opts.Width > 0 {
			body = truncateLine(body, opts.Width)
		}
		if opts.Color {
			body = styleLine(body)
		}
		b.WriteString(body)
		b.WriteByte('\n')
	}
	return b.String()
}

func styleLine(line string) string {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return headerStyle.Render(line)
	case strings.HasPrefix(line, "@@"):
		return hunkStyle.Render(line)
	case strings.HasPrefix(line, "+"):
		return addStyle.Render(line)
	case strings.HasPrefix(line, "-"):
		return removeStyle.Render(line)
	default:
		return line
	}
}

// splitLines splits s into newline-terminated lines without the empty tail
// difflib.SplitLines leaves behind.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] += "\n"
	}
	return lines
}

func isBinary(data []byte) bool {
	n := len(data)
	if n > 8000 {
		n = 8000
	}
	return bytes.IndexByte(data[:n], 0) >= 0
}

func truncateLine(s string, maxWidth int) string {
	if utf8.RuneCountInString(s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	if maxWidth <= 3 {
		return string(runes[:maxWidth])
	}
	return string(runes[:maxWidth-3]) + "..."
}

// terminalSize returns the size of f when it is a terminal.
func terminalSize(f *os.File) (width, height int, ok bool) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0, 0, false
	}
	width, height, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return 80, 24, true
	}
	return width, height, true
}
