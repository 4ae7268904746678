// Package output prints petrel's styled terminal messages.
//
// Messages go to stdout unless SetWriter redirects them.
package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	mu          sync.Mutex
	writer      io.Writer = os.Stdout
	verboseMode bool
)

// SetVerbose enables or disables verbose output.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verboseMode = v
}

// SetWriter redirects all messages to w and returns the previous writer.
func SetWriter(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := writer
	writer = w
	return prev
}

// Writer returns the current destination.
func Writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return writer
}

// Success reports a completed operation.
//
//	output.Success("Added NotificationServiceExtension")
func Success(msg string) {
	emit(successStyle, "🐦 "+msg)
}

// Error reports a failure that needs the user's attention.
func Error(msg string) {
	emit(errorStyle, "❌ "+msg)
}

// Warn reports something petrel skipped.
func Warn(msg string) {
	emit(warnStyle, "⚠️  "+msg)
}

// Info prints a status line.
func Info(msg string) {
	emit(infoStyle, "ℹ️  "+msg)
}

// Step prints an indented sub-item.
func Step(msg string) {
	emit(stepStyle, "   "+msg)
}

// Verbose prints msg only in verbose mode.
func Verbose(msg string) {
	mu.Lock()
	on := verboseMode
	mu.Unlock()
	if on {
		emit(stepStyle, "🔍 "+msg)
	}
}

func emit(style lipgloss.Style, msg string) {
	w := Writer()
	fmt.Fprintln(w, style.Render(msg))
}
