package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, f func()) string {
	t.Helper()
	var buf bytes.Buffer
	prev := SetWriter(&buf)
	t.Cleanup(func() { SetWriter(prev) })
	f()
	return buf.String()
}

func TestMessages(t *testing.T) {
	tests := []struct {
		name  string
		print func(string)
		want  string
	}{
		{"success", Success, "🐦 done"},
		{"error", Error, "❌ done"},
		{"warn", Warn, "⚠️  done"},
		{"info", Info, "ℹ️  done"},
		{"step", Step, "   done"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := capture(t, func() { tt.print("done") })
			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, "\n")
		})
	}
}

func TestVerbose(t *testing.T) {
	t.Cleanup(func() { SetVerbose(false) })

	SetVerbose(false)
	assert.Empty(t, capture(t, func() { Verbose("hidden") }))

	SetVerbose(true)
	assert.Contains(t, capture(t, func() { Verbose("shown") }), "🔍 shown")
}
