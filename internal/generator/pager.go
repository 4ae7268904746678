package generator

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// ShowDiff writes a diff to w. On a terminal it is colored, and a diff
// taller than the screen opens in a scrollable pager.
func ShowDiff(w io.Writer, path string, old, newer []byte) error {
	f, isFile := w.(*os.File)
	if !isFile {
		_, err := io.WriteString(w, Diff(path, old, newer, DiffOptions{}))
		return err
	}
	width, height, tty := terminalSize(f)
	if !tty {
		_, err := io.WriteString(w, Diff(path, old, newer, DiffOptions{}))
		return err
	}

	text := Diff(path, old, newer, DiffOptions{Color: true, Width: width - 4})
	if strings.Count(text, "\n") < height-2 {
		_, err := io.WriteString(w, text)
		return err
	}
	return Page(path, text, os.Stdin, w)
}

// Page shows content in a full-screen scrollable viewport until the user
// quits.
func Page(title, content string, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(newPagerModel(title, content), tea.WithInput(in), tea.WithOutput(out), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running pager: %w", err)
	}
	return nil
}

type pagerModel struct {
	title    string
	content  string
	viewport viewport.Model
	ready    bool
}

func newPagerModel(title, content string) pagerModel {
	return pagerModel{title: title, content: content}
}

func (m pagerModel) Init() tea.Cmd {
	return nil
}

func (m pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		const chrome = 2 // title and footer lines
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-chrome)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - chrome
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m pagerModel) View() string {
	if !m.ready {
		return "Loading diff..."
	}

	title := fmt.Sprintf("── %s ", m.title)
	footer := fmt.Sprintf(" %3.f%%  [↑/↓/pgup/pgdn] scroll  [q] quit ", m.viewport.ScrollPercent()*100)

	var b strings.Builder
	b.WriteString(borderStyle.Render(title+strings.Repeat("─", max(0, m.viewport.Width-lipgloss.Width(title)))) + "\n")
	b.WriteString(m.viewport.View() + "\n")
	b.WriteString(mutedStyle.Render(footer))
	return b.String()
}
