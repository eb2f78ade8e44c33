package cmd

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/Tiliavir/git-worklog/internal/config"
)

// colorEnabled decides whether output to w gets styled.
func colorEnabled(setting string, w io.Writer) bool {
	switch setting {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type styles struct {
	enabled bool
	title   lipgloss.Style
	label   lipgloss.Style
	stamp   lipgloss.Style
	muted   lipgloss.Style
	total   lipgloss.Style
}

func newStyles(enabled bool) styles {
	return styles{
		enabled: enabled,
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
		stamp:   lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		muted:   lipgloss.NewStyle().Faint(true),
		total:   lipgloss.NewStyle().Bold(true),
	}
}

func (s styles) render(st lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return st.Render(text)
}
