package render

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the text styles for one output. Colors are dropped when the
// writer is not a terminal.
type Styles struct {
	Title  lipgloss.Style
	Header lipgloss.Style
	Name   lipgloss.Style
	Core   lipgloss.Style
	Subtle lipgloss.Style
	Flag   lipgloss.Style
}

// NewStyles creates styles bound to w's color profile.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)

	return Styles{
		Title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")),

		Header: r.NewStyle().
			Bold(true),

		Name: r.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")),

		Core: r.NewStyle().
			Foreground(lipgloss.Color("#04B575")),

		Subtle: r.NewStyle().
			Foreground(lipgloss.Color("#888888")),

		Flag: r.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true),
	}
}
