package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the lipgloss styles for the TUI.
type Styles struct {
	App lipgloss.Style

	// Title
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Heading  lipgloss.Style

	// Status
	StatusOnline  lipgloss.Style
	StatusOffline lipgloss.Style

	// Content
	Table   table.Styles
	Prompt  lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	Help lipgloss.Style
}

// DefaultStyles returns the default color scheme.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight := lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special := lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	muted := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}

	tbl := table.DefaultStyles()
	tbl.Header = tbl.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(subtle).
		BorderBottom(true).
		Bold(true)
	tbl.Selected = tbl.Selected.
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(highlight).
		Bold(false)

	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(highlight).
			Padding(0, 1),

		Subtitle: lipgloss.NewStyle().
			Foreground(muted),

		Heading: lipgloss.NewStyle().
			Foreground(highlight).
			Bold(true).
			MarginBottom(1),

		StatusOnline: lipgloss.NewStyle().
			Foreground(special).
			Bold(true),

		StatusOffline: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),

		Table: tbl,

		Prompt: lipgloss.NewStyle().
			Foreground(highlight).
			Bold(true),

		Label: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}),

		Value: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#343433", Dark: "#C1C6B2"}),

		Muted: lipgloss.NewStyle().
			Foreground(muted),

		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")),

		Success: lipgloss.NewStyle().
			Foreground(special),

		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFCC00")),

		Help: lipgloss.NewStyle().
			Foreground(muted).
			MarginTop(1),
	}
}
