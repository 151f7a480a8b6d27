// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/sentinel-vault/sentinel/internal/media"
)

const (
	colorSubtle    = lipgloss.Color("240") // Muted gray
	colorHighlight = lipgloss.Color("81")  // Teal
	colorSpecial   = lipgloss.Color("208") // Orange, destructive actions
	colorError     = lipgloss.Color("196")
	colorSuccess   = lipgloss.Color("40")
	colorWhite     = lipgloss.Color("231")
)

var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	helpStyle    = lipgloss.NewStyle().Foreground(colorSubtle)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	specialStyle = lipgloss.NewStyle().Foreground(colorSpecial)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true).
			Padding(1, 2)

	itemStyle         = lipgloss.NewStyle()
	selectedItemStyle = lipgloss.NewStyle().Foreground(colorHighlight)

	formItemStyle         = lipgloss.NewStyle().Width(12)
	formSelectedItemStyle = lipgloss.NewStyle().Width(12).Foreground(colorHighlight)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Background(lipgloss.Color("236")).
			Padding(0, 1).
			Italic(true)

	statusMessageStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Foreground(colorWhite).
				Background(colorHighlight)
)

// kindStyle colors a media kind the same everywhere it is shown.
func kindStyle(k media.Kind) lipgloss.Style {
	switch k {
	case media.Video:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	case media.Audio:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	default:
		return lipgloss.NewStyle().Foreground(colorHighlight)
	}
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorSubtle).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(colorWhite).
		Background(lipgloss.Color("60")).
		Bold(false)
	return s
}
