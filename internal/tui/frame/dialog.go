// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package frame

import (
	"github.com/charmbracelet/lipgloss"
)

// Dialog is a modal yes/no box. The left button cancels, the right one
// confirms. Cancel has focus initially.
type Dialog struct {
	title   string
	message string
	cancel  string
	confirm string
	focused bool // false = cancel, true = confirm
	width   int
}

// NewDialog creates a dialog with the given title, message and button labels.
func NewDialog(title, message, cancel, confirm string) *Dialog {
	return &Dialog{
		title:   title,
		message: message,
		cancel:  cancel,
		confirm: confirm,
		width:   60,
	}
}

// SetWidth sets the dialog width.
func (d *Dialog) SetWidth(width int) {
	if width > 0 {
		d.width = width
	}
}

// Message returns the dialog body.
func (d *Dialog) Message() string { return d.message }

// IsFocusedRight reports whether the confirm button has focus.
func (d *Dialog) IsFocusedRight() bool { return d.focused }

// HandleKey applies one key press. done is true once the user decided;
// confirmed tells which way.
func (d *Dialog) HandleKey(key string) (done, confirmed bool) {
	switch key {
	case "left", "h":
		d.focused = false
	case "right", "l":
		d.focused = true
	case "tab", "shift+tab":
		d.focused = !d.focused
	case "y", "Y":
		return true, true
	case "n", "N", "esc", "q":
		return true, false
	case "enter", " ":
		return true, d.focused
	}
	return false, false
}

// Render produces the dialog box.
func (d *Dialog) Render() string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("60")).
		Bold(true).
		Width(d.width).
		Render(" " + d.title)

	message := lipgloss.NewStyle().
		Width(d.width-4).
		Padding(1, 2, 0, 2).
		Render(d.message)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Width(d.width)
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, header, message, d.buttons()))
}

func (d *Dialog) buttons() string {
	base := lipgloss.NewStyle().
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("239")).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("239")).
		Padding(0, 3)
	active := base.
		Background(lipgloss.Color("60")).
		BorderForeground(lipgloss.Color("60"))

	left, right := active, base
	if d.focused {
		left, right = base, active
	}
	row := lipgloss.JoinHorizontal(lipgloss.Center, left.Render(d.cancel), "  ", right.Render(d.confirm))
	return lipgloss.NewStyle().Padding(1, 2).Render(row)
}
