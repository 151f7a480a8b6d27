// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sentinel-vault/sentinel/internal/core"
	"github.com/sentinel-vault/sentinel/internal/i18n"
	"github.com/sentinel-vault/sentinel/internal/vault"
)

// sharesModel manages the grantees of one artifact.
type sharesModel struct {
	artifact vault.Descriptor
	grantees []string
	cursor   int
	input    textinput.Model
	adding   bool
	loading  bool
	err      error
}

func newSharesModel(d vault.Descriptor) *sharesModel {
	in := textinput.New()
	in.Placeholder = i18n.T("tui.shares.placeholder")
	in.CharLimit = 254
	return &sharesModel{artifact: d, input: in, loading: true}
}

func (s *sharesModel) setGrantees(g []string) {
	s.grantees = g
	if s.cursor >= len(g) {
		s.cursor = max(len(g)-1, 0)
	}
}

func (s *sharesModel) selected() (string, bool) {
	if s.cursor < 0 || s.cursor >= len(s.grantees) {
		return "", false
	}
	return s.grantees[s.cursor], true
}

func (m mainModel) updateShares(msg tea.Msg) (tea.Model, tea.Cmd) {
	s := m.shares
	if s == nil {
		m.screen = artifactsScreen
		return m, nil
	}
	switch msg := msg.(type) {
	case sharesLoadedMsg:
		if msg.id != s.artifact.ID {
			return m, nil
		}
		s.loading = false
		s.err = msg.err
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		s.setGrantees(msg.grantees)
		return m, nil

	case shareMutatedMsg:
		if msg.id != s.artifact.ID {
			return m, nil
		}
		s.loading = false
		if msg.err != nil {
			// The server's own wording, e.g. "User not registered".
			m.fail(msg.err)
			return m, nil
		}
		text := msg.outcome.Message
		if text == "" {
			text = i18n.T("tui.done")
		}
		if msg.outcome.RefreshErr != nil {
			m.setStatus(text+" "+i18n.T("cli.refresh_failed", core.Describe(msg.outcome.RefreshErr)), true)
			return m, nil
		}
		m.setStatus(text, false)
		s.setGrantees(msg.outcome.Grantees)
		return m, nil

	case tea.KeyMsg:
		if s.adding {
			switch msg.String() {
			case "esc":
				s.adding = false
				s.input.Blur()
				s.input.SetValue("")
				return m, nil
			case "enter":
				grantee := strings.TrimSpace(s.input.Value())
				if grantee == "" {
					return m, nil
				}
				s.adding = false
				s.input.Blur()
				s.input.SetValue("")
				s.loading = true
				return m, grantCmd(m.ctx, m.app, s.artifact.ID, grantee)
			}
			var cmd tea.Cmd
			s.input, cmd = s.input.Update(msg)
			return m, cmd
		}
		if s.loading {
			if msg.String() == "esc" {
				m.shares = nil
				m.screen = artifactsScreen
			}
			return m, nil
		}
		switch msg.String() {
		case "esc", "q":
			m.shares = nil
			m.screen = artifactsScreen
			return m, nil
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.grantees)-1 {
				s.cursor++
			}
		case "a":
			s.adding = true
			return m, s.input.Focus()
		case "r":
			s.loading = true
			return m, loadSharesCmd(m.ctx, m.app, s.artifact.ID)
		case "d", "x":
			grantee, ok := s.selected()
			if !ok {
				return m, nil
			}
			id := s.artifact.ID
			m.ask(i18n.T("tui.revoke.title"), i18n.T("cli.share.revoke_confirm", grantee), revokeCmd(m.ctx, m.app, id, grantee))
			return m, nil
		}
	}
	return m, nil
}

func (s *sharesModel) View() string {
	rows := []string{
		lipgloss.NewStyle().Bold(true).Render(i18n.T("tui.shares.title", s.artifact.FileName)),
		"",
	}
	switch {
	case s.loading && len(s.grantees) == 0:
		rows = append(rows, helpStyle.Render(i18n.T("tui.loading")))
	case len(s.grantees) == 0:
		rows = append(rows, helpStyle.Render(i18n.T("cli.share.none")))
	default:
		for i, g := range s.grantees {
			if i == s.cursor {
				rows = append(rows, selectedItemStyle.Render("▸ "+g))
			} else {
				rows = append(rows, itemStyle.Render("  "+g))
			}
		}
	}
	if s.adding {
		rows = append(rows, "", i18n.T("tui.shares.add_label")+" "+s.input.View())
	}
	return paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
