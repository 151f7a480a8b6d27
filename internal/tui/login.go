// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sentinel-vault/sentinel/internal/i18n"
	"github.com/sentinel-vault/sentinel/internal/security"
)

// loginModel is the email/password form shown whenever there is no session.
type loginModel struct {
	inputs []textinput.Model
	focus  int
	busy   bool
}

func newLoginModel() loginModel {
	email := textinput.New()
	email.Placeholder = "name@example.com"
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 256

	return loginModel{inputs: []textinput.Model{email, password}}
}

func (l loginModel) Init() tea.Cmd { return textinput.Blink }

func (l *loginModel) setFocus(i int) {
	l.focus = (i + len(l.inputs)) % len(l.inputs)
	for j := range l.inputs {
		if j == l.focus {
			l.inputs[j].Focus()
		} else {
			l.inputs[j].Blur()
		}
	}
}

func (l loginModel) email() string { return strings.TrimSpace(l.inputs[0].Value()) }

func (m mainModel) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loggedInMsg:
		m.login.busy = false
		if msg.err != nil {
			m.login.inputs[1].SetValue("")
			m.fail(msg.err)
			return m, nil
		}
		m.login.inputs[1].SetValue("")
		m.screen = artifactsScreen
		m.list.loading = true
		m.setStatus(i18n.T("cli.login.success", msg.email), false)
		return m, loadArtifactsCmd(m.ctx, m.app, true)

	case tea.KeyMsg:
		if m.login.busy {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, tea.Quit
		case "tab", "down":
			m.login.setFocus(m.login.focus + 1)
			return m, nil
		case "shift+tab", "up":
			m.login.setFocus(m.login.focus - 1)
			return m, nil
		case "enter":
			if m.login.focus == 0 {
				m.login.setFocus(1)
				return m, nil
			}
			return m.submitLogin()
		}
	}

	var cmd tea.Cmd
	m.login.inputs[m.login.focus], cmd = m.login.inputs[m.login.focus].Update(msg)
	return m, cmd
}

func (m mainModel) submitLogin() (tea.Model, tea.Cmd) {
	email := m.login.email()
	password := security.FromString(m.login.inputs[1].Value())
	if email == "" || password.IsZero() {
		m.setStatus(i18n.T("tui.login.missing"), true)
		return m, nil
	}
	m.login.busy = true
	m.setStatus(i18n.T("tui.login.busy"), false)
	return m, loginCmd(m.ctx, m.app, email, password)
}

func (l loginModel) View() string {
	labels := []string{i18n.T("tui.login.email"), i18n.T("tui.login.password")}
	rows := make([]string, 0, len(l.inputs)+2)
	rows = append(rows, lipgloss.NewStyle().Bold(true).Render(i18n.T("tui.login.title")), "")
	for i, in := range l.inputs {
		label := formItemStyle.Render(labels[i])
		if i == l.focus {
			label = formSelectedItemStyle.Render(labels[i])
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Left, label, in.View()))
	}
	rows = append(rows, "", helpStyle.Render(i18n.T("tui.login.register_hint")))
	return paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
