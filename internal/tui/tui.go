// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package tui provides the terminal user interface for Sentinel.
// This file holds the top-level model that routes between the login form,
// the artifact table, the shares dialog, the file picker and the viewer.
package tui

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sentinel-vault/sentinel/internal/core"
	"github.com/sentinel-vault/sentinel/internal/i18n"
	"github.com/sentinel-vault/sentinel/internal/logging"
	"github.com/sentinel-vault/sentinel/internal/session"
	"github.com/sentinel-vault/sentinel/internal/tui/frame"
	"github.com/sentinel-vault/sentinel/internal/vault"
)

type screen int

const (
	loginScreen screen = iota
	artifactsScreen
	sharesScreen
	pickerScreen
	viewerScreen
)

// mainModel is the top-level model. It owns the app and routes messages to
// the active screen.
type mainModel struct {
	ctx    context.Context
	app    *core.App
	events events

	screen  screen
	login   loginModel
	list    artifactsModel
	shares  *sharesModel
	picker  *pickerModel
	viewer  *viewerModel
	confirm *confirmModel

	viewSeq   int
	status    string
	statusErr bool
	width     int
	height    int
}

// confirmModel is a modal question; onConfirm runs when it is accepted.
type confirmModel struct {
	dialog    *frame.Dialog
	onConfirm tea.Cmd
}

// Run starts the TUI on app and blocks until the user quits.
func Run(app *core.App) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Log lines would tear the alternate screen; send them to a file.
	if f, err := openLogFile(); err == nil {
		logging.SetOutput(f)
		defer func() {
			logging.SetOutput(os.Stderr)
			_ = f.Close()
		}()
	} else {
		logging.SetOutput(io.Discard)
		defer logging.SetOutput(os.Stderr)
	}
	for _, p := range app.Router.Pipes() {
		p.Stdout, p.Stderr = io.Discard, io.Discard
	}

	m := newModel(ctx, app)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logging.Errorf("TUI run error: %v", err)
		return err
	}
	return nil
}

func openLogFile() (*os.File, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}
	dir = filepath.Join(dir, "sentinel")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "sentinel-tui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

// newModel wires the session and viewer notifications into the model.
func newModel(ctx context.Context, app *core.App) mainModel {
	ev := make(events, 16)
	app.Holder.OnClear(func(r session.ClearReason) { ev.post(sessionEndedMsg{reason: r}) })
	if app.Browser != nil {
		app.Browser.Announce = func(u *url.URL) { ev.post(urlAnnouncedMsg{url: u}) }
	}

	m := mainModel{
		ctx:    ctx,
		app:    app,
		events: ev,
		login:  newLoginModel(),
		list:   newArtifactsModel(),
	}
	if _, ok := app.Holder.Get(); ok {
		m.screen = artifactsScreen
		m.list.loading = true
	}
	return m
}

func (m mainModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.events.listen()}
	if m.screen == artifactsScreen {
		cmds = append(cmds, loadArtifactsCmd(m.ctx, m.app, false))
	} else {
		cmds = append(cmds, m.login.Init())
	}
	return tea.Batch(cmds...)
}

func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.setSize(msg.Width, msg.Height)
		if m.picker != nil {
			m.picker.setSize(msg.Width, msg.Height)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.teardownViewer()
			return m, tea.Quit
		}
		if m.confirm != nil {
			return m.updateConfirm(msg)
		}

	case sessionEndedMsg:
		m.teardownViewer()
		m.screen = loginScreen
		m.shares = nil
		m.picker = nil
		m.confirm = nil
		m.list.reset()
		m.login = newLoginModel()
		if msg.reason == session.ReasonLogout {
			m.setStatus(i18n.T("tui.status.logged_out"), false)
		} else {
			m.setStatus(i18n.T("tui.status.session_ended"), true)
		}
		return m, tea.Batch(m.events.listen(), m.login.Init())

	case urlAnnouncedMsg:
		if m.viewer != nil {
			m.viewer.url = msg.url
		}
		return m, m.events.listen()

	case loggedOutMsg:
		if msg.err != nil {
			m.setStatus(core.Describe(msg.err), true)
		}
		return m, nil

	case openedMsg:
		return m.handleOpened(msg)

	case presentDoneMsg:
		return m.handlePresentDone(msg)
	}

	switch m.screen {
	case loginScreen:
		return m.updateLogin(msg)
	case sharesScreen:
		return m.updateShares(msg)
	case pickerScreen:
		return m.updatePicker(msg)
	case viewerScreen:
		return m.updateViewer(msg)
	default:
		return m.updateArtifacts(msg)
	}
}

func (m *mainModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// fail shows err and reports whether it ended the session; in that case the
// sessionEndedMsg will move the UI to the login screen.
func (m *mainModel) fail(err error) bool {
	m.setStatus(core.Describe(err), true)
	return vault.IsSessionEnding(err) || errors.Is(err, session.ErrSessionMissing)
}

func (m *mainModel) ask(title, message string, onConfirm tea.Cmd) {
	d := frame.NewDialog(title, message, i18n.T("tui.button.cancel"), i18n.T("tui.button.confirm"))
	m.confirm = &confirmModel{dialog: d, onConfirm: onConfirm}
}

func (m mainModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	done, ok := m.confirm.dialog.HandleKey(msg.String())
	if !done {
		return m, nil
	}
	cmd := m.confirm.onConfirm
	m.confirm = nil
	if !ok {
		m.setStatus(i18n.T("cli.aborted"), false)
		return m, nil
	}
	return m, cmd
}

func (m mainModel) View() string {
	var body string
	switch m.screen {
	case loginScreen:
		body = m.login.View()
	case sharesScreen:
		body = m.shares.View()
	case pickerScreen:
		body = m.picker.View()
	case viewerScreen:
		body = m.viewer.View()
	default:
		body = m.list.View()
	}
	if m.confirm != nil {
		body = lipgloss.JoinVertical(lipgloss.Left, body, m.confirm.dialog.Render())
	}

	header := titleStyle.Render(i18n.T("tui.title"))
	status := m.status
	if status != "" {
		if m.statusErr {
			status = errorStyle.Render(status)
		} else {
			status = successStyle.Render(status)
		}
	}
	footer := footerStyle.Render(frame.Footer(m.help(), "", m.width-2))
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, body, status, footer))
}

func (m mainModel) help() string {
	if m.confirm != nil {
		return i18n.T("tui.help.confirm")
	}
	switch m.screen {
	case loginScreen:
		return i18n.T("tui.help.login")
	case sharesScreen:
		return i18n.T("tui.help.shares")
	case pickerScreen:
		return i18n.T("tui.help.picker")
	case viewerScreen:
		return i18n.T("tui.help.viewer")
	default:
		return i18n.T("tui.help.artifacts")
	}
}
