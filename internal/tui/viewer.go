// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"errors"
	"net/url"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sentinel-vault/sentinel/internal/core"
	"github.com/sentinel-vault/sentinel/internal/i18n"
	"github.com/sentinel-vault/sentinel/internal/render"
)

type viewerPhase int

const (
	viewerLoading viewerPhase = iota
	viewerPresenting
	viewerFailed
)

// viewerModel is the status screen of the one open viewer.
type viewerModel struct {
	seq     int
	name    string
	phase   viewerPhase
	spinner spinner.Model
	handle  *render.Handle
	target  string
	url     *url.URL
	cancel  context.CancelFunc
	err     error
}

// startView opens a viewer unless a load is already running on the surface.
func (m mainModel) startView(name string, open func(context.Context) (*render.Handle, error)) (tea.Model, tea.Cmd) {
	if m.app.Surface.State() == render.Loading || m.viewer != nil {
		m.setStatus(i18n.T("tui.viewer.busy"), true)
		return m, nil
	}
	m.viewSeq++
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedItemStyle
	m.viewer = &viewerModel{seq: m.viewSeq, name: name, spinner: sp}
	m.screen = viewerScreen
	m.setStatus("", false)

	seq, ctx := m.viewSeq, m.ctx
	load := func() tea.Msg {
		h, err := open(ctx)
		return openedMsg{seq: seq, h: h, err: err}
	}
	return m, tea.Batch(sp.Tick, load)
}

func (m mainModel) handleOpened(msg openedMsg) (tea.Model, tea.Cmd) {
	if m.viewer == nil || msg.seq != m.viewer.seq {
		// Nobody is waiting for this one any more.
		if msg.h != nil {
			msg.h.Close()
		}
		return m, nil
	}
	if msg.err != nil {
		if errors.Is(msg.err, render.ErrSuperseded) {
			return m, nil
		}
		m.viewer.phase = viewerFailed
		m.viewer.err = msg.err
		m.fail(msg.err)
		return m, nil
	}

	v := m.viewer
	v.phase = viewerPresenting
	v.handle = msg.h
	v.name = msg.h.Name()
	v.target = m.app.Router.For(msg.h.Kind()).Describe()
	ctx, cancel := context.WithCancel(m.ctx)
	v.cancel = cancel

	app, h, seq := m.app, msg.h, v.seq
	return m, func() tea.Msg {
		return presentDoneMsg{seq: seq, err: app.Actions.Present(ctx, h)}
	}
}

func (m mainModel) handlePresentDone(msg presentDoneMsg) (tea.Model, tea.Cmd) {
	if m.viewer == nil || msg.seq != m.viewer.seq {
		return m, nil
	}
	m.viewer.cancel()
	if msg.err != nil {
		m.viewer.phase = viewerFailed
		m.viewer.err = msg.err
		m.fail(msg.err)
		return m, nil
	}
	m.viewer = nil
	if m.screen == viewerScreen {
		m.screen = artifactsScreen
	}
	m.setStatus(i18n.T("cli.view.closed"), false)
	return m, nil
}

// teardownViewer closes whatever the viewer holds. A load in flight is
// superseded and its result discarded.
func (m *mainModel) teardownViewer() {
	if m.viewer == nil {
		return
	}
	switch {
	case m.viewer.cancel != nil:
		m.viewer.cancel()
	case m.viewer.phase == viewerLoading:
		m.app.Surface.Reset()
	}
	m.viewer = nil
}

func (m mainModel) updateViewer(msg tea.Msg) (tea.Model, tea.Cmd) {
	v := m.viewer
	if v == nil {
		m.screen = artifactsScreen
		return m, nil
	}
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if v.phase != viewerLoading {
			return m, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			if v.phase == viewerPresenting {
				// presentDoneMsg brings us back once the target let go.
				v.cancel()
				return m, nil
			}
			m.teardownViewer()
			m.screen = artifactsScreen
			return m, nil
		case "c":
			if v.url != nil {
				if err := copyToClipboard(v.url.String()); err != nil {
					m.setStatus(i18n.T("cli.clipboard_failed", err), true)
				} else {
					m.setStatus(i18n.T("tui.copied", v.url.String()), false)
				}
			}
			return m, nil
		}
	}
	return m, nil
}

func (v *viewerModel) View() string {
	rows := []string{lipgloss.NewStyle().Bold(true).Render(v.name), ""}
	switch v.phase {
	case viewerLoading:
		rows = append(rows, v.spinner.View()+" "+i18n.T("tui.viewer.loading"))
	case viewerFailed:
		rows = append(rows, errorStyle.Render(core.Describe(v.err)))
	case viewerPresenting:
		k := v.handle.Kind()
		rows = append(rows,
			i18n.T("cli.view.opened", v.name, kindStyle(k).Render(k.String()), v.target),
			helpStyle.Render(i18n.T("tui.viewer.size", v.handle.Size(), v.handle.MediaType())),
		)
		if v.url != nil {
			rows = append(rows, "", i18n.T("cli.view.url", specialStyle.Render(v.url.String())))
		}
	}
	return paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
