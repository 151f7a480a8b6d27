// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sentinel-vault/sentinel/internal/catalog"
	"github.com/sentinel-vault/sentinel/internal/core"
	"github.com/sentinel-vault/sentinel/internal/i18n"
	"github.com/sentinel-vault/sentinel/internal/media"
	"github.com/sentinel-vault/sentinel/internal/render"
	"github.com/sentinel-vault/sentinel/internal/token"
	"github.com/sentinel-vault/sentinel/internal/vault"
)

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteAll

// artifactsModel is the table of artifacts the user can see.
type artifactsModel struct {
	table   table.Model
	items   []vault.Descriptor
	loading bool
}

func newArtifactsModel() artifactsModel {
	t := table.New(
		table.WithColumns(artifactColumns(80)),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	t.SetStyles(tableStyles())
	return artifactsModel{table: t}
}

func artifactColumns(width int) []table.Column {
	name := width - 6 - 10 - 18 - 12
	if name < 16 {
		name = 16
	}
	return []table.Column{
		{Title: i18n.T("column.id"), Width: 6},
		{Title: i18n.T("column.name"), Width: name},
		{Title: i18n.T("column.kind"), Width: 10},
		{Title: i18n.T("column.uploaded"), Width: 18},
	}
}

func (a *artifactsModel) setSize(width, height int) {
	if width > 0 {
		a.table.SetColumns(artifactColumns(width - 8))
	}
	if height > 12 {
		a.table.SetHeight(height - 12)
	}
}

func (a *artifactsModel) setItems(list []vault.Descriptor) {
	a.items = list
	rows := make([]table.Row, 0, len(list))
	for _, d := range list {
		uploaded := ""
		if !d.UploadTime.IsZero() {
			uploaded = d.UploadTime.Format("2006-01-02 15:04")
		}
		rows = append(rows, table.Row{
			strconv.FormatInt(d.ID, 10),
			d.FileName,
			media.Classify(d.FileType).String(),
			uploaded,
		})
	}
	a.table.SetRows(rows)
	if a.table.Cursor() >= len(rows) {
		a.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (a *artifactsModel) reset() {
	a.loading = false
	a.setItems(nil)
}

func (a artifactsModel) selected() (vault.Descriptor, bool) {
	i := a.table.Cursor()
	if i < 0 || i >= len(a.items) {
		return vault.Descriptor{}, false
	}
	return a.items[i], true
}

func (m mainModel) updateArtifacts(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case artifactsLoadedMsg:
		m.list.loading = false
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.list.setItems(msg.list)
		return m, nil

	case catalogMutatedMsg:
		m.list.loading = false
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.reportResult(msg.result)
		if msg.result.Artifacts != nil {
			m.list.setItems(msg.result.Artifacts)
		}
		return m, nil

	case tokenFetchedMsg:
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.setStatus(i18n.T("cli.token.saved", msg.token.Path, msg.token.Size), false)
		return m, nil

	case tea.KeyMsg:
		if m.list.loading {
			if msg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "r":
			m.list.loading = true
			m.setStatus("", false)
			return m, loadArtifactsCmd(m.ctx, m.app, true)
		case "enter", "v":
			d, ok := m.list.selected()
			if !ok {
				return m, nil
			}
			return m.startView(d.FileName, func(ctx context.Context) (*render.Handle, error) {
				return m.app.Actions.ViewArtifact(ctx, d.ID, d.FileName)
			})
		case "s":
			d, ok := m.list.selected()
			if !ok {
				return m, nil
			}
			m.shares = newSharesModel(d)
			m.screen = sharesScreen
			return m, loadSharesCmd(m.ctx, m.app, d.ID)
		case "t":
			d, ok := m.list.selected()
			if !ok {
				return m, nil
			}
			m.setStatus(i18n.T("tui.token.fetching", d.FileName), false)
			return m, fetchTokenCmd(m.ctx, m.app, d.ID, downloadDir())
		case "y":
			d, ok := m.list.selected()
			if !ok {
				return m, nil
			}
			name, err := token.Encode(d.FileName, d.ID)
			if err == nil {
				err = copyToClipboard(name)
			}
			if err != nil {
				m.setStatus(i18n.T("cli.clipboard_failed", err), true)
			} else {
				m.setStatus(i18n.T("tui.copied", name), false)
			}
			return m, nil
		case "o":
			m.picker = newPickerModel(pickToken, m.width, m.height)
			m.screen = pickerScreen
			return m, nil
		case "u":
			m.picker = newPickerModel(pickUpload, m.width, m.height)
			m.screen = pickerScreen
			return m, nil
		case "d":
			d, ok := m.list.selected()
			if !ok {
				return m, nil
			}
			m.ask(i18n.T("tui.delete.title"), i18n.T("cli.rm.confirm", d.FileName), deleteCmd(m.ctx, m.app, d.ID))
			return m, nil
		case "L":
			return m, logoutCmd(m.app)
		}
	}

	var cmd tea.Cmd
	m.list.table, cmd = m.list.table.Update(msg)
	return m, cmd
}

func (m *mainModel) reportResult(res catalog.Result) {
	msg := res.Message
	if msg == "" {
		msg = i18n.T("tui.done")
	}
	if res.RefreshErr != nil {
		m.setStatus(msg+" "+i18n.T("cli.refresh_failed", core.Describe(res.RefreshErr)), true)
		return
	}
	m.setStatus(msg, false)
}

// downloadDir is where fetched tokens go: ~/Downloads when it exists, the
// working directory otherwise.
func downloadDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		dir := filepath.Join(home, "Downloads")
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return "."
}

func (a artifactsModel) View() string {
	if a.loading && len(a.items) == 0 {
		return paneStyle.Render(helpStyle.Render(i18n.T("tui.loading")))
	}
	if len(a.items) == 0 {
		return paneStyle.Render(helpStyle.Render(i18n.T("cli.ls.empty")))
	}
	detail := ""
	if d, ok := a.selected(); ok {
		k := media.Classify(d.FileType)
		detail = lipgloss.JoinHorizontal(lipgloss.Left,
			kindStyle(k).Render(k.String()), "  ",
			helpStyle.Render(d.FileType), "  ",
			helpStyle.Render(d.UploadTime.Format(time.RFC1123)),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, a.table.View(), "", detail)
}
