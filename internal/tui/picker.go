// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sentinel-vault/sentinel/internal/catalog"
	"github.com/sentinel-vault/sentinel/internal/core"
	"github.com/sentinel-vault/sentinel/internal/i18n"
	"github.com/sentinel-vault/sentinel/internal/media"
	"github.com/sentinel-vault/sentinel/internal/render"
	"github.com/sentinel-vault/sentinel/internal/token"
	"github.com/sentinel-vault/sentinel/internal/tui/frame"
)

type pickPurpose int

const (
	pickToken pickPurpose = iota
	pickUpload
)

type pickerModel struct {
	purpose pickPurpose
	fp      *frame.FilePicker
}

func newPickerModel(purpose pickPurpose, width, height int) *pickerModel {
	start, err := os.Getwd()
	if err != nil {
		start = "."
	}
	var fp *frame.FilePicker
	switch purpose {
	case pickUpload:
		fp = frame.NewFilePicker(start, func(name string) bool { return media.CheckUpload(name) == nil })
		fp.Title = i18n.T("tui.picker.upload")
	default:
		fp = frame.NewFilePicker(start, media.IsTokenFile)
		fp.Title = i18n.T("tui.picker.token")
	}
	fp.Hint = i18n.T("tui.help.picker")
	p := &pickerModel{purpose: purpose, fp: fp}
	p.setSize(width, height)
	return p
}

func (p *pickerModel) setSize(width, height int) {
	if width > 20 {
		p.fp.Width = min(width-6, 100)
	}
	if height > 14 {
		p.fp.Height = height - 10
	}
}

func (m mainModel) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	p := m.picker
	if p == nil {
		m.screen = artifactsScreen
		return m, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "esc", "q":
		m.picker = nil
		m.screen = artifactsScreen
	case "up", "k":
		p.fp.MoveUp()
	case "down", "j":
		p.fp.MoveDown()
	case "backspace", "u":
		p.fp.GoUp()
	case "enter":
		path := p.fp.SelectCurrent()
		if path == "" {
			return m, nil
		}
		m.picker = nil
		m.screen = artifactsScreen
		return m.picked(p.purpose, path)
	}
	return m, nil
}

// picked acts on a chosen file. Token names are decoded before anything is
// sent; a bad name never leaves the client.
func (m mainModel) picked(purpose pickPurpose, path string) (tea.Model, tea.Cmd) {
	if purpose == pickUpload {
		if err := media.CheckUpload(path); err != nil {
			m.setStatus(i18n.T("error.upload_extension", joinedExtensions()), true)
			return m, nil
		}
		m.list.loading = true
		m.setStatus(i18n.T("tui.upload.busy", filepath.Base(path)), false)
		return m, uploadCmd(m.ctx, m.app, path)
	}

	n, err := token.Decode(path)
	if err != nil {
		m.setStatus(core.Describe(err), true)
		return m, nil
	}
	return m.startView(n.OriginalName, func(ctx context.Context) (*render.Handle, error) {
		return m.app.Actions.OpenToken(ctx, path)
	})
}

func uploadFile(ctx context.Context, app *core.App, path string) (catalog.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return catalog.Result{}, err
	}
	defer func() { _ = f.Close() }()
	return app.Catalog.Upload(ctx, filepath.Base(path), f)
}

func joinedExtensions() string {
	return strings.Join(media.UploadExtensions, " ")
}

func (p *pickerModel) View() string {
	return p.fp.Render()
}
