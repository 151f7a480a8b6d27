// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"net/url"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sentinel-vault/sentinel/internal/catalog"
	"github.com/sentinel-vault/sentinel/internal/core"
	"github.com/sentinel-vault/sentinel/internal/render"
	"github.com/sentinel-vault/sentinel/internal/security"
	"github.com/sentinel-vault/sentinel/internal/session"
	"github.com/sentinel-vault/sentinel/internal/share"
	"github.com/sentinel-vault/sentinel/internal/vault"
)

type artifactsLoadedMsg struct {
	list []vault.Descriptor
	err  error
}

type loggedInMsg struct {
	email string
	err   error
}

type loggedOutMsg struct{ err error }

// sessionEndedMsg arrives whenever the credential is cleared, whoever
// cleared it.
type sessionEndedMsg struct{ reason session.ClearReason }

type urlAnnouncedMsg struct{ url *url.URL }

// openedMsg carries the result of one viewer load. seq ties it to the viewer
// that asked for it.
type openedMsg struct {
	seq int
	h   *render.Handle
	err error
}

type presentDoneMsg struct {
	seq int
	err error
}

type sharesLoadedMsg struct {
	id       int64
	grantees []string
	err      error
}

type shareMutatedMsg struct {
	id      int64
	outcome share.Outcome
	err     error
}

type catalogMutatedMsg struct {
	result catalog.Result
	err    error
}

type tokenFetchedMsg struct {
	token *core.FetchedToken
	err   error
}

// events carries notifications raised outside the program loop (session
// clears, loopback URLs) into it.
type events chan tea.Msg

// post delivers msg without ever blocking the caller.
func (e events) post(msg tea.Msg) {
	select {
	case e <- msg:
	default:
	}
}

// listen waits for the next event. It is re-armed after every delivery.
func (e events) listen() tea.Cmd {
	return func() tea.Msg { return <-e }
}

func loadArtifactsCmd(ctx context.Context, app *core.App, refresh bool) tea.Cmd {
	return func() tea.Msg {
		var (
			list []vault.Descriptor
			err  error
		)
		if refresh {
			list, err = app.Catalog.Refresh(ctx)
		} else {
			list, err = app.Catalog.List(ctx)
		}
		return artifactsLoadedMsg{list: list, err: err}
	}
}

func loginCmd(ctx context.Context, app *core.App, email string, password security.Secret) tea.Cmd {
	return func() tea.Msg {
		defer password.Zero()
		err := app.Client.Login(ctx, email, password)
		if err == nil {
			app.Catalog.Invalidate()
		}
		return loggedInMsg{email: email, err: err}
	}
}

// logoutCmd runs off the program loop: the clear observers post into it.
func logoutCmd(app *core.App) tea.Cmd {
	return func() tea.Msg {
		return loggedOutMsg{err: app.Logout()}
	}
}

func loadSharesCmd(ctx context.Context, app *core.App, id int64) tea.Cmd {
	return func() tea.Msg {
		g, err := app.Shares.List(ctx, id)
		return sharesLoadedMsg{id: id, grantees: g, err: err}
	}
}

func grantCmd(ctx context.Context, app *core.App, id int64, grantee string) tea.Cmd {
	return func() tea.Msg {
		out, err := app.Shares.Grant(ctx, id, grantee)
		return shareMutatedMsg{id: id, outcome: out, err: err}
	}
}

// revokeCmd is only issued after the confirmation dialog was accepted.
func revokeCmd(ctx context.Context, app *core.App, id int64, grantee string) tea.Cmd {
	return func() tea.Msg {
		out, err := app.Shares.Revoke(ctx, id, grantee, share.AlwaysConfirm)
		return shareMutatedMsg{id: id, outcome: out, err: err}
	}
}

func deleteCmd(ctx context.Context, app *core.App, id int64) tea.Cmd {
	return func() tea.Msg {
		res, err := app.Catalog.Delete(ctx, id)
		return catalogMutatedMsg{result: res, err: err}
	}
}

func uploadCmd(ctx context.Context, app *core.App, path string) tea.Cmd {
	return func() tea.Msg {
		res, err := uploadFile(ctx, app, path)
		return catalogMutatedMsg{result: res, err: err}
	}
}

func fetchTokenCmd(ctx context.Context, app *core.App, id int64, dir string) tea.Cmd {
	return func() tea.Msg {
		tok, err := app.Actions.FetchToken(ctx, id, dir)
		return tokenFetchedMsg{token: tok, err: err}
	}
}
