// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"errors"

	"github.com/sentinel-vault/sentinel/internal/catalog"
	"github.com/sentinel-vault/sentinel/internal/i18n"
	"github.com/sentinel-vault/sentinel/internal/render"
	"github.com/sentinel-vault/sentinel/internal/session"
	"github.com/sentinel-vault/sentinel/internal/share"
	"github.com/sentinel-vault/sentinel/internal/token"
	"github.com/sentinel-vault/sentinel/internal/vault"
)

// Describe turns an action error into the message shown on the surface that
// triggered it. Server wording is passed through where the vault sent some.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var (
		decodeErr *token.DecodeError
		denied    *vault.DeniedError
		rejected  *vault.ShareRejectedError
		mutation  *vault.MutationError
		fetch     *vault.FetchError
	)
	switch {
	case errors.Is(err, session.ErrSessionMissing):
		return i18n.T("error.session_missing")
	case errors.As(err, &decodeErr):
		if decodeErr.Kind == token.WrongExtension {
			return i18n.T("error.token_wrong_extension")
		}
		return i18n.T("error.token_missing_stamp")
	case errors.As(err, &denied):
		if denied.SessionEnded {
			return i18n.T("error.session_denied")
		}
		return i18n.T("error.access_denied")
	case errors.As(err, &rejected):
		return rejected.Reason
	case errors.As(err, &mutation):
		if mutation.Message != "" {
			return mutation.Message
		}
		return i18n.T("error.mutation_failed")
	case errors.Is(err, vault.ErrNotFound), errors.As(err, &fetch):
		return i18n.T("error.fetch_failed")
	case errors.Is(err, render.ErrTooLarge):
		return i18n.T("error.too_large")
	case errors.Is(err, render.ErrEmpty):
		return i18n.T("error.empty")
	case errors.Is(err, share.ErrNotConfirmed):
		return i18n.T("cli.aborted")
	case errors.Is(err, catalog.ErrUnknownToken):
		return i18n.T("error.token_unknown")
	case errors.Is(err, catalog.ErrTokenMismatch):
		return i18n.T("error.token_mismatch")
	case errors.Is(err, context.Canceled):
		return i18n.T("error.cancelled")
	default:
		return err.Error()
	}
}
