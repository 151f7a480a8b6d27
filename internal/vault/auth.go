// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sentinel-vault/sentinel/internal/secret"
	"github.com/sentinel-vault/sentinel/internal/security"
)

// maxCredentialBody bounds the login response.
const maxCredentialBody = 16 << 10

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges email and password for a credential and stores it in the
// holder. It is the only producer of a credential.
func (c *Client) Login(ctx context.Context, email string, password security.Secret) error {
	body, err := json.Marshal(credentials{Email: strings.TrimSpace(email), Password: password.Reveal()})
	if err != nil {
		return err
	}
	resp, err := c.public(ctx, request{
		op:          "login",
		method:      http.MethodPost,
		path:        "/api/auth/login",
		body:        bytes.NewReader(body),
		contentType: "application/json",
	})
	secret.Zero(body)
	if err != nil {
		return err
	}
	if !isSuccess(resp.StatusCode) {
		code, msg := failure(resp)
		return &FetchError{Op: "login", StatusCode: code, Message: msg}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxCredentialBody))
	if err != nil {
		return &FetchError{Op: "login", StatusCode: resp.StatusCode, Err: err}
	}
	cred := extractCredential(raw)
	secret.Zero(raw)
	if cred.IsZero() {
		return &FetchError{Op: "login", StatusCode: resp.StatusCode, Message: "vault returned an empty credential"}
	}
	defer cred.Zero()
	return c.holder.Set(cred)
}

// extractCredential accepts a bare token, a JSON string, or {"token": "..."}.
func extractCredential(raw []byte) security.Secret {
	text := bytes.TrimSpace(raw)
	if len(text) == 0 {
		return nil
	}
	switch text[0] {
	case '{':
		var payload struct {
			Token string `json:"token"`
		}
		if json.Unmarshal(text, &payload) == nil {
			return security.FromString(payload.Token)
		}
	case '"':
		var s string
		if json.Unmarshal(text, &s) == nil {
			return security.FromString(s)
		}
	}
	return security.FromBytes(text)
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, email string, password security.Secret) (string, error) {
	body, err := json.Marshal(credentials{Email: strings.TrimSpace(email), Password: password.Reveal()})
	if err != nil {
		return "", err
	}
	defer secret.Zero(body)
	return c.publicMessage(ctx, request{
		op:          "register",
		method:      http.MethodPost,
		path:        "/api/auth/register",
		body:        bytes.NewReader(body),
		contentType: "application/json",
	})
}

// ForgotPassword asks the vault to mail a reset token.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	return c.publicMessage(ctx, request{
		op:     "forgot password",
		method: http.MethodPost,
		path:   "/api/auth/forgot-password",
		query:  url.Values{"email": {strings.TrimSpace(email)}},
	})
}

// ResetPassword sets a new password using a mailed reset token.
func (c *Client) ResetPassword(ctx context.Context, resetToken string, newPassword security.Secret) (string, error) {
	return c.publicMessage(ctx, request{
		op:     "reset password",
		method: http.MethodPost,
		path:   "/api/auth/reset-password",
		query:  url.Values{"token": {strings.TrimSpace(resetToken)}, "newPassword": {newPassword.Reveal()}},
	})
}

func (c *Client) publicMessage(ctx context.Context, r request) (string, error) {
	resp, err := c.public(ctx, r)
	if err != nil {
		return "", err
	}
	code, msg := failure(resp)
	if !isSuccess(code) {
		return "", &FetchError{Op: r.op, StatusCode: code, Message: msg}
	}
	if msg == "" {
		msg = fmt.Sprintf("%s: ok", r.op)
	}
	return msg, nil
}
