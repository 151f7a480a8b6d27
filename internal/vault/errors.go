// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrAuthorizationDenied matches every *DeniedError.
	ErrAuthorizationDenied = errors.New("vault: access denied")
	// ErrNotFound is returned when the vault has no artifact with the given id.
	ErrNotFound = errors.New("vault: artifact not found")
)

// DeniedError is a 401 or 403 answer from the vault.
type DeniedError struct {
	Op         string
	StatusCode int
	Message    string
	// SessionEnded is set when the credential was cleared as a result.
	SessionEnded bool
}

func (e *DeniedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: access denied: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: access denied", e.Op)
}

func (e *DeniedError) Is(target error) bool { return target == ErrAuthorizationDenied }

// FetchError covers transport failures and unexpected server answers. It is
// never retried by this package.
type FetchError struct {
	Op         string
	StatusCode int // zero for transport failures
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// ShareRejectedError carries the vault's literal reason for refusing a grant.
type ShareRejectedError struct {
	StatusCode int
	Reason     string
}

func (e *ShareRejectedError) Error() string { return e.Reason }

// MutationError reports a failed delete, revoke or upload. Message is the
// server text when one was sent.
type MutationError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *MutationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s failed (HTTP %d)", e.Op, e.StatusCode)
}

// maxErrorBody bounds how much of a failure response is read.
const maxErrorBody = 64 << 10

// serverMessage extracts the human readable part of an error body. The vault
// answers either with {"message": "..."} or with plain text.
func serverMessage(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}
	if strings.HasPrefix(text, "{") {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal([]byte(text), &payload); err == nil {
			if payload.Message != "" {
				return payload.Message
			}
			if payload.Error != "" {
				return payload.Error
			}
		}
	}
	if unq, ok := unquote(text); ok {
		return unq
	}
	return text
}

func unquote(text string) (string, bool) {
	if len(text) < 2 || text[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return "", false
	}
	return s, true
}

// readMessage drains a response body and returns its server message.
func readMessage(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return serverMessage(body)
}

func isSuccess(code int) bool { return code >= 200 && code < 300 }
