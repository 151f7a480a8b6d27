// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sentinel-vault/sentinel/internal/i18n"
	"github.com/sentinel-vault/sentinel/internal/security"
	"github.com/sentinel-vault/sentinel/internal/share"
)

var errEmptyInput = errors.New("input required")

// promptLine prints a translated prompt and reads one trimmed line.
func (e *env) promptLine(cmd *cobra.Command, promptID string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), i18n.T(promptID))
	line, err := e.input(cmd).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads a secret without echo when stdin is a terminal and as a
// plain line otherwise.
func (e *env) promptSecret(cmd *cobra.Command, promptID string) (security.Secret, error) {
	out := cmd.OutOrStdout()
	fmt.Fprint(out, i18n.T(promptID))
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return nil, fmt.Errorf("%s", i18n.T("cli.error_read_password", err))
		}
		s := security.FromBytes(raw)
		clear(raw)
		if s.IsZero() {
			return nil, errEmptyInput
		}
		return s, nil
	}
	line, err := e.input(cmd).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return nil, err
	}
	s := security.FromString(line)
	if s.IsZero() {
		return nil, errEmptyInput
	}
	return s, nil
}

// promptNewSecret asks twice and requires both answers to match.
func (e *env) promptNewSecret(cmd *cobra.Command) (security.Secret, error) {
	first, err := e.promptSecret(cmd, "cli.prompt.new_password")
	if err != nil {
		return nil, err
	}
	second, err := e.promptSecret(cmd, "cli.prompt.repeat_password")
	if err != nil {
		first.Zero()
		return nil, err
	}
	defer second.Zero()
	if !first.Equal(second) {
		first.Zero()
		return nil, errors.New(i18n.T("cli.error_password_mismatch"))
	}
	return first, nil
}

// promptForConfirmation asks a yes/no question. Only "y" or "yes" (or their
// translation) confirm.
func (e *env) promptForConfirmation(cmd *cobra.Command, question string) bool {
	fmt.Fprint(cmd.OutOrStdout(), question+" "+i18n.T("cli.prompt.yes_no"))
	answer, _ := e.input(cmd).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", strings.ToLower(i18n.T("cli.answer.yes_short")), strings.ToLower(i18n.T("cli.answer.yes")):
		return true
	default:
		return false
	}
}

// confirmer builds the confirmation a destructive command needs. --yes skips
// the question.
func (e *env) confirmer(cmd *cobra.Command, assumeYes bool, question string) share.Confirmer {
	return share.ConfirmFunc(func(ctx context.Context, _ string) (bool, error) {
		if assumeYes {
			return true, nil
		}
		return e.promptForConfirmation(cmd, question), nil
	})
}
