// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sentinel-vault/sentinel/internal/logging"
	"github.com/sentinel-vault/sentinel/internal/render"
)

// PipeTarget runs an external program with the plaintext on its stdin.
type PipeTarget struct {
	Path   string
	Args   []string
	Stdout io.Writer
	Stderr io.Writer
}

// ParsePipeTarget splits a command line such as "mpv --really-quiet -".
// Quoting is not interpreted.
func ParsePipeTarget(line string) (*PipeTarget, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errors.New("empty viewer command")
	}
	return &PipeTarget{Path: fields[0], Args: fields[1:]}, nil
}

func (p *PipeTarget) Describe() string {
	return strings.TrimSpace(p.Path + " " + strings.Join(p.Args, " "))
}

// Present starts the program and waits for it. Closing the handle kills the
// program.
func (p *PipeTarget) Present(ctx context.Context, h *render.Handle) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	h.OnClose(cancel)

	cmd := exec.CommandContext(ctx, p.Path, p.Args...)
	cmd.Stdin = h.Reader()
	cmd.Stdout = p.Stdout
	cmd.Stderr = p.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	logging.Debugf("viewer: piping %s (%s) to %s", h.Name(), h.Kind(), p.Path)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("viewer %s: %w", p.Path, err)
	}
	return nil
}
