// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

package versioncat

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Mise discovers versions by shelling out to `mise ls-remote <tool>`.
// Stderr is captured separately and included in error messages on
// failure.
type Mise struct {
	binary string
}

// NewMise returns a catalog backed by the given mise executable
// (resolved via PATH when not absolute).
func NewMise(binary string) *Mise {
	if binary == "" {
		binary = "mise"
	}
	return &Mise{binary: binary}
}

// Versions runs `mise ls-remote` and returns one version per output
// line, oldest first (mise's native order).
func (m *Mise) Versions(ctx context.Context, tool string) ([]string, error) {
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, m.binary, "ls-remote", tool)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return nil, fmt.Errorf("mise ls-remote %s: %w (stderr: %s)",
			tool, err, strings.TrimSpace(stderr.String()))
	}

	var versions []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			versions = append(versions, line)
		}
	}
	return versions, nil
}
