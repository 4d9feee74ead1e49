// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete dcc CLI command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sarg3nt/dynamic-dev-container-sub000/cmd/dcc/cli"
	composecmd "github.com/sarg3nt/dynamic-dev-container-sub000/cmd/dcc/compose"
	doctorcmd "github.com/sarg3nt/dynamic-dev-container-sub000/cmd/dcc/doctor"
	installcmd "github.com/sarg3nt/dynamic-dev-container-sub000/cmd/dcc/install"
	snapshotcmd "github.com/sarg3nt/dynamic-dev-container-sub000/cmd/dcc/snapshot"
	toolscmd "github.com/sarg3nt/dynamic-dev-container-sub000/cmd/dcc/tools"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/version"
)

// Root builds and returns the complete dcc CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "dcc",
		Description: `dcc: dynamic dev container composer.

Select development tools interactively (or via flags) and generate a
matched pair of configuration files: a mise tool manifest and a
devcontainer.json with only the editor blocks your tools need.`,
		Subcommands: []*cli.Command{
			composecmd.Command(),
			installcmd.Command(),
			toolscmd.Command(),
			snapshotcmd.Command(),
			doctorcmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("dcc %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Pick tools interactively and write both config files",
				Command:     "dcc compose --target .",
			},
			{
				Description: "Non-interactive composition with pinned versions",
				Command:     "dcc compose --tool kubectl@1.31.0 --tool helm --target .",
			},
			{
				Description: "List every tool the template offers",
				Command:     "dcc tools list",
			},
			{
				Description: "Show available versions for a tool",
				Command:     "dcc tools versions kubectl",
			},
			{
				Description: "Copy the static container scaffolding into a project",
				Command:     "dcc install --target .",
			},
			{
				Description: "Check template and environment health",
				Command:     "dcc doctor",
			},
			{
				Description: "Roll back the last composition",
				Command:     "dcc snapshot restore --target .",
			},
		},
	}
}
