// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

// Package install implements "dcc install": copy the bundle's static
// container scaffolding (scripts, Dockerfile, editor config) into a
// project directory.
package install

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/sarg3nt/dynamic-dev-container-sub000/cmd/dcc/cli"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/bundle"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/config"
	libinstall "github.com/sarg3nt/dynamic-dev-container-sub000/lib/install"
)

type installParams struct {
	configPath string
	target     string
	source     string
	force      bool
}

// Command returns the "dcc install" command.
func Command() *cli.Command {
	var params installParams

	return &cli.Command{
		Name:    "install",
		Summary: "Copy static container scaffolding into a project",
		Description: `Copy the bundle's static files (setup scripts, Dockerfile, editor
configuration) into the target directory. Existing files are left
alone unless --force is given; shell scripts are made executable.
Config install_ignore patterns exclude files from the copy.`,
		Usage: "dcc install [flags]",
		Examples: []cli.Example{
			{
				Description: "Scaffold the current directory",
				Command:     "dcc install --target .",
			},
			{
				Description: "Overwrite local edits with the bundled versions",
				Command:     "dcc install --target . --force",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("install", pflag.ContinueOnError)
			flagSet.StringVar(&params.configPath, "config", "", "config file (overrides DCC_CONFIG)")
			flagSet.StringVar(&params.target, "target", "", "target directory (default from config, else .)")
			flagSet.StringVar(&params.source, "source", "", "template directory (default: embedded bundle)")
			flagSet.BoolVar(&params.force, "force", false, "overwrite existing files")
			return flagSet
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runInstall(params, logger)
		},
	}
}

func runInstall(params installParams, logger *slog.Logger) error {
	cfg, err := config.Load(params.configPath)
	if err != nil {
		return err
	}

	target := params.target
	if target == "" {
		target = cfg.Target
	}
	if target == "" {
		target = "."
	}

	templates := bundle.Embedded()
	if params.source != "" {
		templates, err = bundle.LoadDir(params.source)
		if err != nil {
			return err
		}
	}

	static := templates.Static()
	if static == nil {
		return fmt.Errorf("bundle has no static files to install")
	}

	result, err := libinstall.Run(static, target, libinstall.Options{
		Force:  params.force,
		Ignore: cfg.InstallIgnore,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	logger.Info("install finished",
		"target", target,
		"copied", len(result.Copied),
		"skipped", len(result.Skipped))
	for _, path := range result.Copied {
		fmt.Println(path)
	}
	return nil
}
