// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

// Package compose implements "dcc compose": select tools and generate
// the manifest / devcontainer pair.
package compose

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/sarg3nt/dynamic-dev-container-sub000/cmd/dcc/cli"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/bundle"
	libcompose "github.com/sarg3nt/dynamic-dev-container-sub000/lib/compose"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/config"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/devcontainer"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/feature"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/manifest"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/selectui"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/snapshot"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/versioncat"
)

// versionCacheTTL bounds how stale cached "mise ls-remote" listings
// may get before the picker refetches them.
const versionCacheTTL = 24 * time.Hour

type composeParams struct {
	configPath  string
	target      string
	source      string
	tools       []string
	all         bool
	dryRun      bool
	projectName string
	company     string
	noSnapshot  bool
}

// Command returns the "dcc compose" command.
func Command() *cli.Command {
	var params composeParams

	return &cli.Command{
		Name:    "compose",
		Summary: "Select tools and generate the configuration pair",
		Description: `Generate a mise tool manifest and a devcontainer.json from the bundled
templates (or a template directory given with --source).

Without --tool or --all, an interactive picker opens: navigate with
j/k, toggle tools with space, pin a version with v, filter with /, and
confirm with enter. With --tool flags the composition runs headless.

Existing target files are snapshotted before being replaced; use
"dcc snapshot restore" to roll back.`,
		Usage: "dcc compose [flags]",
		Examples: []cli.Example{
			{
				Description: "Interactive composition into the current directory",
				Command:     "dcc compose",
			},
			{
				Description: "Headless: kubectl pinned, helm at its default version",
				Command:     "dcc compose --tool kubectl@1.31.0 --tool helm",
			},
			{
				Description: "Everything the template offers, printed without writing",
				Command:     "dcc compose --all --dry-run",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("compose", pflag.ContinueOnError)
			flagSet.StringVar(&params.configPath, "config", "", "config file (overrides DCC_CONFIG)")
			flagSet.StringVar(&params.target, "target", "", "target directory (default from config, else .)")
			flagSet.StringVar(&params.source, "source", "", "template directory (default: embedded templates)")
			flagSet.StringArrayVar(&params.tools, "tool", nil, "tool to include, optionally name@version (repeatable)")
			flagSet.BoolVar(&params.all, "all", false, "select every tool in the manifest template")
			flagSet.BoolVar(&params.dryRun, "dry-run", false, "print both documents instead of writing them")
			flagSet.StringVar(&params.projectName, "project-name", "", "value for the devcontainer \"name\" field")
			flagSet.StringVar(&params.company, "company", "", "company name for file headers (overrides config)")
			flagSet.BoolVar(&params.noSnapshot, "no-snapshot", false, "skip snapshotting existing target files")
			return flagSet
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runCompose(ctx, params, logger)
		},
	}
}

func runCompose(ctx context.Context, params composeParams, logger *slog.Logger) error {
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

	templates, err := loadBundle(params.source)
	if err != nil {
		return err
	}
	manifestTemplate, err := templates.Manifest()
	if err != nil {
		return err
	}
	devcontainerTemplate, err := templates.Devcontainer()
	if err != nil {
		return err
	}

	catalog, err := loadCatalog(templates)
	if err != nil {
		return err
	}

	selection, confirmed, err := buildSelection(ctx, params, cfg, manifestTemplate, catalog)
	if err != nil {
		return err
	}
	if !confirmed {
		logger.Info("composition aborted, nothing written")
		return nil
	}
	if len(selection.Chosen) == 0 {
		logger.Warn("no tools selected; output will carry only always-on content")
	}

	company := params.company
	if company == "" {
		company = cfg.Company
	}

	result, err := libcompose.Run(libcompose.Inputs{
		ManifestTemplate:     manifestTemplate,
		DevcontainerTemplate: devcontainerTemplate,
		Selection:            selection,
		Features:             catalog.Map(),
		Options: devcontainer.ComposeOptions{
			ProjectName: params.projectName,
			Company:     company,
			Year:        time.Now().Year(),
			Headers:     cfg.Headers,
			Logger:      logger,
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	paths := libcompose.Paths{
		Manifest:     cfg.ManifestPath,
		Devcontainer: cfg.DevcontainerPath,
	}

	if params.dryRun {
		fmt.Printf("# --- %s ---\n%s\n", paths.Manifest, result.Manifest)
		fmt.Printf("// --- %s ---\n%s\n", paths.Devcontainer, result.Devcontainer)
		return nil
	}

	if !params.noSnapshot {
		if err := snapshotExisting(target, paths, cfg.SnapshotRoot, logger); err != nil {
			return err
		}
	}

	if err := result.Write(target, paths); err != nil {
		return err
	}
	logger.Info("composition written",
		"target", target,
		"manifest", paths.Manifest,
		"devcontainer", paths.Devcontainer,
		"tools", len(selection.Chosen))
	return nil
}

// loadBundle returns the embedded template bundle, or one loaded from
// a --source directory.
func loadBundle(source string) (*bundle.Bundle, error) {
	if source == "" {
		return bundle.Embedded(), nil
	}
	return bundle.LoadDir(source)
}

// loadCatalog prefers a catalog shipped inside the bundle over the
// built-in one, so custom template directories can redefine the
// tool-to-block mapping.
func loadCatalog(templates *bundle.Bundle) (*feature.Catalog, error) {
	data, err := templates.Catalog()
	if err != nil {
		return nil, err
	}
	if data != nil {
		return feature.ParseCatalog(data)
	}
	return feature.Default()
}

// buildSelection produces the tool selection: from --tool/--all flags
// when given, otherwise from the interactive picker. The second return
// is false when the user aborted the picker.
func buildSelection(ctx context.Context, params composeParams, cfg *config.Config, manifestTemplate []byte, catalog *feature.Catalog) (feature.Selection, bool, error) {
	blocks, err := manifest.Parse(manifestTemplate)
	if err != nil {
		return feature.Selection{}, false, fmt.Errorf("parsing manifest template: %w", err)
	}

	if params.all {
		var selection feature.Selection
		for _, name := range manifest.ToolNames(blocks) {
			selection.Add(name, "")
		}
		return selection, true, nil
	}

	if len(params.tools) > 0 {
		selection, err := parseToolFlags(params.tools)
		return selection, true, err
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return feature.Selection{}, false, fmt.Errorf("stdin is not a terminal; use --tool or --all for headless composition")
	}

	versions := versioncat.NewCached(versioncat.NewMise(cfg.MiseBinary), cfg.CacheRoot, versionCacheTTL)
	return selectui.Run(ctx, blocks, catalog, versions)
}

// parseToolFlags converts repeated --tool values ("name" or
// "name@version") into a selection, preserving flag order.
func parseToolFlags(tools []string) (feature.Selection, error) {
	var selection feature.Selection
	for _, tool := range tools {
		name, version, _ := strings.Cut(tool, "@")
		if name == "" {
			return feature.Selection{}, fmt.Errorf("invalid --tool value %q", tool)
		}
		selection.Add(name, version)
	}
	return selection, nil
}

// snapshotExisting saves the current target files before they are
// replaced. Missing files are fine (first composition); the snapshot
// is skipped entirely when neither target file exists.
func snapshotExisting(target string, paths libcompose.Paths, snapshotRoot string, logger *slog.Logger) error {
	var files []snapshot.File
	for _, relative := range []string{paths.Manifest, paths.Devcontainer} {
		data, err := os.ReadFile(filepath.Join(target, relative))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("reading %s for snapshot: %w", relative, err)
		}
		files = append(files, snapshot.File{Path: relative, Data: data})
	}
	if len(files) == 0 {
		return nil
	}

	store := snapshot.NewStore(snapshotRoot)
	id, err := store.Save(files, "pre-compose "+target)
	if err != nil {
		return fmt.Errorf("snapshotting existing files: %w", err)
	}
	logger.Info("existing files snapshotted", "snapshot", id, "files", len(files))
	return nil
}
