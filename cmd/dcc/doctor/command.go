// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

// Package doctor implements "dcc doctor": health checks over the
// template bundle, the tool catalog, and the local environment.
package doctor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/sarg3nt/dynamic-dev-container-sub000/cmd/dcc/cli"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/bundle"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/config"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/devcontainer"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/feature"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/manifest"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/snapshot"
)

type doctorParams struct {
	configPath string
	source     string
	target     string
}

// Command returns the "dcc doctor" command.
func Command() *cli.Command {
	var params doctorParams

	return &cli.Command{
		Name:    "doctor",
		Summary: "Check template and environment health",
		Description: `Check that the template bundle is internally consistent and the
local environment can run a composition: templates parse, every
catalog tool has a manifest entry, every referenced devcontainer
block exists, mise is on PATH, and the target directory is writable.

Exits 1 when any check fails.`,
		Usage: "dcc doctor [flags]",
		Examples: []cli.Example{
			{
				Description: "Check the embedded bundle and current directory",
				Command:     "dcc doctor",
			},
			{
				Description: "Check a custom template directory",
				Command:     "dcc doctor --source ./templates",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("doctor", pflag.ContinueOnError)
			flagSet.StringVar(&params.configPath, "config", "", "config file (overrides DCC_CONFIG)")
			flagSet.StringVar(&params.source, "source", "", "template directory (default: embedded templates)")
			flagSet.StringVar(&params.target, "target", ".", "target directory to check for writability")
			return flagSet
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runDoctor(params, logger)
		},
	}
}

// checkState carries parse results forward so later checks can reuse
// them without reparsing.
type checkState struct {
	blocks   []manifest.Block
	template *devcontainer.Template
	catalog  *feature.Catalog
}

func runDoctor(params doctorParams, logger *slog.Logger) error {
	cfg, err := config.Load(params.configPath)
	if err != nil {
		return err
	}

	templates := bundle.Embedded()
	if params.source != "" {
		templates, err = bundle.LoadDir(params.source)
		if err != nil {
			return err
		}
	}

	var state checkState
	var results []Result

	results = append(results, checkManifestTemplate(templates, &state)...)
	results = append(results, checkDevcontainerTemplate(templates, &state)...)
	results = append(results, checkCatalog(templates, &state)...)
	results = append(results, checkComposability(&state, logger)...)
	results = append(results, checkMise(cfg))
	results = append(results, checkTargetWritable(params.target))
	results = append(results, checkSnapshotRoot(cfg))

	return printChecklist(os.Stdout, results)
}

func checkManifestTemplate(templates *bundle.Bundle, state *checkState) []Result {
	data, err := templates.Manifest()
	if err != nil {
		return []Result{Fail("manifest template", err.Error())}
	}

	blocks, err := manifest.Parse(data)
	if err != nil {
		return []Result{Fail("manifest template", err.Error())}
	}
	state.blocks = blocks

	sections := manifest.Sections(blocks)
	tools := manifest.ToolNames(blocks)
	return []Result{Pass("manifest template",
		fmt.Sprintf("%d sections, %d tools", len(sections), len(tools)))}
}

func checkDevcontainerTemplate(templates *bundle.Bundle, state *checkState) []Result {
	data, err := templates.Devcontainer()
	if err != nil {
		return []Result{Fail("devcontainer template", err.Error())}
	}

	template, err := devcontainer.Parse(data)
	if err != nil {
		return []Result{Fail("devcontainer template", err.Error())}
	}
	state.template = template

	names := template.BlockNames()
	return []Result{Pass("devcontainer template",
		fmt.Sprintf("%d blocks: %s", len(names), strings.Join(names, ", ")))}
}

// checkCatalog verifies the tool catalog against both templates:
// every catalog tool must have a manifest entry, and every block a
// catalog tool references must exist in the devcontainer template.
func checkCatalog(templates *bundle.Bundle, state *checkState) []Result {
	catalog, err := loadCatalog(templates)
	if err != nil {
		return []Result{Fail("tool catalog", err.Error())}
	}
	state.catalog = catalog

	if state.blocks == nil || state.template == nil {
		return []Result{Skip("tool catalog", "skipped: template checks failed")}
	}

	var missingTools []string
	for _, name := range catalog.Names() {
		if _, ok := manifest.Lookup(state.blocks, name); !ok {
			missingTools = append(missingTools, name)
		}
	}

	blockSet := make(map[string]bool)
	for _, name := range state.template.BlockNames() {
		blockSet[name] = true
	}
	missingBlocks := make(map[string][]string)
	features := catalog.Map()
	for _, tool := range catalog.Names() {
		for _, block := range features.Resolve(tool) {
			if !blockSet[block] {
				missingBlocks[block] = append(missingBlocks[block], tool)
			}
		}
	}

	var results []Result
	if len(missingTools) > 0 {
		results = append(results, Warn("catalog tools",
			fmt.Sprintf("not in manifest template: %s", strings.Join(missingTools, ", "))))
	} else {
		results = append(results, Pass("catalog tools",
			fmt.Sprintf("all %d tools present in manifest template", len(catalog.Names()))))
	}

	if len(missingBlocks) > 0 {
		var names []string
		for block := range missingBlocks {
			names = append(names, block)
		}
		sort.Strings(names)
		for _, block := range names {
			results = append(results, Fail("catalog blocks",
				fmt.Sprintf("block %q referenced by %s missing from devcontainer template",
					block, strings.Join(missingBlocks[block], ", "))))
		}
	} else {
		results = append(results, Pass("catalog blocks",
			"every referenced devcontainer block exists"))
	}

	return results
}

// checkComposability runs a full-selection composition in memory.
// This exercises the same paths "compose --all" would and catches
// output-validity regressions in the templates.
func checkComposability(state *checkState, logger *slog.Logger) []Result {
	if state.blocks == nil || state.template == nil || state.catalog == nil {
		return []Result{Skip("full composition", "skipped: earlier checks failed")}
	}

	var selection feature.Selection
	for _, name := range manifest.ToolNames(state.blocks) {
		selection.Add(name, "")
	}

	_, err := state.template.Compose(selection, state.catalog.Map(), devcontainer.ComposeOptions{
		Logger: logger,
	})
	if err != nil {
		return []Result{Fail("full composition", err.Error())}
	}
	return []Result{Pass("full composition",
		fmt.Sprintf("all %d tools compose to valid output", len(selection.Chosen)))}
}

func checkMise(cfg *config.Config) Result {
	path, err := exec.LookPath(cfg.MiseBinary)
	if err != nil {
		return Warn("mise binary",
			fmt.Sprintf("%q not found on PATH; version discovery disabled", cfg.MiseBinary))
	}
	return Pass("mise binary", path)
}

func checkTargetWritable(target string) Result {
	info, err := os.Stat(target)
	if err != nil {
		return Fail("target directory", err.Error())
	}
	if !info.IsDir() {
		return Fail("target directory", fmt.Sprintf("%s is not a directory", target))
	}

	probe, err := os.CreateTemp(target, ".dcc-doctor-*")
	if err != nil {
		return Fail("target directory", fmt.Sprintf("%s not writable: %v", target, err))
	}
	probe.Close()
	os.Remove(probe.Name())
	return Pass("target directory", fmt.Sprintf("%s writable", target))
}

func checkSnapshotRoot(cfg *config.Config) Result {
	store := snapshot.NewStore(cfg.SnapshotRoot)
	infos, err := store.List()
	if err != nil {
		return Warn("snapshot store", err.Error())
	}
	return Pass("snapshot store",
		fmt.Sprintf("%s (%d snapshots)", cfg.SnapshotRoot, len(infos)))
}

// loadCatalog mirrors the compose command's catalog preference: the
// bundle's own catalog wins over the built-in one.
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
