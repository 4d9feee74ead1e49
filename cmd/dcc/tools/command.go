// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

// Package tools implements "dcc tools": inspect the manifest
// template's tool inventory and remote version listings.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/sarg3nt/dynamic-dev-container-sub000/cmd/dcc/cli"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/bundle"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/config"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/feature"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/manifest"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/versioncat"
)

// Command returns the "dcc tools" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "tools",
		Summary: "Inspect available tools and their versions",
		Subcommands: []*cli.Command{
			listCommand(),
			versionsCommand(),
		},
	}
}

type listParams struct {
	source string
}

func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List every tool the manifest template offers",
		Usage:   "dcc tools list [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flagSet.StringVar(&params.source, "source", "", "template directory (default: embedded templates)")
			return flagSet
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runList(params)
		},
	}
}

func runList(params listParams) error {
	templates := bundle.Embedded()
	if params.source != "" {
		loaded, err := bundle.LoadDir(params.source)
		if err != nil {
			return err
		}
		templates = loaded
	}

	manifestTemplate, err := templates.Manifest()
	if err != nil {
		return err
	}
	blocks, err := manifest.Parse(manifestTemplate)
	if err != nil {
		return fmt.Errorf("parsing manifest template: %w", err)
	}

	catalog, err := feature.Default()
	if err != nil {
		return err
	}
	if data, catalogErr := templates.Catalog(); catalogErr == nil && data != nil {
		catalog, err = feature.ParseCatalog(data)
		if err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(os.Stdout, 2, 0, 2, ' ', 0)
	for _, section := range manifest.Sections(blocks) {
		if len(section.Entries) == 0 {
			continue
		}
		fmt.Fprintf(tw, "%s\t\t\t\n", section.Name)
		for _, entry := range section.Entries {
			configurable := ""
			if entry.VersionConfigurable {
				configurable = "version-configurable"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n",
				entry.Name, entry.DefaultVersion, configurable,
				firstLine(catalog.Describe(entry.Name)))
		}
	}
	return tw.Flush()
}

// firstLine trims a markdown description down to its opening line for
// the table view.
func firstLine(description string) string {
	for line := range strings.SplitSeq(description, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "# "))
		if line != "" {
			return line
		}
	}
	return ""
}

type versionsParams struct {
	configPath string
	limit      int
	noCache    bool
}

func versionsCommand() *cli.Command {
	var params versionsParams

	return &cli.Command{
		Name:    "versions",
		Summary: "List available versions for a tool",
		Usage:   "dcc tools versions <tool> [flags]",
		Examples: []cli.Example{
			{
				Description: "Newest kubectl versions",
				Command:     "dcc tools versions kubectl",
			},
			{
				Description: "Full uncached listing",
				Command:     "dcc tools versions golang --limit 0 --no-cache",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("versions", pflag.ContinueOnError)
			flagSet.StringVar(&params.configPath, "config", "", "config file (overrides DCC_CONFIG)")
			flagSet.IntVar(&params.limit, "limit", 20, "show at most this many versions, newest first (0 = all)")
			flagSet.BoolVar(&params.noCache, "no-cache", false, "bypass the version cache")
			return flagSet
		},
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one tool name required")
			}
			return runVersions(ctx, params, args[0])
		},
	}
}

func runVersions(ctx context.Context, params versionsParams, tool string) error {
	cfg, err := config.Load(params.configPath)
	if err != nil {
		return err
	}

	var catalog versioncat.Catalog = versioncat.NewMise(cfg.MiseBinary)
	if !params.noCache {
		catalog = versioncat.NewCached(catalog, cfg.CacheRoot, 24*time.Hour)
	}

	versions, err := catalog.Versions(ctx, tool)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		return fmt.Errorf("no versions found for %s", tool)
	}

	// mise lists oldest first; print newest first.
	limit := params.limit
	if limit <= 0 || limit > len(versions) {
		limit = len(versions)
	}
	for i := 0; i < limit; i++ {
		fmt.Println(versions[len(versions)-1-i])
	}
	return nil
}
