// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

// Package snapshot implements "dcc snapshot": list and restore the
// pre-compose snapshots taken before target files are replaced.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/sarg3nt/dynamic-dev-container-sub000/cmd/dcc/cli"
	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/config"
	libsnapshot "github.com/sarg3nt/dynamic-dev-container-sub000/lib/snapshot"
)

// Command returns the "dcc snapshot" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "snapshot",
		Summary: "List and restore pre-compose snapshots",
		Subcommands: []*cli.Command{
			listCommand(),
			restoreCommand(),
		},
	}
}

type listParams struct {
	configPath string
}

func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List stored snapshots, newest first",
		Usage:   "dcc snapshot list [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flagSet.StringVar(&params.configPath, "config", "", "config file (overrides DCC_CONFIG)")
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
	cfg, err := config.Load(params.configPath)
	if err != nil {
		return err
	}

	store := libsnapshot.NewStore(cfg.SnapshotRoot)
	infos, err := store.List()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("no snapshots stored")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 2, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tFILES\tNOTE")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			info.ID,
			info.Created.Local().Format("2006-01-02 15:04:05"),
			strings.Join(info.Paths, ", "),
			info.Note)
	}
	return tw.Flush()
}

type restoreParams struct {
	configPath string
	target     string
	id         string
}

func restoreCommand() *cli.Command {
	var params restoreParams

	return &cli.Command{
		Name:    "restore",
		Summary: "Restore snapshotted files into a target directory",
		Description: `Write the files captured in a snapshot back into the target
directory. Without --id, the most recent snapshot is restored. Every
file is integrity-checked before anything is written.`,
		Usage: "dcc snapshot restore [flags]",
		Examples: []cli.Example{
			{
				Description: "Undo the last composition",
				Command:     "dcc snapshot restore --target .",
			},
			{
				Description: "Restore a specific snapshot",
				Command:     "dcc snapshot restore --id 20260825-104500 --target .",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("restore", pflag.ContinueOnError)
			flagSet.StringVar(&params.configPath, "config", "", "config file (overrides DCC_CONFIG)")
			flagSet.StringVar(&params.target, "target", ".", "target directory to restore into")
			flagSet.StringVar(&params.id, "id", "", "snapshot ID (default: most recent)")
			return flagSet
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runRestore(params, logger)
		},
	}
}

func runRestore(params restoreParams, logger *slog.Logger) error {
	cfg, err := config.Load(params.configPath)
	if err != nil {
		return err
	}

	store := libsnapshot.NewStore(cfg.SnapshotRoot)

	id := params.id
	if id == "" {
		infos, listErr := store.List()
		if listErr != nil {
			return listErr
		}
		if len(infos) == 0 {
			return fmt.Errorf("no snapshots stored")
		}
		id = infos[0].ID
	}

	restored, err := store.Restore(id, params.target)
	if err != nil {
		return err
	}
	logger.Info("snapshot restored", "snapshot", id, "target", params.target)
	for _, path := range restored {
		fmt.Println(path)
	}
	return nil
}
