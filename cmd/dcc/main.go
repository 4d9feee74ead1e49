// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sarg3nt/dynamic-dev-container-sub000/cmd/dcc/cli"
	"github.com/sarg3nt/dynamic-dev-container-sub000/cmd/dcc/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output (like doctor) return an
		// ExitError with the desired exit code. Don't print a redundant
		// "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --verbose is global: strip it before dispatch so every
	// subcommand gets debug logging without declaring the flag.
	args := make([]string, 0, len(os.Args)-1)
	verbose := false
	for _, arg := range os.Args[1:] {
		if arg == "--verbose" {
			verbose = true
			continue
		}
		args = append(args, arg)
	}

	logger := cli.NewCommandLogger(verbose)
	return commands.Root().Execute(ctx, args, logger)
}
