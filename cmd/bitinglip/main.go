/*
Copyright © 2026 BitingLip
SPDX-License-Identifier: Apache-2.0
*/

// Command bitinglip is the administrative client for the BitingLip
// distributed inference cluster.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	bcli "github.com/bitinglip/bitinglip-cli/pkg/cli"
	liperr "github.com/bitinglip/bitinglip-cli/pkg/errors"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	// Interrupt aborts the in-flight call and any retry backoff.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bcli.New().Run(ctx, os.Args); err != nil {
		// Structured errors were already rendered by the dispatcher.
		var se *liperr.StructuredError
		if !errors.As(err, &se) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(bcli.ExitCode(err))
	}
}
