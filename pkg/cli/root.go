/*
Copyright © 2026 BitingLip
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/agnivade/levenshtein"
	"github.com/urfave/cli/v3"

	"github.com/bitinglip/bitinglip-cli/pkg/serializer"
	"github.com/bitinglip/bitinglip-cli/pkg/version"
)

// New builds the root command for the BitingLip administrative CLI.
func New() *cli.Command {
	return &cli.Command{
		Name:    "bitinglip",
		Usage:   "Administer the BitingLip distributed inference cluster",
		Version: version.Version(),
		Description: `Command-line client for the BitingLip gateway. Provides operator commands
for cluster status, model lifecycle, worker registration, and task control.

Configuration is resolved per field from, highest precedence first:
command-line flags, BITINGLIP_* environment variables, the config file
(~/.bitinglip/config.yaml or $BITINGLIP_CONFIG), and built-in defaults.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "api-url",
				Usage: "gateway base URL (default: http://localhost:8080)",
			},
			&cli.StringFlag{
				Name:  "api-key",
				Usage: "bearer token sent as Authorization header",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "output format (table, json, csv, yaml)",
			},
			&cli.IntFlag{
				Name:  "timeout",
				Usage: "per-attempt request timeout in milliseconds",
			},
			&cli.IntFlag{
				Name:  "retries",
				Usage: "retry count for transport failures and 5xx responses",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging with status codes and request ids",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "config file path",
			},
		},
		Commands: []*cli.Command{
			clusterCmd(),
			modelsCmd(),
			workersCmd(),
			tasksCmd(),
			versionCmd(),
		},
		EnableShellCompletion: true,
		CommandNotFound:       suggestCommand,
	}
}

// maxSuggestDistance bounds how far a typo may be from a real command before
// the suggestion is more confusing than helpful.
const maxSuggestDistance = 3

func suggestCommand(_ context.Context, cmd *cli.Command, name string) {
	fmt.Fprintf(stderr, "unknown command %q\n", name)

	best := ""
	bestDist := maxSuggestDistance + 1
	for _, sub := range cmd.Commands {
		if d := levenshtein.ComputeDistance(name, sub.Name); d < bestDist {
			best, bestDist = sub.Name, d
		}
	}
	if best != "" {
		fmt.Fprintf(stderr, "did you mean %q?\n", best)
	}
}

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show client version and resolved gateway endpoint",
		Action: func(_ context.Context, cmd *cli.Command) error {
			fmt.Fprintf(stdout, "bitinglip-cli %s\n", version.Version())

			settings, err := settingsFromCommand(cmd)
			if err != nil {
				return renderFailure(serializer.FormatTable, err)
			}
			fmt.Fprintf(stdout, "gateway: %s\n", settings.Endpoint)
			return nil
		},
	}
}
