/*
Copyright © 2026 BitingLip
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	liperr "github.com/bitinglip/bitinglip-cli/pkg/errors"
	"github.com/bitinglip/bitinglip-cli/pkg/gateway"
	"github.com/bitinglip/bitinglip-cli/pkg/serializer"
)

func workersCmd() *cli.Command {
	return &cli.Command{
		Name:  "workers",
		Usage: "Manage workers in the cluster",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List registered workers",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Usage: "filter by worker status"},
					&cli.StringFlag{Name: "type", Usage: "filter by worker type"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					query := gateway.QueryValues(map[string]string{
						"status": cmd.String("status"),
						"type":   cmd.String("type"),
					})
					return send(ctx, cmd, gateway.ResourceWorkers, gateway.VerbList, nil, query, nil)
				},
			},
			{
				Name:      "show",
				Usage:     "Show details of one worker",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := requireArg(cmd, 0, "worker id")
					if err != nil {
						return err
					}
					return send(ctx, cmd, gateway.ResourceWorkers, gateway.VerbShow,
						map[string]string{"id": id}, nil, nil)
				},
			},
			{
				Name:      "register",
				Usage:     "Register a new worker from a JSON spec",
				ArgsUsage: "<spec>",
				Description: `The spec is a JSON document describing the worker (name, type, host,
port, max_load, capabilities). Pass it inline or as @path/to/spec.json.`,
				Action: func(ctx context.Context, cmd *cli.Command) error {
					arg, err := requireArg(cmd, 0, "worker spec")
					if err != nil {
						return err
					}
					spec, err := parseWorkerSpec(arg)
					if err != nil {
						return renderFailure(serializer.FormatTable, err)
					}
					return send(ctx, cmd, gateway.ResourceWorkers, gateway.VerbRegister, nil, nil, spec)
				},
			},
			{
				Name:      "deregister",
				Usage:     "Remove a worker from the cluster",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := requireArg(cmd, 0, "worker id")
					if err != nil {
						return err
					}
					return send(ctx, cmd, gateway.ResourceWorkers, gateway.VerbDeregister,
						map[string]string{"id": id}, nil, nil)
				},
			},
			{
				Name:      "update",
				Usage:     "Update a worker's configuration",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Usage: "new worker status"},
					&cli.IntFlag{Name: "max-load", Usage: "new maximum concurrent load"},
					&cli.StringFlag{Name: "capabilities", Usage: "capabilities as inline JSON array"},
					&cli.StringFlag{Name: "metadata", Usage: "metadata as inline JSON"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := requireArg(cmd, 0, "worker id")
					if err != nil {
						return err
					}

					body := map[string]any{}
					if status := cmd.String("status"); status != "" {
						body["status"] = status
					}
					if cmd.IsSet("max-load") {
						body["max_load"] = int(cmd.Int("max-load"))
					}
					if raw := cmd.String("capabilities"); raw != "" {
						v, err := parseJSONValue("capabilities", raw)
						if err != nil {
							return renderFailure(serializer.FormatTable, err)
						}
						body["capabilities"] = v
					}
					if raw := cmd.String("metadata"); raw != "" {
						v, err := parseJSONValue("metadata", raw)
						if err != nil {
							return renderFailure(serializer.FormatTable, err)
						}
						body["metadata"] = v
					}
					if len(body) == 0 {
						return usageError("no updates specified")
					}
					return send(ctx, cmd, gateway.ResourceWorkers, gateway.VerbUpdate,
						map[string]string{"id": id}, nil, body)
				},
			},
			{
				Name:      "ping",
				Usage:     "Check connectivity to one worker",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "timeout", Value: 5, Usage: "worker-side ping timeout in seconds"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := requireArg(cmd, 0, "worker id")
					if err != nil {
						return err
					}
					body := map[string]any{"timeout": int(cmd.Int("timeout"))}
					return send(ctx, cmd, gateway.ResourceWorkers, gateway.VerbPing,
						map[string]string{"id": id}, nil, body)
				},
			},
		},
	}
}

// parseWorkerSpec reads the register spec argument, either inline JSON or a
// @file reference.
func parseWorkerSpec(arg string) (map[string]any, error) {
	raw := []byte(arg)
	if strings.HasPrefix(arg, "@") {
		var err error
		raw, err = os.ReadFile(arg[1:])
		if err != nil {
			return nil, liperr.Wrap(liperr.KindValidationFailed, "failed to read worker spec file", err)
		}
	}

	var spec map[string]any
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, liperr.Wrap(liperr.KindValidationFailed, "worker spec is not a JSON object", err)
	}
	return spec, nil
}
