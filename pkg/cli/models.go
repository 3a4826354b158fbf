/*
Copyright © 2026 BitingLip
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/bitinglip/bitinglip-cli/pkg/gateway"
	"github.com/bitinglip/bitinglip-cli/pkg/serializer"
)

func modelsCmd() *cli.Command {
	return &cli.Command{
		Name:  "models",
		Usage: "Manage models in the cluster registry",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List registered models",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Usage: "filter by model type"},
					&cli.StringFlag{Name: "status", Usage: "filter by model status"},
					&cli.IntFlag{Name: "page", Value: 1, Usage: "page number"},
					&cli.IntFlag{Name: "page-size", Value: 20, Usage: "items per page"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					query := gateway.QueryValues(map[string]string{
						"model_type": cmd.String("type"),
						"status":     cmd.String("status"),
						"page":       strconv.Itoa(int(cmd.Int("page"))),
						"page_size":  strconv.Itoa(int(cmd.Int("page-size"))),
					})
					return send(ctx, cmd, gateway.ResourceModels, gateway.VerbList, nil, query, nil)
				},
			},
			{
				Name:      "show",
				Usage:     "Show details of one model",
				ArgsUsage: "<name>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name, err := requireArg(cmd, 0, "model name")
					if err != nil {
						return err
					}
					return send(ctx, cmd, gateway.ResourceModels, gateway.VerbShow,
						map[string]string{"name": name}, nil, nil)
				},
			},
			{
				Name:      "register",
				Usage:     "Register a model in the registry",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Usage: "model file path"},
					&cli.StringFlag{Name: "url", Usage: "model download URL"},
					&cli.StringFlag{Name: "type", Usage: "model type"},
					&cli.StringFlag{Name: "description", Usage: "model description"},
					&cli.StringFlag{Name: "metadata", Usage: "additional metadata as inline JSON"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name, err := requireArg(cmd, 0, "model name")
					if err != nil {
						return err
					}
					path, sourceURL := cmd.String("path"), cmd.String("url")
					if path == "" && sourceURL == "" {
						return usageError("either --path or --url is required")
					}

					modelType := cmd.String("type")
					if modelType == "" {
						modelType = "unknown"
					}
					body := map[string]any{
						"name":        name,
						"type":        modelType,
						"description": cmd.String("description"),
					}
					if path != "" {
						body["path"] = path
					}
					if sourceURL != "" {
						body["url"] = sourceURL
					}
					if raw := cmd.String("metadata"); raw != "" {
						v, err := parseJSONValue("metadata", raw)
						if err != nil {
							return renderFailure(serializer.FormatTable, err)
						}
						body["metadata"] = v
					}
					return send(ctx, cmd, gateway.ResourceModels, gateway.VerbRegister, nil, nil, body)
				},
			},
			{
				Name:      "delete",
				Usage:     "Remove a model from the registry",
				ArgsUsage: "<name>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name, err := requireArg(cmd, 0, "model name")
					if err != nil {
						return err
					}
					return send(ctx, cmd, gateway.ResourceModels, gateway.VerbDelete,
						map[string]string{"name": name}, nil, nil)
				},
			},
			{
				Name:      "download",
				Usage:     "Submit a model download; poll with 'models progress'",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Usage: "model type hint"},
					&cli.BoolFlag{Name: "force", Usage: "force re-download"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name, err := requireArg(cmd, 0, "model name")
					if err != nil {
						return err
					}
					body := map[string]any{
						"model_name": name,
						"force":      cmd.Bool("force"),
					}
					if t := cmd.String("type"); t != "" {
						body["model_type"] = t
					}
					return send(ctx, cmd, gateway.ResourceModels, gateway.VerbDownload, nil, nil, body)
				},
			},
			{
				Name:      "progress",
				Usage:     "Show progress of a submitted download",
				ArgsUsage: "<download-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := requireArg(cmd, 0, "download id")
					if err != nil {
						return err
					}
					return send(ctx, cmd, gateway.ResourceModels, gateway.VerbProgress,
						map[string]string{"id": id}, nil, nil)
				},
			},
			{
				Name:      "assign",
				Usage:     "Assign a model to a worker (auto-assign when worker omitted)",
				ArgsUsage: "<name> [worker]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "force assignment"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name, err := requireArg(cmd, 0, "model name")
					if err != nil {
						return err
					}
					body := map[string]any{
						"model_name": name,
						"force":      cmd.Bool("force"),
					}
					if worker := cmd.Args().Get(1); worker != "" {
						body["worker_id"] = worker
					}
					return send(ctx, cmd, gateway.ResourceModels, gateway.VerbAssign, nil, nil, body)
				},
			},
			{
				Name:      "unload",
				Usage:     "Unload a model from a worker (all workers when omitted)",
				ArgsUsage: "<name> [worker]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name, err := requireArg(cmd, 0, "model name")
					if err != nil {
						return err
					}
					body := map[string]any{"model_name": name}
					if worker := cmd.Args().Get(1); worker != "" {
						body["worker_id"] = worker
					}
					return send(ctx, cmd, gateway.ResourceModels, gateway.VerbUnload, nil, nil, body)
				},
			},
		},
	}
}
