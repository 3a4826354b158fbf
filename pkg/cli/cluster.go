/*
Copyright © 2026 BitingLip
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/bitinglip/bitinglip-cli/pkg/gateway"
	"github.com/bitinglip/bitinglip-cli/pkg/result"
)

func clusterCmd() *cli.Command {
	return &cli.Command{
		Name:  "cluster",
		Usage: "Inspect cluster status and health",
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Show overall cluster status",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return send(ctx, cmd, gateway.ResourceCluster, gateway.VerbStatus, nil, nil, nil)
				},
			},
			{
				Name:  "health",
				Usage: "Check health of the backing services",
				Description: `Probes each backing service's health endpoint concurrently and reports
per-component status. A single component can be probed with --component.`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "component",
						Usage: "probe a single component instead of all of them",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if component := cmd.String("component"); component != "" {
						return send(ctx, cmd, gateway.ResourceCluster, gateway.VerbHealth,
							map[string]string{"component": component}, nil, nil)
					}
					return runCall(ctx, cmd, func(ctx context.Context, client *gateway.Client) (result.Result, error) {
						return client.ComponentHealth(ctx, nil), nil
					})
				},
			},
		},
	}
}
