/*
Copyright © 2026 BitingLip
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	liperr "github.com/bitinglip/bitinglip-cli/pkg/errors"
	"github.com/bitinglip/bitinglip-cli/pkg/gateway"
	"github.com/bitinglip/bitinglip-cli/pkg/result"
	"github.com/bitinglip/bitinglip-cli/pkg/serializer"
)

// taskPollInterval is the delay between status polls for --wait.
var taskPollInterval = 2 * time.Second

func tasksCmd() *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "Inspect and control inference tasks",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tasks",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Usage: "filter by task status"},
					&cli.IntFlag{Name: "page", Value: 1, Usage: "page number"},
					&cli.IntFlag{Name: "page-size", Value: 20, Usage: "items per page"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					query := gateway.QueryValues(map[string]string{
						"status":    cmd.String("status"),
						"page":      strconv.Itoa(int(cmd.Int("page"))),
						"page_size": strconv.Itoa(int(cmd.Int("page-size"))),
					})
					return send(ctx, cmd, gateway.ResourceTasks, gateway.VerbList, nil, query, nil)
				},
			},
			{
				Name:      "create",
				Usage:     "Submit a new inference task",
				ArgsUsage: "<task-type>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "model", Usage: "model to run the task on"},
					&cli.StringFlag{Name: "input", Usage: "input data as inline JSON"},
					&cli.IntFlag{Name: "priority", Value: 1, Usage: "task priority (1-10)"},
					&cli.StringFlag{Name: "metadata", Usage: "additional metadata as inline JSON"},
					&cli.BoolFlag{Name: "wait", Usage: "poll until the task reaches a terminal state"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					taskType, err := requireArg(cmd, 0, "task type")
					if err != nil {
						return err
					}
					body := map[string]any{
						"task_type": taskType,
						"priority":  int(cmd.Int("priority")),
					}
					if model := cmd.String("model"); model != "" {
						body["model_id"] = model
					}
					if raw := cmd.String("input"); raw != "" {
						v, err := parseJSONValue("input data", raw)
						if err != nil {
							return renderFailure(serializer.FormatTable, err)
						}
						body["input_data"] = v
					}
					if raw := cmd.String("metadata"); raw != "" {
						v, err := parseJSONValue("metadata", raw)
						if err != nil {
							return renderFailure(serializer.FormatTable, err)
						}
						body["metadata"] = v
					}

					if !cmd.Bool("wait") {
						return send(ctx, cmd, gateway.ResourceTasks, gateway.VerbCreate, nil, nil, body)
					}
					return runCall(ctx, cmd, func(ctx context.Context, client *gateway.Client) (result.Result, error) {
						d, err := gateway.NewDescriptor(gateway.ResourceTasks, gateway.VerbCreate, nil, nil, body)
						if err != nil {
							return result.Result{}, liperr.Wrap(liperr.KindValidationFailed, err.Error(), err)
						}
						res := client.Send(ctx, d)
						if res.IsErr() {
							return res, nil
						}
						id := createdTaskID(res.Data)
						if id == "" {
							return result.Fail(liperr.New(liperr.KindMalformedResponse,
								"create response carries no task id").WithStatus(res.StatusCode)), nil
						}
						return waitForTask(ctx, client, id)
					})
				},
			},
			{
				Name:      "status",
				Usage:     "Show status of one task",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := requireArg(cmd, 0, "task id")
					if err != nil {
						return err
					}
					return send(ctx, cmd, gateway.ResourceTasks, gateway.VerbStatus,
						map[string]string{"id": id}, nil, nil)
				},
			},
			{
				Name:      "cancel",
				Usage:     "Cancel a running or queued task",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := requireArg(cmd, 0, "task id")
					if err != nil {
						return err
					}
					return send(ctx, cmd, gateway.ResourceTasks, gateway.VerbCancel,
						map[string]string{"id": id}, nil, nil)
				},
			},
		},
	}
}

// createdTaskID pulls the new task's id out of a create response.
func createdTaskID(data any) string {
	obj, ok := data.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"id", "task_id"} {
		if id, ok := obj[key].(string); ok && id != "" {
			return id
		}
	}
	return ""
}

// terminalTaskStates are the states after which a task no longer changes.
var terminalTaskStates = map[string]bool{
	"completed": true,
	"failed":    true,
	"cancelled": true,
}

// waitForTask polls the task until it reaches a terminal state and returns
// the final status Result. Progress lines go to the error stream so the
// output stream stays a single parseable document.
func waitForTask(ctx context.Context, client *gateway.Client, id string) (result.Result, error) {
	d, err := gateway.NewDescriptor(gateway.ResourceTasks, gateway.VerbStatus,
		map[string]string{"id": id}, nil, nil)
	if err != nil {
		return result.Result{}, liperr.Wrap(liperr.KindValidationFailed, err.Error(), err)
	}

	for {
		res := client.Send(ctx, d)
		if res.IsErr() {
			return res, nil
		}

		status := ""
		if obj, ok := res.Data.(map[string]any); ok {
			status, _ = obj["status"].(string)
		}
		if terminalTaskStates[status] {
			return res, nil
		}
		fmt.Fprintf(stderr, "task %s: %s\n", id, status)

		timer := time.NewTimer(taskPollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return result.Fail(liperr.Wrap(liperr.KindTimeout, "wait cancelled", ctx.Err())), nil
		case <-timer.C:
		}
	}
}
