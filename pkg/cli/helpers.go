/*
Copyright © 2026 BitingLip
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/bitinglip/bitinglip-cli/pkg/config"
	liperr "github.com/bitinglip/bitinglip-cli/pkg/errors"
	"github.com/bitinglip/bitinglip-cli/pkg/gateway"
	"github.com/bitinglip/bitinglip-cli/pkg/result"
	"github.com/bitinglip/bitinglip-cli/pkg/serializer"
)

// stdout and stderr are swappable so command tests can capture output.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// settingsFromCommand resolves the full configuration for one invocation:
// built-in defaults, config file, environment, then flags.
func settingsFromCommand(cmd *cli.Command) (*config.Settings, error) {
	path := cmd.String("config")
	if path == "" {
		path = config.DefaultPath()
	}
	file, err := config.LoadFile(path)
	if err != nil {
		return nil, liperr.Wrap(liperr.KindConfigInvalid, err.Error(), err)
	}

	env := map[string]string{
		config.EnvAPIURL:  os.Getenv(config.EnvAPIURL),
		config.EnvAPIKey:  os.Getenv(config.EnvAPIKey),
		config.EnvFormat:  os.Getenv(config.EnvFormat),
		config.EnvVerbose: os.Getenv(config.EnvVerbose),
	}

	flags := config.Overrides{}
	if cmd.IsSet("api-url") {
		v := cmd.String("api-url")
		flags.APIURL = &v
	}
	if cmd.IsSet("api-key") {
		v := cmd.String("api-key")
		flags.APIKey = &v
	}
	if cmd.IsSet("format") {
		v := cmd.String("format")
		flags.Format = &v
	}
	if cmd.IsSet("timeout") {
		v := int(cmd.Int("timeout"))
		flags.TimeoutMs = &v
	}
	if cmd.IsSet("retries") {
		v := int(cmd.Int("retries"))
		flags.Retries = &v
	}
	if cmd.IsSet("verbose") {
		v := cmd.Bool("verbose")
		flags.Verbose = &v
	}

	return config.Resolve(config.BuiltinDefaults(), file, env, flags)
}

// callFunc produces the terminal Result for one command invocation.
type callFunc func(ctx context.Context, client *gateway.Client) (result.Result, error)

// runCall is the dispatch pipeline shared by every command: resolve
// settings, issue the call, render the Result, and surface the typed error
// for exit-code mapping. This is the only place user-visible output happens.
func runCall(ctx context.Context, cmd *cli.Command, call callFunc) error {
	settings, err := settingsFromCommand(cmd)
	if err != nil {
		return renderFailure(serializer.FormatTable, err)
	}
	setupLogging(settings.Verbose)

	client := gateway.New(settings)
	res, err := call(ctx, client)
	if err != nil {
		return renderFailure(settings.Format, err)
	}

	w := serializer.NewWriter(settings.Format, stdout, stderr)
	if err := w.Render(res); err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}
	if res.IsErr() {
		slog.Debug("request failed",
			"kind", res.Err.Kind,
			"status", res.Err.StatusCode,
			"retryable", res.Err.Retryable,
		)
		return res.Err
	}

	slog.Debug("request complete", "status", res.StatusCode, "request_id", res.RequestID)
	return nil
}

// send is the common case: one (resource, verb) descriptor per invocation.
func send(ctx context.Context, cmd *cli.Command, resource gateway.Resource, verb gateway.Verb,
	params map[string]string, query url.Values, body any) error {
	return runCall(ctx, cmd, func(ctx context.Context, client *gateway.Client) (result.Result, error) {
		d, err := gateway.NewDescriptor(resource, verb, params, query, body)
		if err != nil {
			return result.Result{}, liperr.Wrap(liperr.KindValidationFailed, err.Error(), err)
		}
		return client.Send(ctx, d), nil
	})
}

// renderFailure writes a failure that occurred before or instead of a
// gateway call, using the same single-line error form as the renderer.
func renderFailure(format serializer.Format, err error) error {
	var se *liperr.StructuredError
	if errors.As(err, &se) {
		_ = serializer.NewWriter(format, stdout, stderr).Render(result.Fail(se))
		return se
	}
	fmt.Fprintln(stderr, err)
	return err
}

// usageError reports a locally detected argument problem.
func usageError(message string) error {
	err := liperr.New(liperr.KindValidationFailed, message)
	fmt.Fprintf(stderr, "%s\n", err)
	return err
}

// parseJSONValue parses an inline JSON option value, naming the option in
// the failure message.
func parseJSONValue(option, raw string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, liperr.Wrap(liperr.KindValidationFailed, option+" is not valid JSON", err)
	}
	return v, nil
}

// requireArg fetches a required positional argument.
func requireArg(cmd *cli.Command, index int, name string) (string, error) {
	val := cmd.Args().Get(index)
	if val == "" {
		return "", usageError(name + " is required")
	}
	return val, nil
}

func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
}

// ExitCode maps a command error to the process exit code: 0 success,
// 2 usage/validation/config, 3 auth, 4 not-found, 5 server, 1 everything
// else (transport, malformed, unknown).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var se *liperr.StructuredError
	if errors.As(err, &se) {
		switch se.Kind {
		case liperr.KindConfigInvalid, liperr.KindValidationFailed:
			return 2
		case liperr.KindAuthRejected:
			return 3
		case liperr.KindNotFound:
			return 4
		case liperr.KindServerError:
			return 5
		default:
			return 1
		}
	}
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return 1
}
