// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/gpu-intercept/pkg/config"
	"github.com/NVIDIA/gpu-intercept/pkg/interceptor"
	"github.com/NVIDIA/gpu-intercept/pkg/logging"
	"github.com/NVIDIA/gpu-intercept/pkg/serializer"
)

const (
	name           = "gpu-intercept"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

var (
	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output file path (default: stdout)",
	}

	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Usage:   fmt.Sprintf("output format (%v)", serializer.SupportedFormats()),
		Value:   string(serializer.FormatYAML),
	}

	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "configuration file (yaml or json)",
		Sources: cli.EnvVars("GPU_INTERCEPT_CONFIG"),
	}

	interceptFlag = &cli.BoolFlag{
		Name:  "intercept",
		Usage: "install interception (overrides config and GPU_INTERCEPT_ENABLE)",
	}

	fatalFlag = &cli.StringFlag{
		Name:  "on-fatal",
		Usage: "policy for runtime failures seen by the interceptor: exit or log",
		Value: "exit",
	}
)

// Execute runs the command line and exits the process on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Version:               fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Usage:                 "GPU runtime memory interception toolkit",
		EnableShellCompletion: true,
		Description: `Installs the interception layer over a simulated GPU runtime and reports
the memory events it observes:

trace - run a workload and print allocate, device and memcopy events
queue - push packets through an instrumented submission ring
serve - expose recorded events, health and metrics over HTTP`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))
			slog.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date)
			return ctx, nil
		},
		Commands: []*cli.Command{
			traceCmd(),
			queueCmd(),
			serveCmd(),
		},
		Action: commandLister,
	}
}

// commandLister prints the visible subcommands when none is given.
func commandLister(_ context.Context, cmd *cli.Command) error {
	if cmd == nil {
		return nil
	}
	for _, c := range cmd.Commands {
		if c.Hidden {
			continue
		}
		fmt.Fprintf(cmd.Root().Writer, "  %-8s %s\n", c.Name, c.Usage)
	}
	return nil
}

func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(cmd.String("format"))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q", f)
	}
	return f, nil
}

func parseFatalHandler(cmd *cli.Command) (interceptor.FatalHandler, error) {
	switch p := cmd.String("on-fatal"); p {
	case "exit", "":
		return interceptor.DefaultFatalHandler, nil
	case "log":
		return interceptor.LogFatalHandler(slog.Default()), nil
	default:
		return nil, fmt.Errorf("unknown fatal policy: %q", p)
	}
}

// loadConfig reads --config and applies command-line overrides.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if cmd.IsSet("intercept") {
		cfg.Interceptor.Enable = cmd.Bool("intercept")
	}
	if cmd.IsSet("events") {
		cfg.Interceptor.Events = cmd.StringSlice("events")
	}
	return cfg, cfg.Validate()
}

// write serializes v to --output in --format.
func write(ctx context.Context, cmd *cli.Command, v any) error {
	format, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}
	var w *serializer.Writer
	if out := cmd.String("output"); out != "" {
		w = serializer.NewFileWriterOrStdout(format, out)
	} else {
		w = serializer.NewWriter(format, cmd.Root().Writer)
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil {
			slog.Warn("failed to close output", "error", closeErr)
		}
	}()
	return w.Serialize(ctx, v)
}
