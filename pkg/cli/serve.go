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
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/gpu-intercept/pkg/server"
	"github.com/NVIDIA/gpu-intercept/pkg/trace"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:                  "serve",
		EnableShellCompletion: true,
		Usage:                 "Serve recorded events, health and metrics over HTTP",
		Description: `Starts an interception session and an HTTP server exposing it:

  GET /health, /ready   liveness and readiness
  GET /metrics          Prometheus metrics
  GET /v1/events        recorded events (?since=N&kind=K&limit=L)

The configured workload runs once at start and, with --interval, again on
every tick so that events keep flowing.

# Examples

  gpu-intercept serve --port 9400 --interval 10s`,
		Flags: []cli.Flag{
			configFlag,
			interceptFlag,
			eventsFlag,
			&cli.StringFlag{
				Name:  "address",
				Usage: "listen address",
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "listen port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "re-run the workload this often (0: run once)",
			},
			&cli.IntFlag{
				Name:  "record-limit",
				Usage: "number of most recent events kept for /v1/events",
				Value: 10000,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			// A long-running server reports runtime failures instead of exiting.
			s, err := trace.NewSession(cfg,
				trace.WithFatalHandler(func(err error) {
					slog.Error("interception failure", "error", err)
				}),
				trace.WithRecordLimit(cmd.Int("record-limit")),
				trace.WithVersion(version),
			)
			if err != nil {
				return err
			}

			srvCfg := server.NewConfig()
			srvCfg.Name = name
			srvCfg.Version = version
			srvCfg.Address = cmd.String("address")
			if cmd.IsSet("port") {
				srvCfg.Port = cmd.Int("port")
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				defer cancel()
				return server.RunWithConfig(gctx, srvCfg, server.WithEventSource(s.Recorder()))
			})
			g.Go(func() error {
				return runWorkloadLoop(gctx, s, cmd.Duration("interval"))
			})
			return g.Wait()
		},
	}
}

// runWorkloadLoop runs the session workload once, then on every tick until
// ctx is done. Workload failures are logged and do not stop the server.
func runWorkloadLoop(ctx context.Context, s *trace.Session, interval time.Duration) error {
	run := func() {
		res, err := s.Run(ctx)
		if err != nil {
			if ctx.Err() == nil {
				slog.Error("workload failed", "error", err)
			}
			return
		}
		slog.Debug("workload complete", "steps", res.Steps, "events", len(res.Records))
	}

	run()
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			run()
		}
	}
}
