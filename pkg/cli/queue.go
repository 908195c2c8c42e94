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
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/gpu-intercept/pkg/defaults"
	"github.com/NVIDIA/gpu-intercept/pkg/trace"
)

func queueCmd() *cli.Command {
	return &cli.Command{
		Name:                  "queue",
		EnableShellCompletion: true,
		Usage:                 "Push packets through an instrumented submission ring",
		Description: `Creates a submission ring, wraps it with the interceptor and runs concurrent
producers against a consumer that drains it. Every published packet fires a
submit event when interception is enabled. Prints throughput and final ring
indices.

# Examples

Four producers, 100k packets, 1024-slot ring:
  gpu-intercept queue --producers 4 --packets 100000 --size 1024

Paced at 500 packets per second:
  gpu-intercept queue --rate 500 --packets 2000`,
		Flags: []cli.Flag{
			configFlag,
			interceptFlag,
			fatalFlag,
			&cli.IntFlag{
				Name:    "size",
				Usage:   "ring size in packets (power of two)",
				Sources: cli.EnvVars("GPU_INTERCEPT_QUEUE_SIZE"),
			},
			&cli.IntFlag{
				Name:  "packets",
				Usage: "number of packets to submit",
			},
			&cli.IntFlag{
				Name:  "producers",
				Usage: "number of concurrent producers",
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "packets per second across all producers (0: unlimited)",
			},
			&cli.StringFlag{
				Name:  "type",
				Usage: "packet type to submit",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "abort the run after this long",
				Value: defaults.CLIQueueTimeout,
			},
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}
			fatal, err := parseFatalHandler(cmd)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.IsSet("size") {
				cfg.Queue.Size = cmd.Int("size")
			}
			if cmd.IsSet("packets") {
				cfg.Queue.Packets = cmd.Int("packets")
			}
			if cmd.IsSet("producers") {
				cfg.Queue.Producers = cmd.Int("producers")
			}
			if cmd.IsSet("rate") {
				cfg.Queue.Rate = cmd.Float("rate")
			}
			if cmd.IsSet("type") {
				cfg.Queue.Type = cmd.String("type")
			}
			if err := cfg.Queue.Validate(); err != nil {
				return err
			}

			timeout := cmd.Duration("timeout")
			if timeout <= 0 {
				return fmt.Errorf("timeout must be positive, got %s", timeout)
			}
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			s, err := trace.NewSession(cfg, trace.WithFatalHandler(fatal), trace.WithRecordLimit(1), trace.WithVersion(version))
			if err != nil {
				return err
			}
			stats, err := s.RunQueue(ctx)
			if err != nil {
				return err
			}
			return write(ctx, cmd, stats)
		},
	}
}
