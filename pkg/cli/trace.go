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

	"github.com/NVIDIA/gpu-intercept/pkg/callback"
	"github.com/NVIDIA/gpu-intercept/pkg/serializer"
	"github.com/NVIDIA/gpu-intercept/pkg/trace"
)

var eventsFlag = &cli.StringSliceFlag{
	Name:  "events",
	Usage: fmt.Sprintf("event kinds to record (%v; default: all)", callback.IDs()),
}

func traceCmd() *cli.Command {
	return &cli.Command{
		Name:                  "trace",
		EnableShellCompletion: true,
		Usage:                 "Run a workload against the simulated runtime and print intercepted events",
		Description: `Builds the simulated topology from the configuration, installs interception
when enabled, runs every workload step through the dispatch table and prints
the recorded events.

With --format table one row is printed per event; json and yaml print the
complete result including buffer addresses and per-kind counts.

# Examples

Trace the built-in workload:
  gpu-intercept trace --format table

Compare against an uninstrumented run:
  gpu-intercept trace --intercept=false

Record only copies from a custom workload:
  gpu-intercept trace --config workload.yaml --events memcopy --format json`,
		Flags: []cli.Flag{
			configFlag,
			interceptFlag,
			eventsFlag,
			fatalFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseOutputFormat(cmd)
			if err != nil {
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

			s, err := trace.NewSession(cfg, trace.WithFatalHandler(fatal), trace.WithVersion(version))
			if err != nil {
				return err
			}
			res, err := s.Run(ctx)
			if err != nil {
				return err
			}

			if format == serializer.FormatTable {
				return write(ctx, cmd, res.Records)
			}
			return write(ctx, cmd, res)
		},
	}
}
