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

// Package cli implements the gpu-intercept command-line interface.
//
// # Commands
//
// trace - Run a workload through the intercepted dispatch table:
//
//	gpu-intercept trace [--config file] [--intercept] [--events kind,...] [--format table]
//
// Builds the simulated topology, installs interception and prints every
// allocate, device and memcopy event the workload produced.
//
// queue - Drive an instrumented submission ring:
//
//	gpu-intercept queue --producers 4 --packets 100000 --size 1024 [--rate 5000]
//
// Runs concurrent producers against a draining consumer and prints
// throughput and the final ring indices.
//
// serve - Expose a session over HTTP:
//
//	gpu-intercept serve --port 9400 [--interval 10s]
//
// Serves /health, /ready, /metrics and /v1/events.
//
// # Global Flags
//
//	--log-level    Logging verbosity: debug, info, warn, error (env LOG_LEVEL)
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Shared Command Flags
//
//	--config, -c   Configuration file (env GPU_INTERCEPT_CONFIG)
//	--intercept    Install interception; overrides config and GPU_INTERCEPT_ENABLE
//	--on-fatal     exit (default) terminates on runtime failures; log reports and continues
//	--output, -o   Output file path (default: stdout)
//	--format, -t   Output format: yaml, json, table (default: yaml)
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, execution failure)
//	2  Context canceled or timeout
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/gpu-intercept/pkg/cli.version=1.0.0'"
package cli
