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

// Package server exposes a running interception session over HTTP.
//
// # Endpoints
//
//   - GET /         service name, version, readiness and route list
//   - GET /health   liveness, always 200
//   - GET /ready    200 once serving, 503 before start and during shutdown
//   - GET /metrics  Prometheus exposition of every gpu_intercept_* metric
//   - GET /v1/events?since=N&kind=K&limit=L
//     recorded interception events newer than sequence N, optionally
//     filtered by kind and capped at L records; the response carries the
//     sequence to poll from next
//
// # Middleware
//
// API routes run through, outermost first: Prometheus RED metrics, API
// version negotiation (X-API-Version), request ID propagation
// (X-Request-Id, generated with google/uuid when missing or malformed),
// panic recovery, a token-bucket rate limiter (golang.org/x/time/rate) and
// debug request logging. System endpoints skip the chain.
//
// # Errors
//
// Errors are returned as ErrorResponse JSON bodies with a stable code, the
// request ID and a retryable hint.
//
// # Lifecycle
//
//	srv := server.NewServer(server.NewConfig(), server.WithEventSource(recorder))
//	err := srv.Start(ctx) // blocks; shuts down gracefully when ctx is done
//
// RunWithConfig additionally stops on SIGINT and SIGTERM. PORT and
// SHUTDOWN_TIMEOUT_SECONDS override the listen port and shutdown window.
package server
