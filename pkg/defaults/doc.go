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

// Package defaults provides centralized configuration constants for gpu-intercept.
//
// This package defines queue geometry, consumer polling, server timeouts, and the
// oldest runtime API table the interceptor will patch.
//
// # Categories
//
//   - Queue: packet size, default and maximum ring depth
//   - Consumer: doorbell poll interval
//   - Server: HTTP server timeouts and rate limits
//   - Runtime: minimum supported dispatch table version
//
// # Usage
//
//	import "github.com/NVIDIA/gpu-intercept/pkg/defaults"
//
//	q, err := queue.New(defaults.QueueSize)
package defaults
