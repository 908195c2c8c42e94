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

package defaults

import "time"

// Queue geometry for command submission rings.
const (
	// PacketWords is the number of 32-bit words in one queue packet (64 bytes).
	PacketWords = 16

	// QueueSize is the default number of packet slots in a submission ring.
	QueueSize = 64

	// MaxQueueSize bounds ring depth; the runtime caps hardware queues at 2^17 packets.
	MaxQueueSize = 1 << 17
)

// Consumer timing for the software packet processor.
const (
	// ConsumerPollInterval is how long an idle consumer waits for the doorbell
	// before re-checking the ring.
	ConsumerPollInterval = 5 * time.Millisecond
)

// Runtime dispatch table compatibility.
const (
	// MinRuntimeAPIVersion is the oldest dispatch table version the interceptor patches.
	MinRuntimeAPIVersion = "1.1"
)

// Server timeouts for HTTP server configuration.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)

// Server request limits.
const (
	// ServerRateLimit is the default steady-state request rate (req/s).
	ServerRateLimit = 100

	// ServerRateLimitBurst is the default request burst size.
	ServerRateLimitBurst = 200

	// ServerPort is the default listen port.
	ServerPort = 9400
)

// CLI timeouts for command-line operations.
const (
	// CLIQueueTimeout bounds a queue run when the caller sets no deadline.
	CLIQueueTimeout = 2 * time.Minute
)
