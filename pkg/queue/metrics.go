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

package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	packetsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gpu_intercept_queue_packets_submitted_total",
			Help: "Total number of packets published to submission queues",
		},
	)

	packetsConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gpu_intercept_queue_packets_consumed_total",
			Help: "Total number of packets taken off submission queues by software consumers",
		},
	)

	// Submissions that reused a slot the consumer had not released yet.
	packetsLapped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gpu_intercept_queue_packets_lapped_total",
			Help: "Total number of packets written over an unconsumed slot",
		},
	)
)
