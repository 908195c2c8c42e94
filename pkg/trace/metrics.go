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

package trace

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	traceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gpu_intercept_trace_duration_seconds",
			Help:    "Duration of complete workload runs",
			Buckets: prometheus.DefBuckets,
		},
	)

	stepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gpu_intercept_trace_step_duration_seconds",
			Help:    "Duration of individual workload steps",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		},
		[]string{"op"},
	)

	queueRunPackets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gpu_intercept_trace_queue_packets_total",
			Help: "Total number of packets moved by queue runs",
		},
		[]string{"direction"},
	)
)
