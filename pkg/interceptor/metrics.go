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

package interceptor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/NVIDIA/gpu-intercept/pkg/callback"
	"github.com/NVIDIA/gpu-intercept/pkg/runtime"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

var (
	// Intercepted call metrics
	interceptedCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gpu_intercept_calls_total",
			Help: "Total number of intercepted runtime calls",
		},
		[]string{"operation", "status"},
	)

	interceptedCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gpu_intercept_call_duration_seconds",
			Help:    "Latency of the forwarded runtime call in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-7, 4, 12),
		},
		[]string{"operation"},
	)

	// Callback dispatch metrics
	eventsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gpu_intercept_events_total",
			Help: "Total number of events delivered to registered callbacks",
		},
		[]string{"event"},
	)

	// Fatal policy metrics
	fatalTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gpu_intercept_fatal_total",
			Help: "Total number of intercepted calls handed to the fatal policy",
		},
		[]string{"operation", "code"},
	)
)

func observeCall(op runtime.Operation, start time.Time, err error) {
	status := statusOK
	if err != nil {
		status = statusError
	}
	interceptedCalls.WithLabelValues(string(op), status).Inc()
	interceptedCallDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())
}

func countEvent(id callback.ID) {
	eventsDispatched.WithLabelValues(id.String()).Inc()
}
