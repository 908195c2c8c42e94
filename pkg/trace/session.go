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
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/NVIDIA/gpu-intercept/pkg/callback"
	"github.com/NVIDIA/gpu-intercept/pkg/config"
	"github.com/NVIDIA/gpu-intercept/pkg/errors"
	"github.com/NVIDIA/gpu-intercept/pkg/header"
	"github.com/NVIDIA/gpu-intercept/pkg/interceptor"
	"github.com/NVIDIA/gpu-intercept/pkg/runtime"
	"github.com/NVIDIA/gpu-intercept/pkg/runtime/simulated"
	"github.com/NVIDIA/gpu-intercept/pkg/version"
)

// TableVersion is the dispatch table version the simulated runtime exposes.
const TableVersion = "1.2.0"

// Session wires a simulated runtime, its dispatch table and an interception
// controller whose callbacks feed a Recorder.
type Session struct {
	cfg   *config.Config
	rt    *simulated.Runtime
	table *runtime.Table
	ctrl  *interceptor.Controller
	rec   *callback.Recorder

	logger  *slog.Logger
	fatal   interceptor.FatalHandler
	limit   int
	version string
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger passed to the controller.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFatalHandler overrides the controller's fatal policy.
func WithFatalHandler(h interceptor.FatalHandler) Option {
	return func(s *Session) {
		if h != nil {
			s.fatal = h
		}
	}
}

// WithRecordLimit keeps only the most recent n records; zero keeps all.
func WithRecordLimit(n int) Option {
	return func(s *Session) {
		s.limit = n
	}
}

// WithVersion sets the tool version stamped into result headers.
func WithVersion(v string) Option {
	return func(s *Session) {
		s.version = v
	}
}

// NewSession builds the runtime described by cfg.Topology and installs
// interception when cfg.Interceptor.Enable is set.
func NewSession(cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "config is required")
	}

	s := &Session{
		cfg:    cfg,
		logger: slog.Default(),
		fatal:  interceptor.DefaultFatalHandler,
	}
	for _, opt := range opts {
		opt(s)
	}

	ids, err := cfg.EventIDs()
	if err != nil {
		return nil, err
	}

	rt, err := simulated.New(cfg.Topology)
	if err != nil {
		return nil, err
	}
	s.rt = rt
	s.table = runtime.NewTable(version.MustParseVersion(TableVersion), rt)
	s.rec = callback.NewRecorder(s.limit)
	s.ctrl = interceptor.New(
		interceptor.WithLogger(s.logger),
		interceptor.WithFatalHandler(s.fatal),
	)
	s.ctrl.Enable(cfg.Interceptor.Enable)
	if err := s.ctrl.Install(s.table); err != nil {
		return nil, err
	}
	s.ctrl.SetCallbacks(s.rec.Only(ids...), s)

	return s, nil
}

// Runtime returns the simulated runtime behind the table.
func (s *Session) Runtime() *simulated.Runtime { return s.rt }

// Table returns the dispatch table workloads call through.
func (s *Session) Table() *runtime.Table { return s.table }

// Controller returns the interception controller.
func (s *Session) Controller() *interceptor.Controller { return s.ctrl }

// Recorder returns the recorder receiving events.
func (s *Session) Recorder() *callback.Recorder { return s.rec }

// Result is the outcome of one workload run.
type Result struct {
	header.Header `json:",inline" yaml:",inline"`

	Enabled   bool                       `json:"enabled" yaml:"enabled"`
	Installed bool                       `json:"installed" yaml:"installed"`
	Steps     int                        `json:"steps" yaml:"steps"`
	Duration  time.Duration              `json:"duration" yaml:"duration"`
	Buffers   map[string]runtime.Address `json:"buffers" yaml:"buffers"`
	Counts    map[string]uint64          `json:"counts" yaml:"counts"`
	Records   Records                    `json:"records" yaml:"records"`
}

// Run executes the configured workload through the dispatch table, stopping at
// the first failed step or when ctx is done. Each run starts from an empty
// runtime, so buffers from earlier runs are released, and the result holds
// only the events of this run.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	defer func() {
		traceDuration.Observe(time.Since(start).Seconds())
	}()

	s.rt.Reset()
	fromSeq := s.rec.Seq()
	before := s.rec.Counts()

	slog.Debug("starting workload", slog.Int("steps", len(s.cfg.Workload.Steps)),
		slog.Bool("intercepted", s.ctrl.Installed()))

	buffers := make(map[string]runtime.Address)
	for i, step := range s.cfg.Workload.Steps {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, "workload interrupted", err)
		}
		stepStart := time.Now()
		err := s.runStep(step, buffers)
		stepDuration.WithLabelValues(string(step.Op)).Observe(time.Since(stepStart).Seconds())
		if err != nil {
			code := errors.CodeOf(err)
			if code == "" {
				code = errors.ErrCodeInternal
			}
			return nil, errors.WrapWithContext(code, fmt.Sprintf("step %d failed", i), err,
				map[string]any{"step": i, "op": string(step.Op)})
		}
	}

	return &Result{
		Header:    header.New(header.KindTraceResult, s.version),
		Enabled:   s.ctrl.Enabled(),
		Installed: s.ctrl.Installed(),
		Steps:     len(s.cfg.Workload.Steps),
		Duration:  time.Since(start),
		Buffers:   buffers,
		Counts:    countsSince(before, s.rec.Counts()),
		Records:   Records(s.rec.Since(fromSeq)),
	}, nil
}

func countsSince(before, after map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(after))
	for k, v := range after {
		out[k] = v - before[k]
	}
	return out
}
