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
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/NVIDIA/gpu-intercept/pkg/callback"
	"github.com/NVIDIA/gpu-intercept/pkg/defaults"
	"github.com/NVIDIA/gpu-intercept/pkg/errors"
	"github.com/NVIDIA/gpu-intercept/pkg/runtime"
	"github.com/NVIDIA/gpu-intercept/pkg/version"
)

// Controller owns the interception state of one runtime: the enable switch,
// the saved runtime entry points and the active callback set.
//
// Enable and Install are meant to be called once, from the goroutine that
// initializes the runtime, before any intercepted call is made. SetCallbacks
// may be called at any time from any goroutine.
type Controller struct {
	mu        sync.Mutex
	enabled   atomic.Bool
	installed atomic.Bool

	registry     *callback.Registry
	introspector runtime.Introspector
	resolver     runtime.AgentResolver
	fatal        FatalHandler
	logger       *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithIntrospector sets the source of pool and agent queries. Without it the
// table's runtime must implement runtime.Introspector.
func WithIntrospector(i runtime.Introspector) Option {
	return func(c *Controller) {
		c.introspector = i
	}
}

// WithAgentResolver sets the source of agent device metadata. Without it the
// table's runtime must implement runtime.AgentResolver.
func WithAgentResolver(r runtime.AgentResolver) Option {
	return func(c *Controller) {
		c.resolver = r
	}
}

// WithFatalHandler replaces DefaultFatalHandler.
func WithFatalHandler(h FatalHandler) Option {
	return func(c *Controller) {
		if h != nil {
			c.fatal = h
		}
	}
}

// WithLogger sets the logger used for install decisions.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRegistry shares an existing callback registry.
func WithRegistry(r *callback.Registry) Option {
	return func(c *Controller) {
		if r != nil {
			c.registry = r
		}
	}
}

// New creates a disabled controller with no callbacks registered.
func New(opts ...Option) *Controller {
	c := &Controller{
		registry: callback.NewRegistry(),
		fatal:    DefaultFatalHandler,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enable sets whether a later Install patches the table. It has no effect on
// a table that is already installed.
func (c *Controller) Enable(enable bool) {
	c.enabled.Store(enable)
}

// Enabled reports the current enable switch.
func (c *Controller) Enabled() bool {
	return c.enabled.Load()
}

// Installed reports whether Install has patched a table.
func (c *Controller) Installed() bool {
	return c.installed.Load()
}

// Install replaces the memory entry points of table with instrumented
// versions that forward to the implementation table resolves to now.
//
// When the controller is disabled Install leaves table untouched and returns
// nil. A controller installs at most once; further calls fail without
// touching any table.
func (c *Controller) Install(table *runtime.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if table == nil {
		return errors.New(errors.ErrCodeInvalidRequest, "dispatch table is nil")
	}

	if !c.enabled.Load() {
		c.logger.Info("interception disabled, dispatch table left unchanged",
			"tableVersion", table.Version().String())
		return nil
	}

	if c.installed.Load() {
		return errors.New(errors.ErrCodeInvalidRequest, "interceptor already installed")
	}

	minimum := version.MustParseVersion(defaults.MinRuntimeAPIVersion)
	if !table.Version().Compatible(minimum) {
		return errors.NewWithContext(errors.ErrCodeUnsupported, "unsupported dispatch table version",
			map[string]any{
				"tableVersion":   table.Version().String(),
				"minimumVersion": minimum.String(),
			})
	}

	var setupErr error
	patched := table.Patch(func(orig runtime.MemoryAPI) runtime.MemoryAPI {
		w, err := c.newInstrumented(orig)
		if err != nil {
			setupErr = err
			return orig
		}
		return w
	})
	if setupErr != nil {
		return setupErr
	}
	if !patched {
		return errors.New(errors.ErrCodeInternal, "dispatch table changed during install")
	}

	c.installed.Store(true)

	ops := runtime.InterceptedOperations()
	names := make([]string, 0, len(ops))
	for _, op := range ops {
		names = append(names, string(op))
	}
	c.logger.Info("interception installed",
		"tableVersion", table.Version().String(),
		"operations", names)
	return nil
}

// newInstrumented resolves the collaborators and wraps orig.
func (c *Controller) newInstrumented(orig runtime.MemoryAPI) (*instrumented, error) {
	if orig == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "dispatch table resolves to no implementation")
	}

	intro := c.introspector
	if intro == nil {
		i, ok := orig.(runtime.Introspector)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidRequest,
				"no introspector configured and runtime does not provide one")
		}
		intro = i
	}

	resolver := c.resolver
	if resolver == nil {
		r, ok := orig.(runtime.AgentResolver)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidRequest,
				"no agent resolver configured and runtime does not provide one")
		}
		resolver = r
	}

	return &instrumented{
		c:        c,
		real:     orig,
		intro:    intro,
		resolver: resolver,
	}, nil
}

// SetCallbacks atomically replaces the whole callback set and its context.
// Intercepted calls already in flight finish with the set they loaded.
func (c *Controller) SetCallbacks(set callback.Set, ctx any) {
	c.registry.Set(set, ctx)
}

// Callbacks returns the registry intercepted calls read from.
func (c *Controller) Callbacks() *callback.Registry {
	return c.registry
}
