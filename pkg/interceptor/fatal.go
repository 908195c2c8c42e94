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
	"os"

	"github.com/NVIDIA/gpu-intercept/pkg/errors"
	"github.com/NVIDIA/gpu-intercept/pkg/runtime"
)

// FatalHandler decides what happens after an intercepted call fails. The
// error is always a *errors.StructuredError with code ErrCodeRuntime or
// ErrCodeDeprecated and an "operation" context entry. If the handler
// returns, the same error is returned to the caller.
type FatalHandler func(err error)

// osExit is swapped in tests.
var osExit = os.Exit

// DefaultFatalHandler logs the failure and terminates the process with
// status 1.
func DefaultFatalHandler(err error) {
	slog.Error("fatal runtime failure, terminating", "error", err)
	osExit(1)
}

// LogFatalHandler returns a handler that only logs. Callers receive the error
// and decide themselves.
func LogFatalHandler(logger *slog.Logger) FatalHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(err error) {
		logger.Error("runtime failure", "error", err)
	}
}

// fail converts a failed runtime call into the fatal error, runs the policy
// and returns the error for the caller.
func (c *Controller) fail(op runtime.Operation, cause error) error {
	return c.abort(errors.WrapWithContext(errors.ErrCodeRuntime, "runtime call failed", cause,
		map[string]any{"operation": string(op)}))
}

// deprecated rejects a call to an entry point that must not be used.
func (c *Controller) deprecated(op runtime.Operation) error {
	return c.abort(errors.NewWithContext(errors.ErrCodeDeprecated, "deprecated runtime API called",
		map[string]any{"operation": string(op)}))
}

func (c *Controller) abort(err *errors.StructuredError) error {
	fatalTotal.WithLabelValues(err.Context["operation"].(string), string(err.Code)).Inc()
	c.fatal(err)
	return err
}
