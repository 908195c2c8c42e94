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
	"github.com/NVIDIA/gpu-intercept/pkg/callback"
	"github.com/NVIDIA/gpu-intercept/pkg/runtime"
)

// enumerateDefaultAccess walks every agent in runtime order and fires a Device
// event for each one that can access pool allocations by default.
func (w *instrumented) enumerateDefaultAccess(snap *callback.Snapshot, pool runtime.MemoryPool, addr runtime.Address) error {
	// set when the failure was already handed to the fatal policy
	var handled error

	err := w.intro.IterateAgents(func(agent runtime.Agent) error {
		access, err := w.intro.AgentPoolAccess(agent, pool)
		if err != nil {
			handled = w.c.fail(runtime.OpAgentPoolAccess, err)
			return handled
		}
		if access != runtime.AccessAllowedByDefault {
			return nil
		}
		if err := w.device(snap, agent, addr); err != nil {
			handled = err
			return err
		}
		return nil
	})

	switch {
	case handled != nil:
		return handled
	case err != nil:
		return w.c.fail(runtime.OpIterateAgents, err)
	default:
		return nil
	}
}
