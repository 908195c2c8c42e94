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

package config

import (
	"github.com/NVIDIA/gpu-intercept/pkg/errors"
	"github.com/NVIDIA/gpu-intercept/pkg/runtime/simulated"
)

// StepOp names a workload action.
type StepOp string

const (
	// StepAllocate allocates Size bytes from Pool and names the result Buffer.
	StepAllocate StepOp = "allocate"
	// StepAllowAccess grants Agents access to Buffer.
	StepAllowAccess StepOp = "allow-access"
	// StepCopy copies Size bytes from Src to Dst.
	StepCopy StepOp = "copy"
	// StepAsyncCopy copies Size bytes from Src to Dst through the async engine
	// of Agents[0] and waits on a completion signal.
	StepAsyncCopy StepOp = "async-copy"
	// StepLegacyAllocate allocates from the region backed by Pool through the
	// deprecated entry point.
	StepLegacyAllocate StepOp = "legacy-allocate"
)

// Step is one workload action. Which fields apply depends on Op.
type Step struct {
	Op     StepOp   `json:"op" yaml:"op"`
	Buffer string   `json:"buffer,omitempty" yaml:"buffer,omitempty"`
	Pool   string   `json:"pool,omitempty" yaml:"pool,omitempty"`
	Size   uint64   `json:"size,omitempty" yaml:"size,omitempty"`
	Agents []string `json:"agents,omitempty" yaml:"agents,omitempty"`
	Dst    string   `json:"dst,omitempty" yaml:"dst,omitempty"`
	Src    string   `json:"src,omitempty" yaml:"src,omitempty"`
}

// Workload is an ordered list of steps run against the simulated runtime.
type Workload struct {
	Steps []Step `json:"steps" yaml:"steps"`
}

// DefaultWorkload touches every non-deprecated intercepted entry point.
func DefaultWorkload() Workload {
	return Workload{Steps: []Step{
		{Op: StepAllocate, Buffer: "staging", Pool: "system", Size: 4096},
		{Op: StepAllocate, Buffer: "weights", Pool: "gpu0-vram", Size: 4096},
		{Op: StepAllowAccess, Buffer: "staging", Agents: []string{"gpu1"}},
		{Op: StepCopy, Dst: "weights", Src: "staging", Size: 4096},
		{Op: StepAsyncCopy, Dst: "staging", Src: "weights", Size: 1024, Agents: []string{"gpu0"}},
	}}
}

func stepError(i int, step Step, msg string) error {
	return errors.NewWithContext(errors.ErrCodeInvalidRequest, msg,
		map[string]any{"step": i, "op": string(step.Op)})
}

// Validate checks that every step names known pools and agents and only uses
// buffers allocated by an earlier step.
func (w Workload) Validate(topo simulated.Topology) error {
	pools := make(map[string]bool, len(topo.Pools))
	for _, p := range topo.Pools {
		pools[p.Name] = true
	}
	agents := make(map[string]bool, len(topo.Agents))
	for _, a := range topo.Agents {
		agents[a.Name] = true
	}
	buffers := make(map[string]uint64)

	knownBuffer := func(name string) bool {
		_, ok := buffers[name]
		return ok
	}

	for i, s := range w.Steps {
		switch s.Op {
		case StepAllocate, StepLegacyAllocate:
			if !pools[s.Pool] {
				return stepError(i, s, "unknown pool "+s.Pool)
			}
			if s.Size == 0 {
				return stepError(i, s, "size must be positive")
			}
			if s.Op == StepAllocate {
				if s.Buffer == "" {
					return stepError(i, s, "buffer name is required")
				}
				buffers[s.Buffer] = s.Size
			}
		case StepAllowAccess:
			if !knownBuffer(s.Buffer) {
				return stepError(i, s, "unknown buffer "+s.Buffer)
			}
			if len(s.Agents) == 0 {
				return stepError(i, s, "at least one agent is required")
			}
			for _, a := range s.Agents {
				if !agents[a] {
					return stepError(i, s, "unknown agent "+a)
				}
			}
		case StepCopy, StepAsyncCopy:
			if !knownBuffer(s.Dst) {
				return stepError(i, s, "unknown buffer "+s.Dst)
			}
			if !knownBuffer(s.Src) {
				return stepError(i, s, "unknown buffer "+s.Src)
			}
			if s.Size == 0 || s.Size > buffers[s.Dst] || s.Size > buffers[s.Src] {
				return stepError(i, s, "size must be positive and fit both buffers")
			}
			if s.Op == StepAsyncCopy {
				if len(s.Agents) != 1 || !agents[s.Agents[0]] {
					return stepError(i, s, "async copy needs exactly one known agent")
				}
			}
		default:
			return stepError(i, s, "unknown step op")
		}
	}
	return nil
}
