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
	"github.com/NVIDIA/gpu-intercept/pkg/config"
	"github.com/NVIDIA/gpu-intercept/pkg/errors"
	"github.com/NVIDIA/gpu-intercept/pkg/runtime"
)

func (s *Session) agents(names []string) ([]runtime.Agent, error) {
	out := make([]runtime.Agent, 0, len(names))
	for _, n := range names {
		a, ok := s.rt.Agent(n)
		if !ok {
			return nil, errors.NewWithContext(errors.ErrCodeNotFound, "unknown agent",
				map[string]any{"agent": n})
		}
		out = append(out, a)
	}
	return out, nil
}

func buffer(buffers map[string]runtime.Address, name string) (runtime.Address, error) {
	addr, ok := buffers[name]
	if !ok {
		return 0, errors.NewWithContext(errors.ErrCodeNotFound, "unknown buffer",
			map[string]any{"buffer": name})
	}
	return addr, nil
}

// runStep performs one workload step through the dispatch table so that an
// installed interceptor sees it.
func (s *Session) runStep(step config.Step, buffers map[string]runtime.Address) error {
	api := s.table.API()

	switch step.Op {
	case config.StepAllocate:
		pool, ok := s.rt.Pool(step.Pool)
		if !ok {
			return errors.NewWithContext(errors.ErrCodeNotFound, "unknown pool",
				map[string]any{"pool": step.Pool})
		}
		addr, err := api.MemoryPoolAllocate(pool, step.Size, 0)
		if err != nil {
			return err
		}
		buffers[step.Buffer] = addr
		return nil

	case config.StepLegacyAllocate:
		region, ok := s.rt.Region(step.Pool)
		if !ok {
			return errors.NewWithContext(errors.ErrCodeNotFound, "unknown region",
				map[string]any{"pool": step.Pool})
		}
		addr, err := api.MemoryAllocate(region, step.Size)
		if err != nil {
			return err
		}
		if step.Buffer != "" {
			buffers[step.Buffer] = addr
		}
		return nil

	case config.StepAllowAccess:
		addr, err := buffer(buffers, step.Buffer)
		if err != nil {
			return err
		}
		agents, err := s.agents(step.Agents)
		if err != nil {
			return err
		}
		return api.AgentsAllowAccess(agents, nil, addr)

	case config.StepCopy:
		dst, err := buffer(buffers, step.Dst)
		if err != nil {
			return err
		}
		src, err := buffer(buffers, step.Src)
		if err != nil {
			return err
		}
		return api.MemoryCopy(dst, src, step.Size)

	case config.StepAsyncCopy:
		dst, err := buffer(buffers, step.Dst)
		if err != nil {
			return err
		}
		src, err := buffer(buffers, step.Src)
		if err != nil {
			return err
		}
		agents, err := s.agents(step.Agents)
		if err != nil {
			return err
		}
		if len(agents) != 1 {
			return errors.New(errors.ErrCodeInvalidRequest, "async copy needs exactly one agent")
		}
		done := s.rt.CreateSignal(1)
		if err := api.MemoryAsyncCopy(dst, agents[0], src, agents[0], step.Size, nil, done); err != nil {
			return err
		}
		v, err := s.rt.SignalValue(done)
		if err != nil {
			return err
		}
		if v != 0 {
			return errors.NewWithContext(errors.ErrCodeInternal, "async copy did not complete",
				map[string]any{"signal": done.Handle, "value": v})
		}
		return nil

	default:
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "unknown step op",
			map[string]any{"op": string(step.Op)})
	}
}
