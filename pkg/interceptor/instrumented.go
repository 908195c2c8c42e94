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

	"github.com/NVIDIA/gpu-intercept/pkg/callback"
	"github.com/NVIDIA/gpu-intercept/pkg/runtime"
)

// instrumented forwards every call to real and reports its effects to the
// controller's callbacks. All fields are set before the value is published
// into the dispatch table and never change afterwards.
type instrumented struct {
	c        *Controller
	real     runtime.MemoryAPI
	intro    runtime.Introspector
	resolver runtime.AgentResolver
}

var _ runtime.MemoryAPI = (*instrumented)(nil)

// MemoryAllocate is deprecated and never reaches the runtime.
func (w *instrumented) MemoryAllocate(runtime.Region, uint64) (runtime.Address, error) {
	return 0, w.c.deprecated(runtime.OpMemoryAllocate)
}

// MemoryAssignAgent is deprecated and never reaches the runtime.
func (w *instrumented) MemoryAssignAgent(runtime.Address, runtime.Agent, runtime.AccessPermission) error {
	return w.c.deprecated(runtime.OpMemoryAssignAgent)
}

func (w *instrumented) MemoryCopy(dst, src runtime.Address, size uint64) error {
	start := time.Now()
	err := w.real.MemoryCopy(dst, src, size)
	observeCall(runtime.OpMemoryCopy, start, err)
	if err != nil {
		return w.c.fail(runtime.OpMemoryCopy, err)
	}

	w.memcopy(dst, src, size)
	return nil
}

func (w *instrumented) MemoryAsyncCopy(dst runtime.Address, dstAgent runtime.Agent, src runtime.Address,
	srcAgent runtime.Agent, size uint64, deps []runtime.Signal, completion runtime.Signal) error {
	start := time.Now()
	err := w.real.MemoryAsyncCopy(dst, dstAgent, src, srcAgent, size, deps, completion)
	observeCall(runtime.OpMemoryAsyncCopy, start, err)
	if err != nil {
		return w.c.fail(runtime.OpMemoryAsyncCopy, err)
	}

	w.memcopy(dst, src, size)
	return nil
}

func (w *instrumented) memcopy(dst, src runtime.Address, size uint64) {
	snap := w.c.registry.Load()
	if !snap.Set().Has(callback.IDMemcopy) {
		return
	}
	snap.Memcopy(callback.MemcopyEvent{Dst: dst, Src: src, Size: size})
	countEvent(callback.IDMemcopy)
}

// MemoryPoolAllocate reports the allocation, then every agent that can reach
// the new memory without an explicit grant.
func (w *instrumented) MemoryPoolAllocate(pool runtime.MemoryPool, size uint64, flags uint32) (runtime.Address, error) {
	start := time.Now()
	addr, err := w.real.MemoryPoolAllocate(pool, size, flags)
	observeCall(runtime.OpMemoryPoolAllocate, start, err)
	if err != nil {
		return 0, w.c.fail(runtime.OpMemoryPoolAllocate, err)
	}

	snap := w.c.registry.Load()
	set := snap.Set()

	if set.Allocate != nil {
		info, err := w.intro.PoolInfo(pool)
		if err != nil {
			// the allocation stands; the caller still owns addr
			return addr, w.c.fail(runtime.OpPoolInfo, err)
		}
		snap.Allocate(callback.AllocateEvent{
			Address:     addr,
			Size:        size,
			Segment:     info.Segment,
			GlobalFlags: info.GlobalFlags,
		})
		countEvent(callback.IDAllocate)
	}

	if set.Device != nil {
		if err := w.enumerateDefaultAccess(snap, pool, addr); err != nil {
			return addr, err
		}
	}
	return addr, nil
}

// AgentsAllowAccess reports one Device event per listed agent.
func (w *instrumented) AgentsAllowAccess(agents []runtime.Agent, flags []uint32, addr runtime.Address) error {
	start := time.Now()
	err := w.real.AgentsAllowAccess(agents, flags, addr)
	observeCall(runtime.OpAgentsAllowAccess, start, err)
	if err != nil {
		return w.c.fail(runtime.OpAgentsAllowAccess, err)
	}

	snap := w.c.registry.Load()
	if !snap.Set().Has(callback.IDDevice) {
		return nil
	}
	for _, agent := range agents {
		if err := w.device(snap, agent, addr); err != nil {
			return err
		}
	}
	return nil
}

// device resolves agent and fires one Device event for addr.
func (w *instrumented) device(snap *callback.Snapshot, agent runtime.Agent, addr runtime.Address) error {
	info, err := w.resolver.AgentInfo(agent)
	if err != nil {
		return w.c.fail(runtime.OpAgentInfo, err)
	}
	snap.Device(callback.DeviceEvent{
		DeviceIndex: info.Index,
		Address:     addr,
		DeviceType:  info.Type,
	})
	countEvent(callback.IDDevice)
	return nil
}
