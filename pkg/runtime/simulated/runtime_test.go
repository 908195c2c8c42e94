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

package simulated

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/gpu-intercept/pkg/errors"
	"github.com/NVIDIA/gpu-intercept/pkg/runtime"
)

func TestTopologyValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Topology)
		wantErr bool
	}{
		{name: "default", mutate: func(*Topology) {}},
		{name: "no agents", mutate: func(t *Topology) { t.Agents = nil }, wantErr: true},
		{name: "duplicate agent", mutate: func(t *Topology) { t.Agents[1].Name = "cpu0" }, wantErr: true},
		{name: "bad agent type", mutate: func(t *Topology) { t.Agents[0].Type = "fpga" }, wantErr: true},
		{name: "duplicate pool", mutate: func(t *Topology) { t.Pools[1].Name = "system" }, wantErr: true},
		{name: "bad segment", mutate: func(t *Topology) { t.Pools[0].Segment = "heap" }, wantErr: true},
		{name: "bad flag", mutate: func(t *Topology) { t.Pools[0].GlobalFlags = []string{"sticky"} }, wantErr: true},
		{name: "unknown agent in access", mutate: func(t *Topology) { t.Pools[0].Access["gpu9"] = "default" }, wantErr: true},
		{name: "bad access", mutate: func(t *Topology) { t.Pools[0].Access["cpu0"] = "sometimes" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topo := DefaultTopology()
			tt.mutate(&topo)
			err := topo.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTopologyFromYAML(t *testing.T) {
	doc := `
agents:
  - name: host
    type: cpu
  - name: accel
    type: gpu
    index: 7
pools:
  - name: fine
    segment: global
    globalFlags: [fine, kernarg]
    access:
      host: default
      accel: explicit
`
	var topo Topology
	require.NoError(t, yaml.Unmarshal([]byte(doc), &topo))

	r, err := New(topo)
	require.NoError(t, err)

	accel, ok := r.Agent("accel")
	require.True(t, ok)
	info, err := r.AgentInfo(accel)
	require.NoError(t, err)
	assert.Equal(t, runtime.AgentInfo{Index: 7, Type: runtime.DeviceTypeGPU}, info)

	pool, ok := r.Pool("fine")
	require.True(t, ok)
	pi, err := r.PoolInfo(pool)
	require.NoError(t, err)
	assert.Equal(t, runtime.SegmentGlobal, pi.Segment)
	assert.Equal(t, runtime.GlobalFlagFineGrained|runtime.GlobalFlagKernArg, pi.GlobalFlags)

	access, err := r.AgentPoolAccess(accel, pool)
	require.NoError(t, err)
	assert.Equal(t, runtime.AccessDisallowedByDefault, access)
}

func TestPoolAllocateAndCopy(t *testing.T) {
	r := NewDefault()
	pool, _ := r.Pool("system")

	a, err := r.MemoryPoolAllocate(pool, 100, 0)
	require.NoError(t, err)
	b, err := r.MemoryPoolAllocate(pool, 100, 0)
	require.NoError(t, err)

	assert.Equal(t, BaseAddress, a)
	assert.Equal(t, BaseAddress+Alignment, b)

	require.NoError(t, r.Write(a, []byte("hello")))
	require.NoError(t, r.MemoryCopy(b+10, a, 5))

	got, err := r.Read(b+10, 5)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	// out of bounds
	err = r.MemoryCopy(b+96, a, 5)
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))

	_, err = r.MemoryPoolAllocate(pool, 0, 0)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))

	_, err = r.MemoryPoolAllocate(runtime.MemoryPool{Handle: 1}, 8, 0)
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))
}

func TestReset(t *testing.T) {
	r := NewDefault()
	pool, _ := r.Pool("system")
	a, err := r.MemoryPoolAllocate(pool, 100, 0)
	require.NoError(t, err)
	_, err = r.MemoryPoolAllocate(pool, 100, 0)
	require.NoError(t, err)
	require.Equal(t, 2, r.Live())
	boom := errors.New(errors.ErrCodeRuntime, "boom")
	r.SetFailure(runtime.OpMemoryCopy, boom)

	r.Reset()
	assert.Zero(t, r.Live())
	_, err = r.Read(a, 1)
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))
	assert.Equal(t, 2, r.Calls(runtime.OpMemoryPoolAllocate))
	assert.ErrorIs(t, r.MemoryCopy(a, a, 1), boom)

	again, err := r.MemoryPoolAllocate(pool, 8, 0)
	require.NoError(t, err)
	assert.Equal(t, BaseAddress, again)
}

func TestLegacyRegionCalls(t *testing.T) {
	r := NewDefault()
	region, ok := r.Region("system")
	require.True(t, ok)
	gpu0, _ := r.Agent("gpu0")

	addr, err := r.MemoryAllocate(region, 64)
	require.NoError(t, err)
	require.NoError(t, r.MemoryAssignAgent(addr, gpu0, runtime.AccessReadWrite))

	err = r.MemoryAssignAgent(addr+1, gpu0, runtime.AccessReadWrite)
	assert.Error(t, err)
}

func TestAgentsAllowAccess(t *testing.T) {
	r := NewDefault()
	pool, _ := r.Pool("gpu0-vram")
	gpu1, _ := r.Agent("gpu1")
	cpu0, _ := r.Agent("cpu0")

	addr, err := r.MemoryPoolAllocate(pool, 32, 0)
	require.NoError(t, err)

	require.NoError(t, r.AgentsAllowAccess([]runtime.Agent{gpu1, cpu0}, nil, addr))
	assert.Equal(t, []runtime.Agent{cpu0, gpu1}, r.AllowedAgents(addr))

	err = r.AgentsAllowAccess([]runtime.Agent{{Handle: 5}}, nil, addr)
	assert.Error(t, err)
}

func TestAsyncCopySignals(t *testing.T) {
	r := NewDefault()
	pool, _ := r.Pool("system")
	cpu0, _ := r.Agent("cpu0")
	gpu0, _ := r.Agent("gpu0")

	src, _ := r.MemoryPoolAllocate(pool, 8, 0)
	dst, _ := r.MemoryPoolAllocate(pool, 8, 0)
	require.NoError(t, r.Write(src, []byte("abcdefgh")))

	done := r.CreateSignal(1)
	ready := r.CreateSignal(0)
	blocked := r.CreateSignal(1)

	err := r.MemoryAsyncCopy(dst, gpu0, src, cpu0, 8, []runtime.Signal{blocked}, done)
	assert.Equal(t, errors.ErrCodeUnavailable, errors.CodeOf(err))

	require.NoError(t, r.MemoryAsyncCopy(dst, gpu0, src, cpu0, 8, []runtime.Signal{ready}, done))
	v, err := r.SignalValue(done)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	got, _ := r.Read(dst, 8)
	assert.Equal(t, "abcdefgh", string(got))

	// no completion signal
	require.NoError(t, r.MemoryAsyncCopy(dst, gpu0, src, cpu0, 8, nil, runtime.Signal{}))
}

func TestFailureInjection(t *testing.T) {
	r := NewDefault()
	pool, _ := r.Pool("system")
	boom := fmt.Errorf("out of memory")

	r.SetFailure(runtime.OpMemoryPoolAllocate, boom)
	_, err := r.MemoryPoolAllocate(pool, 8, 0)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, r.Calls(runtime.OpMemoryPoolAllocate))

	r.ClearFailure(runtime.OpMemoryPoolAllocate)
	_, err = r.MemoryPoolAllocate(pool, 8, 0)
	assert.NoError(t, err)
	assert.Equal(t, 2, r.Calls(runtime.OpMemoryPoolAllocate))

	r.SetFailure(runtime.OpIterateAgents, boom)
	err = r.IterateAgents(func(runtime.Agent) error { return nil })
	assert.ErrorIs(t, err, boom)
}

func TestIterateAgentsOrder(t *testing.T) {
	r := NewDefault()
	var names []string
	err := r.IterateAgents(func(a runtime.Agent) error {
		names = append(names, r.AgentName(a))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cpu0", "gpu0", "gpu1"}, names)

	stop := fmt.Errorf("stop")
	count := 0
	err = r.IterateAgents(func(runtime.Agent) error {
		count++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, count)
}
