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
	"sort"
	"sync"

	"github.com/NVIDIA/gpu-intercept/pkg/errors"
	"github.com/NVIDIA/gpu-intercept/pkg/runtime"
)

const (
	agentHandleBase  = 1000
	poolHandleBase   = 2000
	signalHandleBase = 3000

	// BaseAddress is the first address handed out by a Runtime.
	BaseAddress runtime.Address = 0x7f0000000000

	// Alignment is the granularity of every allocation.
	Alignment = 4096
)

type agentState struct {
	name   string
	handle runtime.Agent
	info   runtime.AgentInfo
}

type poolState struct {
	name   string
	handle runtime.MemoryPool
	info   runtime.PoolInfo
	access map[runtime.Agent]runtime.PoolAccess
}

type allocation struct {
	base    runtime.Address
	data    []byte
	pool    runtime.MemoryPool
	owner   runtime.Agent
	allowed map[runtime.Agent]bool
}

func (a *allocation) contains(addr runtime.Address, size uint64) bool {
	if addr < a.base {
		return false
	}
	off := uint64(addr - a.base)
	return off <= uint64(len(a.data)) && size <= uint64(len(a.data))-off
}

// Runtime is an in-memory GPU runtime. It implements runtime.MemoryAPI,
// runtime.Introspector and runtime.AgentResolver and is safe for concurrent use.
type Runtime struct {
	mu       sync.Mutex
	agents   []*agentState
	pools    []*poolState
	allocs   map[runtime.Address]*allocation
	next     runtime.Address
	signals  map[runtime.Signal]int64
	nextSig  uint64
	failures map[runtime.Operation]error
	calls    map[runtime.Operation]int
}

var (
	_ runtime.MemoryAPI     = (*Runtime)(nil)
	_ runtime.Introspector  = (*Runtime)(nil)
	_ runtime.AgentResolver = (*Runtime)(nil)
)

// New builds a runtime from topo.
func New(topo Topology) (*Runtime, error) {
	if err := topo.Validate(); err != nil {
		return nil, err
	}

	r := &Runtime{
		allocs:   make(map[runtime.Address]*allocation),
		next:     BaseAddress,
		signals:  make(map[runtime.Signal]int64),
		nextSig:  signalHandleBase,
		failures: make(map[runtime.Operation]error),
		calls:    make(map[runtime.Operation]int),
	}

	byName := make(map[string]runtime.Agent, len(topo.Agents))
	for i, a := range topo.Agents {
		dt, _ := runtime.ParseDeviceType(a.Type)
		h := runtime.Agent{Handle: agentHandleBase + uint64(i)}
		byName[a.Name] = h
		r.agents = append(r.agents, &agentState{
			name:   a.Name,
			handle: h,
			info:   runtime.AgentInfo{Index: a.Index, Type: dt},
		})
	}

	for i, p := range topo.Pools {
		info, _ := p.info()
		ps := &poolState{
			name:   p.Name,
			handle: runtime.MemoryPool{Handle: poolHandleBase + uint64(i)},
			info:   info,
			access: make(map[runtime.Agent]runtime.PoolAccess, len(p.Access)),
		}
		for agent, access := range p.Access {
			pa, _ := runtime.ParsePoolAccess(access)
			ps.access[byName[agent]] = pa
		}
		r.pools = append(r.pools, ps)
	}

	return r, nil
}

// NewDefault builds a runtime from DefaultTopology.
func NewDefault() *Runtime {
	r, err := New(DefaultTopology())
	if err != nil {
		panic(err)
	}
	return r
}

// Reset frees every allocation and signal and restarts address assignment.
// Topology, injected failures and call counters are kept.
func (r *Runtime) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allocs = make(map[runtime.Address]*allocation)
	r.next = BaseAddress
	r.signals = make(map[runtime.Signal]int64)
	r.nextSig = signalHandleBase
}

// Live returns the number of allocations currently held.
func (r *Runtime) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.allocs)
}

// SetFailure makes every later call of op fail with err.
func (r *Runtime) SetFailure(op runtime.Operation, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[op] = err
}

// ClearFailure removes an injected failure.
func (r *Runtime) ClearFailure(op runtime.Operation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.failures, op)
}

// Calls returns how many times op was invoked, failed calls included.
func (r *Runtime) Calls(op runtime.Operation) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

// enter records a call and returns the injected failure, if any.
// Caller must hold r.mu.
func (r *Runtime) enter(op runtime.Operation) error {
	r.calls[op]++
	return r.failures[op]
}

// Agent looks up an agent handle by topology name.
func (r *Runtime) Agent(name string) (runtime.Agent, bool) {
	for _, a := range r.agents {
		if a.name == name {
			return a.handle, true
		}
	}
	return runtime.Agent{}, false
}

// Pool looks up a pool handle by topology name.
func (r *Runtime) Pool(name string) (runtime.MemoryPool, bool) {
	for _, p := range r.pools {
		if p.name == name {
			return p.handle, true
		}
	}
	return runtime.MemoryPool{}, false
}

// Region returns the legacy region backed by the named pool.
func (r *Runtime) Region(name string) (runtime.Region, bool) {
	p, ok := r.Pool(name)
	return runtime.Region{Handle: p.Handle}, ok
}

// Agents returns every agent handle in runtime order.
func (r *Runtime) Agents() []runtime.Agent {
	out := make([]runtime.Agent, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, a.handle)
	}
	return out
}

// AgentName returns the topology name of agent.
func (r *Runtime) AgentName(agent runtime.Agent) string {
	if a := r.agent(agent); a != nil {
		return a.name
	}
	return ""
}

func (r *Runtime) agent(h runtime.Agent) *agentState {
	i := int(h.Handle) - agentHandleBase
	if i < 0 || i >= len(r.agents) {
		return nil
	}
	return r.agents[i]
}

func (r *Runtime) pool(h runtime.MemoryPool) *poolState {
	i := int(h.Handle) - poolHandleBase
	if i < 0 || i >= len(r.pools) {
		return nil
	}
	return r.pools[i]
}

func unknown(kind string, handle uint64) error {
	return errors.NewWithContext(errors.ErrCodeNotFound, "unknown "+kind,
		map[string]any{"handle": handle})
}

// allocate carves size bytes out of the address space. Caller must hold r.mu.
func (r *Runtime) allocate(pool runtime.MemoryPool, size uint64) (runtime.Address, error) {
	if r.pool(pool) == nil {
		return 0, unknown("pool", pool.Handle)
	}
	if size == 0 {
		return 0, errors.New(errors.ErrCodeInvalidRequest, "allocation size must be positive")
	}

	addr := r.next
	span := (size + Alignment - 1) &^ (Alignment - 1)
	r.next += runtime.Address(span)
	r.allocs[addr] = &allocation{
		base:    addr,
		data:    make([]byte, size),
		pool:    pool,
		allowed: make(map[runtime.Agent]bool),
	}
	return addr, nil
}

// resolve finds the allocation holding [addr, addr+size). Caller must hold r.mu.
func (r *Runtime) resolve(addr runtime.Address, size uint64) ([]byte, error) {
	for _, a := range r.allocs {
		if a.contains(addr, size) {
			off := uint64(addr - a.base)
			return a.data[off : off+size], nil
		}
	}
	return nil, errors.NewWithContext(errors.ErrCodeNotFound, "address range not allocated",
		map[string]any{"address": addr.String(), "size": size})
}

// MemoryAllocate allocates from the pool backing region.
func (r *Runtime) MemoryAllocate(region runtime.Region, size uint64) (runtime.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(runtime.OpMemoryAllocate); err != nil {
		return 0, err
	}
	return r.allocate(runtime.MemoryPool{Handle: region.Handle}, size)
}

// MemoryAssignAgent records agent as the owner of the allocation at addr.
func (r *Runtime) MemoryAssignAgent(addr runtime.Address, agent runtime.Agent, _ runtime.AccessPermission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(runtime.OpMemoryAssignAgent); err != nil {
		return err
	}
	a, ok := r.allocs[addr]
	if !ok {
		return unknown("allocation", uint64(addr))
	}
	if r.agent(agent) == nil {
		return unknown("agent", agent.Handle)
	}
	a.owner = agent
	return nil
}

// MemoryCopy copies size bytes between two allocated ranges.
func (r *Runtime) MemoryCopy(dst, src runtime.Address, size uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(runtime.OpMemoryCopy); err != nil {
		return err
	}
	return r.copy(dst, src, size)
}

func (r *Runtime) copy(dst, src runtime.Address, size uint64) error {
	to, err := r.resolve(dst, size)
	if err != nil {
		return err
	}
	from, err := r.resolve(src, size)
	if err != nil {
		return err
	}
	copy(to, from)
	return nil
}

// MemoryPoolAllocate allocates size bytes from pool. flags is ignored.
func (r *Runtime) MemoryPoolAllocate(pool runtime.MemoryPool, size uint64, _ uint32) (runtime.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(runtime.OpMemoryPoolAllocate); err != nil {
		return 0, err
	}
	return r.allocate(pool, size)
}

// AgentsAllowAccess grants every agent access to the allocation at addr.
func (r *Runtime) AgentsAllowAccess(agents []runtime.Agent, _ []uint32, addr runtime.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(runtime.OpAgentsAllowAccess); err != nil {
		return err
	}
	a, ok := r.allocs[addr]
	if !ok {
		return unknown("allocation", uint64(addr))
	}
	for _, ag := range agents {
		if r.agent(ag) == nil {
			return unknown("agent", ag.Handle)
		}
	}
	for _, ag := range agents {
		a.allowed[ag] = true
	}
	return nil
}

// AllowedAgents returns the agents explicitly granted access to addr, sorted
// by handle.
func (r *Runtime) AllowedAgents(addr runtime.Address) []runtime.Agent {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.allocs[addr]
	if !ok {
		return nil
	}
	out := make([]runtime.Agent, 0, len(a.allowed))
	for ag := range a.allowed {
		out = append(out, ag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

// MemoryAsyncCopy performs the copy immediately. Every dependency must already
// be satisfied (value zero); completion, if set, is decremented afterwards.
func (r *Runtime) MemoryAsyncCopy(dst runtime.Address, dstAgent runtime.Agent, src runtime.Address,
	srcAgent runtime.Agent, size uint64, deps []runtime.Signal, completion runtime.Signal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(runtime.OpMemoryAsyncCopy); err != nil {
		return err
	}
	if r.agent(dstAgent) == nil {
		return unknown("agent", dstAgent.Handle)
	}
	if r.agent(srcAgent) == nil {
		return unknown("agent", srcAgent.Handle)
	}
	for _, d := range deps {
		v, ok := r.signals[d]
		if !ok {
			return unknown("signal", d.Handle)
		}
		if v != 0 {
			return errors.NewWithContext(errors.ErrCodeUnavailable, "dependency signal not satisfied",
				map[string]any{"signal": d.Handle, "value": v})
		}
	}
	if !completion.IsZero() {
		if _, ok := r.signals[completion]; !ok {
			return unknown("signal", completion.Handle)
		}
	}
	if err := r.copy(dst, src, size); err != nil {
		return err
	}
	if !completion.IsZero() {
		r.signals[completion]--
	}
	return nil
}

// CreateSignal creates a signal holding initial.
func (r *Runtime) CreateSignal(initial int64) runtime.Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := runtime.Signal{Handle: r.nextSig}
	r.nextSig++
	r.signals[s] = initial
	return s
}

// SignalValue returns the current value of s.
func (r *Runtime) SignalValue(s runtime.Signal) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.signals[s]
	if !ok {
		return 0, unknown("signal", s.Handle)
	}
	return v, nil
}

// Write stores data at addr.
func (r *Runtime) Write(addr runtime.Address, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	buf, err := r.resolve(addr, uint64(len(data)))
	if err != nil {
		return err
	}
	copy(buf, data)
	return nil
}

// Read returns a copy of n bytes at addr.
func (r *Runtime) Read(addr runtime.Address, n uint64) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	buf, err := r.resolve(addr, n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, buf)
	return out, nil
}

// PoolInfo reports the segment and global flags of pool.
func (r *Runtime) PoolInfo(pool runtime.MemoryPool) (runtime.PoolInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(runtime.OpPoolInfo); err != nil {
		return runtime.PoolInfo{}, err
	}
	p := r.pool(pool)
	if p == nil {
		return runtime.PoolInfo{}, unknown("pool", pool.Handle)
	}
	return p.info, nil
}

// AgentPoolAccess reports how agent may access pool. Agents the topology does
// not mention are never allowed.
func (r *Runtime) AgentPoolAccess(agent runtime.Agent, pool runtime.MemoryPool) (runtime.PoolAccess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(runtime.OpAgentPoolAccess); err != nil {
		return 0, err
	}
	p := r.pool(pool)
	if p == nil {
		return 0, unknown("pool", pool.Handle)
	}
	if r.agent(agent) == nil {
		return 0, unknown("agent", agent.Handle)
	}
	return p.access[agent], nil
}

// IterateAgents calls fn for each agent in topology order. The runtime lock is
// not held while fn runs, so fn may call back into the runtime.
func (r *Runtime) IterateAgents(fn func(runtime.Agent) error) error {
	r.mu.Lock()
	err := r.enter(runtime.OpIterateAgents)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	for _, a := range r.agents {
		if err := fn(a.handle); err != nil {
			return err
		}
	}
	return nil
}

// AgentInfo resolves the device index and type of agent.
func (r *Runtime) AgentInfo(agent runtime.Agent) (runtime.AgentInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(runtime.OpAgentInfo); err != nil {
		return runtime.AgentInfo{}, err
	}
	a := r.agent(agent)
	if a == nil {
		return runtime.AgentInfo{}, unknown("agent", agent.Handle)
	}
	return a.info, nil
}
