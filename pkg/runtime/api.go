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

package runtime

// MemoryAPI is the interceptable memory-management surface of the runtime.
// Every method maps to one slot of the runtime's dispatch table.
type MemoryAPI interface {
	// MemoryAllocate allocates size bytes from a legacy region.
	// Deprecated by the runtime in favor of MemoryPoolAllocate.
	MemoryAllocate(region Region, size uint64) (Address, error)

	// MemoryAssignAgent changes the ownership of a legacy allocation.
	// Deprecated by the runtime in favor of AgentsAllowAccess.
	MemoryAssignAgent(addr Address, agent Agent, access AccessPermission) error

	// MemoryCopy copies size bytes from src to dst synchronously.
	MemoryCopy(dst, src Address, size uint64) error

	// MemoryPoolAllocate allocates size bytes from pool.
	MemoryPoolAllocate(pool MemoryPool, size uint64, flags uint32) (Address, error)

	// AgentsAllowAccess grants each agent access to the allocation at addr.
	// flags is reserved and may be nil.
	AgentsAllowAccess(agents []Agent, flags []uint32, addr Address) error

	// MemoryAsyncCopy copies size bytes from src to dst once every dependency
	// signal is satisfied and decrements completion when done.
	MemoryAsyncCopy(dst Address, dstAgent Agent, src Address, srcAgent Agent,
		size uint64, deps []Signal, completion Signal) error
}

// Introspector exposes the runtime queries that are never intercepted.
type Introspector interface {
	// PoolInfo returns the segment and global flags of pool.
	PoolInfo(pool MemoryPool) (PoolInfo, error)

	// AgentPoolAccess returns how agent may access memory allocated from pool.
	AgentPoolAccess(agent Agent, pool MemoryPool) (PoolAccess, error)

	// IterateAgents calls fn for every agent known to the runtime, in runtime
	// order. Iteration stops at the first error, which is returned.
	IterateAgents(fn func(Agent) error) error
}

// AgentResolver maps an agent handle to its device index and type.
// It is owned by the resource factory, not by the runtime.
type AgentResolver interface {
	AgentInfo(agent Agent) (AgentInfo, error)
}
