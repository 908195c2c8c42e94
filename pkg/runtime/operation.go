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

// Operation names a runtime entry point, for diagnostics and metrics labels.
type Operation string

const (
	OpMemoryAllocate     Operation = "MemoryAllocate"
	OpMemoryAssignAgent  Operation = "MemoryAssignAgent"
	OpMemoryCopy         Operation = "MemoryCopy"
	OpMemoryPoolAllocate Operation = "MemoryPoolAllocate"
	OpAgentsAllowAccess  Operation = "AgentsAllowAccess"
	OpMemoryAsyncCopy    Operation = "MemoryAsyncCopy"

	// Queries issued by the interceptor itself.
	OpPoolInfo        Operation = "PoolInfo"
	OpAgentPoolAccess Operation = "AgentPoolAccess"
	OpIterateAgents   Operation = "IterateAgents"
	OpAgentInfo       Operation = "AgentInfo"
)

// InterceptedOperations lists the dispatch table entries the interceptor replaces.
func InterceptedOperations() []Operation {
	return []Operation{
		OpMemoryAllocate,
		OpMemoryAssignAgent,
		OpMemoryCopy,
		OpMemoryPoolAllocate,
		OpAgentsAllowAccess,
		OpMemoryAsyncCopy,
	}
}
