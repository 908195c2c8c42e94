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

// Package runtime describes the GPU runtime surface the interceptor sits on.
//
// # Overview
//
// The runtime publishes its API through a dispatch table. Instead of raw
// function-pointer slots, this package models the table as a Table holding one
// MemoryAPI implementation behind an atomic pointer:
//
//	table := runtime.NewTable(version.MustParseVersion("1.2"), rt)
//	addr, err := table.API().MemoryPoolAllocate(pool, 4096, 0)
//
// Installing instrumentation means patching the table so that API() resolves
// to a wrapper around the runtime it replaced:
//
//	table.Patch(func(real runtime.MemoryAPI) runtime.MemoryAPI {
//	    return wrap(real)
//	})
//
// # Collaborators
//
//   - MemoryAPI: the six interceptable memory entry points
//   - Introspector: pool info, per-agent pool access, agent iteration
//   - AgentResolver: device index and type for an agent handle
//
// Handle types (Agent, MemoryPool, Region, Signal) are opaque values; only the
// runtime that issued them can interpret them.
package runtime
