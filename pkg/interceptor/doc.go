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

// Package interceptor instruments the memory entry points of a GPU runtime.
//
// # Overview
//
// A Controller patches a runtime.Table so that memory calls go through an
// instrumented implementation. Each instrumented call forwards to the saved
// original first and reports its effects to the registered callbacks only
// after the original succeeded:
//
//	ctrl := interceptor.New()
//	ctrl.Enable(true)
//	if err := ctrl.Install(table); err != nil {
//	    return err
//	}
//	ctrl.SetCallbacks(callback.Set{
//	    Allocate: onAllocate,
//	    Device:   onDevice,
//	}, toolState)
//
// # Events
//
//   - MemoryPoolAllocate: one Allocate event with the returned address, the
//     requested size and the pool's segment and global flags; then, if a
//     Device handler is registered, one Device event per agent that can
//     access the pool by default, in runtime agent order
//   - AgentsAllowAccess: one Device event per listed agent
//   - MemoryCopy, MemoryAsyncCopy: one Memcopy event
//   - InstrumentedQueue.Submit: one Submit event
//
// # Failures
//
// The layer never changes the outcome of a successful call. A failed
// forwarded call, a failed follow-up query, or any use of the deprecated
// MemoryAllocate and MemoryAssignAgent entry points produces a
// *errors.StructuredError that is handed to the controller's FatalHandler.
// When MemoryPoolAllocate succeeded but a follow-up query failed, the returned
// address is still valid and owned by the caller.
// DefaultFatalHandler terminates the process; tests and embedders can install
// their own policy with WithFatalHandler. No call is retried.
//
// A disabled controller leaves the table untouched, so calls cost exactly
// what they cost without the interceptor.
package interceptor
