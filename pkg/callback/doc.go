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

// Package callback defines the instrumentation events and the registry that
// dispatches them.
//
// Four event kinds exist: Allocate, Device, Memcopy and Submit. A Set holds
// one optional handler per kind; the Registry publishes a Set together with an
// opaque context value as a single immutable Snapshot:
//
//	reg := callback.NewRegistry()
//	reg.Set(callback.Set{
//	    Memcopy: func(ev callback.MemcopyEvent, ctx any) {
//	        log.Printf("copy %d bytes", ev.Size)
//	    },
//	}, nil)
//
//	reg.Load().Memcopy(callback.MemcopyEvent{Size: 4096})
//
// Handlers run synchronously on the goroutine that performed the observed
// operation and must be safe for concurrent use.
//
// Recorder is a ready-made sink that keeps every event with a timestamp.
package callback
