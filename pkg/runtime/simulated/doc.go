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

// Package simulated provides an in-memory GPU runtime.
//
// The runtime is described by a Topology of agents and pools, either built in
// code or loaded from YAML:
//
//	agents:
//	  - name: cpu0
//	    type: cpu
//	  - name: gpu0
//	    type: gpu
//	    index: 1
//	pools:
//	  - name: system
//	    segment: global
//	    globalFlags: [fine, kernarg]
//	    access:
//	      cpu0: default
//	      gpu0: explicit
//
// Allocations are backed by byte slices so copies can be verified. Failures
// can be injected per operation with SetFailure, which makes the runtime
// useful for exercising the interceptor's fatal error path.
package simulated
