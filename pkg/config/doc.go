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

// Package config loads the gpu-intercept tool configuration.
//
// A configuration file is YAML or JSON, chosen by extension, and is decoded
// strictly: unknown keys are rejected. Sections left out of the file take
// their values from Default.
//
//	interceptor:
//	  enable: true
//	  events: [allocate, device]
//	queue:
//	  size: 256
//	  packets: 10000
//	  producers: 4
//	  rate: 5000
//	  type: kernel-dispatch
//	topology:
//	  agents:
//	    - {name: cpu0, type: cpu, index: 0}
//	    - {name: gpu0, type: gpu, index: 1}
//	  pools:
//	    - name: system
//	      segment: global
//	      globalFlags: [fine, kernarg]
//	      access: {cpu0: default, gpu0: default}
//	workload:
//	  steps:
//	    - {op: allocate, buffer: a, pool: system, size: 4096}
//	    - {op: allow-access, buffer: a, agents: [gpu0]}
//
// # Environment
//
// GPU_INTERCEPT_ENABLE and GPU_INTERCEPT_QUEUE_SIZE override the file after
// it is read. Validate reports every problem as an *errors.StructuredError
// with ErrCodeInvalidRequest.
package config
