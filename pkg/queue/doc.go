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

// Package queue implements the lock-free command submission queue.
//
// A Queue is a power-of-two ring of 64-byte packets. Producers claim a slot
// with one atomic add on the write index, fill the payload, publish the header
// with an atomic store and ring the doorbell:
//
//	q, err := queue.New(64)
//	var p queue.Packet
//	p[1] = workgroupSize
//	p.SetHeader(queue.MakeHeader(queue.PacketTypeKernelDispatch, true,
//	    queue.FenceScopeSystem, queue.FenceScopeSystem), 3)
//	idx := q.Submit(&p)
//
// The header store is the publication point. A processor that loads a header
// whose type is not PacketTypeInvalid is guaranteed to see the payload written
// before it. Go atomics are sequentially consistent, which is at least as
// strong as the release/acquire pair the hardware contract requires.
//
// Consumer is a software stand-in for the hardware packet processor. It
// consumes packets in index order and returns each slot to the invalid state.
//
// There is no backpressure: a producer running a full ring ahead of the
// processor silently overwrites unconsumed packets. Lapped submissions are
// counted in the gpu_intercept_queue_packets_lapped_total metric.
package queue
