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

package queue

import "sync/atomic"

// Doorbell notifies the packet processor that new packets were published.
type Doorbell interface {
	// Store rings the doorbell with the index of the last published packet.
	Store(index uint64)
	// Load returns the last value stored.
	Load() uint64
}

// Signal is the default Doorbell: an atomic value plus a wake channel that a
// software consumer can block on.
type Signal struct {
	value atomic.Uint64
	wake  chan struct{}
}

// NewSignal creates a doorbell signal.
func NewSignal() *Signal {
	return &Signal{wake: make(chan struct{}, 1)}
}

// Store sets the value and wakes a waiting consumer. It never blocks.
func (s *Signal) Store(index uint64) {
	s.value.Store(index)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Load returns the last stored index.
func (s *Signal) Load() uint64 {
	return s.value.Load()
}

// Wake returns a channel that receives after at least one Store.
// Stores that happen while a wakeup is pending coalesce into it.
func (s *Signal) Wake() <-chan struct{} {
	return s.wake
}

// waker is implemented by doorbells a consumer can block on.
type waker interface {
	Wake() <-chan struct{}
}
