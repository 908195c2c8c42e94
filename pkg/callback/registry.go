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

package callback

import (
	"sync"
	"sync/atomic"
)

// Handler types receive the event and the context registered with the set.
type (
	AllocateHandler func(ev AllocateEvent, ctx any)
	DeviceHandler   func(ev DeviceEvent, ctx any)
	MemcopyHandler  func(ev MemcopyEvent, ctx any)
	SubmitHandler   func(ev SubmitEvent, ctx any)
)

// Set is a group of handlers. A nil handler means the event is not
// observed and costs nothing.
type Set struct {
	Allocate AllocateHandler
	Device   DeviceHandler
	Memcopy  MemcopyHandler
	Submit   SubmitHandler
}

// Empty reports whether no handler is registered.
func (s Set) Empty() bool {
	return s.Allocate == nil && s.Device == nil && s.Memcopy == nil && s.Submit == nil
}

// Has reports whether the handler for id is registered.
func (s Set) Has(id ID) bool {
	switch id {
	case IDAllocate:
		return s.Allocate != nil
	case IDDevice:
		return s.Device != nil
	case IDMemcopy:
		return s.Memcopy != nil
	case IDSubmit:
		return s.Submit != nil
	default:
		return false
	}
}

// Snapshot is one published handler set together with its context.
// Snapshots are immutable.
type Snapshot struct {
	set Set
	ctx any
}

// Set returns the published handlers.
func (s *Snapshot) Set() Set { return s.set }

// Context returns the opaque value passed to every handler.
func (s *Snapshot) Context() any { return s.ctx }

// Allocate fires the Allocate handler if present.
func (s *Snapshot) Allocate(ev AllocateEvent) {
	if s.set.Allocate != nil {
		s.set.Allocate(ev, s.ctx)
	}
}

// Device fires the Device handler if present.
func (s *Snapshot) Device(ev DeviceEvent) {
	if s.set.Device != nil {
		s.set.Device(ev, s.ctx)
	}
}

// Memcopy fires the Memcopy handler if present.
func (s *Snapshot) Memcopy(ev MemcopyEvent) {
	if s.set.Memcopy != nil {
		s.set.Memcopy(ev, s.ctx)
	}
}

// Submit fires the Submit handler if present.
func (s *Snapshot) Submit(ev SubmitEvent) {
	if s.set.Submit != nil {
		s.set.Submit(ev, s.ctx)
	}
}

// Registry holds the active handler set. Readers pay one atomic load and
// always see a complete set: either the one before or the one after a
// concurrent update, never handlers of one with the context of the other.
type Registry struct {
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

var emptySnapshot = &Snapshot{}

// NewRegistry creates a registry with no handlers. The zero Registry is
// also ready to use.
func NewRegistry() *Registry {
	return &Registry{}
}

// Set replaces the whole handler set and its context.
func (r *Registry) Set(set Set, ctx any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current.Store(&Snapshot{set: set, ctx: ctx})
}

// Update derives a new set from the current one. Updates are serialized with
// Set, so concurrent Updates never lose each other's changes.
func (r *Registry) Update(fn func(cur Set) Set) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := r.Load()
	r.current.Store(&Snapshot{set: fn(cur.set), ctx: cur.ctx})
}

// Load returns the current snapshot. It is never nil.
func (r *Registry) Load() *Snapshot {
	if s := r.current.Load(); s != nil {
		return s
	}
	return emptySnapshot
}
