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

package interceptor

import (
	"time"

	"github.com/NVIDIA/gpu-intercept/pkg/callback"
	"github.com/NVIDIA/gpu-intercept/pkg/queue"
)

// Submitter publishes packets. *queue.Queue implements it.
type Submitter interface {
	Submit(p *queue.Packet) uint64
}

var _ Submitter = (*queue.Queue)(nil)

// InstrumentedQueue fires a Submit event after every published packet.
type InstrumentedQueue struct {
	q        *queue.Queue
	registry *callback.Registry
	now      func() time.Time
}

// WrapQueue returns a Submitter for q. Until Install has succeeded it returns
// q itself.
func (c *Controller) WrapQueue(q *queue.Queue) Submitter {
	if !c.installed.Load() {
		return q
	}
	return &InstrumentedQueue{q: q, registry: c.registry, now: time.Now}
}

// Submit publishes p, then reports the submission.
func (iq *InstrumentedQueue) Submit(p *queue.Packet) uint64 {
	idx := iq.q.Submit(p)

	snap := iq.registry.Load()
	if !snap.Set().Has(callback.IDSubmit) {
		return idx
	}
	snap.Submit(callback.SubmitEvent{
		QueueID:    iq.q.ID(),
		Index:      idx,
		PacketType: p.Type(),
		Timestamp:  iq.now(),
	})
	countEvent(callback.IDSubmit)
	return idx
}

// Queue returns the wrapped queue.
func (iq *InstrumentedQueue) Queue() *queue.Queue {
	return iq.q
}
