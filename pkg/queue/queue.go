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

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/NVIDIA/gpu-intercept/pkg/defaults"
	"github.com/NVIDIA/gpu-intercept/pkg/errors"
)

// Queue is a fixed-size ring of packet slots shared between any number of
// producers and one packet processor.
type Queue struct {
	id         uuid.UUID
	slots      []Packet
	mask       uint64
	writeIndex atomic.Uint64
	readIndex  atomic.Uint64
	doorbell   Doorbell
}

// Option configures a Queue.
type Option func(*Queue)

// WithDoorbell replaces the default Signal doorbell.
func WithDoorbell(d Doorbell) Option {
	return func(q *Queue) {
		q.doorbell = d
	}
}

// WithID sets the queue identity instead of a random one.
func WithID(id uuid.UUID) Option {
	return func(q *Queue) {
		q.id = id
	}
}

// New allocates a queue of size slots. size must be a power of two no larger
// than defaults.MaxQueueSize. Every slot starts with an invalid header.
func New(size int, opts ...Option) (*Queue, error) {
	if size <= 0 || size&(size-1) != 0 || size > defaults.MaxQueueSize {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"queue size must be a power of two", map[string]any{
				"size": size,
				"max":  defaults.MaxQueueSize,
			})
	}

	q := &Queue{
		id:       uuid.New(),
		slots:    make([]Packet, size),
		mask:     uint64(size - 1),
		doorbell: NewSignal(),
	}
	for _, opt := range opts {
		opt(q)
	}
	for i := range q.slots {
		q.slots[i][0] = invalidHeader
	}
	return q, nil
}

// ID returns the queue identity.
func (q *Queue) ID() uuid.UUID {
	return q.id
}

// Size returns the number of slots.
func (q *Queue) Size() int {
	return len(q.slots)
}

// Doorbell returns the queue's doorbell.
func (q *Queue) Doorbell() Doorbell {
	return q.doorbell
}

// Submit publishes p and returns the packet index it was written at.
//
// The index is claimed with one atomic add, so concurrent producers always
// get distinct indices. The payload is copied with plain stores, then the
// header is stored atomically: a processor that observes the new header also
// observes the payload. Finally the doorbell is rung with the packet index.
//
// Submit applies no backpressure. When producers run more than Size packets
// ahead of the processor, older unconsumed packets are overwritten.
func (q *Queue) Submit(p *Packet) uint64 {
	idx := q.writeIndex.Add(1) - 1
	if r := q.readIndex.Load(); idx >= r && idx-r >= uint64(len(q.slots)) {
		packetsLapped.Inc()
	}

	slot := &q.slots[idx&q.mask]
	for i := 1; i < len(slot); i++ {
		slot[i] = p[i]
	}
	atomic.StoreUint32(&slot[0], p[0])

	q.doorbell.Store(idx)
	packetsSubmitted.Inc()
	return idx
}

// State is a point-in-time view of the queue indices.
type State struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	Size       int       `json:"size" yaml:"size"`
	WriteIndex uint64    `json:"writeIndex" yaml:"writeIndex"`
	ReadIndex  uint64    `json:"readIndex" yaml:"readIndex"`
	Doorbell   uint64    `json:"doorbell" yaml:"doorbell"`
}

// State snapshots the queue indices. Fields are loaded independently and may
// be mutually inconsistent under concurrent use.
func (q *Queue) State() State {
	return State{
		ID:         q.id,
		Size:       len(q.slots),
		WriteIndex: q.writeIndex.Load(),
		ReadIndex:  q.readIndex.Load(),
		Doorbell:   q.doorbell.Load(),
	}
}
