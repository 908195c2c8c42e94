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
	"context"
	"sync/atomic"
	"time"

	"github.com/NVIDIA/gpu-intercept/pkg/defaults"
)

// HandlerFunc processes one consumed packet.
type HandlerFunc func(index uint64, p Packet) error

// Consumer is a software packet processor. It follows the hardware contract:
// a slot is ready once its header is no longer invalid, and it is released by
// writing the invalid header back. Only one Consumer may run per Queue.
type Consumer struct {
	q            *Queue
	pollInterval time.Duration
}

// ConsumerOption configures a Consumer.
type ConsumerOption func(*Consumer)

// WithPollInterval sets how long Run sleeps between scans when the doorbell
// cannot wake it.
func WithPollInterval(d time.Duration) ConsumerOption {
	return func(c *Consumer) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// NewConsumer creates the processor for q.
func NewConsumer(q *Queue, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		q:            q,
		pollInterval: defaults.ConsumerPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Poll takes the packet at the read index if it has been published.
//
// When producers have lapped the consumer, the packets it missed are gone and
// Poll resumes at the oldest index the ring can still hold, so every packet it
// returns carries the index it was submitted at.
func (c *Consumer) Poll() (uint64, Packet, bool) {
	idx := c.q.readIndex.Load()
	if w := c.q.writeIndex.Load(); w > idx && w-idx > uint64(len(c.q.slots)) {
		idx = w - uint64(len(c.q.slots))
	}
	slot := &c.q.slots[idx&c.q.mask]

	header := atomic.LoadUint32(&slot[0])
	if headerType(header) == PacketTypeInvalid {
		return 0, Packet{}, false
	}

	var p Packet
	p[0] = header
	for i := 1; i < len(slot); i++ {
		p[i] = slot[i]
	}

	atomic.StoreUint32(&slot[0], invalidHeader)
	c.q.readIndex.Store(idx + 1)
	packetsConsumed.Inc()
	return idx, p, true
}

// Drain consumes every ready packet, stopping at the first handler error.
// It returns the number of packets consumed.
func (c *Consumer) Drain(fn HandlerFunc) (int, error) {
	n := 0
	for {
		idx, p, ok := c.Poll()
		if !ok {
			return n, nil
		}
		n++
		if fn == nil {
			continue
		}
		if err := fn(idx, p); err != nil {
			return n, err
		}
	}
}

// Run drains the queue until ctx is done or fn fails. Between drains it waits
// for the doorbell, falling back to the poll interval.
func (c *Consumer) Run(ctx context.Context, fn HandlerFunc) error {
	var wake <-chan struct{}
	if w, ok := c.q.doorbell.(waker); ok {
		wake = w.Wake()
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		if _, err := c.Drain(fn); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wake:
		case <-ticker.C:
		}
	}
}
