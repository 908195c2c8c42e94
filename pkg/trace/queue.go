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

package trace

import (
	"context"
	stderrors "errors"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/NVIDIA/gpu-intercept/pkg/callback"
	"github.com/NVIDIA/gpu-intercept/pkg/errors"
	"github.com/NVIDIA/gpu-intercept/pkg/header"
	"github.com/NVIDIA/gpu-intercept/pkg/queue"
)

// QueueStats summarizes one queue run.
type QueueStats struct {
	header.Header `json:",inline" yaml:",inline"`

	QueueID       uuid.UUID        `json:"queueId" yaml:"queueId"`
	Size          int              `json:"size" yaml:"size"`
	Producers     int              `json:"producers" yaml:"producers"`
	PacketType    queue.PacketType `json:"packetType" yaml:"packetType"`
	Submitted     uint64           `json:"submitted" yaml:"submitted"`
	Consumed      uint64           `json:"consumed" yaml:"consumed"`
	SubmitEvents  uint64           `json:"submitEvents" yaml:"submitEvents"`
	Duration      time.Duration    `json:"duration" yaml:"duration"`
	PacketsPerSec float64          `json:"packetsPerSecond" yaml:"packetsPerSecond"`
	Final         queue.State      `json:"final" yaml:"final"`
}

var errRunComplete = stderrors.New("queue run complete")

// RunQueue pushes cfg.Queue.Packets packets through a submission ring wrapped
// by the session's controller while a consumer drains it concurrently.
//
// The ring itself applies no backpressure, so producers hold one semaphore
// slot per outstanding packet and the consumer releases it. Producers share a
// rate limiter when cfg.Queue.Rate is set.
func (s *Session) RunQueue(ctx context.Context) (*QueueStats, error) {
	qc := s.cfg.Queue
	ptype, err := queue.ParsePacketType(qc.Type)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid packet type", err)
	}
	if ptype == queue.PacketTypeInvalid {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "packet type cannot be submitted")
	}

	q, err := queue.New(qc.Size)
	if err != nil {
		return nil, err
	}
	sub := s.ctrl.WrapQueue(q)
	before := s.rec.Count(callback.IDSubmit)

	limit := rate.Inf
	if qc.Rate > 0 {
		limit = rate.Limit(qc.Rate)
	}
	limiter := rate.NewLimiter(limit, 1)
	slots := semaphore.NewWeighted(int64(qc.Size))

	total := uint64(qc.Packets)
	var submitted, consumed atomic.Uint64
	start := time.Now()

	slog.Debug("starting queue run",
		slog.String("queue", q.ID().String()),
		slog.Int("size", qc.Size),
		slog.Int("producers", qc.Producers),
		slog.Uint64("packets", total))

	g, gctx := errgroup.WithContext(ctx)

	if total > 0 {
		consumer := queue.NewConsumer(q)
		g.Go(func() error {
			err := consumer.Run(gctx, func(uint64, queue.Packet) error {
				slots.Release(1)
				queueRunPackets.WithLabelValues("consumed").Inc()
				if consumed.Add(1) == total {
					return errRunComplete
				}
				return nil
			})
			if stderrors.Is(err, errRunComplete) {
				return nil
			}
			return err
		})
	}

	pktHeader := queue.MakeHeader(ptype, false, queue.FenceScopeSystem, queue.FenceScopeSystem)
	per := int(total) / qc.Producers
	for p := 0; p < qc.Producers; p++ {
		count := per
		if p < int(total)%qc.Producers {
			count++
		}
		g.Go(func() error {
			var pkt queue.Packet
			pkt.SetHeader(pktHeader, 0)
			pkt[1] = uint32(p)
			for i := 0; i < count; i++ {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
				if err := slots.Acquire(gctx, 1); err != nil {
					return err
				}
				pkt[2] = uint32(i)
				sub.Submit(&pkt)
				submitted.Add(1)
				queueRunPackets.WithLabelValues("submitted").Inc()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeTimeout, "queue run interrupted", err,
			map[string]any{"submitted": submitted.Load(), "consumed": consumed.Load()})
	}

	elapsed := time.Since(start)
	stats := &QueueStats{
		Header:       header.New(header.KindQueueStats, s.version, header.WithMetadata("queue", q.ID().String())),
		QueueID:      q.ID(),
		Size:         qc.Size,
		Producers:    qc.Producers,
		PacketType:   ptype,
		Submitted:    submitted.Load(),
		Consumed:     consumed.Load(),
		SubmitEvents: s.rec.Count(callback.IDSubmit) - before,
		Duration:     elapsed,
		Final:        q.State(),
	}
	if secs := elapsed.Seconds(); secs > 0 {
		stats.PacketsPerSec = math.Round(float64(stats.Consumed)/secs*100) / 100
	}
	return stats, nil
}
