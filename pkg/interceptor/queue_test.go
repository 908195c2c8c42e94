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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/gpu-intercept/pkg/callback"
	"github.com/NVIDIA/gpu-intercept/pkg/queue"
	"github.com/NVIDIA/gpu-intercept/pkg/runtime"
	"github.com/NVIDIA/gpu-intercept/pkg/runtime/simulated"
	"github.com/NVIDIA/gpu-intercept/pkg/version"
)

func TestWrapQueueFiresSubmit(t *testing.T) {
	h := newHarness(t, true)
	h.ctrl.SetCallbacks(h.rec.Only(callback.IDSubmit), nil)

	q, err := queue.New(4)
	require.NoError(t, err)

	sub := h.ctrl.WrapQueue(q)
	iq, ok := sub.(*InstrumentedQueue)
	require.True(t, ok)
	assert.Same(t, q, iq.Queue())
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	iq.now = func() time.Time { return fixed }

	var p queue.Packet
	p.SetHeader(queue.MakeHeader(queue.PacketTypeBarrierAnd, true, queue.FenceScopeNone, queue.FenceScopeSystem), 0)
	for i := 0; i < 3; i++ {
		idx := sub.Submit(&p)
		assert.Equal(t, uint64(i), idx)
	}

	records := h.rec.Records()
	require.Len(t, records, 3)
	for i, r := range records {
		assert.Equal(t, callback.SubmitEvent{
			QueueID:    q.ID(),
			Index:      uint64(i),
			PacketType: queue.PacketTypeBarrierAnd,
			Timestamp:  fixed,
		}, r.Event)
	}

	n, err := queue.NewConsumer(q).Drain(nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestWrapQueueWithoutSubmitHandler(t *testing.T) {
	h := newHarness(t, true)
	h.ctrl.SetCallbacks(h.rec.Only(callback.IDMemcopy), nil)

	q, err := queue.New(2)
	require.NoError(t, err)
	h.ctrl.WrapQueue(q).Submit(&queue.Packet{})
	assert.Empty(t, h.rec.Records())
}

func TestWrapQueueDisabled(t *testing.T) {
	h := newHarness(t, false)
	h.ctrl.SetCallbacks(h.rec.Set(), nil)

	q, err := queue.New(2)
	require.NoError(t, err)
	sub := h.ctrl.WrapQueue(q)
	assert.Same(t, q, sub.(*queue.Queue))

	sub.Submit(&queue.Packet{})
	assert.Empty(t, h.rec.Records())
}

func TestWrapQueueAfterRejectedInstall(t *testing.T) {
	rt := simulated.NewDefault()
	rec := callback.NewRecorder(0)
	ctrl := New(WithLogger(quietLogger()), WithFatalHandler((&fatalRecorder{}).handle))
	ctrl.Enable(true)
	require.Error(t, ctrl.Install(runtime.NewTable(version.NewVersion(1, 0, 0), rt)))
	ctrl.SetCallbacks(rec.Set(), nil)

	q, err := queue.New(2)
	require.NoError(t, err)
	sub := ctrl.WrapQueue(q)
	assert.Same(t, q, sub.(*queue.Queue))

	sub.Submit(&queue.Packet{})
	assert.Empty(t, rec.Records())
}
