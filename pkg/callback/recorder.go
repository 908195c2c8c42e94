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
	"time"
)

// Record is one captured event.
type Record struct {
	Seq   uint64    `json:"seq" yaml:"seq"`
	Kind  ID        `json:"kind" yaml:"kind"`
	Time  time.Time `json:"time" yaml:"time"`
	Event any       `json:"event" yaml:"event"`
}

// Recorder captures events in arrival order. It is safe for concurrent use.
// With a positive limit only the most recent limit records are kept.
type Recorder struct {
	mu      sync.Mutex
	limit   int
	seq     uint64
	records []Record
	counts  map[ID]uint64
	now     func() time.Time
}

// NewRecorder creates a recorder keeping at most limit records; zero keeps all.
func NewRecorder(limit int) *Recorder {
	return &Recorder{
		limit:  limit,
		counts: make(map[ID]uint64),
		now:    time.Now,
	}
}

// Set returns a handler set that records every event kind.
func (r *Recorder) Set() Set {
	return Set{
		Allocate: func(ev AllocateEvent, _ any) { r.add(IDAllocate, ev) },
		Device:   func(ev DeviceEvent, _ any) { r.add(IDDevice, ev) },
		Memcopy:  func(ev MemcopyEvent, _ any) { r.add(IDMemcopy, ev) },
		Submit:   func(ev SubmitEvent, _ any) { r.add(IDSubmit, ev) },
	}
}

// Only returns a handler set recording just the given kinds.
func (r *Recorder) Only(ids ...ID) Set {
	full := r.Set()
	var s Set
	for _, id := range ids {
		switch id {
		case IDAllocate:
			s.Allocate = full.Allocate
		case IDDevice:
			s.Device = full.Device
		case IDMemcopy:
			s.Memcopy = full.Memcopy
		case IDSubmit:
			s.Submit = full.Submit
		}
	}
	return s
}

func (r *Recorder) add(kind ID, ev any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.counts[kind]++
	r.records = append(r.records, Record{Seq: r.seq, Kind: kind, Time: r.now(), Event: ev})
	if r.limit > 0 && len(r.records) > r.limit {
		r.records = append(r.records[:0], r.records[len(r.records)-r.limit:]...)
	}
}

// Records returns a copy of the retained records.
func (r *Recorder) Records() []Record {
	return r.Since(0)
}

// Since returns retained records with a sequence number greater than seq.
func (r *Recorder) Since(seq uint64) []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		if rec.Seq > seq {
			out = append(out, rec)
		}
	}
	return out
}

// Seq returns the sequence number of the most recent event, retained or not.
func (r *Recorder) Seq() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}

// Count returns how many events of kind were seen, including dropped ones.
func (r *Recorder) Count(kind ID) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[kind]
}

// Counts returns the per-kind totals keyed by kind name.
func (r *Recorder) Counts() map[string]uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]uint64, len(idNames))
	for _, id := range IDs() {
		out[id.String()] = r.counts[id]
	}
	return out
}

// Kinds returns the kind of every retained record, in order.
func (r *Recorder) Kinds() []ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ID, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Kind
	}
	return out
}

// Reset drops all records and counts.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
	r.counts = make(map[ID]uint64)
}
