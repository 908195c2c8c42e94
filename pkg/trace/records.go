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
	"fmt"
	"strconv"
	"time"

	"github.com/NVIDIA/gpu-intercept/pkg/callback"
	"github.com/NVIDIA/gpu-intercept/pkg/serializer"
)

// Records renders captured events as a table, one row per event.
type Records []callback.Record

var _ serializer.Tabular = Records(nil)

func (Records) TableHeader() []string {
	return []string{"SEQ", "TIME", "KIND", "DETAIL"}
}

func (r Records) TableRows() [][]string {
	rows := make([][]string, 0, len(r))
	for _, rec := range r {
		rows = append(rows, []string{
			strconv.FormatUint(rec.Seq, 10),
			rec.Time.Format(time.RFC3339Nano),
			rec.Kind.String(),
			describe(rec.Event),
		})
	}
	return rows
}

func describe(ev any) string {
	switch e := ev.(type) {
	case callback.AllocateEvent:
		return fmt.Sprintf("address=%s size=%d segment=%s flags=%#x", e.Address, e.Size, e.Segment, uint32(e.GlobalFlags))
	case callback.DeviceEvent:
		return fmt.Sprintf("device=%d type=%s address=%s", e.DeviceIndex, e.DeviceType, e.Address)
	case callback.MemcopyEvent:
		return fmt.Sprintf("dst=%s src=%s size=%d", e.Dst, e.Src, e.Size)
	case callback.SubmitEvent:
		return fmt.Sprintf("queue=%s index=%d type=%s", e.QueueID, e.Index, e.PacketType)
	default:
		return fmt.Sprintf("%v", ev)
	}
}
