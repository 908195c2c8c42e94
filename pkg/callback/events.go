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
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/NVIDIA/gpu-intercept/pkg/queue"
	"github.com/NVIDIA/gpu-intercept/pkg/runtime"
)

// ID identifies an event kind.
type ID int

const (
	IDAllocate ID = iota
	IDDevice
	IDMemcopy
	IDSubmit
)

var idNames = [...]string{
	IDAllocate: "allocate",
	IDDevice:   "device",
	IDMemcopy:  "memcopy",
	IDSubmit:   "submit",
}

// IDs lists every event kind in declaration order.
func IDs() []ID {
	return []ID{IDAllocate, IDDevice, IDMemcopy, IDSubmit}
}

func (id ID) String() string {
	if id >= 0 && int(id) < len(idNames) {
		return idNames[id]
	}
	return fmt.Sprintf("callback(%d)", int(id))
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// ParseID maps an event kind name back to its ID.
func ParseID(name string) (ID, error) {
	for i, n := range idNames {
		if n == name {
			return ID(i), nil
		}
	}
	return 0, fmt.Errorf("unknown callback %q", name)
}

// AllocateEvent reports a successful pool allocation.
type AllocateEvent struct {
	Address     runtime.Address     `json:"address" yaml:"address"`
	Size        uint64              `json:"size" yaml:"size"`
	Segment     runtime.Segment     `json:"segment" yaml:"segment"`
	GlobalFlags runtime.GlobalFlags `json:"globalFlags" yaml:"globalFlags"`
}

// DeviceEvent reports that a device can access an allocation.
type DeviceEvent struct {
	DeviceIndex int                `json:"deviceIndex" yaml:"deviceIndex"`
	Address     runtime.Address    `json:"address" yaml:"address"`
	DeviceType  runtime.DeviceType `json:"deviceType" yaml:"deviceType"`
}

// MemcopyEvent reports a completed copy request.
type MemcopyEvent struct {
	Dst  runtime.Address `json:"dst" yaml:"dst"`
	Src  runtime.Address `json:"src" yaml:"src"`
	Size uint64          `json:"size" yaml:"size"`
}

// SubmitEvent reports a packet published to a submission queue.
type SubmitEvent struct {
	QueueID    uuid.UUID        `json:"queueId" yaml:"queueId"`
	Index      uint64           `json:"index" yaml:"index"`
	PacketType queue.PacketType `json:"packetType" yaml:"packetType"`
	Timestamp  time.Time        `json:"timestamp" yaml:"timestamp"`
}
