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

package runtime

import "fmt"

// Address is a device-visible virtual address.
type Address uint64

// String formats the address as hex.
func (a Address) String() string {
	return fmt.Sprintf("0x%x", uint64(a))
}

// MarshalText renders the address in hex for JSON and YAML output.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Agent is an opaque handle identifying a compute device (host or accelerator).
type Agent struct {
	Handle uint64 `json:"handle" yaml:"handle"`
}

// Region is an opaque handle to a legacy allocation region.
type Region struct {
	Handle uint64 `json:"handle" yaml:"handle"`
}

// MemoryPool is an opaque handle to an allocation pool.
type MemoryPool struct {
	Handle uint64 `json:"handle" yaml:"handle"`
}

// Signal is an opaque handle to a completion or dependency signal.
// The zero value means "no signal".
type Signal struct {
	Handle uint64 `json:"handle" yaml:"handle"`
}

// IsZero reports whether s refers to no signal.
func (s Signal) IsZero() bool {
	return s.Handle == 0
}

// Segment classifies the memory segment a pool or region allocates from.
type Segment uint32

const (
	SegmentGlobal Segment = iota
	SegmentReadOnly
	SegmentPrivate
	SegmentGroup
	SegmentKernArg
)

var segmentNames = map[Segment]string{
	SegmentGlobal:   "global",
	SegmentReadOnly: "readonly",
	SegmentPrivate:  "private",
	SegmentGroup:    "group",
	SegmentKernArg:  "kernarg",
}

func (s Segment) String() string {
	if n, ok := segmentNames[s]; ok {
		return n
	}
	return fmt.Sprintf("segment(%d)", uint32(s))
}

func (s Segment) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSegment maps a segment name back to its value.
func ParseSegment(name string) (Segment, error) {
	for s, n := range segmentNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown segment %q", name)
}

// GlobalFlags describe properties of a global-segment pool.
type GlobalFlags uint32

const (
	GlobalFlagKernArg       GlobalFlags = 1 << 0
	GlobalFlagFineGrained   GlobalFlags = 1 << 1
	GlobalFlagCoarseGrained GlobalFlags = 1 << 2
)

// DeviceType is the kind of compute device behind an agent.
type DeviceType uint32

const (
	DeviceTypeCPU DeviceType = iota
	DeviceTypeGPU
	DeviceTypeDSP
)

var deviceTypeNames = map[DeviceType]string{
	DeviceTypeCPU: "cpu",
	DeviceTypeGPU: "gpu",
	DeviceTypeDSP: "dsp",
}

func (d DeviceType) String() string {
	if n, ok := deviceTypeNames[d]; ok {
		return n
	}
	return fmt.Sprintf("device(%d)", uint32(d))
}

func (d DeviceType) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// ParseDeviceType maps a device type name back to its value.
func ParseDeviceType(name string) (DeviceType, error) {
	for d, n := range deviceTypeNames {
		if n == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown device type %q", name)
}

// AccessPermission is the permission requested by the legacy assign-agent call.
type AccessPermission uint32

const (
	AccessReadOnly AccessPermission = iota + 1
	AccessWriteOnly
	AccessReadWrite
)

// PoolAccess describes how an agent may access memory from a pool.
type PoolAccess uint32

const (
	// AccessNeverAllowed means the agent can never access the pool's memory.
	AccessNeverAllowed PoolAccess = iota
	// AccessAllowedByDefault means the agent can access allocations without
	// an explicit allow-access call.
	AccessAllowedByDefault
	// AccessDisallowedByDefault means access must be granted explicitly.
	AccessDisallowedByDefault
)

var poolAccessNames = map[PoolAccess]string{
	AccessNeverAllowed:        "never",
	AccessAllowedByDefault:    "default",
	AccessDisallowedByDefault: "explicit",
}

func (p PoolAccess) String() string {
	if n, ok := poolAccessNames[p]; ok {
		return n
	}
	return fmt.Sprintf("access(%d)", uint32(p))
}

// ParsePoolAccess maps an access name back to its value.
func ParsePoolAccess(name string) (PoolAccess, error) {
	for p, n := range poolAccessNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown pool access %q", name)
}

// PoolInfo is what the runtime reports about a pool after allocation.
type PoolInfo struct {
	Segment     Segment     `json:"segment" yaml:"segment"`
	GlobalFlags GlobalFlags `json:"globalFlags" yaml:"globalFlags"`
}

// AgentInfo is the externally resolved metadata of an agent.
type AgentInfo struct {
	Index int        `json:"index" yaml:"index"`
	Type  DeviceType `json:"type" yaml:"type"`
}
