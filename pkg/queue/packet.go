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
	"fmt"

	"github.com/NVIDIA/gpu-intercept/pkg/defaults"
)

// Packet is one 64-byte command packet. Word 0 is the header: the low 16 bits
// hold type, barrier and fence scopes, the high 16 bits are packet specific
// setup. Words 1..15 are the payload.
type Packet [defaults.PacketWords]uint32

// PacketType is the header's type field.
type PacketType uint8

const (
	PacketTypeVendorSpecific PacketType = 0
	PacketTypeInvalid        PacketType = 1
	PacketTypeKernelDispatch PacketType = 2
	PacketTypeBarrierAnd     PacketType = 3
	PacketTypeAgentDispatch  PacketType = 4
	PacketTypeBarrierOr      PacketType = 5
)

var packetTypeNames = map[PacketType]string{
	PacketTypeVendorSpecific: "vendor-specific",
	PacketTypeInvalid:        "invalid",
	PacketTypeKernelDispatch: "kernel-dispatch",
	PacketTypeBarrierAnd:     "barrier-and",
	PacketTypeAgentDispatch:  "agent-dispatch",
	PacketTypeBarrierOr:      "barrier-or",
}

func (t PacketType) String() string {
	if n, ok := packetTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("packet(%d)", uint8(t))
}

func (t PacketType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParsePacketType maps a packet type name back to its value.
func ParsePacketType(name string) (PacketType, error) {
	for t, n := range packetTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown packet type %q", name)
}

// FenceScope is the memory scope of an acquire or release fence.
type FenceScope uint8

const (
	FenceScopeNone   FenceScope = 0
	FenceScopeAgent  FenceScope = 1
	FenceScopeSystem FenceScope = 2
)

const (
	headerTypeMask     = 0xff
	headerBarrierBit   = 8
	headerAcquireShift = 9
	headerReleaseShift = 11
	headerScopeMask    = 0x3
	headerSetupShift   = 16
)

// MakeHeader packs the low 16 header bits.
func MakeHeader(t PacketType, barrier bool, acquire, release FenceScope) uint16 {
	h := uint16(t)
	if barrier {
		h |= 1 << headerBarrierBit
	}
	h |= uint16(acquire&headerScopeMask) << headerAcquireShift
	h |= uint16(release&headerScopeMask) << headerReleaseShift
	return h
}

// SetHeader writes word 0 of an unpublished packet.
func (p *Packet) SetHeader(header, setup uint16) {
	p[0] = uint32(header) | uint32(setup)<<headerSetupShift
}

// Header returns the low 16 bits of word 0.
func (p *Packet) Header() uint16 {
	return uint16(p[0])
}

// Setup returns the high 16 bits of word 0.
func (p *Packet) Setup() uint16 {
	return uint16(p[0] >> headerSetupShift)
}

// Type returns the packet type.
func (p *Packet) Type() PacketType {
	return headerType(p[0])
}

// Barrier reports whether the barrier bit is set.
func (p *Packet) Barrier() bool {
	return p[0]&(1<<headerBarrierBit) != 0
}

// Fences returns the acquire and release scopes.
func (p *Packet) Fences() (acquire, release FenceScope) {
	acquire = FenceScope(p[0]>>headerAcquireShift) & headerScopeMask
	release = FenceScope(p[0]>>headerReleaseShift) & headerScopeMask
	return acquire, release
}

func headerType(word uint32) PacketType {
	return PacketType(word & headerTypeMask)
}

// invalidHeader marks a free slot.
const invalidHeader = uint32(PacketTypeInvalid)
