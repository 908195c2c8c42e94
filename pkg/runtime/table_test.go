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

import (
	"testing"

	"github.com/NVIDIA/gpu-intercept/pkg/version"
)

type nopAPI struct{ name string }

func (n *nopAPI) MemoryAllocate(Region, uint64) (Address, error) { return 0, nil }
func (n *nopAPI) MemoryAssignAgent(Address, Agent, AccessPermission) error {
	return nil
}
func (n *nopAPI) MemoryCopy(Address, Address, uint64) error { return nil }
func (n *nopAPI) MemoryPoolAllocate(MemoryPool, uint64, uint32) (Address, error) {
	return 0, nil
}
func (n *nopAPI) AgentsAllowAccess([]Agent, []uint32, Address) error { return nil }
func (n *nopAPI) MemoryAsyncCopy(Address, Agent, Address, Agent, uint64, []Signal, Signal) error {
	return nil
}

func TestTablePatch(t *testing.T) {
	orig := &nopAPI{name: "orig"}
	table := NewTable(version.NewVersion(1, 2, 0), orig)

	if table.API() != MemoryAPI(orig) {
		t.Fatal("expected table to resolve the saved runtime")
	}

	var seen MemoryAPI
	wrapped := &nopAPI{name: "wrapped"}
	ok := table.Patch(func(cur MemoryAPI) MemoryAPI {
		seen = cur
		return wrapped
	})
	if !ok {
		t.Fatal("expected patch to succeed")
	}
	if seen != MemoryAPI(orig) {
		t.Error("wrap should receive the current implementation")
	}
	if table.API() != MemoryAPI(wrapped) {
		t.Error("expected table to resolve the patched implementation")
	}
	if got := table.Version().String(); got != "1.2.0" {
		t.Errorf("Version() = %s, want 1.2.0", got)
	}
}

func TestTablePatchLosesRace(t *testing.T) {
	table := NewTable(version.NewVersion(1, 1, 0), &nopAPI{name: "orig"})
	winner := &nopAPI{name: "winner"}

	ok := table.Patch(func(cur MemoryAPI) MemoryAPI {
		// a competing installer publishes while this wrap is being built
		if !table.Patch(func(MemoryAPI) MemoryAPI { return winner }) {
			t.Fatal("inner patch should win")
		}
		return &nopAPI{name: "loser"}
	})

	if ok {
		t.Error("expected outer patch to report the lost race")
	}
	if table.API() != MemoryAPI(winner) {
		t.Error("table should keep the winner's implementation")
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{SegmentGlobal.String(), "global"},
		{SegmentKernArg.String(), "kernarg"},
		{Segment(42).String(), "segment(42)"},
		{DeviceTypeGPU.String(), "gpu"},
		{DeviceType(9).String(), "device(9)"},
		{AccessAllowedByDefault.String(), "default"},
		{Address(0x1000).String(), "0x1000"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestParseEnums(t *testing.T) {
	if s, err := ParseSegment("private"); err != nil || s != SegmentPrivate {
		t.Errorf("ParseSegment(private) = %v, %v", s, err)
	}
	if _, err := ParseSegment("bogus"); err == nil {
		t.Error("expected error for unknown segment")
	}
	if d, err := ParseDeviceType("cpu"); err != nil || d != DeviceTypeCPU {
		t.Errorf("ParseDeviceType(cpu) = %v, %v", d, err)
	}
	if p, err := ParsePoolAccess("explicit"); err != nil || p != AccessDisallowedByDefault {
		t.Errorf("ParsePoolAccess(explicit) = %v, %v", p, err)
	}
}
