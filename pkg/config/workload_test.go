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

package config

import (
	"testing"

	"github.com/NVIDIA/gpu-intercept/pkg/runtime/simulated"
)

func TestWorkloadValidate(t *testing.T) {
	topo := simulated.DefaultTopology()
	alloc := Step{Op: StepAllocate, Buffer: "a", Pool: "system", Size: 64}
	alloc2 := Step{Op: StepAllocate, Buffer: "b", Pool: "gpu0-vram", Size: 32}

	tests := []struct {
		name    string
		steps   []Step
		wantErr bool
	}{
		{"default", DefaultWorkload().Steps, false},
		{"empty", nil, false},
		{"legacy allocate", []Step{{Op: StepLegacyAllocate, Pool: "system", Size: 8}}, false},
		{"unknown op", []Step{{Op: "free"}}, true},
		{"allocate without buffer", []Step{{Op: StepAllocate, Pool: "system", Size: 8}}, true},
		{"allocate zero size", []Step{{Op: StepAllocate, Buffer: "a", Pool: "system"}}, true},
		{"allocate unknown pool", []Step{{Op: StepAllocate, Buffer: "a", Pool: "hbm", Size: 8}}, true},
		{"allow before allocate", []Step{{Op: StepAllowAccess, Buffer: "a", Agents: []string{"gpu1"}}}, true},
		{"allow unknown agent", []Step{alloc, {Op: StepAllowAccess, Buffer: "a", Agents: []string{"gpu9"}}}, true},
		{"allow no agents", []Step{alloc, {Op: StepAllowAccess, Buffer: "a"}}, true},
		{"copy fits", []Step{alloc, alloc2, {Op: StepCopy, Dst: "a", Src: "b", Size: 32}}, false},
		{"copy overflows source", []Step{alloc, alloc2, {Op: StepCopy, Dst: "a", Src: "b", Size: 64}}, true},
		{"copy unknown buffer", []Step{alloc, {Op: StepCopy, Dst: "a", Src: "z", Size: 8}}, true},
		{"async copy", []Step{alloc, alloc2, {Op: StepAsyncCopy, Dst: "b", Src: "a", Size: 8, Agents: []string{"gpu0"}}}, false},
		{"async copy two agents", []Step{alloc, alloc2, {Op: StepAsyncCopy, Dst: "b", Src: "a", Size: 8, Agents: []string{"gpu0", "gpu1"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Workload{Steps: tt.steps}.Validate(topo)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
