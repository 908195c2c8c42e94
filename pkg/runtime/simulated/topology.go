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

package simulated

import (
	"fmt"

	"github.com/NVIDIA/gpu-intercept/pkg/errors"
	"github.com/NVIDIA/gpu-intercept/pkg/runtime"
)

// AgentSpec declares one agent of the simulated system.
type AgentSpec struct {
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type" yaml:"type"`
	Index int    `json:"index" yaml:"index"`
}

// PoolSpec declares one memory pool. Access maps agent names to "never",
// "default" or "explicit"; agents not listed are "never".
type PoolSpec struct {
	Name        string            `json:"name" yaml:"name"`
	Segment     string            `json:"segment" yaml:"segment"`
	GlobalFlags []string          `json:"globalFlags,omitempty" yaml:"globalFlags,omitempty"`
	Access      map[string]string `json:"access,omitempty" yaml:"access,omitempty"`
}

// Topology is the static description of a simulated system.
type Topology struct {
	Agents []AgentSpec `json:"agents" yaml:"agents"`
	Pools  []PoolSpec  `json:"pools" yaml:"pools"`
}

var globalFlagNames = map[string]runtime.GlobalFlags{
	"kernarg": runtime.GlobalFlagKernArg,
	"fine":    runtime.GlobalFlagFineGrained,
	"coarse":  runtime.GlobalFlagCoarseGrained,
}

// DefaultTopology is one CPU and two GPUs. The system pool is reachable by
// default from the CPU and the first GPU only.
func DefaultTopology() Topology {
	return Topology{
		Agents: []AgentSpec{
			{Name: "cpu0", Type: "cpu", Index: 0},
			{Name: "gpu0", Type: "gpu", Index: 1},
			{Name: "gpu1", Type: "gpu", Index: 2},
		},
		Pools: []PoolSpec{
			{
				Name:        "system",
				Segment:     "global",
				GlobalFlags: []string{"fine", "kernarg"},
				Access: map[string]string{
					"cpu0": "default",
					"gpu0": "default",
					"gpu1": "explicit",
				},
			},
			{
				Name:        "gpu0-vram",
				Segment:     "global",
				GlobalFlags: []string{"coarse"},
				Access: map[string]string{
					"gpu0": "default",
					"gpu1": "explicit",
					"cpu0": "explicit",
				},
			},
			{
				Name:        "gpu1-vram",
				Segment:     "global",
				GlobalFlags: []string{"coarse"},
				Access: map[string]string{
					"gpu1": "default",
					"gpu0": "explicit",
					"cpu0": "explicit",
				},
			},
		},
	}
}

// Validate checks names are unique and every enum value is known.
func (t Topology) Validate() error {
	if len(t.Agents) == 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "topology declares no agents")
	}

	agents := make(map[string]bool, len(t.Agents))
	for _, a := range t.Agents {
		if a.Name == "" {
			return errors.New(errors.ErrCodeInvalidRequest, "agent name is required")
		}
		if agents[a.Name] {
			return errors.NewWithContext(errors.ErrCodeInvalidRequest, "duplicate agent",
				map[string]any{"agent": a.Name})
		}
		agents[a.Name] = true
		if _, err := runtime.ParseDeviceType(a.Type); err != nil {
			return errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid agent type", err,
				map[string]any{"agent": a.Name})
		}
	}

	pools := make(map[string]bool, len(t.Pools))
	for _, p := range t.Pools {
		if p.Name == "" {
			return errors.New(errors.ErrCodeInvalidRequest, "pool name is required")
		}
		if pools[p.Name] {
			return errors.NewWithContext(errors.ErrCodeInvalidRequest, "duplicate pool",
				map[string]any{"pool": p.Name})
		}
		pools[p.Name] = true
		if _, err := p.info(); err != nil {
			return err
		}
		for agent, access := range p.Access {
			if !agents[agent] {
				return errors.NewWithContext(errors.ErrCodeInvalidRequest, "pool references unknown agent",
					map[string]any{"pool": p.Name, "agent": agent})
			}
			if _, err := runtime.ParsePoolAccess(access); err != nil {
				return errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid pool access", err,
					map[string]any{"pool": p.Name, "agent": agent})
			}
		}
	}
	return nil
}

func (p PoolSpec) info() (runtime.PoolInfo, error) {
	seg, err := runtime.ParseSegment(p.Segment)
	if err != nil {
		return runtime.PoolInfo{}, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid pool segment", err,
			map[string]any{"pool": p.Name})
	}
	var flags runtime.GlobalFlags
	for _, name := range p.GlobalFlags {
		f, ok := globalFlagNames[name]
		if !ok {
			return runtime.PoolInfo{}, errors.NewWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("unknown global flag %q", name), map[string]any{"pool": p.Name})
		}
		flags |= f
	}
	return runtime.PoolInfo{Segment: seg, GlobalFlags: flags}, nil
}
