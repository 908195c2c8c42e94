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
	"fmt"
	"math/bits"
	"os"
	"strconv"
	"strings"

	"github.com/NVIDIA/gpu-intercept/pkg/callback"
	"github.com/NVIDIA/gpu-intercept/pkg/defaults"
	"github.com/NVIDIA/gpu-intercept/pkg/errors"
	"github.com/NVIDIA/gpu-intercept/pkg/queue"
	"github.com/NVIDIA/gpu-intercept/pkg/runtime/simulated"
	"github.com/NVIDIA/gpu-intercept/pkg/serializer"
)

// Environment variables that override file settings.
const (
	EnvEnable    = "GPU_INTERCEPT_ENABLE"
	EnvQueueSize = "GPU_INTERCEPT_QUEUE_SIZE"
)

// Config is the complete tool configuration.
type Config struct {
	Interceptor InterceptorConfig  `json:"interceptor" yaml:"interceptor"`
	Queue       QueueConfig        `json:"queue" yaml:"queue"`
	Topology    simulated.Topology `json:"topology" yaml:"topology"`
	Workload    Workload           `json:"workload" yaml:"workload"`
}

// InterceptorConfig controls whether interception is installed and which
// event kinds are recorded. An empty Events list records every kind.
type InterceptorConfig struct {
	Enable bool     `json:"enable" yaml:"enable"`
	Events []string `json:"events,omitempty" yaml:"events,omitempty"`
}

// QueueConfig shapes the packet submission run.
type QueueConfig struct {
	Size      int     `json:"size" yaml:"size"`
	Packets   int     `json:"packets" yaml:"packets"`
	Producers int     `json:"producers" yaml:"producers"`
	Rate      float64 `json:"rate,omitempty" yaml:"rate,omitempty"`
	Type      string  `json:"type" yaml:"type"`
}

// Default returns a configuration that exercises every intercepted entry point
// on the default simulated topology.
func Default() *Config {
	return &Config{
		Interceptor: InterceptorConfig{Enable: true},
		Queue: QueueConfig{
			Size:      defaults.QueueSize,
			Packets:   256,
			Producers: 1,
			Type:      queue.PacketTypeKernelDispatch.String(),
		},
		Topology: simulated.DefaultTopology(),
		Workload: DefaultWorkload(),
	}
}

// Load reads path (YAML or JSON by extension), fills unset sections from
// Default, applies the environment overrides and validates the result. An
// empty path loads the defaults only.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		cfg = &Config{Interceptor: InterceptorConfig{Enable: true}}
		r, err := serializer.NewFileReaderAuto(path, serializer.WithStrict())
		if err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "failed to open config", err,
				map[string]any{"path": path})
		}
		defer r.Close()
		if err := r.Deserialize(cfg); err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "failed to parse config", err,
				map[string]any{"path": path})
		}
		cfg.fillDefaults()
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillDefaults replaces zero sections with their defaults. A topology or
// workload given in the file replaces the default one entirely.
func (c *Config) fillDefaults() {
	d := Default()
	if c.Queue.Size == 0 {
		c.Queue.Size = d.Queue.Size
	}
	if c.Queue.Packets == 0 {
		c.Queue.Packets = d.Queue.Packets
	}
	if c.Queue.Producers == 0 {
		c.Queue.Producers = d.Queue.Producers
	}
	if c.Queue.Type == "" {
		c.Queue.Type = d.Queue.Type
	}
	if len(c.Topology.Agents) == 0 && len(c.Topology.Pools) == 0 {
		c.Topology = d.Topology
	}
	if len(c.Workload.Steps) == 0 {
		c.Workload = d.Workload
	}
}

// ApplyEnv overrides settings from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvEnable); ok && v != "" {
		enable, err := strconv.ParseBool(v)
		if err != nil {
			return errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid boolean", err,
				map[string]any{"env": EnvEnable, "value": v})
		}
		c.Interceptor.Enable = enable
	}
	if v, ok := lookup(EnvQueueSize); ok && v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid integer", err,
				map[string]any{"env": EnvQueueSize, "value": v})
		}
		c.Queue.Size = size
	}
	return nil
}

// EventIDs resolves the configured event kinds.
func (c *Config) EventIDs() ([]callback.ID, error) {
	if len(c.Interceptor.Events) == 0 {
		return callback.IDs(), nil
	}
	ids := make([]callback.ID, 0, len(c.Interceptor.Events))
	for _, name := range c.Interceptor.Events {
		id, err := callback.ParseID(name)
		if err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "unknown event kind", err,
				map[string]any{"event": name})
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if _, err := c.EventIDs(); err != nil {
		return err
	}
	if err := c.Queue.Validate(); err != nil {
		return err
	}
	if err := c.Topology.Validate(); err != nil {
		return err
	}
	return c.Workload.Validate(c.Topology)
}

// Validate checks queue geometry and run parameters.
func (q QueueConfig) Validate() error {
	if q.Size <= 0 || q.Size > defaults.MaxQueueSize || bits.OnesCount(uint(q.Size)) != 1 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("queue size must be a power of two no larger than %d", defaults.MaxQueueSize),
			map[string]any{"size": q.Size})
	}
	if q.Packets < 0 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "packet count must not be negative",
			map[string]any{"packets": q.Packets})
	}
	if q.Producers < 1 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "at least one producer is required",
			map[string]any{"producers": q.Producers})
	}
	if q.Rate < 0 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "rate must not be negative",
			map[string]any{"rate": q.Rate})
	}
	t, err := queue.ParsePacketType(q.Type)
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeInvalidRequest, "unknown packet type", err,
			map[string]any{"type": q.Type})
	}
	// consumers treat an INVALID header as an empty slot
	if t == queue.PacketTypeInvalid {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "packet type cannot be submitted",
			map[string]any{"type": q.Type})
	}
	return nil
}
