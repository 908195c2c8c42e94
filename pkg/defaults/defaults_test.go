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

package defaults

import (
	"math/bits"
	"testing"
	"time"

	"github.com/NVIDIA/gpu-intercept/pkg/version"
)

func TestTimeoutConstants(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		minValue time.Duration
		maxValue time.Duration
	}{
		{"ConsumerPollInterval", ConsumerPollInterval, time.Millisecond, 100 * time.Millisecond},
		{"ServerReadTimeout", ServerReadTimeout, 5 * time.Second, 30 * time.Second},
		{"ServerWriteTimeout", ServerWriteTimeout, 15 * time.Second, 60 * time.Second},
		{"ServerIdleTimeout", ServerIdleTimeout, 30 * time.Second, 300 * time.Second},
		{"ServerShutdownTimeout", ServerShutdownTimeout, 10 * time.Second, 60 * time.Second},
		{"CLIQueueTimeout", CLIQueueTimeout, 30 * time.Second, 10 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.timeout < tt.minValue {
				t.Errorf("%s (%v) is below minimum expected value (%v)", tt.name, tt.timeout, tt.minValue)
			}
			if tt.timeout > tt.maxValue {
				t.Errorf("%s (%v) exceeds maximum expected value (%v)", tt.name, tt.timeout, tt.maxValue)
			}
		})
	}
}

func TestServerTimeoutRelationships(t *testing.T) {
	if ServerReadHeaderTimeout >= ServerReadTimeout {
		t.Errorf("ServerReadHeaderTimeout (%v) should be less than ServerReadTimeout (%v)",
			ServerReadHeaderTimeout, ServerReadTimeout)
	}
}

func TestQueueGeometry(t *testing.T) {
	for name, v := range map[string]int{"QueueSize": QueueSize, "MaxQueueSize": MaxQueueSize} {
		if v <= 0 || bits.OnesCount(uint(v)) != 1 {
			t.Errorf("%s (%d) must be a positive power of two", name, v)
		}
	}
	if QueueSize > MaxQueueSize {
		t.Errorf("QueueSize (%d) exceeds MaxQueueSize (%d)", QueueSize, MaxQueueSize)
	}
	if PacketWords*4 != 64 {
		t.Errorf("packets must be 64 bytes, got %d", PacketWords*4)
	}
}

func TestMinRuntimeAPIVersionParses(t *testing.T) {
	if _, err := version.ParseVersion(MinRuntimeAPIVersion); err != nil {
		t.Fatalf("MinRuntimeAPIVersion %q does not parse: %v", MinRuntimeAPIVersion, err)
	}
}
