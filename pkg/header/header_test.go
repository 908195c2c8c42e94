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

package header

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestKindIsValid(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindTraceResult, true},
		{KindQueueStats, true},
		{KindEventList, true},
		{Kind("Snapshot"), false},
		{Kind(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.IsValid())
		})
	}
}

func TestNew(t *testing.T) {
	h := New(KindTraceResult, "v1.2.3", WithMetadata("queue", "q-1"))
	assert.Equal(t, KindTraceResult, h.Kind)
	assert.Equal(t, APIVersion, h.APIVersion)
	assert.Equal(t, "v1.2.3", h.Get("version"))
	assert.Equal(t, "q-1", h.Get("queue"))
	_, err := time.Parse(time.RFC3339, h.Get("timestamp"))
	assert.NoError(t, err)
}

func TestNewWithoutVersion(t *testing.T) {
	h := New(KindQueueStats, "")
	_, ok := h.Metadata["version"]
	assert.False(t, ok)
}

func TestWithTimestamp(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	h := New(KindEventList, "", WithTimestamp(ts))
	assert.Equal(t, "2025-06-01T11:00:00Z", h.Get("timestamp"))
}

func TestInlineYAML(t *testing.T) {
	doc := struct {
		Header `yaml:",inline"`
		Count  int `yaml:"count"`
	}{
		Header: New(KindQueueStats, "", WithTimestamp(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))),
		Count:  3,
	}
	out, err := yaml.Marshal(doc)
	assert.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "kind: QueueStats\n")
	assert.Contains(t, text, "apiVersion: gpu-intercept.nvidia.com/v1\n")
	assert.Contains(t, text, "2025-01-01T00:00:00Z")
	assert.Contains(t, text, "count: 3\n")
	assert.NotContains(t, text, "header:")
}
