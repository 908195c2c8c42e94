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
	"time"
)

// APIVersion is the schema version stamped on every result document.
const APIVersion = "gpu-intercept.nvidia.com/v1"

// Kind represents the type of a result document.
type Kind string

const (
	KindTraceResult Kind = "TraceResult"
	KindQueueStats  Kind = "QueueStats"
	KindEventList   Kind = "EventList"
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid checks if the Kind is one of the recognized kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindTraceResult, KindQueueStats, KindEventList:
		return true
	default:
		return false
	}
}

// Option is a functional option for configuring Header instances.
type Option func(*Header)

// WithMetadata returns an Option that adds a metadata key-value pair to the Header.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		if h.Metadata == nil {
			h.Metadata = make(map[string]string)
		}
		h.Metadata[key] = value
	}
}

// WithTimestamp overrides the generation timestamp.
func WithTimestamp(t time.Time) Option {
	return func(h *Header) {
		if h.Metadata == nil {
			h.Metadata = make(map[string]string)
		}
		h.Metadata["timestamp"] = t.UTC().Format(time.RFC3339)
	}
}

// Header identifies a result document. It follows the Kind, APIVersion and
// Metadata layout used by Kubernetes-style resources.
type Header struct {
	Kind       Kind              `json:"kind,omitempty" yaml:"kind,omitempty"`
	APIVersion string            `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// New returns a Header of the given kind stamped with APIVersion, the current
// time and, when non-empty, the producing tool version.
func New(kind Kind, version string, opts ...Option) Header {
	h := Header{
		Kind:       kind,
		APIVersion: APIVersion,
		Metadata: map[string]string{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}
	if version != "" {
		h.Metadata["version"] = version
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// Get returns the metadata value for key, or "" when it is not set.
func (h Header) Get(key string) string {
	return h.Metadata[key]
}
