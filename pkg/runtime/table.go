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
	"sync/atomic"

	"github.com/NVIDIA/gpu-intercept/pkg/version"
)

// Table is the dispatch table the host resolves MemoryAPI calls through.
// Callers must go through API() on every call instead of caching the result,
// otherwise a later Patch is invisible to them.
type Table struct {
	version version.Version
	current atomic.Pointer[tableEntry]
}

type tableEntry struct {
	api MemoryAPI
}

// NewTable creates a table stamped with v that resolves to api.
func NewTable(v version.Version, api MemoryAPI) *Table {
	t := &Table{version: v}
	t.current.Store(&tableEntry{api: api})
	return t
}

// Version returns the API version the table was published with.
func (t *Table) Version() version.Version {
	return t.version
}

// API returns the currently resolved implementation.
func (t *Table) API() MemoryAPI {
	return t.current.Load().api
}

// Patch replaces the resolved implementation with wrap(current). wrap runs
// before publication, so state it captures is visible to every caller that
// resolves the new implementation. Patch returns false, leaving the table
// untouched, if another Patch published first.
func (t *Table) Patch(wrap func(current MemoryAPI) MemoryAPI) bool {
	prev := t.current.Load()
	next := &tableEntry{api: wrap(prev.api)}
	return t.current.CompareAndSwap(prev, next)
}
