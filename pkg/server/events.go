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

package server

import (
	"net/http"
	"strconv"

	"github.com/NVIDIA/gpu-intercept/pkg/callback"
	"github.com/NVIDIA/gpu-intercept/pkg/header"
	"github.com/NVIDIA/gpu-intercept/pkg/serializer"
)

// EventsResponse is the body of GET /v1/events.
type EventsResponse struct {
	header.Header `json:",inline"`

	Counts  map[string]uint64 `json:"counts"`
	Records []callback.Record `json:"records"`
	// Next is the sequence number to pass as since on the following poll.
	Next uint64 `json:"next"`
}

// handleEvents handles GET /v1/events?since=N&kind=K&limit=L. Records with
// sequence numbers greater than since are returned oldest first.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed,
			"Method not allowed", false, nil)
		return
	}

	if s.events == nil {
		WriteError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			"No event source configured", false, nil)
		return
	}

	q := r.URL.Query()

	var since uint64
	if v := q.Get("since"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest,
				"since must be a non-negative integer", false, map[string]any{"since": v})
			return
		}
		since = n
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			WriteError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest,
				"limit must be a positive integer", false, map[string]any{"limit": v})
			return
		}
		limit = n
	}

	kind := callback.ID(-1)
	if v := q.Get("kind"); v != "" {
		id, err := callback.ParseID(v)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest,
				"unknown event kind", false, map[string]any{"kind": v})
			return
		}
		kind = id
	}

	all := s.events.Since(since)
	next := since
	records := make([]callback.Record, 0, len(all))
	for _, rec := range all {
		if limit > 0 && len(records) == limit {
			break
		}
		next = rec.Seq
		if kind >= 0 && rec.Kind != kind {
			continue
		}
		records = append(records, rec)
	}

	serializer.RespondJSON(w, http.StatusOK, EventsResponse{
		Header:  header.New(header.KindEventList, s.config.Version),
		Counts:  s.events.Counts(),
		Records: records,
		Next:    next,
	})
}
