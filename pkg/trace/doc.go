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

// Package trace runs workloads against a simulated GPU runtime with the
// interceptor installed and collects the events it reports.
//
// A Session owns one simulated runtime, its dispatch table and a controller
// whose callbacks write into a callback.Recorder. Run executes the configured
// workload step by step through the table, so every intercepted entry point
// is observed exactly as a tool loaded into a real process would observe it.
// RunQueue drives a submission ring with concurrent producers and a consumer
// and reports throughput.
//
//	cfg, err := config.Load(path)
//	if err != nil {
//	    return err
//	}
//	s, err := trace.NewSession(cfg)
//	if err != nil {
//	    return err
//	}
//	res, err := s.Run(ctx)
//
// Records implements serializer.Tabular, so results print as a table with
// one row per event.
package trace
