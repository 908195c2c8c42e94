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

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/gpu-intercept/pkg/serializer"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		wantFormat serializer.Format
		wantErr    bool
	}{
		{"valid yaml format", "yaml", serializer.FormatYAML, false},
		{"valid json format", "json", serializer.FormatJSON, false},
		{"valid table format", "table", serializer.FormatTable, false},
		{"invalid format xml", "xml", "", true},
		{"empty format", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cli.Command{
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Value: tt.format,
					},
				},
				Action: func(_ context.Context, c *cli.Command) error {
					got, err := parseOutputFormat(c)
					if (err != nil) != tt.wantErr {
						t.Errorf("parseOutputFormat() error = %v, wantErr %v", err, tt.wantErr)
						return nil
					}
					if !tt.wantErr && got != tt.wantFormat {
						t.Errorf("parseOutputFormat() = %v, want %v", got, tt.wantFormat)
					}
					return nil
				},
			}

			if err := cmd.Run(context.Background(), []string{"test"}); err != nil {
				t.Fatalf("failed to run command: %v", err)
			}
		})
	}
}

func TestParseFatalHandler(t *testing.T) {
	tests := []struct {
		policy  string
		wantErr bool
	}{
		{"exit", false},
		{"log", false},
		{"panic", true},
	}

	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			cmd := &cli.Command{
				Flags: []cli.Flag{fatalFlag},
				Action: func(_ context.Context, c *cli.Command) error {
					h, err := parseFatalHandler(c)
					if (err != nil) != tt.wantErr {
						t.Errorf("parseFatalHandler() error = %v, wantErr %v", err, tt.wantErr)
					}
					if !tt.wantErr && h == nil {
						t.Error("expected a handler")
					}
					return nil
				},
			}
			if err := cmd.Run(context.Background(), []string{"test", "--on-fatal", tt.policy}); err != nil {
				t.Fatalf("failed to run command: %v", err)
			}
		})
	}
}

func TestCommandLister(t *testing.T) {
	if err := commandLister(context.Background(), nil); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	root := &cli.Command{
		Name:   "root",
		Writer: &buf,
		Commands: []*cli.Command{
			{Name: "visible1", Usage: "first"},
			{Name: "hidden", Hidden: true},
			{Name: "visible2", Usage: "second"},
		},
	}
	if err := commandLister(context.Background(), root); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "visible1") || !strings.Contains(out, "visible2") {
		t.Errorf("expected visible commands listed, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("hidden command listed: %q", out)
	}
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{"trace": false, "queue": false, "serve": false}
	for _, c := range root.Commands {
		if _, ok := want[c.Name]; ok {
			want[c.Name] = true
		}
		if c.Action == nil {
			t.Errorf("command %s has no action", c.Name)
		}
	}
	for n, seen := range want {
		if !seen {
			t.Errorf("missing command %s", n)
		}
	}
}

func run(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GPU_INTERCEPT_ENABLE", "")
	t.Setenv("GPU_INTERCEPT_QUEUE_SIZE", "")
	t.Setenv("GPU_INTERCEPT_CONFIG", "")
	var buf bytes.Buffer
	root := newRootCmd()
	root.Writer = &buf
	err := root.Run(ctx, append([]string{name, "--log-level", "error"}, args...))
	return buf.String(), err
}

func TestTraceCommand(t *testing.T) {
	out, err := run(t, context.Background(), "trace", "--format", "json", "--on-fatal", "log")
	if err != nil {
		t.Fatalf("trace failed: %v", err)
	}

	var res struct {
		Kind      string            `json:"kind"`
		Installed bool              `json:"installed"`
		Counts    map[string]uint64 `json:"counts"`
		Records   []json.RawMessage `json:"records"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not json: %v\n%s", err, out)
	}
	if res.Kind != "TraceResult" {
		t.Errorf("unexpected kind %q", res.Kind)
	}
	if !res.Installed {
		t.Error("expected interception to be installed")
	}
	if res.Counts["allocate"] != 2 || res.Counts["memcopy"] != 2 {
		t.Errorf("unexpected counts: %v", res.Counts)
	}
	if len(res.Records) != 8 {
		t.Errorf("expected 8 records, got %d", len(res.Records))
	}
}

func TestTraceCommandTableAndFilter(t *testing.T) {
	out, err := run(t, context.Background(), "trace", "--format", "table", "--events", "memcopy")
	if err != nil {
		t.Fatalf("trace failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, rule and 2 rows, got:\n%s", out)
	}
	if !strings.HasPrefix(lines[0], "SEQ") {
		t.Errorf("unexpected header %q", lines[0])
	}
}

func TestTraceCommandDisabled(t *testing.T) {
	out, err := run(t, context.Background(), "trace", "--format", "json", "--intercept=false")
	if err != nil {
		t.Fatalf("trace failed: %v", err)
	}
	if !strings.Contains(out, `"installed": false`) {
		t.Errorf("expected uninstrumented run, got:\n%s", out)
	}
}

func TestTraceCommandConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	cfg := `
workload:
  steps:
    - {op: allocate, buffer: a, pool: gpu1-vram, size: 128}
`
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(t.TempDir(), "out.yaml")

	if _, err := run(t, context.Background(), "trace", "--config", path, "--output", outPath); err != nil {
		t.Fatalf("trace failed: %v", err)
	}
	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "steps: 1") {
		t.Errorf("expected one step in output, got:\n%s", b)
	}
}

func TestTraceCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"trace", "--format", "xml"}},
		{"bad policy", []string{"trace", "--on-fatal", "ignore"}},
		{"bad event", []string{"trace", "--events", "free"}},
		{"missing config", []string{"trace", "--config", "/nonexistent/c.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, context.Background(), tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestQueueCommand(t *testing.T) {
	out, err := run(t, context.Background(), "queue",
		"--packets", "200", "--size", "8", "--producers", "3", "--format", "json")
	if err != nil {
		t.Fatalf("queue failed: %v", err)
	}
	var stats struct {
		Submitted    uint64 `json:"submitted"`
		Consumed     uint64 `json:"consumed"`
		SubmitEvents uint64 `json:"submitEvents"`
	}
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("output is not json: %v\n%s", err, out)
	}
	if stats.Submitted != 200 || stats.Consumed != 200 || stats.SubmitEvents != 200 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestQueueCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad size", []string{"queue", "--size", "3"}},
		{"bad type", []string{"queue", "--type", "mystery"}},
		{"bad timeout", []string{"queue", "--timeout", "0s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, context.Background(), tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestServeCommandStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err := run(t, ctx, "serve", "--address", "127.0.0.1", "--port", "0", "--interval", "50ms")
	if err != nil {
		t.Fatalf("serve returned error: %v", err)
	}
}
