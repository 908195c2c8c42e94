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

package serializer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string            `json:"name" yaml:"name"`
	Count int               `json:"count" yaml:"count"`
	Tags  []string          `json:"tags" yaml:"tags"`
	Meta  map[string]string `json:"meta" yaml:"meta"`
}

type hexID uint32

func (h hexID) String() string { return "id-" + strings.Repeat("x", int(h)) }

type rows struct{}

func (rows) TableHeader() []string { return []string{"SEQ", "KIND"} }
func (rows) TableRows() [][]string {
	return [][]string{{"1", "allocate"}, {"2", "device"}}
}

func TestFormatIsUnknown(t *testing.T) {
	tests := []struct {
		format Format
		want   bool
	}{
		{FormatJSON, false},
		{FormatYAML, false},
		{FormatTable, false},
		{Format("xml"), true},
		{Format(""), true},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.format.IsUnknown())
		})
	}
	assert.Equal(t, []string{"json", "yaml", "table"}, SupportedFormats())
}

func TestWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatJSON, &buf)
	require.NoError(t, w.Serialize(context.Background(), sample{Name: "a", Count: 2}))
	assert.Contains(t, buf.String(), `"name": "a"`)
	assert.Contains(t, buf.String(), `"count": 2`)
}

func TestWriterYAML(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatYAML, &buf)
	require.NoError(t, w.Serialize(context.Background(), sample{Name: "a", Tags: []string{"x"}}))
	assert.Contains(t, buf.String(), "name: a\n")
	assert.Contains(t, buf.String(), "tags:\n  - x\n")
}

func TestWriterUnknownFormatFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(Format("xml"), &buf)
	require.NoError(t, w.Serialize(context.Background(), map[string]int{"a": 1}))
	assert.Contains(t, buf.String(), `"a": 1`)
}

func TestWriterTableFlattened(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatTable, &buf)
	data := &sample{
		Name:  "a",
		Count: 3,
		Tags:  []string{"x", "y"},
		Meta:  map[string]string{"k": "v"},
	}
	require.NoError(t, w.Serialize(context.Background(), data))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.True(t, strings.HasPrefix(lines[0], "FIELD"))
	assert.Contains(t, out, "Count")
	assert.Contains(t, out, "Meta.k")
	assert.Contains(t, out, "Tags.[1]")
}

func TestWriterTableStringerIsLeaf(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatTable, &buf)
	require.NoError(t, w.Serialize(context.Background(), struct{ ID hexID }{ID: 2}))
	assert.Contains(t, buf.String(), "id-xx")
}

func TestWriterTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatTable, &buf)
	require.NoError(t, w.Serialize(context.Background(), struct{}{}))
	assert.Equal(t, "<empty>\n", buf.String())
}

func TestWriterTabular(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatTable, &buf)
	require.NoError(t, w.Serialize(context.Background(), rows{}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"SEQ", "KIND"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"---", "----"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"2", "device"}, strings.Fields(lines[3]))
}

func TestFileWriterOrStdout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	w := NewFileWriterOrStdout(FormatJSON, path)
	require.NoError(t, w.Serialize(context.Background(), map[string]string{"k": "v"}))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "close must be idempotent")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"k": "v"`)
}

func TestFileWriterOrStdoutFallback(t *testing.T) {
	w := NewFileWriterOrStdout(FormatJSON, "  ")
	assert.Equal(t, os.Stdout, w.output)
	assert.NoError(t, w.Close())

	w = NewFileWriterOrStdout(FormatJSON, filepath.Join(t.TempDir(), "missing", "out.json"))
	assert.Equal(t, os.Stdout, w.output)
}
