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

package version

import (
	"errors"
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr error
	}{
		{in: "1", want: Version{Major: 1, Precision: 1}},
		{in: "v1.2", want: Version{Major: 1, Minor: 2, Precision: 2}},
		{in: "1.2.3", want: Version{Major: 1, Minor: 2, Step: 3, Precision: 3}},
		{in: "", wantErr: ErrEmptyVersion},
		{in: "1.2.3.4", wantErr: ErrTooManyComponents},
		{in: "1..2", wantErr: ErrNonNumeric},
		{in: "1.-2", wantErr: ErrNonNumeric},
		{in: "1.2-rc1", wantErr: ErrNonNumeric},
		{in: "a.b", wantErr: ErrNonNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVersion(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseVersion(%q) error = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVersion(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseVersion(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.2.3", "1.2.3", 0},
		{"1.2.3", "1.2.4", -1},
		{"1.3", "1.2.9", 1},
		{"1.2", "1.2.9", 0},
		{"2", "1.9.9", 1},
		{"0.9", "1", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			got := MustParseVersion(tt.a).Compare(MustParseVersion(tt.b))
			if got != tt.want {
				t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCompatible(t *testing.T) {
	minimum := MustParseVersion("1.1")

	tests := []struct {
		table string
		want  bool
	}{
		{"1.1", true},
		{"1.1.4", true},
		{"1.4", true},
		{"1.0", false},
		{"2.0", false},
		{"0.9", false},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			if got := MustParseVersion(tt.table).Compatible(minimum); got != tt.want {
				t.Errorf("Compatible(%s, min %s) = %v, want %v", tt.table, minimum, got, tt.want)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"1", "1.2", "1.2.3", "0.0.0"} {
		if got := MustParseVersion(s).String(); got != s {
			t.Errorf("String() = %q, want %q", got, s)
		}
	}
}

func TestMustParseVersionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid version")
		}
	}()
	MustParseVersion("not-a-version")
}
