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

// Package version models the version stamped on a runtime dispatch table.
//
// A runtime publishes its API table with a major version (incompatible layout
// changes), a minor version (entries appended) and a step (bug-fix revisions).
// The interceptor only patches tables at or above a known minimum.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error types for version parsing failures
var (
	ErrEmptyVersion      = errors.New("version string is empty")
	ErrTooManyComponents = errors.New("version has more than 3 components")
	ErrNonNumeric        = errors.New("version component is not numeric")
)

// Version is a dispatch table version. Precision records how many components
// were given (1, 2, or 3); missing components never make a table look older.
type Version struct {
	Major     int `json:"major" yaml:"major"`
	Minor     int `json:"minor,omitempty" yaml:"minor,omitempty"`
	Step      int `json:"step,omitempty" yaml:"step,omitempty"`
	Precision int `json:"precision,omitempty" yaml:"precision,omitempty"`
}

// NewVersion creates a fully specified Version.
func NewVersion(major, minor, step int) Version {
	return Version{
		Major:     major,
		Minor:     minor,
		Step:      step,
		Precision: 3,
	}
}

// String returns "Major", "Major.Minor" or "Major.Minor.Step" per precision.
func (v Version) String() string {
	switch v.Precision {
	case 1:
		return strconv.Itoa(v.Major)
	case 2:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Step)
	}
}

// ParseVersion parses "1", "1.2", "1.2.3" with an optional "v" prefix.
func ParseVersion(s string) (Version, error) {
	if s == "" {
		return Version{}, ErrEmptyVersion
	}
	s = strings.TrimPrefix(s, "v")

	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return Version{}, ErrTooManyComponents
	}

	var comps [3]int
	for i, part := range parts {
		if part == "" {
			return Version{}, fmt.Errorf("%w: empty component", ErrNonNumeric)
		}
		for _, ch := range part {
			if ch < '0' || ch > '9' {
				return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
			}
		}
		num, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		comps[i] = num
	}

	return Version{
		Major:     comps[0],
		Minor:     comps[1],
		Step:      comps[2],
		Precision: len(parts),
	}, nil
}

// MustParseVersion parses a version string and panics if parsing fails.
// Only use this for hardcoded strings or in tests.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(fmt.Sprintf("MustParseVersion: %v", err))
	}
	return v
}

// Compare returns -1, 0 or 1 comparing v to other, using the lower of the two
// precisions.
func (v Version) Compare(other Version) int {
	precision := v.Precision
	if other.Precision < precision {
		precision = other.Precision
	}

	pairs := [3][2]int{
		{v.Major, other.Major},
		{v.Minor, other.Minor},
		{v.Step, other.Step},
	}
	for i := 0; i < precision && i < len(pairs); i++ {
		switch {
		case pairs[i][0] < pairs[i][1]:
			return -1
		case pairs[i][0] > pairs[i][1]:
			return 1
		}
	}
	return 0
}

// EqualsOrNewer reports whether v is at least other.
func (v Version) EqualsOrNewer(other Version) bool {
	return v.Compare(other) >= 0
}

// Compatible reports whether a table stamped v can be patched by code built
// against minimum: same major layout, and no older than minimum.
func (v Version) Compatible(minimum Version) bool {
	return v.Major == minimum.Major && v.EqualsOrNewer(minimum)
}

// IsValid returns true if all components are non-negative and precision is 1, 2, or 3.
func (v Version) IsValid() bool {
	if v.Major < 0 || v.Minor < 0 || v.Step < 0 {
		return false
	}
	return v.Precision >= 1 && v.Precision <= 3
}
