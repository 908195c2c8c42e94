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

// Package serializer provides encoding and decoding of trace output and
// configuration in multiple formats.
//
// # Supported Formats
//
// JSON:
//   - Machine-parseable representation
//   - Used for HTTP responses and scripted consumption of traces
//
// YAML:
//   - Human-readable with preserved structure
//   - Used for configuration files and topology descriptions
//
// Table:
//   - Column-aligned text for terminals
//   - Values implementing Tabular render as columns; everything else is
//     flattened into a FIELD/VALUE listing
//   - Write-only
//
// # Usage - Encoding
//
//	w := serializer.NewFileWriterOrStdout(serializer.FormatYAML, outPath)
//	defer w.Close()
//	if err := w.Serialize(ctx, records); err != nil {
//	    return err
//	}
//
// # Usage - Decoding
//
//	cfg, err := serializer.FromFile[config.Config]("gpu-intercept.yaml", serializer.WithStrict())
//
// HTTP handlers use RespondJSON, which encodes fully before writing headers
// so a failed encoding never produces a partial response.
package serializer
