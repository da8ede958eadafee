/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"vecdraw/internal/drawing"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// printScale renders PNGs at 300 dpi when one drawing unit is one point.
const printScale = 300.0 / 72.0

// BatchOptions controls exporting one drawing to several formats at once.
//
// Files are written as <OutDir>/<format>/<Name>.<format>. An empty OutDir
// becomes the preset name, relative to the working directory.
//
//nolint:revive // keep fields explicit for clarity
type BatchOptions struct {
	Preset  PresetName
	Formats []string // empty means preset defaults
	Name    string   // base file name; defaults to the drawing id
	OutDir  string
	Render  Options
}

// BatchExport writes d in every requested format and returns the paths.
func BatchExport(d *drawing.Drawing, opt BatchOptions) ([]string, error) {
	if d == nil {
		return nil, fmt.Errorf("drawing is nil")
	}
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = string(opt.Preset)
	}
	name := strings.TrimSpace(opt.Name)
	if name == "" {
		name = d.ID
	}
	render := opt.Render
	if opt.Preset == PresetPrint && render.Scale == 0 {
		render.Scale = printScale
	}

	var out []string
	for _, raw := range formats {
		f, err := ParseFormat(raw)
		if err != nil {
			return out, err
		}
		path := filepath.Join(baseOut, string(f), name+"."+string(f))
		if err := WriteFile(path, d, render); err != nil {
			return out, fmt.Errorf("%s: %w", f, err)
		}
		out = append(out, path)
	}
	return out, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"svg", "png", "json"}
	case PresetPrint:
		return []string{"pdf", "png"}
	default:
		return []string{"svg"}
	}
}
