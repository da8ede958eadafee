/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBatchExportWebPreset(t *testing.T) {
	root := t.TempDir()
	paths, err := BatchExport(sampleDrawing(t), BatchOptions{Preset: PresetWeb, Name: "sample", OutDir: root})
	if err != nil {
		t.Fatalf("batch export web: %v", err)
	}
	checks := []string{
		filepath.Join(root, "svg", "sample.svg"),
		filepath.Join(root, "png", "sample.png"),
		filepath.Join(root, "json", "sample.json"),
	}
	if len(paths) != len(checks) {
		t.Fatalf("paths = %v", paths)
	}
	for _, p := range checks {
		st, err := os.Stat(p)
		if err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
		if st.Size() <= 0 {
			t.Fatalf("empty file: %s", p)
		}
	}
}

func TestBatchExportPrintPreset(t *testing.T) {
	root := t.TempDir()
	if _, err := BatchExport(sampleDrawing(t), BatchOptions{Preset: PresetPrint, Name: "sample", OutDir: root}); err != nil {
		t.Fatalf("batch export print: %v", err)
	}
	for _, p := range []string{
		filepath.Join(root, "pdf", "sample.pdf"),
		filepath.Join(root, "png", "sample.png"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
	}
}

func TestBatchExportRejectsUnknownFormat(t *testing.T) {
	if _, err := BatchExport(sampleDrawing(t), BatchOptions{Formats: []string{"cbz"}, OutDir: t.TempDir()}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
