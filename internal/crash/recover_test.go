/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vecdraw/internal/drawing"
	"vecdraw/internal/shape"
	"vecdraw/internal/storage"
)

func quietStderr(t *testing.T) {
	t.Helper()
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	t.Cleanup(func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	})
}

// TestRecover_WritesReportAndAutosave ensures Recover handles a panic, writes a report,
// autosaves the drawing and does not terminate the test process due to injected exitFn.
func TestRecover_WritesReportAndAutosave(t *testing.T) {
	quietStderr(t)
	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	root := t.TempDir()
	path := filepath.Join(root, "a"+storage.FileExt)
	d := drawing.New("Rescued")
	if err := d.Add(shape.Shape{ID: "r1", Type: shape.KindRect, Width: 10, Height: 10}); err != nil {
		t.Fatal(err)
	}

	func() {
		defer Recover(&Target{Path: path, Drawing: func() *drawing.Drawing { return d }})
		panic("boom")
	}()

	bdir := filepath.Join(root, storage.BackupsDirName)
	files, _ := os.ReadDir(bdir)
	var report string
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "crash-") && strings.HasSuffix(f.Name(), ".log") {
			report = filepath.Join(bdir, f.Name())
		}
	}
	if report == "" {
		t.Fatalf("expected crash report file under backups dir")
	}
	b, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Contains(b, []byte("Panic: boom")) {
		t.Fatalf("report does not contain panic: %s", string(b))
	}
	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}

	// the drawing was never saved; Open recovers the crash snapshot
	got, err := storage.Open(path)
	if err != nil {
		t.Fatalf("open after crash: %v", err)
	}
	if got.Name != "Rescued" || len(got.Shapes) != 1 {
		t.Fatalf("recovered drawing = %+v", got)
	}
}

func TestRecoverFuncKeepsRunning(t *testing.T) {
	quietStderr(t)
	oldExit := exitFn
	exitFn = func(int) { t.Fatalf("RecoverFunc must not exit") }
	defer func() { exitFn = oldExit }()

	var got any
	func() {
		defer RecoverFunc(&Target{Path: filepath.Join(t.TempDir(), "x.vdr.json"), Drawing: func() *drawing.Drawing { panic("again") }}, func(r any) { got = r })
		panic("session")
	}()
	if got != "session" {
		t.Fatalf("onPanic got %v", got)
	}
}
