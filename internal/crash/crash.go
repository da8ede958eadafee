/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report and an autosave of the
// drawing being edited.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"vecdraw/internal/drawing"
	applog "vecdraw/internal/log"
	"vecdraw/internal/storage"
	"vecdraw/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Target names the drawing to rescue. Path is where the drawing lives (or
// would be saved); Drawing returns its current state and may be nil.
type Target struct {
	Path    string
	Drawing func() *drawing.Drawing
}

// Recover captures a panic, logs an error with stacktrace, writes an error
// report file and attempts a crash-safe autosave of the drawing.
//
// Usage: defer crash.Recover(&crash.Target{...})
func Recover(t *Target) {
	if r := recover(); r != nil {
		handle(t, r, debug.Stack())
		exitFn(2)
	}
}

// RecoverFunc is Recover for goroutines that must not take the process down,
// such as one websocket session. onPanic runs after the report is written.
func RecoverFunc(t *Target, onPanic func(any)) {
	if r := recover(); r != nil {
		handle(t, r, debug.Stack())
		if onPanic != nil {
			onPanic(r)
		}
	}
}

func handle(t *Target, r any, stack []byte) {
	l := applog.WithComponent("crash")
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(t, r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if t != nil && t.Drawing != nil && t.Path != "" {
		if d := safeDrawing(t.Drawing); d != nil {
			if path, err := storage.AutosaveCrashSnapshot(t.Path, d); err != nil {
				l.Error("autosave crash snapshot failed", slog.Any("err", err))
			} else {
				l.Info("autosave crash snapshot written", slog.String("path", path))
			}
		}
	}

	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
		l.Error("failed to write version info to stderr", slog.Any("err", err))
	}
}

// safeDrawing calls get, treating a second panic as no drawing.
func safeDrawing(get func() *drawing.Drawing) (d *drawing.Drawing) {
	defer func() {
		if recover() != nil {
			d = nil
		}
	}()
	return get()
}

func writeReport(t *Target, panicVal any, stack []byte) (string, error) {
	dir := os.TempDir()
	if t != nil && t.Path != "" {
		dir = filepath.Join(filepath.Dir(t.Path), storage.BackupsDirName)
		_ = os.MkdirAll(dir, 0o755)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", stamp))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "vecdraw Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if t != nil && t.Path != "" {
		_, _ = fmt.Fprintf(&buf, "Drawing: %s\n", t.Path)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()
	return path, nil
}
