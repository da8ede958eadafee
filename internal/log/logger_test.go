/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func lastJSONLine(t *testing.T, path string) map[string]any {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var last string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines in %s", path)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	return m
}

func TestInitWritesStructuredFile(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "vdr.log")
	Init(Options{Level: "debug", Format: "json", File: fpath})
	t.Cleanup(func() { _ = Close() })

	l := WithOperation(WithComponent("edit"), "translate")
	l.Info("moved", slog.String("shape", "shape_1"))

	m := lastJSONLine(t, fpath)
	if m["app"] != "vecdraw" {
		t.Fatalf("app attr = %v", m["app"])
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr")
	}
	if m["component"] != "edit" || m["op"] != "translate" || m["msg"] != "moved" {
		t.Fatalf("unexpected record %v", m)
	}
}

func TestDrawingFromContextIsAttached(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "vdr.log")
	Init(Options{Level: "info", Format: "json", File: fpath})
	t.Cleanup(func() { _ = Close() })

	ctx := ContextWithDrawing(context.Background(), "drw-42")
	L().InfoContext(ctx, "saved")

	m := lastJSONLine(t, fpath)
	if m["drawing"] != "drw-42" {
		t.Fatalf("drawing attr = %v", m["drawing"])
	}
	if _, ok := DrawingFrom(context.Background()); ok {
		t.Fatalf("empty context should carry no drawing")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("VDR_LOG_LEVEL", "warn")
	t.Setenv("VDR_LOG_FORMAT", "json")
	t.Setenv("VDR_LOG_SOURCE", "true")
	t.Setenv("VDR_LOG_FILE", "")

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}
	if v := getenv("VDR_SURELY_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback = %q", v)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug, " WARN ": slog.LevelWarn, "warning": slog.LevelWarn,
		"error": slog.LevelError, "": slog.LevelInfo, "bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPrettyHandler(t *testing.T) {
	var buf bytes.Buffer
	h := newPrettyHandler(&buf, slog.LevelWarn, false)
	ctx := context.Background()
	if h.Enabled(ctx, slog.LevelInfo) {
		t.Fatalf("info should be filtered at warn level")
	}
	if !h.Enabled(ctx, slog.LevelError) {
		t.Fatalf("error should pass at warn level")
	}

	h2 := h.WithAttrs([]slog.Attr{slog.String("k", "v")}).WithGroup("grp")
	r := slog.NewRecord(time.Now(), slog.LevelError, "boom", 0)
	r.AddAttrs(slog.Int("n", 42), slog.Float64("pi", 3.14), slog.String("msg2", "two words"))
	if err := h2.Handle(ctx, r); err != nil {
		t.Fatalf("handle: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"ERR", "boom", " k=v", "grp.n=42", "grp.pi=3.14", `grp.msg2="two words"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
}
