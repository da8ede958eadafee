/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log provides the slog-based logging used throughout vecdraw.
// A console handler (pretty text or JSON) is always installed; a rotating JSON
// file handler is added when a log file is configured. Records are enriched
// with the drawing id carried in the context, if any.
package log

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	"vecdraw/internal/version"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger initialization.
// Environment equivalents:
//   - VDR_LOG_LEVEL=debug|info|warn|error
//   - VDR_LOG_FORMAT=console|json
//   - VDR_LOG_FILE=<path> (rotated JSON file)
//   - VDR_LOG_SOURCE=true|false
type Options struct {
	Level     string
	Format    string // "console" or "json"
	AddSource bool
	File      string
}

var (
	mu      sync.RWMutex
	current *slog.Logger
	closer  *lj.Logger
)

// L returns the process logger, initializing it from the environment on first use.
func L() *slog.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Init replaces the process logger and slog.Default.
func Init(opts Options) {
	lvl := ParseLevel(opts.Level)

	var console slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		console = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource})
	} else {
		console = newPrettyHandler(os.Stderr, lvl, opts.AddSource)
	}
	handlers := []slog.Handler{console}

	var rot *lj.Logger
	if f := strings.TrimSpace(opts.File); f != "" {
		rot = &lj.Logger{Filename: f, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		handlers = append(handlers, slog.NewJSONHandler(rot, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	}

	var h slog.Handler = handlers[0]
	if len(handlers) > 1 {
		h = fanout(handlers)
	}
	logger := slog.New(drawingScoped{next: h}).With(
		slog.String("app", "vecdraw"),
		slog.String("ver", version.String()),
	)

	mu.Lock()
	if closer != nil {
		_ = closer.Close()
	}
	current, closer = logger, rot
	mu.Unlock()
	slog.SetDefault(logger)
}

// Close flushes and closes the rotating file writer, if one is open.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}

// FromEnv builds Options from VDR_LOG_* variables.
func FromEnv() Options {
	return Options{
		Level:     getenv("VDR_LOG_LEVEL", "info"),
		Format:    getenv("VDR_LOG_FORMAT", "console"),
		AddSource: strings.EqualFold(getenv("VDR_LOG_SOURCE", "false"), "true"),
		File:      os.Getenv("VDR_LOG_FILE"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// WithComponent returns a logger with the component attribute pre-set.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

type drawingKey struct{}

// ContextWithDrawing tags ctx so that records logged with it carry a drawing attribute.
func ContextWithDrawing(ctx context.Context, drawingID string) context.Context {
	return context.WithValue(ctx, drawingKey{}, drawingID)
}

// DrawingFrom returns the drawing id stored by ContextWithDrawing.
func DrawingFrom(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(drawingKey{}).(string)
	return id, ok && id != ""
}

// ParseLevel maps a level name to a slog level; unknown names yield info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// drawingScoped copies the context drawing id onto each record.
type drawingScoped struct{ next slog.Handler }

func (d drawingScoped) Enabled(ctx context.Context, l slog.Level) bool {
	return d.next.Enabled(ctx, l)
}

func (d drawingScoped) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := DrawingFrom(ctx); ok {
		r = r.Clone()
		r.AddAttrs(slog.String("drawing", id))
	}
	return d.next.Handle(ctx, r)
}

func (d drawingScoped) WithAttrs(as []slog.Attr) slog.Handler {
	return drawingScoped{next: d.next.WithAttrs(as)}
}

func (d drawingScoped) WithGroup(name string) slog.Handler {
	return drawingScoped{next: d.next.WithGroup(name)}
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(as []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(as)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
