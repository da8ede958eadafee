/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"
)

func snap(label, blob string, ts time.Time) Snapshot {
	return Snapshot{Label: label, Blob: []byte(blob), TS: ts}
}

func TestUndoRedoSwapsWithCurrent(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxDepth: 10})
	t0 := time.Now()
	m.Push(snap("add", "a", t0))
	m.Push(snap("move", "b", t0.Add(time.Second)))
	// document is now "c"
	s, ok := m.Undo(snap("", "c", t0))
	if !ok || string(s.Blob) != "b" || s.Label != "move" {
		t.Fatalf("undo expected 'b', got ok=%v blob=%q", ok, s.Blob)
	}
	s, ok = m.Undo(s)
	if !ok || string(s.Blob) != "a" {
		t.Fatalf("second undo expected 'a', got %q", s.Blob)
	}
	if _, ok := m.Undo(s); ok {
		t.Fatalf("undo past the start")
	}
	s, ok = m.Redo(s)
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("redo expected 'b', got %q", s.Blob)
	}
	s, ok = m.Redo(s)
	if !ok || string(s.Blob) != "c" {
		t.Fatalf("redo expected 'c', got %q", s.Blob)
	}
	if m.CanRedo() {
		t.Fatalf("redo stack should be empty")
	}
}

func TestPushClearsRedo(t *testing.T) {
	m := NewManager(Config{})
	t0 := time.Now()
	m.Push(snap("", "a", t0))
	m.Undo(snap("", "b", t0))
	if !m.CanRedo() {
		t.Fatalf("expected a redo step")
	}
	m.Push(snap("", "a", t0.Add(time.Second)))
	if m.CanRedo() {
		t.Fatalf("push kept the redo stack")
	}
	if total, undo, redo := m.Stats(); total != 1 || undo != 1 || redo != 0 {
		t.Fatalf("stats = %d %d %d", total, undo, redo)
	}
}

func TestCoalesceKeepsEarliest(t *testing.T) {
	m := NewManager(Config{MinInterval: 50 * time.Millisecond})
	t0 := time.Now()
	m.Push(snap("", "1", t0))
	m.Push(snap("", "2", t0.Add(10*time.Millisecond)))
	m.Push(snap("", "3", t0.Add(40*time.Millisecond)))
	if _, depth, _ := m.Stats(); depth != 1 {
		t.Fatalf("expected coalesced to 1 snapshot, got %d", depth)
	}
	s, ok := m.Undo(snap("", "4", t0))
	if !ok || string(s.Blob) != "1" {
		t.Fatalf("expected the pre-burst snapshot '1', got %q", s.Blob)
	}
}

func TestCaps(t *testing.T) {
	m := NewManager(Config{MaxBytes: 20, MaxDepth: 2})
	for i := 0; i < 10; i++ {
		m.Push(snap("", "xxxxx", time.Now().Add(time.Duration(i)*time.Second)))
	}
	if _, depth, _ := m.Stats(); depth > 2 {
		t.Fatalf("expected MaxDepth cap to limit to 2, got %d", depth)
	}
	m = NewManager(Config{MaxBytes: 12})
	for i := 0; i < 10; i++ {
		m.Push(snap("", "xxxxx", time.Now().Add(time.Duration(i)*time.Second)))
	}
	if total, depth, _ := m.Stats(); total > 12 || depth != 2 {
		t.Fatalf("memory cap: total=%d depth=%d", total, depth)
	}
}

func TestClear(t *testing.T) {
	m := NewManager(Config{})
	m.Push(snap("", "a", time.Now()))
	m.Clear()
	if m.CanUndo() || m.CanRedo() {
		t.Fatalf("history survived clear")
	}
}
