/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package edit

import (
	"math"

	"vecdraw/internal/geom"
	"vecdraw/internal/shape"
)

// Mode is the kind of gesture an edit session tracks.
type Mode int

const (
	ModeDrag Mode = iota
	ModeVertex
	ModeMidpoint
	ModeResize
	ModeRotate
)

func (m Mode) String() string {
	switch m {
	case ModeDrag:
		return "drag"
	case ModeVertex:
		return "vertex"
	case ModeMidpoint:
		return "midpoint"
	case ModeResize:
		return "resize"
	case ModeRotate:
		return "rotate"
	}
	return "unknown"
}

// rotateStep is the angle increment used when a rotation is snapped.
const rotateStep = 15.0

// Session is the transient state of one pointer gesture on one shape. The
// committed shape is never touched while a session runs: Preview derives the
// in-progress geometry from the original plus the latest pointer position,
// and Commit or Cancel ends the session.
type Session struct {
	mode   Mode
	orig   shape.Shape
	start  geom.Pt
	last   geom.Pt
	index  int
	handle Handle
	snap   bool
	moved  bool
	done   bool
}

func begin(m Mode, s shape.Shape, at geom.Pt) *Session {
	return &Session{mode: m, orig: s.Clone(), start: at, last: at, index: -1}
}

// BeginDrag starts moving the whole shape.
func BeginDrag(s shape.Shape, at geom.Pt) *Session { return begin(ModeDrag, s, at) }

// BeginVertex starts dragging vertex i.
func BeginVertex(s shape.Shape, i int, at geom.Pt) *Session {
	se := begin(ModeVertex, s, at)
	se.index = i
	return se
}

// BeginMidpoint starts a drag on an insertion handle. The vertex only becomes
// part of the shape on Commit.
func BeginMidpoint(s shape.Shape, m Midpoint) *Session {
	se := begin(ModeMidpoint, s, m.Pos)
	se.index = m.Index
	return se
}

// BeginResize starts dragging resize grip h.
func BeginResize(s shape.Shape, h Handle, at geom.Pt) *Session {
	se := begin(ModeResize, s, at)
	se.handle = h
	return se
}

// BeginRotate starts rotating the shape about the center of its bounds.
func BeginRotate(s shape.Shape, at geom.Pt) *Session { return begin(ModeRotate, s, at) }

func (se *Session) Mode() Mode               { return se.mode }
func (se *Session) Active() bool             { return se != nil && !se.done }
func (se *Session) Original() shape.Shape    { return se.orig.Clone() }
func (se *Session) ShapeID() string          { return se.orig.ID }
func (se *Session) Index() int               { return se.index }
func (se *Session) Start() geom.Pt           { return se.start }
func (se *Session) Offset() (dx, dy float64) { return se.last.X - se.start.X, se.last.Y - se.start.Y }

// Move records the latest pointer position. snap holds the modifier state.
func (se *Session) Move(p geom.Pt, snap bool) {
	if !se.Active() || !p.Finite() {
		return
	}
	if p != se.last {
		se.moved = true
	}
	se.last, se.snap = p, snap
}

// Preview returns the shape as it would be committed right now.
func (se *Session) Preview() shape.Shape {
	s := se.orig
	switch se.mode {
	case ModeDrag:
		dx, dy := se.Offset()
		return Translate(s, dx, dy)
	case ModeVertex:
		return MoveVertex(s, se.index, se.last, se.snap)
	case ModeMidpoint:
		out, ok := InsertVertex(s, se.index, se.last)
		if !ok {
			return s.Clone()
		}
		return MoveVertex(out, se.index, se.last, se.snap)
	case ModeResize:
		return ResizeByHandle(s, se.handle, se.last)
	case ModeRotate:
		return se.rotated()
	}
	return s.Clone()
}

func (se *Session) rotated() shape.Shape {
	s := se.orig
	box, ok := shape.Bounds(s)
	if !ok || s.Type == shape.KindCircle {
		return s.Clone()
	}
	c := box.Center()
	a0 := math.Atan2(se.start.Y-c.Y, se.start.X-c.X)
	a1 := math.Atan2(se.last.Y-c.Y, se.last.X-c.X)
	target := s.Rotation + geom.Rad2Deg(a1-a0)
	if se.snap {
		target = math.Round(target/rotateStep) * rotateStep
	}
	delta := target - s.Rotation
	// rotate the anchor about c so the frame turns around the box center
	a := geom.Translate(c.X, c.Y).Mul(geom.Rotate(geom.Deg2Rad(delta))).Mul(geom.Translate(-c.X, -c.Y)).Apply(s.Anchor())
	out := Rotate(s, target)
	out.X, out.Y = a.X, a.Y
	return out
}

// Commit ends the session and returns the edited shape. ok is false when the
// gesture changed nothing; a midpoint handle that was clicked without moving
// still inserts its vertex.
func (se *Session) Commit() (shape.Shape, bool) {
	if !se.Active() {
		return se.orig.Clone(), false
	}
	out := se.Preview()
	se.done = true
	if !se.moved && se.mode != ModeMidpoint {
		return se.orig.Clone(), false
	}
	if se.mode == ModeMidpoint && out.VertexCount() == se.orig.VertexCount() {
		return se.orig.Clone(), false
	}
	return out, true
}

// Cancel ends the session and returns the untouched original.
func (se *Session) Cancel() shape.Shape {
	se.done = true
	return se.orig.Clone()
}
