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

// Handle names one of the eight resize grips on a bounding box.
type Handle int

const (
	TopLeft Handle = iota
	Top
	TopRight
	Right
	BottomRight
	Bottom
	BottomLeft
	Left
)

var handleNames = [...]string{"top-left", "top", "top-right", "right", "bottom-right", "bottom", "bottom-left", "left"}

func (h Handle) String() string {
	if h < 0 || int(h) >= len(handleNames) {
		return "unknown"
	}
	return handleNames[h]
}

// ParseHandle maps a grip name back to its Handle.
func ParseHandle(s string) (Handle, bool) {
	for i, n := range handleNames {
		if n == s {
			return Handle(i), true
		}
	}
	return 0, false
}

func (h Handle) movesLeft() bool   { return h == TopLeft || h == Left || h == BottomLeft }
func (h Handle) movesRight() bool  { return h == TopRight || h == Right || h == BottomRight }
func (h Handle) movesTop() bool    { return h == TopLeft || h == Top || h == TopRight }
func (h Handle) movesBottom() bool { return h == BottomLeft || h == Bottom || h == BottomRight }

// HandlePositions returns the grip locations of box in Handle order.
func HandlePositions(box geom.Rect) [8]geom.Pt {
	x0, y0, x1, y1 := box.X, box.Y, box.X+box.W, box.Y+box.H
	cx, cy := box.X+box.W/2, box.Y+box.H/2
	return [8]geom.Pt{{x0, y0}, {cx, y0}, {x1, y0}, {x1, cy}, {x1, y1}, {cx, y1}, {x0, y1}, {x0, cy}}
}

// RotateGripOffset is how far above the bounds the rotation grip sits.
const RotateGripOffset = 20.0

// RotateGrip returns the rotation grip of a shape with bounds box: centered
// horizontally, RotateGripOffset above the top edge.
func RotateGrip(box geom.Rect) geom.Pt {
	return geom.Pt{X: box.X + box.W/2, Y: box.Y - RotateGripOffset}
}

// ResizeBox moves the edges grabbed by h to p, keeping the opposite edges
// fixed. Edges cannot cross: each extent stays at least MinSize.
func ResizeBox(box geom.Rect, h Handle, p geom.Pt) geom.Rect {
	x0, y0, x1, y1 := box.X, box.Y, box.X+box.W, box.Y+box.H
	if h.movesLeft() {
		x0 = math.Min(p.X, x1-MinSize)
	}
	if h.movesRight() {
		x1 = math.Max(p.X, x0+MinSize)
	}
	if h.movesTop() {
		y0 = math.Min(p.Y, y1-MinSize)
	}
	if h.movesBottom() {
		y1 = math.Max(p.Y, y0+MinSize)
	}
	return geom.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// BoxTransform returns the Transform that maps s from box to next: per-axis
// scale factors and the anchor carried along proportionally.
func BoxTransform(s shape.Shape, box, next geom.Rect) Transform {
	sx, sy := 1.0, 1.0
	if box.W > 0 {
		sx = next.W / box.W
	}
	if box.H > 0 {
		sy = next.H / box.H
	}
	a := s.Anchor()
	return Transform{
		X:        next.X + (a.X-box.X)*sx,
		Y:        next.Y + (a.Y-box.Y)*sy,
		Rotation: s.Rotation,
		ScaleX:   sx,
		ScaleY:   sy,
	}
}

// ResizeByHandle drags grip h of the shape's bounding box to p and bakes the
// result. Only the grabbed edges move.
func ResizeByHandle(s shape.Shape, h Handle, p geom.Pt) shape.Shape {
	box, ok := shape.Bounds(s)
	if !ok || !p.Finite() {
		return s.Clone()
	}
	return TransformEnd(s, BoxTransform(s, box, ResizeBox(box, h, p)))
}
