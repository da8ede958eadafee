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
	"slices"

	"vecdraw/internal/geom"
	"vecdraw/internal/shape"
)

// Editable reports whether s exposes per-vertex handles.
func Editable(s shape.Shape) bool {
	lo, _ := shape.VertexLimits(s.Type)
	return lo > 0 && s.VertexCount() >= lo
}

// Handles returns the world positions of every vertex handle of s.
func Handles(s shape.Shape) []geom.Pt {
	if !Editable(s) {
		return nil
	}
	return shape.Pairs(s.AbsPoints())
}

// Midpoint is a virtual insertion handle between two consecutive vertices.
// Index is the array position the new vertex takes when inserted.
type Midpoint struct {
	Index int
	Pos   geom.Pt
}

// insertable reports whether the vertex count of s may grow.
func insertable(s shape.Shape) bool {
	if !Editable(s) {
		return false
	}
	_, hi := shape.VertexLimits(s.Type)
	return hi == 0
}

// Midpoints returns the insertion handles of s. Closed outlines get one more
// handle between the last vertex and the first; open ones do not.
func Midpoints(s shape.Shape) []Midpoint {
	if !insertable(s) {
		return nil
	}
	pts := Handles(s)
	n := len(pts)
	edges := n - 1
	if shape.IsClosed(s) && n > 2 {
		edges = n
	}
	out := make([]Midpoint, 0, edges)
	for i := 0; i < edges; i++ {
		a, b := pts[i], pts[(i+1)%n]
		out = append(out, Midpoint{Index: i + 1, Pos: a.Lerp(b, 0.5)})
	}
	return out
}

// SnapReference returns the vertex the 45° snap of vertex i is measured from:
// the nearest endpoint for curve control points, the opposite endpoint for
// curve and thick-arrow endpoints, otherwise the previous vertex (the next one
// for the first vertex of an open path).
func SnapReference(s shape.Shape, i int) int {
	n := s.VertexCount()
	switch s.Type {
	case shape.KindQCurve:
		switch i {
		case 0:
			return 2
		case 2:
			return 0
		}
		if s.Vertex(1).Dist(s.Vertex(0)) <= s.Vertex(1).Dist(s.Vertex(2)) {
			return 0
		}
		return 2
	case shape.KindCCurve:
		switch i {
		case 0, 2:
			return 3
		default:
			return 0
		}
	case shape.KindThickArrow:
		return 1 - i
	}
	if i > 0 {
		return i - 1
	}
	if shape.IsClosed(s) {
		return n - 1
	}
	return 1
}

// MoveVertex moves vertex i of s to the world position p. With snap set,
// the offset from the snap reference vertex is rounded to a 45° multiple,
// keeping its length. Out of range indices and non-finite targets return s
// unchanged.
func MoveVertex(s shape.Shape, i int, p geom.Pt, snap bool) shape.Shape {
	s = s.Clone()
	if !Editable(s) || i < 0 || i >= s.VertexCount() || !p.Finite() {
		return s
	}
	if snap {
		ref := s.Vertex(SnapReference(s, i))
		dx, dy := geom.SnapVector45(p.X-ref.X, p.Y-ref.Y)
		p = geom.Pt{X: ref.X + dx, Y: ref.Y + dy}
	}
	l := s.ToLocal(p)
	s.Points[2*i], s.Points[2*i+1] = l.X, l.Y
	return s
}

// InsertVertex splices the world point p into s at vertex position at.
// Kinds with a fixed vertex count refuse.
func InsertVertex(s shape.Shape, at int, p geom.Pt) (shape.Shape, bool) {
	if !insertable(s) || at < 0 || at > s.VertexCount() || !p.Finite() {
		return s.Clone(), false
	}
	s = s.Clone()
	l := s.ToLocal(p)
	s.Points = slices.Insert(s.Points, 2*at, l.X, l.Y)
	return s, true
}

// InsertNearest inserts a vertex on the segment of s closest to p, at the
// projected point, when that segment lies within maxDist. It returns the new
// vertex index.
func InsertNearest(s shape.Shape, p geom.Pt, maxDist float64) (shape.Shape, int, bool) {
	if !insertable(s) {
		return s.Clone(), -1, false
	}
	hit, ok := geom.ClosestSegment(s.AbsPoints(), p, maxDist, shape.IsClosed(s))
	if !ok {
		return s.Clone(), -1, false
	}
	out, ok := InsertVertex(s, hit.Index+1, hit.Point)
	if !ok {
		return out, -1, false
	}
	return out, hit.Index + 1, true
}

// DeleteVertex removes vertex i unless that would leave fewer vertices than
// the kind allows.
func DeleteVertex(s shape.Shape, i int) (shape.Shape, bool) {
	lo, _ := shape.VertexLimits(s.Type)
	if !Editable(s) || i < 0 || i >= s.VertexCount() || s.VertexCount() <= lo {
		return s.Clone(), false
	}
	s = s.Clone()
	s.Points = slices.Delete(s.Points, 2*i, 2*i+2)
	return s, true
}

// NearestVertex returns the index of the vertex of s closest to p within maxDist.
func NearestVertex(s shape.Shape, p geom.Pt, maxDist float64) (int, bool) {
	best, bestD := -1, math.Inf(1)
	for i, v := range Handles(s) {
		if d := v.Dist(p); d < bestD {
			best, bestD = i, d
		}
	}
	if best < 0 || bestD > maxDist {
		return -1, false
	}
	return best, true
}

// ThickArrowParams are the three scalar sizes of a thick arrow.
type ThickArrowParams struct {
	ShaftWidth float64
	HeadLength float64
	HeadWidth  float64
}

// SetThickArrowParams replaces the size parameters of a thick arrow. Non
// finite values keep the old setting; the rest are clamped to MinSize and the
// head is kept at least as wide as the shaft.
func SetThickArrowParams(s shape.Shape, p ThickArrowParams) shape.Shape {
	s = s.Clone()
	if s.Type != shape.KindThickArrow {
		return s
	}
	pick := func(v, old float64) float64 {
		if !geom.Finite(v) {
			return old
		}
		return math.Max(MinSize, v)
	}
	s.ShaftWidth = pick(p.ShaftWidth, s.ShaftWidth)
	s.HeadLength = pick(p.HeadLength, s.HeadLength)
	s.HeadWidth = math.Max(s.ShaftWidth, pick(p.HeadWidth, s.HeadWidth))
	return s
}
