/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package shape holds the drawing's shape model: one flat Shape record tagged
// by Kind, a registry of per-kind behavior (create, draw, validate, normalize)
// and explicit field descriptors for generic property editing.
package shape

import (
	"math"
	"slices"

	"vecdraw/internal/geom"
)

// Kind discriminates the Shape union.
type Kind string

const (
	KindRect       Kind = "rect"
	KindCircle     Kind = "circle"
	KindEllipse    Kind = "ellipse"
	KindLine       Kind = "line"
	KindFreehand   Kind = "freehand"
	KindQCurve     Kind = "qcurve"
	KindCCurve     Kind = "ccurve"
	KindPolygon    Kind = "polygon"
	KindArrow      Kind = "arrow"
	KindThickArrow Kind = "thick-arrow"
	KindDiamond    Kind = "diamond"
	KindText       Kind = "text"
	KindPath       Kind = "path"
	KindSVG        Kind = "svg"
)

// Kinds lists every known kind in a stable order.
var Kinds = []Kind{
	KindRect, KindCircle, KindEllipse, KindLine, KindFreehand, KindQCurve, KindCCurve,
	KindPolygon, KindArrow, KindThickArrow, KindDiamond, KindText, KindPath, KindSVG,
}

// Shape is the tagged union of all drawable shapes. Only the fields relevant
// to Type are meaningful; the rest stay zero and are omitted from JSON.
//
// Anchor semantics per kind:
//   - rect, text, path, svg: (X,Y) is the top-left corner.
//   - ellipse, diamond: (X,Y) is the center.
//   - circle: (CX,CY) is the center; X,Y are unused.
//   - points kinds: Points are local to (X,Y); the absolute vertex i is
//     (X+Points[2i], Y+Points[2i+1]).
//
// Rotation (degrees) turns the shape about its anchor.
type Shape struct {
	ID          string  `json:"id"`
	Type        Kind    `json:"type"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Rotation    float64 `json:"rotation,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth"`
	Fill        string  `json:"fill,omitempty"`

	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	CX      float64 `json:"cx,omitempty"`
	CY      float64 `json:"cy,omitempty"`
	R       float64 `json:"r,omitempty"`
	RadiusX float64 `json:"radiusX,omitempty"`
	RadiusY float64 `json:"radiusY,omitempty"`

	Points   []float64 `json:"points,omitempty"`
	LineCap  string    `json:"lineCap,omitempty"`
	LineJoin string    `json:"lineJoin,omitempty"`
	Closed   bool      `json:"closed,omitempty"`
	Tension  float64   `json:"tension,omitempty"`

	PointerLength float64 `json:"pointerLength,omitempty"`
	PointerWidth  float64 `json:"pointerWidth,omitempty"`

	ShaftWidth float64 `json:"shaftWidth,omitempty"`
	HeadLength float64 `json:"headLength,omitempty"`
	HeadWidth  float64 `json:"headWidth,omitempty"`

	Text       string  `json:"text,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	Align      string  `json:"align,omitempty"`

	D   string `json:"d,omitempty"`
	SVG string `json:"svg,omitempty"`
}

// Clone returns a deep copy; the Points slice is not shared.
func (s Shape) Clone() Shape {
	s.Points = slices.Clone(s.Points)
	return s
}

// UsesPoints reports whether the kind's geometry lives in Points.
func UsesPoints(k Kind) bool {
	switch k {
	case KindLine, KindFreehand, KindQCurve, KindCCurve, KindPolygon, KindArrow, KindThickArrow:
		return true
	}
	return false
}

// IsClosed reports whether the outline of s wraps from the last vertex to the first.
func IsClosed(s Shape) bool {
	switch s.Type {
	case KindPolygon, KindThickArrow:
		return true
	case KindLine, KindFreehand:
		return s.Closed
	}
	return false
}

// VertexLimits returns the minimum and maximum vertex counts for points kinds.
// hi is 0 when unbounded. Non-points kinds return 0,0.
func VertexLimits(k Kind) (lo, hi int) {
	switch k {
	case KindLine, KindFreehand, KindArrow:
		return 2, 0
	case KindPolygon:
		return 3, 0
	case KindQCurve:
		return 3, 3
	case KindCCurve:
		return 4, 4
	case KindThickArrow:
		return 2, 2
	}
	return 0, 0
}

// VertexCount is len(Points)/2.
func (s Shape) VertexCount() int { return len(s.Points) / 2 }

// Vertex returns the world position of vertex i.
func (s Shape) Vertex(i int) geom.Pt {
	return Frame(s).Apply(geom.Pt{X: s.Points[2*i], Y: s.Points[2*i+1]})
}

// AbsPoints returns Points mapped through Frame(s).
func (s Shape) AbsPoints() []float64 {
	m := Frame(s)
	out := make([]float64, len(s.Points))
	for i := 0; i+1 < len(s.Points); i += 2 {
		p := m.Apply(geom.Pt{X: s.Points[i], Y: s.Points[i+1]})
		out[i], out[i+1] = p.X, p.Y
	}
	return out
}

// ToLocal maps the world point p into the local frame of s, the inverse of
// Frame(s). Unrotated shapes only subtract the anchor, so the result is exact.
func (s Shape) ToLocal(p geom.Pt) geom.Pt {
	d := p.Sub(s.Anchor())
	if s.Type == KindCircle {
		return d
	}
	return unrotate(d, s.Rotation)
}

// unrotate turns v by -deg degrees.
func unrotate(v geom.Pt, deg float64) geom.Pt {
	if deg == 0 {
		return v
	}
	sin, cos := math.Sincos(geom.Deg2Rad(deg))
	return geom.Pt{X: v.X*cos + v.Y*sin, Y: -v.X*sin + v.Y*cos}
}

// Anchor returns the stored reference point of s.
func (s Shape) Anchor() geom.Pt {
	if s.Type == KindCircle {
		return geom.Pt{X: s.CX, Y: s.CY}
	}
	return geom.Pt{X: s.X, Y: s.Y}
}

// Moved returns s translated by the world delta (dx,dy). For points kinds the
// delta is turned into the shape's local frame and baked into Points; (X,Y)
// is left alone.
func (s Shape) Moved(dx, dy float64) Shape {
	s = s.Clone()
	switch {
	case s.Type == KindCircle:
		s.CX += dx
		s.CY += dy
	case UsesPoints(s.Type):
		d := unrotate(geom.Pt{X: dx, Y: dy}, s.Rotation)
		for i := 0; i+1 < len(s.Points); i += 2 {
			s.Points[i] += d.X
			s.Points[i+1] += d.Y
		}
	default:
		s.X += dx
		s.Y += dy
	}
	return s
}
