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
	"testing"

	"vecdraw/internal/geom"
	"vecdraw/internal/shape"
)

func rect(x, y, w, h float64) shape.Shape {
	return shape.Shape{ID: "r1", Type: shape.KindRect, X: x, Y: y, Width: w, Height: h, StrokeWidth: 2}
}

func line(pts ...float64) shape.Shape {
	return shape.Shape{ID: "l1", Type: shape.KindLine, Points: pts, StrokeWidth: 2}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestTranslateBakesPoints(t *testing.T) {
	l := line(0, 0, 10, 0)
	l.X, l.Y = 3, 4
	m := Translate(l, 5, -2)
	if m.X != 3 || m.Y != 4 {
		t.Fatalf("anchor moved: %+v", m)
	}
	if m.Points[0] != 5 || m.Points[1] != -2 || m.Points[2] != 15 {
		t.Fatalf("points = %v", m.Points)
	}
	if l.Points[0] != 0 {
		t.Fatalf("input mutated")
	}
	r := Translate(rect(0, 0, 5, 5), math.NaN(), 1)
	if r.X != 0 || r.Y != 0 {
		t.Fatalf("NaN delta applied: %+v", r)
	}
}

func TestResizeWidthHandleOnly(t *testing.T) {
	r := rect(10, 10, 100, 50)
	out := ResizeByHandle(r, Right, geom.P(210, 35))
	if out.X != 10 || out.Y != 10 || out.Width != 200 || out.Height != 50 {
		t.Fatalf("right handle: %+v", out)
	}
	out = ResizeByHandle(r, Left, geom.P(-90, 35))
	if out.X != -90 || out.Y != 10 || out.Width != 200 || out.Height != 50 {
		t.Fatalf("left handle: %+v", out)
	}
	// dragging past the opposite edge stops at the minimum size
	out = ResizeByHandle(r, Bottom, geom.P(0, -500))
	if out.Height != MinSize || out.Y != 10 {
		t.Fatalf("collapsed: %+v", out)
	}
}

func TestTransformEndClampsAndResetsScale(t *testing.T) {
	c := shape.Shape{Type: shape.KindCircle, CX: 5, CY: 5, R: 10}
	out := TransformEnd(c, Transform{X: 7, Y: 8, ScaleX: 1.5, ScaleY: 0.8})
	if out.R != 15 || out.CX != 7 || out.CY != 8 {
		t.Fatalf("circle: %+v", out)
	}
	e := shape.Shape{Type: shape.KindEllipse, RadiusX: 10, RadiusY: 10}
	out = TransformEnd(e, Transform{ScaleX: 0.01, ScaleY: 2})
	if out.RadiusX != MinSize || out.RadiusY != 20 {
		t.Fatalf("ellipse: %+v", out)
	}
	l := TransformEnd(line(0, 0, 10, 20), Transform{ScaleX: 2, ScaleY: 0.5})
	want := []float64{0, 0, 20, 10}
	for i := range want {
		if l.Points[i] != want[i] {
			t.Fatalf("points = %v", l.Points)
		}
	}
	// a zero or NaN factor is treated as no scale
	r := TransformEnd(rect(0, 0, 10, 10), Transform{ScaleX: 0, ScaleY: math.NaN()})
	if r.Width != 10 || r.Height != 10 {
		t.Fatalf("rect: %+v", r)
	}
}

func TestMoveVertexSnap(t *testing.T) {
	l := line(0, 0, 10, 0)
	out := MoveVertex(l, 1, geom.P(10, 9), true)
	x, y := out.Points[2], out.Points[3]
	if !near(x, y) || !near(math.Hypot(x, y), math.Hypot(10, 9)) {
		t.Fatalf("snapped to %v,%v", x, y)
	}
	out = MoveVertex(l, 1, geom.P(10, 9), false)
	if out.Points[2] != 10 || out.Points[3] != 9 {
		t.Fatalf("free move: %v", out.Points)
	}
	if MoveVertex(l, 7, geom.P(1, 1), false).Points[2] != 10 {
		t.Fatalf("out of range index applied")
	}
}

func TestSnapReference(t *testing.T) {
	q := shape.Shape{Type: shape.KindQCurve, Points: []float64{0, 0, 1, 5, 100, 0}}
	if SnapReference(q, 1) != 0 || SnapReference(q, 0) != 2 {
		t.Fatalf("qcurve reference wrong")
	}
	c := shape.Shape{Type: shape.KindCCurve, Points: []float64{0, 0, 1, 1, 2, 2, 3, 3}}
	if SnapReference(c, 1) != 0 || SnapReference(c, 2) != 3 || SnapReference(c, 3) != 0 {
		t.Fatalf("ccurve reference wrong")
	}
	p := shape.Shape{Type: shape.KindPolygon, Points: []float64{0, 0, 10, 0, 5, 5}}
	if SnapReference(p, 0) != 2 || SnapReference(line(0, 0, 1, 1), 0) != 1 {
		t.Fatalf("first vertex reference wrong")
	}
}

func TestDeleteVertexRespectsMinimum(t *testing.T) {
	l := line(0, 0, 10, 10)
	out, ok := DeleteVertex(l, 0)
	if ok || out.VertexCount() != 2 {
		t.Fatalf("2-point line lost a vertex")
	}
	p := shape.Shape{Type: shape.KindPolygon, Points: []float64{0, 0, 10, 0, 10, 10, 0, 10}}
	p, ok = DeleteVertex(p, 1)
	if !ok || p.VertexCount() != 3 || p.Points[2] != 10 || p.Points[3] != 10 {
		t.Fatalf("polygon delete: %v", p.Points)
	}
	if _, ok := DeleteVertex(p, 0); ok {
		t.Fatalf("triangle lost a vertex")
	}
}

func TestMidpointsWrapOnlyWhenClosed(t *testing.T) {
	open := line(0, 0, 10, 0, 10, 10)
	if n := len(Midpoints(open)); n != 2 {
		t.Fatalf("open line midpoints = %d", n)
	}
	closed := open.Clone()
	closed.Closed = true
	ms := Midpoints(closed)
	if len(ms) != 3 || ms[2].Index != 3 || ms[2].Pos != geom.P(5, 5) {
		t.Fatalf("closed midpoints = %+v", ms)
	}
	q := shape.Shape{Type: shape.KindQCurve, Points: []float64{0, 0, 5, 5, 10, 0}}
	if Midpoints(q) != nil {
		t.Fatalf("curves have a fixed vertex count")
	}
	if _, ok := InsertVertex(q, 1, geom.P(1, 1)); ok {
		t.Fatalf("insert into qcurve accepted")
	}
}

func TestInsertNearest(t *testing.T) {
	l := line(0, 0, 100, 0)
	out, i, ok := InsertNearest(l, geom.P(50, 5), 10)
	if !ok || i != 1 || out.VertexCount() != 3 || out.Points[2] != 50 || out.Points[3] != 0 {
		t.Fatalf("insert = %v %d %v", out.Points, i, ok)
	}
	if _, _, ok := InsertNearest(l, geom.P(50, 50), 10); ok {
		t.Fatalf("far click inserted a vertex")
	}
}

func TestSetThickArrowParams(t *testing.T) {
	a := shape.Shape{Type: shape.KindThickArrow, Points: []float64{0, 0, 100, 0}, ShaftWidth: 8, HeadLength: 24, HeadWidth: 24}
	out := SetThickArrowParams(a, ThickArrowParams{ShaftWidth: 30, HeadLength: math.NaN(), HeadWidth: 10})
	if out.ShaftWidth != 30 || out.HeadLength != 24 || out.HeadWidth != 30 {
		t.Fatalf("params = %+v", out)
	}
	if len(shape.ThickArrowOutline(out)) != 7 {
		t.Fatalf("outline not rebuilt")
	}
}

func TestHandlesFollowRotation(t *testing.T) {
	l := line(0, 0, 100, 0)
	l.Rotation = 90
	hs := Handles(l)
	if len(hs) != 2 || !near(hs[1].X, 0) || !near(hs[1].Y, 100) {
		t.Fatalf("handles = %v, want second at (0,100)", hs)
	}
	out := shape.Outlines(l)[0].Points
	if !near(out[1].X, hs[1].X) || !near(out[1].Y, hs[1].Y) {
		t.Fatalf("handle %v disagrees with outline %v", hs[1], out[1])
	}
	mps := Midpoints(l)
	if len(mps) != 1 || !near(mps[0].Pos.X, 0) || !near(mps[0].Pos.Y, 50) {
		t.Fatalf("midpoints = %+v", mps)
	}
}

func TestVertexEditsOnRotatedLine(t *testing.T) {
	l := line(0, 0, 100, 0)
	l.Rotation = 90

	m := MoveVertex(l, 1, geom.P(0, 200), false)
	if v := m.Vertex(1); !near(v.X, 0) || !near(v.Y, 200) {
		t.Fatalf("moved vertex renders at %+v", v)
	}
	if i, ok := NearestVertex(l, geom.P(0, 100), 1); !ok || i != 1 {
		t.Fatalf("nearest vertex = %d, %v", i, ok)
	}

	ins, at, ok := InsertNearest(l, geom.P(2, 40), 5)
	if !ok || at != 1 {
		t.Fatalf("insert at %d, %v", at, ok)
	}
	if v := ins.Vertex(1); !near(v.X, 0) || !near(v.Y, 40) {
		t.Fatalf("inserted vertex renders at %+v", v)
	}
	if _, _, ok := InsertNearest(l, geom.P(40, 2), 5); ok {
		t.Fatalf("insert hit the unrotated segment")
	}
}

func TestTranslateRotatedLine(t *testing.T) {
	l := line(0, 0, 100, 0)
	l.Rotation = 90
	m := Translate(l, 10, 5)
	for i := range 2 {
		a, b := l.Vertex(i), m.Vertex(i)
		if !near(b.X-a.X, 10) || !near(b.Y-a.Y, 5) {
			t.Fatalf("vertex %d moved by (%v,%v)", i, b.X-a.X, b.Y-a.Y)
		}
	}
}
