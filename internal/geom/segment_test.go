/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) <= eps }

func TestProjectPointToSegment_Clamps(t *testing.T) {
	a, b := P(0, 0), P(10, 0)
	pr := ProjectPointToSegment(P(5, 3), a, b)
	if !near(pr.T, 0.5) || !near(pr.Dist, 3) || pr.Point != P(5, 0) {
		t.Fatalf("mid projection = %+v", pr)
	}
	pr = ProjectPointToSegment(P(-4, 3), a, b)
	if pr.T != 0 || pr.Point != a || !near(pr.Dist, 5) {
		t.Fatalf("before-start projection not clamped: %+v", pr)
	}
	pr = ProjectPointToSegment(P(20, 0), a, b)
	if pr.T != 1 || pr.Point != b {
		t.Fatalf("after-end projection not clamped: %+v", pr)
	}
}

func TestProjectPointToSegment_ZeroLength(t *testing.T) {
	pr := ProjectPointToSegment(P(3, 4), P(0, 0), P(0, 0))
	if pr.T != 0 || !near(pr.Dist, 5) || math.IsNaN(pr.Point.X) {
		t.Fatalf("degenerate segment gave %+v", pr)
	}
}

func TestClosestSegment(t *testing.T) {
	pts := []float64{0, 0, 100, 0, 100, 100}
	hit, ok := ClosestSegment(pts, P(98, 50), 5, false)
	if !ok || hit.Index != 1 || !near(hit.Dist, 2) {
		t.Fatalf("hit = %+v ok=%v", hit, ok)
	}
	if _, ok := ClosestSegment(pts, P(50, 50), 5, false); ok {
		t.Fatalf("no segment within 5 of (50,50) on an open path")
	}
	// closing edge (100,100)->(0,0) passes through (50,50)
	hit, ok = ClosestSegment(pts, P(50, 50), 5, true)
	if !ok || hit.Index != 2 || hit.Dist > 5 {
		t.Fatalf("closing edge not found: %+v ok=%v", hit, ok)
	}
	if _, ok := ClosestSegment([]float64{1, 1}, P(1, 1), 10, false); ok {
		t.Fatalf("single vertex has no segment")
	}
}

func TestClosestSegment_NeverExceedsMaxDist(t *testing.T) {
	pts := []float64{0, 0, 10, 10, 20, 0, 30, 10}
	for _, q := range []Pt{{5, 5}, {15, 20}, {-3, 0}, {30, 30}, {25, 4}} {
		for _, maxD := range []float64{0, 1, 3, 10} {
			if hit, ok := ClosestSegment(pts, q, maxD, false); ok && hit.Dist > maxD {
				t.Fatalf("dist %v exceeds max %v for %v", hit.Dist, maxD, q)
			}
		}
	}
}

func TestSnapVector45(t *testing.T) {
	cases := []struct{ dx, dy float64 }{
		{10, 1}, {10, 9}, {-3, 7}, {0.2, -5}, {-8, -7.5}, {1e-3, 0}, {-4, 0.1},
	}
	for _, c := range cases {
		sx, sy := SnapVector45(c.dx, c.dy)
		if math.Abs(math.Hypot(sx, sy)-math.Hypot(c.dx, c.dy)) > 1e-9 {
			t.Fatalf("length changed for %v: %v,%v", c, sx, sy)
		}
		deg := Rad2Deg(math.Atan2(sy, sx))
		if r := math.Mod(math.Abs(deg), 45); r > 1e-9 && 45-r > 1e-9 {
			t.Fatalf("angle %v not a multiple of 45 for %v", deg, c)
		}
	}
	if sx, sy := SnapVector45(10, 1); sy != 0 || !near(sx, math.Hypot(10, 1)) {
		t.Fatalf("near-horizontal should snap to the x axis, got %v,%v", sx, sy)
	}
	if sx, sy := SnapVector45(0, 0); sx != 0 || sy != 0 {
		t.Fatalf("zero vector should stay zero")
	}
}

func TestPolylineLength(t *testing.T) {
	if l := PolylineLength([]float64{0, 0, 3, 4, 3, 10}); !near(l, 11) {
		t.Fatalf("length = %v", l)
	}
	if l := PolylineLength([]float64{5, 5}); l != 0 {
		t.Fatalf("single point length = %v", l)
	}
	if l := PolylineLength([]float64{0, 0, 3, 4, 9}); !near(l, 5) {
		t.Fatalf("odd trailing coordinate should be ignored, got %v", l)
	}
}

func TestNormal_ZeroVector(t *testing.T) {
	if n := Normal(0, 0); n != (Pt{}) {
		t.Fatalf("normal of zero vector = %v", n)
	}
	if n := Normal(10, 0); !near(n.X, 0) || !near(n.Y, 1) {
		t.Fatalf("normal of +x = %v", n)
	}
}

func TestRectFromPointsAndOverlap(t *testing.T) {
	r := RectFromPoints(P(110, 60), P(10, 10))
	if r != R(10, 10, 100, 50) {
		t.Fatalf("normalized rect = %+v", r)
	}
	if !r.Overlaps(R(100, 50, 5, 5)) || r.Overlaps(R(111, 0, 5, 5)) {
		t.Fatalf("overlap test wrong")
	}
	if !r.Contains(P(10, 10)) || r.ContainsStrict(P(10, 10)) {
		t.Fatalf("edge containment wrong")
	}
}

func TestRound(t *testing.T) {
	if v := Round(1.23456, 2); v != 1.23 {
		t.Fatalf("Round = %v", v)
	}
	if v := Round(-0.001, 2); math.Signbit(v) {
		t.Fatalf("Round should not yield -0")
	}
	if v := Round(7.5, -1); v != 7.5 {
		t.Fatalf("negative places should be a no-op")
	}
}
