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

func TestAffineFrameAndInvert(t *testing.T) {
	m := Frame(10, 20, 90, 2, 3)
	p := m.Apply(P(1, 1))
	// scale (2,3), rotate 90° cw on y-down: (x,y)->(-y,x), translate
	if math.Abs(p.X-7) > 1e-9 || math.Abs(p.Y-22) > 1e-9 {
		t.Fatalf("frame apply = %+v", p)
	}
	inv, ok := m.Invert()
	if !ok {
		t.Fatalf("frame should be invertible")
	}
	q := inv.Apply(p)
	if math.Abs(q.X-1) > 1e-9 || math.Abs(q.Y-1) > 1e-9 {
		t.Fatalf("inverse apply = %+v", q)
	}
	if _, ok := Scale(0, 1).Invert(); ok {
		t.Fatalf("singular matrix must not invert")
	}
}

func TestTransformRect(t *testing.T) {
	r := Rotate(math.Pi / 2).TransformRect(R(0, 0, 10, 4))
	if math.Abs(r.W-4) > 1e-9 || math.Abs(r.H-10) > 1e-9 {
		t.Fatalf("rotated bounds = %+v", r)
	}
}

func TestCurveBoundsIncludeExtrema(t *testing.T) {
	b := QuadBounds(P(0, 0), P(50, 100), P(100, 0))
	if math.Abs(b.H-50) > 1e-9 || b.W != 100 {
		t.Fatalf("quad bounds = %+v", b)
	}
	c := CubicBounds(P(0, 0), P(0, 100), P(100, 100), P(100, 0))
	if math.Abs(c.H-75) > 1e-9 {
		t.Fatalf("cubic bounds = %+v", c)
	}
	pts := FlattenQuad(P(0, 0), P(50, 100), P(100, 0), 4)
	if len(pts) != 5 || pts[0] != P(0, 0) || pts[4] != P(100, 0) {
		t.Fatalf("flatten endpoints = %v", pts)
	}
}

func TestSnapRect(t *testing.T) {
	target := R(0, 0, 200, 100)
	moving := R(3, 4, 80, 40)
	got, guides := SnapRect(moving, []Rect{target}, GuideOptions{Threshold: 6, Edges: true})
	if got.X != 0 || got.Y != 0 {
		t.Fatalf("edges not snapped: %+v", got)
	}
	if len(guides) != 2 || !guides[0].Vertical || guides[1].Vertical {
		t.Fatalf("guides = %+v", guides)
	}

	moving = R(48, 17, 100, 60)
	got, guides = SnapRect(moving, []Rect{target}, GuideOptions{Threshold: 5, Centers: true})
	if got.X != 50 || got.Y != 20 {
		t.Fatalf("centers not snapped: %+v", got)
	}
	for _, g := range guides {
		if !g.Center {
			t.Fatalf("expected center guides, got %+v", g)
		}
	}

	moving = R(40, 40, 10, 10)
	if got, guides := SnapRect(moving, []Rect{target}, GuideOptions{Threshold: 2, Edges: true}); got != moving || len(guides) != 0 {
		t.Fatalf("nothing within threshold, got %+v %v", got, guides)
	}
}
