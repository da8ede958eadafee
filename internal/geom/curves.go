/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "github.com/gogpu/gg"

// QuadBounds is the tight bounding box of a quadratic Bézier curve, including
// its extrema and not just the control polygon.
func QuadBounds(p0, c, p1 Pt) Rect {
	return fromGG(gg.NewQuadBez(toGG(p0), toGG(c), toGG(p1)).BoundingBox())
}

// CubicBounds is the tight bounding box of a cubic Bézier curve.
func CubicBounds(p0, c1, c2, p1 Pt) Rect {
	return fromGG(gg.NewCubicBez(toGG(p0), toGG(c1), toGG(c2), toGG(p1)).BoundingBox())
}

// FlattenQuad samples n+1 points along the curve, endpoints included.
func FlattenQuad(p0, c, p1 Pt, n int) []Pt {
	q := gg.NewQuadBez(toGG(p0), toGG(c), toGG(p1))
	return sample(n, func(t float64) gg.Point { return q.Eval(t) })
}

// FlattenCubic samples n+1 points along the curve, endpoints included.
func FlattenCubic(p0, c1, c2, p1 Pt, n int) []Pt {
	cb := gg.NewCubicBez(toGG(p0), toGG(c1), toGG(c2), toGG(p1))
	return sample(n, func(t float64) gg.Point { return cb.Eval(t) })
}

func sample(n int, eval func(float64) gg.Point) []Pt {
	if n < 1 {
		n = 1
	}
	out := make([]Pt, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, fromGGPoint(eval(float64(i)/float64(n))))
	}
	return out
}

func toGG(p Pt) gg.Point        { return gg.Pt(p.X, p.Y) }
func fromGGPoint(p gg.Point) Pt { return Pt{X: p.X, Y: p.Y} }
func fromGG(r gg.Rect) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, W: r.Max.X - r.Min.X, H: r.Max.Y - r.Min.Y}
}
