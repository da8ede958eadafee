/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom is the stateless geometry kernel of the editor: points, boxes,
// affine frames, segment projection, angle snapping and circle predicates.
// Everything here is a pure function of its inputs.
package geom

import "math"

// Pt is a 2D point or vector.
type Pt struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func P(x, y float64) Pt { return Pt{X: x, Y: y} }

func (p Pt) Add(q Pt) Pt          { return Pt{p.X + q.X, p.Y + q.Y} }
func (p Pt) Sub(q Pt) Pt          { return Pt{p.X - q.X, p.Y - q.Y} }
func (p Pt) Mul(s float64) Pt     { return Pt{p.X * s, p.Y * s} }
func (p Pt) Dot(q Pt) float64     { return p.X*q.X + p.Y*q.Y }
func (p Pt) Len() float64         { return math.Hypot(p.X, p.Y) }
func (p Pt) Dist(q Pt) float64    { return math.Hypot(p.X-q.X, p.Y-q.Y) }
func (p Pt) Lerp(q Pt, t float64) Pt {
	return Pt{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Finite reports whether both coordinates are finite numbers.
func (p Pt) Finite() bool { return Finite(p.X) && Finite(p.Y) }

// Rect is an axis-aligned rectangle given by its min corner and size.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// RectFromPoints returns the box spanned by two corners in any order, so the
// result always has non-negative width and height.
func RectFromPoints(a, b Pt) Rect {
	x0, x1 := math.Min(a.X, b.X), math.Max(a.X, b.X)
	y0, y1 := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// BoundsOf returns the bounding box of a flat [x0,y0,x1,y1,...] list offset by (ox,oy).
// ok is false when the list holds no complete pair.
func BoundsOf(points []float64, ox, oy float64) (Rect, bool) {
	if len(points) < 2 {
		return Rect{}, false
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := 0; i+1 < len(points); i += 2 {
		x, y := points[i]+ox, points[i+1]+oy
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}, true
}

func (r Rect) Min() Pt    { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt    { return Pt{r.X + r.W, r.Y + r.H} }
func (r Rect) Center() Pt { return Pt{r.X + r.W/2, r.Y + r.H/2} }
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains is inclusive of the edges.
func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// ContainsStrict excludes the edges.
func (r Rect) ContainsStrict(p Pt) bool {
	return p.X > r.X && p.Y > r.Y && p.X < r.X+r.W && p.Y < r.Y+r.H
}

// Overlaps is the separating-axis test for two boxes; touching edges count.
func (r Rect) Overlaps(o Rect) bool {
	if r.X+r.W < o.X || o.X+o.W < r.X {
		return false
	}
	if r.Y+r.H < o.Y || o.Y+o.H < r.Y {
		return false
	}
	return true
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Inset returns a rectangle inset by dx,dy on all sides (negative grows).
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Round rounds v to places decimals. Negative places leave v unchanged.
func Round(v float64, places int) float64 {
	if places < 0 || !Finite(v) {
		return v
	}
	pow := math.Pow(10, float64(places))
	r := math.Round(v*pow) / pow
	if r == 0 {
		return 0 // no -0 in output
	}
	return r
}

// Finite is false for NaN and ±Inf.
func Finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Clamp limits v to [lo,hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 { return d * math.Pi / 180 }

// Rad2Deg converts radians to degrees.
func Rad2Deg(r float64) float64 { return r * 180 / math.Pi }
