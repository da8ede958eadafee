/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "math"

// DistanceToCircle is the distance from p to the circle's boundary
// (zero on the boundary, positive inside and outside).
func DistanceToCircle(p, c Pt, r float64) float64 {
	return math.Abs(p.Dist(c) - math.Max(0, r))
}

// RayCircleIntersect returns the nearest non-negative parameter t at which
// origin + t·dir meets the circle. ok is false for a zero direction or a miss.
// When the origin is inside the circle the exit point is returned.
func RayCircleIntersect(origin, dir, c Pt, r float64) (float64, bool) {
	a := dir.Dot(dir)
	if a == 0 || r < 0 {
		return 0, false
	}
	oc := origin.Sub(c)
	b := 2 * dir.Dot(oc)
	cc := oc.Dot(oc) - r*r
	disc := b*b - 4*a*cc
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	if t := (-b - sq) / (2 * a); t >= 0 {
		return t, true
	}
	if t := (-b + sq) / (2 * a); t >= 0 {
		return t, true
	}
	return 0, false
}

// CircleBounds is the axis-aligned box of a circle.
func CircleBounds(c Pt, r float64) Rect {
	r = math.Max(0, r)
	return Rect{X: c.X - r, Y: c.Y - r, W: 2 * r, H: 2 * r}
}

// CircleIntersectsRect compares the distance from the center to the closest
// point of the box with the radius.
func CircleIntersectsRect(c Pt, r float64, box Rect) bool {
	qx := Clamp(c.X, box.X, box.X+box.W)
	qy := Clamp(c.Y, box.Y, box.Y+box.H)
	dx, dy := c.X-qx, c.Y-qy
	return dx*dx+dy*dy <= r*r
}
