/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "math"

// Projection is the closest point on a segment to some query point.
type Projection struct {
	Point Pt
	T     float64 // position along the segment, clamped to [0,1]
	Dist  float64
}

// ProjectPointToSegment projects p onto segment ab. T is clamped so Point always
// lies on the segment. A zero-length segment projects to a with T = 0.
func ProjectPointToSegment(p, a, b Pt) Projection {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return Projection{Point: a, T: 0, Dist: p.Dist(a)}
	}
	t := Clamp(p.Sub(a).Dot(ab)/l2, 0, 1)
	q := a.Add(ab.Mul(t))
	return Projection{Point: q, T: t, Dist: p.Dist(q)}
}

// SegmentHit identifies the segment from vertex Index to vertex Index+1
// (or back to vertex 0 for the closing edge of a closed outline).
type SegmentHit struct {
	Index int
	Projection
}

// ClosestSegment scans consecutive vertex pairs of a flat point list for the
// one nearest to p. With closed set, the edge from the last vertex back to the
// first is included. ok is false when there are fewer than two vertices or the
// best distance exceeds maxDist.
func ClosestSegment(points []float64, p Pt, maxDist float64, closed bool) (SegmentHit, bool) {
	n := len(points) / 2
	if n < 2 {
		return SegmentHit{}, false
	}
	edges := n - 1
	if closed && n > 2 {
		edges = n
	}
	best := SegmentHit{Index: -1, Projection: Projection{Dist: math.Inf(1)}}
	for i := 0; i < edges; i++ {
		j := (i + 1) % n
		a := Pt{points[2*i], points[2*i+1]}
		b := Pt{points[2*j], points[2*j+1]}
		pr := ProjectPointToSegment(p, a, b)
		if pr.Dist < best.Dist {
			best = SegmentHit{Index: i, Projection: pr}
		}
	}
	if best.Index < 0 || !(best.Dist <= maxDist) {
		return SegmentHit{}, false
	}
	return best, true
}

var octants = [8]Pt{
	{1, 0}, {math.Sqrt2 / 2, math.Sqrt2 / 2}, {0, 1}, {-math.Sqrt2 / 2, math.Sqrt2 / 2},
	{-1, 0}, {-math.Sqrt2 / 2, -math.Sqrt2 / 2}, {0, -1}, {math.Sqrt2 / 2, -math.Sqrt2 / 2},
}

// SnapVector45 keeps the length of (dx,dy) and rounds its direction to the
// nearest multiple of 45°. The zero vector stays zero.
func SnapVector45(dx, dy float64) (float64, float64) {
	l := math.Hypot(dx, dy)
	if l == 0 || !Finite(l) {
		return 0, 0
	}
	k := int(math.Round(math.Atan2(dy, dx) / (math.Pi / 4)))
	u := octants[((k%8)+8)%8]
	return u.X * l, u.Y * l
}

// PolylineLength sums the Euclidean lengths of consecutive segments of a flat
// point list. A trailing odd coordinate is ignored.
func PolylineLength(points []float64) float64 {
	var total float64
	for i := 2; i+1 < len(points); i += 2 {
		total += math.Hypot(points[i]-points[i-2], points[i+1]-points[i-1])
	}
	return total
}

// Normal returns the left-hand unit normal (-dy,dx)/len of a vector.
// A zero vector gives (0,0).
func Normal(dx, dy float64) Pt {
	l := math.Hypot(dx, dy)
	if l == 0 {
		l = 1
	}
	return Pt{-dy / l, dx / l}
}
