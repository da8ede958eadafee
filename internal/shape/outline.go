/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"context"
	"math"

	"vecdraw/internal/geom"
)

// Polyline is one outline run in some coordinate frame.
type Polyline struct {
	Points []geom.Pt
	Closed bool
}

// roundSegments is the vertex count used to approximate circles and ellipses.
const roundSegments = 32

// Frame maps a shape's local geometry to world space:
// translate to the anchor, then rotate.
func Frame(s Shape) geom.Affine {
	if s.Type == KindCircle {
		return geom.Translate(s.CX, s.CY)
	}
	return geom.Translate(s.X, s.Y).Mul(geom.Rotate(geom.Deg2Rad(s.Rotation)))
}

// LocalOutlines returns the outline of s before Frame is applied.
func LocalOutlines(s Shape) []Polyline {
	switch s.Type {
	case KindRect, KindText, KindSVG:
		w, h := s.Width, s.Height
		return []Polyline{{Points: []geom.Pt{{0, 0}, {w, 0}, {w, h}, {0, h}}, Closed: true}}
	case KindDiamond:
		hw, hh := s.Width/2, s.Height/2
		return []Polyline{{Points: []geom.Pt{{0, -hh}, {hw, 0}, {0, hh}, {-hw, 0}}, Closed: true}}
	case KindCircle:
		return []Polyline{{Points: ellipsePoints(s.R, s.R), Closed: true}}
	case KindEllipse:
		return []Polyline{{Points: ellipsePoints(s.RadiusX, s.RadiusY), Closed: true}}
	case KindLine, KindFreehand, KindArrow, KindPolygon:
		return []Polyline{{Points: pairs(s.Points), Closed: IsClosed(s)}}
	case KindQCurve:
		if len(s.Points) != 6 {
			return nil
		}
		p := pairs(s.Points)
		return []Polyline{{Points: geom.FlattenQuad(p[0], p[1], p[2], curveSteps)}}
	case KindCCurve:
		if len(s.Points) != 8 {
			return nil
		}
		p := pairs(s.Points)
		return []Polyline{{Points: geom.FlattenCubic(p[0], p[1], p[2], p[3], curveSteps)}}
	case KindThickArrow:
		if len(s.Points) < 4 {
			return nil
		}
		p := pairs(s.Points)
		return []Polyline{{Points: ThickArrowPolygon(p[0], p[1], s.ShaftWidth, s.HeadLength, s.HeadWidth), Closed: true}}
	case KindPath:
		subs, err := ParsePathData(s.D)
		if err != nil {
			w, h := s.Width, s.Height
			return []Polyline{{Points: []geom.Pt{{0, 0}, {w, 0}, {w, h}, {0, h}}, Closed: true}}
		}
		out := make([]Polyline, len(subs))
		for i, sp := range subs {
			out[i] = Polyline{Points: sp.Points, Closed: sp.Closed}
		}
		return out
	}
	return nil
}

// Outlines returns the world-space outline of s. Unknown kinds have none.
func Outlines(s Shape) []Polyline {
	local := LocalOutlines(s)
	m := Frame(s)
	for i := range local {
		pts := make([]geom.Pt, len(local[i].Points))
		for j, p := range local[i].Points {
			pts[j] = m.Apply(p)
		}
		local[i].Points = pts
	}
	return local
}

// TotalLength sums the world outline lengths of shapes, closing closed runs.
// It goes through the accelerated bulk path, so it is for summaries and
// reports; pointer-time code measures with geom.PolylineLength.
func TotalLength(ctx context.Context, shapes []Shape) float64 {
	var total float64
	for _, s := range shapes {
		for _, pl := range Outlines(s) {
			pts := pl.Points
			if pl.Closed && len(pts) > 2 {
				pts = append(pts[:len(pts):len(pts)], pts[0])
			}
			total += geom.PolylineLengthContext(ctx, Flatten(pts))
		}
	}
	return total
}

// Bounds is the axis-aligned world bounding box of s. Curves use their tight
// extrema bounds. ok is false when s has no geometry.
func Bounds(s Shape) (geom.Rect, bool) {
	var local geom.Rect
	switch s.Type {
	case KindCircle:
		return geom.CircleBounds(geom.Pt{X: s.CX, Y: s.CY}, s.R), true
	case KindQCurve:
		if len(s.Points) != 6 {
			return geom.Rect{}, false
		}
		p := pairs(s.Points)
		local = geom.QuadBounds(p[0], p[1], p[2])
	case KindCCurve:
		if len(s.Points) != 8 {
			return geom.Rect{}, false
		}
		p := pairs(s.Points)
		local = geom.CubicBounds(p[0], p[1], p[2], p[3])
	case KindEllipse:
		local = geom.Rect{X: -s.RadiusX, Y: -s.RadiusY, W: 2 * s.RadiusX, H: 2 * s.RadiusY}
		if math.Mod(s.Rotation, 180) != 0 {
			return polyBounds(Outlines(s))
		}
	default:
		return polyBounds(Outlines(s))
	}
	return Frame(s).TransformRect(local), true
}

func polyBounds(pls []Polyline) (geom.Rect, bool) {
	var (
		box   geom.Rect
		found bool
	)
	for _, pl := range pls {
		for _, p := range pl.Points {
			pr := geom.Rect{X: p.X, Y: p.Y}
			if !found {
				box, found = pr, true
				continue
			}
			box = box.Union(pr)
		}
	}
	return box, found
}

// UnionBounds is the combined bounding box of several shapes.
func UnionBounds(shapes []Shape) (geom.Rect, bool) {
	var (
		box   geom.Rect
		found bool
	)
	for _, s := range shapes {
		b, ok := Bounds(s)
		if !ok {
			continue
		}
		if !found {
			box, found = b, true
			continue
		}
		box = box.Union(b)
	}
	return box, found
}

func ellipsePoints(rx, ry float64) []geom.Pt {
	pts := make([]geom.Pt, roundSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / roundSegments
		pts[i] = geom.Pt{X: rx * math.Cos(a), Y: ry * math.Sin(a)}
	}
	return pts
}

func pairs(flat []float64) []geom.Pt {
	out := make([]geom.Pt, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		out = append(out, geom.Pt{X: flat[i], Y: flat[i+1]})
	}
	return out
}

// Pairs converts a flat coordinate list into points.
func Pairs(flat []float64) []geom.Pt { return pairs(flat) }

// Flatten converts points into a flat coordinate list.
func Flatten(pts []geom.Pt) []float64 {
	out := make([]float64, 0, 2*len(pts))
	for _, p := range pts {
		out = append(out, p.X, p.Y)
	}
	return out
}
