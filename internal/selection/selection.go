/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package selection answers which shapes a marquee or a click touches and
// keeps the multi-selection state.
package selection

import (
	"slices"

	"vecdraw/internal/drawing"
	"vecdraw/internal/geom"
	"vecdraw/internal/shape"
)

// Marquee returns the drag rectangle spanned by a and b with non-negative extents.
func Marquee(a, b geom.Pt) geom.Rect { return geom.RectFromPoints(a, b) }

// Intersects tests a world-space shape against box. Box-like kinds use a
// bounding box overlap, circles an exact circle test, and vertex kinds pass
// when any vertex lies strictly inside box.
func Intersects(s shape.Shape, box geom.Rect) bool {
	switch s.Type {
	case shape.KindCircle:
		return geom.CircleIntersectsRect(geom.Pt{X: s.CX, Y: s.CY}, s.R, box)
	case shape.KindLine, shape.KindFreehand, shape.KindQCurve, shape.KindCCurve, shape.KindPolygon, shape.KindArrow:
		m := shape.Frame(s)
		for _, p := range shape.Pairs(s.Points) {
			if box.ContainsStrict(m.Apply(p)) {
				return true
			}
		}
		return false
	}
	b, ok := shape.Bounds(s)
	return ok && b.Overlaps(box)
}

// TopOf returns the outermost group containing id, or id itself when it is
// not grouped.
func TopOf(d *drawing.Drawing, id string) string {
	seen := map[string]bool{}
	for !seen[id] {
		seen[id] = true
		p, ok := d.ParentOf(id)
		if !ok {
			break
		}
		id = p
	}
	return id
}

// InMarquee returns the top-level ids touched by box, in paint order. A
// grouped shape that intersects selects its outermost group.
func InMarquee(d *drawing.Drawing, box geom.Rect) []string {
	var out []string
	for _, s := range d.WorldShapes() {
		if !Intersects(s, box) {
			continue
		}
		if id := TopOf(d, s.ID); !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// HitTest returns the top-level id of the topmost shape under p. tol widens
// stroke hits.
func HitTest(d *drawing.Drawing, p geom.Pt, tol float64) (string, bool) {
	shapes := d.WorldShapes()
	for i := len(shapes) - 1; i >= 0; i-- {
		if Hit(shapes[i], p, tol) {
			return TopOf(d, shapes[i].ID), true
		}
	}
	return "", false
}

// Hit reports whether p touches the world-space shape s: on its stroke within
// tol, or inside it for filled closed outlines and box-like kinds.
func Hit(s shape.Shape, p geom.Pt, tol float64) bool {
	reach := tol + s.StrokeWidth/2
	if s.Type == shape.KindCircle {
		c := geom.Pt{X: s.CX, Y: s.CY}
		if shape.HasFill(s.Fill) && p.Dist(c) <= s.R {
			return true
		}
		return geom.DistanceToCircle(p, c, s.R) <= reach
	}
	solid := shape.HasFill(s.Fill)
	switch s.Type {
	case shape.KindText, shape.KindSVG, shape.KindPath, shape.KindThickArrow:
		solid = true
	}
	for _, pl := range shape.Outlines(s) {
		flat := shape.Flatten(pl.Points)
		if _, ok := geom.ClosestSegment(flat, p, reach, pl.Closed); ok {
			return true
		}
		if len(pl.Points) == 1 && pl.Points[0].Dist(p) <= reach {
			return true
		}
		if solid && pl.Closed && insidePolygon(pl.Points, p) {
			return true
		}
	}
	return false
}

// insidePolygon is the even-odd rule.
func insidePolygon(pts []geom.Pt, p geom.Pt) bool {
	in := false
	for i, j := 0, len(pts)-1; i < len(pts); j, i = i, i+1 {
		a, b := pts[i], pts[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}
