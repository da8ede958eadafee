/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"math"

	"vecdraw/internal/geom"
)

// Defaults for kinds with extra parameters.
const (
	DefaultPointerLength = 10.0
	DefaultPointerWidth  = 10.0
	DefaultShaftWidth    = 8.0
	DefaultHeadLength    = 24.0
	DefaultHeadWidth     = 24.0
	curveOffsetRatio     = 0.25
	defaultText          = "Text"
)

func base(k Kind, id string, x, y float64, st Style) Shape {
	return Shape{ID: id, Type: k, X: x, Y: y, Stroke: st.Stroke, StrokeWidth: st.StrokeWidth, Fill: st.Fill}
}

func init() {
	register(KindRect, Behavior{
		Create: func(id string, x, y float64, st Style) Shape { return base(KindRect, id, x, y, st) },
		UpdateOnDraw: func(s Shape, in DrawInput) Shape {
			r := geom.RectFromPoints(in.Start, in.Current)
			s.X, s.Y, s.Width, s.Height = r.X, r.Y, r.W, r.H
			return s
		},
		IsValidAfterDraw: boxValid,
		Normalize:        normalizeBox(KindRect),
	})
	register(KindDiamond, Behavior{
		Create: func(id string, x, y float64, st Style) Shape { return base(KindDiamond, id, x, y, st) },
		UpdateOnDraw: func(s Shape, in DrawInput) Shape {
			r := geom.RectFromPoints(in.Start, in.Current)
			c := r.Center()
			s.X, s.Y, s.Width, s.Height = c.X, c.Y, r.W, r.H
			return s
		},
		IsValidAfterDraw: boxValid,
		Normalize:        normalizeBox(KindDiamond),
	})
	register(KindEllipse, Behavior{
		Create: func(id string, x, y float64, st Style) Shape { return base(KindEllipse, id, x, y, st) },
		UpdateOnDraw: func(s Shape, in DrawInput) Shape {
			r := geom.RectFromPoints(in.Start, in.Current)
			c := r.Center()
			s.X, s.Y, s.RadiusX, s.RadiusY = c.X, c.Y, r.W/2, r.H/2
			return s
		},
		IsValidAfterDraw: func(s Shape, min float64) bool { return 2*s.RadiusX >= min && 2*s.RadiusY >= min },
		Normalize:        normalizeEllipse,
	})
	register(KindCircle, Behavior{
		Create: func(id string, x, y float64, st Style) Shape {
			s := base(KindCircle, id, 0, 0, st)
			s.CX, s.CY = x, y
			return s
		},
		UpdateOnDraw: func(s Shape, in DrawInput) Shape {
			s.CX, s.CY = in.Start.X, in.Start.Y
			s.R = in.Start.Dist(in.Current)
			return s
		},
		IsValidAfterDraw: func(s Shape, min float64) bool { return 2*s.R >= min },
		Normalize:        normalizeCircle,
	})
	for _, k := range []Kind{KindLine, KindArrow, KindThickArrow} {
		register(k, Behavior{
			Create: createTwoPoint(k),
			UpdateOnDraw: func(s Shape, in DrawInput) Shape {
				s.Points = []float64{in.Start.X - s.X, in.Start.Y - s.Y, in.Current.X - s.X, in.Current.Y - s.Y}
				return s
			},
			IsValidAfterDraw: lengthValid,
			Normalize:        normalizePoints(k),
		})
	}
	register(KindFreehand, Behavior{
		Create: func(id string, x, y float64, st Style) Shape {
			s := base(KindFreehand, id, 0, 0, st)
			s.Points = []float64{x, y}
			s.LineCap, s.LineJoin, s.Tension = "round", "round", 0.5
			return s
		},
		UpdateOnDraw: func(s Shape, in DrawInput) Shape {
			return AppendPoint(s, in.Current)
		},
		IsValidAfterDraw: func(s Shape, min float64) bool {
			return s.VertexCount() >= 2 && lengthValid(s, min)
		},
		Normalize: normalizePoints(KindFreehand),
	})
	register(KindQCurve, Behavior{
		Create: func(id string, x, y float64, st Style) Shape {
			s := base(KindQCurve, id, 0, 0, st)
			s.Points = []float64{x, y, x, y, x, y}
			return s
		},
		UpdateOnDraw: func(s Shape, in DrawInput) Shape {
			a, b := in.Start.Sub(s.Anchor()), in.Current.Sub(s.Anchor())
			c := QuadControl(a, b)
			s.Points = []float64{a.X, a.Y, c.X, c.Y, b.X, b.Y}
			return s
		},
		IsValidAfterDraw: chordValid,
		Normalize:        normalizePoints(KindQCurve),
	})
	register(KindCCurve, Behavior{
		Create: func(id string, x, y float64, st Style) Shape {
			s := base(KindCCurve, id, 0, 0, st)
			s.Points = []float64{x, y, x, y, x, y, x, y}
			return s
		},
		UpdateOnDraw: func(s Shape, in DrawInput) Shape {
			a, b := in.Start.Sub(s.Anchor()), in.Current.Sub(s.Anchor())
			c1, c2 := CubicControls(a, b)
			s.Points = []float64{a.X, a.Y, c1.X, c1.Y, c2.X, c2.Y, b.X, b.Y}
			return s
		},
		IsValidAfterDraw: chordValid,
		Normalize:        normalizePoints(KindCCurve),
	})
	register(KindPolygon, Behavior{
		Create: func(id string, x, y float64, st Style) Shape {
			s := base(KindPolygon, id, 0, 0, st)
			s.Points = []float64{x, y, x, y, x, y}
			s.Closed = true
			return s
		},
		UpdateOnDraw: func(s Shape, in DrawInput) Shape {
			r := geom.RectFromPoints(in.Start.Sub(s.Anchor()), in.Current.Sub(s.Anchor()))
			s.Points = []float64{r.X + r.W/2, r.Y, r.X + r.W, r.Y + r.H, r.X, r.Y + r.H}
			return s
		},
		IsValidAfterDraw: func(s Shape, min float64) bool {
			b, ok := geom.BoundsOf(s.Points, 0, 0)
			return ok && s.VertexCount() >= 3 && b.W >= min && b.H >= min
		},
		Normalize: normalizePoints(KindPolygon),
	})
	register(KindText, Behavior{
		Create: func(id string, x, y float64, st Style) Shape {
			s := base(KindText, id, x, y, st)
			s.Text, s.FontSize, s.FontFamily, s.Align = defaultText, st.FontSize, st.FontFamily, "left"
			s.Width, s.Height = MeasureText(s.Text, s.FontSize)
			return s
		},
		UpdateOnDraw: func(s Shape, in DrawInput) Shape {
			s.X, s.Y = in.Current.X, in.Current.Y
			return s
		},
		IsValidAfterDraw: func(s Shape, _ float64) bool { return s.Width > 0 && s.Height > 0 },
		Normalize:        normalizeText,
	})
	register(KindPath, Behavior{
		Create: func(id string, x, y float64, st Style) Shape { return base(KindPath, id, x, y, st) },
		UpdateOnDraw: func(s Shape, in DrawInput) Shape {
			r := geom.RectFromPoints(in.Start, in.Current)
			s.X, s.Y, s.Width, s.Height = r.X, r.Y, r.W, r.H
			s.D = rectPathData(r.W, r.H)
			return s
		},
		IsValidAfterDraw: boxValid,
		Normalize:        normalizePath,
	})
	register(KindSVG, Behavior{
		Create: func(id string, x, y float64, st Style) Shape { return base(KindSVG, id, x, y, st) },
		UpdateOnDraw: func(s Shape, in DrawInput) Shape {
			r := geom.RectFromPoints(in.Start, in.Current)
			s.X, s.Y, s.Width, s.Height = r.X, r.Y, r.W, r.H
			return s
		},
		IsValidAfterDraw: boxValid,
		Normalize:        normalizeSVG,
	})
}

func createTwoPoint(k Kind) func(string, float64, float64, Style) Shape {
	return func(id string, x, y float64, st Style) Shape {
		s := base(k, id, 0, 0, st)
		s.Points = []float64{x, y, x, y}
		switch k {
		case KindLine:
			s.LineCap, s.LineJoin = "round", "round"
		case KindArrow:
			s.PointerLength, s.PointerWidth = DefaultPointerLength, DefaultPointerWidth
			s.Fill = s.Stroke
		case KindThickArrow:
			s.ShaftWidth, s.HeadLength, s.HeadWidth = DefaultShaftWidth, DefaultHeadLength, DefaultHeadWidth
			if !HasFill(s.Fill) {
				s.Fill = s.Stroke
			}
		}
		return s
	}
}

func boxValid(s Shape, min float64) bool { return s.Width >= min && s.Height >= min }

func lengthValid(s Shape, min float64) bool { return geom.PolylineLength(s.Points) >= min }

func chordValid(s Shape, min float64) bool {
	n := s.VertexCount()
	if n < 2 {
		return false
	}
	return s.Vertex(0).Dist(s.Vertex(n-1)) >= min
}

// QuadControl places the control point of a quadratic curve from a to b on
// the left-hand normal of the chord midpoint, a quarter chord length away.
func QuadControl(a, b geom.Pt) geom.Pt {
	d := b.Sub(a)
	off := d.Len() * curveOffsetRatio
	return a.Lerp(b, 0.5).Add(geom.Normal(d.X, d.Y).Mul(off))
}

// CubicControls places both control points at 1/3 and 2/3 of the chord,
// offset by the same amount along the left-hand normal.
func CubicControls(a, b geom.Pt) (geom.Pt, geom.Pt) {
	d := b.Sub(a)
	n := geom.Normal(d.X, d.Y).Mul(d.Len() * curveOffsetRatio)
	return a.Lerp(b, 1.0/3).Add(n), a.Lerp(b, 2.0/3).Add(n)
}

// AppendPoint adds the world point p to a freehand stroke unless it repeats the last vertex.
func AppendPoint(s Shape, p geom.Pt) Shape {
	l := s.ToLocal(p)
	lx, ly := l.X, l.Y
	if n := len(s.Points); n >= 2 && s.Points[n-2] == lx && s.Points[n-1] == ly {
		return s
	}
	s.Points = append(s.Points, lx, ly)
	return s
}

// ThickArrowPolygon derives the 7-vertex outline of a thick arrow from its
// two endpoints and three size parameters: four shaft corners and a
// triangular head. Zero length yields a degenerate but finite polygon.
func ThickArrowPolygon(tail, tip geom.Pt, shaftWidth, headLength, headWidth float64) []geom.Pt {
	d := tip.Sub(tail)
	l := d.Len()
	div := l
	if div == 0 {
		div = 1
	}
	u := geom.Pt{X: d.X / div, Y: d.Y / div}
	n := geom.Pt{X: -u.Y, Y: u.X}
	shaftWidth = math.Max(0, shaftWidth)
	headWidth = math.Max(shaftWidth, headWidth)
	headLength = geom.Clamp(headLength, 0, l)
	baseP := tip.Sub(u.Mul(headLength))
	hs, hh := shaftWidth/2, headWidth/2
	return []geom.Pt{
		tail.Add(n.Mul(hs)),
		baseP.Add(n.Mul(hs)),
		baseP.Add(n.Mul(hh)),
		tip,
		baseP.Sub(n.Mul(hh)),
		baseP.Sub(n.Mul(hs)),
		tail.Sub(n.Mul(hs)),
	}
}

// ThickArrowOutline is ThickArrowPolygon for a stored thick-arrow shape, in world coordinates.
func ThickArrowOutline(s Shape) []geom.Pt {
	if len(s.Points) < 4 {
		return nil
	}
	return ThickArrowPolygon(s.Vertex(0), s.Vertex(1), s.ShaftWidth, s.HeadLength, s.HeadWidth)
}
