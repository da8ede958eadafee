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

// ApplyFrame re-expresses s, whose stored fields are local to frame m, in the
// frame's parent space. Points kinds are baked exactly. Other kinds carry the
// frame's rotation into Rotation and its scale into their size fields, which
// is exact for translation, rotation and uniform scale.
func ApplyFrame(s Shape, m geom.Affine) Shape {
	s = s.Clone()
	if m == geom.Identity {
		return s
	}
	sx := math.Hypot(m.A, m.B)
	sy := math.Hypot(m.C, m.D)
	rot := geom.Rad2Deg(math.Atan2(m.B, m.A))

	if UsesPoints(s.Type) {
		full := m.Mul(Frame(s))
		for i := 0; i+1 < len(s.Points); i += 2 {
			p := full.Apply(geom.Pt{X: s.Points[i], Y: s.Points[i+1]})
			s.Points[i], s.Points[i+1] = p.X, p.Y
		}
		s.X, s.Y, s.Rotation = 0, 0, 0
		scale := math.Sqrt(sx * sy)
		switch s.Type {
		case KindThickArrow:
			s.ShaftWidth *= scale
			s.HeadLength *= scale
			s.HeadWidth *= scale
		case KindArrow:
			s.PointerLength *= scale
			s.PointerWidth *= scale
		}
		return s
	}

	if s.Type == KindCircle {
		c := m.Apply(geom.Pt{X: s.CX, Y: s.CY})
		s.CX, s.CY = c.X, c.Y
		s.R *= math.Sqrt(sx * sy)
		return s
	}

	a := m.Apply(geom.Pt{X: s.X, Y: s.Y})
	s.X, s.Y = a.X, a.Y
	s.Rotation = normDeg(s.Rotation + rot)
	switch s.Type {
	case KindEllipse:
		s.RadiusX *= sx
		s.RadiusY *= sy
	case KindPath:
		if sx != 1 || sy != 1 {
			if subs, err := ParsePathData(s.D); err == nil {
				pls := make([]Polyline, len(subs))
				for i, sp := range subs {
					pts := make([]geom.Pt, len(sp.Points))
					for j, p := range sp.Points {
						pts[j] = geom.Pt{X: p.X * sx, Y: p.Y * sy}
					}
					pls[i] = Polyline{Points: pts, Closed: sp.Closed}
				}
				s.D = FormatPathData(pls, 4)
			}
		}
		s.Width *= sx
		s.Height *= sy
	case KindText:
		s.Width *= sx
		s.Height *= sy
		s.FontSize *= math.Sqrt(sx * sy)
	default:
		s.Width *= sx
		s.Height *= sy
	}
	return s
}

// normDeg folds an angle into (-360,360) and drops float noise below 1e-9 degrees.
func normDeg(d float64) float64 {
	d = math.Round(math.Mod(d, 360)*1e9) / 1e9
	if d == 0 {
		return 0
	}
	return d
}
