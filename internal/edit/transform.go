/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package edit implements interactive editing of committed shapes: whole
// shape drags, bounding box transforms, vertex and control point editing,
// and the scoped edit sessions that drive them from pointer gestures. All
// operations take a shape by value and return the edited copy.
package edit

import (
	"math"

	"vecdraw/internal/geom"
	"vecdraw/internal/shape"
)

// MinSize is the smallest width, height or radius a transform may leave behind.
const MinSize = 1.0

// Translate moves s by (dx,dy). Points kinds get the delta baked into their
// points so no separate offset survives the commit.
func Translate(s shape.Shape, dx, dy float64) shape.Shape {
	if !geom.Finite(dx) || !geom.Finite(dy) {
		return s.Clone()
	}
	return s.Moved(dx, dy)
}

// Transform is the state of a shape's node at the end of a handle transform:
// its new anchor position, rotation and accumulated scale.
type Transform struct {
	X, Y     float64
	Rotation float64
	ScaleX   float64
	ScaleY   float64
}

// TransformEnd bakes t into s: scale factors are multiplied into the size
// fields (or into every point pair for points kinds), sizes are clamped to
// MinSize, and the anchor and rotation are taken from t. The returned shape
// carries no residual scale, so the next transform starts from 1.
func TransformEnd(s shape.Shape, t Transform) shape.Shape {
	s = s.Clone()
	sx, sy := safeScale(t.ScaleX), safeScale(t.ScaleY)
	if geom.Finite(t.Rotation) {
		s.Rotation = t.Rotation
	}
	x, y := s.X, s.Y
	if geom.Finite(t.X) && geom.Finite(t.Y) {
		x, y = t.X, t.Y
	}

	switch s.Type {
	case shape.KindCircle:
		s.CX, s.CY = x, y
		s.Rotation = 0
		// the factor that moved farthest from 1 wins
		f := sx
		if math.Abs(sy-1) > math.Abs(sx-1) {
			f = sy
		}
		s.R = math.Max(MinSize, s.R*f)
	case shape.KindEllipse:
		s.X, s.Y = x, y
		s.RadiusX = math.Max(MinSize, s.RadiusX*sx)
		s.RadiusY = math.Max(MinSize, s.RadiusY*sy)
	case shape.KindText:
		s.X, s.Y = x, y
		s.Width = math.Max(MinSize, s.Width*sx)
		s.Height = math.Max(MinSize, s.Height*sy)
		s.FontSize = math.Max(1, s.FontSize*sy)
	case shape.KindPath:
		s.X, s.Y = x, y
		if sx != 1 || sy != 1 {
			s = shape.ApplyFrame(s, geom.Translate(x, y).Mul(geom.Scale(sx, sy)).Mul(geom.Translate(-x, -y)))
			s.X, s.Y = x, y
		}
		s.Width = math.Max(MinSize, s.Width)
		s.Height = math.Max(MinSize, s.Height)
	default:
		if shape.UsesPoints(s.Type) {
			s.X, s.Y = x, y
			for i := 0; i+1 < len(s.Points); i += 2 {
				s.Points[i] *= sx
				s.Points[i+1] *= sy
			}
			if s.Type == shape.KindThickArrow {
				g := math.Sqrt(sx * sy)
				s.ShaftWidth = math.Max(MinSize, s.ShaftWidth*g)
				s.HeadLength = math.Max(MinSize, s.HeadLength*g)
				s.HeadWidth = math.Max(MinSize, s.HeadWidth*g)
			}
			break
		}
		s.X, s.Y = x, y
		s.Width = math.Max(MinSize, s.Width*sx)
		s.Height = math.Max(MinSize, s.Height*sy)
	}
	s.StrokeWidth = math.Max(0, s.StrokeWidth)
	return s
}

// safeScale maps unusable factors to 1 and folds mirroring into magnitude.
func safeScale(v float64) float64 {
	if !geom.Finite(v) || v == 0 {
		return 1
	}
	return math.Abs(v)
}

// Rotate sets the rotation of s in degrees, normalized to [0,360).
func Rotate(s shape.Shape, deg float64) shape.Shape {
	s = s.Clone()
	if !geom.Finite(deg) || s.Type == shape.KindCircle {
		return s
	}
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	s.Rotation = deg
	return s
}
