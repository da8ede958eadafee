/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"vecdraw/internal/geom"
)

// Raw is an untrusted shape record as decoded from JSON.
type Raw map[string]any

// Normalize turns an untrusted record into a valid Shape. Unknown types,
// missing or non-finite geometry yield ok=false; nothing panics. Legacy
// forms are migrated: a lone "radius" feeds both ellipse radii and a circle
// given by x,y instead of cx,cy becomes an ellipse.
func Normalize(raw Raw, st Style) (Shape, bool) {
	if raw == nil {
		return Shape{}, false
	}
	k := Kind(strings.TrimSpace(raw.str("type")))
	b, ok := registry[k]
	if !ok {
		return Shape{}, false
	}
	s, ok := b.Normalize(raw, st.withDefaults())
	if !ok {
		return Shape{}, false
	}
	return s, true
}

// number coerces JSON numbers and numeric strings.
func number(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	return f, geom.Finite(f)
}

func (r Raw) has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// num returns a required finite number.
func (r Raw) num(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	return number(v)
}

// numOr returns def when key is absent; a present but invalid value fails.
func (r Raw) numOr(key string, def float64) (float64, bool) {
	if !r.has(key) {
		return def, true
	}
	return number(r[key])
}

func (r Raw) str(key string) string {
	switch t := r[key].(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	}
	return ""
}

func (r Raw) strOr(key, def string) string {
	if s := strings.TrimSpace(r.str(key)); s != "" {
		return s
	}
	return def
}

func (r Raw) boolean(key string) bool {
	switch t := r[key].(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(t))
		return b
	case float64:
		return t != 0
	}
	return false
}

// points accepts a flat number list, a list of [x,y] pairs or a list of {x,y}
// objects. Any non-finite entry fails; a trailing odd coordinate is dropped.
func (r Raw) points(key string) ([]float64, bool) {
	list, ok := r[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]float64, 0, len(list))
	for _, item := range list {
		switch t := item.(type) {
		case []any:
			if len(t) != 2 {
				return nil, false
			}
			x, okx := number(t[0])
			y, oky := number(t[1])
			if !okx || !oky {
				return nil, false
			}
			out = append(out, x, y)
		case map[string]any:
			x, okx := Raw(t).num("x")
			y, oky := Raw(t).num("y")
			if !okx || !oky {
				return nil, false
			}
			out = append(out, x, y)
		default:
			v, ok := number(item)
			if !ok {
				return nil, false
			}
			out = append(out, v)
		}
	}
	if len(out)%2 == 1 {
		out = out[:len(out)-1]
	}
	return out, true
}

// common reads the attributes every kind shares.
func common(r Raw, k Kind, st Style) (Shape, bool) {
	s := Shape{Type: k, ID: strings.TrimSpace(r.str("id"))}
	if s.ID == "" {
		s.ID = NewID()
	}
	var ok [4]bool
	s.X, ok[0] = r.numOr("x", 0)
	s.Y, ok[1] = r.numOr("y", 0)
	s.Rotation, ok[2] = r.numOr("rotation", 0)
	s.StrokeWidth, ok[3] = r.numOr("strokeWidth", st.StrokeWidth)
	for _, v := range ok {
		if !v {
			return Shape{}, false
		}
	}
	s.Rotation = math.Mod(s.Rotation, 360)
	s.StrokeWidth = math.Max(0, s.StrokeWidth)
	s.Stroke = r.strOr("stroke", st.Stroke)
	s.Fill = r.strOr("fill", st.Fill)
	return s, true
}

func normalizeBox(k Kind) func(Raw, Style) (Shape, bool) {
	return func(r Raw, st Style) (Shape, bool) {
		s, ok := common(r, k, st)
		if !ok {
			return Shape{}, false
		}
		w, okw := r.num("width")
		h, okh := r.num("height")
		if !okw || !okh {
			return Shape{}, false
		}
		if k == KindRect {
			// a box dragged up/left may arrive with negative extents
			if w < 0 {
				s.X, w = s.X+w, -w
			}
			if h < 0 {
				s.Y, h = s.Y+h, -h
			}
		}
		s.Width, s.Height = math.Abs(w), math.Abs(h)
		return s, true
	}
}

func ellipseRadii(r Raw) (rx, ry float64, ok bool) {
	rad, hasRad := r.num("radius")
	if !hasRad {
		rad, hasRad = r.num("r")
	}
	rx, okx := r.num("radiusX")
	ry, oky := r.num("radiusY")
	switch {
	case okx && oky:
	case okx:
		ry = rx
		if hasRad {
			ry = rad
		}
	case oky:
		rx = ry
		if hasRad {
			rx = rad
		}
	case hasRad:
		rx, ry = rad, rad
	default:
		return 0, 0, false
	}
	return math.Abs(rx), math.Abs(ry), true
}

func normalizeEllipse(r Raw, st Style) (Shape, bool) {
	s, ok := common(r, KindEllipse, st)
	if !ok {
		return Shape{}, false
	}
	if s.RadiusX, s.RadiusY, ok = ellipseRadii(r); !ok {
		return Shape{}, false
	}
	return s, true
}

func normalizeCircle(r Raw, st Style) (Shape, bool) {
	if !r.has("cx") && !r.has("cy") {
		// legacy circle anchored at x,y
		return normalizeEllipse(r, st)
	}
	s, ok := common(r, KindCircle, st)
	if !ok {
		return Shape{}, false
	}
	s.X, s.Y = 0, 0
	cx, okx := r.num("cx")
	cy, oky := r.num("cy")
	rad, okr := r.num("r")
	if !okr {
		rad, okr = r.num("radius")
	}
	if !okx || !oky || !okr {
		return Shape{}, false
	}
	s.CX, s.CY, s.R = cx, cy, math.Abs(rad)
	return s, true
}

func normalizePoints(k Kind) func(Raw, Style) (Shape, bool) {
	return func(r Raw, st Style) (Shape, bool) {
		s, ok := common(r, k, st)
		if !ok {
			return Shape{}, false
		}
		pts, ok := r.points("points")
		if !ok {
			return Shape{}, false
		}
		n := len(pts) / 2
		// two-point curves get synthesized controls
		if n == 2 && (k == KindQCurve || k == KindCCurve) {
			a, b := geom.Pt{X: pts[0], Y: pts[1]}, geom.Pt{X: pts[2], Y: pts[3]}
			if k == KindQCurve {
				c := QuadControl(a, b)
				pts = []float64{a.X, a.Y, c.X, c.Y, b.X, b.Y}
			} else {
				c1, c2 := CubicControls(a, b)
				pts = []float64{a.X, a.Y, c1.X, c1.Y, c2.X, c2.Y, b.X, b.Y}
			}
			n = len(pts) / 2
		}
		lo, hi := VertexLimits(k)
		if n < lo || (hi > 0 && n != hi) {
			return Shape{}, false
		}
		s.Points = pts

		var okv [5]bool
		switch k {
		case KindLine, KindFreehand:
			s.LineCap = r.strOr("lineCap", "round")
			s.LineJoin = r.strOr("lineJoin", "round")
			s.Closed = r.boolean("closed")
			s.Tension, okv[0] = r.numOr("tension", 0)
			s.Tension = math.Max(0, s.Tension)
		case KindPolygon:
			s.Closed = true
		case KindArrow:
			s.PointerLength, okv[0] = r.numOr("pointerLength", DefaultPointerLength)
			s.PointerWidth, okv[1] = r.numOr("pointerWidth", DefaultPointerWidth)
			s.PointerLength, s.PointerWidth = math.Max(0, s.PointerLength), math.Max(0, s.PointerWidth)
		case KindThickArrow:
			s.ShaftWidth, okv[0] = r.numOr("shaftWidth", DefaultShaftWidth)
			s.HeadLength, okv[1] = r.numOr("headLength", DefaultHeadLength)
			s.HeadWidth, okv[2] = r.numOr("headWidth", DefaultHeadWidth)
			s.ShaftWidth = math.Max(0, s.ShaftWidth)
			s.HeadLength = math.Max(0, s.HeadLength)
			s.HeadWidth = math.Max(0, s.HeadWidth)
		}
		for i := 0; i < 3; i++ {
			if r.has(extraKeys[k][i]) && !okv[i] {
				return Shape{}, false
			}
		}
		return s, true
	}
}

// extraKeys lists the optional numeric keys normalizePoints checks per kind.
var extraKeys = map[Kind][3]string{
	KindLine:       {"tension"},
	KindFreehand:   {"tension"},
	KindArrow:      {"pointerLength", "pointerWidth"},
	KindThickArrow: {"shaftWidth", "headLength", "headWidth"},
}

func normalizeText(r Raw, st Style) (Shape, bool) {
	s, ok := common(r, KindText, st)
	if !ok {
		return Shape{}, false
	}
	v, present := r["text"]
	if !present {
		return Shape{}, false
	}
	switch t := v.(type) {
	case string:
		s.Text = t
	case float64:
		s.Text = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return Shape{}, false
	}
	if s.FontSize, ok = r.numOr("fontSize", st.FontSize); !ok {
		return Shape{}, false
	}
	if s.FontSize <= 0 {
		s.FontSize = st.FontSize
	}
	s.FontFamily = r.strOr("fontFamily", st.FontFamily)
	switch a := r.strOr("align", "left"); a {
	case "left", "center", "right":
		s.Align = a
	default:
		s.Align = "left"
	}
	mw, mh := MeasureText(s.Text, s.FontSize)
	w, okw := r.numOr("width", mw)
	h, okh := r.numOr("height", mh)
	if !okw || !okh {
		return Shape{}, false
	}
	if w <= 0 {
		w = mw
	}
	if h <= 0 {
		h = mh
	}
	s.Width, s.Height = w, h
	return s, true
}

func normalizePath(r Raw, st Style) (Shape, bool) {
	s, ok := common(r, KindPath, st)
	if !ok {
		return Shape{}, false
	}
	s.D = strings.TrimSpace(r.str("d"))
	box, ok := PathDataBounds(s.D)
	if !ok {
		return Shape{}, false
	}
	w, okw := r.numOr("width", box.X+box.W)
	h, okh := r.numOr("height", box.Y+box.H)
	if !okw || !okh {
		return Shape{}, false
	}
	s.Width, s.Height = math.Abs(w), math.Abs(h)
	return s, true
}

func normalizeSVG(r Raw, st Style) (Shape, bool) {
	s, ok := common(r, KindSVG, st)
	if !ok {
		return Shape{}, false
	}
	s.SVG = strings.TrimSpace(r.str("svg"))
	if s.SVG == "" {
		return Shape{}, false
	}
	w, okw := r.numOr("width", 100)
	h, okh := r.numOr("height", 100)
	if !okw || !okh {
		return Shape{}, false
	}
	s.Width, s.Height = math.Abs(w), math.Abs(h)
	return s, true
}
