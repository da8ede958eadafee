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
	"slices"
	"strings"
)

// FieldKind says how a property is edited.
type FieldKind int

const (
	FieldNumber FieldKind = iota
	FieldColor
	FieldText
	FieldBool
	FieldChoice
)

// Field describes one editable property of a kind. Numbers are clamped to
// [Min, Max]; Max of 0 means no upper bound.
type Field struct {
	Key     string
	Kind    FieldKind
	Min     float64
	Max     float64
	Choices []string
}

var (
	fPos      = []Field{{Key: "x", Kind: FieldNumber, Min: math.Inf(-1)}, {Key: "y", Kind: FieldNumber, Min: math.Inf(-1)}}
	fSize     = []Field{{Key: "width", Kind: FieldNumber}, {Key: "height", Kind: FieldNumber}}
	fRotation = Field{Key: "rotation", Kind: FieldNumber, Min: -360, Max: 360}
	fStyle    = []Field{
		{Key: "stroke", Kind: FieldColor},
		{Key: "strokeWidth", Kind: FieldNumber, Max: 200},
		{Key: "fill", Kind: FieldColor},
	}
	fLine = []Field{
		{Key: "lineCap", Kind: FieldChoice, Choices: []string{"butt", "round", "square"}},
		{Key: "lineJoin", Kind: FieldChoice, Choices: []string{"miter", "round", "bevel"}},
		{Key: "closed", Kind: FieldBool},
		{Key: "tension", Kind: FieldNumber, Max: 1},
	}
)

func join(parts ...any) []Field {
	var out []Field
	for _, p := range parts {
		switch t := p.(type) {
		case Field:
			out = append(out, t)
		case []Field:
			out = append(out, t...)
		}
	}
	return out
}

var fieldTable = map[Kind][]Field{
	KindRect:    join(fPos, fSize, fRotation, fStyle),
	KindDiamond: join(fPos, fSize, fRotation, fStyle),
	KindSVG:     join(fPos, fSize, fRotation),
	KindPath:    join(fPos, fRotation, fStyle),
	KindCircle: join(
		Field{Key: "cx", Kind: FieldNumber, Min: math.Inf(-1)},
		Field{Key: "cy", Kind: FieldNumber, Min: math.Inf(-1)},
		Field{Key: "r", Kind: FieldNumber},
		fStyle),
	KindEllipse: join(fPos,
		Field{Key: "radiusX", Kind: FieldNumber},
		Field{Key: "radiusY", Kind: FieldNumber},
		fRotation, fStyle),
	KindLine:     join(fRotation, fStyle, fLine),
	KindFreehand: join(fRotation, fStyle, fLine),
	KindQCurve:   join(fRotation, fStyle),
	KindCCurve:   join(fRotation, fStyle),
	KindPolygon:  join(fRotation, fStyle),
	KindArrow: join(fRotation, fStyle,
		Field{Key: "pointerLength", Kind: FieldNumber},
		Field{Key: "pointerWidth", Kind: FieldNumber}),
	KindThickArrow: join(fRotation, fStyle,
		Field{Key: "shaftWidth", Kind: FieldNumber},
		Field{Key: "headLength", Kind: FieldNumber},
		Field{Key: "headWidth", Kind: FieldNumber}),
	KindText: join(fPos, fRotation,
		Field{Key: "text", Kind: FieldText},
		Field{Key: "fontSize", Kind: FieldNumber, Min: 1, Max: 1000},
		Field{Key: "fontFamily", Kind: FieldText},
		Field{Key: "align", Kind: FieldChoice, Choices: []string{"left", "center", "right"}},
		Field{Key: "stroke", Kind: FieldColor},
		Field{Key: "fill", Kind: FieldColor}),
}

// Fields returns the ordered editable properties of k.
func Fields(k Kind) []Field { return slices.Clone(fieldTable[k]) }

func lookupField(k Kind, key string) (Field, bool) {
	for _, f := range fieldTable[k] {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

func numPtr(s *Shape, key string) *float64 {
	switch key {
	case "x":
		return &s.X
	case "y":
		return &s.Y
	case "rotation":
		return &s.Rotation
	case "strokeWidth":
		return &s.StrokeWidth
	case "width":
		return &s.Width
	case "height":
		return &s.Height
	case "cx":
		return &s.CX
	case "cy":
		return &s.CY
	case "r":
		return &s.R
	case "radiusX":
		return &s.RadiusX
	case "radiusY":
		return &s.RadiusY
	case "tension":
		return &s.Tension
	case "pointerLength":
		return &s.PointerLength
	case "pointerWidth":
		return &s.PointerWidth
	case "shaftWidth":
		return &s.ShaftWidth
	case "headLength":
		return &s.HeadLength
	case "headWidth":
		return &s.HeadWidth
	case "fontSize":
		return &s.FontSize
	}
	return nil
}

func strPtr(s *Shape, key string) *string {
	switch key {
	case "stroke":
		return &s.Stroke
	case "fill":
		return &s.Fill
	case "lineCap":
		return &s.LineCap
	case "lineJoin":
		return &s.LineJoin
	case "text":
		return &s.Text
	case "fontFamily":
		return &s.FontFamily
	case "align":
		return &s.Align
	}
	return nil
}

// Get reads property key of s. ok is false if the kind has no such field.
func Get(s Shape, key string) (any, bool) {
	f, ok := lookupField(s.Type, key)
	if !ok {
		return nil, false
	}
	switch f.Kind {
	case FieldNumber:
		return *numPtr(&s, key), true
	case FieldBool:
		return s.Closed, true
	default:
		return *strPtr(&s, key), true
	}
}

// Set writes property key and returns the updated copy. Numbers are clamped
// to the field's range, choices must be listed, and values of the wrong type
// or non-finite numbers are refused (ok=false, s unchanged). Text edits
// re-measure the label.
func Set(s Shape, key string, v any) (Shape, bool) {
	f, ok := lookupField(s.Type, key)
	if !ok {
		return s, false
	}
	out := s.Clone()
	switch f.Kind {
	case FieldNumber:
		n, ok := number(v)
		if !ok {
			return s, false
		}
		n = math.Max(f.Min, n)
		if f.Max != 0 {
			n = math.Min(f.Max, n)
		}
		*numPtr(&out, key) = n
	case FieldBool:
		b, ok := v.(bool)
		if !ok {
			return s, false
		}
		out.Closed = b
	case FieldChoice:
		str, ok := v.(string)
		if !ok || !slices.Contains(f.Choices, str) {
			return s, false
		}
		*strPtr(&out, key) = str
	case FieldColor, FieldText:
		str, ok := v.(string)
		if !ok {
			return s, false
		}
		if f.Kind == FieldColor {
			str = strings.TrimSpace(str)
		}
		*strPtr(&out, key) = str
	}
	if out.Type == KindText && (key == "text" || key == "fontSize") {
		out.Width, out.Height = MeasureText(out.Text, out.FontSize)
	}
	return out, true
}
