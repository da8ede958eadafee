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
	"strings"
	"testing"

	"vecdraw/internal/geom"
)

func TestParsePathData(t *testing.T) {
	subs, err := ParsePathData("M10,10 l 5 0 h5 V20 z m1 1 2 2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("want 2 subpaths, got %d", len(subs))
	}
	want := []geom.Pt{{10, 10}, {15, 10}, {20, 10}, {20, 20}}
	for i, p := range want {
		if subs[0].Points[i] != p {
			t.Fatalf("point %d = %v want %v", i, subs[0].Points[i], p)
		}
	}
	if !subs[0].Closed || subs[1].Closed {
		t.Fatalf("closed flags wrong: %+v", subs)
	}
	// relative moveto after Z starts from the subpath start; implicit repeats are lineto
	if subs[1].Points[0] != (geom.Pt{X: 11, Y: 11}) || subs[1].Points[1] != (geom.Pt{X: 13, Y: 13}) {
		t.Fatalf("second subpath = %v", subs[1].Points)
	}
}

func TestParsePathDataCurvesAndErrors(t *testing.T) {
	subs, err := ParsePathData("M0 0 Q50 100 100 0 C100 50 0 50 0 0")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	last := subs[0].Points[len(subs[0].Points)-1]
	if len(subs[0].Points) != 1+2*curveSteps || last != (geom.Pt{}) {
		t.Fatalf("curves flattened to %d points ending at %v", len(subs[0].Points), last)
	}
	for _, bad := range []string{"", "   ", "10 10 M0 0", "M0 0 L1", "M0 0 A1 1 0 0 1 2 2", "M0 0 Z 4", "M1e999 0"} {
		if _, err := ParsePathData(bad); err == nil {
			t.Errorf("%q should fail", bad)
		}
	}
}

func TestFormatPathData(t *testing.T) {
	d := FormatPathData([]Polyline{
		{Points: []geom.Pt{{0, 0}, {10.006, 0}, {10, 10}}, Closed: true},
		{Points: []geom.Pt{{1.234, -0.001}}},
	}, 2)
	if d != "M0 0 L10.01 0 L10 10 Z M1.23 0" {
		t.Fatalf("d = %q", d)
	}
	if got := FormatPathData(nil, 2); got != "" {
		t.Fatalf("empty input gave %q", got)
	}
}

func TestApplyFrameTranslateIsExact(t *testing.T) {
	m := geom.Translate(100, 50)
	r := ApplyFrame(Shape{Type: KindRect, X: 1, Y: 2, Width: 3, Height: 4}, m)
	if r.X != 101 || r.Y != 52 || r.Width != 3 {
		t.Fatalf("rect = %+v", r)
	}
	l := ApplyFrame(Shape{Type: KindLine, X: 1, Y: 1, Points: []float64{0, 0, 10, 0}}, m)
	if l.X != 0 || l.Points[0] != 101 || l.Points[2] != 111 {
		t.Fatalf("line = %+v", l)
	}
	c := ApplyFrame(Shape{Type: KindCircle, CX: 1, CY: 1, R: 4}, m)
	if c.CX != 101 || c.R != 4 {
		t.Fatalf("circle = %+v", c)
	}
}

func TestApplyFrameRotateScale(t *testing.T) {
	m := geom.Frame(0, 0, 90, 2, 2)
	r := ApplyFrame(Shape{Type: KindRect, X: 10, Y: 0, Width: 5, Height: 5}, m)
	if math.Abs(r.X) > 1e-9 || math.Abs(r.Y-20) > 1e-9 || r.Rotation != 90 || math.Abs(r.Width-10) > 1e-9 {
		t.Fatalf("rect = %+v", r)
	}
	p := ApplyFrame(Shape{Type: KindPath, D: "M0 0 L10 0"}, geom.Scale(2, 3))
	if !strings.HasPrefix(p.D, "M0 0 L20 0") {
		t.Fatalf("path d not scaled: %q", p.D)
	}
	ta := ApplyFrame(Shape{Type: KindThickArrow, Points: []float64{0, 0, 10, 0}, ShaftWidth: 4, HeadLength: 6, HeadWidth: 8}, geom.Scale(2, 2))
	if ta.ShaftWidth != 8 || ta.Points[2] != 20 {
		t.Fatalf("thick arrow = %+v", ta)
	}
}

func TestFieldsGetSet(t *testing.T) {
	s := Shape{Type: KindRect, Width: 10, Height: 10}
	keys := map[string]bool{}
	for _, f := range Fields(KindRect) {
		keys[f.Key] = true
	}
	for _, k := range []string{"x", "y", "width", "height", "rotation", "stroke", "strokeWidth", "fill"} {
		if !keys[k] {
			t.Fatalf("rect is missing field %q", k)
		}
	}
	s2, ok := Set(s, "width", -5)
	if !ok || s2.Width != 0 {
		t.Fatalf("width should clamp to 0, got %+v", s2)
	}
	if s.Width != 10 {
		t.Fatalf("Set must not mutate its input")
	}
	if _, ok := Set(s, "radiusX", 3); ok {
		t.Fatalf("rect has no radiusX")
	}
	if _, ok := Set(s, "width", "wide"); ok {
		t.Fatalf("non-numeric width must be refused")
	}
	if v, ok := Get(s, "height"); !ok || v.(float64) != 10 {
		t.Fatalf("Get height = %v %v", v, ok)
	}

	l := Shape{Type: KindLine, Points: []float64{0, 0, 1, 1}}
	if _, ok := Set(l, "lineCap", "pointy"); ok {
		t.Fatalf("unknown choice accepted")
	}
	l2, ok := Set(l, "closed", true)
	if !ok || !l2.Closed {
		t.Fatalf("closed not set")
	}

	tx := Shape{Type: KindText, Text: "a", FontSize: 13}
	tx2, ok := Set(tx, "text", "abcd")
	if !ok || tx2.Width != 28 {
		t.Fatalf("text edit should re-measure, got %+v", tx2)
	}
}
