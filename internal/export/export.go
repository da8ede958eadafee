/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a drawing to files: the JSON export document, SVG,
// PDF and PNG. Every renderer works from world-space outlines, so groups,
// rotations and scales are already baked in.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/gg"

	"vecdraw/internal/drawing"
	"vecdraw/internal/geom"
	applog "vecdraw/internal/log"
	"vecdraw/internal/serialize"
	"vecdraw/internal/shape"
)

// Format names an output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatSVG  Format = "svg"
	FormatPDF  Format = "pdf"
	FormatPNG  Format = "png"
)

// ErrUnknownFormat is returned for a format name or extension nobody renders.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts a format name with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	switch f {
	case FormatJSON, FormatSVG, FormatPDF, FormatPNG:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) { return ParseFormat(filepath.Ext(path)) }

// Options controls rendering.
//
//nolint:revive // keep fields explicit for clarity
type Options struct {
	JSON       serialize.ExportOptions
	Padding    float64 // margin around the drawing bounds, in drawing units
	Scale      float64 // PNG pixels per drawing unit
	Background string  // overrides the drawing background when set
}

const (
	defaultPadding = 10
	emptySize      = 100
	maxPixels      = 8192
)

func (o Options) withDefaults() Options {
	if o.Padding < 0 || math.IsNaN(o.Padding) {
		o.Padding = 0
	} else if o.Padding == 0 {
		o.Padding = defaultPadding
	}
	if !(o.Scale > 0) {
		o.Scale = 1
	}
	if o.JSON.Precision <= 0 {
		o.JSON.Precision = serialize.DefaultPrecision
	}
	return o
}

// Write renders d in format f to w.
func Write(w io.Writer, f Format, d *drawing.Drawing, opt Options) error {
	switch f {
	case FormatJSON:
		b, err := serialize.ExportJSON(d, opt.JSON)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = w.Write(b)
		return err
	case FormatSVG:
		return WriteSVG(w, d, opt)
	case FormatPDF:
		return WritePDF(w, d, opt)
	case FormatPNG:
		return WritePNG(w, d, opt)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// WriteFile renders d to path, choosing the format from the extension. The
// file is written to a temporary sibling first and renamed into place.
func WriteFile(path string, d *drawing.Drawing, opt Options) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Write(&buf, f, d, opt); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	applog.WithComponent("export").Info("exported", "format", string(f), "path", path, "bytes", buf.Len())
	return nil
}

// page is a drawing prepared for rendering: world shapes and the visible area.
type page struct {
	box    geom.Rect
	shapes []shape.Shape
	bg     string
}

func preparePage(d *drawing.Drawing, opt Options) page {
	p := page{shapes: d.WorldShapes(), bg: d.Background}
	if opt.Background != "" {
		p.bg = opt.Background
	}
	box, ok := shape.UnionBounds(p.shapes)
	if !ok {
		p.box = geom.R(0, 0, emptySize, emptySize)
		return p
	}
	pad := opt.Padding
	for _, s := range p.shapes {
		pad = math.Max(pad, opt.Padding+s.StrokeWidth/2)
	}
	p.box = geom.R(box.X-pad, box.Y-pad, box.W+2*pad, box.H+2*pad)
	return p
}

// namedColors covers the CSS names the editor palette produces.
var namedColors = map[string]string{
	"black":  "#000000",
	"white":  "#ffffff",
	"red":    "#ff0000",
	"green":  "#008000",
	"blue":   "#0000ff",
	"yellow": "#ffff00",
	"orange": "#ffa500",
	"purple": "#800080",
	"gray":   "#808080",
	"grey":   "#808080",
}

// parseColor resolves a CSS-style color. Empty, transparent and none do not
// paint and report false.
func parseColor(s string) (gg.RGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !shape.HasFill(s) {
		return gg.RGBA{}, false
	}
	if hex, ok := namedColors[s]; ok {
		s = hex
	}
	if !strings.HasPrefix(s, "#") {
		return gg.RGBA{}, false
	}
	switch len(s) {
	case 4, 5, 7, 9:
	default:
		return gg.RGBA{}, false
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return gg.RGBA{}, false
		}
	}
	return gg.Hex(s), true
}

func fills(s shape.Shape) bool {
	if s.Type == shape.KindText || s.Type == shape.KindSVG {
		return false
	}
	_, ok := parseColor(s.Fill)
	return ok
}

func strokes(s shape.Shape) bool {
	if s.Type == shape.KindText || s.StrokeWidth <= 0 {
		return false
	}
	_, ok := parseColor(s.Stroke)
	return ok
}

func textLines(s shape.Shape) []string { return strings.Split(s.Text, "\n") }

func fontSize(s shape.Shape) float64 {
	if s.FontSize > 0 {
		return s.FontSize
	}
	return shape.DefaultStyle.FontSize
}

func textColor(s shape.Shape) string {
	for _, c := range []string{s.Fill, s.Stroke} {
		if _, ok := parseColor(c); ok {
			return c
		}
	}
	return "#000000"
}

// renderOutlines is shape.Outlines plus the pointer head of an arrow.
func renderOutlines(s shape.Shape) []shape.Polyline {
	pls := shape.Outlines(s)
	if s.Type != shape.KindArrow || s.PointerLength <= 0 || len(pls) == 0 {
		return pls
	}
	pts := pls[0].Points
	if len(pts) < 2 {
		return pls
	}
	tip, from := pts[len(pts)-1], pts[len(pts)-2]
	l := tip.Dist(from)
	if l == 0 {
		return pls
	}
	ux, uy := (tip.X-from.X)/l, (tip.Y-from.Y)/l
	hw := s.PointerWidth / 2
	base := geom.Pt{X: tip.X - ux*s.PointerLength, Y: tip.Y - uy*s.PointerLength}
	head := []geom.Pt{
		tip,
		{X: base.X - uy*hw, Y: base.Y + ux*hw},
		{X: base.X + uy*hw, Y: base.Y - ux*hw},
	}
	return append(pls, shape.Polyline{Points: head, Closed: true})
}
