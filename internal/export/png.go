/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/gogpu/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"vecdraw/internal/drawing"
	"vecdraw/internal/geom"
	"vecdraw/internal/shape"
)

// WritePNG rasterizes d with the gg software renderer. Options.Scale sets
// pixels per drawing unit; the canvas is capped at maxPixels per side.
//
// Text is drawn with the fixed 7x13 face and is not rotated.
func WritePNG(w io.Writer, d *drawing.Drawing, opt Options) error {
	opt = opt.withDefaults()
	pg := preparePage(d, opt)
	scale := opt.Scale
	if m := math.Max(pg.box.W, pg.box.H) * scale; m > maxPixels {
		scale *= maxPixels / m
	}
	pw := max(1, int(math.Ceil(pg.box.W*scale)))
	ph := max(1, int(math.Ceil(pg.box.H*scale)))
	toPx := func(p geom.Pt) geom.Pt {
		return geom.Pt{X: (p.X - pg.box.X) * scale, Y: (p.Y - pg.box.Y) * scale}
	}

	dc := gg.NewContext(pw, ph)
	defer func() { _ = dc.Close() }()
	if c, ok := parseColor(pg.bg); ok {
		dc.ClearWithColor(c)
	} else {
		dc.ClearWithColor(gg.White)
	}

	var texts []shape.Shape
	for _, s := range pg.shapes {
		if s.Type == shape.KindText {
			texts = append(texts, s)
			continue
		}
		outlines := renderOutlines(s)
		if fills(s) {
			c, _ := parseColor(s.Fill)
			dc.SetRGBA(c.R, c.G, c.B, c.A)
			if tracePolylines(dc, outlines, toPx, true) {
				if err := dc.Fill(); err != nil {
					return fmt.Errorf("fill %s: %w", s.ID, err)
				}
			}
		}
		if strokes(s) {
			c, _ := parseColor(s.Stroke)
			dc.SetRGBA(c.R, c.G, c.B, c.A)
			dc.SetLineWidth(math.Max(s.StrokeWidth*scale, 0.5))
			if tracePolylines(dc, outlines, toPx, false) {
				if err := dc.Stroke(); err != nil {
					return fmt.Errorf("stroke %s: %w", s.ID, err)
				}
			}
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, pw, ph))
	draw.Draw(img, img.Bounds(), dc.Image(), image.Point{}, draw.Src)
	for _, s := range texts {
		drawText(img, s, toPx(geom.Pt{X: s.X, Y: s.Y}))
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// tracePolylines appends the outlines to the current path. Fill passes skip
// open runs. It reports whether anything was added.
func tracePolylines(dc *gg.Context, pls []shape.Polyline, toPx func(geom.Pt) geom.Pt, closedOnly bool) bool {
	added := false
	for _, pl := range pls {
		if len(pl.Points) < 2 || (closedOnly && !pl.Closed) {
			continue
		}
		p := toPx(pl.Points[0])
		dc.MoveTo(p.X, p.Y)
		for _, q := range pl.Points[1:] {
			q = toPx(q)
			dc.LineTo(q.X, q.Y)
		}
		if pl.Closed {
			dc.ClosePath()
		}
		added = true
	}
	return added
}

func drawText(img *image.RGBA, s shape.Shape, at geom.Pt) {
	c, _ := parseColor(textColor(s))
	face := basicfont.Face7x13
	dr := &font.Drawer{Dst: img, Src: image.NewUniform(c.Color()), Face: face}
	lh := face.Metrics().Height.Round()
	y := int(math.Round(at.Y)) + face.Metrics().Ascent.Round()
	for _, ln := range textLines(s) {
		dr.Dot = fixed.P(int(math.Round(at.X)), y)
		dr.DrawString(ln)
		y += lh
	}
}
