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
	"io"
	"math"

	"github.com/gogpu/gg"
	"github.com/jung-kurt/gofpdf"

	"vecdraw/internal/drawing"
	"vecdraw/internal/shape"
	"vecdraw/internal/version"
)

// WritePDF renders d as a single-page PDF. One drawing unit maps to one
// point; the page is sized to the drawing bounds plus padding.
//
// Text uses the built-in Helvetica so nothing needs embedding.
func WritePDF(w io.Writer, d *drawing.Drawing, opt Options) error {
	opt = opt.withDefaults()
	pg := preparePage(d, opt)
	size := gofpdf.SizeType{Wd: pg.box.W, Ht: pg.box.H}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	pdf.SetTitle(d.Name, true)
	pdf.SetCreator("vecdraw "+version.Version, false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", size)

	ox, oy := -pg.box.X, -pg.box.Y
	if c, ok := parseColor(pg.bg); ok {
		setFillColor(pdf, c)
		pdf.Rect(0, 0, pg.box.W, pg.box.H, "F")
	}

	for _, s := range pg.shapes {
		if s.Type == shape.KindText {
			pdfText(pdf, s, ox, oy)
			continue
		}
		style := ""
		if fills(s) {
			c, _ := parseColor(s.Fill)
			setFillColor(pdf, c)
			style += "F"
		}
		if strokes(s) {
			c, _ := parseColor(s.Stroke)
			setDrawColor(pdf, c)
			pdf.SetLineWidth(s.StrokeWidth)
			setCapJoin(pdf, s)
			style += "D"
		}
		if style == "" {
			continue
		}
		for _, pl := range renderOutlines(s) {
			if len(pl.Points) < 2 {
				continue
			}
			st := style
			if !pl.Closed {
				// open runs are never filled
				if st = "D"; !strokes(s) {
					continue
				}
			}
			pdf.MoveTo(pl.Points[0].X+ox, pl.Points[0].Y+oy)
			for _, p := range pl.Points[1:] {
				pdf.LineTo(p.X+ox, p.Y+oy)
			}
			if pl.Closed {
				pdf.ClosePath()
			}
			pdf.DrawPath(st)
		}
		pdf.SetAlpha(1, "Normal")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func pdfText(pdf *gofpdf.Fpdf, s shape.Shape, ox, oy float64) {
	c, _ := parseColor(textColor(s))
	r, g, b := rgb255(c)
	pdf.SetTextColor(r, g, b)
	fs := fontSize(s)
	pdf.SetFont("Helvetica", "", fs)
	x, y := s.X+ox, s.Y+oy
	if s.Rotation != 0 {
		pdf.TransformBegin()
		// gofpdf rotates counter-clockwise; the drawing's y axis points down
		pdf.TransformRotate(-s.Rotation, x, y)
	}
	for i, ln := range textLines(s) {
		pdf.Text(x, y+fs+float64(i)*fs*shape.LineHeight, ln)
	}
	if s.Rotation != 0 {
		pdf.TransformEnd()
	}
}

func rgb255(c gg.RGBA) (r, g, b int) {
	ch := func(v float64) int { return int(math.Round(math.Max(0, math.Min(1, v)) * 255)) }
	return ch(c.R), ch(c.G), ch(c.B)
}

func setDrawColor(pdf *gofpdf.Fpdf, c gg.RGBA) {
	pdf.SetDrawColor(rgb255(c))
	if c.A < 1 {
		pdf.SetAlpha(c.A, "Normal")
	}
}

func setFillColor(pdf *gofpdf.Fpdf, c gg.RGBA) {
	pdf.SetFillColor(rgb255(c))
	if c.A < 1 {
		pdf.SetAlpha(c.A, "Normal")
	}
}

func setCapJoin(pdf *gofpdf.Fpdf, s shape.Shape) {
	switch s.LineCap {
	case "round", "square":
		pdf.SetLineCapStyle(s.LineCap)
	default:
		pdf.SetLineCapStyle("butt")
	}
	switch s.LineJoin {
	case "round", "bevel":
		pdf.SetLineJoinStyle(s.LineJoin)
	default:
		pdf.SetLineJoinStyle("miter")
	}
}
