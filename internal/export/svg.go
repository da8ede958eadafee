/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"

	"vecdraw/internal/drawing"
	"vecdraw/internal/geom"
	"vecdraw/internal/shape"
)

// WriteSVG renders d as a standalone SVG document. The viewBox covers the
// drawing bounds plus padding; shapes are emitted in paint order.
func WriteSVG(w io.Writer, d *drawing.Drawing, opt Options) error {
	opt = opt.withDefaults()
	pg := preparePage(d, opt)
	prec := opt.JSON.Precision

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}
	n := func(v float64) string { return num(v, prec) }

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%s\" height=\"%s\" viewBox=\"%s %s %s %s\">\n",
		n(pg.box.W), n(pg.box.H), n(pg.box.X), n(pg.box.Y), n(pg.box.W), n(pg.box.H))
	if d.Name != "" {
		wf("  <title>%s</title>\n", escText(d.Name))
	}
	if _, ok := parseColor(pg.bg); ok {
		wf("  <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" fill=\"%s\"/>\n", n(pg.box.X), n(pg.box.Y), n(pg.box.W), n(pg.box.H), escAttr(pg.bg))
	}

	for _, s := range pg.shapes {
		switch s.Type {
		case shape.KindText:
			fs := fontSize(s)
			family := s.FontFamily
			if family == "" {
				family = shape.DefaultStyle.FontFamily
			}
			wf("  <text data-id=\"%s\" x=\"%s\" y=\"%s\" font-family=\"%s\" font-size=\"%s\" fill=\"%s\"%s>",
				escAttr(s.ID), n(s.X), n(s.Y+fs), escAttr(family), n(fs), escAttr(textColor(s)), rotateAttr(s, prec))
			for i, ln := range textLines(s) {
				dy := "0"
				if i > 0 {
					dy = n(fs * shape.LineHeight)
				}
				wf("<tspan x=\"%s\" dy=\"%s\">%s</tspan>", n(s.X), dy, escText(ln))
			}
			wf("</text>\n")
			continue
		case shape.KindSVG:
			if s.SVG != "" {
				data := base64.StdEncoding.EncodeToString([]byte(s.SVG))
				wf("  <image data-id=\"%s\" x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" href=\"data:image/svg+xml;base64,%s\"%s/>\n",
					escAttr(s.ID), n(s.X), n(s.Y), n(s.Width), n(s.Height), data, rotateAttr(s, prec))
				continue
			}
		}
		path := outlinePath(renderOutlines(s), prec)
		if path == "" {
			continue
		}
		fill := "none"
		if fills(s) {
			fill = s.Fill
		}
		stroke, sw := "none", 0.0
		if strokes(s) {
			stroke, sw = s.Stroke, s.StrokeWidth
		}
		wf("  <path data-id=\"%s\" d=\"%s\" fill=\"%s\" fill-rule=\"evenodd\" stroke=\"%s\" stroke-width=\"%s\"%s/>\n",
			escAttr(s.ID), path, escAttr(fill), escAttr(stroke), n(sw), capJoin(s))
	}
	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// outlinePath encodes polylines as absolute M/L/Z commands.
func outlinePath(pls []shape.Polyline, prec int) string {
	var sb strings.Builder
	for _, pl := range pls {
		if len(pl.Points) < 2 {
			continue
		}
		for i, p := range pl.Points {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			if i == 0 {
				sb.WriteByte('M')
			} else {
				sb.WriteByte('L')
			}
			sb.WriteString(num(p.X, prec))
			sb.WriteByte(' ')
			sb.WriteString(num(p.Y, prec))
		}
		if pl.Closed {
			sb.WriteString(" Z")
		}
	}
	return sb.String()
}

// rotateAttr rotates box-placed elements about their anchor.
func rotateAttr(s shape.Shape, prec int) string {
	if s.Rotation == 0 {
		return ""
	}
	return fmt.Sprintf(" transform=\"rotate(%s %s %s)\"", num(s.Rotation, prec), num(s.X, prec), num(s.Y, prec))
}

func capJoin(s shape.Shape) string {
	var out string
	if s.LineCap != "" {
		out += " stroke-linecap=\"" + escAttr(s.LineCap) + "\""
	}
	if s.LineJoin != "" {
		out += " stroke-linejoin=\"" + escAttr(s.LineJoin) + "\""
	}
	return out
}

func num(v float64, prec int) string {
	v = geom.Round(v, prec)
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escAttr(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString("&quot;")
		case '&':
			sb.WriteString("&amp;")
		case '<':
			sb.WriteString("&lt;")
		case '\n':
			sb.WriteByte(' ')
		case '\r':
			// skip
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func escText(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			sb.WriteString("&amp;")
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
