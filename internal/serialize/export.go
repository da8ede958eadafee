/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package serialize

import (
	"encoding/json"
	"math"

	"vecdraw/internal/drawing"
	"vecdraw/internal/geom"
	"vecdraw/internal/shape"
)

// DefaultPrecision is the number of decimals kept in exported path data.
const DefaultPrecision = 2

// NormalizeMode selects an optional rewrite of exported coordinates.
type NormalizeMode string

const (
	NormalizeNone NormalizeMode = ""
	// NormalizeTranslateMinToOrigin moves each path so its minimum x,y is the
	// origin and records the removed offset in Translate.
	NormalizeTranslateMinToOrigin NormalizeMode = "translateMinToOrigin"
)

// ExportOptions control Export.
type ExportOptions struct {
	Precision int
	Normalize NormalizeMode
}

// Vec is an offset.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// OutShape is one shape reduced to a path. The path is drawn, in the frame
// of its container, moved by Translate and then rotated by Rotation degrees
// about the center of the moved path's bounds.
type OutShape struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	D           string   `json:"d"`
	Stroke      string   `json:"stroke,omitempty"`
	StrokeWidth float64  `json:"strokeWidth"`
	Fill        string   `json:"fill,omitempty"`
	Rotation    *float64 `json:"rotation,omitempty"`
	Translate   *Vec     `json:"translate,omitempty"`
}

// OutGroup nests the shapes of one group with its frame.
type OutGroup struct {
	ID       string     `json:"id"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Rotation float64    `json:"rotation,omitempty"`
	ScaleX   float64    `json:"scaleX"`
	ScaleY   float64    `json:"scaleY"`
	Shapes   []OutShape `json:"shapes"`
	Groups   []OutGroup `json:"groups,omitempty"`
}

// Document is the export format. Grouped shapes appear only under their group.
type Document struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Shapes     []OutShape `json:"shapes"`
	Groups     []OutGroup `json:"groups"`
	Background *string    `json:"background"`
}

// Export reduces d to a Document.
func Export(d *drawing.Drawing, opts ExportOptions) Document {
	if opts.Precision <= 0 {
		opts.Precision = DefaultPrecision
	}
	doc := Document{
		ID:         d.ID,
		Name:       d.Name,
		Shapes:     []OutShape{},
		Groups:     []OutGroup{},
		Background: background(d.Background),
	}
	for _, s := range d.Shapes {
		if !d.IsInGroup(s.ID) {
			doc.Shapes = append(doc.Shapes, exportShape(s, opts))
		}
	}
	for _, g := range d.Groups {
		doc.Groups = append(doc.Groups, exportGroup(d, g, opts, map[*drawing.Group]bool{}))
	}
	return doc
}

// ExportJSON is Export followed by indented JSON encoding.
func ExportJSON(d *drawing.Drawing, opts ExportOptions) ([]byte, error) {
	return json.MarshalIndent(Export(d, opts), "", "  ")
}

func exportGroup(d *drawing.Drawing, g *drawing.Group, opts ExportOptions, seen map[*drawing.Group]bool) OutGroup {
	seen[g] = true
	out := OutGroup{ID: g.ID, X: g.X, Y: g.Y, Rotation: g.Rotation, ScaleX: nz(g.ScaleX), ScaleY: nz(g.ScaleY), Shapes: []OutShape{}}
	for _, id := range g.ShapeIDs {
		if s, ok := d.Shape(id); ok {
			out.Shapes = append(out.Shapes, exportShape(s, opts))
		}
	}
	for _, c := range g.Groups {
		if c != nil && !seen[c] {
			out.Groups = append(out.Groups, exportGroup(d, c, opts, seen))
		}
	}
	return out
}

func nz(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// exportShape builds the path of s without its rotation. The unrotated
// outline is placed so that turning it about its own center reproduces the
// shape's rotation about its anchor.
func exportShape(s shape.Shape, opts ExportOptions) OutShape {
	out := OutShape{ID: s.ID, Type: string(s.Type), Stroke: s.Stroke, StrokeWidth: math.Max(0, s.StrokeWidth), Fill: s.Fill}
	local := shape.LocalOutlines(s)
	frame := shape.Frame(s)
	rot := s.Rotation
	if s.Type == shape.KindCircle {
		rot = 0
	}
	at := frame.Apply(geom.Pt{})
	if rot != 0 {
		if lb, ok := localBounds(local); ok {
			lc := lb.Center()
			r := geom.Rotate(geom.Deg2Rad(rot)).Apply(lc)
			at = at.Add(r).Sub(lc)
		}
		rv := geom.Round(rot, opts.Precision)
		out.Rotation = &rv
	}
	for i := range local {
		for j, p := range local[i].Points {
			local[i].Points[j] = p.Add(at)
		}
	}
	if opts.Normalize == NormalizeTranslateMinToOrigin {
		if b, ok := localBounds(local); ok {
			t := Vec{X: geom.Round(b.X, opts.Precision), Y: geom.Round(b.Y, opts.Precision)}
			for i := range local {
				for j, p := range local[i].Points {
					local[i].Points[j] = geom.Pt{X: p.X - t.X, Y: p.Y - t.Y}
				}
			}
			out.Translate = &t
		}
	}
	out.D = shape.FormatPathData(local, opts.Precision)
	return out
}

func localBounds(pls []shape.Polyline) (geom.Rect, bool) {
	var pts []float64
	for _, pl := range pls {
		pts = append(pts, shape.Flatten(pl.Points)...)
	}
	return geom.BoundsOf(pts, 0, 0)
}
