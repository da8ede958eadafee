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
	"fmt"
	"strings"
	"time"

	"vecdraw/internal/drawing"
	"vecdraw/internal/geom"
	applog "vecdraw/internal/log"
	"vecdraw/internal/shape"
)

// maxGroupDepth bounds the nesting of inline group objects.
const maxGroupDepth = 256

// Stats counts what an import kept and dropped.
type Stats struct {
	Shapes  int
	Groups  int
	Dropped int
}

// Import parses data into a fresh drawing. data may be a bare array of
// shapes, a native envelope or an export document. Entries that fail
// normalization are dropped silently; only a malformed document as a whole
// yields an error, in which case no drawing is returned.
func Import(data []byte, st shape.Style) (*drawing.Drawing, Stats, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, Stats{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	b := &builder{d: drawing.New(""), st: st, nodes: map[string]*groupNode{}, ids: map[string]bool{}}
	var shapes []any
	switch v := root.(type) {
	case []any:
		shapes = v
	case map[string]any:
		list, ok := v["shapes"].([]any)
		if !ok {
			return nil, Stats{}, ErrNoShapes
		}
		if _, versioned := v["version"]; versioned {
			if err := ValidateEnvelope(data); err != nil {
				return nil, Stats{}, err
			}
		} else if _, named := v["name"]; named {
			b.export = true
		}
		shapes = list
		b.header(v)
	default:
		return nil, Stats{}, ErrNoShapes
	}

	for _, item := range shapes {
		raw, ok := item.(map[string]any)
		if !ok {
			b.stats.Dropped++
			continue
		}
		if raw["type"] == "group" {
			b.group(raw, "", 0)
			continue
		}
		b.shape(raw)
	}
	if m, ok := root.(map[string]any); ok {
		if gs, ok := m["groups"].([]any); ok {
			for _, item := range gs {
				if raw, ok := item.(map[string]any); ok {
					b.group(raw, "", 0)
				}
			}
		}
	}
	if err := b.assemble(); err != nil {
		return nil, Stats{}, err
	}
	b.stats.Shapes = len(b.d.Shapes)
	b.stats.Groups = len(b.d.GroupIDs())
	applog.WithComponent("serialize").Debug("import", "shapes", b.stats.Shapes, "groups", b.stats.Groups, "dropped", b.stats.Dropped)
	return b.d, b.stats, nil
}

type groupNode struct {
	g      *drawing.Group
	parent string
	refs   []string
}

type builder struct {
	d      *drawing.Drawing
	st     shape.Style
	export bool
	stats  Stats

	nodes       map[string]*groupNode
	order       []string
	shapeParent [][2]string
	ids         map[string]bool
}

func (b *builder) header(m map[string]any) {
	if s, ok := m["id"].(string); ok && s != "" {
		b.d.ID = s
	}
	if s, ok := m["name"].(string); ok {
		b.d.Name = s
	}
	if s, ok := m["background"].(string); ok {
		b.d.Background = s
	}
	if s, ok := m["createdAt"].(string); ok {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			b.d.CreatedAt = t
		}
	}
}

// shape normalizes one raw shape and adds it. A missing or repeated id is
// replaced. It returns the stored id, or "" when the entry was dropped.
func (b *builder) shape(raw map[string]any) string {
	var (
		s  shape.Shape
		ok bool
	)
	d, hasD := raw["d"].(string)
	if b.export && hasD {
		s, ok = b.pathFallback(raw, d)
	} else {
		s, ok = shape.Normalize(shape.Raw(raw), b.st)
		if !ok && hasD {
			s, ok = b.pathFallback(raw, d)
		}
	}
	if !ok {
		b.stats.Dropped++
		return ""
	}
	if s.ID == "" || b.ids[s.ID] || b.nodes[s.ID] != nil {
		s.ID = shape.NewID()
	}
	if err := b.d.Add(s); err != nil {
		b.stats.Dropped++
		return ""
	}
	b.ids[s.ID] = true
	if p, ok := raw["parentId"].(string); ok && p != "" {
		b.shapeParent = append(b.shapeParent, [2]string{s.ID, p})
	}
	return s.ID
}

// pathFallback keeps any entry that carries path data as a path shape. In
// export documents the entry is placed by translate and rotated about the
// center of its path; elsewhere x,y and rotation keep their native meaning.
func (b *builder) pathFallback(raw map[string]any, d string) (shape.Shape, bool) {
	r := shape.Raw{"type": string(shape.KindPath), "d": d}
	for _, k := range []string{"id", "stroke", "strokeWidth", "fill"} {
		if v, ok := raw[k]; ok {
			r[k] = v
		}
	}
	if !b.export {
		for _, k := range []string{"x", "y", "rotation"} {
			if v, ok := raw[k]; ok {
				r[k] = v
			}
		}
		return shape.Normalize(r, b.st)
	}

	var t geom.Pt
	if tv, ok := raw["translate"].(map[string]any); ok {
		t.X, _ = tv["x"].(float64)
		t.Y, _ = tv["y"].(float64)
	}
	rot, _ := raw["rotation"].(float64)
	if !t.Finite() || !geom.Finite(rot) {
		return shape.Shape{}, false
	}
	if rot != 0 {
		subs, err := shape.ParsePathData(d)
		if err != nil {
			return shape.Shape{}, false
		}
		box, _ := shape.PathDataBounds(d)
		c := box.Center()
		pls := make([]shape.Polyline, len(subs))
		for i, sp := range subs {
			pts := make([]geom.Pt, len(sp.Points))
			for j, p := range sp.Points {
				pts[j] = p.Sub(c)
			}
			pls[i] = shape.Polyline{Points: pts, Closed: sp.Closed}
		}
		r["d"] = shape.FormatPathData(pls, 6)
		t = t.Add(c)
		r["rotation"] = rot
	}
	r["x"], r["y"] = t.X, t.Y
	s, ok := shape.Normalize(r, b.st)
	if ok {
		// width and height span the path itself, not its offset from the anchor
		if box, ok := shape.PathDataBounds(s.D); ok {
			s.Width, s.Height = box.W, box.H
		}
	}
	return s, ok
}

// group records a group object and its inline children. parent is the id of
// the enclosing group object, if any.
func (b *builder) group(raw map[string]any, parent string, depth int) {
	if depth > maxGroupDepth {
		return
	}
	id, _ := raw["id"].(string)
	if id == "" || b.nodes[id] != nil || b.ids[id] {
		id = shape.NewGroupID()
	}
	g := &drawing.Group{ID: id, ScaleX: 1, ScaleY: 1}
	g.X, _ = finite(raw["x"])
	g.Y, _ = finite(raw["y"])
	g.Rotation, _ = finite(raw["rotation"])
	sx, sy := scaleOf(raw)
	g.ScaleX, g.ScaleY = sx, sy

	n := &groupNode{g: g, parent: parent}
	if parent == "" {
		n.parent, _ = raw["parentId"].(string)
	}
	for _, key := range []string{"shapeIds", "children"} {
		if list, ok := raw[key].([]any); ok {
			for _, v := range list {
				if s, ok := v.(string); ok && s != "" {
					n.refs = append(n.refs, s)
				}
			}
		}
	}
	b.nodes[id] = n
	b.order = append(b.order, id)

	if list, ok := raw["shapes"].([]any); ok {
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				if ref := b.shape(m); ref != "" {
					n.refs = append(n.refs, ref)
				}
			} else {
				b.stats.Dropped++
			}
		}
	}
	if list, ok := raw["groups"].([]any); ok {
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				b.group(m, id, depth+1)
			}
		}
	}
}

func finite(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || !geom.Finite(f) {
		return 0, false
	}
	return f, true
}

// scaleOf reads scaleX/scaleY, a scale {x,y} object or a scalar scale.
func scaleOf(raw map[string]any) (sx, sy float64) {
	sx, sy = 1, 1
	switch s := raw["scale"].(type) {
	case float64:
		if geom.Finite(s) && s != 0 {
			sx, sy = s, s
		}
	case map[string]any:
		if v, ok := finite(s["x"]); ok && v != 0 {
			sx = v
		}
		if v, ok := finite(s["y"]); ok && v != 0 {
			sy = v
		}
	}
	if v, ok := finite(raw["scaleX"]); ok && v != 0 {
		sx = v
	}
	if v, ok := finite(raw["scaleY"]); ok && v != 0 {
		sy = v
	}
	return sx, sy
}

// assemble links groups to their parents and members, rejects cycles and
// drops groups that ended up empty.
func (b *builder) assemble() error {
	owner := map[string]string{}
	addShape := func(n *groupNode, sid string) {
		if _, taken := owner[sid]; taken {
			return
		}
		if _, ok := b.d.Shape(sid); !ok {
			return
		}
		owner[sid] = n.g.ID
		n.g.ShapeIDs = append(n.g.ShapeIDs, sid)
	}
	for _, id := range b.order {
		n := b.nodes[id]
		for _, ref := range n.refs {
			if c := b.nodes[ref]; c != nil {
				if c.parent == "" && ref != id {
					c.parent = id
				}
				continue
			}
			addShape(n, ref)
		}
	}
	for _, sp := range b.shapeParent {
		if n := b.nodes[sp[1]]; n != nil {
			addShape(n, sp[0])
		}
	}

	for _, id := range b.order {
		seen := map[string]bool{}
		for cur := id; cur != ""; cur = b.nodes[cur].parent {
			if seen[cur] {
				return fmt.Errorf("group %s: %w", cur, ErrCyclicGroups)
			}
			seen[cur] = true
			if b.nodes[cur] == nil {
				break
			}
			if p := b.nodes[cur].parent; p != "" && b.nodes[p] == nil {
				// unknown parent: treat as top level
				b.nodes[cur].parent = ""
			}
		}
	}

	var roots []*drawing.Group
	for _, id := range b.order {
		n := b.nodes[id]
		if n.parent == "" {
			roots = append(roots, n.g)
			continue
		}
		p := b.nodes[n.parent].g
		p.Groups = append(p.Groups, n.g)
	}
	b.d.Groups = dropEmpty(roots)
	if err := b.d.Validate(); err != nil {
		return fmt.Errorf("import groups: %w", err)
	}
	return nil
}

func dropEmpty(gs []*drawing.Group) []*drawing.Group {
	var out []*drawing.Group
	for _, g := range gs {
		g.Groups = dropEmpty(g.Groups)
		if len(g.ShapeIDs)+len(g.Groups) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// ImportString is Import for a string, trimming surrounding whitespace.
func ImportString(s string, st shape.Style) (*drawing.Drawing, Stats, error) {
	return Import([]byte(strings.TrimSpace(s)), st)
}
