/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package drawing holds one editable document: the committed shape
// collection in paint order and the tree of groups that frames some of them.
//
// Shapes that belong to a group store their geometry in that group's local
// frame. The group tree is the single source of membership; the parent
// index is derived from it and rebuilt after every structural change.
package drawing

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"vecdraw/internal/geom"
	"vecdraw/internal/shape"
)

var (
	ErrDuplicateID  = errors.New("duplicate id")
	ErrNotFound     = errors.New("not found")
	ErrCyclicGroups = errors.New("cyclic group membership")
)

// Drawing is a document of shapes and groups.
type Drawing struct {
	ID         string
	Name       string
	Background string
	CreatedAt  time.Time
	Shapes     []shape.Shape
	Groups     []*Group

	parent map[string]string
}

// New returns an empty drawing with a fresh id.
func New(name string) *Drawing {
	if name == "" {
		name = "Untitled"
	}
	return &Drawing{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC(), parent: map[string]string{}}
}

// Clone deep-copies d, groups included.
func (d *Drawing) Clone() *Drawing {
	out := *d
	out.Shapes = make([]shape.Shape, len(d.Shapes))
	for i, s := range d.Shapes {
		out.Shapes[i] = s.Clone()
	}
	out.Groups = make([]*Group, len(d.Groups))
	for i, g := range d.Groups {
		out.Groups[i] = g.clone()
	}
	out.reindex()
	return &out
}

func (d *Drawing) index(id string) int {
	return slices.IndexFunc(d.Shapes, func(s shape.Shape) bool { return s.ID == id })
}

// Has reports whether id names a shape or a group of d.
func (d *Drawing) Has(id string) bool {
	return d.index(id) >= 0 || d.FindGroup(id) != nil
}

// Shape returns the stored shape with the given id. Grouped shapes are
// returned in their group's local frame; see WorldShape.
func (d *Drawing) Shape(id string) (shape.Shape, bool) {
	i := d.index(id)
	if i < 0 {
		return shape.Shape{}, false
	}
	return d.Shapes[i].Clone(), true
}

// Add appends s at the top of the paint order.
func (d *Drawing) Add(s shape.Shape) error {
	if s.ID == "" {
		s.ID = shape.NewID()
	}
	if d.Has(s.ID) {
		return fmt.Errorf("add %s: %w", s.ID, ErrDuplicateID)
	}
	d.Shapes = append(d.Shapes, s.Clone())
	return nil
}

// Replace swaps in s for the stored shape of the same id.
func (d *Drawing) Replace(s shape.Shape) error {
	i := d.index(s.ID)
	if i < 0 {
		return fmt.Errorf("replace %s: %w", s.ID, ErrNotFound)
	}
	d.Shapes[i] = s.Clone()
	return nil
}

// Delete removes the named shapes and groups. Deleting a group deletes its
// members too. Groups left empty are dropped.
func (d *Drawing) Delete(ids ...string) int {
	drop := map[string]bool{}
	for _, id := range ids {
		if g := d.FindGroup(id); g != nil {
			for _, m := range g.memberShapes() {
				drop[m] = true
			}
			d.removeGroup(id)
			continue
		}
		if d.index(id) >= 0 {
			drop[id] = true
		}
	}
	if len(drop) == 0 {
		return 0
	}
	before := len(d.Shapes)
	d.Shapes = slices.DeleteFunc(d.Shapes, func(s shape.Shape) bool { return drop[s.ID] })
	d.Groups = pruneGroups(d.Groups, drop)
	d.reindex()
	return before - len(d.Shapes)
}

// pruneGroups drops references to removed shapes and any group left empty.
func pruneGroups(gs []*Group, drop map[string]bool) []*Group {
	out := gs[:0]
	for _, g := range gs {
		g.ShapeIDs = slices.DeleteFunc(g.ShapeIDs, func(id string) bool { return drop[id] })
		g.Groups = pruneGroups(g.Groups, drop)
		if len(g.ShapeIDs)+len(g.Groups) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// WorldShape returns shape id with the frames of all enclosing groups baked in.
func (d *Drawing) WorldShape(id string) (shape.Shape, bool) {
	s, ok := d.Shape(id)
	if !ok {
		return s, false
	}
	gid, grouped := d.ParentOf(id)
	if !grouped {
		return s, true
	}
	return shape.ApplyFrame(s, d.WorldFrame(gid)), true
}

// WorldShapes returns every shape in paint order in world coordinates.
func (d *Drawing) WorldShapes() []shape.Shape {
	out := make([]shape.Shape, 0, len(d.Shapes))
	for _, s := range d.Shapes {
		w, _ := d.WorldShape(s.ID)
		out = append(out, w)
	}
	return out
}

// Bounds returns the world bounds of a shape or group.
func (d *Drawing) Bounds(id string) (geom.Rect, bool) {
	if g := d.FindGroup(id); g != nil {
		var shapes []shape.Shape
		for _, m := range g.memberShapes() {
			if w, ok := d.WorldShape(m); ok {
				shapes = append(shapes, w)
			}
		}
		return shape.UnionBounds(shapes)
	}
	w, ok := d.WorldShape(id)
	if !ok {
		return geom.Rect{}, false
	}
	return shape.Bounds(w)
}

// TopLevel lists the ids that are not inside any group: ungrouped shapes in
// paint order followed by the top-level groups.
func (d *Drawing) TopLevel() []string {
	var out []string
	for _, s := range d.Shapes {
		if !d.IsInGroup(s.ID) {
			out = append(out, s.ID)
		}
	}
	for _, g := range d.Groups {
		out = append(out, g.ID)
	}
	return out
}

// Move translates a shape or a whole group by (dx,dy) in world space.
func (d *Drawing) Move(id string, dx, dy float64) bool {
	if g := d.FindGroup(id); g != nil {
		// a nested group moves in its parent's frame
		p, _ := d.ParentOf(id)
		v := d.toLocalDelta(p, dx, dy)
		g.X += v.X
		g.Y += v.Y
		return true
	}
	i := d.index(id)
	if i < 0 {
		return false
	}
	p, _ := d.ParentOf(id)
	v := d.toLocalDelta(p, dx, dy)
	d.Shapes[i] = d.Shapes[i].Moved(v.X, v.Y)
	return true
}

// toLocalDelta expresses a world displacement in the frame of group gid.
func (d *Drawing) toLocalDelta(gid string, dx, dy float64) geom.Pt {
	if gid == "" {
		return geom.Pt{X: dx, Y: dy}
	}
	inv, ok := d.WorldFrame(gid).Invert()
	if !ok {
		return geom.Pt{X: dx, Y: dy}
	}
	inv.E, inv.F = 0, 0
	return inv.Apply(geom.Pt{X: dx, Y: dy})
}

// BringToFront moves the named shapes, or every member of a named group, to
// the top of the paint order, keeping their relative order.
func (d *Drawing) BringToFront(ids ...string) { d.restack(ids, true) }

// SendToBack is BringToFront towards the bottom.
func (d *Drawing) SendToBack(ids ...string) { d.restack(ids, false) }

func (d *Drawing) restack(ids []string, front bool) {
	pick := map[string]bool{}
	for _, id := range ids {
		if g := d.FindGroup(id); g != nil {
			for _, m := range g.memberShapes() {
				pick[m] = true
			}
			continue
		}
		pick[id] = true
	}
	var moved, rest []shape.Shape
	for _, s := range d.Shapes {
		if pick[s.ID] {
			moved = append(moved, s)
		} else {
			rest = append(rest, s)
		}
	}
	if front {
		d.Shapes = append(rest, moved...)
	} else {
		d.Shapes = append(moved, rest...)
	}
}
