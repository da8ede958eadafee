/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package drawing

import (
	"fmt"
	"math"
	"slices"

	"vecdraw/internal/geom"
	"vecdraw/internal/shape"
)

// Group frames its member shapes and nested groups. Members store their
// geometry in the group's local frame; the world position of a member is
// Frame applied to its stored coordinates.
type Group struct {
	ID       string   `json:"id"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Rotation float64  `json:"rotation,omitempty"`
	ScaleX   float64  `json:"scaleX"`
	ScaleY   float64  `json:"scaleY"`
	ShapeIDs []string `json:"shapeIds"`
	Groups   []*Group `json:"groups,omitempty"`
}

// Frame is translate·rotate·scale for g. A zero scale counts as 1.
func (g *Group) Frame() geom.Affine {
	return geom.Frame(g.X, g.Y, g.Rotation, nz(g.ScaleX), nz(g.ScaleY))
}

func (g *Group) identityTransform() bool {
	return g.Rotation == 0 && nz(g.ScaleX) == 1 && nz(g.ScaleY) == 1
}

func nz(v float64) float64 {
	if v == 0 || !geom.Finite(v) {
		return 1
	}
	return v
}

func (g *Group) clone() *Group {
	out := *g
	out.ShapeIDs = slices.Clone(g.ShapeIDs)
	out.Groups = make([]*Group, len(g.Groups))
	for i, c := range g.Groups {
		out.Groups[i] = c.clone()
	}
	return &out
}

// memberShapes lists every shape inside g, nested groups included.
func (g *Group) memberShapes() []string {
	var out []string
	walk([]*Group{g}, func(c *Group, _ *Group) bool {
		out = append(out, c.ShapeIDs...)
		return true
	})
	return out
}

// walk visits groups depth first with their parent (nil at the root). Each
// group is visited once even if the tree is malformed and shares nodes.
// Returning false from fn stops the walk.
func walk(gs []*Group, fn func(g, parent *Group) bool) bool {
	seen := map[*Group]bool{}
	var rec func(gs []*Group, parent *Group) bool
	rec = func(gs []*Group, parent *Group) bool {
		for _, g := range gs {
			if g == nil || seen[g] {
				continue
			}
			seen[g] = true
			if !fn(g, parent) || !rec(g.Groups, g) {
				return false
			}
		}
		return true
	}
	return rec(gs, nil)
}

// FindGroup returns the group with the given id anywhere in the tree.
func (d *Drawing) FindGroup(id string) *Group {
	g, _ := d.findGroup(id)
	return g
}

func (d *Drawing) findGroup(id string) (g, parent *Group) {
	walk(d.Groups, func(c, p *Group) bool {
		if c.ID == id {
			g, parent = c, p
			return false
		}
		return true
	})
	return g, parent
}

// GroupIDs lists every group id, parents before children.
func (d *Drawing) GroupIDs() []string {
	var out []string
	walk(d.Groups, func(g, _ *Group) bool {
		out = append(out, g.ID)
		return true
	})
	return out
}

// IsInGroup reports whether id is a member of any group, searching nested
// groups. The search terminates on malformed cyclic input.
func (d *Drawing) IsInGroup(id string) bool {
	found := false
	walk(d.Groups, func(g, _ *Group) bool {
		if slices.Contains(g.ShapeIDs, id) || slices.ContainsFunc(g.Groups, func(c *Group) bool { return c != nil && c.ID == id }) {
			found = true
			return false
		}
		return true
	})
	return found
}

// ParentOf returns the id of the group that directly contains id.
func (d *Drawing) ParentOf(id string) (string, bool) {
	if d.parent == nil {
		d.reindex()
	}
	p, ok := d.parent[id]
	return p, ok
}

func (d *Drawing) reindex() {
	d.parent = map[string]string{}
	walk(d.Groups, func(g, _ *Group) bool {
		for _, id := range g.ShapeIDs {
			d.parent[id] = g.ID
		}
		for _, c := range g.Groups {
			if c != nil {
				d.parent[c.ID] = g.ID
			}
		}
		return true
	})
}

// Validate checks the group tree: no group reachable twice, no shape in two
// groups, every referenced shape present and ids unique across shapes and
// groups. A valid drawing has its parent index rebuilt.
func (d *Drawing) Validate() error {
	ids := map[string]bool{}
	for _, s := range d.Shapes {
		if ids[s.ID] {
			return fmt.Errorf("shape %s: %w", s.ID, ErrDuplicateID)
		}
		ids[s.ID] = true
	}
	owner := map[string]string{}
	var check func(gs []*Group, path map[*Group]bool) error
	check = func(gs []*Group, path map[*Group]bool) error {
		for _, g := range gs {
			if g == nil {
				continue
			}
			if path[g] {
				return fmt.Errorf("group %s: %w", g.ID, ErrCyclicGroups)
			}
			if ids[g.ID] {
				return fmt.Errorf("group %s: %w", g.ID, ErrDuplicateID)
			}
			ids[g.ID] = true
			for _, sid := range g.ShapeIDs {
				if d.index(sid) < 0 {
					return fmt.Errorf("group %s member %s: %w", g.ID, sid, ErrNotFound)
				}
				if o, dup := owner[sid]; dup {
					return fmt.Errorf("shape %s in groups %s and %s: %w", sid, o, g.ID, ErrDuplicateID)
				}
				owner[sid] = g.ID
			}
			path[g] = true
			if err := check(g.Groups, path); err != nil {
				return err
			}
		}
		return nil
	}
	if err := check(d.Groups, map[*Group]bool{}); err != nil {
		return err
	}
	d.reindex()
	return nil
}

// WorldFrame composes the frames of gid and all its ancestors.
func (d *Drawing) WorldFrame(gid string) geom.Affine {
	var chain []*Group
	seen := map[string]bool{}
	for id := gid; id != "" && !seen[id]; {
		seen[id] = true
		g := d.FindGroup(id)
		if g == nil {
			break
		}
		chain = append(chain, g)
		id, _ = d.ParentOf(id)
	}
	m := geom.Identity
	for i := len(chain) - 1; i >= 0; i-- {
		m = m.Mul(chain[i].Frame())
	}
	return m
}

// Group wraps the given top-level shapes and groups in a new group and
// returns its id. At least two distinct targets are required and none may
// already be inside a group; otherwise ok is false and d is unchanged. The
// group origin is the top-left of the members' combined bounds, and members
// are re-expressed relative to it so nothing moves on screen.
func (d *Drawing) Group(ids ...string) (string, bool) {
	ids = uniq(ids)
	if len(ids) < 2 {
		return "", false
	}
	var shapes []int
	var groups []*Group
	minX, minY := math.Inf(1), math.Inf(1)
	for _, id := range ids {
		if d.IsInGroup(id) {
			return "", false
		}
		b, ok := d.Bounds(id)
		if !ok {
			return "", false
		}
		if i := d.index(id); i >= 0 {
			shapes = append(shapes, i)
		} else if j := slices.IndexFunc(d.Groups, func(g *Group) bool { return g.ID == id }); j >= 0 {
			groups = append(groups, d.Groups[j])
		} else {
			return "", false
		}
		minX, minY = math.Min(minX, b.X), math.Min(minY, b.Y)
	}

	g := &Group{ID: shape.NewGroupID(), X: minX, Y: minY, ScaleX: 1, ScaleY: 1}
	for _, i := range shapes {
		d.Shapes[i] = d.Shapes[i].Moved(-minX, -minY)
		g.ShapeIDs = append(g.ShapeIDs, d.Shapes[i].ID)
	}
	for _, c := range groups {
		c.X -= minX
		c.Y -= minY
		g.Groups = append(g.Groups, c)
	}
	d.Groups = slices.DeleteFunc(d.Groups, func(c *Group) bool { return slices.Contains(groups, c) })
	d.Groups = append(d.Groups, g)
	d.reindex()
	return g.ID, true
}

// Ungroup dissolves group gid, moving its members into the enclosing group
// (or the top level) with the group's transform baked into them. Translation,
// rotation and uniform scale are exact; a non-uniform scale combined with a
// member's own rotation is approximated. Unknown ids are a no-op.
func (d *Drawing) Ungroup(gid string) bool {
	g, parent := d.findGroup(gid)
	if g == nil {
		return false
	}
	m := g.Frame()
	for _, sid := range g.ShapeIDs {
		i := d.index(sid)
		if i < 0 {
			continue
		}
		if g.identityTransform() {
			d.Shapes[i] = d.Shapes[i].Moved(g.X, g.Y)
		} else {
			d.Shapes[i] = shape.ApplyFrame(d.Shapes[i], m)
		}
	}
	for _, c := range g.Groups {
		p := m.Apply(geom.Pt{X: c.X, Y: c.Y})
		c.X, c.Y = p.X, p.Y
		c.Rotation += g.Rotation
		c.ScaleX = nz(c.ScaleX) * nz(g.ScaleX)
		c.ScaleY = nz(c.ScaleY) * nz(g.ScaleY)
	}
	if parent == nil {
		i := slices.Index(d.Groups, g)
		d.Groups = slices.Replace(d.Groups, i, i+1, g.Groups...)
	} else {
		i := slices.Index(parent.Groups, g)
		parent.Groups = slices.Replace(parent.Groups, i, i+1, g.Groups...)
		parent.ShapeIDs = append(parent.ShapeIDs, g.ShapeIDs...)
	}
	d.reindex()
	return true
}

// SetGroupTransform replaces the rotation and scale of group gid, keeping its origin.
func (d *Drawing) SetGroupTransform(gid string, rotation, scaleX, scaleY float64) bool {
	g := d.FindGroup(gid)
	if g == nil || !geom.Finite(rotation) {
		return false
	}
	g.Rotation = rotation
	g.ScaleX, g.ScaleY = nz(scaleX), nz(scaleY)
	return true
}

func (d *Drawing) removeGroup(gid string) {
	g, parent := d.findGroup(gid)
	if g == nil {
		return
	}
	if parent == nil {
		d.Groups = slices.DeleteFunc(d.Groups, func(c *Group) bool { return c == g })
	} else {
		parent.Groups = slices.DeleteFunc(parent.Groups, func(c *Group) bool { return c == g })
	}
}

func uniq(ids []string) []string {
	seen := map[string]bool{}
	out := ids[:0:0]
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
