/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package drawing

import (
	"errors"
	"math"
	"testing"

	"vecdraw/internal/geom"
	"vecdraw/internal/shape"
)

func sample(t *testing.T) *Drawing {
	t.Helper()
	d := New("test")
	for _, s := range []shape.Shape{
		{ID: "r", Type: shape.KindRect, X: 10, Y: 10, Width: 100, Height: 50},
		{ID: "l", Type: shape.KindLine, Points: []float64{200, 200, 250, 260}},
		{ID: "c", Type: shape.KindCircle, CX: 400, CY: 50, R: 20},
		{ID: "e", Type: shape.KindEllipse, X: 300, Y: 300, RadiusX: 30, RadiusY: 10, Rotation: 30},
	} {
		if err := d.Add(s); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	return d
}

func sameRect(a, b geom.Rect, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.W-b.W) <= eps && math.Abs(a.H-b.H) <= eps
}

func worldBounds(t *testing.T, d *Drawing, id string) geom.Rect {
	t.Helper()
	b, ok := d.Bounds(id)
	if !ok {
		t.Fatalf("no bounds for %s", id)
	}
	return b
}

func TestGroupUngroupRoundTrip(t *testing.T) {
	d := sample(t)
	before := map[string]geom.Rect{}
	for _, id := range []string{"r", "l", "c", "e"} {
		before[id] = worldBounds(t, d, id)
	}
	gid, ok := d.Group("r", "l", "e")
	if !ok {
		t.Fatalf("group refused")
	}
	g := d.FindGroup(gid)
	if g.X != 10 || g.Y != 10 {
		t.Fatalf("group origin = %v,%v", g.X, g.Y)
	}
	if r, _ := d.Shape("r"); r.X != 0 || r.Y != 0 {
		t.Fatalf("member not re-expressed locally: %+v", r)
	}
	for id, want := range before {
		if got := worldBounds(t, d, id); !sameRect(got, want, 1e-6) {
			t.Fatalf("%s moved on group: %+v vs %+v", id, got, want)
		}
	}
	if !d.Ungroup(gid) {
		t.Fatalf("ungroup failed")
	}
	if len(d.Groups) != 0 || d.IsInGroup("r") {
		t.Fatalf("group still present")
	}
	for id, want := range before {
		if got := worldBounds(t, d, id); !sameRect(got, want, 1e-6) {
			t.Fatalf("%s moved on ungroup: %+v vs %+v", id, got, want)
		}
	}
	l, _ := d.Shape("l")
	if math.Abs(l.Points[0]-200) > 1e-9 || math.Abs(l.Points[3]-260) > 1e-9 {
		t.Fatalf("line points = %v", l.Points)
	}
}

func TestGroupRefusals(t *testing.T) {
	d := sample(t)
	if _, ok := d.Group("r"); ok {
		t.Fatalf("single shape grouped")
	}
	if _, ok := d.Group("r", "r"); ok {
		t.Fatalf("duplicate ids counted twice")
	}
	if _, ok := d.Group("r", "missing"); ok {
		t.Fatalf("unknown id grouped")
	}
	if _, ok := d.Group("r", "l"); !ok {
		t.Fatalf("valid group refused")
	}
	if _, ok := d.Group("r", "c"); ok {
		t.Fatalf("grouped shape grouped again")
	}
	if d.Ungroup("nope") {
		t.Fatalf("ungroup of unknown id reported success")
	}
}

func TestNestedGroups(t *testing.T) {
	d := sample(t)
	inner, _ := d.Group("r", "l")
	outer, ok := d.Group(inner, "c")
	if !ok {
		t.Fatalf("nesting refused")
	}
	if p, _ := d.ParentOf(inner); p != outer {
		t.Fatalf("parent of inner = %q", p)
	}
	if p, _ := d.ParentOf("r"); p != inner {
		t.Fatalf("parent of r = %q", p)
	}
	if !d.IsInGroup("r") || !d.IsInGroup(inner) {
		t.Fatalf("nested membership not found")
	}
	if got := worldBounds(t, d, "r"); !sameRect(got, geom.R(10, 10, 100, 50), 1e-6) {
		t.Fatalf("nested world bounds = %+v", got)
	}
	d.Ungroup(outer)
	if len(d.Groups) != 1 || d.Groups[0].ID != inner {
		t.Fatalf("inner group not promoted")
	}
	if got := worldBounds(t, d, "r"); !sameRect(got, geom.R(10, 10, 100, 50), 1e-6) {
		t.Fatalf("world bounds after outer ungroup = %+v", got)
	}
}

func TestUngroupBakesRotationAndScale(t *testing.T) {
	d := sample(t)
	gid, _ := d.Group("r", "l", "c")
	d.SetGroupTransform(gid, 90, 2, 2)
	want := map[string]geom.Rect{}
	for _, id := range []string{"r", "l", "c"} {
		want[id] = worldBounds(t, d, id)
	}
	d.Ungroup(gid)
	for id, w := range want {
		if got := worldBounds(t, d, id); !sameRect(got, w, 1e-6) {
			t.Fatalf("%s: %+v vs %+v", id, got, w)
		}
	}
	if c, _ := d.Shape("c"); c.R != 40 {
		t.Fatalf("circle radius = %v", c.R)
	}
}

func TestCyclicGroupsTerminate(t *testing.T) {
	d := sample(t)
	g1 := &Group{ID: "g1", ShapeIDs: []string{"r"}}
	g2 := &Group{ID: "g2", Groups: []*Group{g1}}
	g1.Groups = []*Group{g2}
	d.Groups = []*Group{g1}
	if d.IsInGroup("zzz") {
		t.Fatalf("phantom membership")
	}
	if !d.IsInGroup("r") {
		t.Fatalf("member not found")
	}
	if err := d.Validate(); !errors.Is(err, ErrCyclicGroups) {
		t.Fatalf("validate = %v", err)
	}
	_ = d.WorldFrame("g1")
}

func TestValidateRejectsBadMembership(t *testing.T) {
	d := sample(t)
	d.Groups = []*Group{{ID: "g1", ShapeIDs: []string{"r", "ghost"}}}
	if err := d.Validate(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("dangling member: %v", err)
	}
	d.Groups = []*Group{{ID: "g1", ShapeIDs: []string{"r"}}, {ID: "g2", ShapeIDs: []string{"r"}}}
	if err := d.Validate(); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("shared member: %v", err)
	}
	d.Groups = []*Group{{ID: "r", ShapeIDs: []string{"l"}}}
	if err := d.Validate(); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("group id clash: %v", err)
	}
}

func TestDeletePrunesGroups(t *testing.T) {
	d := sample(t)
	gid, _ := d.Group("r", "l")
	if n := d.Delete("r"); n != 1 {
		t.Fatalf("deleted %d", n)
	}
	if g := d.FindGroup(gid); g == nil || len(g.ShapeIDs) != 1 {
		t.Fatalf("group after member delete = %+v", g)
	}
	if n := d.Delete(gid); n != 1 || d.FindGroup(gid) != nil {
		t.Fatalf("group delete removed %d", n)
	}
	if _, ok := d.Shape("l"); ok {
		t.Fatalf("group member survived group delete")
	}
}

func TestAddRejectsDuplicates(t *testing.T) {
	d := sample(t)
	if err := d.Add(shape.Shape{ID: "r", Type: shape.KindRect}); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("duplicate add: %v", err)
	}
}

func TestZOrder(t *testing.T) {
	d := sample(t)
	d.BringToFront("r")
	if d.Shapes[len(d.Shapes)-1].ID != "r" {
		t.Fatalf("r not on top")
	}
	d.SendToBack("c", "e")
	if d.Shapes[0].ID != "c" || d.Shapes[1].ID != "e" {
		t.Fatalf("order = %v", d.TopLevel())
	}
}

func TestMoveInsideRotatedGroup(t *testing.T) {
	d := sample(t)
	gid, _ := d.Group("r", "l")
	d.SetGroupTransform(gid, 90, 1, 1)
	before := worldBounds(t, d, "r")
	d.Move("r", 10, 0)
	after := worldBounds(t, d, "r")
	if math.Abs(after.X-before.X-10) > 1e-9 || math.Abs(after.Y-before.Y) > 1e-9 {
		t.Fatalf("world move = %+v -> %+v", before, after)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	d := sample(t)
	gid, _ := d.Group("r", "l")
	c := d.Clone()
	c.Move(gid, 5, 5)
	c.Move("c", 1, 1)
	if d.FindGroup(gid).X != 10 {
		t.Fatalf("clone shares groups")
	}
	if s, _ := d.Shape("c"); s.CX != 400 {
		t.Fatalf("clone shares shapes")
	}
}

func TestGroupKeepsRotatedLineInPlace(t *testing.T) {
	d := New("rot")
	for _, s := range []shape.Shape{
		{ID: "l", Type: shape.KindLine, Rotation: 90, Points: []float64{50, 0, 150, 0}},
		{ID: "r", Type: shape.KindRect, X: 10, Y: 10, Width: 20, Height: 20},
	} {
		if err := d.Add(s); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	before, _ := d.WorldShape("l")
	gid, ok := d.Group("l", "r")
	if !ok {
		t.Fatalf("group refused")
	}
	after, _ := d.WorldShape("l")
	for i := range 2 {
		a, b := before.Vertex(i), after.Vertex(i)
		if math.Abs(a.X-b.X) > 1e-9 || math.Abs(a.Y-b.Y) > 1e-9 {
			t.Fatalf("grouping moved vertex %d from %+v to %+v", i, a, b)
		}
	}
	if !d.Move(gid, 5, 0) {
		t.Fatalf("move group refused")
	}
	if !d.Ungroup(gid) {
		t.Fatalf("ungroup refused")
	}
	l, _ := d.Shape("l")
	if v := l.Vertex(0); math.Abs(v.X-5) > 1e-9 || math.Abs(v.Y-50) > 1e-9 {
		t.Fatalf("vertex after move and ungroup = %+v, want (5,50)", v)
	}
}
