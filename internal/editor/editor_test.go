/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"errors"
	"testing"

	"vecdraw/internal/geom"
	"vecdraw/internal/serialize"
	"vecdraw/internal/shape"
)

func drawShape(t *testing.T, e *Editor, k shape.Kind, from, to geom.Pt) {
	t.Helper()
	if !e.SetTool(Tool(k)) {
		t.Fatalf("tool %s refused", k)
	}
	e.PointerDown(from, ButtonLeft, Modifiers{})
	e.PointerMove(to)
	e.Frame()
	e.PointerUp()
	e.SetTool(ToolSelect)
}

func only(t *testing.T, e *Editor) shape.Shape {
	t.Helper()
	if len(e.Drawing().Shapes) != 1 {
		t.Fatalf("expected one shape, have %d", len(e.Drawing().Shapes))
	}
	return e.Drawing().Shapes[0]
}

func TestDrawRectCommitsAndSelects(t *testing.T) {
	e := New(nil, DefaultOptions())
	drawShape(t, e, shape.KindRect, geom.P(10, 10), geom.P(110, 60))
	r := only(t, e)
	if r.X != 10 || r.Y != 10 || r.Width != 100 || r.Height != 50 {
		t.Fatalf("rect = %+v", r)
	}
	if sel := e.Selection(); len(sel) != 1 || sel[0] != r.ID {
		t.Fatalf("selection = %v", sel)
	}
	if !e.CanUndo() {
		t.Fatalf("draw not recorded")
	}
}

func TestClickWithDrawToolIsDiscarded(t *testing.T) {
	e := New(nil, DefaultOptions())
	e.SetTool(Tool(shape.KindRect))
	e.PointerDown(geom.P(5, 5), ButtonLeft, Modifiers{})
	if _, ok := e.Draft(); !ok {
		t.Fatalf("no draft after pointer down")
	}
	e.PointerUp()
	if len(e.Drawing().Shapes) != 0 || e.CanUndo() {
		t.Fatalf("click produced a shape")
	}
}

func TestFreehandCapturesEveryMove(t *testing.T) {
	e := New(nil, DefaultOptions())
	e.SetTool(Tool(shape.KindFreehand))
	e.PointerDown(geom.P(0, 0), ButtonLeft, Modifiers{})
	for i := 1; i <= 5; i++ {
		e.PointerMove(geom.P(float64(i*2), float64(i)))
	}
	d, _ := e.Draft()
	if d.VertexCount() != 6 {
		t.Fatalf("freehand captured %d vertices", d.VertexCount())
	}
	e.PointerUp()
	if only(t, e).VertexCount() != 6 {
		t.Fatalf("committed stroke lost vertices")
	}
}

func TestDragIsCoalescedPerFrame(t *testing.T) {
	e := New(nil, DefaultOptions())
	drawShape(t, e, shape.KindRect, geom.P(10, 10), geom.P(110, 60))
	e.Select()
	e.PointerDown(geom.P(40, 10), ButtonLeft, Modifiers{})
	e.PointerMove(geom.P(45, 12))
	e.PointerMove(geom.P(50, 20))
	if s := e.Scene()[0]; s.X != 10 {
		t.Fatalf("move applied before the frame tick: %+v", s)
	}
	if !e.Frame() {
		t.Fatalf("frame applied nothing")
	}
	if s := e.Scene()[0]; s.X != 20 || s.Y != 20 {
		t.Fatalf("preview = %v,%v", s.X, s.Y)
	}
	if e.Frame() {
		t.Fatalf("second frame reapplied a move")
	}
	if r := only(t, e); r.X != 10 {
		t.Fatalf("committed shape moved during the drag")
	}
	e.PointerUp()
	if r := only(t, e); r.X != 20 || r.Y != 20 {
		t.Fatalf("after drag = %+v", r)
	}
	e.Undo()
	if r := only(t, e); r.X != 10 {
		t.Fatalf("after undo = %+v", r)
	}
	e.Redo()
	if r := only(t, e); r.X != 20 {
		t.Fatalf("after redo = %+v", r)
	}
}

func TestMarqueeSelects(t *testing.T) {
	e := New(nil, DefaultOptions())
	drawShape(t, e, shape.KindRect, geom.P(10, 10), geom.P(50, 50))
	drawShape(t, e, shape.KindCircle, geom.P(200, 200), geom.P(220, 200))
	e.Select()
	e.PointerDown(geom.P(0, 0), ButtonLeft, Modifiers{})
	e.PointerMove(geom.P(100, 100))
	if box, ok := e.Marquee(); !ok || box.W != 0 {
		t.Fatalf("marquee before frame = %+v %v", box, ok)
	}
	e.Frame()
	if box, ok := e.Marquee(); !ok || box != geom.R(0, 0, 100, 100) {
		t.Fatalf("marquee = %+v", box)
	}
	e.PointerUp()
	if sel := e.Selection(); len(sel) != 1 || sel[0] != e.Drawing().Shapes[0].ID {
		t.Fatalf("selection = %v", sel)
	}
}

func TestGroupAndUndo(t *testing.T) {
	e := New(nil, DefaultOptions())
	drawShape(t, e, shape.KindRect, geom.P(10, 10), geom.P(50, 50))
	drawShape(t, e, shape.KindRect, geom.P(100, 100), geom.P(150, 150))
	e.Select(e.Drawing().Shapes[0].ID, e.Drawing().Shapes[1].ID)
	gid, ok := e.Group()
	if !ok || len(e.Drawing().Groups) != 1 {
		t.Fatalf("group failed")
	}
	if sel := e.Selection(); len(sel) != 1 || sel[0] != gid {
		t.Fatalf("selection after group = %v", sel)
	}
	if !e.Ungroup() || len(e.Drawing().Groups) != 0 || len(e.Selection()) != 2 {
		t.Fatalf("ungroup failed")
	}
	e.Undo()
	if len(e.Drawing().Groups) != 1 {
		t.Fatalf("undo of ungroup lost the group")
	}
	e.Undo()
	if len(e.Drawing().Groups) != 0 || e.Drawing().Shapes[0].X != 10 {
		t.Fatalf("undo of group = %+v", e.Drawing().Shapes[0])
	}
}

func TestImportIsAtomic(t *testing.T) {
	e := New(nil, DefaultOptions())
	drawShape(t, e, shape.KindRect, geom.P(10, 10), geom.P(50, 50))
	if _, err := e.Import([]byte(`{"shapes": nope}`)); !errors.Is(err, serialize.ErrInvalidJSON) {
		t.Fatalf("import error = %v", err)
	}
	if len(e.Drawing().Shapes) != 1 {
		t.Fatalf("failed import changed the drawing")
	}
	st, err := e.Import([]byte(`[{"type":"line","points":[0,0,10,10]},{"type":"line","points":[0,0,20,20]},{"type":"nope"}]`))
	if err != nil || st.Shapes != 2 || st.Dropped != 1 {
		t.Fatalf("import = %+v %v", st, err)
	}
	if e.Drawing().Shapes[0].Type != shape.KindLine {
		t.Fatalf("drawing not replaced")
	}
	e.Undo()
	if only(t, e).Type != shape.KindRect {
		t.Fatalf("undo of import failed")
	}
}

func TestDeleteKeyAndEscape(t *testing.T) {
	e := New(nil, DefaultOptions())
	drawShape(t, e, shape.KindRect, geom.P(10, 10), geom.P(50, 50))
	e.SetTool(Tool(shape.KindRect))
	e.PointerDown(geom.P(100, 100), ButtonLeft, Modifiers{})
	e.KeyDown(KeyEscape)
	if _, ok := e.Draft(); ok || e.Busy() {
		t.Fatalf("escape kept the draft")
	}
	e.SetTool(ToolSelect)
	e.Select(e.Drawing().Shapes[0].ID)
	e.KeyDown(KeyDelete)
	if len(e.Drawing().Shapes) != 0 || len(e.Selection()) != 0 {
		t.Fatalf("delete failed")
	}
}

func TestDoubleClickVertexEditing(t *testing.T) {
	e := New(nil, DefaultOptions())
	drawShape(t, e, shape.KindLine, geom.P(0, 0), geom.P(100, 0))
	id := only(t, e).ID
	if e.DoubleClick(geom.P(100, 0)) {
		t.Fatalf("deleted a vertex of a 2-point line")
	}
	if !e.DoubleClick(geom.P(50, 4)) {
		t.Fatalf("insert refused")
	}
	l, _ := e.Drawing().Shape(id)
	if l.VertexCount() != 3 {
		t.Fatalf("vertices = %d", l.VertexCount())
	}
	if !e.DoubleClick(geom.P(50, 0)) || only(t, e).VertexCount() != 2 {
		t.Fatalf("delete of inserted vertex failed")
	}
}

func TestVertexDragWithShiftSnaps(t *testing.T) {
	e := New(nil, DefaultOptions())
	drawShape(t, e, shape.KindLine, geom.P(0, 0), geom.P(100, 0))
	e.PointerDown(geom.P(100, 0), ButtonLeft, Modifiers{Shift: true})
	e.PointerMove(geom.P(90, 80))
	e.PointerUp()
	l := only(t, e)
	v := l.Vertex(1)
	if d := v.X - v.Y; d > 1e-9 || d < -1e-9 {
		t.Fatalf("vertex not on the diagonal: %+v", v)
	}
}

func near(a, b float64) bool { return a-b < 1e-9 && b-a < 1e-9 }

func TestRotateGripTurnsAboutCenter(t *testing.T) {
	e := New(nil, DefaultOptions())
	drawShape(t, e, shape.KindRect, geom.P(0, 0), geom.P(100, 50))
	e.PointerDown(geom.P(50, -20), ButtonLeft, Modifiers{})
	if !e.Busy() {
		t.Fatalf("rotation grip not picked up")
	}
	e.PointerMove(geom.P(125, 25))
	e.Frame()
	e.PointerUp()
	r := only(t, e)
	if !near(r.Rotation, 90) || !near(r.X, 75) || !near(r.Y, -25) {
		t.Fatalf("rotated rect = %+v", r)
	}
	if !e.Undo() || only(t, e).Rotation != 0 {
		t.Fatalf("rotation not undoable")
	}
}

func TestRotateGripSnapsWithShift(t *testing.T) {
	e := New(nil, DefaultOptions())
	drawShape(t, e, shape.KindRect, geom.P(0, 0), geom.P(100, 50))
	e.PointerDown(geom.P(50, -20), ButtonLeft, Modifiers{Shift: true})
	e.PointerMove(geom.P(120, 20))
	e.PointerUp()
	if r := only(t, e); !near(r.Rotation, 90) {
		t.Fatalf("rotation = %v, want 90", r.Rotation)
	}
}

func TestVertexDragOnRotatedLine(t *testing.T) {
	e := New(nil, DefaultOptions())
	drawShape(t, e, shape.KindLine, geom.P(0, 0), geom.P(100, 0))
	id := only(t, e).ID
	if !e.SetField(id, "rotation", 90.0) {
		t.Fatalf("set rotation refused")
	}
	// the second vertex now renders at (0,100)
	e.PointerDown(geom.P(0, 100), ButtonLeft, Modifiers{})
	e.PointerMove(geom.P(0, 200))
	e.PointerUp()
	v := only(t, e).Vertex(1)
	if !near(v.X, 0) || !near(v.Y, 200) {
		t.Fatalf("vertex rendered at %+v, want (0,200)", v)
	}
}
