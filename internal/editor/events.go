/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"time"

	"vecdraw/internal/edit"
	"vecdraw/internal/geom"
	"vecdraw/internal/selection"
	"vecdraw/internal/shape"
)

var now = time.Now

// Key names understood by KeyDown and KeyUp.
const (
	KeyShift     = "Shift"
	KeyAlt       = "Alt"
	KeyControl   = "Control"
	KeyEscape    = "Escape"
	KeyDelete    = "Delete"
	KeyBackspace = "Backspace"
)

// PointerDown starts a gesture: a draft with a drawing tool, otherwise a
// handle edit, a drag of the item under the pointer or a marquee.
func (e *Editor) PointerDown(p geom.Pt, b Button, m Modifiers) {
	e.mods = m
	if b != ButtonLeft || !p.Finite() || e.Busy() {
		return
	}
	if e.tool != ToolSelect {
		s, ok := shape.Create(shape.Kind(e.tool), "", p.X, p.Y, e.opts.Style)
		if !ok {
			return
		}
		e.draft, e.draftStart = &s, p
		e.rev++
		return
	}
	if e.beginHandle(p) {
		return
	}
	id, hit := selection.HitTest(e.doc, p, e.opts.HitTolerance)
	if !hit {
		if !m.Shift {
			e.sel.Clear()
		}
		e.marquee = &[2]geom.Pt{p, p}
		e.rev++
		return
	}
	if m.Shift {
		e.sel.Toggle(id)
		e.rev++
		if !e.sel.Has(id) {
			return
		}
	} else if !e.sel.Has(id) {
		e.sel.Replace(id)
		e.rev++
	}
	ids := e.sel.IDs()
	if len(ids) == 1 && e.doc.FindGroup(ids[0]) == nil {
		s, _ := e.doc.Shape(ids[0])
		e.session = edit.BeginDrag(s, p)
		return
	}
	e.drag = &multiDrag{ids: ids, start: p, cur: p}
}

// beginHandle starts a vertex, midpoint, rotate or resize edit when p is on
// a handle of the single selected shape. Holding Shift while rotating snaps
// the angle.
func (e *Editor) beginHandle(p geom.Pt) bool {
	ids := e.sel.IDs()
	if len(ids) != 1 {
		return false
	}
	s, ok := e.doc.Shape(ids[0])
	if !ok {
		return false
	}
	tol := e.opts.HitTolerance
	if i, ok := edit.NearestVertex(s, p, tol); ok {
		e.session = edit.BeginVertex(s, i, p)
		return true
	}
	for _, mp := range edit.Midpoints(s) {
		if mp.Pos.Dist(p) <= tol {
			e.session = edit.BeginMidpoint(s, mp)
			return true
		}
	}
	box, ok := shape.Bounds(s)
	if !ok {
		return false
	}
	if s.Type != shape.KindCircle && edit.RotateGrip(box).Dist(p) <= tol {
		e.session = edit.BeginRotate(s, p)
		return true
	}
	if edit.Editable(s) {
		return false
	}
	for h, hp := range edit.HandlePositions(box) {
		if hp.Dist(p) <= tol {
			e.session = edit.BeginResize(s, edit.Handle(h), p)
			return true
		}
	}
	return false
}

// PointerMove records the pointer position. Freehand drafts capture every
// position; all other gestures are coalesced to the next Frame.
func (e *Editor) PointerMove(p geom.Pt) {
	if !p.Finite() {
		return
	}
	if e.draft != nil && e.draft.Type == shape.KindFreehand {
		e.applyMove(p)
		return
	}
	if e.Busy() {
		e.moves.Submit(p)
	}
}

// Frame applies the latest coalesced pointer move. It reports whether
// anything changed.
func (e *Editor) Frame() bool { return e.moves.Flush() }

func (e *Editor) applyMove(p geom.Pt) {
	switch {
	case e.draft != nil:
		s := shape.UpdateOnDraw(*e.draft, shape.DrawInput{Start: e.draftStart, Current: p})
		e.draft = &s
	case e.session.Active():
		if e.session.Mode() == edit.ModeDrag {
			p = e.snapDrag(p)
		}
		e.session.Move(p, e.mods.Shift)
	case e.drag != nil:
		e.drag.cur = p
		e.drag.moved = e.drag.moved || p != e.drag.start
	case e.marquee != nil:
		e.marquee[1] = p
	default:
		return
	}
	e.rev++
}

// snapDrag nudges a whole-shape drag so the moved bounds line up with the
// edges or centers of other top-level items.
func (e *Editor) snapDrag(p geom.Pt) geom.Pt {
	e.guides = nil
	if !e.opts.SmartGuides || e.opts.SnapThreshold <= 0 {
		return p
	}
	orig := e.session.Original()
	box, ok := shape.Bounds(orig)
	if !ok {
		return p
	}
	var targets []geom.Rect
	for _, id := range e.doc.TopLevel() {
		if id == orig.ID {
			continue
		}
		if b, ok := e.doc.Bounds(id); ok {
			targets = append(targets, b)
		}
	}
	start := e.session.Start()
	moving := box.Translate(p.X-start.X, p.Y-start.Y)
	snapped, guides := geom.SnapRect(moving, targets, geom.GuideOptions{Threshold: e.opts.SnapThreshold, Edges: true, Centers: true})
	e.guides = guides
	return geom.Pt{X: p.X + snapped.X - moving.X, Y: p.Y + snapped.Y - moving.Y}
}

// PointerUp ends the gesture: drafts are committed when large enough, edits
// are baked, and a marquee selects what it touches.
func (e *Editor) PointerUp() {
	e.moves.Flush()
	e.guides = nil
	switch {
	case e.draft != nil:
		s := *e.draft
		e.draft = nil
		if !shape.IsValidAfterDrawMin(s, e.opts.MinDrawSize) {
			e.log.Debug("draft discarded", "type", string(s.Type))
			e.rev++
			return
		}
		if e.commit("draw "+string(s.Type), func() bool { return e.doc.Add(s) == nil }) {
			e.sel.Replace(s.ID)
		}
	case e.session.Active():
		se := e.session
		e.session = nil
		out, ok := se.Commit()
		if !ok {
			e.rev++
			return
		}
		e.commit(se.Mode().String(), func() bool { return e.doc.Replace(out) == nil })
	case e.drag != nil:
		d := e.drag
		e.drag = nil
		if !d.moved {
			e.rev++
			return
		}
		dx, dy := d.cur.X-d.start.X, d.cur.Y-d.start.Y
		e.commit("move", func() bool {
			moved := false
			for _, id := range d.ids {
				moved = e.doc.Move(id, dx, dy) || moved
			}
			return moved
		})
	case e.marquee != nil:
		box := selection.Marquee(e.marquee[0], e.marquee[1])
		e.marquee = nil
		for _, id := range selection.InMarquee(e.doc, box) {
			e.sel.Add(id)
		}
		e.rev++
	}
}

// DoubleClick on a vertex of the selected shape deletes it; elsewhere near
// its outline it inserts a vertex at the closest point.
func (e *Editor) DoubleClick(p geom.Pt) bool {
	if e.Busy() || !p.Finite() {
		return false
	}
	ids := e.sel.IDs()
	if len(ids) != 1 {
		return false
	}
	s, ok := e.doc.Shape(ids[0])
	if !ok || !edit.Editable(s) {
		return false
	}
	if i, ok := edit.NearestVertex(s, p, e.opts.HitTolerance); ok {
		out, ok := edit.DeleteVertex(s, i)
		return ok && e.commit("delete vertex", func() bool { return e.doc.Replace(out) == nil })
	}
	out, _, ok := edit.InsertNearest(s, p, e.opts.InsertMaxDist)
	return ok && e.commit("insert vertex", func() bool { return e.doc.Replace(out) == nil })
}

// KeyDown tracks modifiers and handles Escape and Delete.
func (e *Editor) KeyDown(key string) {
	switch key {
	case KeyShift:
		e.mods.Shift = true
	case KeyAlt:
		e.mods.Alt = true
	case KeyControl:
		e.mods.Ctrl = true
	case KeyEscape:
		e.Cancel()
	case KeyDelete, KeyBackspace:
		if !e.Busy() {
			e.DeleteSelection()
		}
	}
}

// KeyUp tracks modifiers.
func (e *Editor) KeyUp(key string) {
	switch key {
	case KeyShift:
		e.mods.Shift = false
	case KeyAlt:
		e.mods.Alt = false
	case KeyControl:
		e.mods.Ctrl = false
	}
}

// Cancel abandons the gesture in progress without touching the document.
func (e *Editor) Cancel() {
	if !e.Busy() && !e.moves.Pending() {
		return
	}
	e.moves.Discard()
	if e.session.Active() {
		e.session.Cancel()
	}
	e.draft, e.session, e.drag, e.marquee, e.guides = nil, nil, nil, nil, nil
	e.rev++
}
