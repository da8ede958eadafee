/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"log/slog"

	"vecdraw/internal/drawing"
	"vecdraw/internal/edit"
	"vecdraw/internal/serialize"
	"vecdraw/internal/shape"
)

// Group wraps the selection in a new group and selects it.
func (e *Editor) Group() (string, bool) {
	if e.Busy() {
		return "", false
	}
	var gid string
	ok := e.commit("group", func() bool {
		var ok bool
		gid, ok = e.doc.Group(e.sel.IDs()...)
		return ok
	})
	if ok {
		e.sel.Replace(gid)
	}
	return gid, ok
}

// Ungroup dissolves every selected group and selects its former members.
func (e *Editor) Ungroup() bool {
	if e.Busy() {
		return false
	}
	var members []string
	ok := e.commit("ungroup", func() bool {
		changed := false
		for _, id := range e.sel.IDs() {
			g := e.doc.FindGroup(id)
			if g == nil {
				continue
			}
			members = append(members, g.ShapeIDs...)
			for _, c := range g.Groups {
				members = append(members, c.ID)
			}
			changed = e.doc.Ungroup(id) || changed
		}
		return changed
	})
	if ok {
		e.sel.Replace(members...)
	}
	return ok
}

// DeleteSelection removes the selected shapes and groups.
func (e *Editor) DeleteSelection() bool {
	ids := e.sel.IDs()
	if len(ids) == 0 || e.Busy() {
		return false
	}
	ok := e.commit("delete", func() bool { return e.doc.Delete(ids...) > 0 })
	if ok {
		e.sel.Retain(e.doc.Has)
	}
	return ok
}

// BringToFront raises the selection to the top of the paint order.
func (e *Editor) BringToFront() bool {
	ids := e.sel.IDs()
	return len(ids) > 0 && e.commit("bring to front", func() bool {
		before := order(e.doc)
		e.doc.BringToFront(ids...)
		return order(e.doc) != before
	})
}

// SendToBack lowers the selection to the bottom of the paint order.
func (e *Editor) SendToBack() bool {
	ids := e.sel.IDs()
	return len(ids) > 0 && e.commit("send to back", func() bool {
		before := order(e.doc)
		e.doc.SendToBack(ids...)
		return order(e.doc) != before
	})
}

func order(d *drawing.Drawing) string {
	var b []byte
	for _, s := range d.Shapes {
		b = append(b, s.ID...)
		b = append(b, 0)
	}
	return string(b)
}

// Nudge moves the selection by (dx,dy).
func (e *Editor) Nudge(dx, dy float64) bool {
	ids := e.sel.IDs()
	if len(ids) == 0 || e.Busy() {
		return false
	}
	return e.commit("nudge", func() bool {
		moved := false
		for _, id := range ids {
			moved = e.doc.Move(id, dx, dy) || moved
		}
		return moved
	})
}

// SetField sets one descriptor field of a shape, see shape.Fields.
func (e *Editor) SetField(id, key string, v any) bool {
	s, ok := e.doc.Shape(id)
	if !ok || e.Busy() {
		return false
	}
	out, ok := shape.Set(s, key, v)
	return ok && e.commit("set "+key, func() bool { return e.doc.Replace(out) == nil })
}

// SetThickArrowParams updates the size parameters of a thick arrow.
func (e *Editor) SetThickArrowParams(id string, p edit.ThickArrowParams) bool {
	s, ok := e.doc.Shape(id)
	if !ok || s.Type != shape.KindThickArrow || e.Busy() {
		return false
	}
	out := edit.SetThickArrowParams(s, p)
	return e.commit("thick arrow", func() bool { return e.doc.Replace(out) == nil })
}

// Import replaces the document with data. On error the current document is
// left untouched. The replacement can be undone.
func (e *Editor) Import(data []byte) (serialize.Stats, error) {
	d, st, err := serialize.Import(data, e.opts.Style)
	if err != nil {
		e.log.Warn("import rejected", slog.Any("err", err))
		return st, err
	}
	e.Cancel()
	e.commit("import", func() bool {
		e.doc = d
		return true
	})
	e.sel.Clear()
	e.log.Info("imported", slog.Int("shapes", st.Shapes), slog.Int("groups", st.Groups), slog.Int("dropped", st.Dropped))
	return st, nil
}

// Export renders the committed document as an export document.
func (e *Editor) Export() serialize.Document { return serialize.Export(e.doc, e.opts.Export) }

// Save encodes the committed document as a native envelope.
func (e *Editor) Save() ([]byte, error) { return serialize.Marshal(e.doc) }
