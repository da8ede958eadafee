/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor drives a drawing from discrete pointer and keyboard events.
// It owns the committed document, the selection, the in-progress draft or
// edit session and the undo history. All methods are meant to be called
// from one event loop; Frame is the render tick that applies coalesced
// pointer moves.
package editor

import (
	"log/slog"

	"vecdraw/internal/config"
	"vecdraw/internal/drawing"
	"vecdraw/internal/edit"
	"vecdraw/internal/geom"
	applog "vecdraw/internal/log"
	"vecdraw/internal/selection"
	"vecdraw/internal/serialize"
	"vecdraw/internal/shape"
	"vecdraw/internal/undo"
)

// Tool is the active pointer tool: ToolSelect or the kind of shape to draw.
type Tool string

const ToolSelect Tool = "select"

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Modifiers is the modifier key state.
type Modifiers struct {
	Shift bool
	Alt   bool
	Ctrl  bool
}

// Options tune editing behavior.
type Options struct {
	MinDrawSize   float64
	HitTolerance  float64
	InsertMaxDist float64
	SmartGuides   bool
	SnapThreshold float64
	Style         shape.Style
	Undo          undo.Config
	Export        serialize.ExportOptions
}

// DefaultOptions mirrors config.Defaults.
func DefaultOptions() Options { return OptionsFromConfig(config.Defaults()) }

// OptionsFromConfig maps the application config onto editor options.
func OptionsFromConfig(c config.AppConfig) Options {
	return Options{
		MinDrawSize:   c.Editor.MinDrawSize,
		HitTolerance:  c.Editor.HitTolerance,
		InsertMaxDist: c.Editor.InsertMaxDist,
		SmartGuides:   c.Editor.SmartGuides,
		SnapThreshold: c.Editor.SnapThreshold,
		Style:         shape.DefaultStyle,
		Undo:          undo.Config{MaxDepth: c.Editor.UndoDepth, MaxBytes: c.Editor.UndoMaxBytes},
		Export: serialize.ExportOptions{
			Precision: c.Export.Precision,
			Normalize: serialize.NormalizeMode(c.Export.Normalize),
		},
	}
}

// multiDrag moves several top-level items, or one group, together.
type multiDrag struct {
	ids        []string
	start, cur geom.Pt
	moved      bool
}

// Editor is the interactive core around one drawing.
type Editor struct {
	opts    Options
	doc     *drawing.Drawing
	sel     *selection.Set
	history *undo.Manager
	log     *slog.Logger

	tool Tool
	mods Modifiers

	draft      *shape.Shape
	draftStart geom.Pt
	session    *edit.Session
	drag       *multiDrag
	marquee    *[2]geom.Pt
	guides     []geom.Guide
	moves      *edit.Coalescer[geom.Pt]

	// rev counts committed and previewed changes; renderers compare it
	rev uint64
}

// New returns an editor for d, or for a fresh drawing when d is nil.
func New(d *drawing.Drawing, opts Options) *Editor {
	if d == nil {
		d = drawing.New("")
	}
	if opts.MinDrawSize <= 0 {
		opts.MinDrawSize = shape.DefaultMinDrawSize
	}
	if opts.HitTolerance <= 0 {
		opts.HitTolerance = 6
	}
	if opts.InsertMaxDist <= 0 {
		opts.InsertMaxDist = 10
	}
	if opts.Style == (shape.Style{}) {
		opts.Style = shape.DefaultStyle
	}
	e := &Editor{
		opts:    opts,
		doc:     d,
		sel:     selection.NewSet(),
		history: undo.NewManager(opts.Undo),
		log:     applog.WithComponent("editor"),
		tool:    ToolSelect,
	}
	e.moves = edit.NewCoalescer(e.applyMove)
	return e
}

// Drawing returns the committed document. Callers must not mutate it.
func (e *Editor) Drawing() *drawing.Drawing { return e.doc }

// Revision increases with every visible change.
func (e *Editor) Revision() uint64 { return e.rev }

func (e *Editor) Tool() Tool { return e.tool }

// SetTool switches tools, abandoning any gesture in progress.
func (e *Editor) SetTool(t Tool) bool {
	if t != ToolSelect && !shape.Known(shape.Kind(t)) {
		return false
	}
	e.Cancel()
	e.tool = t
	e.rev++
	return true
}

// Style is applied to newly drawn shapes.
func (e *Editor) Style() shape.Style      { return e.opts.Style }
func (e *Editor) SetStyle(st shape.Style) { e.opts.Style = st }

// Selection lists the selected top-level ids.
func (e *Editor) Selection() []string { return e.sel.IDs() }

// Select replaces the selection, ignoring unknown ids.
func (e *Editor) Select(ids ...string) {
	e.sel.Clear()
	for _, id := range ids {
		if e.doc.Has(id) {
			e.sel.Add(selection.TopOf(e.doc, id))
		}
	}
	e.rev++
}

// Draft returns the shape being drawn, if any.
func (e *Editor) Draft() (shape.Shape, bool) {
	if e.draft == nil {
		return shape.Shape{}, false
	}
	return e.draft.Clone(), true
}

// Marquee returns the current marquee rectangle, if one is being dragged.
func (e *Editor) Marquee() (geom.Rect, bool) {
	if e.marquee == nil {
		return geom.Rect{}, false
	}
	return selection.Marquee(e.marquee[0], e.marquee[1]), true
}

// Guides returns the smart guides of the current drag.
func (e *Editor) Guides() []geom.Guide { return e.guides }

// Busy reports whether a gesture is in progress.
func (e *Editor) Busy() bool {
	return e.draft != nil || e.session.Active() || e.drag != nil || e.marquee != nil
}

// Scene returns every shape in world coordinates as it should be drawn now:
// committed shapes with any in-progress edit applied, then the draft.
func (e *Editor) Scene() []shape.Shape {
	out := e.doc.WorldShapes()
	if e.session.Active() {
		p := e.session.Preview()
		for i := range out {
			if out[i].ID == p.ID {
				out[i] = p
			}
		}
	}
	if e.drag != nil && e.drag.moved {
		dx, dy := e.drag.cur.X-e.drag.start.X, e.drag.cur.Y-e.drag.start.Y
		moving := map[string]bool{}
		for _, id := range e.drag.ids {
			moving[id] = true
		}
		for i := range out {
			if moving[selection.TopOf(e.doc, out[i].ID)] {
				out[i] = out[i].Moved(dx, dy)
			}
		}
	}
	if e.draft != nil {
		out = append(out, e.draft.Clone())
	}
	return out
}

// snapshot encodes the committed document for the history.
func (e *Editor) snapshot(label string) (undo.Snapshot, bool) {
	blob, err := serialize.Marshal(e.doc)
	if err != nil {
		e.log.Error("snapshot failed", slog.Any("err", err))
		return undo.Snapshot{}, false
	}
	return undo.Snapshot{Label: label, Blob: blob, TS: now()}, true
}

// commit runs mutate and records the prior state when it reports a change.
func (e *Editor) commit(label string, mutate func() bool) bool {
	before, ok := e.snapshot(label)
	if !mutate() {
		return false
	}
	if ok {
		e.history.Push(before)
	}
	e.rev++
	e.log.Debug("commit", slog.String("op", label), slog.Int("shapes", len(e.doc.Shapes)))
	return true
}

func (e *Editor) restore(s undo.Snapshot) bool {
	d, err := serialize.Unmarshal(s.Blob)
	if err != nil {
		e.log.Error("restore failed", slog.Any("err", err))
		return false
	}
	e.doc = d
	e.sel.Retain(d.Has)
	e.rev++
	return true
}

// Undo abandons any gesture in progress and restores the previous state.
func (e *Editor) Undo() bool { return e.step(e.history.Undo) }

// Redo re-applies the last undone change.
func (e *Editor) Redo() bool { return e.step(e.history.Redo) }

func (e *Editor) step(fn func(undo.Snapshot) (undo.Snapshot, bool)) bool {
	e.Cancel()
	cur, ok := e.snapshot("")
	if !ok {
		return false
	}
	s, ok := fn(cur)
	if !ok {
		return false
	}
	return e.restore(s)
}

func (e *Editor) CanUndo() bool { return e.history.CanUndo() }
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }
