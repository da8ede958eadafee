/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import "vecdraw/internal/geom"

// DefaultMinDrawSize is the smallest extent (px) a drawn shape must reach.
const DefaultMinDrawSize = 3.0

// DrawInput is the pointer state of an in-progress draw gesture.
type DrawInput struct {
	Start, Current geom.Pt
}

// Behavior is the per-kind contract used by tools and import.
type Behavior struct {
	// Create returns a fully populated default shape anchored at (x,y).
	Create func(id string, x, y float64, st Style) Shape
	// UpdateOnDraw returns the draft with its geometry recomputed for the gesture.
	UpdateOnDraw func(s Shape, in DrawInput) Shape
	// IsValidAfterDraw rejects drafts smaller than min.
	IsValidAfterDraw func(s Shape, min float64) bool
	// Normalize parses an untrusted record; ok is false if it must be dropped.
	Normalize func(raw Raw, st Style) (Shape, bool)
}

var registry = map[Kind]Behavior{}

func register(k Kind, b Behavior) { registry[k] = b }

// Lookup returns the behavior for k.
func Lookup(k Kind) (Behavior, bool) {
	b, ok := registry[k]
	return b, ok
}

// Known reports whether k has registered behavior.
func Known(k Kind) bool {
	_, ok := registry[k]
	return ok
}

// Create builds a default shape of kind k. ok is false for unknown kinds.
// An empty id gets a fresh one.
func Create(k Kind, id string, x, y float64, st Style) (Shape, bool) {
	b, ok := registry[k]
	if !ok {
		return Shape{}, false
	}
	if id == "" {
		id = NewID()
	}
	return b.Create(id, x, y, st.withDefaults()), true
}

// UpdateOnDraw applies the kind's draw rule. Unknown kinds are returned unchanged.
func UpdateOnDraw(s Shape, in DrawInput) Shape {
	b, ok := registry[s.Type]
	if !ok {
		return s
	}
	return b.UpdateOnDraw(s.Clone(), in)
}

// IsValidAfterDraw applies the kind's size check with DefaultMinDrawSize.
func IsValidAfterDraw(s Shape) bool { return IsValidAfterDrawMin(s, DefaultMinDrawSize) }

// IsValidAfterDrawMin is IsValidAfterDraw with an explicit minimum.
func IsValidAfterDrawMin(s Shape, min float64) bool {
	b, ok := registry[s.Type]
	if !ok {
		return false
	}
	return b.IsValidAfterDraw(s, min)
}
