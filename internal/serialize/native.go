/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package serialize reads and writes drawings as JSON.
//
// Two formats are produced. The native envelope round-trips every editable
// field. The export document reduces each shape to a single path string and
// is meant for consumers outside the editor. Import accepts both, plus a bare
// array of shapes.
package serialize

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vecdraw/internal/drawing"
	"vecdraw/internal/shape"
)

// CurrentVersion is written into every native envelope.
const CurrentVersion = 2

var (
	ErrInvalidJSON  = errors.New("invalid JSON")
	ErrNoShapes     = errors.New("expected a shapes array")
	ErrCyclicGroups = drawing.ErrCyclicGroups
)

// Envelope is the native document format.
type Envelope struct {
	Version    int              `json:"version"`
	CreatedAt  string           `json:"createdAt"`
	ID         string           `json:"id,omitempty"`
	Name       string           `json:"name,omitempty"`
	Background *string          `json:"background"`
	Shapes     []shape.Shape    `json:"shapes"`
	Groups     []*drawing.Group `json:"groups,omitempty"`
}

// NewEnvelope captures d. Grouped shapes keep their group-local coordinates.
func NewEnvelope(d *drawing.Drawing) Envelope {
	created := d.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	env := Envelope{
		Version:    CurrentVersion,
		CreatedAt:  created.UTC().Format(time.RFC3339),
		ID:         d.ID,
		Name:       d.Name,
		Background: background(d.Background),
		Shapes:     make([]shape.Shape, len(d.Shapes)),
	}
	if env.Shapes == nil {
		env.Shapes = []shape.Shape{}
	}
	for i, s := range d.Shapes {
		env.Shapes[i] = s.Clone()
	}
	env.Groups = d.Clone().Groups
	return env
}

// Marshal writes d as an indented native envelope.
func Marshal(d *drawing.Drawing) ([]byte, error) {
	return json.MarshalIndent(NewEnvelope(d), "", "  ")
}

func background(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Unmarshal decodes a native envelope written by Marshal without running
// import normalization. It is meant for trusted data such as undo snapshots;
// the group tree is still validated.
func Unmarshal(data []byte) (*drawing.Drawing, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	d := &drawing.Drawing{ID: env.ID, Name: env.Name, Shapes: env.Shapes, Groups: env.Groups}
	if env.Background != nil {
		d.Background = *env.Background
	}
	if t, err := time.Parse(time.RFC3339, env.CreatedAt); err == nil {
		d.CreatedAt = t
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
