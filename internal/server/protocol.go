/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package server

import (
	"encoding/json"

	"vecdraw/internal/geom"
	"vecdraw/internal/shape"
)

// Message is the envelope of every websocket frame in both directions.
type Message struct {
	Type    string          `json:"type"`
	Seq     uint64          `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	// client to server
	TypePointerDown = "pointer.down"
	TypePointerMove = "pointer.move"
	TypePointerUp   = "pointer.up"
	TypeDoubleClick = "pointer.dblclick"
	TypeKeyDown     = "key.down"
	TypeKeyUp       = "key.up"
	TypeTool        = "tool"
	TypeSelect      = "select"
	TypeUndo        = "undo"
	TypeRedo        = "redo"
	TypeGroup       = "group"
	TypeUngroup     = "ungroup"
	TypeDelete      = "delete"
	TypeFront       = "front"
	TypeBack        = "back"
	TypeNudge       = "nudge"
	TypeSetField    = "field.set"
	TypeImport      = "import"
	TypeExport      = "export"

	// server to client
	TypeWelcome = "welcome"
	TypeScene   = "scene"
	TypeResult  = "result"
	TypeError   = "error"
)

type PointerPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button int     `json:"button,omitempty"`
	Shift  bool    `json:"shift,omitempty"`
	Alt    bool    `json:"alt,omitempty"`
	Ctrl   bool    `json:"ctrl,omitempty"`
}

type KeyPayload struct {
	Key string `json:"key"`
}

type ToolPayload struct {
	Tool string `json:"tool"`
}

type SelectPayload struct {
	IDs []string `json:"ids"`
}

type NudgePayload struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type FieldPayload struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type WelcomePayload struct {
	SessionID string `json:"sessionId"`
	Version   string `json:"version"`
}

// ScenePayload is what a client needs to paint one frame.
type ScenePayload struct {
	Shapes    []shape.Shape `json:"shapes"`
	Selection []string      `json:"selection"`
	Marquee   *geom.Rect    `json:"marquee,omitempty"`
	Guides    []geom.Guide  `json:"guides,omitempty"`
	Tool      string        `json:"tool"`
	CanUndo   bool          `json:"canUndo"`
	CanRedo   bool          `json:"canRedo"`
}

// ResultPayload answers a command that returns something.
type ResultPayload struct {
	Command string `json:"command"`
	OK      bool   `json:"ok"`
	ID      string `json:"id,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
