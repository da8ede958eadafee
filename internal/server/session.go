/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"vecdraw/internal/crash"
	"vecdraw/internal/edit"
	"vecdraw/internal/editor"
	"vecdraw/internal/export"
	"vecdraw/internal/geom"
	"vecdraw/internal/serialize"
	"vecdraw/internal/version"
)

const (
	readLimit  = 4 << 20
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	inboxSize  = 256
)

// session is one live editor bound to one socket. Only the loop goroutine
// touches the editor; the read pump feeds it through inbox and outgoing
// scenes go through a coalescer so a slow client only ever gets the latest.
type session struct {
	id     string
	conn   *websocket.Conn
	ed     *editor.Editor
	log    *slog.Logger
	inbox  chan Message
	scenes *edit.Coalescer[Message]
	rev    uint64
	sent   bool

	exportOpts serialize.ExportOptions
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.Server.AllowedOrigins,
	})
	if err != nil {
		s.log.Warn("websocket accept failed", slog.Any("err", err))
		return
	}
	id := uuid.New().String()
	c := &session{
		id:    id,
		conn:  conn,
		ed:    editor.New(nil, s.opts),
		log:   s.log.With(slog.String("session", id)),
		inbox: make(chan Message, inboxSize),

		exportOpts: s.opts.Export,
	}
	c.serve(r.Context())
}

func (c *session) serve(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	defer c.conn.CloseNow()

	c.conn.SetReadLimit(readLimit)
	c.scenes = edit.NewCoalescer(func(m Message) {
		if err := c.write(ctx, m); err != nil {
			c.log.Debug("scene write failed", slog.Any("err", err))
		}
	})
	c.log.Info("session opened")

	go c.scenes.Run(ctx, edit.FrameInterval)
	go c.readPump(ctx, cancel)
	go c.pingLoop(ctx)

	c.reply(ctx, TypeWelcome, 0, WelcomePayload{SessionID: c.id, Version: version.String()})
	c.loop(ctx)

	c.log.Info("session closed")
	_ = c.conn.Close(websocket.StatusNormalClosure, "")
}

func (c *session) loop(ctx context.Context) {
	defer crash.RecoverFunc(&crash.Target{Drawing: c.ed.Drawing}, func(any) {
		c.reply(context.Background(), TypeError, 0, ErrorPayload{Message: "internal error"})
	})
	tick := time.NewTicker(edit.FrameInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-c.inbox:
			c.dispatch(ctx, m)
		case <-tick.C:
			c.ed.Frame()
		}
		if rev := c.ed.Revision(); rev != c.rev || !c.sent {
			c.rev, c.sent = rev, true
			c.scenes.Submit(c.scene())
		}
	}
}

func (c *session) readPump(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if ctx.Err() == nil {
					c.log.Debug("read failed", slog.Any("err", err))
				}
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		var m Message
		if err := json.Unmarshal(data, &m); err != nil {
			c.reply(ctx, TypeError, 0, ErrorPayload{Message: "malformed message"})
			continue
		}
		select {
		case c.inbox <- m:
		case <-ctx.Done():
			return
		}
	}
}

func (c *session) pingLoop(ctx context.Context) {
	t := time.NewTicker(pingPeriod)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pctx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				c.log.Debug("ping failed", slog.Any("err", err))
				return
			}
		}
	}
}

func (c *session) write(ctx context.Context, m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return c.conn.Write(wctx, websocket.MessageText, data)
}

func (c *session) reply(ctx context.Context, typ string, seq uint64, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		c.log.Error("encode reply", slog.String("type", typ), slog.Any("err", err))
		return
	}
	if err := c.write(ctx, Message{Type: typ, Seq: seq, Payload: raw}); err != nil && ctx.Err() == nil {
		c.log.Debug("reply write failed", slog.Any("err", err))
	}
}

func (c *session) scene() Message {
	p := ScenePayload{
		Shapes:    c.ed.Scene(),
		Selection: c.ed.Selection(),
		Guides:    c.ed.Guides(),
		Tool:      string(c.ed.Tool()),
		CanUndo:   c.ed.CanUndo(),
		CanRedo:   c.ed.CanRedo(),
	}
	if p.Selection == nil {
		p.Selection = []string{}
	}
	if r, ok := c.ed.Marquee(); ok {
		p.Marquee = &r
	}
	raw, _ := json.Marshal(p)
	return Message{Type: TypeScene, Seq: c.rev, Payload: raw}
}

var errBadPayload = errors.New("bad payload")

func decode(m Message, v any) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("%w: %s needs a payload", errBadPayload, m.Type)
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("%w: %v", errBadPayload, err)
	}
	return nil
}

// dispatch applies one client message to the editor. Commands that return
// something answer with a result; failures answer with an error.
func (c *session) dispatch(ctx context.Context, m Message) {
	ok, data, id, err := c.apply(m)
	if err != nil {
		c.reply(ctx, TypeError, m.Seq, ErrorPayload{Message: err.Error()})
		return
	}
	switch m.Type {
	case TypePointerDown, TypePointerMove, TypePointerUp, TypeKeyDown, TypeKeyUp:
		return
	}
	c.reply(ctx, TypeResult, m.Seq, ResultPayload{Command: m.Type, OK: ok, ID: id, Data: data})
}

func (c *session) apply(m Message) (ok bool, data any, id string, err error) {
	switch m.Type {
	case TypePointerDown, TypePointerMove, TypeDoubleClick:
		var p PointerPayload
		if err := decode(m, &p); err != nil {
			return false, nil, "", err
		}
		pt := geom.P(p.X, p.Y)
		switch m.Type {
		case TypePointerDown:
			c.ed.PointerDown(pt, editor.Button(p.Button), editor.Modifiers{Shift: p.Shift, Alt: p.Alt, Ctrl: p.Ctrl})
		case TypePointerMove:
			c.ed.PointerMove(pt)
		default:
			ok = c.ed.DoubleClick(pt)
		}
		return ok, nil, "", nil
	case TypePointerUp:
		c.ed.PointerUp()
		return true, nil, "", nil
	case TypeKeyDown, TypeKeyUp:
		var p KeyPayload
		if err := decode(m, &p); err != nil {
			return false, nil, "", err
		}
		if m.Type == TypeKeyDown {
			c.ed.KeyDown(p.Key)
		} else {
			c.ed.KeyUp(p.Key)
		}
		return true, nil, "", nil
	case TypeTool:
		var p ToolPayload
		if err := decode(m, &p); err != nil {
			return false, nil, "", err
		}
		if !c.ed.SetTool(editor.Tool(p.Tool)) {
			return false, nil, "", fmt.Errorf("unknown tool %q", p.Tool)
		}
		return true, nil, "", nil
	case TypeSelect:
		var p SelectPayload
		if err := decode(m, &p); err != nil {
			return false, nil, "", err
		}
		c.ed.Select(p.IDs...)
		return true, c.ed.Selection(), "", nil
	case TypeUndo:
		return c.ed.Undo(), nil, "", nil
	case TypeRedo:
		return c.ed.Redo(), nil, "", nil
	case TypeGroup:
		gid, ok := c.ed.Group()
		return ok, nil, gid, nil
	case TypeUngroup:
		return c.ed.Ungroup(), nil, "", nil
	case TypeDelete:
		return c.ed.DeleteSelection(), nil, "", nil
	case TypeFront:
		return c.ed.BringToFront(), nil, "", nil
	case TypeBack:
		return c.ed.SendToBack(), nil, "", nil
	case TypeNudge:
		var p NudgePayload
		if err := decode(m, &p); err != nil {
			return false, nil, "", err
		}
		return c.ed.Nudge(p.DX, p.DY), nil, "", nil
	case TypeSetField:
		var p FieldPayload
		if err := decode(m, &p); err != nil {
			return false, nil, "", err
		}
		return c.ed.SetField(p.ID, p.Key, p.Value), nil, p.ID, nil
	case TypeImport:
		if len(m.Payload) == 0 {
			return false, nil, "", fmt.Errorf("%w: import needs a document", errBadPayload)
		}
		st, err := c.ed.Import(m.Payload)
		if err != nil {
			return false, nil, "", err
		}
		return true, st, "", nil
	case TypeExport:
		return c.export(m)
	}
	return false, nil, "", fmt.Errorf("unknown message type %q", m.Type)
}

// ExportPayload asks for the current drawing in one format.
type ExportPayload struct {
	Format string `json:"format"`
}

func (c *session) export(m Message) (bool, any, string, error) {
	p := ExportPayload{Format: string(export.FormatJSON)}
	if len(m.Payload) > 0 {
		if err := decode(m, &p); err != nil {
			return false, nil, "", err
		}
	}
	f, err := export.ParseFormat(p.Format)
	if err != nil {
		return false, nil, "", err
	}
	if f == export.FormatJSON {
		return true, c.ed.Export(), "", nil
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, f, c.ed.Drawing(), export.Options{JSON: c.exportOpts}); err != nil {
		return false, nil, "", err
	}
	if f == export.FormatSVG {
		return true, buf.String(), "", nil
	}
	// binary formats travel base64 encoded
	return true, buf.Bytes(), "", nil
}
