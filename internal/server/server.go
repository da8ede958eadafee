/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package server exposes the editor over HTTP and websockets: stateless
// normalize and export endpoints plus one live editing session per socket.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"vecdraw/internal/config"
	"vecdraw/internal/drawing"
	"vecdraw/internal/editor"
	"vecdraw/internal/export"
	applog "vecdraw/internal/log"
	"vecdraw/internal/serialize"
	"vecdraw/internal/version"
)

// maxBodyBytes caps uploaded documents.
const maxBodyBytes = 8 << 20

// Server wires the HTTP routes to the editing core.
type Server struct {
	cfg    config.AppConfig
	opts   editor.Options
	log    *slog.Logger
	router *mux.Router
}

// New builds a server from the application config.
func New(cfg config.AppConfig) *Server {
	s := &Server{
		cfg:  cfg,
		opts: editor.OptionsFromConfig(cfg),
		log:  applog.WithComponent("server"),
	}
	r := mux.NewRouter()
	r.Use(s.recovery)
	r.Use(s.requestLog)
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/normalize", s.handleNormalize).Methods("POST")
	api.HandleFunc("/export", s.handleExport).Methods("POST")
	r.HandleFunc("/ws", s.handleWS)
	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", slog.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version.String()})
}

// handleNormalize imports any accepted document shape and answers with the
// native envelope. Import stats travel in headers.
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	d, stats, ok := s.importBody(w, r)
	if !ok {
		return
	}
	b, err := serialize.Marshal(d)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	setStats(w, stats)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// handleExport renders the uploaded document; ?format= picks json, svg, pdf
// or png and defaults to json.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(export.FormatJSON)
	}
	f, err := export.ParseFormat(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	d, stats, ok := s.importBody(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	opt := export.Options{JSON: s.opts.Export, Scale: s.cfg.Export.PNGScale}
	if err := export.Write(&buf, f, d, opt); err != nil {
		s.log.Error("export failed", slog.String("format", string(f)), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	setStats(w, stats)
	w.Header().Set("Content-Type", contentType(f))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) importBody(w http.ResponseWriter, r *http.Request) (d *drawing.Drawing, st serialize.Stats, ok bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return nil, st, false
	}
	d, st, err = serialize.Import(body, s.opts.Style)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, st, false
	}
	return d, st, true
}

func setStats(w http.ResponseWriter, st serialize.Stats) {
	w.Header().Set("X-Vecdraw-Shapes", fmt.Sprint(st.Shapes))
	w.Header().Set("X-Vecdraw-Groups", fmt.Sprint(st.Groups))
	w.Header().Set("X-Vecdraw-Dropped", fmt.Sprint(st.Dropped))
}

func contentType(f export.Format) string {
	switch f {
	case export.FormatSVG:
		return "image/svg+xml"
	case export.FormatPDF:
		return "application/pdf"
	case export.FormatPNG:
		return "image/png"
	}
	return "application/json"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorPayload{Message: msg})
}
