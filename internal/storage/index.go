/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vecdraw/internal/drawing"
	applog "vecdraw/internal/log"
	"vecdraw/internal/shape"
	"vecdraw/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// schemaVersion tracks the local SQLite schema of the shape index.
// Bump this when you perform breaking schema changes and add migrations.
const schemaVersion = 2

// Index is the derived shape index of one drawing.
type Index struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

// OpenIndex opens or creates the index database at path, enables WAL mode
// and brings the schema up to date.
func OpenIndex(path string) (*Index, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_open").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("index path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create index dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	// Convert to forward slashes for the SQLite URI.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure index schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("index ready")
	return &Index{db: db, path: path, log: l}, nil
}

// OpenOrRecreateIndex opens the index at path. When the file cannot be opened
// or fails an integrity check it is backed up, removed and created afresh.
// recreated reports whether that happened; the caller must Rebuild.
func OpenOrRecreateIndex(ctx context.Context, path string) (ix *Index, recreated bool, err error) {
	ix, err = OpenIndex(path)
	if err == nil {
		if ix.healthy(ctx) {
			return ix, false, nil
		}
		_ = ix.Close()
	}
	backupIndexFile(path)
	for _, suffix := range []string{"", "-wal", "-shm"} {
		_ = os.Remove(path + suffix)
	}
	ix, oerr := OpenIndex(path)
	if oerr != nil {
		return nil, false, fmt.Errorf("recreate index: %w (open err: %v)", oerr, err)
	}
	return ix, true, nil
}

func (ix *Index) healthy(ctx context.Context) bool {
	var chk string
	if err := ix.db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
		return false
	}
	_, err := ix.db.ExecContext(ctx, `SELECT 1 FROM shapes LIMIT 1;`)
	return err == nil
}

// Close releases the database.
func (ix *Index) Close() error { return ix.db.Close() }

// Path returns the database file path.
func (ix *Index) Path() string { return ix.path }

// SchemaVersion reports the schema version recorded in the database.
func (ix *Index) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := ix.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// Meta returns a value from the meta table, or "" when unset.
func (ix *Index) Meta(ctx context.Context, key string) (string, error) {
	var v string
	err := ix.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// keep the existing schema for migrations
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			stmts = []string{
				`ALTER TABLE shapes ADD COLUMN rotation REAL NOT NULL DEFAULT 0;`,
			}
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// ensureIndexSchema creates the shape tables and FTS structures if missing.
func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS shapes (
			id       TEXT    NOT NULL UNIQUE,
			type     TEXT    NOT NULL,
			group_id TEXT,
			z        INTEGER NOT NULL,
			min_x    REAL    NOT NULL,
			min_y    REAL    NOT NULL,
			max_x    REAL    NOT NULL,
			max_y    REAL    NOT NULL,
			text     TEXT,
			rotation REAL    NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_shapes_bbox ON shapes(min_x, max_x, min_y, max_y);`,
		`CREATE INDEX IF NOT EXISTS idx_shapes_group ON shapes(group_id);`,

		// External-content FTS5 index over shapes.text, kept in sync by triggers.
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_shapes USING fts5(
			text,
			content='shapes',
			tokenize = 'unicode61'
		);`,

		// Rendered thumbnails of the whole drawing.
		`CREATE TABLE IF NOT EXISTS previews (
			id         INTEGER PRIMARY KEY CHECK(id=1),
			w          INTEGER NOT NULL,
			h          INTEGER NOT NULL,
			png        BLOB    NOT NULL,
			updated_at TEXT    NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS shapes_ai AFTER INSERT ON shapes BEGIN
			INSERT INTO fts_shapes(rowid, text) VALUES (new.rowid, new.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS shapes_ad AFTER DELETE ON shapes BEGIN
			INSERT INTO fts_shapes(fts_shapes, rowid, text) VALUES ('delete', old.rowid, old.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS shapes_au AFTER UPDATE OF text ON shapes BEGIN
			INSERT INTO fts_shapes(fts_shapes, rowid, text) VALUES ('delete', old.rowid, old.text);
			INSERT INTO fts_shapes(rowid, text) VALUES (new.rowid, new.text);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}
	return nil
}

// backupIndexFile copies the index file into a timestamped backup next to it.
func backupIndexFile(indexPath string) {
	bdir := filepath.Join(filepath.Dir(indexPath), BackupsDirName)
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(indexPath), stamp))
	if data, err := os.ReadFile(indexPath); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}

// Rebuild replaces the index content with the shapes of d. Bounds are world
// bounds; group_id is the direct parent group.
func (ix *Index) Rebuild(ctx context.Context, d *drawing.Drawing) error {
	type row struct {
		id, typ string
		group   sql.NullString
		z       int
		minX    float64
		minY    float64
		maxX    float64
		maxY    float64
		text    sql.NullString
		rot     float64
	}
	rows := make([]row, 0, len(d.Shapes))
	for z, s := range d.Shapes {
		ws, ok := d.WorldShape(s.ID)
		if !ok {
			continue
		}
		box, ok := shape.Bounds(ws)
		if !ok {
			continue
		}
		r := row{id: s.ID, typ: string(s.Type), z: z, minX: box.X, minY: box.Y, maxX: box.X + box.W, maxY: box.Y + box.H, rot: ws.Rotation}
		if gid, ok := d.ParentOf(s.ID); ok {
			r.group = sql.NullString{String: gid, Valid: true}
		}
		if t := strings.TrimSpace(s.Text); t != "" {
			r.text = sql.NullString{String: t, Valid: true}
		}
		rows = append(rows, r)
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM shapes;"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear shapes: %w", err)
	}
	ins, err := tx.PrepareContext(ctx, "INSERT INTO shapes(id, type, group_id, z, min_x, min_y, max_x, max_y, text, rotation) VALUES(?,?,?,?,?,?,?,?,?,?);")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()
	for _, r := range rows {
		if _, err := ins.ExecContext(ctx, r.id, r.typ, r.group, r.z, r.minX, r.minY, r.maxX, r.maxY, r.text, r.rot); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert shape: %w", err)
		}
	}
	meta := map[string]string{
		"drawing_id":   d.ID,
		"drawing_name": d.Name,
		"indexed_at":   time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`, k, v); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("write meta: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	ix.log.Info("index rebuilt", slog.String("drawing", d.ID), slog.Int("shapes", len(rows)))
	return nil
}

// PutPreview stores a PNG thumbnail of the drawing.
func (ix *Index) PutPreview(ctx context.Context, png []byte, w, h int) error {
	if len(png) == 0 {
		return errors.New("empty preview")
	}
	_, err := ix.db.ExecContext(ctx, `INSERT INTO previews(id, w, h, png, updated_at) VALUES(1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET w=excluded.w, h=excluded.h, png=excluded.png, updated_at=excluded.updated_at`,
		w, h, png, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store preview: %w", err)
	}
	return nil
}

// Preview returns the stored thumbnail; ok is false when none exists.
func (ix *Index) Preview(ctx context.Context) (png []byte, w, h int, ok bool, err error) {
	err = ix.db.QueryRowContext(ctx, `SELECT png, w, h FROM previews WHERE id=1`).Scan(&png, &w, &h)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, 0, false, nil
	}
	if err != nil {
		return nil, 0, 0, false, fmt.Errorf("read preview: %w", err)
	}
	return png, w, h, true, nil
}
