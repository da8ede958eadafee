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
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// TestMigrations_UpgradeV1ToV2 ensures that an older DB (schema=1) is migrated and gains the rotation column.
func TestMigrations_UpgradeV1ToV2(t *testing.T) {
	idx := filepath.Join(t.TempDir(), "index.sqlite")
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(2000)", filepath.ToSlash(idx))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`CREATE TABLE IF NOT EXISTS version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO version(id, schema, app, created_at, updated_at) VALUES(1, 1, 'test', '2020-01-01T00:00:00Z', '2020-01-01T00:00:00Z');`,
		`CREATE TABLE IF NOT EXISTS shapes (id TEXT NOT NULL UNIQUE, type TEXT NOT NULL, group_id TEXT, z INTEGER NOT NULL, min_x REAL NOT NULL, min_y REAL NOT NULL, max_x REAL NOT NULL, max_y REAL NOT NULL, text TEXT);`,
		`INSERT INTO shapes(id, type, z, min_x, min_y, max_x, max_y) VALUES('old', 'rect', 0, 0, 0, 1, 1);`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed v1 schema: %v (q=%s)", err, q)
		}
	}
	db.Close()

	ix, err := OpenIndex(idx)
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	defer ix.Close()
	if v, err := ix.SchemaVersion(ctx); err != nil || v != schemaVersion {
		t.Fatalf("schema = %d, %v", v, err)
	}
	var rot float64
	if err := ix.db.QueryRowContext(ctx, `SELECT rotation FROM shapes WHERE id='old'`).Scan(&rot); err != nil || rot != 0 {
		t.Fatalf("rotation column after migration: %v, %v", rot, err)
	}
}

func TestOpenOrRecreateIndex_OnCorruption(t *testing.T) {
	dir := t.TempDir()
	idx := filepath.Join(dir, "index.sqlite")
	if err := os.WriteFile(idx, []byte("THIS IS NOT SQLITE"), 0o644); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ix, recreated, err := OpenOrRecreateIndex(ctx, idx)
	if err != nil {
		t.Fatalf("OpenOrRecreateIndex: %v", err)
	}
	defer ix.Close()
	if !recreated {
		t.Fatalf("expected the index to be recreated")
	}
	if err := ix.Rebuild(ctx, sampleDrawing(t)); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, BackupsDirName))
	if len(entries) == 0 {
		t.Fatalf("expected a backup of the corrupt file")
	}

	// a healthy index is reused
	ix2, recreated, err := OpenOrRecreateIndex(ctx, filepath.Join(t.TempDir(), "fresh.sqlite"))
	if err != nil || recreated {
		t.Fatalf("fresh index: recreated=%v err=%v", recreated, err)
	}
	ix2.Close()
}
