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
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vecdraw/internal/geom"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := OpenIndex(filepath.Join(t.TempDir(), "index.sqlite"))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { _ = ix.Close() })
	return ix
}

func TestIndexRebuildAndSearch(t *testing.T) {
	ix := openTestIndex(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	d := sampleDrawing(t)
	if _, ok := d.Group("r1", "t1"); !ok {
		t.Fatalf("group failed")
	}
	if err := ix.Rebuild(ctx, d); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if n, err := ix.Count(ctx); err != nil || n != 3 {
		t.Fatalf("count = %d, %v", n, err)
	}
	hits, err := ix.Search(ctx, SearchQuery{Text: "hello"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "t1" || hits[0].GroupID == "" {
		t.Fatalf("hits = %+v", hits)
	}
	if !strings.Contains(hits[0].Snippet, "[hello]") {
		t.Fatalf("snippet = %q", hits[0].Snippet)
	}
	all, err := ix.Search(ctx, SearchQuery{Types: []string{"circle"}})
	if err != nil || len(all) != 1 || all[0].ID != "c1" {
		t.Fatalf("type filter = %+v, %v", all, err)
	}
	if name, _ := ix.Meta(ctx, "drawing_name"); name != "Storage" {
		t.Fatalf("meta name = %q", name)
	}

	// rebuild replaces content
	d.Delete("c1")
	if err := ix.Rebuild(ctx, d); err != nil {
		t.Fatalf("rebuild 2: %v", err)
	}
	if n, _ := ix.Count(ctx); n != 2 {
		t.Fatalf("count after delete = %d", n)
	}
	if hits, _ := ix.Search(ctx, SearchQuery{Text: "hello"}); len(hits) != 1 {
		t.Fatalf("fts out of sync after rebuild: %+v", hits)
	}
}

func TestIndexInRegion(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	if err := ix.Rebuild(ctx, sampleDrawing(t)); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	hits, err := ix.InRegion(ctx, geom.R(40, 30, 100, 100), false)
	if err != nil {
		t.Fatalf("region: %v", err)
	}
	if len(hits) != 2 || hits[0].ID != "r1" || hits[1].ID != "t1" {
		t.Fatalf("intersecting = %+v", hits)
	}
	hits, _ = ix.InRegion(ctx, geom.R(40, 30, 200, 200), true)
	if len(hits) != 1 || hits[0].ID != "t1" {
		t.Fatalf("contained = %+v", hits)
	}
	// negative extents are normalized
	hits, _ = ix.InRegion(ctx, geom.R(320, 320, -40, -40), true)
	if len(hits) != 1 || hits[0].ID != "c1" || hits[0].Bounds != geom.R(290, 290, 20, 20) {
		t.Fatalf("reversed region = %+v", hits)
	}
}

func TestIndexPreview(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	if _, _, _, ok, err := ix.Preview(ctx); ok || err != nil {
		t.Fatalf("empty preview = %v, %v", ok, err)
	}
	if err := ix.PutPreview(ctx, []byte{1, 2, 3}, 3, 1); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := ix.PutPreview(ctx, []byte{4, 5}, 2, 1); err != nil {
		t.Fatalf("put 2: %v", err)
	}
	png, w, h, ok, err := ix.Preview(ctx)
	if err != nil || !ok || len(png) != 2 || w != 2 || h != 1 {
		t.Fatalf("preview = %v %d %d %v %v", png, w, h, ok, err)
	}
}
