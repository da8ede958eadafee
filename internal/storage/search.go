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
	"strings"

	"vecdraw/internal/geom"
)

// SearchQuery describes an index lookup.
// Text uses SQLite FTS5 syntax (simple terms, phrases in quotes, AND/OR/NOT)
// and matches the content of text shapes. Types restricts to shape kinds.
// Limit/Offset implement pagination; reasonable defaults applied if zero.
type SearchQuery struct {
	Text    string
	Types   []string
	GroupID string
	Limit   int
	Offset  int
}

// Hit is one indexed shape. Snippet carries [ ] match markers when the
// query used text.
type Hit struct {
	ID      string
	Type    string
	GroupID string
	Z       int
	Bounds  geom.Rect
	Text    string
	Snippet string
}

const hitColumns = "s.id, s.type, COALESCE(s.group_id,''), s.z, s.min_x, s.min_y, s.max_x, s.max_y, COALESCE(s.text,'')"

// Search runs q against the index in paint order. An empty Text lists every
// shape that passes the filters.
func (ix *Index) Search(ctx context.Context, q SearchQuery) ([]Hit, error) {
	var args []any
	var sb strings.Builder
	if strings.TrimSpace(q.Text) != "" {
		sb.WriteString("SELECT " + hitColumns + ", snippet(fts_shapes, 0, '[', ']', '…', 10)\n")
		sb.WriteString("FROM fts_shapes JOIN shapes s ON fts_shapes.rowid = s.rowid\n")
		sb.WriteString("WHERE fts_shapes MATCH ?\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("SELECT " + hitColumns + ", ''\n")
		sb.WriteString("FROM shapes s\nWHERE 1=1\n")
	}
	if len(q.Types) > 0 {
		sb.WriteString(" AND s.type IN (" + placeholders(len(q.Types)) + ")\n")
		for _, t := range q.Types {
			args = append(args, t)
		}
	}
	if g := strings.TrimSpace(q.GroupID); g != "" {
		sb.WriteString(" AND s.group_id = ?\n")
		args = append(args, g)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := max(q.Offset, 0)
	sb.WriteString("ORDER BY s.z\nLIMIT ? OFFSET ?")
	args = append(args, limit, offset)
	return ix.queryHits(ctx, sb.String(), args...)
}

// InRegion returns shapes whose world bounds intersect r, or lie fully
// inside it when contained is set, in paint order.
func (ix *Index) InRegion(ctx context.Context, r geom.Rect, contained bool) ([]Hit, error) {
	r = geom.RectFromPoints(r.Min(), r.Max())
	where := "s.max_x >= ? AND s.min_x <= ? AND s.max_y >= ? AND s.min_y <= ?"
	if contained {
		where = "s.min_x >= ? AND s.max_x <= ? AND s.min_y >= ? AND s.max_y <= ?"
	}
	q := "SELECT " + hitColumns + ", '' FROM shapes s WHERE " + where + " ORDER BY s.z"
	return ix.queryHits(ctx, q, r.X, r.X+r.W, r.Y, r.Y+r.H)
}

// Count returns the number of indexed shapes.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := ix.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM shapes;").Scan(&n); err != nil {
		return 0, fmt.Errorf("count shapes: %w", err)
	}
	return n, nil
}

func (ix *Index) queryHits(ctx context.Context, q string, args ...any) ([]Hit, error) {
	rows, err := ix.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []Hit
	for rows.Next() {
		var h Hit
		var minX, minY, maxX, maxY float64
		var sn sql.NullString
		if err := rows.Scan(&h.ID, &h.Type, &h.GroupID, &h.Z, &minX, &minY, &maxX, &maxY, &h.Text, &sn); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		h.Bounds = geom.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
		if sn.Valid {
			h.Snippet = sn.String
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := strings.Builder{}
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("?")
	}
	return b.String()
}
