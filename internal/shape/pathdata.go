/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"vecdraw/internal/geom"
)

// ErrEmptyPath is returned by ParsePathData for blank input.
var ErrEmptyPath = errors.New("empty path")

// Subpath is one flattened run of path data.
type Subpath struct {
	Points []geom.Pt
	Closed bool
}

// curveSteps is the number of line segments a parsed curve is flattened into.
const curveSteps = 16

var (
	pathCmdRe = regexp.MustCompile(`([MmLlHhVvQqCcZz])([^MmLlHhVvQqCcZz]*)`)
	pathNumRe = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)
)

// ParsePathData flattens SVG path data made of M, L, H, V, Q, C and Z commands
// (absolute and relative, with implicit repeats) into polylines. Other
// commands are rejected.
func ParsePathData(d string) ([]Subpath, error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return nil, ErrEmptyPath
	}
	if rest := strings.TrimSpace(pathCmdRe.ReplaceAllString(d, "")); rest != "" {
		return nil, fmt.Errorf("unsupported path data near %q", rest)
	}

	var (
		out   []Subpath
		cur   *Subpath
		pos   geom.Pt
		start geom.Pt
	)
	lineTo := func(p geom.Pt) {
		if cur == nil {
			out = append(out, Subpath{Points: []geom.Pt{pos}})
			cur = &out[len(out)-1]
		}
		cur.Points = append(cur.Points, p)
		pos = p
	}

	for _, m := range pathCmdRe.FindAllStringSubmatch(d, -1) {
		cmd := m[1][0]
		nums, err := parseNums(m[2])
		if err != nil {
			return nil, err
		}
		rel := cmd >= 'a'
		at := func(x, y float64) geom.Pt {
			if rel {
				return geom.Pt{X: pos.X + x, Y: pos.Y + y}
			}
			return geom.Pt{X: x, Y: y}
		}
		arity := map[byte]int{'m': 2, 'l': 2, 'h': 1, 'v': 1, 'q': 4, 'c': 6, 'z': 0}[cmd|0x20]
		if arity == 0 {
			if len(nums) != 0 {
				return nil, fmt.Errorf("%c takes no arguments", cmd)
			}
			if cur != nil {
				cur.Closed = true
				cur = nil
			}
			pos = start
			continue
		}
		if len(nums) == 0 || len(nums)%arity != 0 {
			return nil, fmt.Errorf("%c expects a multiple of %d numbers, got %d", cmd, arity, len(nums))
		}
		for i := 0; i < len(nums); i += arity {
			a := nums[i : i+arity]
			switch cmd | 0x20 {
			case 'm':
				if i == 0 {
					pos = at(a[0], a[1])
					start = pos
					out = append(out, Subpath{Points: []geom.Pt{pos}})
					cur = &out[len(out)-1]
				} else {
					lineTo(at(a[0], a[1]))
				}
			case 'l':
				lineTo(at(a[0], a[1]))
			case 'h':
				if rel {
					lineTo(geom.Pt{X: pos.X + a[0], Y: pos.Y})
				} else {
					lineTo(geom.Pt{X: a[0], Y: pos.Y})
				}
			case 'v':
				if rel {
					lineTo(geom.Pt{X: pos.X, Y: pos.Y + a[0]})
				} else {
					lineTo(geom.Pt{X: pos.X, Y: a[0]})
				}
			case 'q':
				p0, c, p1 := pos, at(a[0], a[1]), at(a[2], a[3])
				for _, p := range geom.FlattenQuad(p0, c, p1, curveSteps)[1:] {
					lineTo(p)
				}
			case 'c':
				p0, c1, c2, p1 := pos, at(a[0], a[1]), at(a[2], a[3]), at(a[4], a[5])
				for _, p := range geom.FlattenCubic(p0, c1, c2, p1, curveSteps)[1:] {
					lineTo(p)
				}
			}
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptyPath
	}
	return out, nil
}

func parseNums(s string) ([]float64, error) {
	toks := pathNumRe.FindAllString(s, -1)
	if rest := strings.Trim(pathNumRe.ReplaceAllString(s, ""), " \t\r\n,"); rest != "" {
		return nil, fmt.Errorf("bad number in path data %q", strings.TrimSpace(s))
	}
	out := make([]float64, 0, len(toks))
	for _, t := range toks {
		v, err := strconv.ParseFloat(t, 64)
		if err != nil || !geom.Finite(v) {
			return nil, fmt.Errorf("bad number %q in path data", t)
		}
		out = append(out, v)
	}
	return out, nil
}

// PathDataBounds returns the bounding box of parsed path data.
func PathDataBounds(d string) (geom.Rect, bool) {
	subs, err := ParsePathData(d)
	if err != nil {
		return geom.Rect{}, false
	}
	var (
		box   geom.Rect
		found bool
	)
	for _, sp := range subs {
		for _, p := range sp.Points {
			pr := geom.Rect{X: p.X, Y: p.Y}
			if !found {
				box, found = pr, true
			} else {
				box = box.Union(pr)
			}
		}
	}
	return box, found
}

// rectPathData is a closed w×h rectangle path starting at the origin.
func rectPathData(w, h float64) string {
	f := func(v float64) string { return strconv.FormatFloat(geom.Round(v, 2), 'f', -1, 64) }
	return "M0 0 L" + f(w) + " 0 L" + f(w) + " " + f(h) + " L0 " + f(h) + " Z"
}

// FormatPathData renders polylines as M/L/Z path data with coordinates rounded
// to precision decimals. Runs with no points are skipped.
func FormatPathData(pls []Polyline, precision int) string {
	var b strings.Builder
	num := func(v float64) string {
		return strconv.FormatFloat(geom.Round(v, precision), 'f', -1, 64)
	}
	for _, pl := range pls {
		for i, p := range pl.Points {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			if i == 0 {
				b.WriteByte('M')
			} else {
				b.WriteByte('L')
			}
			b.WriteString(num(p.X))
			b.WriteByte(' ')
			b.WriteString(num(p.Y))
		}
		if pl.Closed && len(pl.Points) > 0 {
			b.WriteString(" Z")
		}
	}
	return b.String()
}
