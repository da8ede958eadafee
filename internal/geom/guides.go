/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "math"

// GuideOptions controls drag snapping of a moving box against other shapes.
type GuideOptions struct {
	// Threshold is the max distance at which snapping happens; <=0 means 6.
	Threshold float64
	Edges     bool
	Centers   bool
}

// Guide is an alignment line produced by a snap, for the caller to draw.
type Guide struct {
	Vertical bool    `json:"vertical"`
	Center   bool    `json:"center"` // centers aligned rather than edges
	Pos      float64 `json:"pos"`
	From     Pt      `json:"from"`
	To       Pt      `json:"to"`
}

type axisBest struct {
	delta, dist float64
	guide       Guide
}

func (b *axisBest) consider(delta, threshold float64, g Guide) {
	if d := math.Abs(delta); d <= threshold && d < b.dist {
		b.delta, b.dist, b.guide = delta, d, g
	}
}

// SnapRect moves a dragged box so its edges or center line up with the nearest
// target within the threshold, independently in X and Y. It returns the
// adjusted box and the guides that caused the adjustment.
func SnapRect(moving Rect, targets []Rect, opts GuideOptions) (Rect, []Guide) {
	th := opts.Threshold
	if th <= 0 {
		th = 6
	}
	bx := axisBest{dist: math.Inf(1)}
	by := axisBest{dist: math.Inf(1)}
	mL, mR, mCX := moving.X, moving.X+moving.W, moving.X+moving.W/2
	mT, mB, mCY := moving.Y, moving.Y+moving.H, moving.Y+moving.H/2

	for _, t := range targets {
		tL, tR, tCX := t.X, t.X+t.W, t.X+t.W/2
		tT, tB, tCY := t.Y, t.Y+t.H, t.Y+t.H/2
		if opts.Edges {
			for _, m := range [2]float64{mL, mR} {
				for _, x := range [2]float64{tL, tR} {
					bx.consider(m-x, th, vguide(x, moving, t, false))
				}
			}
			for _, m := range [2]float64{mT, mB} {
				for _, y := range [2]float64{tT, tB} {
					by.consider(m-y, th, hguide(y, moving, t, false))
				}
			}
		}
		if opts.Centers {
			bx.consider(mCX-tCX, th, vguide(tCX, moving, t, true))
			by.consider(mCY-tCY, th, hguide(tCY, moving, t, true))
		}
	}

	var guides []Guide
	out := moving
	if !math.IsInf(bx.dist, 1) {
		out.X = Round(moving.X-bx.delta, 3)
		guides = append(guides, bx.guide)
	}
	if !math.IsInf(by.dist, 1) {
		out.Y = Round(moving.Y-by.delta, 3)
		guides = append(guides, by.guide)
	}
	return out, guides
}

func vguide(x float64, a, b Rect, center bool) Guide {
	x = Round(x, 3)
	y0 := math.Min(a.Y, b.Y)
	y1 := math.Max(a.Y+a.H, b.Y+b.H)
	return Guide{Vertical: true, Center: center, Pos: x, From: Pt{x, y0}, To: Pt{x, y1}}
}

func hguide(y float64, a, b Rect, center bool) Guide {
	y = Round(y, 3)
	x0 := math.Min(a.X, b.X)
	x1 := math.Max(a.X+a.W, b.X+b.W)
	return Guide{Center: center, Pos: y, From: Pt{x0, y}, To: Pt{x1, y}}
}
