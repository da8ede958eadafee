/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// LineHeight is the line spacing factor applied to the font size.
const LineHeight = 1.2

// MeasureText returns the box a text label needs at fontSize. Measurement uses
// the fixed 7x13 face scaled to the requested size, so results are
// deterministic across platforms. An empty line still reserves one glyph width.
func MeasureText(text string, fontSize float64) (w, h float64) {
	if fontSize <= 0 {
		fontSize = DefaultStyle.FontSize
	}
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face}
	scale := fontSize / float64(face.Metrics().Height.Round())
	lines := strings.Split(text, "\n")
	var widest float64
	for _, ln := range lines {
		adv := float64(d.MeasureString(ln) >> 6)
		if adv == 0 {
			adv = float64(face.Advance)
		}
		widest = math.Max(widest, adv)
	}
	return widest * scale, float64(len(lines)) * fontSize * LineHeight
}
