/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

// Style carries the defaults applied to new and imported shapes.
type Style struct {
	Stroke      string
	StrokeWidth float64
	Fill        string
	FontSize    float64
	FontFamily  string
}

// DefaultStyle is used when the caller has no toolbar state of its own.
var DefaultStyle = Style{
	Stroke:      "#1f2937",
	StrokeWidth: 2,
	Fill:        "transparent",
	FontSize:    16,
	FontFamily:  "sans-serif",
}

// withDefaults fills zero fields from DefaultStyle. A zero stroke width is
// kept unless the whole style is zero.
func (st Style) withDefaults() Style {
	if st == (Style{}) {
		return DefaultStyle
	}
	if st.Stroke == "" {
		st.Stroke = DefaultStyle.Stroke
	}
	if st.StrokeWidth < 0 {
		st.StrokeWidth = 0
	}
	if st.Fill == "" {
		st.Fill = DefaultStyle.Fill
	}
	if st.FontSize <= 0 {
		st.FontSize = DefaultStyle.FontSize
	}
	if st.FontFamily == "" {
		st.FontFamily = DefaultStyle.FontFamily
	}
	return st
}

// HasFill reports whether the fill paints anything.
func HasFill(fill string) bool {
	return fill != "" && fill != "transparent" && fill != "none"
}
