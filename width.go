// Copyright 2020-2024 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import "github.com/rivo/uniseg"

// clusterWidth returns the display width, in columns, of one grapheme
// cluster. Tabs are a fixed tabLength wherever they start, per spec.md §8
// ("every tab contributes tab_length columns") rather than rounding to the
// next tab stop.
func clusterWidth(cluster string, tabLength int) int {
	if cluster == "\t" {
		return tabLength
	}
	w := uniseg.StringWidth(cluster)
	if w < 0 {
		w = 0
	}
	return w
}

// widthBefore returns the total display width of text, grapheme cluster by
// grapheme cluster.
func widthBefore(text string, tabLength int) int {
	col := 0
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		col += clusterWidth(gr.Str(), tabLength)
	}
	return col
}

// columnInLine computes the display column of byte offset "offset" within
// line text "text", per the Inclusive/Exclusive rule in spec.md §4.1.
func columnInLine(text string, offset, tabLength int, boundary Boundary) int {
	offset = clamp(offset, 0, len(text))

	if boundary == Inclusive {
		// Back up to the start of the cluster containing offset, so an
		// offset inside a multi-byte cluster reports the cluster's start.
		start := 0
		gr := uniseg.NewGraphemes(text)
		for gr.Next() {
			end := start + len(gr.Str())
			if end > offset {
				break
			}
			start = end
		}
		return widthBefore(text[:start], tabLength)
	}

	// Exclusive: the column is the start column of the cluster containing
	// byte offset-1, plus that cluster's width minus one (its last
	// occupied column).
	if offset <= 0 {
		return 0
	}

	col := 0
	pos := 0
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		cluster := gr.Str()
		start := pos
		end := pos + len(cluster)
		w := clusterWidth(cluster, tabLength)
		if offset <= end {
			if w > 0 {
				return col + w - 1
			}
			return col
		}
		col += w
		pos = end
		_ = start
	}
	return col
}
