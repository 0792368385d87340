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

import (
	"sort"
	"strings"
)

// ItemKind is the tag of a layout item (spec.md §4.2.1).
type ItemKind int

const (
	ContinuingMultiline ItemKind = iota
	ConnectingMultiline
	ItemStart
	ItemEnd
	ConnectingSingleline
	Hanging
	LabelItem
	Newline
)

// Item is one glyph-producing instruction within a layout Row. Which fields
// are meaningful depends on Kind; see the table in spec.md §4.2.1.
type Item struct {
	Kind ItemKind

	BarIndex int // ContinuingMultiline, ConnectingMultiline

	Style    AnnotationStyle
	Severity Severity

	Column      int // Start, End, Hanging, LabelItem
	EndColumn   int // ConnectingMultiline: target column
	StartCol    int // ConnectingSingleline
	EndCol      int // ConnectingSingleline
	AsMultiline bool // ConnectingSingleline

	Label string // LabelItem: this row's sub-line of text
}

// Row is one output line's worth of layout items, always ending in a
// Newline item.
type Row []Item

// ContinuingBar is one multi-line annotation still open in the gutter,
// carried by the driver from one calculate call to the next.
type ContinuingBar struct {
	AnnotationID int
	BarIndex     int
	Style        AnnotationStyle
	Severity     Severity
}

// AnnotationKind classifies an ActiveAnnotation's relationship to the
// current line: it starts here, ends here, or both starts and ends here
// (a single-line annotation).
type AnnotationKind int

const (
	KindStart AnnotationKind = iota
	KindEnd
	KindBoth
)

// ActiveAnnotation is one annotation that starts, ends, or is wholly
// contained on the line being laid out. Columns are display columns already
// resolved through the file index by the caller.
type ActiveAnnotation struct {
	ID       int
	Style    AnnotationStyle
	Severity Severity
	Kind     AnnotationKind
	StartCol int // valid for KindStart, KindBoth
	EndCol   int // valid for KindEnd, KindBoth (inclusive, last occupied column)
	Label    string
}

// vOffset is the (connection, label) pair Pass A/B assign to each entry.
type vOffset struct {
	connection int
	label      int
}

func vmax(a, b vOffset) vOffset {
	if b.connection > a.connection {
		a.connection = b.connection
	}
	if b.label > a.label {
		a.label = b.label
	}
	return a
}

type placement struct {
	ann     *ActiveAnnotation
	sortCol int
	vert     vOffset
}

func kindRank(k AnnotationKind) int {
	switch k {
	case KindStart:
		return 0
	case KindBoth:
		return 1
	default:
		return 2
	}
}

// reachEnd is the rightmost column an entry's own glyphs occupy on this
// line: its end column for KindEnd/KindBoth, its start column for KindStart
// (which has nothing further right on this line).
func reachEnd(a *ActiveAnnotation) int {
	if a.Kind == KindStart {
		return a.StartCol
	}
	return a.EndCol
}

// buildPlacements sorts active annotations by their primary location
// (spec.md §4.2.2) and runs the two-pass vertical-offset assignment.
func buildPlacements(active []ActiveAnnotation) []placement {
	entries := make([]placement, len(active))
	for i := range active {
		a := &active[i]
		sortCol := a.StartCol
		if a.Kind == KindEnd {
			sortCol = a.EndCol
		}
		entries[i] = placement{ann: a, sortCol: sortCol}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].sortCol != entries[j].sortCol {
			return entries[i].sortCol < entries[j].sortCol
		}
		ri, rj := kindRank(entries[i].ann.Kind), kindRank(entries[j].ann.Kind)
		if ri != rj {
			return ri < rj
		}
		return entries[i].ann.ID < entries[j].ann.ID
	})

	assignOffsets(entries)
	return entries
}

func assignOffsets(entries []placement) {
	n := len(entries)

	// Pass A: ending multiline annotations.
	next := vOffset{}
	for i := n - 1; i >= 0; i-- {
		e := &entries[i]
		if e.ann.Kind != KindEnd {
			continue
		}
		rightmost := i == n-1
		if !rightmost && existsStartAtOrBefore(entries, e.sortCol) {
			next = vmax(next, vOffset{1, 2})
		}
		e.vert = next
		next.connection++
		next.label++
		if next.label == 1 {
			next.label = 2
		}
	}

	// Pass B: single-line and starting annotations.
	next = vOffset{}
	endingLabelOffset := 0
	for i := n - 1; i >= 0; i-- {
		e := &entries[i]
		switch e.ann.Kind {
		case KindStart:
			if existsEndAtOrAfter(entries, e.sortCol) {
				next = vmax(next, vOffset{1, 2})
			}
			e.vert.connection = next.connection
			e.vert.label = 0
			next.connection++
			next.label++
			if next.label == 1 {
				next.label = 2
			}
			endingLabelOffset++

		case KindEnd:
			e.vert.label += endingLabelOffset
			if e.vert.label <= e.vert.connection {
				e.vert.label = e.vert.connection + 1
			}

		case KindBoth:
			rightmost := i == n-1
			if e.ann.Label == "" {
				if rightmost {
					next.label += 2
				}
				continue
			}
			if existsOtherReachAtOrAfter(entries, e, e.sortCol) {
				next = vmax(next, vOffset{1, 2})
			}
			e.vert = next
			next.connection++
			next.label++
			if next.label == 1 {
				next.label = 2
			}
		}
	}
}

func existsStartAtOrBefore(entries []placement, col int) bool {
	for i := range entries {
		k := entries[i].ann.Kind
		if (k == KindStart || k == KindBoth) && entries[i].ann.StartCol <= col {
			return true
		}
	}
	return false
}

func existsEndAtOrAfter(entries []placement, col int) bool {
	for i := range entries {
		if entries[i].ann.Kind == KindEnd && entries[i].ann.EndCol >= col {
			return true
		}
	}
	return false
}

func existsOtherReachAtOrAfter(entries []placement, self *placement, col int) bool {
	for i := range entries {
		if entries[i].ann == self.ann {
			continue
		}
		if reachEnd(entries[i].ann) >= col {
			return true
		}
	}
	return false
}

// calculate lays out a single source line. continuing is the ordered list
// of multi-line annotations already open from earlier lines (one per
// gutter bar, in bar-index order); active is everything starting, ending,
// or wholly contained on this line. Columns in active are already resolved
// display columns (file.go/width.go have done the tab/grapheme-width math
// that spec.md §4.2 describes as parameterized by tab_length), so calculate
// itself needs no tab width. It returns the rows to print below the source
// line, and the updated continuing-bar list for the driver to carry into
// the next line (existing bars whose annotation ends on this line are
// dropped; newly-started multi-line annotations are appended).
func calculate(continuing []ContinuingBar, active []ActiveAnnotation) (rows []Row, nextContinuing []ContinuingBar) {
	entries := buildPlacements(active)

	continuingEndIndex := len(continuing)

	// Assign gutter bar indices to newly starting multi-line annotations,
	// in column order.
	barOf := make(map[int]int, len(entries))
	for _, cb := range continuing {
		barOf[cb.AnnotationID] = cb.BarIndex
	}
	var newBars []ContinuingBar
	next := continuingEndIndex
	for i := range entries {
		if entries[i].ann.Kind == KindStart {
			barOf[entries[i].ann.ID] = next
			newBars = append(newBars, ContinuingBar{
				AnnotationID: entries[i].ann.ID,
				BarIndex:     next,
				Style:        entries[i].ann.Style,
				Severity:     entries[i].ann.Severity,
			})
			next++
		}
	}

	allBars := make([]ContinuingBar, 0, len(continuing)+len(newBars))
	allBars = append(allBars, continuing...)
	allBars = append(allBars, newBars...)

	maxRow := 0
	for i := range entries {
		e := &entries[i]
		if e.ann.Kind != KindBoth {
			if e.vert.connection > maxRow {
				maxRow = e.vert.connection
			}
		}
		if e.ann.Label != "" {
			n := e.vert.label + strings.Count(e.ann.Label, "\n")
			if n > maxRow {
				maxRow = n
			}
		}
	}

	for r := 0; r <= maxRow; r++ {
		var row Row

		// Step 2: connecting multilines for this row, computed first so
		// step 1 can skip redrawing a plain bar under a connector.
		connectingBars := map[int]bool{}
		var connectingItems []Item
		for i := len(entries) - 1; i >= 0; i-- {
			e := &entries[i]
			if e.ann.Kind == KindBoth || e.vert.connection != r {
				continue
			}
			bar, ok := barOf[e.ann.ID]
			if !ok {
				continue
			}
			col := e.ann.StartCol
			if e.ann.Kind == KindEnd {
				col = e.ann.EndCol
			}
			connectingItems = append(connectingItems, Item{
				Kind:      ConnectingMultiline,
				BarIndex:  bar,
				Style:     e.ann.Style,
				Severity:  e.ann.Severity,
				EndColumn: col,
			})
			connectingBars[bar] = true
		}

		// Step 1: continuing bars, skipping any bar with a connector this row.
		for _, cb := range allBars {
			if connectingBars[cb.BarIndex] {
				continue
			}
			row = append(row, Item{
				Kind:     ContinuingMultiline,
				BarIndex: cb.BarIndex,
				Style:    cb.Style,
				Severity: cb.Severity,
			})
		}
		row = append(row, connectingItems...)

		// Step 3: row 0 only, start/end/single-line underline marks.
		if r == 0 {
			for i := range entries {
				e := &entries[i]
				switch e.ann.Kind {
				case KindStart:
					row = append(row, Item{Kind: ItemStart, Column: e.ann.StartCol, Style: e.ann.Style, Severity: e.ann.Severity})
				case KindEnd:
					row = append(row, Item{Kind: ItemEnd, Column: e.ann.EndCol, Style: e.ann.Style, Severity: e.ann.Severity})
				case KindBoth:
					row = append(row, Item{Kind: ItemStart, Column: e.ann.StartCol, Style: e.ann.Style, Severity: e.ann.Severity})
					// Every annotation gets exactly one start and one end
					// item, even a zero-width or single-column span where
					// they land on the same column (spec.md §7, §8.4); the
					// renderer is responsible for coalescing same-column
					// marks instead of the layout omitting one.
					if e.ann.EndCol > e.ann.StartCol {
						row = append(row, Item{
							Kind:     ConnectingSingleline,
							StartCol: e.ann.StartCol,
							EndCol:   e.ann.EndCol,
							Style:    e.ann.Style,
							Severity: e.ann.Severity,
						})
					}
					row = append(row, Item{Kind: ItemEnd, Column: e.ann.EndCol, Style: e.ann.Style, Severity: e.ann.Severity})
				}
			}
		}

		// Step 4: rows >= 1, hanging marks.
		if r >= 1 {
			for i := range entries {
				e := &entries[i]
				if e.vert.connection > r || e.vert.label > r {
					col := e.ann.StartCol
					if e.ann.Kind == KindEnd {
						col = e.ann.EndCol
					}
					row = append(row, Item{Kind: Hanging, Column: col, Style: e.ann.Style, Severity: e.ann.Severity})
				}
			}
		}

		// Step 5: at most one label this row (plus any continuation
		// sub-line of a multi-line label already in progress).
		for i := range entries {
			e := &entries[i]
			if e.ann.Label == "" || e.ann.Kind == KindStart {
				continue
			}
			sublines := strings.Split(e.ann.Label, "\n")
			if r < e.vert.label || r >= e.vert.label+len(sublines) {
				continue
			}
			col := e.ann.StartCol
			if e.ann.Kind == KindEnd {
				col = e.ann.EndCol + 2
			} else if e.vert.label == 0 {
				col = e.ann.EndCol + 2
			}
			row = append(row, Item{
				Kind:     LabelItem,
				Column:   col,
				Label:    sublines[r-e.vert.label],
				Style:    e.ann.Style,
				Severity: e.ann.Severity,
			})
		}

		row = append(row, Item{Kind: Newline})
		rows = append(rows, row)
	}

	// Drop bars whose annotation ended on this line; keep the rest.
	ended := map[int]bool{}
	for i := range entries {
		if entries[i].ann.Kind == KindEnd {
			ended[entries[i].ann.ID] = true
		}
	}
	for _, cb := range allBars {
		if !ended[cb.AnnotationID] {
			nextContinuing = append(nextContinuing, cb)
		}
	}
	// Re-pack bar indices so they stay contiguous from 0.
	for i := range nextContinuing {
		nextContinuing[i].BarIndex = i
	}

	return rows, nextContinuing
}
