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
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// Config holds the options a Renderer needs that are not tied to any one
// Report: how many lines of surrounding context to show, how wide a tab is,
// whether to colorize, and whether to use the one-line Compact form.
type Config struct {
	SurroundingLines int
	TabLength        int
	Colors           Colors
	Compact          bool
}

// DefaultConfig returns the renderer's documented defaults:
// SurroundingLines=1, TabLength=4, colors enabled.
func DefaultConfig() Config {
	return Config{
		SurroundingLines: 1,
		TabLength:        DefaultTabLength,
		Colors:           DefaultColors(),
	}
}

// Renderer drives the whole render: it orders diagnostics, groups
// annotations by file, walks the lines that must be shown, and writes
// styled rows through a writer. A Renderer carries no render-call state of
// its own and can be reused or shared across goroutines serializing their
// own calls; only the wrapped Index accumulates state (its line tables).
type Renderer[FileID comparable] struct {
	Index  *Index[FileID]
	Config Config
}

// NewRenderer builds a Renderer over the given index with the given config.
func NewRenderer[FileID comparable](index *Index[FileID], cfg Config) *Renderer[FileID] {
	return &Renderer[FileID]{Index: index, Config: cfg}
}

// Render writes every diagnostic in rep, in order, separated by a blank
// line, to out. It stops and returns the first error encountered, whether
// from an invalid annotation or from out itself; output already written
// before that point stands.
func (r *Renderer[FileID]) Render(out io.Writer, rep *Report[FileID]) error {
	w := newWriter(out)
	for i := range rep.Diagnostics {
		if i > 0 {
			w.Newline()
		}
		if err := r.renderOne(w, &rep.Diagnostics[i]); err != nil {
			return err
		}
		if err := w.Err(); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Err()
}

// RenderString renders rep into a string, using the same Render logic.
func (r *Renderer[FileID]) RenderString(rep *Report[FileID]) (string, error) {
	var b strings.Builder
	if err := r.Render(&b, rep); err != nil {
		return b.String(), err
	}
	return b.String(), nil
}

// AsError renders rep in compact, one-line-per-diagnostic form and wraps it
// as a plain error, for callers that want to return a Report from a
// function signature that only has room for an error. Returns nil if rep
// has no diagnostics.
func (r *Renderer[FileID]) AsError(rep *Report[FileID]) error {
	if len(rep.Diagnostics) == 0 {
		return nil
	}
	cfg := r.Config
	cfg.Compact = true
	compact := &Renderer[FileID]{Index: r.Index, Config: cfg}
	text, err := compact.RenderString(rep)
	if err != nil {
		return err
	}
	return &reportError{text: strings.TrimRight(text, "\n")}
}

type reportError struct{ text string }

func (e *reportError) Error() string { return e.text }

func (r *Renderer[FileID]) validate(d *Diagnostic[FileID]) error {
	for _, a := range d.Annotations {
		n, err := r.Index.Text(a.File)
		if err != nil {
			return err
		}
		if a.Span.Start > a.Span.End {
			return &invalidSpanError{File: a.File, Start: a.Span.Start, End: a.Span.End, FileLen: len(n)}
		}
		if a.Span.End > len(n) {
			return &invalidSpanError{File: a.File, Start: a.Span.Start, End: a.Span.End, FileLen: len(n)}
		}
	}
	return nil
}

func (r *Renderer[FileID]) renderOne(w *writer, d *Diagnostic[FileID]) error {
	if err := r.validate(d); err != nil {
		return err
	}
	if r.Config.Compact {
		return r.renderCompact(w, d)
	}

	colors := r.Config.Colors
	w.WriteString(colors.sprint(colors.forSeverity(d.Severity), d.Severity.String()))
	if d.Name != "" {
		w.WriteByte('[')
		w.WriteString(d.Name)
		w.WriteByte(']')
	}
	w.WriteString(": ")
	w.WriteString(d.Message)
	w.Newline()

	resolved, order, err := r.resolveByFile(d)
	if err != nil {
		return err
	}

	lineDigits, err := r.computeLineDigits(resolved)
	if err != nil {
		return err
	}

	for _, file := range order {
		if err := r.renderFileBlock(w, file, resolved[file], lineDigits, d.Severity); err != nil {
			return err
		}
	}

	spaces := strings.Repeat(" ", lineDigits+1)
	for _, note := range d.Notes {
		tag := note.Severity.String() + ":"
		lines := strings.Split(note.Message, "\n")
		for i, l := range lines {
			w.WriteString(spaces)
			w.WriteString("= ")
			if i == 0 {
				w.WriteString(colors.sprint(colors.forSeverity(note.Severity), tag))
				w.WriteByte(' ')
			} else {
				w.WriteSpaces(len(tag) + 1)
			}
			w.WriteString(l)
			w.Newline()
		}
	}
	if d.SuppressedCount > 0 {
		w.WriteString(spaces)
		w.WriteString(fmt.Sprintf("... and %d more", d.SuppressedCount))
		w.Newline()
	}
	return w.Err()
}

func (r *Renderer[FileID]) renderCompact(w *writer, d *Diagnostic[FileID]) error {
	colors := r.Config.Colors
	w.WriteString(colors.sprint(colors.forSeverity(d.Severity), d.Severity.String()))
	if d.Name != "" {
		w.WriteByte('[')
		w.WriteString(d.Name)
		w.WriteByte(']')
	}
	w.WriteString(": ")
	if primary, ok := d.Primary(); ok {
		lc, err := r.Index.LineColumn(primary.File, primary.Span.Start, r.Config.TabLength, Inclusive)
		if err != nil {
			return err
		}
		name, err := r.Index.Name(primary.File)
		if err != nil {
			return err
		}
		w.WriteString(fmt.Sprintf("%s:%d:%d: ", name, lc.Line+1, lc.Column+1))
	}
	w.WriteString(d.Message)
	w.Newline()
	return w.Err()
}

// resolvedAnnotation is an Annotation with its span resolved to display
// locations and tagged with a stable id for the layout calculator.
type resolvedAnnotation[FileID comparable] struct {
	id                   int
	ann                  Annotation[FileID]
	startLine, startCol  int
	endLine, endCol      int
}

func (r *Renderer[FileID]) resolveByFile(d *Diagnostic[FileID]) (map[FileID][]resolvedAnnotation[FileID], []FileID, error) {
	groups := map[FileID][]resolvedAnnotation[FileID]{}
	var order []FileID
	id := 0
	for _, a := range d.Annotations {
		if _, ok := groups[a.File]; !ok {
			order = append(order, a.File)
		}
		ra, err := r.resolve(a.File, a, id)
		if err != nil {
			return nil, nil, err
		}
		id++
		groups[a.File] = append(groups[a.File], ra)
	}
	for _, f := range order {
		anns := groups[f]
		sort.SliceStable(anns, func(i, j int) bool { return anns[i].ann.Span.Start < anns[j].ann.Span.Start })
		groups[f] = anns
	}
	return groups, order, nil
}

func (r *Renderer[FileID]) resolve(file FileID, a Annotation[FileID], id int) (resolvedAnnotation[FileID], error) {
	tab := r.Config.TabLength
	if a.Span.empty() {
		lc, err := r.Index.LineColumn(file, a.Span.Start, tab, Inclusive)
		if err != nil {
			return resolvedAnnotation[FileID]{}, err
		}
		return resolvedAnnotation[FileID]{id: id, ann: a, startLine: lc.Line, startCol: lc.Column, endLine: lc.Line, endCol: lc.Column}, nil
	}
	sl, err := r.Index.LineColumn(file, a.Span.Start, tab, Inclusive)
	if err != nil {
		return resolvedAnnotation[FileID]{}, err
	}
	// The end line is chosen by the last included byte (Span.End-1); the
	// column within that line still uses the exclusive boundary (Span.End)
	// so a cluster wider than one column reports its last occupied column
	// rather than its first.
	endLine, err := r.Index.LineIndex(file, a.Span.End-1)
	if err != nil {
		return resolvedAnnotation[FileID]{}, err
	}
	endCol, err := r.Index.ColumnIndex(file, endLine, a.Span.End, tab, Exclusive)
	if err != nil {
		return resolvedAnnotation[FileID]{}, err
	}
	return resolvedAnnotation[FileID]{id: id, ann: a, startLine: sl.Line, startCol: sl.Column, endLine: endLine, endCol: endCol}, nil
}

func (r *Renderer[FileID]) computeLineDigits(groups map[FileID][]resolvedAnnotation[FileID]) (int, error) {
	maxLine := 0
	for _, anns := range groups {
		for _, a := range anns {
			if a.startLine+1 > maxLine {
				maxLine = a.startLine + 1
			}
			if a.endLine+1 > maxLine {
				maxLine = a.endLine + 1
			}
		}
	}
	maxLine += r.Config.SurroundingLines
	digits := 1
	for maxLine >= 10 {
		maxLine /= 10
		digits++
	}
	return digits, nil
}

// lineWindow is a contiguous, possibly-elided range of source lines shown
// for one group of nearby annotations.
type lineWindow struct {
	first, last int
}

func (r *Renderer[FileID]) renderFileBlock(w *writer, file FileID, anns []resolvedAnnotation[FileID], lineDigits int, sev Severity) error {
	if len(anns) == 0 {
		return nil
	}
	colors := r.Config.Colors
	surround := r.Config.SurroundingLines

	last, err := r.Index.LastLineIndex(file)
	if err != nil {
		return err
	}
	name, err := r.Index.Name(file)
	if err != nil {
		return err
	}

	// Focal location for the "--> file:line:col" header: earliest
	// primary annotation in this file, else the earliest annotation.
	focal := anns[0]
	haveFocalPrimary := false
	for _, a := range anns {
		if a.ann.Style == Primary && (!haveFocalPrimary || a.startLine < focal.startLine ||
			(a.startLine == focal.startLine && a.startCol < focal.startCol)) {
			focal = a
			haveFocalPrimary = true
		}
	}

	indent := strings.Repeat(" ", lineDigits+1)
	w.WriteString(indent)
	w.WriteString("--> ")
	w.WriteString(fmt.Sprintf("%s:%d:%d", name, focal.startLine+1, focal.startCol+1))
	w.Newline()

	windows := mergeWindows(anns, surround, last)
	peak := peakBars(anns)
	barsWidth := peak * 2

	var continuing []ContinuingBar
	for gi, win := range windows {
		if gi > 0 {
			prevLast := windows[gi-1].last
			if win.first-prevLast-1 > 2*surround {
				w.WriteString(indent)
				w.WriteString("... ")
				renderBars(w, continuing, colors, barsWidth)
				w.Newline()
			}
		}

		for line := win.first; line <= win.last; line++ {
			active := activeOnLine(anns, line, sev)

			text, err := r.Index.LineText(file, line)
			if err != nil {
				return err
			}
			w.WriteString(fmt.Sprintf("%*d ", lineDigits, line+1))
			w.WriteString("| ")
			renderBars(w, continuing, colors, barsWidth)
			w.WriteString(strings.TrimRight(string(text), "\r\n"))
			w.Newline()

			rows, next := calculate(continuing, active)
			continuing = next

			for _, row := range rows {
				w.WriteString(indent)
				w.WriteString("| ")
				renderRow(w, row, colors, barsWidth)
				w.Newline()
			}
		}
	}
	return nil
}

// activeOnLine builds the ActiveAnnotation list for one source line.
func activeOnLine[FileID comparable](anns []resolvedAnnotation[FileID], line int, sev Severity) []ActiveAnnotation {
	var out []ActiveAnnotation
	for _, a := range anns {
		switch {
		case a.startLine == line && a.endLine == line:
			out = append(out, ActiveAnnotation{
				ID: a.id, Style: a.ann.Style, Severity: sev, Kind: KindBoth,
				StartCol: a.startCol, EndCol: a.endCol, Label: a.ann.Label,
			})
		case a.startLine == line:
			out = append(out, ActiveAnnotation{
				ID: a.id, Style: a.ann.Style, Severity: sev, Kind: KindStart,
				StartCol: a.startCol, Label: a.ann.Label,
			})
		case a.endLine == line:
			out = append(out, ActiveAnnotation{
				ID: a.id, Style: a.ann.Style, Severity: sev, Kind: KindEnd,
				EndCol: a.endCol, Label: a.ann.Label,
			})
		}
	}
	return out
}

// mergeWindows expands each annotation's line range by surround on both
// sides, clips to [0,lastLine], and merges windows that are close enough
// together that the gap between them would not meet the elision threshold.
func mergeWindows[FileID comparable](anns []resolvedAnnotation[FileID], surround, lastLine int) []lineWindow {
	wins := make([]lineWindow, len(anns))
	for i, a := range anns {
		lo, hi := a.startLine-surround, a.endLine+surround
		if lo < 0 {
			lo = 0
		}
		if hi > lastLine {
			hi = lastLine
		}
		wins[i] = lineWindow{lo, hi}
	}
	sort.Slice(wins, func(i, j int) bool { return wins[i].first < wins[j].first })

	var merged []lineWindow
	for _, win := range wins {
		if len(merged) > 0 {
			top := &merged[len(merged)-1]
			if win.first-top.last-1 <= 2*surround {
				if win.last > top.last {
					top.last = win.last
				}
				continue
			}
		}
		merged = append(merged, win)
	}
	return merged
}

// peakBars computes the maximum number of multi-line annotations open
// simultaneously at any line, used to size the gutter so every line in a
// file block lines up under the same column.
func peakBars[FileID comparable](anns []resolvedAnnotation[FileID]) int {
	type event struct {
		line, delta int
	}
	var events []event
	for _, a := range anns {
		if a.startLine == a.endLine {
			continue
		}
		events = append(events, event{a.startLine, 1})
		events = append(events, event{a.endLine + 1, -1})
	}
	sort.Slice(events, func(i, j int) bool { return events[i].line < events[j].line })
	cur, peak := 0, 0
	for _, e := range events {
		cur += e.delta
		if cur > peak {
			peak = cur
		}
	}
	return peak
}

func renderBars(w *writer, bars []ContinuingBar, colors Colors, width int) {
	n := 0
	for _, b := range bars {
		st := colors.forAnnotation(b.Severity, b.Style)
		w.WriteString(colors.sprint(st, "|"))
		w.WriteByte(' ')
		n += 2
	}
	if width > n {
		w.WriteSpaces(width - n)
	}
}

// fill is one item's contribution to a row: a run of text starting at an
// absolute (gutter-then-source) column.
type fill struct {
	col  int
	text string
	st   *color.Color
}

// renderRow paints a layout Row into w. Items are converted to absolute-
// column fills and written into a column-indexed buffer, each overwriting
// whatever a prior fill left at the same column, then the buffer is
// flushed as runs of equally-styled runes. Writing into fixed columns
// rather than advancing a cursor is what lets a narrower, later-emitted
// annotation (e.g. a secondary span nested inside a wider primary one)
// correctly cut into the middle of an earlier fill instead of being pushed
// out past it — see spec.md §8's two-overlapping-annotations scenario.
func renderRow(w *writer, row Row, colors Colors, barsWidth int) {
	var fills []fill
	width := 0
	add := func(col int, text string, st *color.Color) {
		if text == "" {
			return
		}
		fills = append(fills, fill{col, text, st})
		if end := col + len([]rune(text)); end > width {
			width = end
		}
	}

	for _, it := range row {
		switch it.Kind {
		case Newline:
			continue
		case ContinuingMultiline:
			add(it.BarIndex*2, "|", colors.forAnnotation(it.Severity, it.Style))
		case ConnectingMultiline:
			from := it.BarIndex * 2
			to := barsWidth + it.EndColumn
			if to > from {
				add(from, strings.Repeat("_", to-from), colors.forAnnotation(it.Severity, it.Style))
			}
		case ItemStart, ItemEnd:
			glyph := string(it.Style.glyph())
			add(barsWidth+it.Column, glyph, colors.forAnnotation(it.Severity, it.Style))
		case ConnectingSingleline:
			glyph := byte('^')
			if it.Style == Secondary {
				glyph = '-'
			}
			// StartCol and EndCol are already drawn by their own
			// ItemStart/ItemEnd; this fill covers only the columns
			// strictly between them.
			from, to := barsWidth+it.StartCol+1, barsWidth+it.EndCol
			if to > from {
				add(from, strings.Repeat(string(glyph), to-from), colors.forAnnotation(it.Severity, it.Style))
			}
		case Hanging:
			add(barsWidth+it.Column, "|", colors.forAnnotation(it.Severity, it.Style))
		case LabelItem:
			add(barsWidth+it.Column, it.Label, colors.forAnnotation(it.Severity, it.Style))
		}
	}

	if width == 0 {
		return
	}

	buf := make([]rune, width)
	styles := make([]*color.Color, width)
	for i := range buf {
		buf[i] = ' '
	}
	for _, f := range fills {
		for i, r := range []rune(f.text) {
			buf[f.col+i] = r
			styles[f.col+i] = f.st
		}
	}

	for i := 0; i < len(buf); {
		j := i + 1
		for j < len(buf) && styles[j] == styles[i] {
			j++
		}
		w.WriteString(colors.sprint(styles[i], string(buf[i:j])))
		i = j
	}
}
