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
	"sync"
)

// DefaultTabLength is the column width of a tab character when a Config does
// not override it.
const DefaultTabLength = 4

// Boundary disambiguates the column of a byte offset that falls exactly on a
// grapheme-cluster boundary. It only matters for the exclusive end of a
// span: the cluster containing the last included byte may be more than one
// column wide.
type Boundary int

const (
	// Inclusive reports the column at which the cluster containing (or
	// starting at) the byte begins.
	Inclusive Boundary = iota
	// Exclusive reports the last column occupied by the cluster ending at
	// (or containing) the byte just before the offset. Used for span ends.
	Exclusive
)

// LineColumn is a 0-based (line, display-column) location.
type LineColumn struct {
	Line   int
	Column int
}

// LineRange is a half-open byte range [Start, End) covering one line,
// including its trailing newline if any.
type LineRange struct {
	Start, End int
}

// Source describes one file the index can load: a human-readable name and a
// seekable reader over its bytes. The reader must support being read from
// the beginning after a Seek(0, io.SeekStart).
type Source struct {
	Name   string
	Reader io.ReadSeeker
}

// fileEntry holds an already-loaded file's bytes and its line-start table.
//
// lineStarts satisfies the invariant in spec.md §3: lineStarts[0] == 0,
// lineStarts is strictly increasing, and its last element equals len(text).
// The number of lines is len(lineStarts)-1.
type fileEntry struct {
	name       string
	text       []byte
	lineStarts []int
}

func buildEntry(name string, text []byte) *fileEntry {
	starts := make([]int, 1, 16)
	starts[0] = 0
	for i, b := range text {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	if len(text) == 0 || starts[len(starts)-1] != len(text) {
		starts = append(starts, len(text))
	}
	return &fileEntry{name: name, text: text, lineStarts: starts}
}

func (f *fileEntry) lineCount() int { return len(f.lineStarts) - 1 }

// lineIndex returns the largest line i with lineStarts[i] <= byte.
func (f *fileEntry) lineIndex(byteOffset int) int {
	n := f.lineCount()
	// search over lineStarts[0:n], the real line starts (excluding the
	// trailing sentinel at lineStarts[n]).
	i := sort.Search(n, func(i int) bool { return f.lineStarts[i] > byteOffset })
	if i == 0 {
		return 0
	}
	return i - 1
}

func (f *fileEntry) lineRange(line int) LineRange {
	return LineRange{Start: f.lineStarts[line], End: f.lineStarts[line+1]}
}

// Index resolves byte offsets into source files into line/column locations,
// loading and indexing each file at most once. FileID is any comparable type
// the caller wants to use to name its files (a path string, an integer
// handle, etc); see spec.md §9 "Generic file-id".
type Index[FileID comparable] struct {
	mu      sync.Mutex
	sources map[FileID]Source
	entries map[FileID]*fileEntry
}

// NewIndex builds an index over the given sources. Files are not read until
// first queried.
func NewIndex[FileID comparable](sources map[FileID]Source) *Index[FileID] {
	return &Index[FileID]{
		sources: sources,
		entries: make(map[FileID]*fileEntry, len(sources)),
	}
}

func (ix *Index[FileID]) entry(file FileID) (*fileEntry, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if e, ok := ix.entries[file]; ok {
		return e, nil
	}
	src, ok := ix.sources[file]
	if !ok {
		return nil, &FileNotFoundError{File: file}
	}
	if _, err := src.Reader.Seek(0, io.SeekStart); err != nil {
		return nil, &SeekError{File: file, Err: err}
	}
	text, err := io.ReadAll(src.Reader)
	if err != nil {
		return nil, &ReadError{File: file, Err: err}
	}
	e := buildEntry(src.Name, text)
	ix.entries[file] = e
	return e, nil
}

// Text returns the full contents of a file, loading it if necessary.
func (ix *Index[FileID]) Text(file FileID) ([]byte, error) {
	e, err := ix.entry(file)
	if err != nil {
		return nil, err
	}
	return e.text, nil
}

// Name returns the display name a Source was registered with.
func (ix *Index[FileID]) Name(file FileID) (string, error) {
	e, err := ix.entry(file)
	if err != nil {
		return "", err
	}
	return e.name, nil
}

// LineIndex returns the 0-based line containing byteOffset.
func (ix *Index[FileID]) LineIndex(file FileID, byteOffset int) (int, error) {
	e, err := ix.entry(file)
	if err != nil {
		return 0, err
	}
	return e.lineIndex(clamp(byteOffset, 0, len(e.text))), nil
}

// LastLineIndex returns the 0-based index of the file's final line.
func (ix *Index[FileID]) LastLineIndex(file FileID) (int, error) {
	e, err := ix.entry(file)
	if err != nil {
		return 0, err
	}
	return e.lineCount() - 1, nil
}

// LineRange returns the byte range [start, end) of a line, end being one
// past the trailing newline (or EOF on the last line).
func (ix *Index[FileID]) LineRange(file FileID, line int) (LineRange, error) {
	e, err := ix.entry(file)
	if err != nil {
		return LineRange{}, err
	}
	if line < 0 || line >= e.lineCount() {
		return LineRange{}, fmt.Errorf("report: line %d out of range for %v (%d lines)", line, file, e.lineCount())
	}
	return e.lineRange(line), nil
}

// LineText returns the raw bytes of a line, including its trailing newline
// if present.
func (ix *Index[FileID]) LineText(file FileID, line int) ([]byte, error) {
	e, err := ix.entry(file)
	if err != nil {
		return nil, err
	}
	if line < 0 || line >= e.lineCount() {
		return nil, fmt.Errorf("report: line %d out of range for %v (%d lines)", line, file, e.lineCount())
	}
	r := e.lineRange(line)
	return e.text[r.Start:r.End], nil
}

// ColumnIndex computes the display column of byteOffset within line,
// counting tabs as tabLength columns and everything else by grapheme-cluster
// display width. boundary disambiguates the column when byteOffset falls
// inside (rather than at the start of) a multi-column cluster; span ends
// should use Exclusive.
func (ix *Index[FileID]) ColumnIndex(file FileID, line, byteOffset, tabLength int, boundary Boundary) (int, error) {
	e, err := ix.entry(file)
	if err != nil {
		return 0, err
	}
	if line < 0 || line >= e.lineCount() {
		return 0, fmt.Errorf("report: line %d out of range for %v (%d lines)", line, file, e.lineCount())
	}
	r := e.lineRange(line)
	off := clamp(byteOffset-r.Start, 0, r.End-r.Start)
	return columnInLine(string(e.text[r.Start:r.End]), off, tabLength, boundary), nil
}

// LineColumn computes the (line, column) location of a byte offset in one
// call, equivalent to LineIndex followed by ColumnIndex.
func (ix *Index[FileID]) LineColumn(file FileID, byteOffset, tabLength int, boundary Boundary) (LineColumn, error) {
	e, err := ix.entry(file)
	if err != nil {
		return LineColumn{}, err
	}
	off := clamp(byteOffset, 0, len(e.text))
	line := e.lineIndex(off)
	r := e.lineRange(line)
	col := columnInLine(string(e.text[r.Start:r.End]), off-r.Start, tabLength, boundary)
	return LineColumn{Line: line, Column: col}, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
