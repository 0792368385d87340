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

import "sort"

// Severity classifies a Diagnostic or a Note. The zero value is Help, the
// least severe; values compare with the usual operators in the order
// listed.
type Severity int

const (
	Help Severity = iota
	Note
	Warning
	Error
	Bug
)

func (s Severity) String() string {
	switch s {
	case Help:
		return "help"
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Bug:
		return "bug"
	default:
		return "unknown"
	}
}

// AnnotationStyle distinguishes an annotation's role: Primary marks the
// focal point of a diagnostic, Secondary provides surrounding context.
type AnnotationStyle int

const (
	Primary AnnotationStyle = iota
	Secondary
)

func (s AnnotationStyle) glyph() byte {
	if s == Primary {
		return '^'
	}
	return '-'
}

// Span is a half-open byte range [Start, End) into one file. End may equal
// Start for a zero-width mark.
type Span struct {
	Start, End int
}

func (s Span) empty() bool { return s.Start == s.End }

// Annotation attaches a label to a span of one file. FileID must match the
// type used by the Index the Renderer is given.
type Annotation[FileID comparable] struct {
	Style AnnotationStyle
	File  FileID
	Span  Span
	Label string
}

// Note is attached to a Diagnostic and printed after its source block.
type Note struct {
	Severity Severity
	Message  string
}

// Diagnostic is one compiler-style message: a severity, an optional code, a
// headline message, zero or more annotated spans, and zero or more trailing
// notes. The order of Annotations is not semantically significant; the
// renderer sorts by file and then by span start before rendering.
type Diagnostic[FileID comparable] struct {
	Severity        Severity
	Name            string
	Message         string
	Annotations     []Annotation[FileID]
	Notes           []Note
	SuppressedCount uint32
}

// Primary returns the diagnostic's focal annotation: the earliest-starting
// primary annotation, or, absent any primary annotation, the
// earliest-starting annotation overall. The second return value is false if
// there are no annotations at all.
func (d *Diagnostic[FileID]) Primary() (Annotation[FileID], bool) {
	var (
		best      Annotation[FileID]
		bestPrim  Annotation[FileID]
		haveAny   bool
		havePrim  bool
	)
	for _, a := range d.Annotations {
		if !haveAny || a.Span.Start < best.Span.Start {
			best = a
			haveAny = true
		}
		if a.Style == Primary && (!havePrim || a.Span.Start < bestPrim.Span.Start) {
			bestPrim = a
			havePrim = true
		}
	}
	if havePrim {
		return bestPrim, true
	}
	return best, haveAny
}

// Report is an ordered collection of diagnostics to render together.
type Report[FileID comparable] struct {
	Diagnostics []Diagnostic[FileID]
}

// Sort stably orders Diagnostics most severe first. Ties are broken by the
// start offset of each diagnostic's focal annotation (see Primary), with
// diagnostics that have annotations placed before those that have none,
// and then by message text. The file an annotation belongs to is not part
// of the key: offsets in different files are compared directly.
func (r *Report[FileID]) Sort() {
	sort.SliceStable(r.Diagnostics, func(i, j int) bool {
		a, b := &r.Diagnostics[i], &r.Diagnostics[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		aStart, aOK := a.Primary()
		bStart, bOK := b.Primary()
		switch {
		case aOK && bOK && aStart.Span.Start != bStart.Span.Start:
			return aStart.Span.Start < bStart.Span.Start
		case aOK != bOK:
			return aOK
		}
		return a.Message < b.Message
	})
}
