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

import "fmt"

// FileNotFoundError is returned when an annotation refers to a file id that
// is absent from the index's source map.
type FileNotFoundError struct {
	File any
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("report: no such file: %v", e.File)
}

// ReadError wraps a failure from a source's underlying reader.
type ReadError struct {
	File any
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("report: reading %v: %s", e.File, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// SeekError wraps a failure from a source's underlying seeker.
type SeekError struct {
	File any
	Err  error
}

func (e *SeekError) Error() string {
	return fmt.Sprintf("report: seeking %v: %s", e.File, e.Err)
}

func (e *SeekError) Unwrap() error { return e.Err }

// WriteError wraps the first failure observed while writing rendered output.
// Render stops and returns this unchanged the moment it occurs.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("report: writing output: %s", e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// invalidSpanError is returned when an annotation's span is out of range for
// its file, or start > end. render rejects the whole diagnostic before
// writing any of it.
type invalidSpanError struct {
	File       any
	Start, End int
	FileLen    int
}

func (e *invalidSpanError) Error() string {
	if e.Start > e.End {
		return fmt.Sprintf("report: invalid span [%d, %d) in %v: start after end", e.Start, e.End, e.File)
	}
	return fmt.Sprintf("report: span [%d, %d) in %v exceeds file length %d", e.Start, e.End, e.File, e.FileLen)
}
