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
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterBasicLines(t *testing.T) {
	var b strings.Builder
	w := newWriter(&b)
	w.WriteString("hello")
	w.WriteByte(' ')
	w.WriteString("world")
	w.Newline()
	w.WriteString("second")
	w.Flush()
	require.NoError(t, w.Err())
	assert.Equal(t, "hello world\nsecond", b.String())
}

func TestWriterTrimsTrailingWhitespace(t *testing.T) {
	var b strings.Builder
	w := newWriter(&b)
	w.WriteString("abc")
	w.WriteSpaces(5)
	w.Newline()
	assert.Equal(t, "abc\n", b.String())
}

func TestWriterWriteRepeat(t *testing.T) {
	var b strings.Builder
	w := newWriter(&b)
	w.WriteRepeat('x', 3)
	w.Flush()
	assert.Equal(t, "xxx", b.String())
}

func TestWriterFlushOmitsEmptyTrailingLine(t *testing.T) {
	var b strings.Builder
	w := newWriter(&b)
	w.WriteString("abc")
	w.Newline()
	w.Flush() // nothing buffered; must not add a stray blank line
	assert.Equal(t, "abc\n", b.String())
}

type errWriter struct{ err error }

func (e *errWriter) Write(p []byte) (int, error) { return 0, e.err }

func TestWriterPropagatesWriteError(t *testing.T) {
	sentinel := errors.New("disk full")
	w := newWriter(&errWriter{err: sentinel})
	w.WriteString("abc")
	w.Newline()
	require.Error(t, w.Err())
	var we *WriteError
	require.True(t, errors.As(w.Err(), &we))
	assert.ErrorIs(t, we, sentinel)
}

func TestWriterStopsAfterError(t *testing.T) {
	sentinel := errors.New("broken pipe")
	w := newWriter(&errWriter{err: sentinel})
	w.WriteString("abc")
	w.Newline()
	require.Error(t, w.Err())
	// Further calls must be no-ops, not panics, once an error is latched.
	w.WriteString("more")
	w.Newline()
	w.Flush()
	assert.Equal(t, sentinel, errors.Unwrap(w.Err()))
}
