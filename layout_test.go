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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// everyRowEndsInNewline is the structural invariant every calculate() result
// must satisfy regardless of the scenario (spec.md §8).
func everyRowEndsInNewline(t *testing.T, rows []Row) {
	t.Helper()
	for i, row := range rows {
		require.NotEmpty(t, row, "row %d must not be empty", i)
		assert.Equal(t, Newline, row[len(row)-1].Kind, "row %d must end in Newline", i)
	}
}

func TestCalculateScenarioS1InlineLabel(t *testing.T) {
	active := []ActiveAnnotation{
		{ID: 0, Style: Primary, Kind: KindBoth, StartCol: 4, EndCol: 7, Label: "oops"},
	}
	rows, next := calculate(nil, active)
	everyRowEndsInNewline(t, rows)

	require.Len(t, rows, 1, "a single inline label needs only row 0")
	row := rows[0]

	require.GreaterOrEqual(t, len(row), 4)
	assert.Equal(t, ItemStart, row[0].Kind)
	assert.Equal(t, 4, row[0].Column)
	assert.Equal(t, ConnectingSingleline, row[1].Kind)
	assert.Equal(t, 4, row[1].StartCol)
	assert.Equal(t, 7, row[1].EndCol)
	assert.Equal(t, ItemEnd, row[2].Kind)
	assert.Equal(t, 7, row[2].Column)

	label := row[3]
	assert.Equal(t, LabelItem, label.Kind)
	assert.Equal(t, "oops", label.Label)
	assert.Equal(t, 9, label.Column) // EndCol + 2, placed inline

	assert.Empty(t, next, "single-line annotations never open a gutter bar")
}

func TestCalculateScenarioS2StackedLabels(t *testing.T) {
	// Two overlapping single-line annotations: the narrower/later one (B)
	// must stack above the wider one (A), with an intermediate
	// pure-hanging-bar row between the underlines and the first label.
	active := []ActiveAnnotation{
		{ID: 0, Style: Primary, Kind: KindBoth, StartCol: 4, EndCol: 12, Label: "something"},
		{ID: 1, Style: Secondary, Kind: KindBoth, StartCol: 8, EndCol: 10, Label: "something else"},
	}
	rows, next := calculate(nil, active)
	everyRowEndsInNewline(t, rows)
	assert.Empty(t, next)

	require.Len(t, rows, 4, "expect rows 0..3")

	// Row 0: both underlines drawn in full.
	row0Kinds := kindsOf(rows[0])
	assert.Equal(t, []ItemKind{ItemStart, ConnectingSingleline, ItemEnd, ItemStart, ConnectingSingleline, ItemEnd, Newline}, row0Kinds)

	// Row 1: two bare hanging marks, no labels yet.
	row1 := rows[1]
	assert.Equal(t, []ItemKind{Hanging, Hanging, Newline}, kindsOf(row1))
	assert.Equal(t, 4, row1[0].Column)
	assert.Equal(t, 8, row1[1].Column)

	// Row 2: annotation A still hanging, annotation B's label lands here.
	row2 := rows[2]
	assert.Equal(t, []ItemKind{Hanging, LabelItem, Newline}, kindsOf(row2))
	assert.Equal(t, 4, row2[0].Column)
	assert.Equal(t, "something else", row2[1].Label)
	assert.Equal(t, 8, row2[1].Column)

	// Row 3: annotation A's label, alone.
	row3 := rows[3]
	assert.Equal(t, []ItemKind{LabelItem, Newline}, kindsOf(row3))
	assert.Equal(t, "something", row3[0].Label)
	assert.Equal(t, 4, row3[0].Column)
}

func TestCalculateScenarioS3MultilineAnnotation(t *testing.T) {
	// A single annotation spanning three source lines: starts on line 0,
	// runs through a plain continuation on line 1, ends on line 2.
	startRows, continuing := calculate(nil, []ActiveAnnotation{
		{ID: 0, Style: Primary, Kind: KindStart, StartCol: 4},
	})
	everyRowEndsInNewline(t, startRows)
	require.Len(t, continuing, 1)
	assert.Equal(t, 0, continuing[0].AnnotationID)
	bar := continuing[0].BarIndex

	require.Len(t, startRows, 1)
	startKinds := kindsOf(startRows[0])
	assert.Contains(t, startKinds, ConnectingMultiline)
	assert.Contains(t, startKinds, ItemStart)

	midRows, continuing2 := calculate(continuing, nil)
	everyRowEndsInNewline(t, midRows)
	require.Len(t, midRows, 1)
	assert.Equal(t, []ItemKind{ContinuingMultiline, Newline}, kindsOf(midRows[0]))
	require.Len(t, continuing2, 1)
	assert.Equal(t, bar, continuing2[0].BarIndex)

	endRows, continuing3 := calculate(continuing2, []ActiveAnnotation{
		{ID: 0, Style: Primary, Kind: KindEnd, EndCol: 10},
	})
	everyRowEndsInNewline(t, endRows)
	require.Len(t, endRows, 1)
	endKinds := kindsOf(endRows[0])
	assert.Contains(t, endKinds, ConnectingMultiline)
	assert.Contains(t, endKinds, ItemEnd)
	assert.Empty(t, continuing3, "the bar closes once its annotation ends")
}

func TestCalculateReturnsSameResultForSameInput(t *testing.T) {
	active := []ActiveAnnotation{
		{ID: 0, Style: Primary, Kind: KindBoth, StartCol: 4, EndCol: 12, Label: "something"},
		{ID: 1, Style: Secondary, Kind: KindBoth, StartCol: 8, EndCol: 10, Label: "something else"},
	}
	rows1, next1 := calculate(nil, active)
	rows2, next2 := calculate(nil, active)
	assert.Equal(t, rows1, rows2)
	assert.Equal(t, next1, next2)
}

func TestCalculateBarIndicesStayContiguous(t *testing.T) {
	// Two multi-line annotations open at once; when the first (lower bar
	// index) closes, the second's bar index must be re-packed to 0.
	continuing := []ContinuingBar{
		{AnnotationID: 0, BarIndex: 0, Style: Primary},
		{AnnotationID: 1, BarIndex: 1, Style: Primary},
	}
	_, next := calculate(continuing, []ActiveAnnotation{
		{ID: 0, Style: Primary, Kind: KindEnd, EndCol: 5},
	})
	require.Len(t, next, 1)
	assert.Equal(t, 1, next[0].AnnotationID)
	assert.Equal(t, 0, next[0].BarIndex)
}

func kindsOf(row Row) []ItemKind {
	out := make([]ItemKind, len(row))
	for i, it := range row {
		out[i] = it.Kind
	}
	return out
}
