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
)

func TestColorsForSeverity(t *testing.T) {
	c := DefaultColors()
	assert.Same(t, c.Error, c.forSeverity(Error))
	assert.Same(t, c.Bug, c.forSeverity(Bug))
	assert.Same(t, c.Warning, c.forSeverity(Warning))
	assert.Same(t, c.Note, c.forSeverity(Note))
	assert.Same(t, c.Help, c.forSeverity(Help))
}

func TestColorsForAnnotationSecondaryAlwaysNote(t *testing.T) {
	c := DefaultColors()
	assert.Same(t, c.Note, c.forAnnotation(Error, Secondary))
	assert.Same(t, c.Note, c.forAnnotation(Bug, Secondary))
}

func TestColorsForAnnotationPrimaryFollowsSeverity(t *testing.T) {
	c := DefaultColors()
	assert.Same(t, c.Error, c.forAnnotation(Error, Primary))
	assert.Same(t, c.Warning, c.forAnnotation(Warning, Primary))
}

func TestColorsSprintDisabled(t *testing.T) {
	c := DefaultColors()
	c.Enabled = false
	assert.Equal(t, "plain", c.sprint(c.Error, "plain"))
}

func TestColorsSprintNilStyle(t *testing.T) {
	c := DefaultColors()
	assert.Equal(t, "plain", c.sprint(nil, "plain"))
}

func TestColorsSprintEnabledAlwaysContainsText(t *testing.T) {
	// Whether fatih/color actually emits escape codes depends on terminal
	// detection it performs itself (NO_COLOR, isatty); that's outside this
	// package's control, so only the substring guarantee is checked here.
	c := DefaultColors()
	out := c.sprint(c.Error, "x")
	assert.Contains(t, out, "x")
}
