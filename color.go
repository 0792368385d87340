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

import "github.com/fatih/color"

// Colors is a pure lookup table mapping (severity, role) pairs to terminal
// styles. It is consulted by the driver around every styled write; it holds
// no state of its own and is safe to share.
type Colors struct {
	Enabled bool

	Error   *color.Color
	Warning *color.Color
	Note    *color.Color
	Help    *color.Color
	Bug     *color.Color

	// Accent is the palette entry for gutter glyphs ("|", line numbers,
	// "-->"). The Renderer writes those glyphs unstyled and does not read
	// this field.
	Accent *color.Color
}

// DefaultColors returns the renderer's built-in severity palette, with
// "bright" realized as bold plus the non-bright hue so width-based
// alignment is unaffected by color.
func DefaultColors() Colors {
	return Colors{
		Enabled: true,
		Error:   color.New(color.FgRed, color.Bold),
		Warning: color.New(color.FgYellow, color.Bold),
		Note:    color.New(color.FgCyan, color.Bold),
		Help:    color.New(color.FgGreen, color.Bold),
		Bug:     color.New(color.FgMagenta, color.Bold),
		Accent:  color.New(color.FgBlue, color.Bold),
	}
}

// forSeverity returns the style used for a severity's own glyphs (its
// header tag, and primary annotations of that severity).
func (c Colors) forSeverity(sev Severity) *color.Color {
	switch sev {
	case Error, Bug:
		if sev == Bug {
			return c.Bug
		}
		return c.Error
	case Warning:
		return c.Warning
	case Note:
		return c.Note
	default:
		return c.Help
	}
}

// forAnnotation returns the style for one annotation's boundary/connection
// glyphs: primary annotations borrow the diagnostic's own severity color,
// secondary annotations always render in the Note color regardless of the
// diagnostic's severity (so context never visually outranks the focus).
func (c Colors) forAnnotation(sev Severity, style AnnotationStyle) *color.Color {
	if style == Secondary {
		return c.Note
	}
	return c.forSeverity(sev)
}

// sprint applies st to s if colors are enabled, else returns s unchanged.
func (c Colors) sprint(st *color.Color, s string) string {
	if !c.Enabled || st == nil {
		return s
	}
	return st.Sprint(s)
}
