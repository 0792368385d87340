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

// Package report renders compiler-style diagnostics with source-code
// snippets into fixed-width text suitable for a terminal.
//
// A [Report] holds zero or more [Diagnostic] values, each of which
// annotates one or more byte ranges ("annotations") of one or more source
// files with a message. Rendering is split across three collaborating
// pieces:
//
//   - [Index] resolves byte offsets into (line, display-column) locations,
//     lazily, per file.
//   - The unexported layout calculator decides, for a single source line,
//     the exact sequence of glyphs needed to draw every annotation that
//     touches that line, including multi-line brackets, hanging labels, and
//     the gutter of continuing vertical bars.
//   - [Renderer] drives the whole process: it orders diagnostics, groups
//     their annotations by file, walks the lines that need to be shown
//     (eliding long gaps), and writes styled output to an [io.Writer].
//
// Rendering is single-threaded and synchronous; a [Renderer] has no
// internal state of its own and can be reused or shared freely. An [Index]
// does carry state (its lazily-built line tables) and should be reused
// across [Renderer.Render] calls against the same set of files, since
// loading a file is the only part of a render that is linear in the size
// of the source rather than the size of the diagnostic.
package report
