/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package source

import "strings"

// Document holds the full text of one parse unit together with its
// line-start offset table. The table is computed once, in a single linear
// pass; every Span over the document shares it. Spans never keep raw slices
// of the text, only coordinates, so a Document plus two Positions is all
// that is needed to materialize any substring lazily.
type Document struct {
	name       string
	text       string
	lineStarts []int // byte offset of column 1 for each line; index 0 is line 1
}

// NewDocument builds a Document over text. name may be empty when the text
// did not come from a file.
func NewDocument(name, text string) *Document {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Document{name: name, text: text, lineStarts: starts}
}

// Name returns the file name the document was read from, if any.
func (d *Document) Name() string { return d.name }

// Text returns the full document text.
func (d *Document) Text() string { return d.text }

// Lines returns the number of lines in the document. A trailing newline
// counts as starting one more (empty) line, matching the offset table.
func (d *Document) Lines() int { return len(d.lineStarts) }

// Span returns the span covering the whole document.
func (d *Document) Span() Span {
	last := len(d.lineStarts) - 1
	end := Position{File: d.name, Line: last + 1, Col: len(d.text) - d.lineStarts[last]}
	return Span{doc: d, start: Position{File: d.name, Line: 1, Col: 1}, end: end}
}

// Annotate renders the 1-indexed source line with a marker underneath
// covering n columns starting at col, for diagnostics that carry a
// ContextLen. Out-of-range lines render as empty.
func (d *Document) Annotate(line, col, n int) string {
	if line < 1 || line > len(d.lineStarts) {
		return ""
	}
	text := d.Span().Line(line)
	if col < 1 {
		col = 1
	}
	if col > len(text)+1 {
		col = len(text) + 1
	}
	if n < 1 {
		n = 1
	}
	if avail := len(text) - col + 1; n > avail && avail > 0 {
		n = avail
	}
	return text + "\n" + strings.Repeat(" ", col-1) + strings.Repeat("^", n)
}

// byteIndex converts a position to a byte offset into the text. With
// inclusive set, the offset points one past the addressed character, which
// is what an inclusive end of a half-open slice needs.
func (d *Document) byteIndex(p Position, inclusive bool) int {
	x := d.lineStarts[p.Line-1] + p.Col
	if !inclusive {
		x--
	}
	return x
}

// Span is an immutable range [start, end] (end inclusive) over a Document.
// Equality and ordering are coordinate-only.
type Span struct {
	doc        *Document
	start, end Position
}

// Start returns the 1-indexed start position.
func (s Span) Start() Position { return s.start }

// End returns the inclusive 1-indexed end position.
func (s Span) End() Position { return s.end }

// Text materializes the substring the span denotes. The backing buffer is
// sliced, never copied.
func (s Span) Text() string {
	lo := s.doc.byteIndex(s.start, false)
	hi := s.doc.byteIndex(s.end, true)
	if lo >= hi {
		return ""
	}
	return s.doc.text[lo:hi]
}

// Line returns the text of the 1-indexed line within the span, without its
// trailing newline, counting from the span's start line.
func (s Span) Line(n int) string {
	abs := s.start.Line + n - 1
	lo := s.doc.lineStarts[abs-1]
	hi := len(s.doc.text)
	if abs < len(s.doc.lineStarts) {
		hi = s.doc.lineStarts[abs] - 1
	}
	return strings.TrimSuffix(s.doc.text[lo:hi], "\r")
}

// Sub derives a narrower span from coordinates relative to this span's
// start. The child shares the parent's document; its coordinates are
// composed with the parent start so they stay document-global. Deriving a
// sub-span of a sub-span therefore lands on the same text as deriving it
// from the root with composed offsets.
func (s Span) Sub(startLine, startCol, endLine, endCol int) Span {
	return Span{
		doc:   s.doc,
		start: s.start.Sub(startLine, startCol),
		end:   s.start.Sub(endLine, endCol),
	}
}

// Compare orders spans by start, then inclusive end.
func (s Span) Compare(o Span) int {
	if c := s.start.Compare(o.start); c != 0 {
		return c
	}
	return s.end.Compare(o.end)
}

// Equal reports coordinate equality regardless of backing document.
func (s Span) Equal(o Span) bool { return s.Compare(o) == 0 }
