/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package source models source coordinates for Twee documents: 1-indexed
// line/column positions, optionally tagged with a file name, and spans over
// a shared document buffer. Values are never mutated in place; every shift
// or re-tag produces a new value.
package source

import "fmt"

// Position is a 1-indexed (line, column) coordinate in a document.
// The zero value carries no coordinates and stands for a story-level
// location (for example, a missing StoryTitle has nowhere to point).
type Position struct {
	File string // optional file name; empty until tagged
	Line int    // 1-indexed; 0 for story-level
	Col  int    // 1-indexed; 0 for story-level
}

// At is a shorthand for an untagged coordinate.
func At(line, col int) Position { return Position{Line: line, Col: col} }

// IsStoryLevel reports whether p carries no line/column information.
func (p Position) IsStoryLevel() bool { return p.Line == 0 && p.Col == 0 }

// WithFile returns a copy of p tagged with the given file name. An existing
// tag is kept so that positions promoted through nested parses retain the
// file they originated in.
func (p Position) WithFile(name string) Position {
	if p.File == "" {
		p.File = name
	}
	return p
}

// OffsetRow returns a copy of p shifted down by rows. Story-level positions
// are returned untouched.
func (p Position) OffsetRow(rows int) Position {
	if p.IsStoryLevel() {
		return p
	}
	p.Line += rows
	return p
}

// OffsetCol returns a copy of p shifted right by cols. Story-level positions
// are returned untouched.
func (p Position) OffsetCol(cols int) Position {
	if p.IsStoryLevel() {
		return p
	}
	p.Col += cols
	return p
}

// Sub composes a child coordinate given relative to p with p itself,
// producing the child's document-global position. line and col are 1-indexed
// relative to p: line 1 continues on p's own line, so columns add up; any
// later line is taken as-is below p.
func (p Position) Sub(line, col int) Position {
	if line == 1 {
		return Position{File: p.File, Line: p.Line, Col: p.Col + col - 1}
	}
	return Position{File: p.File, Line: p.Line + line - 1, Col: col}
}

// Compare orders positions lexicographically by (line, column). The file tag
// does not participate.
func (p Position) Compare(o Position) int {
	switch {
	case p.Line != o.Line:
		if p.Line < o.Line {
			return -1
		}
		return 1
	case p.Col != o.Col:
		if p.Col < o.Col {
			return -1
		}
		return 1
	}
	return 0
}

// Before reports whether p orders strictly before o.
func (p Position) Before(o Position) bool { return p.Compare(o) < 0 }

func (p Position) String() string {
	if p.IsStoryLevel() {
		if p.File != "" {
			return p.File
		}
		return "story"
	}
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}
