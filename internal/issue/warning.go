/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package issue

import (
	"fmt"

	"gotwee/internal/source"
)

// WarningType enumerates the non-fatal diagnoses.
type WarningType int

const (
	// EscapedOpenSquare flags a \[ sequence in a passage name.
	EscapedOpenSquare WarningType = iota

	// EscapedCloseSquare flags a \] sequence in a passage name.
	EscapedCloseSquare

	// EscapedOpenCurly flags a \{ sequence in a passage name.
	EscapedOpenCurly

	// EscapedCloseCurly flags a \} sequence in a passage name.
	EscapedCloseCurly

	// JsonError flags metadata that failed to parse as JSON; the defaults
	// are kept and the passage survives.
	JsonError

	// DuplicateStoryTitle flags a StoryTitle passage after one was already seen.
	DuplicateStoryTitle

	// DuplicateStoryData flags a StoryData passage after one was already seen.
	DuplicateStoryData

	// MissingStoryTitle flags a story assembled without a StoryTitle passage.
	MissingStoryTitle

	// MissingStoryData flags a story assembled without a StoryData passage.
	MissingStoryData

	// UnclosedLink flags a [[ with no matching ]] in passage text.
	UnclosedLink

	// WhitespaceInLink flags errant whitespace inside a [[...]] link.
	WhitespaceInLink

	// DeadLink flags a link to a passage name that does not exist.
	DeadLink
)

// Warning is one non-fatal diagnosis. The With*/Offset* methods return
// shifted copies.
type Warning struct {
	Type     WarningType
	Position source.Position

	// Referent points at a related location: for duplicate-special warnings
	// it is the position of the already-accepted passage.
	Referent *source.Position

	// Target is the link target for DeadLink warnings.
	Target string

	// Message carries parser detail for JsonError warnings.
	Message string

	// ContextLen is the display length of the flagged run, zero if unknown.
	ContextLen int
}

// NewWarning creates a Warning of the given type at a story-level position.
func NewWarning(t WarningType) Warning { return Warning{Type: t} }

// At returns a copy positioned at the given 1-indexed coordinate.
func (w Warning) At(line, col int) Warning {
	w.Position.Line = line
	w.Position.Col = col
	return w
}

// WithColumn returns a copy positioned at col on line 1 of the current unit.
func (w Warning) WithColumn(col int) Warning { return w.At(1, col) }

// WithContextLen returns a copy with the display length set.
func (w Warning) WithContextLen(n int) Warning {
	w.ContextLen = n
	return w
}

// WithReferent returns a copy pointing at a related position.
func (w Warning) WithReferent(p source.Position) Warning {
	w.Referent = &p
	return w
}

// OffsetRow returns a copy shifted down by rows. The referent is not
// shifted: it already carries document-global coordinates when set.
func (w Warning) OffsetRow(rows int) Warning {
	w.Position = w.Position.OffsetRow(rows)
	return w
}

// OffsetCol returns a copy shifted right by cols.
func (w Warning) OffsetCol(cols int) Warning {
	w.Position = w.Position.OffsetCol(cols)
	return w
}

// WithFile returns a copy with position and referent tagged with a file name.
func (w Warning) WithFile(name string) Warning {
	w.Position = w.Position.WithFile(name)
	if w.Referent != nil {
		r := w.Referent.WithFile(name)
		w.Referent = &r
	}
	return w
}

func (w Warning) message() string {
	switch w.Type {
	case EscapedOpenSquare:
		return "Escaped [ character in passage header"
	case EscapedCloseSquare:
		return "Escaped ] character in passage header"
	case EscapedOpenCurly:
		return "Escaped { character in passage header"
	case EscapedCloseCurly:
		return "Escaped } character in passage header"
	case JsonError:
		return fmt.Sprintf("Error encountered while parsing JSON: %s", w.Message)
	case DuplicateStoryTitle:
		return "Multiple StoryTitle passages found"
	case DuplicateStoryData:
		return "Multiple StoryData passages found"
	case MissingStoryTitle:
		return "No StoryTitle passage found"
	case MissingStoryData:
		return "No StoryData passage found"
	case UnclosedLink:
		return "Unclosed passage link"
	case WhitespaceInLink:
		return "Whitespace in passage link"
	case DeadLink:
		return fmt.Sprintf("Dead link to nonexistent passage: %s", w.Target)
	}
	return fmt.Sprintf("unknown warning type %d", int(w.Type))
}

func (w Warning) String() string {
	s := w.message()
	if !(w.Position.IsStoryLevel() && w.Position.File == "") {
		s = fmt.Sprintf("%s: %s", w.Position, s)
	}
	if w.Referent != nil {
		s = fmt.Sprintf("%s (first at %s)", s, w.Referent)
	}
	return s
}

// OffsetWarnings shifts a slice of warnings down by rows, in place, and
// returns it.
func OffsetWarnings(ws []Warning, rows int) []Warning {
	for i := range ws {
		ws[i] = ws[i].OffsetRow(rows)
	}
	return ws
}

// TagWarnings tags a slice of warnings with a file name, in place, and
// returns it.
func TagWarnings(ws []Warning, name string) []Warning {
	for i := range ws {
		ws[i] = ws[i].WithFile(name)
	}
	return ws
}
