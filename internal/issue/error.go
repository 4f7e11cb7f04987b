/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package issue defines the diagnostics produced while parsing Twee input:
// fatal errors, ordered error lists, and non-fatal warnings. A fatal error
// discards the passage (or, for path errors, the whole input) it was found
// in; a warning never discards anything. Diagnostics carry 1-indexed source
// positions and support row/column offsetting and file tagging so a
// sub-parse's local coordinates can be promoted by its caller.
package issue

import (
	"fmt"
	"strings"

	"gotwee/internal/source"
)

// ErrorType enumerates the fatal diagnoses.
type ErrorType int

const (
	// EmptyName means a passage header has no name.
	EmptyName ErrorType = iota

	// LeadingWhitespace means whitespace precedes the :: sigil.
	LeadingWhitespace

	// MetadataBeforeTags means a header has metadata and tags in the wrong order.
	MetadataBeforeTags

	// MissingSigil means a header line does not start with the :: sigil.
	MissingSigil

	// UnescapedOpenSquare means a passage name contains an unescaped [.
	UnescapedOpenSquare

	// UnescapedOpenCurly means a passage name contains an unescaped {.
	UnescapedOpenCurly

	// UnescapedCloseSquare means a passage name contains an unescaped ].
	UnescapedCloseSquare

	// UnescapedCloseCurly means a passage name contains an unescaped }.
	UnescapedCloseCurly

	// UnclosedTagBlock means a header's tag block is never closed.
	UnclosedTagBlock

	// UnclosedMetadataBlock means a header's metadata block is never closed.
	// Declared for completeness; the tokenizer currently lets an unclosed
	// block run to end of line and surface as a JSON parse warning instead.
	UnclosedMetadataBlock

	// BadInputPath means a path could not be read as Twee input.
	BadInputPath
)

// Error is one fatal diagnosis. Immutable once created; the With*/Offset*
// methods return shifted copies.
type Error struct {
	Type     ErrorType
	Position source.Position

	// ContextLen is the display length of the offending run, for callers
	// that underline source text. Zero when unknown.
	ContextLen int

	// Path and Cause are set for BadInputPath only.
	Path  string
	Cause string
}

// NewError creates an Error of the given type at a story-level position.
func NewError(t ErrorType) Error { return Error{Type: t} }

// WithColumn returns a copy positioned at the given 1-indexed column on
// line 1 of the current parse unit.
func (e Error) WithColumn(col int) Error {
	e.Position.Line = 1
	e.Position.Col = col
	return e
}

// WithContextLen returns a copy with the display length set.
func (e Error) WithContextLen(n int) Error {
	e.ContextLen = n
	return e
}

// OffsetRow returns a copy shifted down by rows.
func (e Error) OffsetRow(rows int) Error {
	e.Position = e.Position.OffsetRow(rows)
	return e
}

// WithFile returns a copy with its position tagged with a file name.
func (e Error) WithFile(name string) Error {
	e.Position = e.Position.WithFile(name)
	return e
}

func (e Error) message() string {
	switch e.Type {
	case EmptyName:
		return "Passage header has an empty name"
	case LeadingWhitespace:
		return "Passage header has whitespace before sigil (::)"
	case MetadataBeforeTags:
		return "Passage header has metadata before tags"
	case MissingSigil:
		return "Passage header missing sigil (::)"
	case UnescapedOpenSquare:
		return "Unescaped [ character in passage header"
	case UnescapedOpenCurly:
		return "Unescaped { character in passage header"
	case UnescapedCloseSquare:
		return "Unescaped ] character in passage header"
	case UnescapedCloseCurly:
		return "Unescaped } character in passage header"
	case UnclosedTagBlock:
		return "Unclosed tag block in passage header"
	case UnclosedMetadataBlock:
		return "Unclosed metadata block in passage header"
	case BadInputPath:
		return fmt.Sprintf("Error opening path %s: %s", e.Path, e.Cause)
	}
	return fmt.Sprintf("unknown error type %d", int(e.Type))
}

// Error implements the error interface.
func (e Error) Error() string {
	if e.Position.IsStoryLevel() && e.Position.File == "" {
		return e.message()
	}
	return fmt.Sprintf("%s: %s", e.Position, e.message())
}

// ErrorList is an ordered collection of fatal diagnoses for one parse unit.
// The nil list is empty and usable.
type ErrorList struct {
	Errors []Error
}

// Push appends an error, preserving discovery order.
func (l *ErrorList) Push(e Error) { l.Errors = append(l.Errors, e) }

// IsEmpty reports whether the list holds no errors. Safe on nil.
func (l *ErrorList) IsEmpty() bool { return l == nil || len(l.Errors) == 0 }

// ErrOrNil returns the list as an error value, or nil when empty. Callers
// returning an error interface must use this instead of the list directly,
// so an empty typed pointer never masquerades as a non-nil error.
func (l *ErrorList) ErrOrNil() error {
	if l.IsEmpty() {
		return nil
	}
	return l
}

// Merge concatenates two lists preserving original order: all of a's errors
// first, then all of b's. Either argument may be nil.
func Merge(a, b *ErrorList) *ErrorList {
	if a.IsEmpty() {
		if b.IsEmpty() {
			return nil
		}
		return b
	}
	if b.IsEmpty() {
		return a
	}
	merged := &ErrorList{Errors: make([]Error, 0, len(a.Errors)+len(b.Errors))}
	merged.Errors = append(merged.Errors, a.Errors...)
	merged.Errors = append(merged.Errors, b.Errors...)
	return merged
}

// OffsetRow shifts every error down by rows, returning the receiver for
// chaining. Safe on nil.
func (l *ErrorList) OffsetRow(rows int) *ErrorList {
	if l == nil {
		return nil
	}
	for i := range l.Errors {
		l.Errors[i] = l.Errors[i].OffsetRow(rows)
	}
	return l
}

// WithFile tags every error with a file name, returning the receiver.
func (l *ErrorList) WithFile(name string) *ErrorList {
	if l == nil {
		return nil
	}
	for i := range l.Errors {
		l.Errors[i] = l.Errors[i].WithFile(name)
	}
	return l
}

// Error implements the error interface by joining the individual messages.
func (l *ErrorList) Error() string {
	msgs := make([]string, len(l.Errors))
	for i, e := range l.Errors {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}
