/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package passage parses single Twee passages: the header line (name, tags,
// metadata) and the body (content classification and link extraction).
// Header parsing is heuristic, not grammatical: a malformed line is
// classified as far as possible and every problem found is reported, so a
// header can be flagged for a missing sigil and an unescaped brace at once.
package passage

import (
	"errors"
	"strings"
	"unicode"

	json "github.com/goccy/go-json"

	"gotwee/internal/issue"
	"gotwee/internal/source"
)

// Sigil is the two-character marker that opens a passage header line.
const Sigil = "::"

// Header is one passage's declaration line: name, ordered tag list, and
// metadata map. The metadata is seeded with the Twine defaults for position
// and size; keys parsed from the header override them.
type Header struct {
	Name     string
	Tags     []string
	Metadata map[string]any
	Position source.Position
}

// HasTag reports whether the header carries the given tag.
func (h *Header) HasTag(tag string) bool {
	for _, t := range h.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// defaultMetadata returns the seed map applied to every header.
func defaultMetadata() map[string]any {
	return map[string]any{"position": "10,10", "size": "100,100"}
}

// ParseHeader tokenizes one header line. All coordinates in the returned
// diagnostics are relative to the line itself (line 1); the caller promotes
// them to document coordinates.
//
// Errors never short-circuit: the whole line is examined and every fatal
// problem is accumulated. When the error list is non-empty the header is
// discarded and no warnings are returned; otherwise the header is returned
// together with any escape or JSON warnings collected along the way.
func ParseHeader(input string) (*Header, []issue.Warning, *issue.ErrorList) {
	var warnings []issue.Warning
	errs := &issue.ErrorList{}

	if !strings.HasPrefix(input, Sigil) {
		trimmed := strings.TrimLeftFunc(input, unicode.IsSpace)
		if strings.HasPrefix(trimmed, Sigil) {
			errs.Push(issue.NewError(issue.LeadingWhitespace).
				WithColumn(1).
				WithContextLen(len(input) - len(trimmed)))
		} else {
			errs.Push(issue.NewError(issue.MissingSigil).
				WithColumn(1).
				WithContextLen(1))
		}
	}

	// Everything to the right of nameEnd has been claimed by metadata or
	// tags; only the prefix can still be the name.
	nameEnd := len(input)

	metadata := defaultMetadata()
	if lo, hi, ok := guessMetadataRange(input); ok {
		nameEnd = lo

		// Tags must precede metadata.
		if findLastUnescaped(input[hi:], '[') >= 0 {
			errs.Push(issue.NewError(issue.MetadataBeforeTags).
				WithColumn(lo + 1).
				WithContextLen(hi - lo))
		}

		metaStr := input[lo:hi]
		parsed := map[string]any{}
		if err := json.Unmarshal([]byte(metaStr), &parsed); err != nil {
			// Malformed metadata never fails the header: keep the defaults
			// and report where the parser gave up.
			col := jsonErrorColumn(err, len(metaStr))
			w := issue.NewWarning(issue.JsonError)
			w.Message = jsonErrorMessage(err)
			warnings = append(warnings, w.
				WithColumn(col).
				WithContextLen(len(metaStr)-col+1).
				OffsetCol(lo))
		} else {
			for k, v := range parsed {
				metadata[k] = v
			}
		}
	}

	tags := []string{}
	if pos := findLastUnescaped(input[:nameEnd], '['); pos >= 0 {
		if rel := findFirstUnescaped(input[pos+1:nameEnd], ']'); rel >= 0 {
			tags = strings.Fields(input[pos+1 : pos+1+rel])
		} else {
			errs.Push(issue.NewError(issue.UnclosedTagBlock).
				WithColumn(pos + 1).
				WithContextLen(nameEnd - pos))
		}
		if pos < nameEnd {
			nameEnd = pos
		}
	}

	// Each special character class is checked independently so distinct
	// fatal errors can co-exist. An unescaped occurrence is fatal at its
	// first location; escaped occurrences each warn at the backslash.
	for _, c := range []struct {
		ch byte
		e  issue.ErrorType
		w  issue.WarningType
	}{
		{'{', issue.UnescapedOpenCurly, issue.EscapedOpenCurly},
		{'}', issue.UnescapedCloseCurly, issue.EscapedCloseCurly},
		{'[', issue.UnescapedOpenSquare, issue.EscapedOpenSquare},
		{']', issue.UnescapedCloseSquare, issue.EscapedCloseSquare},
	} {
		escaped, firstBad := scanName(input[:nameEnd], c.ch)
		if firstBad >= 0 {
			errs.Push(issue.NewError(c.e).WithColumn(firstBad + 1).WithContextLen(1))
			continue
		}
		for _, idx := range escaped {
			warnings = append(warnings, issue.NewWarning(c.w).
				WithColumn(idx+1).
				WithContextLen(2))
		}
	}

	var name string
	if nameEnd > len(Sigil) {
		name = strings.ReplaceAll(strings.TrimSpace(input[len(Sigil):nameEnd]), `\`, "")
	}
	if name == "" {
		errs.Push(issue.NewError(issue.EmptyName).WithColumn(3).WithContextLen(1))
	}

	if !errs.IsEmpty() {
		return nil, nil, errs
	}
	return &Header{
		Name:     name,
		Tags:     tags,
		Metadata: metadata,
		Position: source.At(1, 1),
	}, warnings, nil
}

// guessMetadataRange finds the [lo, hi) byte range of the metadata block
// using the unescaped-brace heuristic: no open brace means no metadata; an
// open with no close runs to end of line; when opens outnumber closes the
// earliest unmatched opens are treated as part of the name and the block
// starts at the first open that can still be matched.
func guessMetadataRange(input string) (lo, hi int, ok bool) {
	opens := findAllUnescaped(input, '{')
	closes := findAllUnescaped(input, '}')

	switch {
	case len(opens) == 0:
		return 0, 0, false
	case len(closes) == 0:
		return opens[len(opens)-1], len(input), true
	case len(opens) > len(closes):
		diff := len(opens) - len(closes)
		return opens[diff], closes[len(closes)-1] + 1, true
	default:
		return opens[0], closes[len(closes)-1] + 1, true
	}
}

// findAllUnescaped returns the indices of every occurrence of ch in s that
// is not preceded by a backslash.
func findAllUnescaped(s string, ch byte) []int {
	var out []int
	for i := 0; i < len(s); i++ {
		if s[i] == ch && (i == 0 || s[i-1] != '\\') {
			out = append(out, i)
		}
	}
	return out
}

// findLastUnescaped returns the index of the last unescaped occurrence of
// ch in s, or -1.
func findLastUnescaped(s string, ch byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ch && (i == 0 || s[i-1] != '\\') {
			return i
		}
	}
	return -1
}

// findFirstUnescaped returns the index of the first unescaped occurrence of
// ch in s, or -1.
func findFirstUnescaped(s string, ch byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == ch && (i == 0 || s[i-1] != '\\') {
			return i
		}
	}
	return -1
}

// scanName checks one character class within the name prefix. It returns
// the backslash indices of escaped occurrences and the index of the first
// unescaped occurrence, or -1 when there is none.
func scanName(s string, ch byte) (escaped []int, firstBad int) {
	firstBad = -1
	for i := 0; i < len(s); i++ {
		if s[i] != ch {
			continue
		}
		if i > 0 && s[i-1] == '\\' {
			escaped = append(escaped, i-1)
			continue
		}
		if firstBad < 0 {
			firstBad = i
		}
	}
	return escaped, firstBad
}

// jsonErrorColumn extracts a 1-indexed column from a JSON parse error,
// clamped to the metadata substring.
func jsonErrorColumn(err error, length int) int {
	var off int64
	var syn *json.SyntaxError
	var typ *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syn):
		off = syn.Offset
	case errors.As(err, &typ):
		off = typ.Offset
	}
	col := int(off)
	if col < 1 {
		col = 1
	}
	if length > 0 && col > length {
		col = length
	}
	return col
}

// jsonErrorMessage trims the parser's location suffix, keeping the reason.
func jsonErrorMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, " at "); i >= 0 {
		msg = msg[:i]
	}
	return msg
}
