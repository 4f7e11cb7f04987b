/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package passage

import (
	"strings"

	"gotwee/internal/issue"
)

// Reserved passage names and tags that give a passage document-level
// meaning.
const (
	NameStoryTitle = "StoryTitle"
	NameStoryData  = "StoryData"
	TagScript      = "script"
	TagStylesheet  = "stylesheet"
)

// Passage is one parsed passage: its header and classified content.
type Passage struct {
	Header  Header
	Content Content
}

// SetFile tags the passage's positions with a file name.
func (p *Passage) SetFile(name string) {
	p.Header.Position = p.Header.Position.WithFile(name)
	if n, ok := p.Content.(Normal); ok {
		for i := range n.Links {
			n.Links[i].Position = n.Links[i].Position.WithFile(name)
		}
	}
}

// Parse parses one passage chunk: lines[0] is the header line, the rest is
// the body. All diagnostic coordinates are relative to the chunk (header is
// line 1); the caller row-shifts them into document coordinates.
//
// A failed header discards the whole passage and returns the accumulated
// errors; body problems are only ever warnings.
func Parse(lines []string) (*Passage, []issue.Warning, *issue.ErrorList) {
	if len(lines) == 0 {
		errs := &issue.ErrorList{}
		errs.Push(issue.NewError(issue.EmptyName).WithColumn(1))
		return nil, nil, errs
	}

	header, warnings, errs := ParseHeader(strings.TrimRight(lines[0], "\r"))
	if !errs.IsEmpty() {
		return nil, warnings, errs
	}

	body := trimTrailingBlank(lines[1:])
	for i := range body {
		body[i] = strings.TrimRight(body[i], "\r")
	}

	var content Content
	var bodyWarnings []issue.Warning
	switch {
	case header.Name == NameStoryTitle:
		content = StoryTitle{Title: strings.TrimSpace(strings.Join(body, "\n"))}
	case header.Name == NameStoryData:
		content, bodyWarnings = parseStoryData(body, 2)
	case header.HasTag(TagScript):
		content = Script{Text: strings.Join(body, "\n")}
	case header.HasTag(TagStylesheet):
		content = Stylesheet{Text: strings.Join(body, "\n")}
	default:
		content, bodyWarnings = parseNormal(body, 2)
	}
	warnings = append(warnings, bodyWarnings...)

	return &Passage{Header: *header, Content: content}, warnings, nil
}

// trimTrailingBlank drops blank lines at the end of a body. The blank run
// before the next header is a separator, not content.
func trimTrailingBlank(lines []string) []string {
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[:end]
}

// IsHeaderLine reports whether a document line opens a passage: its
// whitespace-trimmed form starts with the sigil. Header validity is judged
// later; chunk boundaries depend only on this test.
func IsHeaderLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), Sigil)
}

// Links returns the cross-references of a Normal passage, or nil.
func (p *Passage) Links() []TwineLink {
	if n, ok := p.Content.(Normal); ok {
		return n.Links
	}
	return nil
}
