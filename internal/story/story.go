/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package story assembles parsed passages into a Story: it splits documents
// into header-delimited chunks, folds each chunk's parse result into the
// story, merges stories across files, and runs post-parse consistency
// checks. The assembler aggregates partial failures: a malformed passage is
// reported and skipped while the rest of the document still parses.
package story

import (
	"strings"

	"gotwee/internal/issue"
	"gotwee/internal/passage"
)

// Story is the assembled document set.
type Story struct {
	// Title is the StoryTitle passage, if one was seen.
	Title *passage.Passage

	// Data is the StoryData passage, if one was seen.
	Data *passage.Passage

	// Passages maps passage name to passage for all normal passages.
	Passages map[string]*passage.Passage

	// Scripts and Stylesheets keep their passages in encounter order.
	Scripts     []*passage.Passage
	Stylesheets []*passage.Passage
}

// New returns an empty story ready for folding and merging.
func New() *Story {
	return &Story{Passages: map[string]*passage.Passage{}}
}

// StoryTitle returns the story's title text, if a StoryTitle passage was
// parsed.
func (s *Story) StoryTitle() (string, bool) {
	if s.Title == nil {
		return "", false
	}
	t, ok := s.Title.Content.(passage.StoryTitle)
	if !ok {
		return "", false
	}
	return t.Title, true
}

// FromString parses a whole document. The returned error, when non-nil, is
// an *issue.ErrorList; warnings accompany success and failure alike.
func FromString(input string) (*Story, []issue.Warning, error) {
	return FromSlice(strings.Split(input, "\n"))
}

// FromSlice parses a document given as its ordered lines.
//
// Content before the first sigil line is preamble and is discarded. Every
// run of lines from one sigil line up to the next is one passage chunk,
// parsed independently; chunk diagnostics are row-shifted to document
// coordinates before folding. A chunk whose header fails contributes its
// errors and is dropped, but parsing continues with the next chunk.
func FromSlice(lines []string) (*Story, []issue.Warning, error) {
	s := New()
	var warnings []issue.Warning
	var errs *issue.ErrorList

	start := 0
	for start < len(lines) && !passage.IsHeaderLine(lines[start]) {
		start++
	}

	for start < len(lines) {
		next := start + 1
		for next < len(lines) && !passage.IsHeaderLine(lines[next]) {
			next++
		}

		p, chunkWarnings, chunkErrs := passage.Parse(lines[start:next])
		warnings = append(warnings, issue.OffsetWarnings(chunkWarnings, start)...)
		if !chunkErrs.IsEmpty() {
			errs = issue.Merge(errs, chunkErrs.OffsetRow(start))
			start = next
			continue
		}
		p.Header.Position = p.Header.Position.OffsetRow(start)
		if n, ok := p.Content.(passage.Normal); ok {
			for i := range n.Links {
				n.Links[i].Position = n.Links[i].Position.OffsetRow(start)
			}
		}
		warnings = append(warnings, s.fold(p)...)
		start = next
	}

	if !errs.IsEmpty() {
		return nil, warnings, errs
	}
	return s, warnings, nil
}

// fold classifies one passage into the story. Later normal passages with a
// duplicate name silently overwrite earlier ones; only duplicate specials
// warn. The duplicate warning points at the incoming passage and keeps the
// accepted one as referent.
func (s *Story) fold(p *passage.Passage) []issue.Warning {
	switch p.Content.(type) {
	case passage.StoryTitle:
		if s.Title == nil {
			s.Title = p
			return nil
		}
		return []issue.Warning{dupWarning(issue.DuplicateStoryTitle, p, s.Title)}
	case passage.StoryData:
		if s.Data == nil {
			s.Data = p
			return nil
		}
		return []issue.Warning{dupWarning(issue.DuplicateStoryData, p, s.Data)}
	case passage.Script:
		s.Scripts = append(s.Scripts, p)
	case passage.Stylesheet:
		s.Stylesheets = append(s.Stylesheets, p)
	default:
		s.Passages[p.Header.Name] = p
	}
	return nil
}

func dupWarning(t issue.WarningType, incoming, existing *passage.Passage) issue.Warning {
	w := issue.NewWarning(t)
	w.Position = incoming.Header.Position
	return w.WithReferent(existing.Header.Position)
}

// MergeFrom folds another assembled story into this one, returning any
// duplicate-special warnings. Normal passage maps are unioned with incoming
// entries overwriting on name collision; script and stylesheet lists are
// concatenated in order.
func (s *Story) MergeFrom(other *Story) []issue.Warning {
	var warnings []issue.Warning

	if other.Title != nil {
		if s.Title == nil {
			s.Title = other.Title
		} else {
			warnings = append(warnings, dupWarning(issue.DuplicateStoryTitle, other.Title, s.Title))
		}
	}
	if other.Data != nil {
		if s.Data == nil {
			s.Data = other.Data
		} else {
			warnings = append(warnings, dupWarning(issue.DuplicateStoryData, other.Data, s.Data))
		}
	}

	for name, p := range other.Passages {
		s.Passages[name] = p
	}
	s.Scripts = append(s.Scripts, other.Scripts...)
	s.Stylesheets = append(s.Stylesheets, other.Stylesheets...)

	return warnings
}

// Check runs the post-parse consistency pass. It needs the complete passage
// name set, so it only makes sense after assembly (and after any merges).
//
// Warnings produced: MissingStoryTitle, MissingStoryData, and one DeadLink
// per link whose target is not a known passage name, positioned at the link
// itself.
func (s *Story) Check() []issue.Warning {
	var warnings []issue.Warning
	if s.Title == nil {
		warnings = append(warnings, issue.NewWarning(issue.MissingStoryTitle))
	}
	if s.Data == nil {
		warnings = append(warnings, issue.NewWarning(issue.MissingStoryData))
	}

	for _, p := range s.Passages {
		for _, link := range p.Links() {
			if _, ok := s.Passages[link.Target]; ok {
				continue
			}
			w := issue.NewWarning(issue.DeadLink)
			w.Target = link.Target
			w.Position = link.Position
			warnings = append(warnings, w)
		}
	}
	return warnings
}

// setFile tags every passage position in the story with a file name.
func (s *Story) setFile(name string) {
	if s.Title != nil {
		s.Title.SetFile(name)
	}
	if s.Data != nil {
		s.Data.SetFile(name)
	}
	for _, p := range s.Passages {
		p.SetFile(name)
	}
	for _, p := range s.Scripts {
		p.SetFile(name)
	}
	for _, p := range s.Stylesheets {
		p.SetFile(name)
	}
}
