/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package story

import (
	"strings"
	"testing"

	"gotwee/internal/issue"
	"gotwee/internal/passage"
	"gotwee/internal/source"
)

const sampleDoc = `:: StoryTitle
Test Story

:: Start
Go to [[End]].

:: End
Done.
`

func mustFromString(t *testing.T, input string) (*Story, []issue.Warning) {
	t.Helper()
	s, warnings, err := FromString(input)
	if err != nil {
		t.Fatalf("FromString failed: %v", err)
	}
	return s, warnings
}

func TestFromStringAssemblesStory(t *testing.T) {
	s, warnings := mustFromString(t, sampleDoc)
	if title, ok := s.StoryTitle(); !ok || title != "Test Story" {
		t.Fatalf("StoryTitle() = %q, %v", title, ok)
	}
	if len(s.Passages) != 2 {
		t.Fatalf("got %d passages, want 2", len(s.Passages))
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	start := s.Passages["Start"]
	if start == nil {
		t.Fatalf("passage Start missing")
	}
	if start.Header.Position != source.At(4, 1) {
		t.Fatalf("header position = %v, want 4:1", start.Header.Position)
	}
	links := start.Links()
	if len(links) != 1 || links[0].Target != "End" {
		t.Fatalf("links = %v", links)
	}
	if links[0].Position != source.At(5, 9) {
		t.Fatalf("link position = %v, want 5:9", links[0].Position)
	}
}

func TestFromStringDiscardsPreamble(t *testing.T) {
	s, warnings := mustFromString(t, "just some notes\nmore notes\n\n:: Start\nbody\n")
	if len(s.Passages) != 1 || s.Passages["Start"] == nil {
		t.Fatalf("passages = %v", s.Passages)
	}
	if s.Passages["Start"].Header.Position.Line != 4 {
		t.Fatalf("header line = %d, want 4", s.Passages["Start"].Header.Position.Line)
	}
	if len(warnings) != 0 {
		t.Fatalf("preamble must not produce diagnostics, got %v", warnings)
	}
}

func TestFromStringOffsetsWarnings(t *testing.T) {
	doc := ":: Start\nfine\n\n:: Second\nsee [[ End ]]\n\n:: End\n."
	_, warnings := mustFromString(t, doc)
	if len(warnings) != 1 || warnings[0].Type != issue.WhitespaceInLink {
		t.Fatalf("want one WhitespaceInLink, got %v", warnings)
	}
	// The warning sits on line 2 of its chunk; the chunk starts at document
	// line 4.
	if warnings[0].Position.Line != 5 {
		t.Fatalf("warning line = %d, want 5", warnings[0].Position.Line)
	}
}

func TestFromStringDuplicateSpecials(t *testing.T) {
	doc := ":: StoryTitle\nOne\n\n:: StoryTitle\nTwo\n"
	s, warnings := mustFromString(t, doc)
	if title, _ := s.StoryTitle(); title != "One" {
		t.Fatalf("first StoryTitle must win, got %q", title)
	}
	if len(warnings) != 1 || warnings[0].Type != issue.DuplicateStoryTitle {
		t.Fatalf("want one DuplicateStoryTitle, got %v", warnings)
	}
	if warnings[0].Position != source.At(4, 1) {
		t.Fatalf("warning position = %v, want the incoming passage at 4:1", warnings[0].Position)
	}
	if warnings[0].Referent == nil || *warnings[0].Referent != source.At(1, 1) {
		t.Fatalf("referent = %v, want the accepted passage at 1:1", warnings[0].Referent)
	}
}

func TestFromStringDuplicateNormalOverwrites(t *testing.T) {
	doc := ":: Twin\nfirst\n\n:: Twin\nsecond\n"
	s, warnings := mustFromString(t, doc)
	if len(warnings) != 0 {
		t.Fatalf("normal duplicates overwrite silently, got %v", warnings)
	}
	n := s.Passages["Twin"].Content.(passage.Normal)
	if n.Text != "second" {
		t.Fatalf("text = %q, want the later passage", n.Text)
	}
}

func TestFromStringAggregatesPartialFailures(t *testing.T) {
	doc := strings.Join([]string{
		":: Good",
		"see [[ Also ]]",
		"",
		"  :: Indented",
		"lost body",
		":: Also",
		"fine",
	}, "\n")
	s, warnings, err := FromString(doc)
	if s != nil {
		t.Fatalf("story must be nil when any chunk fails")
	}
	el, ok := err.(*issue.ErrorList)
	if !ok {
		t.Fatalf("error is %T, want *issue.ErrorList", err)
	}
	if len(el.Errors) != 1 || el.Errors[0].Type != issue.LeadingWhitespace {
		t.Fatalf("errors = %v", el)
	}
	if el.Errors[0].Position != source.At(4, 1) {
		t.Fatalf("error position = %v, want 4:1", el.Errors[0].Position)
	}
	// Warnings from intact chunks survive the failure.
	if len(warnings) != 1 || warnings[0].Type != issue.WhitespaceInLink {
		t.Fatalf("warnings = %v", warnings)
	}
}

func TestCheckReportsMissingSpecialsAndDeadLinks(t *testing.T) {
	s, _ := mustFromString(t, ":: Start\nGo [[Nowhere]].\n")
	warnings := s.Check()

	var types []issue.WarningType
	for _, w := range warnings {
		types = append(types, w.Type)
	}
	want := map[issue.WarningType]bool{
		issue.MissingStoryTitle: false,
		issue.MissingStoryData:  false,
		issue.DeadLink:          false,
	}
	for _, tp := range types {
		want[tp] = true
	}
	for tp, seen := range want {
		if !seen {
			t.Fatalf("missing warning type %d in %v", tp, types)
		}
	}
	for _, w := range warnings {
		if w.Type == issue.DeadLink {
			if w.Target != "Nowhere" {
				t.Fatalf("dead link target = %q", w.Target)
			}
			if w.Position != source.At(2, 6) {
				t.Fatalf("dead link position = %v, want 2:6", w.Position)
			}
		}
	}
}

func TestCheckAcceptsResolvedLinks(t *testing.T) {
	s, _ := mustFromString(t, sampleDoc)
	for _, w := range s.Check() {
		if w.Type == issue.DeadLink {
			t.Fatalf("unexpected dead link: %v", w)
		}
		if w.Type == issue.MissingStoryTitle {
			t.Fatalf("StoryTitle is present, warning is wrong")
		}
	}
}

func TestMergeFrom(t *testing.T) {
	a, _ := mustFromString(t, ":: StoryTitle\nA\n\n:: One\n.\n\n:: shared [script]\nx\n")
	b, _ := mustFromString(t, ":: StoryTitle\nB\n\n:: Two\n.\n\n:: theme [stylesheet]\ny\n")

	warnings := a.MergeFrom(b)
	if len(warnings) != 1 || warnings[0].Type != issue.DuplicateStoryTitle {
		t.Fatalf("warnings = %v", warnings)
	}
	if title, _ := a.StoryTitle(); title != "A" {
		t.Fatalf("existing title must win, got %q", title)
	}
	if len(a.Passages) != 2 {
		t.Fatalf("passages = %v", a.Passages)
	}
	if len(a.Scripts) != 1 || len(a.Stylesheets) != 1 {
		t.Fatalf("scripts/stylesheets not concatenated: %d/%d", len(a.Scripts), len(a.Stylesheets))
	}
}
