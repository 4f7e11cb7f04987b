/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package passage

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"gotwee/internal/issue"
)

func mustParseHeader(t *testing.T, input string) (*Header, []issue.Warning) {
	t.Helper()
	h, warnings, errs := ParseHeader(input)
	if errs != nil {
		t.Fatalf("ParseHeader(%q) failed: %v", input, errs)
	}
	return h, warnings
}

func singleError(t *testing.T, input string) issue.Error {
	t.Helper()
	h, warnings, errs := ParseHeader(input)
	if errs.IsEmpty() {
		t.Fatalf("ParseHeader(%q) succeeded, want an error", input)
	}
	if h != nil {
		t.Fatalf("header must be nil on error")
	}
	if warnings != nil {
		t.Fatalf("warnings must be dropped on error, got %v", warnings)
	}
	if len(errs.Errors) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs.Errors), errs)
	}
	return errs.Errors[0]
}

func TestParseHeaderSimple(t *testing.T) {
	h, warnings := mustParseHeader(t, ":: Start")
	if h.Name != "Start" {
		t.Fatalf("name = %q, want %q", h.Name, "Start")
	}
	if len(h.Tags) != 0 {
		t.Fatalf("tags = %v, want none", h.Tags)
	}
	want := map[string]any{"position": "10,10", "size": "100,100"}
	if diff := cmp.Diff(want, h.Metadata); diff != "" {
		t.Fatalf("default metadata mismatch (-want +got):\n%s", diff)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
}

func TestParseHeaderTags(t *testing.T) {
	cases := []struct {
		input string
		want  []string
	}{
		{":: Start [tag1 tag2]", []string{"tag1", "tag2"}},
		{":: Start [ spaced ]", []string{"spaced"}},
		{":: Start []", []string{}},
		{":: Start [   ]", []string{}},
	}
	for _, tc := range cases {
		h, warnings := mustParseHeader(t, tc.input)
		if diff := cmp.Diff(tc.want, h.Tags); diff != "" {
			t.Fatalf("ParseHeader(%q) tags mismatch (-want +got):\n%s", tc.input, diff)
		}
		if h.Name != "Start" {
			t.Fatalf("ParseHeader(%q) name = %q", tc.input, h.Name)
		}
		if len(warnings) != 0 {
			t.Fatalf("ParseHeader(%q) warnings: %v", tc.input, warnings)
		}
	}
}

func TestHasTag(t *testing.T) {
	h, _ := mustParseHeader(t, ":: S [script lib]")
	if !h.HasTag("script") || !h.HasTag("lib") {
		t.Fatalf("HasTag missed a present tag")
	}
	if h.HasTag("stylesheet") {
		t.Fatalf("HasTag matched an absent tag")
	}
}

func TestParseHeaderMetadataOverridesDefaults(t *testing.T) {
	h, warnings := mustParseHeader(t, `:: Start {"position":"5,5"}`)
	want := map[string]any{"position": "5,5", "size": "100,100"}
	if diff := cmp.Diff(want, h.Metadata); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
}

func TestParseHeaderMetadataStructuredValues(t *testing.T) {
	h, warnings := mustParseHeader(t, `:: A {"list":[1,2],"nested":{"k":"v"}}`)
	if h.Name != "A" {
		t.Fatalf("name = %q", h.Name)
	}
	want := map[string]any{
		"position": "10,10",
		"size":     "100,100",
		"list":     []any{float64(1), float64(2)},
		"nested":   map[string]any{"k": "v"},
	}
	if diff := cmp.Diff(want, h.Metadata); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
}

func TestParseHeaderTagsAndMetadata(t *testing.T) {
	h, warnings := mustParseHeader(t, `:: Start [tag] {"position":"5,5"}`)
	if h.Name != "Start" {
		t.Fatalf("name = %q", h.Name)
	}
	if diff := cmp.Diff([]string{"tag"}, h.Tags); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if h.Metadata["position"] != "5,5" {
		t.Fatalf("position = %v", h.Metadata["position"])
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
}

func TestParseHeaderMalformedMetadataKeepsDefaults(t *testing.T) {
	h, warnings := mustParseHeader(t, `:: Title {"size":"23, }`)
	if h.Name != "Title" {
		t.Fatalf("name = %q", h.Name)
	}
	want := map[string]any{"position": "10,10", "size": "100,100"}
	if diff := cmp.Diff(want, h.Metadata); diff != "" {
		t.Fatalf("defaults must survive bad metadata (-want +got):\n%s", diff)
	}
	if len(warnings) != 1 || warnings[0].Type != issue.JsonError {
		t.Fatalf("want one JsonError warning, got %v", warnings)
	}
	if warnings[0].Position.Line != 1 || warnings[0].Position.Col < 10 {
		t.Fatalf("warning position %v not inside the metadata block", warnings[0].Position)
	}
}

func TestParseHeaderUnclosedMetadataSurvivesAsJsonWarning(t *testing.T) {
	// A { with no } runs to end of line and fails JSON parsing; the header
	// itself stays valid with default metadata.
	h, warnings := mustParseHeader(t, `:: Start {"position":"5,5"`)
	if h.Name != "Start" {
		t.Fatalf("name = %q", h.Name)
	}
	if h.Metadata["position"] != "10,10" {
		t.Fatalf("position = %v, want default kept", h.Metadata["position"])
	}
	if len(warnings) != 1 || warnings[0].Type != issue.JsonError {
		t.Fatalf("want one JsonError warning, got %v", warnings)
	}
}

func TestParseHeaderEmptyName(t *testing.T) {
	for _, input := range []string{"::", ":: ", ":: \t ", ":: [tag]"} {
		e := singleError(t, input)
		if e.Type != issue.EmptyName {
			t.Fatalf("ParseHeader(%q) error type = %d, want EmptyName", input, e.Type)
		}
		if e.Position.Line != 1 || e.Position.Col != 3 {
			t.Fatalf("ParseHeader(%q) position = %v, want 1:3", input, e.Position)
		}
	}
}

func TestParseHeaderLeadingWhitespace(t *testing.T) {
	e := singleError(t, "  :: Start")
	if e.Type != issue.LeadingWhitespace {
		t.Fatalf("error type = %d, want LeadingWhitespace", e.Type)
	}
	if e.Position.Col != 1 || e.ContextLen != 2 {
		t.Fatalf("position %v contextLen %d, want col 1 len 2", e.Position, e.ContextLen)
	}
}

func TestParseHeaderMissingSigil(t *testing.T) {
	e := singleError(t, "Start")
	if e.Type != issue.MissingSigil {
		t.Fatalf("error type = %d, want MissingSigil", e.Type)
	}
	if e.Position.Col != 1 || e.ContextLen != 1 {
		t.Fatalf("position %v contextLen %d, want col 1 len 1", e.Position, e.ContextLen)
	}
}

func TestParseHeaderMetadataBeforeTags(t *testing.T) {
	e := singleError(t, `:: Start {"position":"5,5"} [tag]`)
	if e.Type != issue.MetadataBeforeTags {
		t.Fatalf("error type = %d, want MetadataBeforeTags", e.Type)
	}
	if e.Position.Col != 10 {
		t.Fatalf("position = %v, want col 10 (start of metadata)", e.Position)
	}
	if e.ContextLen != len(`{"position":"5,5"}`) {
		t.Fatalf("contextLen = %d", e.ContextLen)
	}
}

func TestParseHeaderUnclosedTagBlock(t *testing.T) {
	e := singleError(t, ":: Start [tag")
	if e.Type != issue.UnclosedTagBlock {
		t.Fatalf("error type = %d, want UnclosedTagBlock", e.Type)
	}
	if e.Position.Col != 10 || e.ContextLen != 4 {
		t.Fatalf("position %v contextLen %d, want col 10 len 4", e.Position, e.ContextLen)
	}
}

func TestParseHeaderUnescapedSpecials(t *testing.T) {
	cases := []struct {
		input   string
		want    issue.ErrorType
		wantCol int
	}{
		// ] and } with no opener are checked directly in the name.
		{":: Sta]rt", issue.UnescapedCloseSquare, 7},
		{":: Sta}rt", issue.UnescapedCloseCurly, 7},
		// An extra [ before a closed tag block is left in the name.
		{":: A[B[c]", issue.UnescapedOpenSquare, 5},
		// An unmatched { before a complete metadata block is left in the name.
		{`:: A{B {"s":"5"}`, issue.UnescapedOpenCurly, 5},
	}
	for _, tc := range cases {
		e := singleError(t, tc.input)
		if e.Type != tc.want {
			t.Fatalf("ParseHeader(%q) error type = %d, want %d", tc.input, e.Type, tc.want)
		}
		if e.Position.Col != tc.wantCol || e.ContextLen != 1 {
			t.Fatalf("ParseHeader(%q) position %v contextLen %d, want col %d len 1",
				tc.input, e.Position, e.ContextLen, tc.wantCol)
		}
	}
}

func TestParseHeaderAccumulatesErrors(t *testing.T) {
	_, warnings, errs := ParseHeader("  ::Sta}rt")
	if warnings != nil {
		t.Fatalf("warnings must be dropped when errors exist")
	}
	if len(errs.Errors) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs.Errors), errs)
	}
	if errs.Errors[0].Type != issue.LeadingWhitespace {
		t.Fatalf("first error type = %d, want LeadingWhitespace", errs.Errors[0].Type)
	}
	if errs.Errors[1].Type != issue.UnescapedCloseCurly {
		t.Fatalf("second error type = %d, want UnescapedCloseCurly", errs.Errors[1].Type)
	}
}

func TestParseHeaderEscapedCharacters(t *testing.T) {
	h, warnings := mustParseHeader(t, `:: An over\[grown\} pa\th[ tag ]`)
	if h.Name != "An over[grown} path" {
		t.Fatalf("name = %q", h.Name)
	}
	if diff := cmp.Diff([]string{"tag"}, h.Tags); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if len(warnings) != 2 {
		t.Fatalf("got %d warnings, want 2: %v", len(warnings), warnings)
	}
	// Character classes are scanned curly-first, so the \} warning comes
	// before the \[ one even though it sits further right.
	if warnings[0].Type != issue.EscapedCloseCurly || warnings[0].Position.Col != 18 {
		t.Fatalf("warning 0 = %v, want EscapedCloseCurly at col 18", warnings[0])
	}
	if warnings[1].Type != issue.EscapedOpenSquare || warnings[1].Position.Col != 11 {
		t.Fatalf("warning 1 = %v, want EscapedOpenSquare at col 11", warnings[1])
	}
	for _, w := range warnings {
		if w.ContextLen != 2 {
			t.Fatalf("escape warnings cover backslash plus character, got len %d", w.ContextLen)
		}
	}
}
