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

	json "github.com/goccy/go-json"

	"gotwee/internal/issue"
	"gotwee/internal/source"
)

// Content is the closed set of passage body variants. The variants differ
// in shape, so consumers switch on the concrete type rather than going
// through a common accessor.
type Content interface {
	isContent()
}

// Normal is regular Twine prose with its extracted cross-references.
type Normal struct {
	Text  string
	Links []TwineLink
}

// StoryTitle is the body of the reserved StoryTitle passage.
type StoryTitle struct {
	Title string
}

// StoryData is the reserved StoryData passage: the raw JSON payload and, if
// it parsed, the decoded object.
type StoryData struct {
	Raw  string
	Data map[string]any
}

// Script is the body of a passage tagged `script`.
type Script struct {
	Text string
}

// Stylesheet is the body of a passage tagged `stylesheet`.
type Stylesheet struct {
	Text string
}

func (Normal) isContent()     {}
func (StoryTitle) isContent() {}
func (StoryData) isContent()  {}
func (Script) isContent()     {}
func (Stylesheet) isContent() {}

// TwineLink is a cross-reference to another passage, positioned at the
// first character of the link's inner text.
type TwineLink struct {
	Target   string
	Position source.Position
}

// linkOpen and linkClose delimit a Twine link token.
const (
	linkOpen  = "[["
	linkClose = "]]"
)

// parseLinks scans one line of passage text for [[...]] tokens. line and
// the returned coordinates are 1-indexed relative to the passage chunk.
func parseLinks(text string, line int) ([]TwineLink, []issue.Warning) {
	var links []TwineLink
	var warnings []issue.Warning

	for i := 0; i+len(linkOpen) <= len(text); {
		open := strings.Index(text[i:], linkOpen)
		if open < 0 {
			break
		}
		open += i
		innerStart := open + len(linkOpen)

		end := strings.Index(text[innerStart:], linkClose)
		if end < 0 {
			warnings = append(warnings, issue.NewWarning(issue.UnclosedLink).
				At(line, open+1).
				WithContextLen(len(text)-open))
			break
		}
		inner := text[innerStart : innerStart+end]

		target := inner
		targetCol := innerStart + 1
		if pipe := strings.LastIndex(inner, "|"); pipe >= 0 {
			// Display text before the pipe, target after.
			target = inner[pipe+1:]
			targetCol = innerStart + pipe + 2
		}
		if trimmed := strings.TrimSpace(target); trimmed != target {
			warnings = append(warnings, issue.NewWarning(issue.WhitespaceInLink).
				At(line, innerStart+1).
				WithContextLen(len(inner)))
			target = trimmed
		}
		if target != "" {
			links = append(links, TwineLink{
				Target:   target,
				Position: source.At(line, targetCol),
			})
		}

		i = innerStart + end + len(linkClose)
	}
	return links, warnings
}

// parseNormal builds a Normal content from body lines. firstLine is the
// chunk-relative 1-indexed line number of lines[0].
func parseNormal(lines []string, firstLine int) (Normal, []issue.Warning) {
	var warnings []issue.Warning
	var links []TwineLink
	for i, l := range lines {
		ls, ws := parseLinks(l, firstLine+i)
		links = append(links, ls...)
		warnings = append(warnings, ws...)
	}
	return Normal{Text: strings.Join(lines, "\n"), Links: links}, warnings
}

// parseStoryData decodes the StoryData JSON payload. A malformed payload is
// a JsonError warning, not a fatal error, mirroring header metadata: the
// raw text is kept and the decoded map stays nil.
func parseStoryData(lines []string, firstLine int) (StoryData, []issue.Warning) {
	raw := strings.Join(lines, "\n")
	data := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		w := issue.NewWarning(issue.JsonError)
		w.Message = jsonErrorMessage(err)
		return StoryData{Raw: raw}, []issue.Warning{w.At(firstLine, 1)}
	}
	return StoryData{Raw: raw, Data: data}, nil
}
