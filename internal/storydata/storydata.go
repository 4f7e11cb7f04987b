/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storydata validates the JSON payload of a StoryData passage. The
// payload carries document-level settings (IFID, story format, start
// passage, tag colors, zoom); validation problems are lint findings for the
// CLI, not parse diagnostics, because a questionable payload still parses.
package storydata

import (
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
)

// schema describes the accepted StoryData shape. Keys outside the schema
// are allowed; Twine tooling has grown fields over time.
const schema = `{
	"type": "object",
	"properties": {
		"ifid": {"type": "string"},
		"format": {"type": "string"},
		"format-version": {"type": "string"},
		"start": {"type": "string"},
		"zoom": {"type": "number"},
		"tag-colors": {
			"type": "object",
			"additionalProperties": {"type": "string"}
		}
	},
	"required": ["ifid"]
}`

var schemaLoader = gojsonschema.NewStringLoader(schema)

// Validate checks a raw StoryData payload and returns human-readable
// problems, one per finding. A payload that is not valid JSON yields a
// single finding; the parse layer has already warned about it.
func Validate(raw string) []string {
	var probe any
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return []string{"StoryData is not valid JSON: " + err.Error()}
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return []string{"StoryData could not be validated: " + err.Error()}
	}

	var problems []string
	for _, re := range result.Errors() {
		problems = append(problems, "StoryData: "+re.String())
	}

	if m, ok := probe.(map[string]any); ok {
		if ifid, ok := m["ifid"].(string); ok && ifid != "" {
			if _, err := uuid.Parse(ifid); err != nil {
				problems = append(problems, "StoryData: ifid is not a well-formed UUID: "+ifid)
			}
		}
	}
	return problems
}
