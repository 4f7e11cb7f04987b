/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package story

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gotwee/internal/issue"
	applog "gotwee/internal/log"
)

// twee file extensions recognized during directory scans.
var tweeExtensions = map[string]bool{".tw": true, ".twee": true}

// HasTweeExtension reports whether a path names a Twee source file.
func HasTweeExtension(path string) bool {
	return tweeExtensions[strings.ToLower(filepath.Ext(path))]
}

// FromPath parses a file or a directory tree of .tw/.twee files into one
// story and runs Check on the result. Warnings accompany both outcomes; a
// path that cannot be read yields a BadInputPath error carrying the path
// and the underlying cause.
func FromPath(path string) (*Story, []issue.Warning, error) {
	s, warnings, err := fromPath(path)
	if err != nil {
		return nil, warnings, err
	}
	warnings = append(warnings, s.Check()...)
	return s, warnings, nil
}

// fromPath does the traversal without the final Check, so directory
// recursion does not flag missing specials per file.
func fromPath(path string) (*Story, []issue.Warning, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, badPath(path, err)
	}
	switch {
	case info.Mode().IsRegular():
		return parseFile(path)
	case info.IsDir():
		return parseDir(path)
	default:
		return nil, nil, badPathText(path, "path is not a file or directory")
	}
}

func parseFile(path string) (*Story, []issue.Warning, error) {
	applog.WithComponent("story").Debug("parse file", slog.String("path", path))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, badPath(path, err)
	}

	s, warnings, err := FromString(string(data))
	name := filepath.Base(path)
	if el, ok := err.(*issue.ErrorList); ok {
		return nil, issue.TagWarnings(warnings, name), el.WithFile(name)
	}
	s.setFile(name)
	return s, issue.TagWarnings(warnings, name), nil
}

// parseDir folds every matching file of a directory into one story,
// recursing into subdirectories. Entries come back in the file system's
// native order; traversal stops at the first file whose parse is fatal and
// surfaces the warnings gathered up to that point.
func parseDir(path string) (*Story, []issue.Warning, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, nil, badPath(path, err)
	}

	s := New()
	var warnings []issue.Warning
	for _, entry := range entries {
		sub := filepath.Join(path, entry.Name())
		if entry.IsDir() {
			subStory, subWarnings, err := parseDir(sub)
			warnings = append(warnings, subWarnings...)
			if err != nil {
				return nil, warnings, err
			}
			warnings = append(warnings, s.MergeFrom(subStory)...)
			continue
		}
		if !HasTweeExtension(entry.Name()) {
			continue
		}
		subStory, subWarnings, err := parseFile(sub)
		warnings = append(warnings, subWarnings...)
		if err != nil {
			return nil, warnings, err
		}
		warnings = append(warnings, s.MergeFrom(subStory)...)
	}
	return s, warnings, nil
}

func badPath(path string, cause error) *issue.ErrorList {
	return badPathText(path, cause.Error())
}

func badPathText(path, cause string) *issue.ErrorList {
	e := issue.NewError(issue.BadInputPath)
	e.Path = path
	e.Cause = cause
	return &issue.ErrorList{Errors: []issue.Error{e}}
}
