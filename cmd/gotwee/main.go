/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"gotwee/internal/config"
	"gotwee/internal/crash"
	"gotwee/internal/issue"
	applog "gotwee/internal/log"
	"gotwee/internal/passage"
	"gotwee/internal/source"
	"gotwee/internal/story"
	"gotwee/internal/storydata"
	"gotwee/internal/version"
	"gotwee/internal/watch"
)

func usage() {
	fmt.Println("gotwee - Twee story parser and linter")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gotwee version|-v|--version     Show version")
	fmt.Println("  gotwee lint <path> [--json]     Parse a .tw/.twee file or directory and report findings")
	fmt.Println("  gotwee watch <path>             Re-lint whenever sources under <path> change")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Defaults()
	}
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	defer crash.Recover()
	l := applog.WithComponent("cli")

	args := os.Args
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}
	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println(version.String())
	case "lint":
		if len(args) < 3 {
			fmt.Println("lint requires <path>")
			usage()
			os.Exit(2)
		}
		asJSON := len(args) > 3 && args[3] == "--json"
		os.Exit(lint(cfg, args[2], asJSON))
	case "watch":
		if len(args) < 3 {
			fmt.Println("watch requires <path>")
			usage()
			os.Exit(2)
		}
		w, err := watch.New(args[2], time.Duration(cfg.Watch.DebounceMs)*time.Millisecond)
		if err != nil {
			l.Error("watch setup failed", slog.Any("err", err))
			os.Exit(1)
		}
		defer w.Close()
		lint(cfg, args[2], false)
		fmt.Println("watching for changes (ctrl-c to stop)")
		w.Run(func(root string) { lint(cfg, root, false) })
	default:
		usage()
		os.Exit(2)
	}
}

// finding is one reported diagnostic, shaped for both text and JSON output.
// Context, when present, is the offending source line with a marker under
// the flagged columns.
type finding struct {
	Severity string `json:"severity"`
	Position string `json:"position,omitempty"`
	Message  string `json:"message"`
	Context  string `json:"context,omitempty"`
}

// docCache lazily loads the documents diagnostics point into, keyed by the
// base file name their positions carry.
type docCache struct {
	root string
	docs map[string]*source.Document
}

func newDocCache(root string) *docCache {
	return &docCache{root: root, docs: map[string]*source.Document{}}
}

// context renders the flagged source run for a positioned diagnostic, or ""
// when the position is story-level or its document cannot be read back.
func (c *docCache) context(p source.Position, contextLen int) string {
	if p.IsStoryLevel() {
		return ""
	}
	d, ok := c.docs[p.File]
	if !ok {
		if path := c.resolve(p.File); path != "" {
			if data, err := os.ReadFile(path); err == nil {
				d = source.NewDocument(p.File, string(data))
			}
		}
		c.docs[p.File] = d
	}
	if d == nil {
		return ""
	}
	return d.Annotate(p.Line, p.Col, contextLen)
}

// resolve maps a position's base file name back to a path under the lint
// root.
func (c *docCache) resolve(name string) string {
	info, err := os.Stat(c.root)
	if err != nil {
		return ""
	}
	if !info.IsDir() {
		if filepath.Base(c.root) == name {
			return c.root
		}
		return ""
	}
	var found string
	_ = filepath.WalkDir(c.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || found != "" || d.IsDir() {
			return nil
		}
		if filepath.Base(p) == name {
			found = p
		}
		return nil
	})
	return found
}

// collectFindings flattens a parse outcome into the reported finding list,
// applying the lint toggles. The result is never nil, so JSON output stays
// an array.
func collectFindings(cfg config.AppConfig, s *story.Story, warnings []issue.Warning, err error, cache *docCache) []finding {
	findings := []finding{}
	for _, w := range warnings {
		if w.Type == issue.MissingStoryTitle && !cfg.Lint.RequireStoryTitle {
			continue
		}
		if w.Type == issue.MissingStoryData && !cfg.Lint.RequireStoryData {
			continue
		}
		findings = append(findings, finding{
			Severity: "warning",
			Position: w.Position.String(),
			Message:  w.String(),
			Context:  cache.context(w.Position, w.ContextLen),
		})
	}
	if s != nil && s.Data != nil && cfg.Lint.ValidateStoryData {
		if sd, ok := s.Data.Content.(passage.StoryData); ok {
			for _, problem := range storydata.Validate(sd.Raw) {
				findings = append(findings, finding{Severity: "warning", Message: problem})
			}
		}
	}
	if err != nil {
		if el, ok := err.(*issue.ErrorList); ok {
			for _, e := range el.Errors {
				findings = append(findings, finding{
					Severity: "error",
					Position: e.Position.String(),
					Message:  e.Error(),
					Context:  cache.context(e.Position, e.ContextLen),
				})
			}
		} else {
			findings = append(findings, finding{Severity: "error", Message: err.Error()})
		}
	}
	return findings
}

// lint parses path, prints every finding, and returns the process exit
// code: 1 when fatal errors were found, 0 otherwise.
func lint(cfg config.AppConfig, path string, asJSON bool) int {
	l := applog.WithOperation(applog.WithComponent("cli"), "lint")
	start := time.Now()
	s, warnings, err := story.FromPath(path)
	l.Debug("parse finished", slog.String("path", path), slog.Duration("took", time.Since(start)))

	findings := collectFindings(cfg, s, warnings, err, newDocCache(path))

	code := 0
	if err != nil {
		code = 1
	}

	if asJSON {
		out, merr := json.MarshalIndent(findings, "", "  ")
		if merr != nil {
			l.Error("encode findings", slog.Any("err", merr))
			return 1
		}
		fmt.Println(string(out))
		return code
	}

	for _, f := range findings {
		fmt.Printf("%s: %s\n", f.Severity, f.Message)
		if f.Context != "" {
			for _, line := range strings.Split(f.Context, "\n") {
				fmt.Printf("    %s\n", line)
			}
		}
	}
	if code == 0 {
		if title, ok := s.StoryTitle(); ok {
			fmt.Printf("ok: %q: %d passages, %d scripts, %d stylesheets, %d warnings\n",
				title, len(s.Passages), len(s.Scripts), len(s.Stylesheets), len(findings))
		} else {
			fmt.Printf("ok: %d passages, %d scripts, %d stylesheets, %d warnings\n",
				len(s.Passages), len(s.Scripts), len(s.Stylesheets), len(findings))
		}
	}
	return code
}
