/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config holds the user-editable configuration for the gotwee
// tools, persisted to a YAML file in the user scope. Environment variables
// are treated as read-only overrides at runtime.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LintConfig controls which assembled-story findings the lint command
// reports. The parser always produces its warnings; these toggles only
// filter what reaches the user.
type LintConfig struct {
	RequireStoryTitle bool `yaml:"require_story_title"`
	RequireStoryData  bool `yaml:"require_story_data"`
	ValidateStoryData bool `yaml:"validate_story_data"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms"`
}

// LoggingConfig mirrors internal/log Options.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// AppConfig is the whole persisted configuration.
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Lint          LintConfig    `yaml:"lint"`
	Watch         WatchConfig   `yaml:"watch"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Lint:          LintConfig{RequireStoryTitle: true, RequireStoryData: true, ValidateStoryData: true},
		Watch:         WatchConfig{DebounceMs: 500},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvRequireStoryTitle = "GTW_REQUIRE_STORY_TITLE"
	EnvRequireStoryData  = "GTW_REQUIRE_STORY_DATA"
	EnvValidateStoryData = "GTW_VALIDATE_STORY_DATA"
	EnvWatchDebounceMs   = "GTW_WATCH_DEBOUNCE_MS"
	EnvLogLevel          = "GTW_LOG_LEVEL"
	EnvLogFormat         = "GTW_LOG_FORMAT"
	EnvLogSource         = "GTW_LOG_SOURCE"
	EnvLogFile           = "GTW_LOG_FILE"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Gotwee")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Gotwee")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "gotwee")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// fileConfig is the on-disk shape of AppConfig. The lint toggles are
// pointers: they default to true, so a plain bool would read an absent key
// as false and silently turn the findings off.
type fileConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	Lint          fileLintConfig `yaml:"lint"`
	Watch         WatchConfig    `yaml:"watch"`
	Logging       LoggingConfig  `yaml:"logging"`
}

type fileLintConfig struct {
	RequireStoryTitle *bool `yaml:"require_story_title"`
	RequireStoryData  *bool `yaml:"require_story_data"`
	ValidateStoryData *bool `yaml:"validate_story_data"`
}

// Load reads the user config file (if present), applies defaults, and
// merges environment overrides.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg fileConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *fileConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// lint toggles: only keys present in the file override the defaults
	if src.Lint.RequireStoryTitle != nil {
		dst.Lint.RequireStoryTitle = *src.Lint.RequireStoryTitle
	}
	if src.Lint.RequireStoryData != nil {
		dst.Lint.RequireStoryData = *src.Lint.RequireStoryData
	}
	if src.Lint.ValidateStoryData != nil {
		dst.Lint.ValidateStoryData = *src.Lint.ValidateStoryData
	}
	if src.Watch.DebounceMs != 0 {
		dst.Watch.DebounceMs = src.Watch.DebounceMs
	}
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvRequireStoryTitle)); v != "" {
		cfg.Lint.RequireStoryTitle = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvRequireStoryData)); v != "" {
		cfg.Lint.RequireStoryData = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvValidateStoryData)); v != "" {
		cfg.Lint.ValidateStoryData = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvWatchDebounceMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Watch.DebounceMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func isTruthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}
