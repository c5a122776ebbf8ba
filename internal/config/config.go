// Copyright 2025 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads cfmt's formatting options from a .cfmt.yaml file and
// merges them with command-line overrides. Field names and defaults mirror
// original_source/extern.h's struct config.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default column widths, matching original_source/extern.h's defaults for
// cf_mw (max width), cf_tw (tab width) and cf_sw (soft-wrap width).
const (
	DefaultMaxWidth  = 80
	DefaultTabWidth  = 8
	DefaultSoftWidth = 80
)

// Config holds the formatting and invocation options for one run.
type Config struct {
	// Diff, when true, prints a unified diff instead of rewriting files.
	Diff bool `yaml:"diff"`
	// InPlace, when true, rewrites files on disk instead of printing to
	// stdout.
	InPlace bool `yaml:"in_place"`
	// Test, when true, exits non-zero if a file would be reformatted,
	// without writing anything.
	Test bool `yaml:"test"`
	// Verbose increases diagnostic output; 0 is silent.
	Verbose int `yaml:"verbose"`

	MaxWidth  int `yaml:"max_width"`
	TabWidth  int `yaml:"tab_width"`
	SoftWidth int `yaml:"soft_width"`
}

// Default returns a Config populated with cfmt's built-in defaults.
func Default() Config {
	return Config{
		MaxWidth:  DefaultMaxWidth,
		TabWidth:  DefaultTabWidth,
		SoftWidth: DefaultSoftWidth,
	}
}

// Load reads a YAML config file, overlaying its fields onto the built-in
// defaults. A missing file is not an error; Load returns the defaults
// unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Find walks up from dir looking for a ".cfmt.yaml" file, returning its
// path or "" if none is found before reaching the filesystem root.
func Find(dir string) string {
	for {
		candidate := filepath.Join(dir, ".cfmt.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Validate reports an error if the configuration's widths are nonsensical.
func (c Config) Validate() error {
	if c.MaxWidth <= 0 {
		return fmt.Errorf("config: max_width must be positive, got %d", c.MaxWidth)
	}
	if c.TabWidth <= 0 {
		return fmt.Errorf("config: tab_width must be positive, got %d", c.TabWidth)
	}
	if c.SoftWidth <= 0 || c.SoftWidth > c.MaxWidth {
		return fmt.Errorf("config: soft_width must be in (0, max_width], got %d", c.SoftWidth)
	}
	if c.InPlace && c.Diff {
		return fmt.Errorf("config: in_place and diff are mutually exclusive")
	}
	return nil
}
