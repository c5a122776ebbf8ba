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

// Command cfmt lexes C source files and reports or applies formatting
// changes. Without the document engine and ruler this core depends on, the
// only reconstruction it can produce is the lexer's own round-trip of
// structurally significant tokens (spec.md §8); -d/-i/-t all operate on
// that reconstruction.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/cfmt-go/cfmt/internal/buffer"
	"github.com/cfmt-go/cfmt/internal/collections"
	"github.com/cfmt-go/cfmt/internal/config"
	"github.com/cfmt-go/cfmt/internal/cparser"
	"github.com/cfmt-go/cfmt/internal/diffout"
	"github.com/cfmt-go/cfmt/internal/lexer"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags config.Config
	var resolveIfdefs bool
	var configPath string

	cmd := &cobra.Command{
		Use:   "cfmt [flags] <pattern>...",
		Short: "Reformat C source files",
		Long: "cfmt lexes C source files and rewrites them in place, prints a\n" +
			"unified diff, or checks whether they are already formatted.",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				path = config.Find(".")
			}
			cfg := config.Default()
			if path != "" {
				loaded, err := config.Load(path)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			// Flags the caller actually passed win over both the built-in
			// defaults and whatever the config file set.
			set := cmd.Flags().Changed
			if set("diff") {
				cfg.Diff = flags.Diff
			}
			if set("in-place") {
				cfg.InPlace = flags.InPlace
			}
			if set("test") {
				cfg.Test = flags.Test
			}
			if set("verbose") {
				cfg.Verbose = flags.Verbose
			}
			if set("max-width") {
				cfg.MaxWidth = flags.MaxWidth
			}
			if set("tab-width") {
				cfg.TabWidth = flags.TabWidth
			}
			if set("soft-width") {
				cfg.SoftWidth = flags.SoftWidth
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			files, err := expandPatterns(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("cfmt: no files matched")
			}

			changed := false
			for _, f := range files {
				fileChanged, err := runOne(f, cfg, resolveIfdefs)
				if err != nil {
					return err
				}
				changed = changed || fileChanged
			}
			if cfg.Test && changed {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&flags.Diff, "diff", "d", false, "print a unified diff instead of rewriting")
	cmd.Flags().BoolVarP(&flags.InPlace, "in-place", "i", false, "rewrite files on disk")
	cmd.Flags().BoolVarP(&flags.Test, "test", "t", false, "exit non-zero if any file would be reformatted")
	cmd.Flags().CountVarP(&flags.Verbose, "verbose", "v", "increase diagnostic verbosity")
	cmd.Flags().IntVarP(&flags.MaxWidth, "max-width", "w", config.DefaultMaxWidth, "maximum line width")
	cmd.Flags().IntVar(&flags.TabWidth, "tab-width", config.DefaultTabWidth, "tab stop width")
	cmd.Flags().IntVar(&flags.SoftWidth, "soft-width", config.DefaultSoftWidth, "preferred wrap width")
	cmd.Flags().BoolVar(&resolveIfdefs, "resolve-ifdefs", false, "collapse #if/#else chains cparser can evaluate")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a .cfmt.yaml file (default: search upward from .)")

	return cmd
}

func expandPatterns(patterns []string) ([]string, error) {
	seen := collections.Set[string]{}
	var out []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("cfmt: bad pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				matches = []string{pattern}
			}
		}
		for _, m := range matches {
			clean := filepath.Clean(m)
			if seen.Contains(clean) {
				continue
			}
			seen.Add(clean)
			out = append(out, clean)
		}
	}
	return out, nil
}

// runOne lexes path, optionally resolves #if/#else chains via cparser, and
// applies cfg's output mode. It reports whether the file's rendered form
// differs from its on-disk contents.
func runOne(path string, cfg config.Config, resolveIfdefs bool) (bool, error) {
	buf, err := buffer.Read(path)
	if err != nil {
		return false, err
	}
	lx, err := lexer.New(buf, path)
	if err != nil {
		return false, err
	}

	if resolveIfdefs {
		w := cparser.NewWalker(lx.Cursor(), nil)
		if err := w.Run(); err != nil {
			if cfg.Verbose > 0 {
				log.Printf("cfmt: %s: ifdef resolution stopped early: %v", path, err)
			}
		} else if w.Unresolved > 0 && cfg.Verbose > 0 {
			log.Printf("cfmt: %s: left %d conditional chain(s) unresolved", path, w.Unresolved)
		}
	}

	before := string(buf.Bytes())
	after := lx.Render()
	changed := diffout.Changed(before, after)

	switch {
	case cfg.Test:
		if changed && cfg.Verbose > 0 {
			log.Printf("cfmt: %s would be reformatted", path)
		}
	case cfg.Diff:
		diff, err := diffout.Unified(path, before, after)
		if err != nil {
			return changed, err
		}
		if diff != "" {
			fmt.Print(diff)
		}
	case cfg.InPlace:
		if changed {
			if err := os.WriteFile(path, []byte(after), 0o644); err != nil {
				return changed, fmt.Errorf("cfmt: write %s: %w", path, err)
			}
		}
	default:
		fmt.Print(after)
	}
	return changed, nil
}
