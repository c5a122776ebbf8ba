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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".cfmt.yaml")
	require.NoError(t, writeFile(path, "max_width: 100\ndiff: true\n"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.MaxWidth)
	assert.True(t, cfg.Diff)
	assert.Equal(t, DefaultTabWidth, cfg.TabWidth)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults ok", Default(), false},
		{"zero max width", Config{MaxWidth: 0, TabWidth: 8, SoftWidth: 80}, true},
		{"soft exceeds max", Config{MaxWidth: 80, TabWidth: 8, SoftWidth: 100}, true},
		{"diff and in-place conflict", Config{MaxWidth: 80, TabWidth: 8, SoftWidth: 80, Diff: true, InPlace: true}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, writeFile(filepath.Join(root, ".cfmt.yaml"), "max_width: 100\n"))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	assert.Equal(t, filepath.Join(root, ".cfmt.yaml"), Find(nested))
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
