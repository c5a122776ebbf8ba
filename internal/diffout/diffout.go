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

// Package diffout renders unified diffs between a file's original and
// formatted contents for cfmt's --diff mode.
package diffout

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// Unified returns a unified diff between before and after, labeled with
// path on the original side and path plus " (formatted)" on the other.
func Unified(path, before, after string) (string, error) {
	if before == after {
		return "", nil
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: path,
		ToFile:   path + " (formatted)",
		Context:  3,
	}
	out, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("diffout: %s: %w", path, err)
	}
	return out, nil
}

// Changed reports whether before and after differ.
func Changed(before, after string) bool { return before != after }
