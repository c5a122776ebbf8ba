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

package diffout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifiedNoChange(t *testing.T) {
	out, err := Unified("x.c", "int x;\n", "int x;\n")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.False(t, Changed("int x;\n", "int x;\n"))
}

func TestUnifiedReportsChange(t *testing.T) {
	out, err := Unified("x.c", "int x;\n", "int  x;\n")
	require.NoError(t, err)
	assert.Contains(t, out, "--- x.c")
	assert.Contains(t, out, "+++ x.c (formatted)")
	assert.True(t, Changed("int x;\n", "int  x;\n"))
}
