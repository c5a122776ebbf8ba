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

package lexer

import "github.com/cfmt-go/cfmt/internal/token"

// nmarkers is the size of the recovery marker ring, matching
// original_source/extern.h's NMARKERS.
const nmarkers = 2

// recoveryMarkers is a small ring buffer of the last nmarkers tokens
// consumed at peekDepth 0, embedded in Cursor so Recover has somewhere to
// seek back to after a parse error.
type recoveryMarkers struct {
	ring [nmarkers]*token.Token
	size int
}

func (m *recoveryMarkers) mark(tok *token.Token) {
	for i := nmarkers - 1; i > 0; i-- {
		m.ring[i] = m.ring[i-1]
	}
	m.ring[0] = tok
	if m.size < nmarkers {
		m.size++
	}
}

func (m *recoveryMarkers) earliest() *token.Token {
	if m.size == 0 {
		return nil
	}
	return m.ring[m.size-1]
}

// Recover resolves a stalled parse: if the cursor is halted at a branch
// point, it takes the branch's terminal alternative, discarding every
// untaken body; otherwise it rewinds the cursor to the earliest marked
// token and clears the last recorded diagnostic, giving a caller a stable
// place to resume scanning.
func (c *Cursor) Recover() {
	if c.pendingBranch != nil {
		anchor := c.pendingBranch
		term := anchor
		for term.BranchNext != nil {
			term = term.BranchNext
		}
		c.TakeBranch(anchor, term)
		return
	}
	if t := c.earliest(); t != nil {
		c.cur = t
	}
	c.lastErr = nil
}
