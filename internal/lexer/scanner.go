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

import (
	"github.com/cfmt-go/cfmt/internal/buffer"
	"github.com/cfmt-go/cfmt/internal/token"
)

// scanner walks a Buffer one byte at a time, tracking 1-based line/column
// position. It mirrors original_source/lexer.c's lexer_getc/lexer_ungetc
// pair: a single level of pushback is always available, and one pushback
// immediately after EOF is tolerated before a second is refused.
type scanner struct {
	buf *buffer.Buffer
	off int

	line, col int

	// pushback state, valid only immediately after a getc call.
	canUngetc bool
	prevLine  int
	prevCol   int
	prevOff   int
	atEOF     bool
}

func newScanner(buf *buffer.Buffer) *scanner {
	return &scanner{buf: buf, line: 1, col: 1}
}

// getc consumes and returns the next byte. ok is false at end of input.
func (s *scanner) getc() (c byte, ok bool) {
	s.prevLine, s.prevCol, s.prevOff = s.line, s.col, s.off
	if s.off >= s.buf.Len() {
		s.canUngetc = true
		s.atEOF = true
		return 0, false
	}
	c = s.buf.Bytes()[s.off]
	s.off++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	s.canUngetc = true
	s.atEOF = false
	return c, true
}

// ungetc reverts the most recent getc. It reports false if called twice in a
// row without an intervening getc.
func (s *scanner) ungetc() bool {
	if !s.canUngetc {
		return false
	}
	s.line, s.col, s.off = s.prevLine, s.prevCol, s.prevOff
	s.canUngetc = false
	return true
}

// peekByte returns the next byte without consuming it.
func (s *scanner) peekByte() (byte, bool) {
	c, ok := s.getc()
	if ok {
		s.ungetc()
	}
	return c, ok
}

// pos returns the position of the byte that the next getc will return.
func (s *scanner) pos() token.Position {
	return token.Position{Line: s.line, Column: s.col}
}

// offset returns the buffer offset of the byte that the next getc will
// return.
func (s *scanner) offset() int { return s.off }

// slice returns the buffer bytes in [start, s.offset()).
func (s *scanner) slice(start int) []byte {
	return s.buf.Slice(start, s.offset()-start)
}
