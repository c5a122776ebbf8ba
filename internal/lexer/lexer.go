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

// Package lexer turns C source text into a finished, doubly linked token
// stream and a speculative Cursor for walking it. It never evaluates
// preprocessor conditions: #if/#else/#endif chains are linked so a
// collaborator can pick a branch, but which branch is correct is outside
// this package's contract.
package lexer

import (
	"fmt"
	"iter"

	"github.com/cfmt-go/cfmt/internal/buffer"
	"github.com/cfmt-go/cfmt/internal/token"
)

// Lexer owns a finished main-token stream produced from a single Buffer.
// The stream it owns is mutated only through a Cursor: TakeBranch,
// CollapseChain and Recover splice it, and PeekIfTypePhrase sets flags and
// Align on the tokens it recognizes. A Lexer may be read from many
// goroutines concurrently while no Cursor over it is in use, and a Cursor
// is not safe to share across goroutines.
type Lexer struct {
	buf  *buffer.Buffer
	head *token.Token
	path string
}

// New lexes the entirety of buf in one pass and returns a Lexer over the
// resulting stream. path is used only to annotate diagnostics.
func New(buf *buffer.Buffer, path string) (*Lexer, error) {
	c := newClassifier(buf)
	head, err := c.run()
	if err != nil {
		return nil, fmt.Errorf("lexer: %s: %w", path, err)
	}
	return &Lexer{buf: buf, head: head, path: path}, nil
}

// Cursor returns a fresh Cursor positioned at the start of the stream.
// Distinct Cursors obtained from the same Lexer observe each other's
// TakeBranch splices, since they share the underlying token links; callers
// that need isolated speculative state should not interleave Pop calls
// across Cursors from the same Lexer without coordinating TakeBranch.
func (l *Lexer) Cursor() *Cursor {
	return NewCursor(l.head, l.path)
}

// Buffer returns the source buffer this Lexer was built from.
func (l *Lexer) Buffer() *buffer.Buffer { return l.buf }

// Tokens iterates the main stream in order, including unresolved branch
// alternatives (each visited once, without taking any of them).
func (l *Lexer) Tokens() iter.Seq[*token.Token] {
	return func(yield func(*token.Token) bool) {
		for t := l.head; t != nil; t = t.Next {
			if !yield(t) {
				return
			}
			if t.Type == token.EOF {
				return
			}
		}
	}
}

// Render concatenates every token's Render output in stream order. It
// reproduces every byte the lexer considered structurally significant —
// keyword and punctuator spellings, identifiers, literals, comments,
// preprocessor directives and blank-line markers — but not the ordinary
// single spaces, tabs and newlines the scanner discards between tokens,
// since a formatter recomputes those. Comparing a source file to the
// Render of an unbranched Lexer built from it, with runs of plain
// whitespace collapsed, is the round-trip testable property from spec.md
// §8.
func (l *Lexer) Render() string {
	var out []byte
	for t := range l.Tokens() {
		out = append(out, t.Render()...)
	}
	return string(out)
}
