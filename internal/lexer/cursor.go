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
	"fmt"
	"os"

	"github.com/cfmt-go/cfmt/internal/token"
)

// Cursor walks a finished main-token stream built by a classifier. It
// supports speculative lookahead via nestable peek frames and halts at
// unresolved #if/#else/#endif branch points until a collaborator picks one
// with TakeBranch. Grounded in original_source/lexer.c's lexer_pop,
// lexer_peek_enter/leave, lexer_peek_if*, lexer_branch and
// lexer_expect.
type Cursor struct {
	cur *token.Token

	// pendingBranch is the branch-anchor token Pop most recently halted
	// at, cleared once TakeBranch resolves it. Only a Pop outside a peek
	// frame sets it; it stays set inside a peek frame entered while halted.
	pendingBranch *token.Token

	peekDepth int
	frames    []peekFrame

	recoveryMarkers

	lastErr  error
	path     string
}

type peekFrame struct {
	cur           *token.Token
	pendingBranch *token.Token
}

// NewCursor returns a Cursor positioned at the head of the given stream.
// path is used only to annotate diagnostics produced by Expect.
func NewCursor(head *token.Token, path string) *Cursor {
	return &Cursor{cur: head, path: path}
}

// Peeking reports whether the cursor is currently inside a peek frame.
func (c *Cursor) Peeking() bool { return c.peekDepth > 0 }

// Pop returns and consumes the next token. It returns ok=false once the
// stream is exhausted. If the next token is an unresolved branch anchor
// and the cursor is not inside a peek frame, Pop halts: it returns the
// anchor repeatedly without advancing until TakeBranch resolves it. While
// peeking, Pop instead transparently follows the branch to its terminal
// alternative, so speculative lookahead never has to reason about
// unresolved conditionals.
func (c *Cursor) Pop() (*token.Token, bool) {
	tok := c.cur
	if tok == nil {
		return nil, false
	}
	if tok.IsBranch(false) && !tok.Taken {
		if c.peekDepth > 0 {
			term := tok
			for term.BranchNext != nil {
				term = term.BranchNext
			}
			c.cur = term.Next
			return term, true
		}
		c.pendingBranch = tok
		return tok, true
	}
	c.cur = tok.Next
	if c.peekDepth == 0 {
		c.mark(tok)
	}
	return tok, true
}

// Back un-pops: it rewinds the cursor to re-present tok on the next Pop.
// tok must be the token most recently returned by Pop.
func (c *Cursor) Back(tok *token.Token) {
	c.cur = tok
}

// PeekEnter opens a new speculative frame. Every PeekEnter must be matched
// by exactly one PeekLeave.
func (c *Cursor) PeekEnter() {
	c.frames = append(c.frames, peekFrame{cur: c.cur, pendingBranch: c.pendingBranch})
	c.peekDepth++
}

// PeekLeave closes the innermost speculative frame. If accept is false the
// cursor rewinds to its state at the matching PeekEnter; if true the
// lookahead's progress is kept.
func (c *Cursor) PeekLeave(accept bool) {
	n := len(c.frames)
	if n == 0 {
		return
	}
	f := c.frames[n-1]
	c.frames = c.frames[:n-1]
	c.peekDepth--
	if !accept {
		c.cur = f.cur
		c.pendingBranch = f.pendingBranch
	}
}

// Peek returns the token n positions ahead (0 is the next token) without
// consuming anything, or nil at end of stream.
func (c *Cursor) Peek(n int) *token.Token {
	c.PeekEnter()
	defer c.PeekLeave(false)
	var tok *token.Token
	for i := 0; i <= n; i++ {
		t, ok := c.Pop()
		if !ok {
			return nil
		}
		tok = t
	}
	return tok
}

// PeekIfType reports whether the next token has the given type, without
// consuming it.
func (c *Cursor) PeekIfType(want token.Type) bool {
	t := c.Peek(0)
	return t != nil && t.Type == want
}

// IfType consumes and returns the next token if it has the given type.
func (c *Cursor) IfType(want token.Type) (*token.Token, bool) {
	if !c.PeekIfType(want) {
		return nil, false
	}
	return c.Pop()
}

// PeekIfFlags reports whether the next token carries every flag in mask,
// without consuming it.
func (c *Cursor) PeekIfFlags(mask token.Flag) bool {
	t := c.Peek(0)
	return t != nil && t.Flags.Has(mask)
}

// IfFlags consumes and returns the next token if it carries every flag in
// mask.
func (c *Cursor) IfFlags(mask token.Flag) (*token.Token, bool) {
	if !c.PeekIfFlags(mask) {
		return nil, false
	}
	return c.Pop()
}

// PeekIfPair reports whether, starting at the next token (which must be
// open), the bracket it opens is balanced by a matching close before the
// stream ends. It does not consume anything.
func (c *Cursor) PeekIfPair(open, close token.Type) bool {
	c.PeekEnter()
	defer c.PeekLeave(false)
	t, ok := c.Pop()
	if !ok || t.Type != open {
		return false
	}
	depth := 1
	for {
		t, ok := c.Pop()
		if !ok {
			return false
		}
		switch t.Type {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return true
			}
		}
	}
}

// IfPair consumes up to and including the matching close bracket if
// PeekIfPair holds, returning the tokens consumed (open through close
// inclusive).
func (c *Cursor) IfPair(open, close token.Type) ([]*token.Token, bool) {
	if !c.PeekIfPair(open, close) {
		return nil, false
	}
	var out []*token.Token
	t, _ := c.Pop()
	out = append(out, t)
	depth := 1
	for depth > 0 {
		t, _ := c.Pop()
		out = append(out, t)
		switch t.Type {
		case open:
			depth++
		case close:
			depth--
		}
	}
	return out, true
}

// PeekUntil looks ahead, without consuming, for a token of type stop
// within limit tokens, honoring `(`/`{` nesting: a stop type seen inside a
// nested pair does not count. It reports whether stop was found.
func (c *Cursor) PeekUntil(stop token.Type, limit int) bool {
	return c.peekUntil(stop, limit, true)
}

// PeekUntilLoose behaves like PeekUntil but ignores nesting: any
// occurrence of stop, even inside parentheses or braces, satisfies it.
func (c *Cursor) PeekUntilLoose(stop token.Type, limit int) bool {
	return c.peekUntil(stop, limit, false)
}

func (c *Cursor) peekUntil(stop token.Type, limit int, honorNesting bool) bool {
	c.PeekEnter()
	defer c.PeekLeave(false)
	depth := 0
	for i := 0; i < limit; i++ {
		t, ok := c.Pop()
		if !ok {
			return false
		}
		if t.Type == stop && depth == 0 {
			return true
		}
		if honorNesting {
			switch t.Type {
			case token.LPAREN, token.LBRACE:
				depth++
			case token.RPAREN, token.RBRACE:
				if depth > 0 {
					depth--
				}
			}
		}
	}
	return false
}

// Expect consumes the next token and verifies it has the given type. On
// mismatch it records a diagnostic (retrievable via Err, and written to
// standard error by recordError) and returns the token it
// actually found together with a non-nil error; diagnostics are suppressed
// while peeking, while a branch is pending, or after the first error, per
// original_source/lexer.c's lexer_emit_error.
func (c *Cursor) Expect(want token.Type) (*token.Token, error) {
	t, ok := c.Pop()
	if !ok {
		return nil, fmt.Errorf("%s: unexpected end of input, expected %s", c.path, token.TypeName(want))
	}
	if t.Type == want {
		return t, nil
	}
	err := fmt.Errorf("%s: %s: expected %s got %s", c.path, t.Pos, token.TypeName(want), t)
	c.recordError(err)
	return t, err
}

// recordError stores err as the cursor's diagnostic and writes it as one
// line to standard error, unless diagnostics are currently quiet (peeking,
// a branch is pending, or an error already recorded).
func (c *Cursor) recordError(err error) {
	if c.peekDepth > 0 || c.pendingBranch != nil || c.lastErr != nil {
		return
	}
	c.lastErr = err
	fmt.Fprintf(os.Stderr, "%v\n", err)
}

// Err returns the first recorded diagnostic, if any.
func (c *Cursor) Err() error { return c.lastErr }

// PendingBranch returns the branch-anchor token Pop is currently halted
// at, or nil if none.
func (c *Cursor) PendingBranch() *token.Token { return c.pendingBranch }

// TakeBranch resolves the branch Pop is halted at (which must equal
// anchor) by selecting target as the alternative execution continues
// from. Every main-stream token strictly between anchor and target is
// spliced out (their bodies are discarded), anchor is marked Taken so
// Pop no longer halts at it, and target receives FlagUnmute so a renderer
// knows it was reached via a taken branch rather than emitted verbatim.
// Passing target == anchor only clears the halt at anchor: nothing is
// deleted and the cursor resumes at anchor.
func (c *Cursor) TakeBranch(anchor, target *token.Token) error {
	if c.pendingBranch != anchor {
		return fmt.Errorf("%s: TakeBranch: %s is not the pending branch", c.path, anchor)
	}
	if target != anchor {
		anchor.Next = target
		target.Prev = anchor
	}
	anchor.Taken = true
	target.Flags |= token.FlagUnmute
	c.cur = target
	c.pendingBranch = nil
	return nil
}

// CollapseChain resolves the branch Pop is halted at by keeping only
// keep's own alternative: every earlier alternative (via TakeBranch) and
// every alternative still ahead of keep in the same chain are discarded in
// one call, leaving keep's body as the chain's sole surviving content.
// Unlike TakeBranch, keep itself is also marked Taken, so Pop treats its
// own trailing link (if any) as already resolved instead of halting on it
// again.
func (c *Cursor) CollapseChain(anchor, keep *token.Token) error {
	if err := c.TakeBranch(anchor, keep); err != nil {
		return err
	}
	if next := keep.BranchNext; next != nil {
		term := next
		for term.BranchNext != nil {
			term = term.BranchNext
		}
		if term != next {
			bodyEnd := next.Prev
			bodyEnd.Next = term
			term.Prev = bodyEnd
		}
	}
	keep.Taken = true
	return nil
}
