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

// PeekIfTypePhrase reports whether the tokens starting at the cursor form
// a C type phrase: a run of TYPE/QUALIFIER/STORAGE keywords, struct/union/
// enum tags, pointer stars, and — where no keyword is present — a bare
// identifier that only counts as a type name if what follows it still
// looks like a declarator. It never errors; it is a heuristic that a
// caller uses to disambiguate declarations from expression statements,
// and runs entirely inside a peek frame so it never disturbs the cursor.
// Grounded in original_source/lexer.c's lexer_peek_if_type.
func (c *Cursor) PeekIfTypePhrase() bool {
	c.PeekEnter()
	ok := c.scanTypePhrase()
	c.PeekLeave(false)
	return ok
}

func (c *Cursor) scanTypePhrase() bool {
	sawType := false
	sawQualifierOrStorageOnly := false

	for {
		t, ok := c.Pop()
		if !ok {
			break
		}

		switch {
		case t.Flags.Any(token.FlagType | token.FlagQualifier | token.FlagStorage):
			if t.Flags.Has(token.FlagType) {
				sawType = true
			} else if !sawType {
				sawQualifierOrStorageOnly = true
			}
			if t.Flags.Has(token.FlagIdent) {
				if tag := c.Peek(0); tag != nil && tag.Type == token.IDENT {
					c.Pop()
				}
			}
			continue

		case t.Type == token.STAR:
			if !sawType && !sawQualifierOrStorageOnly {
				c.Back(t)
				return false
			}
			continue

		case t.Type == token.IDENT:
			if sawType {
				// The type name is complete; this identifier is the
				// declarator name, not part of the type.
				c.Back(t)
				return true
			}
			if c.peekIfFuncPtr() {
				return true
			}
			// No keyword has been seen yet, so this bare identifier can
			// only be a typedef name. Accept it speculatively only if a
			// declarator could plausibly follow; a following '(' is
			// ambiguous with a function call and is handled above via
			// peekIfFuncPtr instead.
			next := c.Peek(0)
			if next != nil && (next.Type == token.STAR || next.Type == token.IDENT) {
				sawType = true
				continue
			}
			c.Back(t)
			return false

		default:
			c.Back(t)
			// A lone qualifier/storage keyword with nothing type-like
			// after it (e.g. "static" at file scope before a
			// declaration the caller hasn't reached yet) still counts:
			// the caller is asking "could a type start here", not
			// "is this fully spelled out".
			return sawType || sawQualifierOrStorageOnly
		}
	}
	return sawType || sawQualifierOrStorageOnly
}

// peekIfFuncPtr recognizes the function-pointer declarator form
// "(*name)(args)" or "(*)(args)" immediately at the cursor, annotating the
// inner parenthesis with FlagTypeArgs and Align so a document builder can
// line up the argument list. Grounded in
// original_source/lexer.c's lexer_peek_if_func_ptr.
func (c *Cursor) peekIfFuncPtr() bool {
	c.PeekEnter()

	open, ok := c.IfType(token.LPAREN)
	if !ok {
		c.PeekLeave(false)
		return false
	}
	if _, ok := c.IfType(token.STAR); !ok {
		c.PeekLeave(false)
		return false
	}
	c.IfType(token.IDENT) // optional declarator name
	for {
		if _, ok := c.IfType(token.LSQUARE); !ok {
			break
		}
		closed := false
		for i := 0; i < 8; i++ {
			t, ok := c.Pop()
			if !ok {
				break
			}
			if t.Type == token.RSQUARE {
				closed = true
				break
			}
		}
		if !closed {
			c.PeekLeave(false)
			return false
		}
	}
	if _, ok := c.IfType(token.RPAREN); !ok {
		c.PeekLeave(false)
		return false
	}
	args, ok := c.IfType(token.LPAREN)
	if !ok {
		c.PeekLeave(false)
		return false
	}
	if !c.PeekUntil(token.RPAREN, 64) {
		c.PeekLeave(false)
		return false
	}

	open.Flags |= token.FlagTypeFunc
	args.Flags |= token.FlagTypeArgs
	args.Align = open
	c.PeekLeave(true)
	return true
}
