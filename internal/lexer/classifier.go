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
	"strings"

	"github.com/cfmt-go/cfmt/internal/buffer"
	"github.com/cfmt-go/cfmt/internal/token"
)

// classifier turns the bytes of a Buffer into a finished, doubly linked
// stream of main tokens with prefix/suffix trivia attached. #if/#else/
// #endif directives are dangling prefixes like any other cpp directive;
// the branch chain is linked through the syntactic anchor token that
// carries them, not through the directives themselves. It runs once,
// eagerly, over the whole buffer; the Cursor that walks its output never
// re-invokes it.
//
// Grounded in original_source/lexer.c's lexer_read, lexer_comment,
// lexer_cpp, lexer_keyword, lexer_ellipsis and lexer_branch_enter/leave/
// link.
type classifier struct {
	sc  *scanner
	buf *buffer.Buffer

	head, tail *token.Token // main stream, sentinel-free

	branches []*branchFrame

	err error
}

// branchFrame tracks one open #if..#endif chain while scanning linearly.
type branchFrame struct {
	last *token.Token // most recently linked anchor (holds CPP_IF or CPP_ELSE among its prefixes)
}

func newClassifier(buf *buffer.Buffer) *classifier {
	return &classifier{sc: newScanner(buf), buf: buf}
}

// run lexes the entire buffer and returns the head of the finished main
// stream.
func (c *classifier) run() (*token.Token, error) {
	for {
		tok, ok := c.read()
		if !ok {
			break
		}
		c.emit(tok)
		if tok.Type == token.EOF {
			break
		}
	}
	if len(c.branches) != 0 {
		c.errorf(c.tail, "unterminated #if at EOF")
	}
	return c.head, c.err
}

func (c *classifier) errorf(near *token.Token, format string, args ...any) {
	if c.err != nil {
		return
	}
	pos := token.Position{Line: c.sc.line, Column: c.sc.col}
	if near != nil {
		pos = near.Pos
	}
	c.err = fmt.Errorf("%s: %s", pos, fmt.Sprintf(format, args...))
}

// emit appends tok to the main stream and, by walking its own finished
// prefixes, threads any #if/#else/#endif directives found there into the
// appropriate branch chain. The links join the anchor tokens themselves
// (tok), never the dangling directive prefixes that describe them — a
// chain member whose last-linked anchor is already tok is left alone,
// which discards a degenerate empty-bodied #if/#endif pair instead of
// looping it back on itself. Grounded in original_source/lexer.c's
// lexer_read "out:" loop over tk_prefixes and lexer_branch_enter/link/
// leave.
func (c *classifier) emit(tok *token.Token) {
	tok.Prev = c.tail
	if c.tail != nil {
		c.tail.Next = tok
	} else {
		c.head = tok
	}
	c.tail = tok

	for _, p := range tok.Prefixes {
		switch p.Type {
		case token.CPP_IF:
			c.branches = append(c.branches, &branchFrame{last: tok})
		case token.CPP_ELSE:
			if n := len(c.branches); n > 0 {
				f := c.branches[n-1]
				if f.last != tok {
					f.last.BranchNext = tok
					tok.BranchPrev = f.last
					f.last = tok
				}
			}
		case token.CPP_ENDIF:
			if n := len(c.branches); n > 0 {
				f := c.branches[n-1]
				c.branches = c.branches[:n-1]
				if f.last != tok {
					f.last.BranchNext = tok
					tok.BranchPrev = f.last
				}
			}
		}
	}
}

// read produces the next main-stream token, with its dangling prefixes and
// suffixes attached. ok is false once a lexing error has been recorded;
// run stops calling it after the EOF token.
func (c *classifier) read() (*token.Token, bool) {
	if c.err != nil {
		return nil, false
	}

	// Dangling prefixes: comments and all preprocessor directives —
	// #include/#define/#undef/#pragma as well as #if/#else/#endif — are
	// trivia attached to the token that follows them. Branch bookkeeping
	// happens afterward, in emit, by walking the finished anchor's own
	// Prefixes.
	var prefixes []*token.Token
	var tok *token.Token
	for {
		c.eatSpace()
		ch, ok := c.sc.peekByte()
		if !ok {
			tok = c.newTok(token.EOF, c.sc.pos(), "")
			break
		}
		if ch == '/' {
			if d, ok := c.tryComment(); ok {
				prefixes = append(prefixes, d)
				continue
			}
		}
		if ch == '#' {
			prefixes = append(prefixes, c.lexDirective())
			continue
		}
		tok = c.lexReal()
		break
	}
	tok.Prefixes = prefixes

	var suffixes []*token.Token
	for {
		d, ok := c.danglingLineOnce()
		if !ok {
			break
		}
		suffixes = append(suffixes, d)
	}
	if blank := c.eatLines(); blank != nil {
		suffixes = append(suffixes, blank)
	}
	tok.Suffixes = suffixes

	return tok, true
}

// lexReal scans a single non-trivia, non-directive token: a literal,
// identifier/keyword, or punctuator.
func (c *classifier) lexReal() *token.Token {
	pos := c.sc.pos()
	start := c.sc.offset()
	ch, _ := c.sc.getc()

	switch {
	case ch == '"', ch == '\'':
		return c.lexQuoted(pos, start, ch)
	case ch == 'L' && peekIsQuote(c.sc):
		q, _ := c.sc.getc()
		return c.lexQuoted(pos, start, q)
	case isDigit(ch):
		c.sc.ungetc()
		return c.lexNumber(pos, start)
	case isIdentStart(ch):
		c.sc.ungetc()
		return c.lexIdentOrKeyword(pos, start)
	default:
		c.sc.ungetc()
		if tok, match := c.lexPunct(pos, start); match {
			return tok
		}
		c.sc.getc()
		return c.newTok(token.UNKNOWN, pos, string(ch))
	}
}

func (c *classifier) newTok(typ token.Type, pos token.Position, str string) *token.Token {
	_, flags, _ := token.Lookup(str)
	return &token.Token{Type: typ, Pos: pos, Str: str, Flags: flags}
}

// danglingLineOnce consumes at most one trailing same-line comment as a
// DANGLING suffix token.
func (c *classifier) danglingLineOnce() (*token.Token, bool) {
	// Only horizontal whitespace may separate a token from a trailing
	// comment on the same line.
	save := *c.sc
	for {
		ch, ok := c.sc.peekByte()
		if !ok || ch == '\n' {
			break
		}
		if ch == ' ' || ch == '\t' {
			c.sc.getc()
			continue
		}
		if ch == '/' {
			if tok, ok := c.tryComment(); ok {
				return tok, true
			}
		}
		break
	}
	*c.sc = save
	return nil, false
}

func (c *classifier) tryComment() (*token.Token, bool) {
	pos := c.sc.pos()
	start := c.sc.offset()
	save := *c.sc
	ch, _ := c.sc.getc()
	if ch != '/' {
		*c.sc = save
		return nil, false
	}
	next, ok := c.sc.peekByte()
	if !ok || (next != '/' && next != '*') {
		*c.sc = save
		return nil, false
	}
	c.sc.getc()
	if next == '/' {
		for {
			ch, ok := c.sc.peekByte()
			if !ok || ch == '\n' {
				break
			}
			c.sc.getc()
		}
	} else {
		for {
			ch, ok := c.sc.getc()
			if !ok {
				c.errorf(nil, "unterminated comment")
				break
			}
			if ch == '*' {
				if n, ok := c.sc.peekByte(); ok && n == '/' {
					c.sc.getc()
					break
				}
			}
		}
	}
	tok := c.newTok(token.COMMENT, pos, string(c.sc.slice(start)))
	tok.Flags |= token.FlagDangling
	return tok, true
}

// lexDirective consumes a full preprocessor directive and classifies it
// as CPP_IF, CPP_ELSE, CPP_ENDIF, or the generic CPP sentinel. A line
// opening a disabled region — "#if 0" or "#ifdef notyet" — instead
// swallows every physical line that follows, directive or plain code
// alike, through its matching #endif into a single CPP token: nested
// #if/#endif pairs inside are counted so the right #endif closes the
// region, but none of them are linked as branches. The returned token is
// always dangling, including CPP_IF/CPP_ELSE/CPP_ENDIF: the branch chain
// they describe is threaded through the main-stream anchor that carries
// them as a prefix, not through the directive itself. Grounded in
// original_source/lexer.c's lexer_cpp and its `off` depth counter.
func (c *classifier) lexDirective() *token.Token {
	pos := c.sc.pos()
	start := c.sc.offset()

	typ := token.CPP
	off := 0
	for {
		c.eatSpace()
		ch, ok := c.sc.peekByte()
		if !ok || (ch != '#' && off == 0) {
			break
		}
		lineStart := c.sc.offset()
		c.consumeDirectiveLine()
		line := string(c.sc.slice(lineStart))

		if off > 0 {
			switch {
			case strings.HasPrefix(line, "#if"):
				off++
			case strings.HasPrefix(line, "#endif"):
				off--
			}
			if off == 0 {
				// The disabled region's own matching #endif: stop here
				// so the region's token span doesn't reach into whatever
				// follows it.
				break
			}
			continue
		}
		if isDisabledOpen(line) {
			off = 1
			continue
		}
		typ = classifyDirective(line)
		break
	}

	str := string(c.sc.slice(start))
	tok := c.newTok(typ, pos, str)
	tok.Flags |= token.FlagDangling
	return tok
}

// consumeDirectiveLine consumes the remainder of one logical line of a
// directive — or, inside a disabled region, of plain code — up to but
// not including its terminating newline. A backslash immediately
// followed by a newline continues the line rather than ending it, and a
// block comment is swallowed whole so a newline inside it cannot
// terminate the line early.
func (c *classifier) consumeDirectiveLine() {
	for {
		ch, ok := c.sc.getc()
		if !ok {
			break
		}
		if ch == '\\' {
			if n, ok := c.sc.peekByte(); ok && n == '\n' {
				c.sc.getc()
				continue
			}
		}
		if ch == '/' {
			if n, ok := c.sc.peekByte(); ok && n == '*' {
				c.sc.getc()
				for {
					b, ok := c.sc.getc()
					if !ok {
						break
					}
					if b == '*' {
						if n, ok := c.sc.peekByte(); ok && n == '/' {
							c.sc.getc()
							break
						}
					}
				}
				continue
			}
		}
		if ch == '\n' {
			c.sc.ungetc()
			break
		}
	}
}

// classifyDirective matches a consumed directive line by prefix, the
// same way original_source/lexer.c's lexer_buffer_strcmp compares
// against the full line rather than just its leading word.
func classifyDirective(line string) token.Type {
	switch {
	case strings.HasPrefix(line, "#if"):
		return token.CPP_IF
	case strings.HasPrefix(line, "#else"), strings.HasPrefix(line, "#elif"):
		return token.CPP_ELSE
	case strings.HasPrefix(line, "#endif"):
		return token.CPP_ENDIF
	default:
		return token.CPP
	}
}

// isDisabledOpen reports whether line opens a disabled region, verbatim
// per original_source/lexer.c's lexer_cpp: "#if 0" or "#ifdef notyet".
func isDisabledOpen(line string) bool {
	return strings.HasPrefix(line, "#if 0") || strings.HasPrefix(line, "#ifdef notyet")
}

// eatSpace consumes spaces, tabs, carriage returns and newlines, blank
// lines included. A blank line right after a main token has already been
// taken by eatLines as that token's SPACE suffix before eatSpace runs.
func (c *classifier) eatSpace() {
	for {
		ch, ok := c.sc.peekByte()
		if !ok || (ch != ' ' && ch != '\t' && ch != '\n' && ch != '\r') {
			return
		}
		c.sc.getc()
	}
}

// eatLines consumes consecutive newlines (together with any interleaved
// horizontal whitespace) and, if it saw two or more, returns a SPACE
// sentinel token recording a hard blank line. Grounded in
// original_source/lexer.c's lexer_eat_lines.
func (c *classifier) eatLines() *token.Token {
	pos := c.sc.pos()
	start := c.sc.offset()
	save := *c.sc
	newlines := 0
	for {
		ch, ok := c.sc.peekByte()
		if !ok {
			break
		}
		switch ch {
		case '\n':
			newlines++
			c.sc.getc()
		case ' ', '\t', '\r':
			c.sc.getc()
		default:
			goto done
		}
	}
done:
	if newlines < 2 {
		*c.sc = save
		return nil
	}
	tok := c.newTok(token.SPACE, pos, string(c.sc.slice(start)))
	tok.Flags |= token.FlagDangling
	return tok
}

func peekIsQuote(s *scanner) bool {
	save := *s
	ch, ok := s.getc()
	*s = save
	return ok && (ch == '"' || ch == '\'')
}

// lexQuoted scans a string or character literal. The closing quote scan
// treats a doubled backslash as a single escaped backslash rather than an
// escape of the following character, per original_source/lexer.c's
// `pch == '\\' && ch == '\\'` rule: two consecutive backslashes consume
// each other, so a quote immediately after them is not escaped.
func (c *classifier) lexQuoted(pos token.Position, start int, quote byte) *token.Token {
	var prevBackslash bool
	for {
		ch, ok := c.sc.getc()
		if !ok || ch == '\n' {
			c.errorf(nil, "unterminated literal")
			break
		}
		if ch == quote && !prevBackslash {
			break
		}
		if ch == '\\' && prevBackslash {
			prevBackslash = false
		} else {
			prevBackslash = ch == '\\'
		}
	}
	str := string(c.sc.slice(start))
	typ := token.LITERAL
	if quote == '"' {
		typ = token.STRING
	}
	return c.newTok(typ, pos, str)
}

func (c *classifier) lexNumber(pos token.Position, start int) *token.Token {
	for {
		ch, ok := c.sc.peekByte()
		if !ok || !isNum(ch) {
			break
		}
		c.sc.getc()
	}
	return c.newTok(token.LITERAL, pos, string(c.sc.slice(start)))
}

// isNum mirrors original_source/lexer.c's isnum: digits plus the letters
// and punctuation that can continue a numeric literal (hex digits, the
// x/X radix marker, l/L and u/U suffixes, and an embedded decimal point).
func isNum(ch byte) bool {
	switch {
	case isDigit(ch):
		return true
	case ch >= 'a' && ch <= 'f', ch >= 'A' && ch <= 'F':
		return true
	case ch == 'x', ch == 'X', ch == 'l', ch == 'L', ch == 'u', ch == 'U', ch == '.':
		return true
	default:
		return false
	}
}

func (c *classifier) lexIdentOrKeyword(pos token.Position, start int) *token.Token {
	for {
		ch, ok := c.sc.peekByte()
		if !ok || !isIdentPart(ch) {
			break
		}
		c.sc.getc()
	}
	str := string(c.sc.slice(start))
	if typ, flags, ok := token.Lookup(str); ok {
		return &token.Token{Type: typ, Pos: pos, Str: str, Flags: flags}
	}
	return c.newTok(token.IDENT, pos, str)
}

// lexPunct performs a longest-match scan over the punctuator table,
// retrying shorter candidates when the longest match is flagged
// AMBIGUOUS and the next token context can't accept it — in practice
// this lexer defers ambiguity resolution to the classifier's caller
// (the type-phrase recognizer and parser collaborators distinguish
// unary/binary uses), so longest-match is always taken here. The
// ellipsis hack is applied for PERIOD: three consecutive '.' form
// ELLIPSIS rather than three PERIOD tokens.
func (c *classifier) lexPunct(pos token.Position, start int) (*token.Token, bool) {
	best := ""
	var bestTyp token.Type
	var bestFlags token.Flag
	for _, n := range []int{3, 2, 1} {
		save := *c.sc
		ok := true
		for i := 0; i < n; i++ {
			if _, got := c.sc.getc(); !got {
				ok = false
				break
			}
		}
		if ok {
			cand := string(c.sc.slice(start))
			if typ, flags, found := token.Lookup(cand); found {
				best, bestTyp, bestFlags = cand, typ, flags
				*c.sc = save
				for i := 0; i < n; i++ {
					c.sc.getc()
				}
				break
			}
		}
		*c.sc = save
	}
	if best == "" {
		return nil, false
	}
	return &token.Token{Type: bestTyp, Pos: pos, Str: best, Flags: bestFlags}, true
}

func isDigit(ch byte) bool    { return ch >= '0' && ch <= '9' }
func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
func isIdentPart(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }
