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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfmt-go/cfmt/internal/buffer"
	"github.com/cfmt-go/cfmt/internal/token"
)

// normalizeWS collapses every run of whitespace to a single space, so
// Render's output (which drops insignificant whitespace the scanner never
// retains) can be compared against the original source.
func normalizeWS(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func mustLex(t *testing.T, src string) *Lexer {
	t.Helper()
	buf := buffer.New(len(src))
	buf.AppendString(src)
	lx, err := New(buf, "test.c")
	require.NoError(t, err)
	return lx
}

func mainTypes(lx *Lexer) []token.Type {
	var out []token.Type
	for tok := range lx.Tokens() {
		out = append(out, tok.Type)
	}
	return out
}

func TestLexerBasicTokens(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  []token.Type
	}{
		{"empty", "", []token.Type{token.EOF}},
		{"semicolon", ";", []token.Type{token.SEMI, token.EOF}},
		{
			"decl",
			"int x;",
			[]token.Type{token.INT, token.IDENT, token.SEMI, token.EOF},
		},
		{
			"struct tag",
			"struct foo *p;",
			[]token.Type{token.STRUCT, token.IDENT, token.STAR, token.IDENT, token.SEMI, token.EOF},
		},
		{
			"string literal",
			`"hi"`,
			[]token.Type{token.STRING, token.EOF},
		},
		{
			"ellipsis",
			"f(...)",
			[]token.Type{token.IDENT, token.LPAREN, token.ELLIPSIS, token.RPAREN, token.EOF},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lx := mustLex(t, tc.input)
			assert.Equal(t, tc.want, mainTypes(lx))
		})
	}
}

func TestLexerRoundTrip(t *testing.T) {
	testCases := []string{
		"int x;\n",
		"// comment\nint x;\n",
		"/* block */\nint x; // trailing\n",
		"int\tx\t=\t1;\n\n\nint y;\n",
		"#define FOO 1\nint x;\n",
		"#if 0\nold();\n#if NESTED\ndead();\n#endif\n#endif\nint x;\n",
	}
	for _, src := range testCases {
		lx := mustLex(t, src)
		assert.Equal(t, normalizeWS(src), normalizeWS(lx.Render()))
	}
}

func TestLexerStringEscapes(t *testing.T) {
	lx := mustLex(t, `"a\"b"`)
	types := mainTypes(lx)
	require.Equal(t, []token.Type{token.STRING, token.EOF}, types)
	str, _ := lx.Cursor().Pop()
	assert.Equal(t, `"a\"b"`, str.Str)
}

// hasPrefixType reports whether tok carries a dangling prefix of the
// given type.
func hasPrefixType(tok *token.Token, want token.Type) bool {
	for _, p := range tok.Prefixes {
		if p.Type == want {
			return true
		}
	}
	return false
}

func TestLexerBranchLinking(t *testing.T) {
	src := "#if FOO\nint a;\n#else\nint b;\n#endif\n"
	lx := mustLex(t, src)

	var ifAnchor, elseAnchor, endifAnchor *token.Token
	for tok := range lx.Tokens() {
		for _, p := range tok.Prefixes {
			switch p.Type {
			case token.CPP_IF:
				ifAnchor = tok
			case token.CPP_ELSE:
				elseAnchor = tok
			case token.CPP_ENDIF:
				endifAnchor = tok
			}
		}
	}
	require.NotNil(t, ifAnchor)
	require.NotNil(t, elseAnchor)
	require.NotNil(t, endifAnchor)

	// The directives themselves never join the main stream.
	assert.Equal(t, token.INT, ifAnchor.Type)
	assert.Equal(t, token.INT, elseAnchor.Type)
	assert.Equal(t, token.EOF, endifAnchor.Type)

	assert.Same(t, elseAnchor, ifAnchor.BranchNext)
	assert.Same(t, ifAnchor, elseAnchor.BranchPrev)
	assert.Same(t, endifAnchor, elseAnchor.BranchNext)
	assert.Same(t, elseAnchor, endifAnchor.BranchPrev)
	assert.Nil(t, endifAnchor.BranchNext)

	assert.False(t, ifAnchor.IsBranch(true))
	assert.True(t, elseAnchor.IsBranch(true))
	assert.False(t, endifAnchor.IsBranch(true))

	assert.True(t, ifAnchor.IsBranch(false))
	assert.True(t, elseAnchor.IsBranch(false))
	assert.False(t, endifAnchor.IsBranch(false))
}

func TestCursorHaltsAtBranchAndTakeBranch(t *testing.T) {
	src := "#if FOO\nint a;\n#else\nint b;\n#endif\nint c;\n"
	lx := mustLex(t, src)
	cur := lx.Cursor()

	tok, ok := cur.Pop()
	require.True(t, ok)
	require.Equal(t, token.INT, tok.Type)
	require.True(t, hasPrefixType(tok, token.CPP_IF))
	require.Same(t, tok, cur.PendingBranch())

	// Pop halts: repeated calls return the same anchor.
	again, ok := cur.Pop()
	require.True(t, ok)
	assert.Same(t, tok, again)

	elseTok := tok.BranchNext
	require.NoError(t, cur.TakeBranch(tok, elseTok))
	assert.Nil(t, cur.PendingBranch())
	assert.True(t, tok.Taken)

	next, ok := cur.Pop()
	require.True(t, ok)
	assert.Same(t, elseTok, next)
	assert.True(t, next.Flags.Has(token.FlagUnmute))
	assert.True(t, hasPrefixType(next, token.CPP_ELSE))

	// elseTok is itself a branch anchor, linked to the #endif's anchor;
	// resolve it to its terminal alternative.
	require.Same(t, elseTok, cur.PendingBranch())
	endifTok := elseTok.BranchNext
	require.NoError(t, cur.TakeBranch(elseTok, endifTok))

	tail, ok := cur.Pop()
	require.True(t, ok)
	assert.Equal(t, token.INT, tail.Type)
	assert.True(t, hasPrefixType(tail, token.CPP_ENDIF))
	assert.True(t, tail.Flags.Has(token.FlagUnmute))
}

func TestCursorPeekIsTransparentToBranches(t *testing.T) {
	src := "#if FOO\nint a;\n#endif\nint b;\n"
	lx := mustLex(t, src)
	cur := lx.Cursor()

	peeked := cur.Peek(0)
	require.NotNil(t, peeked)
	// Peek auto-follows the branch chain to its terminal alternative.
	assert.Equal(t, token.INT, peeked.Type)
	assert.True(t, hasPrefixType(peeked, token.CPP_ENDIF))
	// And the real Pop still halts at the #if, unaffected by the peek.
	tok, ok := cur.Pop()
	require.True(t, ok)
	assert.Equal(t, token.INT, tok.Type)
	assert.True(t, hasPrefixType(tok, token.CPP_IF))
}

func TestLexerDisabledRegionNotBranchLinked(t *testing.T) {
	src := "#if 0\n#if NESTED\nint dead;\n#endif\n#endif\nint x;\n"
	lx := mustLex(t, src)

	var anchor *token.Token
	for tok := range lx.Tokens() {
		if tok.Type == token.INT {
			anchor = tok
			break
		}
	}
	require.NotNil(t, anchor)
	require.Len(t, anchor.Prefixes, 1)
	assert.Equal(t, token.CPP, anchor.Prefixes[0].Type)
	assert.Contains(t, anchor.Prefixes[0].Str, "#if 0")
	assert.Contains(t, anchor.Prefixes[0].Str, "NESTED")
	assert.Nil(t, anchor.BranchPrev)
	assert.Nil(t, anchor.BranchNext)
}

func TestCursorExpect(t *testing.T) {
	lx := mustLex(t, "int x;")
	cur := lx.Cursor()

	_, err := cur.Expect(token.INT)
	assert.NoError(t, err)

	_, err = cur.Expect(token.SEMI)
	assert.Error(t, err)
	assert.Equal(t, err, cur.Err())
}

func TestCursorRecoverSeeksToEarliestMarker(t *testing.T) {
	lx := mustLex(t, "a b c d e;")
	cur := lx.Cursor()
	for i := 0; i < 4; i++ {
		_, ok := cur.Pop()
		require.True(t, ok)
	}
	cur.Recover()
	tok, ok := cur.Pop()
	require.True(t, ok)
	assert.Equal(t, "c", tok.Str)
}

func TestPeekIfTypePhrase(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple type", "int x", true},
		{"pointer type", "char *p", true},
		{"qualified type", "const int x", true},
		{"struct tag", "struct foo *p", true},
		{"not a type", "x = 1", false},
		{"call expr", "foo(x)", false},
		{"typedef name used as type", "myint x", true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lx := mustLex(t, tc.input)
			cur := lx.Cursor()
			assert.Equal(t, tc.want, cur.PeekIfTypePhrase())
			// Must not have disturbed the cursor.
			first, ok := cur.Pop()
			require.True(t, ok)
			assert.NotEqual(t, token.EOF, first.Type)
		})
	}
}

func TestPeekIfFuncPtrType(t *testing.T) {
	lx := mustLex(t, "int (*fn)(int, int);")
	cur := lx.Cursor()
	assert.True(t, cur.PeekIfTypePhrase())
}
