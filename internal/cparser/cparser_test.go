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

package cparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfmt-go/cfmt/internal/buffer"
	"github.com/cfmt-go/cfmt/internal/lexer"
	"github.com/cfmt-go/cfmt/internal/token"
)

func TestParseDirectiveKinds(t *testing.T) {
	testCases := []struct {
		raw  string
		kind Kind
	}{
		{"#include <stdio.h>", KindInclude},
		{`#include "local.h"`, KindInclude},
		{"#define FOO 1", KindDefine},
		{"#define MAX(a, b) ((a) > (b) ? (a) : (b))", KindDefine},
		{"#undef FOO", KindUndef},
		{"#if FOO", KindIf},
		{"#ifdef FOO", KindIfdef},
		{"#ifndef FOO", KindIfndef},
		{"#elif BAR", KindElif},
		{"#else", KindElse},
		{"#endif", KindEndif},
		{"#pragma once", KindOther},
	}
	for _, tc := range testCases {
		d := Parse(tc.raw)
		assert.Equalf(t, tc.kind, d.Kind, "Parse(%q)", tc.raw)
	}
}

func TestParseDefineWithParams(t *testing.T) {
	d := Parse("#define MAX(a, b) ((a) > (b) ? (a) : (b))")
	assert.Equal(t, "MAX", d.Name)
	assert.Equal(t, []string{"a", "b"}, d.Params)
	assert.Equal(t, "((a) > (b) ? (a) : (b))", d.Body)
}

func TestParseInclude(t *testing.T) {
	d := Parse("#include <stdio.h>")
	assert.Equal(t, "stdio.h", d.Name)
	assert.True(t, d.System)

	d = Parse(`#include "local.h"`)
	assert.Equal(t, "local.h", d.Name)
	assert.False(t, d.System)
}

func TestExprEval(t *testing.T) {
	testCases := []struct {
		name   string
		expr   string
		macros Macros
		want   int
	}{
		{"defined true", "defined(FOO)", Macros{"FOO": ""}, 1},
		{"defined false", "defined(FOO)", Macros{}, 0},
		{"not", "!defined(FOO)", Macros{}, 1},
		{"and", "defined(A) && defined(B)", Macros{"A": "", "B": ""}, 1},
		{"or short circuit", "defined(A) || defined(B)", Macros{"A": ""}, 1},
		{"compare", "VERSION >= 2", Macros{"VERSION": "3"}, 1},
		{"compare false", "VERSION >= 2", Macros{"VERSION": "1"}, 0},
		{"parens", "(1 == 1) && (2 == 3)", Macros{}, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := ParseExpr(tc.expr)
			require.NoError(t, err)
			got, err := e.Eval(tc.macros)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func lexSrc(t *testing.T, src string) *lexer.Lexer {
	t.Helper()
	buf := buffer.New(len(src))
	buf.AppendString(src)
	lx, err := lexer.New(buf, "test.c")
	require.NoError(t, err)
	return lx
}

func TestWalkerTakesTrueBranch(t *testing.T) {
	src := "#define FOO 1\n#if FOO\nint a;\n#else\nint b;\n#endif\n"
	lx := lexSrc(t, src)
	w := NewWalker(lx.Cursor(), nil)
	require.NoError(t, w.Run())
	assert.Equal(t, 0, w.Unresolved)

	var names []string
	for tok := range lx.Tokens() {
		if tok.Type == token.IDENT {
			names = append(names, tok.Str)
		}
	}
	assert.Equal(t, []string{"a"}, names)
}

func TestWalkerTakesElseBranch(t *testing.T) {
	src := "#if FOO\nint a;\n#else\nint b;\n#endif\n"
	lx := lexSrc(t, src)
	w := NewWalker(lx.Cursor(), nil)
	require.NoError(t, w.Run())

	var names []string
	for tok := range lx.Tokens() {
		if tok.Type == token.IDENT {
			names = append(names, tok.Str)
		}
	}
	assert.Equal(t, []string{"b"}, names)
}

func TestWalkerLeavesUnresolvableChainIntact(t *testing.T) {
	src := "#if SOME_UNPARSEABLE_EXPR(((\nint a;\n#else\nint b;\n#endif\n"
	lx := lexSrc(t, src)
	w := NewWalker(lx.Cursor(), nil)
	require.NoError(t, w.Run())
	assert.Equal(t, 1, w.Unresolved)

	var names []string
	for tok := range lx.Tokens() {
		if tok.Type == token.IDENT {
			names = append(names, tok.Str)
		}
	}
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestWalkerIfdef(t *testing.T) {
	src := "#define DEBUG\n#ifdef DEBUG\nint a;\n#endif\n"
	lx := lexSrc(t, src)
	w := NewWalker(lx.Cursor(), nil)
	require.NoError(t, w.Run())

	var names []string
	for tok := range lx.Tokens() {
		if tok.Type == token.IDENT {
			names = append(names, tok.Str)
		}
	}
	assert.Equal(t, []string{"a"}, names)
}
