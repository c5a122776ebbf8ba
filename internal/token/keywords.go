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

package token

import "github.com/cfmt-go/cfmt/internal/collections"

// descriptor is a static (type, spelling, flags) triple used to seed the
// process-wide keyword table. Mirrors the X() rows of
// original_source/token.h.
type descriptor struct {
	typ     Type
	spell   string
	flags   Flag
	name    string
}

var descriptors = []descriptor{
	{ATTRIBUTE, "__attribute__", 0, "ATTRIBUTE"},
	{BREAK, "break", 0, "BREAK"},
	{CASE, "case", 0, "CASE"},
	{CHAR, "char", FlagType, "CHAR"},
	{CONST, "const", FlagQualifier, "CONST"},
	{CONTINUE, "continue", 0, "CONTINUE"},
	{DEFAULT, "default", 0, "DEFAULT"},
	{DO, "do", 0, "DO"},
	{DOUBLE, "double", FlagType, "DOUBLE"},
	{ELSE, "else", 0, "ELSE"},
	{ENUM, "enum", FlagType | FlagIdent, "ENUM"},
	{EXTERN, "extern", FlagStorage, "EXTERN"},
	{FLOAT, "float", FlagType, "FLOAT"},
	{FOR, "for", 0, "FOR"},
	{GOTO, "goto", 0, "GOTO"},
	{IF, "if", 0, "IF"},
	{INLINE, "inline", FlagStorage, "INLINE"},
	{INT, "int", FlagType, "INT"},
	{LONG, "long", FlagType, "LONG"},
	{REGISTER, "register", FlagStorage, "REGISTER"},
	{RETURN, "return", 0, "RETURN"},
	{SHORT, "short", FlagType, "SHORT"},
	{SIGNED, "signed", FlagType, "SIGNED"},
	{SIZEOF, "sizeof", 0, "SIZEOF"},
	{STATIC, "static", FlagStorage, "STATIC"},
	{STRUCT, "struct", FlagType | FlagIdent, "STRUCT"},
	{SWITCH, "switch", 0, "SWITCH"},
	{TYPEDEF, "typedef", FlagType, "TYPEDEF"},
	{UNION, "union", FlagType | FlagIdent, "UNION"},
	{UNSIGNED, "unsigned", FlagType, "UNSIGNED"},
	{VOID, "void", FlagType, "VOID"},
	{VOLATILE, "volatile", FlagQualifier, "VOLATILE"},
	{WHILE, "while", 0, "WHILE"},

	{LSQUARE, "[", 0, "LSQUARE"},
	{RSQUARE, "]", 0, "RSQUARE"},
	{LPAREN, "(", 0, "LPAREN"},
	{RPAREN, ")", 0, "RPAREN"},
	{LBRACE, "{", 0, "LBRACE"},
	{RBRACE, "}", 0, "RBRACE"},
	{PERIOD, ".", FlagAmbiguous, "PERIOD"},
	{ELLIPSIS, "...", FlagType, "ELLIPSIS"},
	{AMP, "&", FlagAmbiguous | FlagBinary, "AMP"},
	{AMPAMP, "&&", FlagBinary, "AMPAMP"},
	{AMPEQUAL, "&=", FlagAssign, "AMPEQUAL"},
	{STAR, "*", FlagAmbiguous | FlagBinary, "STAR"},
	{STAREQUAL, "*=", FlagAssign, "STAREQUAL"},
	{PLUS, "+", FlagAmbiguous | FlagBinary, "PLUS"},
	{PLUSPLUS, "++", 0, "PLUSPLUS"},
	{PLUSEQUAL, "+=", FlagAssign, "PLUSEQUAL"},
	{MINUS, "-", FlagAmbiguous | FlagBinary, "MINUS"},
	{ARROW, "->", 0, "ARROW"},
	{MINUSMINUS, "--", 0, "MINUSMINUS"},
	{MINUSEQUAL, "-=", FlagAssign, "MINUSEQUAL"},
	{TILDE, "~", 0, "TILDE"},
	{EXCLAIM, "!", FlagAmbiguous, "EXCLAIM"},
	{EXCLAIMEQUAL, "!=", FlagBinary, "EXCLAIMEQUAL"},
	{SLASH, "/", FlagAmbiguous | FlagBinary, "SLASH"},
	{SLASHEQUAL, "/=", FlagAssign, "SLASHEQUAL"},
	{PERCENT, "%", FlagAmbiguous | FlagBinary, "PERCENT"},
	{PERCENTEQUAL, "%=", FlagAssign, "PERCENTEQUAL"},
	{LESS, "<", FlagAmbiguous | FlagBinary, "LESS"},
	{LESSLESS, "<<", FlagAmbiguous | FlagBinary, "LESSLESS"},
	{LESSEQUAL, "<=", FlagBinary, "LESSEQUAL"},
	{LESSLESSEQUAL, "<<=", FlagAssign, "LESSLESSEQUAL"},
	{GREATER, ">", FlagAmbiguous | FlagBinary, "GREATER"},
	{GREATERGREATER, ">>", FlagAmbiguous | FlagBinary, "GREATERGREATER"},
	{GREATEREQUAL, ">=", FlagAssign, "GREATEREQUAL"},
	{GREATERGREATEREQUAL, ">>=", FlagAssign, "GREATERGREATEREQUAL"},
	{CARET, "^", FlagAmbiguous, "CARET"},
	{CARETEQUAL, "^=", FlagAssign, "CARETEQUAL"},
	{PIPE, "|", FlagAmbiguous | FlagBinary, "PIPE"},
	{PIPEPIPE, "||", FlagBinary, "PIPEPIPE"},
	{PIPEEQUAL, "|=", FlagAssign, "PIPEEQUAL"},
	{QUESTION, "?", 0, "QUESTION"},
	{COLON, ":", 0, "COLON"},
	{SEMI, ";", 0, "SEMI"},
	{EQUAL, "=", FlagAmbiguous | FlagAssign, "EQUAL"},
	{EQUALEQUAL, "==", FlagBinary, "EQUALEQUAL"},
	{COMMA, ",", 0, "COMMA"},
	{BACKSLASH, `\`, FlagDiscard, "BACKSLASH"},

	// Sentinels: no table entry (empty spelling), listed here only so
	// TypeName has a name for them. CPP_IF/CPP_ELSE/CPP_ENDIF are dangling
	// prefix trivia just like COMMENT, CPP and SPACE; the branch chain
	// they describe links through the main-stream anchor token that
	// carries them as a prefix, never through the directive token itself.
	{COMMENT, "", FlagDangling, "COMMENT"},
	{CPP, "", FlagDangling, "CPP"},
	{CPP_IF, "", FlagDangling, "CPP_IF"},
	{CPP_ELSE, "", FlagDangling, "CPP_ELSE"},
	{CPP_ENDIF, "", FlagDangling, "CPP_ENDIF"},
	{EOF, "", 0, "EOF"},
	{ERROR, "", 0, "ERROR"},
	{IDENT, "", 0, "IDENT"},
	{LITERAL, "", 0, "LITERAL"},
	{STRING, "", 0, "STRING"},
	{SPACE, "", FlagDangling, "SPACE"},
	{UNKNOWN, "", 0, "UNKNOWN"},
	{NONE, "", 0, "NONE"},
}

// keywordEntry is the canonical template for a recognized lexeme: enough to
// stamp out a fresh *Token for every occurrence without re-deriving flags.
type keywordEntry struct {
	typ   Type
	flags Flag
}

var (
	keywordTable map[string]keywordEntry
	typeNames    map[Type]string
)

// init populates the process-wide, read-only keyword table once at
// startup, exactly as original_source/lexer.c's lexer_init() builds its
// uthash table from the same static descriptor list. Safe for concurrent
// reads thereafter; never mutated again.
func init() {
	keywordTable = make(map[string]keywordEntry, len(descriptors))
	typeNames = make(map[Type]string, len(descriptors))

	seen := make(collections.Set[string], len(descriptors))
	for _, d := range descriptors {
		typeNames[d.typ] = d.name
		if d.spell == "" {
			continue // sentinel, no table entry
		}
		if seen.Contains(d.spell) {
			panic("token: duplicate keyword spelling " + d.spell)
		}
		seen.Add(d.spell)
		keywordTable[d.spell] = keywordEntry{typ: d.typ, flags: d.flags}
	}
}

// Lookup returns the canonical type and flags for an exact lexeme, without
// allocation. ok is false if lexeme is not a recognized keyword or
// punctuator.
func Lookup(lexeme string) (typ Type, flags Flag, ok bool) {
	e, ok := keywordTable[lexeme]
	return e.typ, e.flags, ok
}

// TypeName returns the canonical name of a token type, used by
// diagnostics and Token.String.
func TypeName(t Type) string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "UNKNOWN_TYPE"
}
