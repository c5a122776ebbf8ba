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

// Package cparser is a thin collaborator over internal/lexer's Cursor: it
// decides which #if/#else/#endif alternative to keep by parsing directive
// text and evaluating conditions against a macro table. It is not a C
// grammar; cfmt's formatter never needs one, since it reproduces
// expression and statement tokens verbatim.
package cparser

import "strings"

// Kind classifies a preprocessor directive by its leading word.
type Kind int

const (
	KindOther Kind = iota
	KindInclude
	KindDefine
	KindUndef
	KindIf
	KindIfdef
	KindIfndef
	KindElif
	KindElse
	KindEndif
)

// Directive is a parsed preprocessor line, collapsing what would otherwise
// be separate Include/Define/Undef record types into a single struct since
// cfmt only needs enough structure to resolve conditionals and track macro
// definitions, not to model the full directive grammar.
type Directive struct {
	Kind Kind
	Raw  string // full directive text, including the leading '#'

	// Name is the macro name for Define/Undef/Ifdef/Ifndef, or the
	// included path for Include.
	Name string
	// System is true for Include when the path used angle brackets.
	System bool
	// Params holds a function-like macro's parameter names; nil for an
	// object-like macro.
	Params []string
	// Body is a Define's replacement text, unparsed.
	Body string
	// Condition is the unparsed expression text for If/Elif.
	Condition string
}

// Parse classifies and extracts the fields of a single directive's raw
// text (as captured in a CPP/CPP_IF/CPP_ELSE/CPP_ENDIF token's Str).
func Parse(raw string) Directive {
	word, rest := directiveWord(raw)
	d := Directive{Raw: raw}
	switch word {
	case "include":
		d.Kind = KindInclude
		d.Name, d.System = parseInclude(rest)
	case "define":
		d.Kind = KindDefine
		d.Name, d.Params, d.Body = parseDefine(rest)
	case "undef":
		d.Kind = KindUndef
		d.Name = strings.TrimSpace(rest)
	case "if":
		d.Kind = KindIf
		d.Condition = strings.TrimSpace(rest)
	case "ifdef":
		d.Kind = KindIfdef
		d.Name = strings.TrimSpace(rest)
	case "ifndef":
		d.Kind = KindIfndef
		d.Name = strings.TrimSpace(rest)
	case "elif":
		d.Kind = KindElif
		d.Condition = strings.TrimSpace(rest)
	case "else":
		d.Kind = KindElse
	case "endif":
		d.Kind = KindEndif
	default:
		d.Kind = KindOther
	}
	return d
}

func directiveWord(raw string) (word, rest string) {
	s := strings.TrimPrefix(raw, "#")
	s = strings.TrimLeft(s, " \t")
	i := 0
	for i < len(s) && isIdentByte(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func parseInclude(rest string) (name string, system bool) {
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "<") {
		if end := strings.IndexByte(rest, '>'); end > 0 {
			return rest[1:end], true
		}
	}
	if strings.HasPrefix(rest, `"`) {
		if end := strings.IndexByte(rest[1:], '"'); end >= 0 {
			return rest[1 : end+1], false
		}
	}
	return rest, false
}

func parseDefine(rest string) (name string, params []string, body string) {
	rest = strings.TrimLeft(rest, " \t")
	i := 0
	for i < len(rest) && isIdentByte(rest[i]) {
		i++
	}
	name = rest[:i]
	if i < len(rest) && rest[i] == '(' {
		end := strings.IndexByte(rest[i:], ')')
		if end < 0 {
			return name, nil, strings.TrimSpace(rest[i:])
		}
		paramList := rest[i+1 : i+end]
		for _, p := range strings.Split(paramList, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				params = append(params, p)
			}
		}
		body = strings.TrimSpace(rest[i+end+1:])
		return name, params, body
	}
	return name, nil, strings.TrimSpace(rest[i:])
}
