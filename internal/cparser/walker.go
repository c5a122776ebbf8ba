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
	"github.com/cfmt-go/cfmt/internal/lexer"
	"github.com/cfmt-go/cfmt/internal/token"
)

// Walker drives a lexer.Cursor to completion, tracking #define/#undef and
// resolving #if/#elif/#else chains it can evaluate via CollapseChain.
// Chains whose condition it cannot parse or evaluate (e.g. one that
// depends on a macro defined by a #include it does not follow) are left as
// the lexer produced them: still linked, with no alternative discarded. This mirrors cfmt's
// real formatter, which only needs to collapse conditionals it can prove
// one way or another and otherwise reproduces both alternatives verbatim.
type Walker struct {
	cur    *lexer.Cursor
	macros Macros

	Unresolved int // count of branch chains left untouched
}

// NewWalker returns a Walker seeded with an initial macro table (may be
// nil).
func NewWalker(cur *lexer.Cursor, seed Macros) *Walker {
	m := make(Macros, len(seed))
	for k, v := range seed {
		m[k] = v
	}
	return &Walker{cur: cur, macros: m}
}

// Macros returns the macro table accumulated so far.
func (w *Walker) Macros() Macros { return w.macros }

// Run consumes the entire token stream, applying #define/#undef as it
// goes and resolving every conditional chain it can. It returns the
// Cursor's first recorded diagnostic, if any.
func (w *Walker) Run() error {
	for {
		tok, ok := w.cur.Pop()
		if !ok {
			break
		}
		// A directive's own leading #define/#undef prefixes (e.g. one
		// macro defined immediately before the #if that tests it) must
		// be applied before the branch below gets evaluated.
		for _, p := range tok.Prefixes {
			if p.Type == token.CPP {
				w.apply(Parse(p.Str))
			}
		}
		if w.cur.PendingBranch() == tok {
			// Pop halted here. An anchor carrying a fresh CPP_IF prefix
			// needs its condition chain evaluated; any other anchor
			// reached this way (one carrying a CPP_ELSE prefix, from an
			// #else or #elif) belongs to a chain resolveChain left
			// unresolved, so its own body is kept and it only needs a
			// trivial close-out.
			if hasPrefixType(tok, token.CPP_IF) {
				w.resolveChain(tok)
			} else {
				w.cur.TakeBranch(tok, tok)
			}
			continue
		}
		if tok.Type == token.EOF {
			break
		}
	}
	return w.cur.Err()
}

func (w *Walker) apply(d Directive) {
	switch d.Kind {
	case KindDefine:
		w.macros[d.Name] = d.Body
	case KindUndef:
		delete(w.macros, d.Name)
	}
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

// branchDirective returns the Directive parsed from the last
// branch-participating prefix (CPP_IF, CPP_ELSE or CPP_ENDIF) carried by
// tok — the one that decides which alternative tok's own content
// belongs to.
func branchDirective(tok *token.Token) (Directive, bool) {
	for i := len(tok.Prefixes) - 1; i >= 0; i-- {
		p := tok.Prefixes[i]
		switch p.Type {
		case token.CPP_IF, token.CPP_ELSE, token.CPP_ENDIF:
			return Parse(p.Str), true
		}
	}
	return Directive{}, false
}

// resolveChain is invoked with the cursor halted at an anchor carrying a
// fresh CPP_IF prefix. It walks the chain of CPP_ELSE alternatives
// evaluating each condition in turn and takes the first one that is true
// (or the final #else/#endif if none are), leaving the chain untouched if
// any condition along the way can't be evaluated.
func (w *Walker) resolveChain(anchor *token.Token) {
	d, ok := branchDirective(anchor)
	if !ok {
		w.Unresolved++
		w.skipPastChain(anchor)
		return
	}
	cond, ok := w.conditionOf(d)
	if !ok {
		w.Unresolved++
		w.skipPastChain(anchor)
		return
	}

	node := anchor
	for {
		taken, err := cond.Eval(w.macros)
		if err != nil {
			w.Unresolved++
			w.skipPastChain(anchor)
			return
		}
		if taken != 0 {
			w.cur.CollapseChain(anchor, node)
			return
		}
		if node.BranchNext == nil {
			// Exhausted the chain with nothing true: fall through to
			// whatever terminates it (normally an #endif).
			w.cur.CollapseChain(anchor, node)
			return
		}
		next := node.BranchNext
		nd, ok := branchDirective(next)
		if !ok {
			w.Unresolved++
			w.skipPastChain(anchor)
			return
		}
		if nd.Kind == KindElse || nd.Kind == KindEndif {
			// A bare #else, or no #else at all: nothing left to
			// evaluate, so this is where the chain lands.
			w.cur.CollapseChain(anchor, next)
			return
		}
		c, ok := w.conditionOf(nd)
		if !ok {
			w.Unresolved++
			w.skipPastChain(anchor)
			return
		}
		cond, node = c, next
	}
}

// skipPastChain leaves an unresolvable chain as found: TakeBranch(anchor,
// anchor) clears the halt at anchor without discarding anything, so every
// alternative of the conditional remains visible, and the walker simply
// continues scanning from there, halting again at each later alternative.
func (w *Walker) skipPastChain(anchor *token.Token) {
	w.cur.TakeBranch(anchor, anchor)
}

// conditionOf returns the Expr for a CPP_IF/CPP_ELSE directive's
// condition, translating #ifdef/#ifndef into defined()/!defined() first.
func (w *Walker) conditionOf(d Directive) (Expr, bool) {
	switch d.Kind {
	case KindIfdef:
		return Defined{Name: d.Name}, true
	case KindIfndef:
		return Not{X: Defined{Name: d.Name}}, true
	case KindIf, KindElif:
		e, err := ParseExpr(d.Condition)
		if err != nil {
			return nil, false
		}
		return e, true
	default:
		return nil, false
	}
}
