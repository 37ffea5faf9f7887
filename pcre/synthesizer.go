/* Copyright (c) 2018 Jason Ish
 * All rights reserved.
 *
 * Redistribution and use in source and binary forms, with or without
 * modification, are permitted provided that the following conditions
 * are met:
 *
 * 1. Redistributions of source code must retain the above copyright
 *    notice, this list of conditions and the following disclaimer.
 * 2. Redistributions in binary form must reproduce the above copyright
 *    notice, this list of conditions and the following disclaimer in the
 *    documentation and/or other materials provided with the distribution.
 *
 * THIS SOFTWARE IS PROVIDED ``AS IS'' AND ANY EXPRESS OR IMPLIED
 * WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
 * DISCLAIMED. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY DIRECT,
 * INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES
 * (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
 * SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION)
 * HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT,
 * STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING
 * IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
 * POSSIBILITY OF SUCH DAMAGE.
 */

// Package pcre builds a single regular expression out of the content and
// pcre options that inspect one buffer of a rule.
package pcre

import (
	"fmt"
	"strings"

	"github.com/jasonish/rules2pcre/ruleparser"
)

// Synthesizer converts lists of sub-clauses into patterns. The zero value
// is not useful; use NewSynthesizer.
type Synthesizer struct {
	// Characters escaped when copying content into a pattern.
	Escape EscapeSet

	// Maximum number of lookaheads in a pattern. Negative is unlimited.
	MaxLookaheads int

	// When false a negated match fails the conversion instead of being
	// wrapped in a negative lookahead.
	Negations bool
}

func NewSynthesizer() *Synthesizer {
	return &Synthesizer{
		Escape:        DefaultEscapeSet,
		MaxLookaheads: -1,
		Negations:     true,
	}
}

func (s *Synthesizer) negate(sub ruleparser.SubClause, pattern string, negated bool) (string, error) {
	if !negated {
		return pattern, nil
	}
	if !s.Negations {
		return "", newError(NegationDisabled, sub,
			"negated matches are disabled")
	}
	return "(?!" + pattern + ")", nil
}

// Synthesize builds the pattern for an ordered list of sub-clauses all
// inspecting the same buffer.
//
// Sub-clauses positioned relative to the previous match are appended to
// the pattern before them. Each independent pattern except the last
// becomes a lookahead so that they may match in any order.
func (s *Synthesizer) Synthesize(subs []ruleparser.SubClause) (string, error) {
	if len(subs) == 0 {
		return "", &SynthesisError{Kind: NoClauses, Msg: "nothing to convert"}
	}

	patterns := []string{}
	lookaheads := 0

	for _, sub := range subs {
		var pattern string
		var relative bool
		var err error

		switch sub.Kind {
		case ruleparser.KindContent:
			pattern, relative, err = s.contentPattern(sub)
		case ruleparser.KindPcre:
			var n int
			pattern, relative, n, err = s.pcrePattern(sub)
			lookaheads += n
		default:
			err = newError(MalformedClause, sub, "unknown clause kind")
		}
		if err != nil {
			return "", err
		}

		if relative && len(patterns) > 0 {
			patterns[len(patterns)-1] += pattern
		} else {
			patterns = append(patterns, pattern)
		}
	}

	lookaheads += len(patterns) - 1
	if s.MaxLookaheads >= 0 && lookaheads > s.MaxLookaheads {
		return "", &SynthesisError{
			Kind: LookaheadLimit,
			Msg: fmt.Sprintf("%d lookaheads required, at most %d allowed",
				lookaheads, s.MaxLookaheads),
		}
	}

	return assemble(patterns), nil
}

func assemble(patterns []string) string {
	var b strings.Builder
	last := len(patterns) - 1
	for _, pattern := range patterns[:last] {
		b.WriteString("(?=.*")
		b.WriteString(pattern)
		b.WriteString(")")
	}
	if last > 0 {
		b.WriteString(".*")
	}
	b.WriteString(patterns[last])
	return b.String()
}
