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

package pcre

import (
	"fmt"

	"github.com/jasonish/rules2pcre/ruleparser"
)

// ErrorKind classifies synthesis failures.
type ErrorKind int

const (
	// The content or pcre argument does not have the expected form.
	MalformedClause ErrorKind = iota + 1

	// A depth or within shorter than the content, or a negative value.
	InvalidPosition

	// The pattern needs more lookaheads than allowed.
	LookaheadLimit

	// A negated match was found with negation handling disabled.
	NegationDisabled

	// No content or pcre options to synthesize.
	NoClauses
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedClause:
		return "malformed clause"
	case InvalidPosition:
		return "invalid position"
	case LookaheadLimit:
		return "lookahead limit"
	case NegationDisabled:
		return "negation disabled"
	case NoClauses:
		return "no clauses"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// SynthesisError is returned when a list of sub-clauses can not be
// converted to a pattern.
type SynthesisError struct {
	Kind ErrorKind

	// Text of the offending sub-clause, if any.
	Clause string

	Msg string
}

func (e *SynthesisError) Error() string {
	if e.Clause == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Msg, e.Clause)
}

func newError(kind ErrorKind, sub ruleparser.SubClause, format string, v ...interface{}) *SynthesisError {
	return &SynthesisError{
		Kind:   kind,
		Clause: sub.Text,
		Msg:    fmt.Sprintf(format, v...),
	}
}
