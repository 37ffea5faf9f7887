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
	"strings"

	"github.com/jasonish/rules2pcre/ruleparser"
)

// pcrePattern converts the argument of a pcre option. The buffer letter
// has already been removed by the classifier. Returned are the pattern,
// whether it is relative to the previous match and the number of
// lookaheads the body itself contains.
func (s *Synthesizer) pcrePattern(sub ruleparser.SubClause) (string, bool, int, error) {
	arg, err := ruleparser.ParsePcre(sub.Value)
	if err != nil {
		return "", false, 0, newError(MalformedClause, sub, "%v", err)
	}

	relative := false
	anchored := false
	inline := ""
	addFlag := func(flag byte) {
		if strings.IndexByte(inline, flag) < 0 {
			inline += string(flag)
		}
	}
	for i := 0; i < len(arg.Flags); i++ {
		switch flag := arg.Flags[i]; flag {
		case 'R':
			relative = true
		case 'i', 'm', 's', 'x':
			addFlag(flag)
		case 'G':
			addFlag('U')
		case 'A':
			anchored = true
		case 'E', 'B', 'O':
			// Nothing to carry over.
		default:
			return "", false, 0, newError(MalformedClause, sub,
				"unsupported pcre modifier %q", string(flag))
		}
	}

	pattern := arg.Pattern
	if inline != "" {
		pattern = "(?" + inline + ":" + pattern + ")"
	}
	if anchored && !relative {
		pattern = "^" + pattern
	}

	pattern, err = s.negate(sub, pattern, arg.Negated)
	return pattern, relative, strings.Count(arg.Pattern, "(?="), err
}
