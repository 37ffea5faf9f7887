// The MIT License (MIT)
// Copyright (c) 2016 Jason Ish
//
// Permission is hereby granted, free of charge, to any person
// obtaining a copy of this software and associated documentation
// files (the "Software"), to deal in the Software without
// restriction, including without limitation the rights to use, copy,
// modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be
// included in all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
// NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS
// BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN
// ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package ruleparser

import (
	"fmt"
	"strings"
)

// PcreArgument is the parsed argument of a pcre option, for example
// !"/^GET\s/Ui".
type PcreArgument struct {
	Negated bool
	Pattern string
	Flags   string
}

// ParsePcre parses the argument of a pcre option.
func ParsePcre(value string) (PcreArgument, error) {
	arg := PcreArgument{}

	buf := strings.TrimSpace(value)
	if strings.HasPrefix(buf, "!") {
		arg.Negated = true
		buf = strings.TrimSpace(buf[1:])
	}

	if len(buf) < 2 || buf[0] != '"' || buf[len(buf)-1] != '"' {
		return arg, fmt.Errorf("pcre argument is not quoted: %s", value)
	}
	buf = buf[1 : len(buf)-1]

	last := strings.LastIndex(buf, "/")
	if !strings.HasPrefix(buf, "/") || last < 1 {
		return arg, fmt.Errorf("pcre argument is not delimited by /: %s", value)
	}

	arg.Pattern = buf[1:last]
	arg.Flags = buf[last+1:]
	for _, r := range arg.Flags {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return arg, fmt.Errorf("invalid pcre modifiers \"%s\"", arg.Flags)
		}
	}

	return arg, nil
}

func (a PcreArgument) String() string {
	negation := ""
	if a.Negated {
		negation = "!"
	}
	return fmt.Sprintf("%s\"/%s/%s\"", negation, a.Pattern, a.Flags)
}

// HasRawbytes reports whether the rule uses the rawbytes modifier, which
// moves all its content matches to the raw buffers.
func HasRawbytes(rule Rule) bool {
	return strings.Contains(rule.Clause, "rawbytes;")
}

// Classify returns the buffer a sub-clause applies to, along with the
// sub-clause to synthesize. For pcre sub-clauses the buffer selecting
// modifier is removed from the returned sub-clause.
func (t *KeywordTable) Classify(sub SubClause, rawbytes bool) (BufferKey, SubClause) {
	if sub.Kind == KindPcre {
		return t.classifyPcre(sub)
	}

	key := BufferKey{}
	for _, option := range ParseOptions(sub.Modifiers) {
		if kw, raw, ok := t.Lookup(option.Option); ok {
			key.Index = kw.Index
			key.Raw = raw
			break
		}
	}
	if rawbytes {
		key.Raw = true
	}
	return key, sub
}

// Snort has no raw variant of pcre matching, so the key is never raw. The
// raw modifiers (K, D, I) select the base buffer.
func (t *KeywordTable) classifyPcre(sub SubClause) (BufferKey, SubClause) {
	arg, err := ParsePcre(sub.Value)
	if err != nil {
		// Left for the synthesizer to report.
		return BufferKey{}, sub
	}
	for i := 0; i < len(arg.Flags); i++ {
		kw, ok := t.LookupModifier(arg.Flags[i])
		if !ok {
			continue
		}
		arg.Flags = arg.Flags[:i] + arg.Flags[i+1:]
		sub.Value = arg.String()
		return BufferKey{Index: kw.Index}, sub
	}
	return BufferKey{}, sub
}
