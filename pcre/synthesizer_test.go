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
	"testing"

	"github.com/jasonish/rules2pcre/ruleparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func synthesize(t *testing.T, s *Synthesizer, clause string) (string, error) {
	subs := ruleparser.Split(clause)
	require.NotEmpty(t, subs, clause)
	return s.Synthesize(subs)
}

func kindOf(err error) ErrorKind {
	if serr, ok := err.(*SynthesisError); ok {
		return serr.Kind
	}
	return 0
}

func TestSynthesizeContent(t *testing.T) {
	tests := []struct {
		clause   string
		expected string
	}{
		{`content:"ABC";`, "ABC"},
		{`content:"AB"; nocase;`, "(?i:AB)"},
		{`content:"AB"; offset:2; depth:5;`, "^.{2,5}AB"},
		{`content:"AB"; depth:2;`, "^AB"},
		{`content:"AB"; depth:4;`, "^.{0,2}AB"},
		{`content:"A"; offset:3;`, "^.{3}.*A"},
		{`content:"AB"; offset:3; depth:2;`, "^.{3}AB"},
		{`content:"A|42 43|D";`, `A\x42\x43D`},
		{`content:"|4243|";`, `\x42\x43`},
		{`content:!"ABC";`, "(?!ABC)"},
		{`content:!"AB"; nocase; offset:1;`, "(?!^.{1}.*(?i:AB))"},
		{`content:"a.b/c";`, `a\.b\/c`},
		{`content:"a\"b\;c";`, `a"b;c`},
		{`content:"a\\b";`, `a\\b`},
		{`content:"a\|b";`, `a\|b`},
		{`content:"(x)+";`, `\(x\)\+`},
	}

	s := NewSynthesizer()
	for _, test := range tests {
		pattern, err := synthesize(t, s, test.clause)
		require.NoError(t, err, test.clause)
		assert.Equal(t, test.expected, pattern, test.clause)
	}
}

func TestSynthesizeRelative(t *testing.T) {
	tests := []struct {
		clause   string
		expected string
	}{
		{`content:"A"; content:"B"; distance:1; within:3;`, "A.{1,3}B"},
		{`content:"A"; content:"B"; distance:0;`, "A.*B"},
		{`content:"A"; content:"B"; within:1;`, "AB"},
		{`content:"A"; content:"B"; distance:2;`, "A.{2}.*B"},
		{`content:"B"; distance:2;`, ".{2}.*B"},
		{`content:"A"; content:"B";`, "(?=.*A).*B"},
		{`content:"A"; content:"B"; content:"C";`, "(?=.*A)(?=.*B).*C"},
		{`content:"A"; content:"B"; content:"C"; distance:0;`, "(?=.*A).*B.*C"},
		{`content:"A"; pcre:"/b+/R";`, "Ab+"},
		{`content:"A"; pcre:"/b+/";`, "(?=.*A).*b+"},
	}

	s := NewSynthesizer()
	for _, test := range tests {
		pattern, err := synthesize(t, s, test.clause)
		require.NoError(t, err, test.clause)
		assert.Equal(t, test.expected, pattern, test.clause)
	}
}

func TestSynthesizePcre(t *testing.T) {
	tests := []struct {
		clause   string
		expected string
	}{
		{`pcre:"/abc/";`, "abc"},
		{`pcre:"/abc/smi";`, "(?smi:abc)"},
		{`pcre:"/abc/iG";`, "(?iU:abc)"},
		{`pcre:"/abc/A";`, "^abc"},
		{`pcre:"/abc/EBO";`, "abc"},
		{`pcre:!"/abc/";`, "(?!abc)"},
		{`content:"x"; pcre:"/abc/AR";`, "xabc"},
	}

	s := NewSynthesizer()
	for _, test := range tests {
		pattern, err := synthesize(t, s, test.clause)
		require.NoError(t, err, test.clause)
		assert.Equal(t, test.expected, pattern, test.clause)
	}
}

func TestSynthesizeErrors(t *testing.T) {
	tests := []struct {
		clause string
		kind   ErrorKind
	}{
		{`content:"ABC"; depth:1;`, InvalidPosition},
		{`content:"B"; within:0;`, InvalidPosition},
		{`content:"A"; offset:-1;`, InvalidPosition},
		{`content:"A"; offset:x;`, MalformedClause},
		{`content:ABC;`, MalformedClause},
		{`content:"";`, MalformedClause},
		{`content:"|4|";`, MalformedClause},
		{`content:"|zz|";`, MalformedClause},
		{`content:"|41";`, MalformedClause},
		{`pcre:"abc";`, MalformedClause},
		{`pcre:"/abc/q";`, MalformedClause},
	}

	s := NewSynthesizer()
	for _, test := range tests {
		_, err := synthesize(t, s, test.clause)
		require.Error(t, err, test.clause)
		assert.Equal(t, test.kind, kindOf(err), test.clause)
	}
}

func TestSynthesizeNoClauses(t *testing.T) {
	_, err := NewSynthesizer().Synthesize(nil)
	require.Error(t, err)
	assert.Equal(t, NoClauses, kindOf(err))
}

func TestLookaheadLimit(t *testing.T) {
	s := NewSynthesizer()
	s.MaxLookaheads = 1

	_, err := synthesize(t, s, `content:"A"; content:"B";`)
	assert.NoError(t, err)

	_, err = synthesize(t, s, `content:"A"; content:"B"; content:"C";`)
	require.Error(t, err)
	assert.Equal(t, LookaheadLimit, kindOf(err))

	// Lookaheads inside a pcre body count as well.
	_, err = synthesize(t, s, `content:"A"; pcre:"/(?=b)b/";`)
	require.Error(t, err)
	assert.Equal(t, LookaheadLimit, kindOf(err))

	s.MaxLookaheads = 0
	_, err = synthesize(t, s, `content:"A"; content:"B"; distance:0;`)
	assert.NoError(t, err)
}

func TestNegationsDisabled(t *testing.T) {
	s := NewSynthesizer()
	s.Negations = false

	pattern, err := synthesize(t, s, `content:"A";`)
	require.NoError(t, err)
	assert.Equal(t, "A", pattern)

	_, err = synthesize(t, s, `content:!"A";`)
	require.Error(t, err)
	assert.Equal(t, NegationDisabled, kindOf(err))

	_, err = synthesize(t, s, `pcre:!"/a/";`)
	require.Error(t, err)
	assert.Equal(t, NegationDisabled, kindOf(err))
}

func TestNegationOnlyAddsWrapper(t *testing.T) {
	s := NewSynthesizer()
	for _, modifiers := range []string{"", " nocase;", " offset:2; depth:8;"} {
		plain, err := synthesize(t, s, `content:"XY";`+modifiers)
		require.NoError(t, err)
		negated, err := synthesize(t, s, `content:!"XY";`+modifiers)
		require.NoError(t, err)
		assert.Equal(t, "(?!"+plain+")", negated)
	}
}

func TestLegacyEscapeSet(t *testing.T) {
	s := NewSynthesizer()
	s.Escape = LegacyEscapeSet
	pattern, err := synthesize(t, s, `content:"/a.b|2f|";`)
	require.NoError(t, err)
	assert.Equal(t, `/a\.b\x2f`, pattern)
}

func TestSynthesizeIsDeterministic(t *testing.T) {
	s := NewSynthesizer()
	clause := `content:"GET"; depth:3; content:"/x"; distance:1; pcre:"/y+/i";`
	first, err := synthesize(t, s, clause)
	require.NoError(t, err)
	second, err := synthesize(t, s, clause)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, `(?=.*^GET.{1}.*\/x).*(?i:y+)`, first)
}

func TestSynthesisErrorMessage(t *testing.T) {
	_, err := synthesize(t, NewSynthesizer(), `content:"ABC"; depth:1;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid position")
	assert.Contains(t, err.Error(), `content:"ABC"; depth:1;`)
	assert.Equal(t, "ErrorKind(99)", ErrorKind(99).String())
}
