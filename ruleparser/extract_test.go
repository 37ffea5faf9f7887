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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordTable(t *testing.T) {
	table := NewKeywordTable()

	kw, raw, ok := table.Lookup("http_uri")
	assert.True(t, ok)
	assert.False(t, raw)
	assert.Equal(t, 5, kw.Index)

	kw, raw, ok = table.Lookup("http_raw_header")
	assert.True(t, ok)
	assert.True(t, raw)
	assert.Equal(t, "http_header", kw.Name)

	_, _, ok = table.Lookup("nocase")
	assert.False(t, ok)

	kw, ok = table.LookupModifier('K')
	assert.True(t, ok)
	assert.Equal(t, "http_cookie", kw.Name)

	_, ok = table.LookupModifier('i')
	assert.False(t, ok)

	// Indexes are unique and ordered.
	for i, kw := range table.Keywords() {
		assert.Equal(t, i+1, kw.Index)
	}
}

func TestKeywordTableLabel(t *testing.T) {
	table := NewKeywordTable()
	assert.Equal(t, "payload", table.Label(BufferKey{}))
	assert.Equal(t, "payload_raw", table.Label(BufferKey{Raw: true}))
	assert.Equal(t, "http_uri", table.Label(BufferKey{Index: 5}))
	assert.Equal(t, "http_uri_raw", table.Label(BufferKey{Index: 5, Raw: true}))
	assert.Equal(t, "file_data", table.Label(BufferKey{Index: 9}))
}

func TestFindUnsupported(t *testing.T) {
	table := NewKeywordTable()

	keyword, ok := table.FindUnsupported(`content:"a"; byte_jump:4,0,relative; byte_test:1,>,2,0;`)
	assert.True(t, ok)
	assert.Equal(t, "byte_jump", keyword)

	_, ok = table.FindUnsupported(`content:"a"; sid:1;`)
	assert.False(t, ok)
}

func TestExtract(t *testing.T) {
	extractor := NewExtractor(NewKeywordTable())

	rule, err := extractor.Extract(RuleLine{
		Text: `alert tcp any any -> any 80 (msg:"x (y)"; content:"GET"; pcre:"/a(b)c/"; sid:10;)`,
	})
	require.Nil(t, err)
	assert.Equal(t, `msg:"x (y)"; content:"GET"; pcre:"/a(b)c/"; sid:10;`, rule.Clause)

	_, err = extractor.Extract(RuleLine{
		Text: `alert ip any any -> any any (msg:"no patterns"; sid:11;)`,
	})
	assert.Equal(t, ErrNoPatternOptions, err)

	_, err = extractor.Extract(RuleLine{Text: `# alert tcp any any -> any any (content:"a"; sid:1;)`})
	assert.Equal(t, ErrNoPatternOptions, err)

	_, err = extractor.Extract(RuleLine{Text: `content:"a"; sid:1;`})
	assert.Equal(t, ErrNoPatternOptions, err)
}

func TestExtractUnsupported(t *testing.T) {
	extractor := NewExtractor(NewKeywordTable())
	text := `alert tcp any any -> any any (content:"|00 01|"; byte_test:2,>,100,0,relative; sid:12;)`

	_, err := extractor.Extract(RuleLine{Text: text})
	require.NotNil(t, err)
	unsupported, ok := err.(*UnsupportedKeywordError)
	require.True(t, ok)
	assert.Equal(t, "byte_test", unsupported.Keyword)
	assert.Equal(t, text, unsupported.Rule)
	assert.Contains(t, err.Error(), "byte_test")
}

func TestParseSid(t *testing.T) {
	sid, err := ParseSid(Rule{Clause: `msg:"m"; content:"a"; sid:2010665; rev:7;`})
	assert.Nil(t, err)
	assert.Equal(t, uint64(2010665), sid)

	sid, err = ParseSid(Rule{Clause: `sid: 5 ; content:"a";`})
	assert.Nil(t, err)
	assert.Equal(t, uint64(5), sid)

	_, err = ParseSid(Rule{Clause: `content:"a"; gid:1;`})
	assert.IsType(t, &MissingSidError{}, err)

	// One over the max value for uint64.
	_, err = ParseSid(Rule{Clause: `content:"a"; sid:18446744073709551616;`})
	assert.IsType(t, &MissingSidError{}, err)
}
