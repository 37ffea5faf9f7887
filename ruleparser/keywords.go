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
	ac "github.com/petar-dambovaliev/aho-corasick"
)

// Label of the buffer with index 0.
const PayloadLabel = "payload"

// Keywords that are not supported. Rules that use them are skipped.
var unsupportedKeywords = []string{
	"byte_test",
	"byte_jump",
	"byte_extract",
}

// BufferKeyword describes a keyword that selects the inspection buffer of
// the content match it modifies.
type BufferKeyword struct {
	// Canonical keyword, also used as the output label.
	Name string

	// Keyword selecting the unnormalized form of the same buffer, if any.
	RawAlias string

	// Buffer index, greater than zero.
	Index int

	// Snort specific pcre modifier selecting the buffer, 0 if none.
	Modifier byte

	// Snort specific pcre modifier selecting the raw buffer, 0 if none.
	RawModifier byte
}

var bufferKeywords = []BufferKeyword{
	{Name: "http_client_body", Index: 1, Modifier: 'P'},
	{Name: "http_cookie", RawAlias: "http_raw_cookie", Index: 2, Modifier: 'C', RawModifier: 'K'},
	{Name: "http_header", RawAlias: "http_raw_header", Index: 3, Modifier: 'H', RawModifier: 'D'},
	{Name: "http_method", Index: 4, Modifier: 'M'},
	{Name: "http_uri", RawAlias: "http_raw_uri", Index: 5, Modifier: 'U', RawModifier: 'I'},
	{Name: "http_stat_code", Index: 6, Modifier: 'S'},
	{Name: "http_stat_msg", Index: 7, Modifier: 'Y'},
	{Name: "pkt_data", Index: 8},
	{Name: "file_data", Index: 9},
}

type keywordRef struct {
	keyword *BufferKeyword
	raw     bool
}

// KeywordTable holds the keyword data used to extract and classify rule
// options. It is built once with NewKeywordTable and never modified, so it
// is safe to share between goroutines.
type KeywordTable struct {
	keywords    []BufferKeyword
	byName      map[string]keywordRef
	byModifier  map[byte]*BufferKeyword
	byIndex     map[int]*BufferKeyword
	unsupported []string
	matcher     ac.AhoCorasick
}

// NewKeywordTable builds the keyword table.
func NewKeywordTable() *KeywordTable {
	t := &KeywordTable{
		keywords:    make([]BufferKeyword, len(bufferKeywords)),
		byName:      make(map[string]keywordRef),
		byModifier:  make(map[byte]*BufferKeyword),
		byIndex:     make(map[int]*BufferKeyword),
		unsupported: append([]string(nil), unsupportedKeywords...),
	}
	copy(t.keywords, bufferKeywords)

	for i := range t.keywords {
		kw := &t.keywords[i]
		t.byIndex[kw.Index] = kw
		t.byName[kw.Name] = keywordRef{kw, false}
		if kw.RawAlias != "" {
			t.byName[kw.RawAlias] = keywordRef{kw, true}
		}
		if kw.Modifier != 0 {
			t.byModifier[kw.Modifier] = kw
		}
		if kw.RawModifier != 0 {
			t.byModifier[kw.RawModifier] = kw
		}
	}

	builder := ac.NewAhoCorasickBuilder(ac.Opts{
		MatchKind: ac.LeftMostLongestMatch,
	})
	t.matcher = builder.Build(t.unsupported)

	return t
}

// Keywords returns the buffer selector keywords ordered by index.
func (t *KeywordTable) Keywords() []BufferKeyword {
	return append([]BufferKeyword(nil), t.keywords...)
}

// Lookup returns the keyword for a canonical name or raw alias, and whether
// the name is a raw alias.
func (t *KeywordTable) Lookup(name string) (BufferKeyword, bool, bool) {
	ref, ok := t.byName[name]
	if !ok {
		return BufferKeyword{}, false, false
	}
	return *ref.keyword, ref.raw, true
}

// LookupModifier returns the keyword selected by a Snort pcre modifier.
func (t *KeywordTable) LookupModifier(modifier byte) (BufferKeyword, bool) {
	kw, ok := t.byModifier[modifier]
	if !ok {
		return BufferKeyword{}, false
	}
	return *kw, true
}

// IsBufferModifier reports whether a pcre modifier selects a buffer.
func (t *KeywordTable) IsBufferModifier(modifier byte) bool {
	_, ok := t.byModifier[modifier]
	return ok
}

// FindUnsupported returns the first unsupported keyword found in buf.
func (t *KeywordTable) FindUnsupported(buf string) (string, bool) {
	matches := t.matcher.FindAll(buf)
	if len(matches) == 0 {
		return "", false
	}
	first := matches[0]
	for _, m := range matches[1:] {
		if m.Start() < first.Start() {
			first = m
		}
	}
	return t.unsupported[first.Pattern()], true
}

// Label returns the output label of a buffer key: "payload" for index 0,
// otherwise the keyword name, with "_raw" appended for raw buffers.
func (t *KeywordTable) Label(key BufferKey) string {
	label := PayloadLabel
	if kw, ok := t.byIndex[key.Index]; ok {
		label = kw.Name
	}
	if key.Raw {
		label += "_raw"
	}
	return label
}
