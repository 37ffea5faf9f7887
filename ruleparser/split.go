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
	"strings"
)

var clauseTokens = []struct {
	token string
	kind  Kind
}{
	{"content:", KindContent},
	{"pcre:", KindPcre},
}

// ClauseScanner walks an option clause and returns its content and pcre
// sub-clauses in order. Its use follows bufio.Scanner:
//
//	scanner := NewClauseScanner(rule.Clause)
//	for scanner.Scan() {
//		sub := scanner.SubClause()
//	}
type ClauseScanner struct {
	clause  string
	pos     int
	current SubClause
}

func NewClauseScanner(clause string) *ClauseScanner {
	s := &ClauseScanner{
		clause: clause,
	}
	s.pos = s.nextToken(0)
	return s
}

// Scan advances to the next sub-clause, returning false at the end of the
// clause.
func (s *ClauseScanner) Scan() bool {
	if s.pos < 0 {
		return false
	}

	kind, tokenLen := s.tokenAt(s.pos)
	next := s.nextToken(s.pos + tokenLen)
	end := next
	if end < 0 {
		end = len(s.clause)
	}

	rest := s.clause[s.pos+tokenLen : end]
	var value, modifiers string
	if argend := argumentEnd(rest); argend < 0 {
		value = strings.TrimSpace(rest)
	} else {
		value = strings.TrimSpace(rest[:argend])
		modifiers = strings.TrimSpace(rest[argend+1:])
	}

	s.current = SubClause{
		Kind:      kind,
		Text:      strings.TrimSpace(s.clause[s.pos:end]),
		Value:     value,
		Modifiers: modifiers,
	}
	s.pos = next

	return true
}

// SubClause returns the sub-clause found by the last call to Scan.
func (s *ClauseScanner) SubClause() SubClause {
	return s.current
}

func (s *ClauseScanner) tokenAt(pos int) (Kind, int) {
	for _, t := range clauseTokens {
		if strings.HasPrefix(s.clause[pos:], t.token) {
			return t.kind, len(t.token)
		}
	}
	return KindContent, 0
}

// Find the next content or pcre keyword at or after offset. Keywords inside
// quoted arguments, or that are the tail of a longer keyword such as
// uricontent, are skipped.
func (s *ClauseScanner) nextToken(offset int) int {
	escaped := false
	quoted := false
	for i := offset; i < len(s.clause); i++ {
		c := s.clause[i]
		switch {
		case escaped:
			escaped = false
			continue
		case c == '\\':
			escaped = true
			continue
		case c == '"':
			quoted = !quoted
			continue
		case quoted:
			continue
		}
		if i > 0 {
			prev := s.clause[i-1]
			if prev != ' ' && prev != '\t' && prev != ';' {
				continue
			}
		}
		if _, n := s.tokenAt(i); n > 0 {
			return i
		}
	}
	return -1
}

// Split returns all the sub-clauses of an option clause.
func Split(clause string) []SubClause {
	subClauses := make([]SubClause, 0)
	scanner := NewClauseScanner(clause)
	for scanner.Scan() {
		subClauses = append(subClauses, scanner.SubClause())
	}
	return subClauses
}
