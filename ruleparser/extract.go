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
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoPatternOptions is returned for rules without content or pcre options.
var ErrNoPatternOptions = errors.New("no pattern matching options")

var sidPattern = regexp.MustCompile(`(?:^|[\s;])sid\s*:\s*(\d+)\s*;`)

// UnsupportedKeywordError is returned for rules using a keyword that
// cannot be expressed as a regular expression.
type UnsupportedKeywordError struct {
	Keyword string
	Rule    string
}

func (e *UnsupportedKeywordError) Error() string {
	return fmt.Sprintf("keyword \"%s\" is not supported", e.Keyword)
}

// MissingSidError is returned for rules without a usable sid option.
type MissingSidError struct {
	Rule string
}

func (e *MissingSidError) Error() string {
	return "rule has no sid"
}

// Extractor pulls the option clause out of rule lines.
type Extractor struct {
	table *KeywordTable
}

func NewExtractor(table *KeywordTable) *Extractor {
	return &Extractor{
		table: table,
	}
}

// Extract returns the rule for a line if the line has an option list with
// content or pcre options. ErrNoPatternOptions is returned for lines
// without one, and *UnsupportedKeywordError for rules that can not be
// converted.
func (e *Extractor) Extract(line RuleLine) (Rule, error) {
	text := strings.TrimSpace(line.Text)
	if text == "" || strings.HasPrefix(text, "#") {
		return Rule{}, ErrNoPatternOptions
	}

	start := strings.Index(text, "(")
	end := strings.LastIndex(text, ")")
	if start < 0 || end < start {
		return Rule{}, ErrNoPatternOptions
	}

	clause := text[start+1 : end]
	if !strings.Contains(clause, "content:") &&
		!strings.Contains(clause, "pcre:") {
		return Rule{}, ErrNoPatternOptions
	}

	if keyword, ok := e.table.FindUnsupported(clause); ok {
		return Rule{}, &UnsupportedKeywordError{
			Keyword: keyword,
			Rule:    line.Text,
		}
	}

	return Rule{
		Line:   line,
		Clause: clause,
	}, nil
}

// ParseSid returns the sid of a rule.
func ParseSid(rule Rule) (uint64, error) {
	m := sidPattern.FindStringSubmatch(rule.Clause)
	if m == nil {
		return 0, &MissingSidError{rule.Line.Text}
	}
	sid, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, &MissingSidError{rule.Line.Text}
	}
	return sid, nil
}
