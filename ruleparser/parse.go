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
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Remove leading and trailing quotes from a string.
func trimQuotes(buf string) string {
	buflen := len(buf)
	if buflen < 2 {
		return buf
	}
	if buf[0:1] == "\"" && buf[buflen-1:buflen] == "\"" {
		return buf[1 : buflen-1]
	}
	return buf
}

// Remove leading white space from a string.
func trimLeadingWhiteSpace(buf string) string {
	return strings.TrimLeft(buf, " \t")
}

func splitAt(buf string, sep string) (string, string) {
	var leading string
	var trailing string

	parts := strings.SplitN(buf, sep, 2)
	if len(parts) > 1 {
		trailing = strings.TrimSpace(parts[1])
	}
	leading = strings.TrimSpace(parts[0])

	return leading, trailing
}

// Parse the next rule option from the provided rule.
//
// The option, argument and the remainder of the rule are returned.
func parseOption(rule string) (string, string, string, error) {
	var option string
	var arg string

	// Strip any leading space.
	rule = trimLeadingWhiteSpace(rule)

	hasArg := false
	optend := strings.IndexFunc(rule, func(r rune) bool {
		switch r {
		case ';':
			return true
		case ':':
			hasArg = true
			return true
		}
		return false
	})
	if optend < 0 {
		return option, arg, rule, fmt.Errorf("unterminated option")
	}

	option = strings.TrimSpace(rule[0:optend])

	rule = rule[optend+1:]

	if hasArg {
		if len(rule) == 0 {
			return option, arg, rule, fmt.Errorf("no argument")
		}
		argend := argumentEnd(rule)
		if argend < 0 {
			return option, arg, rule,
				fmt.Errorf("unterminated option argument")
		}
		arg = rule[:argend]
		rule = rule[argend+1:]
	}

	return option, trimQuotes(strings.TrimSpace(arg)), rule, nil
}

// argumentEnd returns the index of the semicolon terminating an option
// argument, or -1. Semicolons that are escaped or inside a quoted string
// do not terminate the argument.
func argumentEnd(buf string) int {
	escaped := false
	quoted := false
	for i := 0; i < len(buf); i++ {
		c := buf[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			quoted = !quoted
		case c == ';' && !quoted:
			return i
		}
	}
	return -1
}

// ParseOptions parses a run of options, such as the modifiers that follow
// a content match. A final option missing its semicolon is still returned.
func ParseOptions(buf string) []RuleOption {
	var options []RuleOption
	for {
		buf = strings.TrimSpace(buf)
		if len(buf) == 0 {
			return options
		}
		option, arg, rem, err := parseOption(buf)
		if err != nil {
			option, arg = splitAt(buf, ":")
			options = append(options, RuleOption{option, trimQuotes(arg)})
			return options
		}
		options = append(options, RuleOption{option, arg})
		buf = rem
	}
}

// RuleReader reads rule lines one by one from an underlying reader.
type RuleReader struct {
	reader   *bufio.Reader
	filename string
	lineNo   int
}

// NewRuleReader creates a new RuleReader reading from a reader. The
// filename is only used to label the returned lines.
func NewRuleReader(reader io.Reader, filename string) *RuleReader {
	ruleReader := &RuleReader{
		reader:   bufio.NewReader(reader),
		filename: filename,
	}
	return ruleReader
}

func (r *RuleReader) readLine() (string, error) {
	bytes, err := r.reader.ReadBytes('\n')
	if err != nil && len(bytes) == 0 {
		return "", err
	}
	r.lineNo++
	return strings.TrimSpace(string(bytes)), nil
}

// Next returns the next rule line read from the reader. Empty lines and
// commented out lines are skipped. Lines ending in a backslash are joined
// with the line that follows.
func (r *RuleReader) Next() (RuleLine, error) {

	ruleString := ""
	start := 0

	for {
		line, err := r.readLine()
		if err != nil {
			if err == io.EOF && ruleString != "" &&
				!strings.HasPrefix(ruleString, "#") {
				return RuleLine{r.filename, start, ruleString}, nil
			}
			return RuleLine{}, err
		}

		if len(line) == 0 && ruleString == "" {
			continue
		}

		if ruleString == "" {
			start = r.lineNo
		}

		if strings.HasSuffix(line, "\\") {
			ruleString = fmt.Sprintf("%s%s",
				ruleString, line[0:len(line)-1])
			continue
		}

		ruleString = fmt.Sprintf("%s%s", ruleString, line)

		if strings.HasPrefix(ruleString, "#") {
			ruleString = ""
			continue
		}

		return RuleLine{r.filename, start, ruleString}, nil
	}
}

// ReadLines returns all the rule lines from a reader.
func ReadLines(reader io.Reader, filename string) ([]RuleLine, error) {
	lines := make([]RuleLine, 0)

	ruleReader := NewRuleReader(reader, filename)

	for {
		line, err := ruleReader.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return lines, err
		}
		lines = append(lines, line)
	}

	return lines, nil
}
