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
	"strconv"
	"strings"

	"github.com/jasonish/rules2pcre/ruleparser"
	"github.com/pkg/errors"
)

// position holds the placement modifiers of a content match. A depth of
// -1 means no depth (or within) was given.
type position struct {
	offset   int
	depth    int
	relative bool
}

// decodeContent decodes the quoted argument of a content option into
// regular expression text. The number of bytes the content matches is
// returned along with whether the content was negated.
func (s *Synthesizer) decodeContent(sub ruleparser.SubClause) (string, int, bool, error) {
	buf := strings.TrimSpace(sub.Value)
	negated := false
	if strings.HasPrefix(buf, "!") {
		negated = true
		buf = strings.TrimSpace(buf[1:])
	}
	if len(buf) < 2 || buf[0] != '"' || buf[len(buf)-1] != '"' {
		return "", 0, false, newError(MalformedClause, sub,
			"content argument is not quoted")
	}
	body := buf[1 : len(buf)-1]
	if len(body) == 0 {
		return "", 0, false, newError(MalformedClause, sub, "empty content")
	}

	var b strings.Builder
	length := 0
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch c {
		case '|':
			end := strings.IndexByte(body[i+1:], '|')
			if end < 0 {
				return "", 0, false, newError(MalformedClause, sub,
					"unterminated hex block")
			}
			n, err := writeHex(&b, body[i+1:i+1+end])
			if err != nil {
				return "", 0, false, newError(MalformedClause, sub,
					"%v", err)
			}
			length += n
			i += end + 1
		case '\\':
			if i+1 >= len(body) {
				return "", 0, false, newError(MalformedClause, sub,
					"dangling escape")
			}
			i++
			s.Escape.writeByte(&b, body[i])
			length++
		case '"':
			return "", 0, false, newError(MalformedClause, sub,
				"unescaped quote in content")
		default:
			s.Escape.writeByte(&b, c)
			length++
		}
	}

	return b.String(), length, negated, nil
}

// writeHex writes the bytes of a |..| block as \xHH escapes. Spaces
// between the digit pairs are optional.
func writeHex(b *strings.Builder, block string) (int, error) {
	digits := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, block)
	if len(digits) == 0 || len(digits)%2 != 0 {
		return 0, errors.Errorf("bad hex block |%s|", block)
	}
	for i := 0; i < len(digits); i += 2 {
		pair := digits[i : i+2]
		if _, err := strconv.ParseUint(pair, 16, 8); err != nil {
			return 0, errors.Errorf("bad hex digits %q", pair)
		}
		b.WriteString(`\x`)
		b.WriteString(pair)
	}
	return len(digits) / 2, nil
}

// parsePosition reads the nocase and placement modifiers of a content
// match. Other options are ignored.
func parsePosition(sub ruleparser.SubClause) (position, bool, error) {
	pos := position{depth: -1}
	nocase := false
	for _, option := range ruleparser.ParseOptions(sub.Modifiers) {
		switch option.Option {
		case "nocase":
			nocase = true
		case "offset", "depth", "distance", "within":
			value, err := strconv.Atoi(option.Args)
			if err != nil {
				return pos, false, newError(MalformedClause, sub,
					"invalid %s value %q", option.Option, option.Args)
			}
			if value < 0 {
				return pos, false, newError(InvalidPosition, sub,
					"negative %s values are not supported", option.Option)
			}
			switch option.Option {
			case "offset":
				pos.offset = value
			case "distance":
				pos.offset = value
				pos.relative = true
			case "depth":
				pos.depth = value
			case "within":
				pos.depth = value
				pos.relative = true
			}
		}
	}
	return pos, nocase, nil
}

func (s *Synthesizer) contentPattern(sub ruleparser.SubClause) (string, bool, error) {
	content, length, negated, err := s.decodeContent(sub)
	if err != nil {
		return "", false, err
	}
	pos, nocase, err := parsePosition(sub)
	if err != nil {
		return "", false, err
	}

	var b strings.Builder
	if pos.offset > 0 || pos.depth >= 0 {
		if pos.depth >= 0 && pos.depth < length {
			return "", false, newError(InvalidPosition, sub,
				"depth %d is shorter than the content length %d",
				pos.depth, length)
		}
		if !pos.relative {
			b.WriteString("^")
		}
		end := 0
		if pos.depth >= 0 {
			end = pos.offset + pos.depth - length
		}
		if pos.offset > 0 || end > pos.offset {
			b.WriteString(".{")
			b.WriteString(strconv.Itoa(pos.offset))
			if end > pos.offset {
				b.WriteString(",")
				b.WriteString(strconv.Itoa(end))
			}
			b.WriteString("}")
		}
		if pos.depth < 0 {
			b.WriteString(".*")
		}
	} else if pos.relative {
		b.WriteString(".*")
	}

	if nocase {
		b.WriteString("(?i:")
		b.WriteString(content)
		b.WriteString(")")
	} else {
		b.WriteString(content)
	}

	pattern, err := s.negate(sub, b.String(), negated)
	return pattern, pos.relative, err
}
