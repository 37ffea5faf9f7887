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

import "fmt"

// RuleOption is a struct representing an IDS rule option.
type RuleOption struct {
	Option string `json:"option"`
	Args   string `json:"args"`
}

// RuleLine is one logical line of a rules file. Continued lines have
// already been joined.
type RuleLine struct {
	File   string
	LineNo int
	Text   string
}

func (l RuleLine) String() string {
	if l.File == "" {
		return l.Text
	}
	return fmt.Sprintf("%s:%d: %s", l.File, l.LineNo, l.Text)
}

// Rule is a rule line that carries pattern matching options.
type Rule struct {
	Line RuleLine

	// The text between the outer parentheses of the rule.
	Clause string
}

// Kind is the type of a pattern matching sub-clause.
type Kind int

const (
	KindContent Kind = iota
	KindPcre
)

func (k Kind) String() string {
	switch k {
	case KindContent:
		return "content"
	case KindPcre:
		return "pcre"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// SubClause is a single content or pcre option together with the modifier
// options that follow it.
type SubClause struct {
	Kind Kind

	// The complete fragment, starting at the keyword.
	Text string

	// The option argument, everything after "content:" or "pcre:" up to
	// the terminating semicolon.
	Value string

	// Trailing modifier text up to the next sub-clause.
	Modifiers string
}

// BufferKey identifies the inspection buffer a sub-clause applies to.
// Index 0 is the packet payload.
type BufferKey struct {
	Index int
	Raw   bool
}

// Less orders keys by index, with the normalized buffer before the raw one.
func (k BufferKey) Less(other BufferKey) bool {
	if k.Index != other.Index {
		return k.Index < other.Index
	}
	return !k.Raw && other.Raw
}
