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

// Package filter selects converted patterns with a CEL expression.
//
// The expression sees the variables sid (int), buffer (string), raw
// (bool) and pattern (string) and must evaluate to a bool, for example:
//
//	buffer == "http_uri" && sid >= 2000000
package filter

import (
	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"
)

type Filter struct {
	expression string
	program    cel.Program
}

// New compiles an expression into a filter.
func New(expression string) (*Filter, error) {
	env, err := cel.NewEnv(
		cel.Variable("sid", cel.IntType),
		cel.Variable("buffer", cel.StringType),
		cel.Variable("raw", cel.BoolType),
		cel.Variable("pattern", cel.StringType),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create filter environment")
	}

	ast, iss := env.Compile(expression)
	if iss.Err() != nil {
		return nil, errors.Wrapf(iss.Err(), "failed to compile filter %q", expression)
	}

	checked, iss := env.Check(ast)
	if iss.Err() != nil {
		return nil, errors.Wrapf(iss.Err(), "failed to check filter %q", expression)
	}

	if !checked.OutputType().IsAssignableType(cel.BoolType) {
		return nil, errors.Errorf("filter must return a bool, not %s",
			checked.OutputType().String())
	}

	program, err := env.Program(checked)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create filter program")
	}

	return &Filter{
		expression: expression,
		program:    program,
	}, nil
}

func (f *Filter) String() string {
	return f.expression
}

// Match evaluates the filter for one pattern.
func (f *Filter) Match(sid uint64, buffer string, raw bool, pattern string) (bool, error) {
	result, _, err := f.program.Eval(map[string]interface{}{
		"sid":     int64(sid),
		"buffer":  buffer,
		"raw":     raw,
		"pattern": pattern,
	})
	if err != nil {
		return false, errors.Wrapf(err, "failed to evaluate filter %q", f.expression)
	}
	matched, ok := result.Value().(bool)
	if !ok {
		return false, errors.Errorf("filter result is not a bool: %v", result.Value())
	}
	return matched, nil
}
