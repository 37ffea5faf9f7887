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

// Package converter drives the conversion of rules into one pattern per
// inspected buffer.
package converter

import (
	"fmt"
	"sort"

	"github.com/jasonish/rules2pcre/filter"
	"github.com/jasonish/rules2pcre/pcre"
	"github.com/jasonish/rules2pcre/ruleparser"
	"github.com/pkg/errors"
)

// Result is the pattern for one buffer of one rule.
type Result struct {
	Sid     uint64
	Key     ruleparser.BufferKey
	Buffer  string
	Pattern string

	// The rule line the pattern was converted from.
	Line ruleparser.RuleLine
}

func (r Result) String() string {
	return fmt.Sprintf("%d: %s", r.Sid, r.Pattern)
}

// Failure describes a rule, or one buffer of a rule, that could not be
// converted. Buffer is empty when the whole rule failed.
type Failure struct {
	Sid    uint64
	Buffer string
	Rule   ruleparser.RuleLine
	Err    error
}

func (f Failure) Error() string {
	if f.Buffer == "" {
		return fmt.Sprintf("sid %d: %v", f.Sid, f.Err)
	}
	return fmt.Sprintf("sid %d: %s: %v", f.Sid, f.Buffer, f.Err)
}

// Sink receives converted patterns in rule order.
type Sink interface {
	Write(result Result) error
}

type Converter struct {
	table       *ruleparser.KeywordTable
	extractor   *ruleparser.Extractor
	synthesizer *pcre.Synthesizer

	// Optional filter, results it does not match are dropped.
	Filter *filter.Filter

	// Number of rules converted concurrently by Run.
	Jobs int
}

func New(table *ruleparser.KeywordTable, synthesizer *pcre.Synthesizer) *Converter {
	return &Converter{
		table:       table,
		extractor:   ruleparser.NewExtractor(table),
		synthesizer: synthesizer,
		Jobs:        1,
	}
}

type bucket struct {
	key  ruleparser.BufferKey
	subs []ruleparser.SubClause
}

// ConvertRule converts a single rule. Results are returned in buffer
// order. A failure in one buffer does not stop the others.
func (c *Converter) ConvertRule(rule ruleparser.Rule) ([]Result, []Failure) {
	sid, err := ruleparser.ParseSid(rule)
	if err != nil {
		return nil, []Failure{{Rule: rule.Line, Err: err}}
	}

	subs := ruleparser.Split(rule.Clause)
	if len(subs) == 0 {
		return nil, []Failure{{
			Sid:  sid,
			Rule: rule.Line,
			Err: &pcre.SynthesisError{
				Kind: pcre.NoClauses,
				Msg:  "no content or pcre options found",
			},
		}}
	}

	buckets := c.bucket(rule, subs)

	var results []Result
	var failures []Failure

	for _, b := range buckets {
		label := c.table.Label(b.key)
		pattern, err := c.synthesizer.Synthesize(b.subs)
		if err != nil {
			failures = append(failures, Failure{
				Sid:    sid,
				Buffer: label,
				Rule:   rule.Line,
				Err:    errors.Wrapf(err, "failed to convert %s", label),
			})
			continue
		}
		results = append(results, Result{
			Sid:     sid,
			Key:     b.key,
			Buffer:  label,
			Pattern: pattern,
			Line:    rule.Line,
		})
	}

	return results, failures
}

func (c *Converter) bucket(rule ruleparser.Rule, subs []ruleparser.SubClause) []bucket {
	rawbytes := ruleparser.HasRawbytes(rule)
	index := map[ruleparser.BufferKey]int{}
	buckets := []bucket{}
	for _, sub := range subs {
		key, classified := c.table.Classify(sub, rawbytes)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, bucket{key: key})
		}
		buckets[i].subs = append(buckets[i].subs, classified)
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].key.Less(buckets[j].key)
	})
	return buckets
}

// filter applies the optional filter. Results the filter fails on are
// turned into failures.
func (c *Converter) filter(results []Result, failures []Failure) ([]Result, []Failure, int) {
	if c.Filter == nil {
		return results, failures, 0
	}
	kept := results[:0]
	dropped := 0
	for _, result := range results {
		matched, err := c.Filter.Match(result.Sid, result.Buffer,
			result.Key.Raw, result.Pattern)
		if err != nil {
			failures = append(failures, Failure{
				Sid:    result.Sid,
				Buffer: result.Buffer,
				Rule:   result.Line,
				Err:    err,
			})
			continue
		}
		if !matched {
			dropped++
			continue
		}
		kept = append(kept, result)
	}
	return kept, failures, dropped
}
