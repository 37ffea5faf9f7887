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

package converter

import (
	"context"
	"fmt"

	"github.com/jasonish/rules2pcre/log"
	"github.com/jasonish/rules2pcre/ruleparser"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Stats counts what happened to the rules of a run.
type Stats struct {
	// Rule lines read.
	Total int

	// Rules with content or pcre options.
	Pattern int

	// Rules without unsupported keywords.
	Supported int

	// Rules for which at least one pattern was produced.
	Converted int

	// Patterns written to the sink.
	Patterns int

	// Patterns dropped by the filter.
	Filtered int

	// Rules and buffers that failed to convert.
	Failures int
}

func (s Stats) String() string {
	return fmt.Sprintf("rules=%d; with-patterns=%d; supported=%d; converted=%d; patterns=%d; filtered=%d; failures=%d",
		s.Total, s.Pattern, s.Supported, s.Converted, s.Patterns,
		s.Filtered, s.Failures)
}

type outcome struct {
	err      error
	results  []Result
	failures []Failure
	filtered int
}

func (c *Converter) convertLine(line ruleparser.RuleLine) outcome {
	rule, err := c.extractor.Extract(line)
	if err != nil {
		return outcome{err: err}
	}
	results, failures := c.ConvertRule(rule)
	results, failures, filtered := c.filter(results, failures)
	return outcome{
		results:  results,
		failures: failures,
		filtered: filtered,
	}
}

// Run converts all lines and writes the results to the sink in line
// order. With more than one job rules are converted concurrently, the
// output is the same as for a single job.
//
// Rules that fail to convert are logged and counted. An error is only
// returned if the sink fails or the context is cancelled.
func (c *Converter) Run(ctx context.Context, lines []ruleparser.RuleLine, sink Sink) (Stats, error) {
	stats := Stats{}

	outcomes := make([]outcome, len(lines))
	if err := c.convertAll(ctx, lines, outcomes); err != nil {
		return stats, err
	}

	for i, line := range lines {
		stats.Total++
		if err := c.emit(&stats, line, outcomes[i], sink); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

func (c *Converter) convertAll(ctx context.Context, lines []ruleparser.RuleLine, outcomes []outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if c.Jobs <= 1 {
		for i, line := range lines {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcomes[i] = c.convertLine(line)
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	indexes := make(chan int)

	g.Go(func() error {
		defer close(indexes)
		for i := range lines {
			select {
			case indexes <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for worker := 0; worker < c.Jobs; worker++ {
		g.Go(func() error {
			for i := range indexes {
				outcomes[i] = c.convertLine(lines[i])
			}
			return nil
		})
	}

	return g.Wait()
}

func (c *Converter) emit(stats *Stats, line ruleparser.RuleLine, o outcome, sink Sink) error {
	if o.err != nil {
		switch err := o.err.(type) {
		case *ruleparser.UnsupportedKeywordError:
			stats.Pattern++
			log.Warning("Skipping rule using unsupported keyword %s: %s",
				err.Keyword, line)
		default:
			if o.err != ruleparser.ErrNoPatternOptions {
				log.Warning("Skipping rule: %v: %s", o.err, line)
			} else {
				log.Debug("No content or pcre options: %s", line)
			}
		}
		return nil
	}

	stats.Pattern++
	stats.Supported++
	stats.Filtered += o.filtered

	for _, failure := range o.failures {
		stats.Failures++
		switch errors.Cause(failure.Err).(type) {
		case *ruleparser.MissingSidError:
			log.Warning("Skipping rule without sid: %s", line)
		default:
			log.Warning("Failed to convert rule: %v: %s", failure, line)
		}
	}

	if len(o.results) > 0 || o.filtered > 0 {
		stats.Converted++
	}

	for _, result := range o.results {
		if err := sink.Write(result); err != nil {
			return errors.Wrapf(err, "failed to write sid %d", result.Sid)
		}
		stats.Patterns++
	}

	return nil
}
