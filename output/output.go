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

// Package output writes converted patterns to their destinations.
package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/jasonish/rules2pcre/converter"
)

// Sink is a converter.Sink that must be closed once the run is done.
type Sink interface {
	converter.Sink
	Close() error
}

func formatResult(w io.Writer, result converter.Result) error {
	_, err := fmt.Fprintf(w, "%d: %s\n", result.Sid, result.Pattern)
	return err
}

// WriterSink writes all patterns to a single writer, such as stdout.
type WriterSink struct {
	writer *bufio.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{
		writer: bufio.NewWriter(w),
	}
}

func (s *WriterSink) Write(result converter.Result) error {
	return formatResult(s.writer, result)
}

// Close flushes buffered output. The underlying writer is left open.
func (s *WriterSink) Close() error {
	return s.writer.Flush()
}

// MultiSink writes each pattern to all of its sinks.
type MultiSink struct {
	sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{
		sinks: sinks,
	}
}

func (m *MultiSink) Write(result converter.Result) error {
	for _, sink := range m.sinks {
		if err := sink.Write(result); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all sinks, returning the first error.
func (m *MultiSink) Close() error {
	var first error
	for _, sink := range m.sinks {
		if err := sink.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
