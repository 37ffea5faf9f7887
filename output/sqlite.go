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

package output

import (
	"math/rand"
	"sync"
	"time"

	"github.com/jasonish/rules2pcre/converter"
	"github.com/jasonish/rules2pcre/sqlite"
	"github.com/oklog/ulid"
)

var entropyLock sync.Mutex
var lastSeed int64

func newRunID() string {
	entropyLock.Lock()
	defer entropyLock.Unlock()

	seed := lastSeed
	for seed == lastSeed {
		seed = time.Now().UnixNano()
	}
	lastSeed = seed

	entropy := rand.New(rand.NewSource(seed))
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// SqliteSink stores the patterns of a run in an SQLite database. The run
// is committed by Close.
type SqliteSink struct {
	writer *sqlite.RunWriter
	stats  converter.Stats
	done   bool
}

func NewSqliteSink(db *sqlite.SqliteService, version string) (*SqliteSink, error) {
	writer, err := db.BeginRun(newRunID(), version)
	if err != nil {
		return nil, err
	}
	return &SqliteSink{
		writer: writer,
	}, nil
}

func (s *SqliteSink) RunID() string {
	return s.writer.ID()
}

// SetStats sets the run totals recorded on Close.
func (s *SqliteSink) SetStats(stats converter.Stats) {
	s.stats = stats
}

func (s *SqliteSink) Write(result converter.Result) error {
	return s.writer.Insert(sqlite.Pattern{
		Sid:     result.Sid,
		Buffer:  result.Buffer,
		Raw:     result.Key.Raw,
		Pattern: result.Pattern,
		File:    result.Line.File,
		Line:    result.Line.LineNo,
	})
}

func (s *SqliteSink) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	return s.writer.Commit(s.stats.Total, s.stats.Failures)
}

// Abort discards everything written to the sink. A following Close does
// nothing.
func (s *SqliteSink) Abort() error {
	if s.done {
		return nil
	}
	s.done = true
	return s.writer.Rollback()
}
