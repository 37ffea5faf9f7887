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
	"bytes"
	"errors"
	"testing"

	"github.com/jasonish/rules2pcre/converter"
	"github.com/jasonish/rules2pcre/ruleparser"
	"github.com/jasonish/rules2pcre/sqlite"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testResults = []converter.Result{
	{Sid: 1, Buffer: "payload", Pattern: "GET",
		Line: ruleparser.RuleLine{File: "a.rules", LineNo: 1}},
	{Sid: 1, Key: ruleparser.BufferKey{Index: 5, Raw: true}, Buffer: "http_uri_raw", Pattern: `\/a`,
		Line: ruleparser.RuleLine{File: "a.rules", LineNo: 1}},
	{Sid: 2, Buffer: "payload", Pattern: "(?i:X)",
		Line: ruleparser.RuleLine{File: "a.rules", LineNo: 2}},
}

func writeAll(t *testing.T, sink Sink) {
	for _, result := range testResults {
		require.NoError(t, sink.Write(result))
	}
	require.NoError(t, sink.Close())
}

func TestWriterSink(t *testing.T) {
	buf := &bytes.Buffer{}
	writeAll(t, NewWriterSink(buf))
	assert.Equal(t, "1: GET\n1: \\/a\n2: (?i:X)\n", buf.String())
}

func TestFileSink(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/out/payload.pcort", []byte("stale\n"), 0644))

	sink, err := NewFileSink(fs, "/out")
	require.NoError(t, err)
	writeAll(t, sink)
	assert.Equal(t, 0, sink.Labels())

	payload, err := afero.ReadFile(fs, "/out/payload.pcort")
	require.NoError(t, err)
	assert.Equal(t, "1: GET\n2: (?i:X)\n", string(payload))

	raw, err := afero.ReadFile(fs, "/out/http_uri_raw.pcort")
	require.NoError(t, err)
	assert.Equal(t, "1: \\/a\n", string(raw))

	exists, err := afero.Exists(fs, "/out/http_uri.pcort")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFileSinkCreatesDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	sink, err := NewFileSink(fs, "/new/dir")
	require.NoError(t, err)
	assert.Equal(t, "/new/dir/payload.pcort", sink.Filename("payload"))
	require.NoError(t, sink.Close())
	exists, err := afero.DirExists(fs, "/new/dir")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFileSinkReadOnly(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	_, err := NewFileSink(fs, "/out")
	assert.Error(t, err)
}

type closeRecorder struct {
	writes int
	closed bool
	err    error
}

func (r *closeRecorder) Write(result converter.Result) error {
	r.writes++
	return nil
}

func (r *closeRecorder) Close() error {
	r.closed = true
	return r.err
}

func TestMultiSink(t *testing.T) {
	first := &closeRecorder{err: errors.New("first")}
	second := &closeRecorder{}
	multi := NewMultiSink(first, second)
	for _, result := range testResults {
		require.NoError(t, multi.Write(result))
	}
	err := multi.Close()
	require.Error(t, err)
	assert.Equal(t, "first", err.Error())
	assert.Equal(t, 3, first.writes)
	assert.Equal(t, 3, second.writes)
	assert.True(t, first.closed)
	assert.True(t, second.closed)
}

func TestSqliteSink(t *testing.T) {
	db, err := sqlite.NewSqliteService(sqlite.InMemory)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	sink, err := NewSqliteSink(db, "test")
	require.NoError(t, err)
	assert.Len(t, sink.RunID(), 26)
	sink.SetStats(converter.Stats{Total: 5, Failures: 1})
	writeAll(t, sink)

	patterns, err := db.Patterns(sink.RunID())
	require.NoError(t, err)
	require.Len(t, patterns, 3)
	assert.Equal(t, "http_uri_raw", patterns[1].Buffer)
	assert.True(t, patterns[1].Raw)
	assert.Equal(t, 2, patterns[2].Line)

	rules, count, failures, err := db.RunTotals(sink.RunID())
	require.NoError(t, err)
	assert.Equal(t, 5, rules)
	assert.Equal(t, 3, count)
	assert.Equal(t, 1, failures)
}

func TestRunIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		id := newRunID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestSqliteSinkAbort(t *testing.T) {
	db, err := sqlite.NewSqliteService(sqlite.InMemory)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	sink, err := NewSqliteSink(db, "test")
	require.NoError(t, err)
	require.NoError(t, sink.Write(testResults[0]))
	require.NoError(t, sink.Abort())
	require.NoError(t, sink.Close())

	patterns, err := db.Patterns(sink.RunID())
	require.NoError(t, err)
	assert.Empty(t, patterns)
}
