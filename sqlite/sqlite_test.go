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

package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *SqliteService {
	db, err := NewSqliteService(InMemory)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	return db
}

func TestMigrate(t *testing.T) {
	db := newTestService(t)

	version, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	// Nothing left to apply.
	require.NoError(t, db.Migrate())
	version, err = db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestRunWriter(t *testing.T) {
	db := newTestService(t)

	writer, err := db.BeginRun("run-1", "0.1.0")
	require.NoError(t, err)
	assert.Equal(t, "run-1", writer.ID())
	require.NoError(t, writer.Insert(Pattern{
		Sid: 1, Buffer: "payload", Pattern: "GET", File: "a.rules", Line: 3,
	}))
	require.NoError(t, writer.Insert(Pattern{
		Sid: 1, Buffer: "http_uri_raw", Raw: true, Pattern: `\/a`,
		File: "a.rules", Line: 3,
	}))
	require.NoError(t, writer.Commit(10, 2))

	patterns, err := db.Patterns("run-1")
	require.NoError(t, err)
	require.Len(t, patterns, 2)
	assert.Equal(t, Pattern{
		Sid: 1, Buffer: "payload", Pattern: "GET", File: "a.rules", Line: 3,
	}, patterns[0])
	assert.True(t, patterns[1].Raw)
	assert.Equal(t, `\/a`, patterns[1].Pattern)

	rules, count, failures, err := db.RunTotals("run-1")
	require.NoError(t, err)
	assert.Equal(t, 10, rules)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, failures)
}

func TestRunWriterRollback(t *testing.T) {
	db := newTestService(t)

	writer, err := db.BeginRun("run-2", "0.1.0")
	require.NoError(t, err)
	require.NoError(t, writer.Insert(Pattern{Sid: 2, Buffer: "payload", Pattern: "x"}))
	require.NoError(t, writer.Rollback())

	patterns, err := db.Patterns("run-2")
	require.NoError(t, err)
	assert.Empty(t, patterns)

	_, _, _, err = db.RunTotals("run-2")
	assert.Error(t, err)
}
