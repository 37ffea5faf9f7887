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
	"database/sql"

	"github.com/pkg/errors"
)

// Pattern is a stored conversion result.
type Pattern struct {
	Sid     uint64
	Buffer  string
	Raw     bool
	Pattern string
	File    string
	Line    int
}

// RunWriter stores the patterns of a single run. Nothing is visible to
// other connections until Commit.
type RunWriter struct {
	id     string
	tx     *sql.Tx
	insert *sql.Stmt
	count  int
}

func (s *SqliteService) BeginRun(id string, version string) (*RunWriter, error) {
	tx, err := s.Begin()
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(`insert into runs (id, timestamp, version)
	                    values (?, datetime('now'), ?)`, id, version)
	if err != nil {
		tx.Rollback()
		return nil, errors.Wrap(err, "failed to create run")
	}

	insert, err := tx.Prepare(`insert into patterns
	    (run_id, sid, buffer, raw, pattern, file, line)
	    values (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	return &RunWriter{
		id:     id,
		tx:     tx,
		insert: insert,
	}, nil
}

func (w *RunWriter) ID() string {
	return w.id
}

func (w *RunWriter) Insert(p Pattern) error {
	_, err := w.insert.Exec(w.id, int64(p.Sid), p.Buffer, p.Raw, p.Pattern,
		p.File, p.Line)
	if err != nil {
		return err
	}
	w.count++
	return nil
}

// Commit records the run totals and commits the run.
func (w *RunWriter) Commit(rules int, failures int) error {
	w.insert.Close()
	_, err := w.tx.Exec(`update runs set rules = ?, patterns = ?, failures = ?
	                       where id = ?`, rules, w.count, failures, w.id)
	if err != nil {
		w.tx.Rollback()
		return err
	}
	return w.tx.Commit()
}

func (w *RunWriter) Rollback() error {
	w.insert.Close()
	return w.tx.Rollback()
}

// Patterns returns the patterns of a run in the order they were stored.
func (s *SqliteService) Patterns(runID string) ([]Pattern, error) {
	rows, err := s.Query(`select sid, buffer, raw, pattern, file, line
	                        from patterns where run_id = ? order by rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patterns := []Pattern{}
	for rows.Next() {
		var p Pattern
		var sid int64
		if err := rows.Scan(&sid, &p.Buffer, &p.Raw, &p.Pattern, &p.File,
			&p.Line); err != nil {
			return nil, err
		}
		p.Sid = uint64(sid)
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

// RunTotals returns the number of rules, patterns and failures recorded
// for a run.
func (s *SqliteService) RunTotals(runID string) (int, int, int, error) {
	var rules, patterns, failures int
	err := s.QueryRow(`select rules, patterns, failures from runs where id = ?`,
		runID).Scan(&rules, &patterns, &failures)
	return rules, patterns, failures, err
}
