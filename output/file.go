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
	"bufio"
	"os"
	"path/filepath"

	"github.com/jasonish/rules2pcre/converter"
	"github.com/jasonish/rules2pcre/log"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const FileExtension = ".pcort"

type labelFile struct {
	file   afero.File
	writer *bufio.Writer
}

// FileSink writes the patterns of each buffer to a file of its own named
// after the buffer label. Files are created when the first pattern for
// the buffer is written, replacing any existing file.
type FileSink struct {
	fs    afero.Fs
	dir   string
	files map[string]*labelFile
}

func NewFileSink(fs afero.Fs, dir string) (*FileSink, error) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %s", dir)
	}
	return &FileSink{
		fs:    fs,
		dir:   dir,
		files: map[string]*labelFile{},
	}, nil
}

// Filename returns the output filename used for a buffer label.
func (s *FileSink) Filename(label string) string {
	return filepath.Join(s.dir, label+FileExtension)
}

func (s *FileSink) open(label string) (*labelFile, error) {
	if f, ok := s.files[label]; ok {
		return f, nil
	}
	filename := s.Filename(label)
	file, err := s.fs.OpenFile(filename,
		os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", filename)
	}
	log.Debug("Opened output file %s", filename)
	f := &labelFile{
		file:   file,
		writer: bufio.NewWriter(file),
	}
	s.files[label] = f
	return f, nil
}

func (s *FileSink) Write(result converter.Result) error {
	f, err := s.open(result.Buffer)
	if err != nil {
		return err
	}
	return formatResult(f.writer, result)
}

// Labels returns the number of files opened so far.
func (s *FileSink) Labels() int {
	return len(s.files)
}

// Close flushes and closes every open file, returning the first error.
func (s *FileSink) Close() error {
	var first error
	for label, f := range s.files {
		if err := f.writer.Flush(); err != nil && first == nil {
			first = errors.Wrapf(err, "failed to write %s", s.Filename(label))
		}
		if err := f.file.Close(); err != nil && first == nil {
			first = err
		}
		delete(s.files, label)
	}
	return first
}
