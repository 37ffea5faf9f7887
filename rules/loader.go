/* Copyright (c) 2017 Jason Ish
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

// Package rules finds and reads Snort rule files.
package rules

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jasonish/rules2pcre/log"
	"github.com/jasonish/rules2pcre/ruleparser"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const RulesExtension = ".rules"

type Loader struct {
	fs afero.Fs
}

func NewLoader(fs afero.Fs) *Loader {
	return &Loader{
		fs: fs,
	}
}

// NewOsLoader returns a loader reading from the real filesystem.
func NewOsLoader() *Loader {
	return NewLoader(afero.NewOsFs())
}

// FindRuleFiles returns the rule files directly inside a directory, sorted
// by name. Sub-directories are not searched.
func (l *Loader) FindRuleFiles(dir string) ([]string, error) {
	infos, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read directory %s", dir)
	}
	filenames := []string{}
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), RulesExtension) {
			continue
		}
		filenames = append(filenames, filepath.Join(dir, info.Name()))
	}
	return filenames, nil
}

// LoadFile reads all the rule lines of a file.
func (l *Loader) LoadFile(filename string) ([]ruleparser.RuleLine, error) {
	file, err := l.fs.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", filename)
	}
	defer file.Close()

	lines, err := ruleparser.ReadLines(file, filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", filename)
	}

	log.Debug("Loaded %d rule lines from %s", len(lines), filename)

	return lines, nil
}

// LoadFiles reads the files in order and concatenates their lines.
func (l *Loader) LoadFiles(filenames []string) ([]ruleparser.RuleLine, error) {
	lines := []ruleparser.RuleLine{}
	for _, filename := range filenames {
		fileLines, err := l.LoadFile(filename)
		if err != nil {
			return nil, err
		}
		lines = append(lines, fileLines...)
	}
	return lines, nil
}

// Expand resolves paths into rule files. A directory is replaced by the
// rule files it contains, and a path that does not exist is tried as a
// glob.
func (l *Loader) Expand(paths []string) ([]string, error) {
	filenames := []string{}

	for _, path := range paths {
		fileInfo, err := l.fs.Stat(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, errors.Wrapf(err, "failed to stat %s", path)
			}
			matches, err := afero.Glob(l.fs, path)
			if err != nil {
				return nil, errors.Wrapf(err, "bad pattern %s", path)
			}
			if len(matches) == 0 {
				return nil, errors.Errorf("no such file: %s", path)
			}
			filenames = append(filenames, matches...)
		} else if fileInfo.IsDir() {
			found, err := l.FindRuleFiles(path)
			if err != nil {
				return nil, err
			}
			if len(found) == 0 {
				log.Warning("No rule files found in %s", path)
			}
			filenames = append(filenames, found...)
		} else {
			filenames = append(filenames, path)
		}
	}

	return filenames, nil
}
