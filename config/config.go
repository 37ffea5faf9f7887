/* Copyright (c) 2016 Jason Ish
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

package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

var ErrNoInput = errors.New("no rule files or directory given")

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

type Config struct {
	Files     []string `yaml:"files,omitempty"`
	Directory string   `yaml:"directory,omitempty"`

	WriteFiles bool   `yaml:"write-files"`
	OutputDir  string `yaml:"output-dir"`
	Sqlite     string `yaml:"sqlite,omitempty"`

	MaxLookaheads int    `yaml:"max-lookaheads"`
	Negations     bool   `yaml:"negations"`
	LegacyEscape  bool   `yaml:"legacy-escape"`
	Filter        string `yaml:"filter,omitempty"`
	Jobs          int    `yaml:"jobs"`

	Log LogConfig `yaml:"log"`
}

func DefaultConfig() *Config {
	return &Config{
		OutputDir:     ".",
		MaxLookaheads: -1,
		Negations:     true,
		Jobs:          1,
		Log: LogConfig{
			Level: "info",
		},
	}
}

func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks the configuration for conflicting or missing values.
func (c *Config) Validate() error {
	if len(c.Files) > 0 && c.Directory != "" {
		return errors.New("rule files and a rule directory are mutually exclusive")
	}
	if len(c.Files) == 0 && c.Directory == "" {
		return ErrNoInput
	}
	if c.Jobs < 1 {
		return errors.Errorf("jobs must be at least 1, not %d", c.Jobs)
	}
	if c.MaxLookaheads < -1 {
		return errors.Errorf("invalid max-lookaheads %d", c.MaxLookaheads)
	}
	switch c.Log.Level {
	case "error", "warning", "info", "debug":
	default:
		return errors.Errorf("invalid log level %q", c.Log.Level)
	}
	return nil
}

// LoadConfig reads a YAML configuration file. Settings not in the file
// keep their default values.
func LoadConfig(filename string) (*Config, error) {
	return LoadConfigFs(afero.NewOsFs(), filename)
}

func LoadConfigFs(fs afero.Fs, filename string) (*Config, error) {
	raw, err := afero.ReadFile(fs, filename)
	if err != nil {
		return nil, err
	}
	config := DefaultConfig()
	if err := yaml.UnmarshalStrict(raw, config); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", filename)
	}
	return config, nil
}
