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

package config

import (
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "RULES2PCRE"

// Configuration keys, also used as the long flag names.
const (
	KeyFiles         = "file"
	KeyDirectory     = "directory"
	KeyWriteFiles    = "write-files"
	KeyOutputDir     = "output-dir"
	KeySqlite        = "sqlite"
	KeyMaxLookaheads = "max-lookaheads"
	KeyNegations     = "negations"
	KeyLegacyEscape  = "legacy-escape"
	KeyFilter        = "filter"
	KeyJobs          = "jobs"
	KeyLogLevel      = "log.level"
	KeyLogFile       = "log.file"
)

// SetDefaults registers the values of c as viper defaults and binds each
// key to its environment variable, RULES2PCRE_OUTPUT_DIR for output-dir
// for example. Flags bound afterwards take precedence over both.
func (c *Config) SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyFiles, c.Files)
	v.SetDefault(KeyDirectory, c.Directory)
	v.SetDefault(KeyWriteFiles, c.WriteFiles)
	v.SetDefault(KeyOutputDir, c.OutputDir)
	v.SetDefault(KeySqlite, c.Sqlite)
	v.SetDefault(KeyMaxLookaheads, c.MaxLookaheads)
	v.SetDefault(KeyNegations, c.Negations)
	v.SetDefault(KeyLegacyEscape, c.LegacyEscape)
	v.SetDefault(KeyFilter, c.Filter)
	v.SetDefault(KeyJobs, c.Jobs)
	v.SetDefault(KeyLogLevel, c.Log.Level)
	v.SetDefault(KeyLogFile, c.Log.File)

	for _, key := range []string{
		KeyDirectory, KeyWriteFiles, KeyOutputDir, KeySqlite,
		KeyMaxLookaheads, KeyNegations, KeyLegacyEscape, KeyFilter,
		KeyJobs, KeyLogLevel, KeyLogFile,
	} {
		v.BindEnv(key, EnvName(key))
	}
}

// EnvName returns the environment variable for a key.
func EnvName(key string) string {
	name := strings.NewReplacer("-", "_", ".", "_").Replace(key)
	return EnvPrefix + "_" + strings.ToUpper(name)
}

// FromViper builds a configuration from the values known to viper.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Files:         v.GetStringSlice(KeyFiles),
		Directory:     v.GetString(KeyDirectory),
		WriteFiles:    v.GetBool(KeyWriteFiles),
		OutputDir:     v.GetString(KeyOutputDir),
		Sqlite:        v.GetString(KeySqlite),
		MaxLookaheads: v.GetInt(KeyMaxLookaheads),
		Negations:     v.GetBool(KeyNegations),
		LegacyEscape:  v.GetBool(KeyLegacyEscape),
		Filter:        v.GetString(KeyFilter),
		Jobs:          v.GetInt(KeyJobs),
		Log: LogConfig{
			Level: v.GetString(KeyLogLevel),
			File:  v.GetString(KeyLogFile),
		},
	}
}
