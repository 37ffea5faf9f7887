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

package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jasonish/rules2pcre"
	"github.com/jasonish/rules2pcre/config"
	"github.com/jasonish/rules2pcre/converter"
	"github.com/jasonish/rules2pcre/filter"
	"github.com/jasonish/rules2pcre/log"
	"github.com/jasonish/rules2pcre/output"
	"github.com/jasonish/rules2pcre/pcre"
	"github.com/jasonish/rules2pcre/ruleparser"
	"github.com/jasonish/rules2pcre/rules"
	"github.com/jasonish/rules2pcre/sqlite"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const usageHeader = `Usage: rules2pcre convert [options] [FILE...]

Convert the content and pcre options of Snort rules into one regular
expression per rule and buffer.

Options:
`

func usage(stderr io.Writer, flagset *flag.FlagSet) {
	fmt.Fprint(stderr, usageHeader)
	fmt.Fprint(stderr, flagset.FlagUsages())
}

func Main(args []string) {
	os.Exit(Run(args, os.Stdout, os.Stderr))
}

// Run runs the convert command and returns the exit status.
func Run(args []string, stdout io.Writer, stderr io.Writer) int {
	v := viper.New()

	var configFilename string
	var files []string
	var noNegations bool
	var verbose bool
	var quiet bool

	flagset := flag.NewFlagSet("convert", flag.ContinueOnError)
	flagset.SetOutput(stderr)
	flagset.Usage = func() {}

	flagset.StringVarP(&configFilename, "config", "c", "", "Configuration file")
	flagset.StringArrayVarP(&files, config.KeyFiles, "f", nil, "Rule file, may be given more than once")
	flagset.StringP(config.KeyDirectory, "d", "", "Convert all .rules files in a directory")
	flagset.BoolP(config.KeyWriteFiles, "w", false, "Write one .pcort file per buffer instead of stdout")
	flagset.String(config.KeyOutputDir, ".", "Directory for the .pcort files")
	flagset.String(config.KeySqlite, "", "Also store the patterns in an SQLite database")
	flagset.Int(config.KeyMaxLookaheads, -1, "Maximum lookaheads per pattern, -1 for no limit")
	flagset.BoolVar(&noNegations, "no-negations", false, "Fail rules with negated content or pcre")
	flagset.Bool(config.KeyLegacyEscape, false, "Do not escape / in content")
	flagset.String(config.KeyFilter, "", "Only output patterns matching a CEL expression")
	flagset.IntP(config.KeyJobs, "j", 1, "Number of rules to convert concurrently")
	flagset.BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	flagset.BoolVarP(&quiet, "quiet", "q", false, "Only log errors")
	flagset.String("log-file", "", "Also log to this file, rotated daily")

	if err := flagset.Parse(args); err != nil {
		if err != flag.ErrHelp {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		usage(stderr, flagset)
		return 1
	}

	cfg := config.DefaultConfig()
	if configFilename != "" {
		loaded, err := config.LoadConfig(configFilename)
		if err != nil {
			log.Error("Failed to load configuration: %v", err)
			return 1
		}
		cfg = loaded
	}
	cfg.SetDefaults(v)

	for _, key := range []string{
		config.KeyDirectory, config.KeyWriteFiles, config.KeyOutputDir,
		config.KeySqlite, config.KeyMaxLookaheads, config.KeyLegacyEscape,
		config.KeyFilter, config.KeyJobs,
	} {
		v.BindPFlag(key, flagset.Lookup(key))
	}
	v.BindPFlag(config.KeyLogFile, flagset.Lookup("log-file"))

	files = append(files, flagset.Args()...)
	if len(files) > 0 {
		v.Set(config.KeyFiles, files)
	}
	if noNegations {
		v.Set(config.KeyNegations, false)
	}
	if verbose {
		v.Set(config.KeyLogLevel, "debug")
	} else if quiet {
		v.Set(config.KeyLogLevel, "error")
	}

	cfg = config.FromViper(v)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		usage(stderr, flagset)
		return 1
	}

	if err := configureLogging(cfg); err != nil {
		log.Error("%v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt,
		syscall.SIGTERM)
	defer stop()

	if err := convert(ctx, cfg, stdout); err != nil {
		log.Error("%v", err)
		return 1
	}

	return 0
}

func configureLogging(cfg *config.Config) error {
	switch cfg.Log.Level {
	case "debug":
		log.SetLevel(log.DEBUG)
	case "warning":
		log.SetLevel(log.WARNING)
	case "error":
		log.SetLevel(log.ERROR)
	default:
		log.SetLevel(log.INFO)
	}
	if cfg.Log.File != "" {
		if err := log.AddFileHook(cfg.Log.File); err != nil {
			return errors.Wrapf(err, "failed to open log file %s", cfg.Log.File)
		}
	}
	return nil
}

func loadLines(cfg *config.Config) ([]ruleparser.RuleLine, error) {
	loader := rules.NewOsLoader()

	var filenames []string
	var err error
	if cfg.Directory != "" {
		filenames, err = loader.FindRuleFiles(cfg.Directory)
		if err == nil && len(filenames) == 0 {
			err = errors.Errorf("no rule files found in %s", cfg.Directory)
		}
	} else {
		filenames, err = loader.Expand(cfg.Files)
	}
	if err != nil {
		return nil, err
	}

	for _, filename := range filenames {
		log.Debug("Reading %s", filename)
	}

	return loader.LoadFiles(filenames)
}

func newConverter(cfg *config.Config) (*converter.Converter, error) {
	synthesizer := pcre.NewSynthesizer()
	synthesizer.MaxLookaheads = cfg.MaxLookaheads
	synthesizer.Negations = cfg.Negations
	if cfg.LegacyEscape {
		synthesizer.Escape = pcre.LegacyEscapeSet
	}

	conv := converter.New(ruleparser.NewKeywordTable(), synthesizer)
	conv.Jobs = cfg.Jobs

	if cfg.Filter != "" {
		f, err := filter.New(cfg.Filter)
		if err != nil {
			return nil, err
		}
		conv.Filter = f
	}

	return conv, nil
}

func convert(ctx context.Context, cfg *config.Config, stdout io.Writer) (err error) {
	lines, err := loadLines(cfg)
	if err != nil {
		return err
	}

	conv, err := newConverter(cfg)
	if err != nil {
		return err
	}

	sinks := []output.Sink{}
	if cfg.WriteFiles {
		fileSink, err := output.NewFileSink(afero.NewOsFs(), cfg.OutputDir)
		if err != nil {
			return err
		}
		sinks = append(sinks, fileSink)
	} else {
		sinks = append(sinks, output.NewWriterSink(stdout))
	}

	var sqliteSink *output.SqliteSink
	if cfg.Sqlite != "" {
		db, err := sqlite.NewSqliteService(cfg.Sqlite)
		if err != nil {
			return errors.Wrapf(err, "failed to open %s", cfg.Sqlite)
		}
		defer db.Close()
		if err := db.Migrate(); err != nil {
			return err
		}
		sqliteSink, err = output.NewSqliteSink(db, rules2pcre.BuildVersion)
		if err != nil {
			return err
		}
		log.Info("Storing patterns in %s as run %s", cfg.Sqlite,
			sqliteSink.RunID())
		sinks = append(sinks, sqliteSink)
	}

	sink := output.NewMultiSink(sinks...)
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	stats, err := conv.Run(ctx, lines, sink)
	if err != nil {
		if sqliteSink != nil {
			sqliteSink.Abort()
		}
		return err
	}
	if sqliteSink != nil {
		sqliteSink.SetStats(stats)
	}

	log.Info("Done: %v", stats)

	return nil
}
