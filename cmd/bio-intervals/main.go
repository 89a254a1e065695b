// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

/*
bio-intervals converts genomic interval files.  The main subcommand,
convert, turns a BED file (0-based, half-open coordinates) into an
interval_list file (SAM header plus 1-based, closed coordinates), validating
every record against a sequence dictionary.
*/

import (
	"fmt"
	"io"
	"os"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/intervals/encoding/dict"
	"github.com/grailbio/intervals/interval"
	"github.com/klauspost/compress/gzip"
	"v.io/x/lib/cmdline"
)

type convertOpts struct {
	sortOutput         bool
	unique             bool
	dropMissingContigs bool
	keepLengthZero     bool
}

func newCmdConvert() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "convert",
		Short: "Convert a BED file to the interval_list format",
		Long: `
Convert reads BED records, validates them against the sequence dictionary
extracted from dictpath (.dict, SAM, BAM, VCF, interval_list, or FASTA with
a .dict/.fai sidecar), and writes an interval_list file.  Pass "-" as
bedpath to read standard input.`,
		ArgsName: "bedpath dictpath outpath",
	}
	opts := convertOpts{}
	cmd.Flags.BoolVar(&opts.sortOutput, "sort", true, "Sort the output before writing it")
	cmd.Flags.BoolVar(&opts.unique, "unique", false, "Merge overlapping intervals before writing (implies -sort)")
	cmd.Flags.BoolVar(&opts.dropMissingContigs, "drop-missing-contigs", false, "Drop records on contigs missing from the dictionary instead of failing")
	cmd.Flags.BoolVar(&opts.keepLengthZero, "keep-length-zero-intervals", false, "Keep length-zero input intervals in the output")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 3 {
			return fmt.Errorf("convert takes bedpath dictpath outpath, but got %v", argv)
		}
		return convert(argv[0], argv[1], argv[2], opts)
	})
	return cmd
}

func convert(bedPath, dictPath, outPath string, opts convertOpts) (err error) {
	ctx := vcontext.Background()
	header, err := dict.FromPath(ctx, dictPath)
	if err != nil {
		return err
	}

	var in io.Reader
	if bedPath == "-" || bedPath == "/dev/stdin" {
		in = os.Stdin
	} else {
		var f file.File
		if f, err = file.Open(ctx, bedPath); err != nil {
			return err
		}
		defer file.CloseAndReport(ctx, f, &err)
		in = f.Reader(ctx)
		if fileio.DetermineType(bedPath) == fileio.Gzip {
			if in, err = gzip.NewReader(in); err != nil {
				return err
			}
		}
	}

	list, _, err := interval.LoadBED(in, header, interval.BEDOpts{
		DropMissingContigs:      opts.dropMissingContigs,
		KeepLengthZeroIntervals: opts.keepLengthZero,
		Reporter:                interval.LogReporter{},
	})
	if err != nil {
		return err
	}
	if opts.unique {
		list = list.Uniqued()
	} else if opts.sortOutput {
		list = list.Sorted()
	}
	if err = list.Write(ctx, outPath); err != nil {
		return err
	}
	log.Printf("wrote %d interval(s) spanning a total of %d base(s) to %s", list.Len(), list.TotalSpan(), outPath)
	return nil
}

func newCmdDict() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "dict",
		Short:    "Extract a sequence dictionary and print it as SAM header text",
		ArgsName: "path",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("dict takes one pathname argument, but got %v", argv)
		}
		header, err := dict.FromPath(vcontext.Background(), argv[0])
		if err != nil {
			return err
		}
		text, err := header.MarshalText()
		if err != nil {
			return err
		}
		_, err = env.Stdout.Write(text)
		return err
	})
	return cmd
}

func main() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(&cmdline.Command{
		Name:     "bio-intervals",
		Short:    "Tools for working with genomic interval files",
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdConvert(),
			newCmdDict(),
		},
	})
}
