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

// Package dict extracts a sequence dictionary (a sam.Header holding contig
// names and lengths) from the file types that commonly carry one: .dict and
// SAM files, BAM files, VCFs with ##contig lines, interval_list headers,
// and FASTA files with a .dict or .fai sidecar.
package dict

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// FromPath extracts a sequence dictionary from the file at path,
// dispatching on the file extension.  Gzipped text inputs (e.g. .vcf.gz)
// are transparently decompressed.
func FromPath(ctx context.Context, path string) (*sam.Header, error) {
	base := strings.ToLower(path)
	gzipped := fileio.DetermineType(path) == fileio.Gzip
	if gzipped {
		base = strings.TrimSuffix(base, ".gz")
	}
	switch {
	case strings.HasSuffix(base, ".fa") || strings.HasSuffix(base, ".fasta") || strings.HasSuffix(base, ".fna"):
		return fromFASTASidecar(ctx, path, base)
	case strings.HasSuffix(base, ".bam"):
		return fromBAMPath(ctx, path)
	}

	header, err := func() (hdr *sam.Header, err error) {
		var in file.File
		if in, err = file.Open(ctx, path); err != nil {
			return nil, err
		}
		defer file.CloseAndReport(ctx, in, &err)
		reader := io.Reader(in.Reader(ctx))
		if gzipped {
			if reader, err = gzip.NewReader(reader); err != nil {
				return nil, err
			}
		}
		switch {
		case strings.HasSuffix(base, ".dict") || strings.HasSuffix(base, ".sam") || strings.HasSuffix(base, ".interval_list"):
			return fromHeaderLines(reader)
		case strings.HasSuffix(base, ".vcf"):
			return fromVCF(reader)
		default:
			return nil, errors.Errorf("unrecognized sequence dictionary file type: %s", path)
		}
	}()
	if err != nil {
		return nil, errors.Wrap(err, "extracting sequence dictionary from "+path)
	}
	return header, nil
}

func fromBAMPath(ctx context.Context, path string) (hdr *sam.Header, err error) {
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return nil, err
	}
	defer file.CloseAndReport(ctx, in, &err)
	br, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		return nil, errors.Wrap(err, "extracting sequence dictionary from "+path)
	}
	defer func() {
		if e := br.Close(); e != nil && err == nil {
			err = e
		}
	}()
	return requireRefs(br.Header())
}

// fromHeaderLines parses the leading '@' lines of an interval_list (or any
// SAM-header-prefixed text file) and ignores everything after them.
func fromHeaderLines(r io.Reader) (*sam.Header, error) {
	var text []byte
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if !strings.HasPrefix(trimmed, "@") {
			break
		}
		text = append(text, line...)
		text = append(text, '\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(text) == 0 {
		return nil, errors.New("no @-prefixed header lines found")
	}
	header, err := sam.NewHeader(text, nil)
	if err != nil {
		return nil, err
	}
	return requireRefs(header)
}

// fromVCF builds a dictionary from ##contig=<ID=...,length=...> metadata
// lines.  Scanning stops at the first non-'#' line.
func fromVCF(r io.Reader) (*sam.Header, error) {
	var refs []*sam.Reference
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "#") {
			break
		}
		if !strings.HasPrefix(line, "##contig=<") || !strings.HasSuffix(line, ">") {
			continue
		}
		inner := strings.TrimSuffix(strings.TrimPrefix(line, "##contig=<"), ">")
		var name string
		length := -1
		for _, kv := range strings.Split(inner, ",") {
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) != 2 {
				continue
			}
			switch parts[0] {
			case "ID":
				name = parts[1]
			case "length":
				n, err := strconv.Atoi(parts[1])
				if err != nil {
					return nil, errors.Errorf("contig %s has a non-integer length: %s", name, parts[1])
				}
				length = n
			}
		}
		if name == "" {
			return nil, errors.Errorf("contig line is missing an ID: %s", line)
		}
		if length <= 0 {
			return nil, errors.Errorf("contig %s is missing a positive length", name)
		}
		ref, err := sam.NewReference(name, "", "", length, nil, nil)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, errors.New("no ##contig lines found")
	}
	return sam.NewHeader(nil, refs)
}

// fromFASTASidecar looks for the dictionary next to a FASTA file: first a
// .dict file with the FASTA extension replaced, then a .fai index appended
// to the FASTA path.
func fromFASTASidecar(ctx context.Context, path, base string) (*sam.Header, error) {
	stem := path[:strings.LastIndex(base, ".")]
	if dictPath := stem + ".dict"; pathExists(ctx, dictPath) {
		return FromPath(ctx, dictPath)
	}
	faiPath := path + ".fai"
	header, err := func() (hdr *sam.Header, err error) {
		var in file.File
		if in, err = file.Open(ctx, faiPath); err != nil {
			return nil, err
		}
		defer file.CloseAndReport(ctx, in, &err)
		return fromFAI(in.Reader(ctx))
	}()
	if err != nil {
		return nil, errors.Wrapf(err, "extracting sequence dictionary for %s (no .dict sidecar, tried %s)", path, faiPath)
	}
	return header, nil
}

// fromFAI parses a samtools faidx index: one
// "<name>\t<length>\t<offset>\t<bases per line>\t<bytes per line>" line per
// sequence.
func fromFAI(r io.Reader) (*sam.Header, error) {
	var refs []*sam.Reference
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, errors.Errorf("malformed .fai line: %q", line)
		}
		length, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, errors.Errorf("malformed .fai line (non-integer length): %q", line)
		}
		ref, err := sam.NewReference(fields[0], "", "", length, nil, nil)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, errors.New("empty .fai index")
	}
	return sam.NewHeader(nil, refs)
}

func pathExists(ctx context.Context, path string) bool {
	in, err := file.Open(ctx, path)
	if err != nil {
		return false
	}
	_ = in.Close(ctx)
	return true
}

func requireRefs(header *sam.Header) (*sam.Header, error) {
	if header == nil || len(header.Refs()) == 0 {
		return nil, errors.New("no reference sequences found in header")
	}
	return header, nil
}
