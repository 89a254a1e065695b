package interval

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
	"github.com/klauspost/compress/gzip"
)

// Reporter consumes per-record and summary diagnostics emitted while
// parsing.  A nil Reporter suppresses all diagnostics.
type Reporter interface {
	// Printf reports an informational message.
	Printf(format string, v ...interface{})
	// Warnf reports a condition the caller should probably act on.
	Warnf(format string, v ...interface{})
}

// LogReporter forwards diagnostics to the process-wide grailbio logger.
type LogReporter struct{}

// Printf implements Reporter.
func (LogReporter) Printf(format string, v ...interface{}) { log.Printf(format, v...) }

// Warnf implements Reporter.
func (LogReporter) Warnf(format string, v ...interface{}) { log.Error.Printf(format, v...) }

// BEDOpts defines the behavior of NewListFromBED.
type BEDOpts struct {
	// DropMissingContigs drops records on contigs absent from the
	// dictionary, counting them, instead of failing on the first one.
	DropMissingContigs bool
	// KeepLengthZeroIntervals keeps length-zero records (chromStart ==
	// chromEnd) instead of skipping them.
	KeepLengthZeroIntervals bool
	// Reporter receives diagnostics; nil suppresses them.
	Reporter Reporter
}

// BEDStats accumulates the diagnostic counts of a single parse.
type BEDStats struct {
	// DroppedIntervals counts records dropped for a missing contig.
	DroppedIntervals int
	// DroppedBases is the total span of those records.
	DroppedBases int64
	// LengthZeroIntervals counts length-zero records seen, kept or not.
	LengthZeroIntervals int
}

// validateCoords applies the bounds checks shared by the BED and
// interval_list readers to a 1-based closed candidate interval.  The checks
// run in a fixed order and the first violation wins.  end == start-1 is the
// legal zero-length form, but only at start == 1; a zero-length interval
// before any other base is meaningless and rejected.
func validateCoords(ref *sam.Reference, start, end int) error {
	refName := ref.Name()
	switch {
	case start < 1:
		return coordErrf(refName, "start on sequence %q was less than one: %d", refName, start)
	case ref.Len() < start:
		return coordErrf(refName, "start on sequence %q was past the end: %d < %d", refName, ref.Len(), start)
	case (end == 0 && start != 1) || end < 0:
		return coordErrf(refName, "end on sequence %q was less than one: %d", refName, end)
	case ref.Len() < end:
		return coordErrf(refName, "end on sequence %q was past the end: %d < %d", refName, ref.Len(), end)
	case end < start-1:
		return coordErrf(refName, "on sequence %q, end < start-1: %d <= %d", refName, end, start)
	}
	return nil
}

// NewListFromBED parses BED records from r into a List validated against
// the given dictionary.  Coordinates are converted from 0-based half-open
// BED to 1-based closed intervals.  Lines that are empty after trimming or
// start with '#' are skipped.  The returned list is unsorted and
// non-deduplicated; callers wanting canonical output should follow up with
// Sorted or Uniqued.
func NewListFromBED(r io.Reader, dict *sam.Header, opts BEDOpts) (*List, BEDStats, error) {
	list := NewList(dict)
	var stats BEDStats
	rep := opts.Reporter

	scanner := bufio.NewScanner(r)
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return nil, stats, &MalformedRecordError{Line: lineIdx, Record: line, Reason: "fewer than 3 tab-separated fields"}
		}
		refName := fields[0]
		bedStart, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, stats, &MalformedRecordError{Line: lineIdx, Record: line, Reason: "non-integer start coordinate"}
		}
		bedEnd, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, stats, &MalformedRecordError{Line: lineIdx, Record: line, Reason: "non-integer end coordinate"}
		}
		// BED start is 0-based; interval_list start is 1-based.  BED end is
		// 0-based exclusive, which equals 1-based inclusive.
		start := bedStart + 1
		end := bedEnd
		name := ""
		if len(fields) > 3 {
			name = fields[3]
		}
		negStrand := len(fields) > 5 && fields[5] == "-"

		ref, ok := list.Ref(refName)
		if !ok {
			if opts.DropMissingContigs {
				if rep != nil {
					rep.Printf("dropping interval with missing contig: %s:%d-%d", refName, start, end)
				}
				stats.DroppedIntervals++
				stats.DroppedBases += int64(end - start + 1)
				continue
			}
			return nil, stats, &UnknownContigError{RefName: refName}
		}
		if err := validateCoords(ref, start, end); err != nil {
			return nil, stats, err
		}

		if start == end+1 {
			stats.LengthZeroIntervals++
			if !opts.KeepLengthZeroIntervals {
				if rep != nil {
					rep.Printf("skipping length-zero interval at %s:%d-%d", refName, start, end)
				}
				continue
			}
		}
		list.Add(Interval{RefName: refName, Start: start, End: end, NegStrand: negStrand, Name: name})
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, err
	}

	if rep != nil {
		if opts.DropMissingContigs {
			if stats.DroppedIntervals == 0 {
				rep.Printf("there were no missing regions")
			} else {
				rep.Warnf("there were %d missing regions with a total of %d bases", stats.DroppedIntervals, stats.DroppedBases)
			}
		}
		if !opts.KeepLengthZeroIntervals {
			if stats.LengthZeroIntervals == 0 {
				rep.Printf("no input regions had length zero, so none were skipped")
			} else {
				rep.Printf("skipped %d length-zero region(s) in the input", stats.LengthZeroIntervals)
			}
		} else if stats.LengthZeroIntervals > 0 {
			rep.Warnf("input had %d length-zero region(s); rerun without keep-length-zero-intervals to remove them", stats.LengthZeroIntervals)
		}
	}
	return list, stats, nil
}

// NewListFromBEDPath is a wrapper for NewListFromBED that takes a path
// instead of an io.Reader.  Gzipped input is transparently decompressed.
func NewListFromBEDPath(ctx context.Context, path string, dict *sam.Header, opts BEDOpts) (list *List, stats BEDStats, err error) {
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return nil, BEDStats{}, err
	}
	defer file.CloseAndReport(ctx, in, &err)
	reader := io.Reader(in.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		if reader, err = gzip.NewReader(reader); err != nil {
			return nil, BEDStats{}, err
		}
	}
	return NewListFromBED(reader, dict, opts)
}
