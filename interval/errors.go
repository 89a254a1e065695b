package interval

import "fmt"

// MalformedRecordError reports a record that cannot be parsed at all:
// too few fields, non-integer coordinates, or a bad strand column.
// It aborts the whole parse.
type MalformedRecordError struct {
	Line   int    // 1-based line number in the input
	Record string // the offending raw line
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Record)
}

// UnknownContigError reports a record referencing a contig absent from the
// sequence dictionary, with lenient dropping disabled.
type UnknownContigError struct {
	RefName string
}

func (e *UnknownContigError) Error() string {
	return fmt.Sprintf("sequence %q was not found in the sequence dictionary", e.RefName)
}

// CoordinateError reports a record whose coordinates fall outside the
// dictionary contig.  There is no lenient mode for these; they indicate a
// dictionary/input mismatch.
type CoordinateError struct {
	RefName string
	Detail  string
}

func (e *CoordinateError) Error() string { return e.Detail }

func coordErrf(refName, format string, args ...interface{}) *CoordinateError {
	return &CoordinateError{RefName: refName, Detail: fmt.Sprintf(format, args...)}
}

// FormatError reports input whose format could not be established, or whose
// detected format does not match what the caller requires.
type FormatError struct {
	Detected Format
	Required Format
	// FirstLine is the first significant input line when detection failed
	// on it; empty when the input had no significant lines at all.
	FirstLine string
}

func (e *FormatError) Error() string {
	if e.Required == FormatBED && e.Detected == FormatIntervalList {
		return "input appears to be an interval_list file; a BED file is required"
	}
	msg := "unrecognized interval file format (expected interval_list lines starting with @, or BED records with at least 3 tab-separated fields)"
	if e.FirstLine != "" {
		return msg + "; first data line: " + e.FirstLine
	}
	return msg + "; input is empty or contains only comments"
}
