package interval

import (
	"bufio"
	"io"
	"strings"
)

// Format identifies an interval file format.
type Format int

const (
	// FormatUnknown means neither BED nor interval_list markers were found.
	FormatUnknown Format = iota
	// FormatBED is the tab-delimited, 0-based half-open BED format.
	FormatBED
	// FormatIntervalList is the SAM-header-prefixed, 1-based closed format.
	FormatIntervalList
)

func (f Format) String() string {
	switch f {
	case FormatBED:
		return "BED"
	case FormatIntervalList:
		return "interval_list"
	default:
		return "unknown"
	}
}

// Detection is the result of Sniff.  It is consumed immediately by the
// caller and never persisted.
type Detection struct {
	Format Format
	// FirstLine is the trimmed first significant line when Format is
	// FormatUnknown and the input had one; "" otherwise.
	FirstLine string
}

// Sniff classifies the stream by its first significant line: lines that are
// empty after trimming or start with '#' are skipped; '@' indicates
// interval_list; three or more tab-separated fields indicate BED.  Sniff
// only advances the stream's read cursor, it never rewinds; callers wanting
// to parse the same content afterwards should wrap the stream in a
// RewindReader and checkpoint before calling.
func Sniff(r io.Reader) (Detection, error) {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return Detection{}, err
		}
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			if trimmed[0] == '@' {
				return Detection{Format: FormatIntervalList}, nil
			}
			if len(strings.Split(trimmed, "\t")) >= 3 {
				return Detection{Format: FormatBED}, nil
			}
			return Detection{Format: FormatUnknown, FirstLine: trimmed}, nil
		}
		if err == io.EOF {
			return Detection{Format: FormatUnknown}, nil
		}
	}
}
