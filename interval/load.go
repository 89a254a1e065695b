package interval

import (
	"io"

	"github.com/grailbio/hts/sam"
)

// Load reads intervals from r, auto-detecting whether the content is BED or
// interval_list.  BED records are validated against dict; interval_list
// input carries its own dictionary and dict is ignored for it.  The result
// is sorted with overlapping intervals merged.
func Load(r io.Reader, dict *sam.Header) (*List, error) {
	rr := NewRewindReader(r)
	rr.Checkpoint()
	det, err := Sniff(rr)
	if err != nil {
		return nil, err
	}
	if err = rr.Rewind(); err != nil {
		return nil, err
	}
	switch det.Format {
	case FormatIntervalList:
		list, err := ReadIntervalList(rr)
		if err != nil {
			return nil, err
		}
		return list.Uniqued(), nil
	case FormatBED:
		list, _, err := NewListFromBED(rr, dict, BEDOpts{})
		if err != nil {
			return nil, err
		}
		return list.Uniqued(), nil
	default:
		return nil, &FormatError{Detected: det.Format, FirstLine: det.FirstLine}
	}
}

// LoadBED is the strict entry point used by BED-to-interval_list
// conversion: it verifies up front that r contains BED content, rewinds,
// and parses.  Non-BED input fails with a FormatError that distinguishes
// interval_list input from empty or unrecognized input before any record
// parsing begins.
func LoadBED(r io.Reader, dict *sam.Header, opts BEDOpts) (*List, BEDStats, error) {
	rr := NewRewindReader(r)
	rr.Checkpoint()
	det, err := Sniff(rr)
	if err != nil {
		return nil, BEDStats{}, err
	}
	if det.Format != FormatBED {
		return nil, BEDStats{}, &FormatError{Detected: det.Format, Required: FormatBED, FirstLine: det.FirstLine}
	}
	if err = rr.Rewind(); err != nil {
		return nil, BEDStats{}, err
	}
	return NewListFromBED(rr, dict, opts)
}
