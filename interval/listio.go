package interval

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/hts/sam"
)

// ReadIntervalList parses the interval_list format: SAM header lines
// beginning with '@', then one 1-based closed interval record per line with
// five tab-separated fields (sequence, start, end, strand, name).  Records
// are validated against the dictionary embedded in the file's own header,
// which the returned List is bound to.
func ReadIntervalList(r io.Reader) (*List, error) {
	var (
		headerText []byte
		list       *List
	)
	scanner := bufio.NewScanner(r)
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "@") {
			if list != nil {
				return nil, &MalformedRecordError{Line: lineIdx, Record: line, Reason: "header line after interval records"}
			}
			headerText = append(headerText, raw...)
			headerText = append(headerText, '\n')
			continue
		}
		if list == nil {
			var err error
			if list, err = listFromHeaderText(headerText); err != nil {
				return nil, err
			}
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 5 {
			return nil, &MalformedRecordError{Line: lineIdx, Record: line, Reason: "expected 5 tab-separated fields"}
		}
		start, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, &MalformedRecordError{Line: lineIdx, Record: line, Reason: "non-integer start coordinate"}
		}
		end, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, &MalformedRecordError{Line: lineIdx, Record: line, Reason: "non-integer end coordinate"}
		}
		var negStrand bool
		switch fields[3] {
		case "+":
		case "-":
			negStrand = true
		default:
			return nil, &MalformedRecordError{Line: lineIdx, Record: line, Reason: "strand column must be + or -"}
		}
		name := fields[4]
		if name == "." {
			name = ""
		}
		ref, ok := list.Ref(fields[0])
		if !ok {
			return nil, &UnknownContigError{RefName: fields[0]}
		}
		if err := validateCoords(ref, start, end); err != nil {
			return nil, err
		}
		list.Add(Interval{RefName: fields[0], Start: start, End: end, NegStrand: negStrand, Name: name})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if list == nil {
		// Header-only input is a legal, empty interval list.
		return listFromHeaderText(headerText)
	}
	return list, nil
}

func listFromHeaderText(text []byte) (*List, error) {
	if len(text) == 0 {
		return nil, fmt.Errorf("interval_list input has no @-prefixed header")
	}
	header, err := sam.NewHeader(text, nil)
	if err != nil {
		return nil, fmt.Errorf("malformed interval_list header: %v", err)
	}
	if len(header.Refs()) == 0 {
		return nil, fmt.Errorf("interval_list header contains no @SQ lines")
	}
	return NewList(header), nil
}
