package interval

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDict returns a dictionary with chr1:1000, chr2:2000, chr10:500.
func testDict(t *testing.T) *sam.Header {
	t.Helper()
	chr1, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	require.NoError(t, err)
	chr2, err := sam.NewReference("chr2", "", "", 2000, nil, nil)
	require.NoError(t, err)
	chr10, err := sam.NewReference("chr10", "", "", 500, nil, nil)
	require.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{chr1, chr2, chr10})
	require.NoError(t, err)
	return header
}

type recordingReporter struct {
	infos, warnings []string
}

func (r *recordingReporter) Printf(format string, v ...interface{}) {
	r.infos = append(r.infos, fmt.Sprintf(format, v...))
}

func (r *recordingReporter) Warnf(format string, v ...interface{}) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, v...))
}

func TestBEDCoordinateConversion(t *testing.T) {
	list, _, err := NewListFromBED(
		strings.NewReader("chr1\t0\t100\tfeatureA\t0\t+\n"),
		testDict(t), BEDOpts{})
	require.NoError(t, err)
	require.Equal(t, 1, list.Len())
	iv := list.Intervals()[0]
	assert.Equal(t, Interval{RefName: "chr1", Start: 1, End: 100, Name: "featureA"}, iv)
	assert.Equal(t, "chr1:1-100:+:featureA", iv.String())
}

func TestBEDOptionalFields(t *testing.T) {
	input := "chr1\t10\t20\n" + // 3 fields
		"chr1\t10\t20\tnamed\n" + // 4 fields
		"chr1\t10\t20\t\t17\t-\n" + // empty name, minus strand
		"chr2\t0\t2000\tspan\t0\t+\n"
	list, _, err := NewListFromBED(strings.NewReader(input), testDict(t), BEDOpts{})
	require.NoError(t, err)
	require.Equal(t, 4, list.Len())
	ivs := list.Intervals()
	assert.Equal(t, Interval{RefName: "chr1", Start: 11, End: 20}, ivs[0])
	assert.Equal(t, "named", ivs[1].Name)
	assert.Equal(t, "", ivs[2].Name)
	assert.True(t, ivs[2].NegStrand)
	assert.False(t, ivs[3].NegStrand)
}

func TestBEDSkipsCommentsAndBlanks(t *testing.T) {
	input := "# header comment\n\n   \nchr1\t0\t10\n#trailing\n"
	list, _, err := NewListFromBED(strings.NewReader(input), testDict(t), BEDOpts{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Len())
}

func TestBEDMalformedRecords(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"twoFields", "chr1\t100\n"},
		{"nonIntegerStart", "chr1\tzero\t100\n"},
		{"nonIntegerEnd", "chr1\t0\thundred\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewListFromBED(strings.NewReader(tt.input), testDict(t), BEDOpts{})
			require.Error(t, err)
			var mErr *MalformedRecordError
			require.True(t, asError(err, &mErr), "want MalformedRecordError, got %T", err)
			assert.Equal(t, strings.TrimSpace(tt.input), mErr.Record)
		})
	}
}

func TestBEDMissingContigStrict(t *testing.T) {
	_, _, err := NewListFromBED(strings.NewReader("chrX\t5\t10\n"), testDict(t), BEDOpts{})
	require.Error(t, err)
	var uErr *UnknownContigError
	require.True(t, asError(err, &uErr), "want UnknownContigError, got %T", err)
	assert.Equal(t, "chrX", uErr.RefName)
}

func TestBEDMissingContigLenient(t *testing.T) {
	rep := &recordingReporter{}
	list, stats, err := NewListFromBED(
		strings.NewReader("chrX\t5\t10\n"),
		testDict(t),
		BEDOpts{DropMissingContigs: true, Reporter: rep})
	require.NoError(t, err)
	assert.Equal(t, 0, list.Len())
	assert.Equal(t, 1, stats.DroppedIntervals)
	assert.Equal(t, int64(5), stats.DroppedBases)
	require.Len(t, rep.warnings, 1)
	assert.Contains(t, rep.warnings[0], "1 missing regions")
	assert.Contains(t, rep.warnings[0], "5 bases")
}

func TestBEDBounds(t *testing.T) {
	tests := []struct {
		name    string
		record  string
		ok      bool
		errPart string
	}{
		{"endAtContigEnd", "chr1\t990\t1000", true, ""},
		{"endPastContigEnd", "chr1\t990\t1001", false, "past the end"},
		{"startPastContigEnd", "chr1\t1000\t1001", false, "past the end"},
		{"negativeStart", "chr1\t-2\t10", false, "less than one"},
		{"endZeroStartNotOne", "chr1\t5\t0", false, "less than one"},
		{"negativeLength", "chr1\t5\t3", false, "end < start-1"},
		{"zeroLengthAtOrigin", "chr1\t0\t0", true, ""},
		{"firstBase", "chr1\t0\t1", true, ""},
		{"lastBase", "chr1\t999\t1000", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewListFromBED(
				strings.NewReader(tt.record+"\n"), testDict(t),
				BEDOpts{KeepLengthZeroIntervals: true})
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				var cErr *CoordinateError
				require.True(t, asError(err, &cErr), "want CoordinateError, got %T: %v", err, err)
				assert.Contains(t, cErr.Error(), tt.errPart)
			}
		})
	}
}

func TestBEDZeroLengthSkipped(t *testing.T) {
	rep := &recordingReporter{}
	list, stats, err := NewListFromBED(
		strings.NewReader("chr1\t0\t0\nchr1\t10\t20\n"),
		testDict(t), BEDOpts{Reporter: rep})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Len())
	assert.Equal(t, 1, stats.LengthZeroIntervals)
	assert.Equal(t, Interval{RefName: "chr1", Start: 11, End: 20}, list.Intervals()[0])
}

func TestBEDZeroLengthKept(t *testing.T) {
	rep := &recordingReporter{}
	list, stats, err := NewListFromBED(
		strings.NewReader("chr1\t0\t0\n"),
		testDict(t), BEDOpts{KeepLengthZeroIntervals: true, Reporter: rep})
	require.NoError(t, err)
	require.Equal(t, 1, list.Len())
	iv := list.Intervals()[0]
	assert.Equal(t, 1, iv.Start)
	assert.Equal(t, 0, iv.End)
	assert.Equal(t, 0, iv.Length())
	assert.Equal(t, 1, stats.LengthZeroIntervals)
	// Keeping zero-length intervals draws a warning in the summary.
	require.Len(t, rep.warnings, 1)
}

func TestBEDFromPath(t *testing.T) {
	dir, err := ioutil.TempDir("", "interval-bed")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "test.bed")
	require.NoError(t, ioutil.WriteFile(path, []byte("chr1\t0\t100\tfeatureA\t0\t+\n"), 0644))

	list, _, err := NewListFromBEDPath(vcontext.Background(), path, testDict(t), BEDOpts{})
	require.NoError(t, err)
	require.Equal(t, 1, list.Len())
	assert.Equal(t, "chr1:1-100:+:featureA", list.Intervals()[0].String())
}

func TestBEDStopsAtFirstError(t *testing.T) {
	// The second line is bad; the first must not mask the failure.
	_, _, err := NewListFromBED(
		strings.NewReader("chr1\t0\t10\nchr1\t5\t3\n"),
		testDict(t), BEDOpts{})
	require.Error(t, err)
	var cErr *CoordinateError
	assert.True(t, asError(err, &cErr))
}
