package interval

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/biogo/store/llrb"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/hts/sam"
)

// Interval is a single genomic interval with 1-based, closed coordinates.
// End == Start - 1 denotes a zero-length interval immediately before Start;
// the only form ever produced by the parsers is Start == 1, End == 0.
type Interval struct {
	RefName   string
	Start     int
	End       int
	NegStrand bool
	// Name is the feature name, or "" if the record is unnamed.
	Name string
}

// Length returns the number of bases the interval spans.  Zero-length
// intervals return 0.
func (iv Interval) Length() int {
	return iv.End - iv.Start + 1
}

func (iv Interval) strandByte() byte {
	if iv.NegStrand {
		return '-'
	}
	return '+'
}

func (iv Interval) String() string {
	s := fmt.Sprintf("%s:%d-%d:%c", iv.RefName, iv.Start, iv.End, iv.strandByte())
	if iv.Name != "" {
		s += ":" + iv.Name
	}
	return s
}

// List is an ordered collection of intervals together with the sequence
// dictionary (sam.Header) they are described against.
type List struct {
	header  *sam.Header
	byName  map[string]*sam.Reference
	entries []Interval
}

// NewList returns an empty List bound to the given dictionary.
func NewList(header *sam.Header) *List {
	l := &List{
		header: header,
		byName: make(map[string]*sam.Reference),
	}
	for _, ref := range header.Refs() {
		l.byName[ref.Name()] = ref
	}
	return l
}

// Header returns the dictionary the list is bound to.
func (l *List) Header() *sam.Header { return l.header }

// Ref looks up a contig by name in the list's dictionary.  Absence is an
// ordinary outcome, not an error.
func (l *List) Ref(name string) (*sam.Reference, bool) {
	ref, ok := l.byName[name]
	return ref, ok
}

// Add appends an interval.  The caller is expected to have validated it
// against the dictionary.
func (l *List) Add(iv Interval) {
	l.entries = append(l.entries, iv)
}

// Len returns the number of intervals in the list.
func (l *List) Len() int { return len(l.entries) }

// Intervals returns the intervals in their current order.  The returned
// slice is owned by the list.
func (l *List) Intervals() []Interval { return l.entries }

// TotalSpan returns the total number of bases covered, counting repeated
// coverage repeatedly.  Call Uniqued first for a deduplicated span.
func (l *List) TotalSpan() int64 {
	var n int64
	for _, iv := range l.entries {
		n += int64(iv.Length())
	}
	return n
}

// refID maps a contig name to its rank in the dictionary.  Contigs missing
// from the dictionary (possible only for lists assembled by hand) sort
// after all known ones.
func (l *List) refID(name string) int {
	if ref, ok := l.byName[name]; ok {
		return ref.ID()
	}
	return len(l.header.Refs())
}

// sortEntry adapts an Interval for llrb ordering.  seq is the insertion
// order; it breaks ties so that duplicate intervals survive tree insertion.
type sortEntry struct {
	iv    Interval
	refID int
	seq   int
}

func (e *sortEntry) Compare(c llrb.Comparable) int {
	o := c.(*sortEntry)
	if e.refID != o.refID {
		return e.refID - o.refID
	}
	if e.iv.Start != o.iv.Start {
		return e.iv.Start - o.iv.Start
	}
	if e.iv.End != o.iv.End {
		return e.iv.End - o.iv.End
	}
	if e.iv.NegStrand != o.iv.NegStrand {
		if o.iv.NegStrand {
			return -1
		}
		return 1
	}
	if c := strings.Compare(e.iv.Name, o.iv.Name); c != 0 {
		return c
	}
	return e.seq - o.seq
}

// Sorted returns a new List with the intervals in dictionary order:
// by contig rank, then start, end, strand, and name.  The input list is
// left untouched.
func (l *List) Sorted() *List {
	tree := llrb.Tree{}
	for i, iv := range l.entries {
		tree.Insert(&sortEntry{iv: iv, refID: l.refID(iv.RefName), seq: i})
	}
	result := NewList(l.header)
	tree.Do(func(item llrb.Comparable) bool {
		result.Add(item.(*sortEntry).iv)
		return false
	})
	return result
}

// Uniqued sorts the list and merges overlapping and abutting intervals on
// the same contig.  Merged intervals take the positive strand, and distinct
// names are joined with '|'.
func (l *List) Uniqued() *List {
	sorted := l.Sorted()
	result := NewList(l.header)
	var (
		cur     Interval
		names   []string
		pending bool
	)
	addName := func(name string) {
		if name == "" {
			return
		}
		for _, n := range names {
			if n == name {
				return
			}
		}
		names = append(names, name)
	}
	flush := func() {
		if !pending {
			return
		}
		cur.Name = strings.Join(names, "|")
		result.Add(cur)
		names = nil
		pending = false
	}
	for _, iv := range sorted.entries {
		if pending && iv.RefName == cur.RefName && iv.Start <= cur.End+1 {
			if iv.End > cur.End {
				cur.End = iv.End
			}
			addName(iv.Name)
			continue
		}
		flush()
		cur = Interval{RefName: iv.RefName, Start: iv.Start, End: iv.End}
		addName(iv.Name)
		pending = true
	}
	flush()
	return result
}

// WriteTo writes the list in interval_list format: the SAM header followed
// by one tab-separated record per interval.  Unnamed intervals get '.' in
// the name column.
func (l *List) WriteTo(w io.Writer) error {
	text, err := l.header.MarshalText()
	if err != nil {
		return err
	}
	if _, err = w.Write(text); err != nil {
		return err
	}
	if len(text) > 0 && text[len(text)-1] != '\n' {
		if _, err = w.Write([]byte{'\n'}); err != nil {
			return err
		}
	}
	tw := tsv.NewWriter(w)
	for _, iv := range l.entries {
		tw.WriteString(iv.RefName)
		tw.WriteUint32(uint32(iv.Start))
		tw.WriteUint32(uint32(iv.End))
		tw.WriteByte(iv.strandByte())
		if iv.Name == "" {
			tw.WriteByte('.')
		} else {
			tw.WriteString(iv.Name)
		}
		if err = tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Write writes the list in interval_list format to path.
func (l *List) Write(ctx context.Context, path string) (err error) {
	var out file.File
	if out, err = file.Create(ctx, path); err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	return l.WriteTo(out.Writer(ctx))
}
