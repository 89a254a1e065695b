package interval

import (
	"errors"
	"fmt"
	"io"
)

// rewindCap bounds the number of bytes a RewindReader retains between
// Checkpoint and Rewind.  8 KiB covers any realistic BED or interval_list
// preamble.
const rewindCap = 8 << 10

// RewindReader wraps an io.Reader with a single bounded checkpoint,
// allowing a prefix of the stream to be re-read once.  Unlike seeking, this
// works uniformly for regular files, pipes, FIFOs, and stdin: the bytes
// read after Checkpoint are retained in memory and replayed after Rewind,
// so no byte is ever lost or delivered twice.
type RewindReader struct {
	r        io.Reader
	buf      []byte
	off      int
	capture  bool
	replay   bool
	overflow bool
}

// NewRewindReader returns a RewindReader reading from r.
func NewRewindReader(r io.Reader) *RewindReader {
	return &RewindReader{r: r}
}

// Checkpoint marks the current position.  A subsequent Rewind resumes
// reading from this position, provided fewer than rewindCap bytes were read
// in between.  Establishing a new checkpoint discards the previous one.
func (r *RewindReader) Checkpoint() {
	r.buf = r.buf[:0]
	r.off = 0
	r.capture = true
	r.replay = false
	r.overflow = false
}

// Rewind returns the read position to the last checkpoint.  It fails if no
// checkpoint was established, or if the reads since the checkpoint
// overflowed the retention buffer.
func (r *RewindReader) Rewind() error {
	if !r.capture {
		return errors.New("interval: Rewind without a checkpoint")
	}
	if r.overflow {
		return fmt.Errorf("interval: cannot rewind, more than %d bytes read since the checkpoint", rewindCap)
	}
	r.capture = false
	r.replay = true
	r.off = 0
	return nil
}

func (r *RewindReader) Read(p []byte) (int, error) {
	if r.replay {
		if r.off < len(r.buf) {
			n := copy(p, r.buf[r.off:])
			r.off += n
			return n, nil
		}
		r.replay = false
		r.buf = nil
	}
	n, err := r.r.Read(p)
	if r.capture && n > 0 {
		if len(r.buf)+n > rewindCap {
			r.overflow = true
			r.capture = false
			r.buf = nil
		} else {
			r.buf = append(r.buf, p[:n]...)
		}
	}
	return n, err
}
