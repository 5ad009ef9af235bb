// Package flushio provides writers that buffer until flushed.
package flushio

import (
	"bufio"
	"io"
)

// WriteFlusher is an io.Writer that may buffer until Flush.
type WriteFlusher interface {
	io.Writer
	Flush() error
}

// Discard drops all writes.
var Discard WriteFlusher = nopFlusher{io.Discard}

// New returns w if it is already a WriteFlusher, a non-buffering wrapper
// around in-memory buffers like bytes.Buffer and strings.Builder, and
// otherwise a bufio.Writer.
func New(w io.Writer) WriteFlusher {
	switch w := w.(type) {
	case nil:
		return Discard
	case WriteFlusher:
		return w
	case interface {
		io.Writer
		Len() int
		Reset()
	}:
		return nopFlusher{w}
	}
	if w == io.Discard {
		return Discard
	}
	return bufio.NewWriter(w)
}

type nopFlusher struct{ io.Writer }

func (nf nopFlusher) Flush() error { return nil }

// Tee combines WriteFlushers into one that writes to and flushes each of
// them in order; nils and Discard are skipped.
func Tee(wfs ...WriteFlusher) WriteFlusher {
	var all tee
	for _, wf := range wfs {
		switch wf := wf.(type) {
		case nil:
		case tee:
			all = append(all, wf...)
		default:
			if wf != Discard {
				all = append(all, wf)
			}
		}
	}
	switch len(all) {
	case 0:
		return Discard
	case 1:
		return all[0]
	}
	return all
}

type tee []WriteFlusher

func (t tee) Write(p []byte) (int, error) {
	for _, wf := range t {
		n, err := wf.Write(p)
		if err != nil {
			return n, err
		}
		if n != len(p) {
			return n, io.ErrShortWrite
		}
	}
	return len(p), nil
}

func (t tee) Flush() (err error) {
	for _, wf := range t {
		if ferr := wf.Flush(); err == nil {
			err = ferr
		}
	}
	return err
}
