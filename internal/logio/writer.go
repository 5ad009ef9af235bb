// Package logio adapts line oriented output to a logging function.
package logio

import (
	"bytes"
	"sync"
)

// Writer is an io.Writer that logs each completed line through Logf,
// prefixed by Prefix. It is safe to use from multiple goroutines.
type Writer struct {
	Logf   func(mess string, args ...interface{})
	Prefix string

	mu  sync.Mutex
	buf bytes.Buffer
}

// Write buffers p, logging any lines it completes.
func (lw *Writer) Write(p []byte) (n int, err error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	lw.buf.Write(p)
	lw.logLines(false)
	return len(p), nil
}

// Flush logs any final partial line.
func (lw *Writer) Flush() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	lw.logLines(true)
	return nil
}

// Close calls Flush.
func (lw *Writer) Close() error { return lw.Flush() }

func (lw *Writer) logLines(all bool) {
	for lw.buf.Len() > 0 {
		i := bytes.IndexByte(lw.buf.Bytes(), '\n')
		switch {
		case i >= 0:
			lw.Logf("%s%s", lw.Prefix, lw.buf.Next(i))
			lw.buf.Next(1)
		case all:
			lw.Logf("%s%s", lw.Prefix, lw.buf.Next(lw.buf.Len()))
		default:
			return
		}
	}
}
