// Package fan lets repeated runs of a program read the same input. The first
// view to reach a byte pulls it from the source; later views replay it from
// the buffer.
package fan

import (
	"io"
	"sync"
)

// Input buffers everything read from its source.
type Input struct {
	src io.Reader

	mux sync.Mutex
	buf []byte
	err error // sticky error from src, returned once a view drains buf
}

func New(src io.Reader) *Input {
	return &Input{src: src}
}

// View returns a reader that starts at the beginning of the input.
func (in *Input) View() io.Reader {
	var off int // current reading index
	return readFunc(func(p []byte) (int, error) {
		in.mux.Lock()
		defer in.mux.Unlock()
		if off == len(in.buf) {
			if in.err != nil {
				return 0, in.err
			}
			if err := in.fill(len(p)); err != nil && off == len(in.buf) {
				return 0, err
			}
		}
		n := copy(p, in.buf[off:])
		off += n
		return n, nil
	})
}

// fill reads up to n more bytes from the source.
func (in *Input) fill(n int) error {
	chunk := make([]byte, n)
	read, err := in.src.Read(chunk)
	in.buf = append(in.buf, chunk[:read]...)
	if err != nil {
		in.err = err
	}
	return err
}

// Buffered reports how many bytes have been pulled from the source.
func (in *Input) Buffered() int {
	in.mux.Lock()
	defer in.mux.Unlock()
	return len(in.buf)
}

// readFunc follows the design of http.HandlerFunc, allowing us to create
// io.Reader functions that can exploit closured variables
type readFunc func(p []byte) (n int, err error)

func (rf readFunc) Read(p []byte) (n int, err error) { return rf(p) }
