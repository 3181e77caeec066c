package transport

import (
	"io"

	"github.com/smallnest/ringbuffer"
)

// Loopback builds an in-process full-duplex PCM stream backed by a pair of
// blocking ring buffers. One end is connected to a transport's Endpoint, the
// other is handed to the local client (or test harness). Unlike net.Pipe,
// writes complete as long as buffer space is available, which matches how a
// kernel PCM FIFO behaves.
func Loopback(size int) (endpoint, client io.ReadWriteCloser) {
	a := ringbuffer.New(size).SetBlocking(true)
	b := ringbuffer.New(size).SetBlocking(true)
	return &loopEnd{rd: a, wr: b}, &loopEnd{rd: b, wr: a}
}

type loopEnd struct {
	rd *ringbuffer.RingBuffer
	wr *ringbuffer.RingBuffer
}

// Read blocks until data arrives or the peer closes.
func (l *loopEnd) Read(p []byte) (int, error) {
	return l.rd.Read(p)
}

// Write blocks until everything fits or the peer closes.
func (l *loopEnd) Write(p []byte) (int, error) {
	return l.wr.Write(p)
}

// Close shuts down both directions; pending reads and writes on either end
// unblock with an error.
func (l *loopEnd) Close() error {
	l.wr.CloseWriter()
	l.rd.CloseWithError(io.ErrClosedPipe)
	return nil
}
