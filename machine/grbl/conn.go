package grbl

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
)

// Grbl's serial receive buffer; the character-counting protocol keeps
// at most this many unacknowledged bytes in flight.
const rxBufferSize = 128

// ErrReset is returned from write methods when the controller resets
// before all queued commands have run.
var ErrReset = errors.New("grbl reset")

// Conn speaks the Grbl line protocol over a raw byte stream,
// counting characters so the controller's receive buffer never
// overflows.
type Conn struct {
	rw io.ReadWriter

	scan    *bufio.Scanner
	pending []byte
	ackCh   chan error
	resetCh chan struct{}
	closeCh chan struct{}

	ioMx    sync.Mutex
	writeMx sync.Mutex

	inFlight  int
	lineSizes []int

	sentLines  int64
	ackedLines int64
}

// NewConn wraps rw in a character-counting Grbl connection. The
// caller must pump Read to drive acknowledgements.
func NewConn(rw io.ReadWriter) *Conn {
	return &Conn{
		rw:      rw,
		scan:    bufio.NewScanner(rw),
		ackCh:   make(chan error),
		resetCh: make(chan struct{}, 1),
		closeCh: make(chan struct{}),
	}
}

// Close aborts in-progress writes and closes the underlying stream
// if it implements io.Closer.
func (c *Conn) Close() error {
	close(c.closeCh)
	if closer, ok := c.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *Conn) closed() bool {
	select {
	case <-c.closeCh:
		return true
	default:
		return false
	}
}

// nextAck consumes one acknowledgement, reset, or close event.
func (c *Conn) nextAck() error {
	if c.closed() {
		return io.ErrClosedPipe
	}

	select {
	case <-c.closeCh:
		return io.ErrClosedPipe
	case <-c.resetCh:
		c.inFlight = 0
		c.lineSizes = nil
		c.ackedLines = c.sentLines
		return ErrReset
	case err := <-c.ackCh:
		c.ackedLines++
		c.inFlight -= c.lineSizes[0]
		c.lineSizes = c.lineSizes[1:]
		return err
	}
}

func (c *Conn) waitForAck(id int64) (err error) {
	for c.ackedLines < id {
		e := c.nextAck()
		if err == nil {
			err = e
		}
	}
	return err
}

// sendLine blocks until the controller has buffer space, then writes
// the line and returns its sequence number.
func (c *Conn) sendLine(line []byte) (int64, error) {
	for c.inFlight+len(line) > rxBufferSize {
		if err := c.nextAck(); err != nil {
			return 0, err
		}
	}

	c.ioMx.Lock()
	_, err := c.rw.Write(line)
	c.ioMx.Unlock()
	if err != nil {
		return 0, err
	}

	c.inFlight += len(line)
	c.lineSizes = append(c.lineSizes, len(line))
	c.sentLines++
	return c.sentLines, nil
}

func scanLinesKeepNL(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i+1], nil
	}
	if atEOF {
		return len(data), data, io.ErrUnexpectedEOF
	}
	return 0, nil, nil
}

// ReadFrom streams lines to the controller and returns once every
// line has been acknowledged.
func (c *Conn) ReadFrom(r io.Reader) (n int64, err error) {
	c.writeMx.Lock()
	defer c.writeMx.Unlock()
	if c.closed() {
		return 0, io.ErrClosedPipe
	}

	scanner := bufio.NewScanner(r)
	scanner.Split(scanLinesKeepNL)

	lastID := c.sentLines
	for scanner.Scan() {
		lastID, err = c.sendLine(scanner.Bytes())
		if err != nil {
			return n, err
		}
		n += int64(len(scanner.Bytes()))
	}

	return n, c.waitForAck(lastID)
}

// Write sends p line by line and returns after all of it has run.
func (c *Conn) Write(p []byte) (int, error) {
	n, err := c.ReadFrom(bytes.NewReader(p))
	return int(n), err
}

// WriteByte bypasses character counting; use it for realtime
// commands like `?` and `!`.
func (c *Conn) WriteByte(p byte) error {
	if c.closed() {
		return io.ErrClosedPipe
	}
	c.ioMx.Lock()
	_, err := c.rw.Write([]byte{p})
	c.ioMx.Unlock()
	return err
}

// Read returns the next report line from the controller. Ack and
// reset lines are consumed internally but still surfaced to the
// caller.
func (c *Conn) Read(p []byte) (n int, err error) {
	if c.closed() {
		return 0, io.ErrClosedPipe
	}

	if c.pending != nil {
		if len(p) < len(c.pending) {
			return 0, io.ErrShortBuffer
		}
		n = copy(p, c.pending)
		c.pending = nil
		return n, nil
	}

	if !c.scan.Scan() {
		return 0, c.scan.Err()
	}
	data := c.scan.Bytes()

	if bytes.Equal(data, []byte("ok")) {
		select {
		case c.ackCh <- nil:
		case <-c.closeCh:
			return 0, io.ErrClosedPipe
		}
	} else if bytes.HasPrefix(data, []byte("error:")) {
		select {
		case c.ackCh <- errors.New(strings.TrimSpace(string(data))):
		case <-c.closeCh:
			return 0, io.ErrClosedPipe
		}
	} else if bytes.HasPrefix(data, []byte("Grbl")) {
		// version banner means the controller restarted
		select {
		case c.resetCh <- struct{}{}:
		default:
		}
	}

	if len(p) < len(data) {
		c.pending = data
		return 0, io.ErrShortBuffer
	}

	return copy(p, data), nil
}
