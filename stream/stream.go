package stream

import (
	"bytes"
	"errors"
	"io"
	"time"

	"github.com/coregx/fte/record"
)

// deadliner is satisfied by net.Conn. Conn uses it when the underlying
// transport supports it, without importing net directly.
type deadliner interface {
	SetReadDeadline(t time.Time) error
}

type timeouter interface {
	Timeout() bool
}

// Conn presents Send/Recv/Close over an underlying reliable ordered byte
// transport, pushing application bytes through a record.Encoder on the way
// out and a record.Decoder on the way in. enc and dec may be bound to
// different formats, as a relay's upstream and downstream directions
// usually are.
type Conn struct {
	transport io.ReadWriteCloser
	enc       *record.Encoder
	dec       *record.Decoder

	readBuf bytes.Buffer
	readErr error
}

func NewConn(transport io.ReadWriteCloser, enc *record.Encoder, dec *record.Decoder) *Conn {
	return &Conn{transport: transport, enc: enc, dec: dec}
}

// Send pushes p through the Encoder and writes every byte it produces to
// the transport.
func (c *Conn) Send(p []byte) error {
	c.enc.Push(p)
	out, err := c.enc.Pop()
	if err != nil {
		return err
	}
	if len(out) == 0 {
		return nil
	}
	_, err = c.transport.Write(out)
	return err
}

// Recv returns up to n bytes of decoded application data, blocking until
// at least one byte is available, the transport closes, or the read
// deadline (if any) expires. A read-deadline expiry is not an error: Recv
// returns whatever is already buffered, which may be empty.
func (c *Conn) Recv(n int) ([]byte, error) {
	readBuf := make([]byte, 32*1024)
	for c.readBuf.Len() == 0 {
		if c.readErr != nil {
			return nil, c.readErr
		}

		nr, err := c.transport.Read(readBuf)
		if nr > 0 {
			c.dec.Push(readBuf[:nr])
			out, decErr := c.dec.Pop()
			if len(out) > 0 {
				c.readBuf.Write(out)
			}
			if decErr != nil && !isRecoverable(decErr) {
				c.readErr = decErr
			}
		}

		if err != nil {
			var te timeouter
			if errors.As(err, &te) && te.Timeout() {
				return c.drain(n), nil
			}
			if errors.Is(err, io.EOF) {
				c.readErr = ErrClosed
			} else {
				c.readErr = err
			}
		}
	}
	return c.drain(n), nil
}

func (c *Conn) drain(n int) []byte {
	size := n
	if size > c.readBuf.Len() {
		size = c.readBuf.Len()
	}
	if size == 0 {
		return nil
	}
	out := make([]byte, size)
	c.readBuf.Read(out)
	return out
}

func isRecoverable(err error) bool {
	return errors.Is(err, record.ErrShortCovertext) ||
		errors.Is(err, record.ErrShortHeader) ||
		errors.Is(err, record.ErrShortCiphertext)
}

// SetReadDeadline passes a read deadline through to the underlying
// transport, if it supports one (as net.Conn does).
func (c *Conn) SetReadDeadline(t time.Time) error {
	d, ok := c.transport.(deadliner)
	if !ok {
		return errors.New("stream: underlying transport does not support read deadlines")
	}
	return d.SetReadDeadline(t)
}

// Close flushes any output still pending in the Encoder, then closes the
// underlying transport.
func (c *Conn) Close() error {
	out, err := c.enc.Pop()
	if err == nil && len(out) > 0 {
		c.transport.Write(out)
	}
	return c.transport.Close()
}
