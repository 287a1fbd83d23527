// Package stream wraps a record.Encoder/Decoder pair around an underlying
// reliable ordered byte transport (anything satisfying io.ReadWriteCloser,
// including net.Conn), presenting Send/Recv/Close in place of record-layer
// push/pop.
package stream

import "errors"

// ErrClosed is returned by Recv once the underlying transport has closed
// and every already-buffered byte has been delivered.
var ErrClosed = errors.New("stream: closed")
