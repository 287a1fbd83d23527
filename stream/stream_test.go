package stream

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/coregx/fte/ae"
	"github.com/coregx/fte/encoder"
	"github.com/coregx/fte/record"
)

func testConn(t *testing.T, transport net.Conn) *Conn {
	t.Helper()
	k1 := bytes.Repeat([]byte{0xFF}, ae.KeyLen)
	k2 := bytes.Repeat([]byte{0x00}, ae.KeyLen)
	enc, err := encoder.New("^[a-z0-9]{80}$", 80, k1)
	if err != nil {
		t.Fatalf("encoder.New: %v", err)
	}
	cipher, err := ae.New(k1, k2)
	if err != nil {
		t.Fatalf("ae.New: %v", err)
	}
	return NewConn(transport, record.NewEncoder(enc, cipher), record.NewDecoder(enc, cipher))
}

func TestSendRecvRoundTrip(t *testing.T) {
	clientTransport, serverTransport := net.Pipe()
	defer clientTransport.Close()
	defer serverTransport.Close()

	client := testConn(t, clientTransport)
	server := testConn(t, serverTransport)

	msg := []byte("hello over the wire")
	done := make(chan error, 1)
	go func() { done <- client.Send(msg) }()

	var got []byte
	for len(got) < len(msg) {
		chunk, err := server.Recv(4096)
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		got = append(got, chunk...)
	}
	if err := <-done; err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !bytes.Equal(got, msg) {
		t.Errorf("got %q, want %q", got, msg)
	}
}

func TestRecvReturnsPartialOnDeadline(t *testing.T) {
	clientTransport, serverTransport := net.Pipe()
	defer clientTransport.Close()
	defer serverTransport.Close()

	server := testConn(t, serverTransport)
	if err := server.SetReadDeadline(time.Now().Add(20 * time.Millisecond)); err != nil {
		t.Fatalf("SetReadDeadline: %v", err)
	}

	out, err := server.Recv(4096)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected no data before any send, got %d bytes", len(out))
	}
}

func TestCloseClosesTransport(t *testing.T) {
	clientTransport, serverTransport := net.Pipe()
	defer serverTransport.Close()

	client := testConn(t, clientTransport)
	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
