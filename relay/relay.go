package relay

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/netip"

	"github.com/projectdiscovery/gologger"

	"github.com/coregx/fte/ae"
	"github.com/coregx/fte/catalog"
	"github.com/coregx/fte/encoder"
	"github.com/coregx/fte/record"
	"github.com/coregx/fte/stream"
)

// Relay pairs a local listener with a remote dial target, wrapping the
// network-facing side of each accepted connection in FTE's record/stream
// layers. Grounded on fteproxy's relay.listener/worker pair
// (original_source/fteproxy/relay.py): accept, dial the peer, run two
// directional copy loops, and keep listening if one connection pair
// fails, rather than a goroutine-per-thread translation of its run loop.
type Relay struct {
	Config  RelayConfig
	Catalog *catalog.Catalog
}

func New(cfg RelayConfig, cat *catalog.Catalog) *Relay {
	return &Relay{Config: cfg, Catalog: cat}
}

// ListenAndServe binds the relay's local address and, for every accepted
// connection, dials the peer address and pairs the two, wrapping the
// peer-facing side in FTE. It returns an error if the local address cannot
// be bound; otherwise it blocks until ctx is cancelled, logging and skipping
// any failed Accept.
func (r *Relay) ListenAndServe(ctx context.Context) error {
	local, peer, err := r.addrs()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", local.String())
	if err != nil {
		return fmt.Errorf("relay: listen %s: %w", local, err)
	}
	defer ln.Close()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	if !r.Config.Quiet {
		gologger.Info().Msgf("relay: %s mode listening on %s, forwarding to %s", r.Config.Mode, local, peer)
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			gologger.Warning().Msgf("relay: accept: %v", err)
			continue
		}
		go r.pair(conn, peer)
	}
}

func (r *Relay) addrs() (local, peer netip.AddrPort, err error) {
	switch r.Config.Mode {
	case "client":
		return r.Config.ClientAddr, r.Config.ServerAddr, nil
	case "server":
		return r.Config.ServerAddr, r.Config.ClientAddr, nil
	default:
		return netip.AddrPort{}, netip.AddrPort{}, fmt.Errorf("relay: unknown mode %q", r.Config.Mode)
	}
}

// pair dials peerAddr, wraps that leg in FTE, and pumps bytes bidirectionally
// between it and the already-accepted plaintext leg until either side
// closes.
func (r *Relay) pair(plain net.Conn, peerAddr netip.AddrPort) {
	defer plain.Close()

	remote, err := net.Dial("tcp", peerAddr.String())
	if err != nil {
		gologger.Warning().Msgf("relay: dial %s: %v", peerAddr, err)
		return
	}
	defer remote.Close()

	wrapped, err := r.wrap(remote)
	if err != nil {
		gologger.Warning().Msgf("relay: wrap %s: %v", peerAddr, err)
		return
	}
	defer wrapped.Close()

	done := make(chan struct{}, 2)
	go copyPlainToWrapped(plain, wrapped, done)
	go copyWrappedToPlain(wrapped, plain, done)
	<-done
	<-done
}

// wrap binds a dialed TCP connection to a stream.Conn using this relay's
// formats: a client sends under UpstreamFormat and receives under
// DownstreamFormat; a server, on the other end of the same pipe, does the
// reverse.
func (r *Relay) wrap(conn net.Conn) (*stream.Conn, error) {
	cipher, err := ae.New(r.Config.K1(), r.Config.K2())
	if err != nil {
		return nil, err
	}

	sendFormat, recvFormat := r.Config.UpstreamFormat, r.Config.DownstreamFormat
	if r.Config.Mode == "server" {
		sendFormat, recvFormat = r.Config.DownstreamFormat, r.Config.UpstreamFormat
	}

	sendDef, err := r.Catalog.Get(sendFormat)
	if err != nil {
		return nil, err
	}
	recvDef, err := r.Catalog.Get(recvFormat)
	if err != nil {
		return nil, err
	}

	sendEnc, err := encoder.New(sendDef.Regex, sendDef.FixedSlice, r.Config.K1())
	if err != nil {
		return nil, err
	}
	recvEnc, err := encoder.New(recvDef.Regex, recvDef.FixedSlice, r.Config.K1())
	if err != nil {
		return nil, err
	}

	return stream.NewConn(conn, record.NewEncoder(sendEnc, cipher), record.NewDecoder(recvEnc, cipher)), nil
}

func copyPlainToWrapped(plain io.Reader, wrapped *stream.Conn, done chan<- struct{}) {
	defer func() { done <- struct{}{} }()
	buf := make([]byte, 32*1024)
	for {
		n, err := plain.Read(buf)
		if n > 0 {
			if sendErr := wrapped.Send(buf[:n]); sendErr != nil {
				gologger.Warning().Msgf("relay: send: %v", sendErr)
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func copyWrappedToPlain(wrapped *stream.Conn, plain io.Writer, done chan<- struct{}) {
	defer func() { done <- struct{}{} }()
	for {
		chunk, err := wrapped.Recv(32 * 1024)
		if len(chunk) > 0 {
			if _, werr := plain.Write(chunk); werr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}
