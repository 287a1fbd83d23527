package relay

import (
	"bytes"
	"net"
	"net/netip"
	"strings"
	"testing"

	"github.com/coregx/fte/catalog"
)

func testConfig(t *testing.T, mode string) RelayConfig {
	t.Helper()
	key, err := ParseKey(strings.Repeat("ff", 16) + strings.Repeat("00", 16))
	if err != nil {
		t.Fatalf("ParseKey: %v", err)
	}
	return RelayConfig{
		Mode:             mode,
		ClientAddr:       netip.MustParseAddrPort("127.0.0.1:1"),
		ServerAddr:       netip.MustParseAddrPort("127.0.0.1:2"),
		UpstreamFormat:   "words-request",
		DownstreamFormat: "words-response",
		Release:          "20131224",
		Key:              key,
	}
}

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Release: "20131224",
		Formats: map[string]catalog.FormatDef{
			"words-request":  {Regex: "^([a-z]+ )+[a-z]+$", FixedSlice: 256},
			"words-response": {Regex: "^([a-z]+ )+[a-z]+$", FixedSlice: 256},
		},
	}
}

func TestAddrsClientMode(t *testing.T) {
	r := New(testConfig(t, "client"), testCatalog())
	local, peer, err := r.addrs()
	if err != nil {
		t.Fatalf("addrs: %v", err)
	}
	if local != r.Config.ClientAddr || peer != r.Config.ServerAddr {
		t.Errorf("client mode should listen on ClientAddr and peer ServerAddr, got local=%s peer=%s", local, peer)
	}
}

func TestAddrsServerMode(t *testing.T) {
	r := New(testConfig(t, "server"), testCatalog())
	local, peer, err := r.addrs()
	if err != nil {
		t.Fatalf("addrs: %v", err)
	}
	if local != r.Config.ServerAddr || peer != r.Config.ClientAddr {
		t.Errorf("server mode should listen on ServerAddr and peer ClientAddr, got local=%s peer=%s", local, peer)
	}
}

func TestAddrsUnknownMode(t *testing.T) {
	r := New(testConfig(t, "bogus"), testCatalog())
	if _, _, err := r.addrs(); err == nil {
		t.Fatal("expected an error for an unknown mode")
	}
}

func TestWrapRoundTrip(t *testing.T) {
	clientSide, serverSide := net.Pipe()
	defer clientSide.Close()
	defer serverSide.Close()

	client := New(testConfig(t, "client"), testCatalog())
	server := New(testConfig(t, "server"), testCatalog())

	clientWrapped, err := client.wrap(clientSide)
	if err != nil {
		t.Fatalf("client.wrap: %v", err)
	}
	serverWrapped, err := server.wrap(serverSide)
	if err != nil {
		t.Fatalf("server.wrap: %v", err)
	}

	msg := []byte("ping")
	sendErr := make(chan error, 1)
	go func() { sendErr <- clientWrapped.Send(msg) }()

	got, err := serverWrapped.Recv(len(msg))
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if err := <-sendErr; err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !bytes.Equal(got, msg) {
		t.Errorf("got %q, want %q", got, msg)
	}
}

func TestPIDFileLifecycle(t *testing.T) {
	path := t.TempDir() + "/relay.pid"
	pf := PIDFile{Path: path}

	if err := pf.Write(); err != nil {
		t.Fatalf("Write: %v", err)
	}
	pid, err := pf.ReadPID()
	if err != nil {
		t.Fatalf("ReadPID: %v", err)
	}
	if pid <= 0 {
		t.Errorf("got pid %d, want a positive value", pid)
	}
	if err := pf.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := pf.Remove(); err != nil {
		t.Errorf("Remove on an already-removed file should not error, got %v", err)
	}
}

func TestParseKeyRejectsWrongLength(t *testing.T) {
	if _, err := ParseKey("ab"); err == nil {
		t.Fatal("expected an error for a too-short key")
	}
}
