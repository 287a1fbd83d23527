package relay

import (
	"encoding/hex"
	"fmt"
	"net/netip"
)

// RelayConfig is the parsed, validated form of the relay CLI surface: no
// package-level globals, threaded explicitly through Relay's constructor,
// in place of the original proxy's global mutable conf dict.
type RelayConfig struct {
	Mode                             string // "client" or "server"
	ClientAddr, ServerAddr           netip.AddrPort
	UpstreamFormat, DownstreamFormat string
	Release                          string
	Key                              [32]byte
	Quiet                            bool
}

// K1 and K2 split Key into the two 16-byte AE keys, matching the
// "--key (64 hex chars for K1‖K2)" CLI convention.
func (c RelayConfig) K1() []byte { return append([]byte(nil), c.Key[:16]...) }
func (c RelayConfig) K2() []byte { return append([]byte(nil), c.Key[16:]...) }

// ParseKey decodes a 64-character hex string into the K1‖K2 key pair.
func ParseKey(hexKey string) ([32]byte, error) {
	var key [32]byte
	bin, err := hex.DecodeString(hexKey)
	if err != nil {
		return key, fmt.Errorf("relay: invalid --key: %w", err)
	}
	if len(bin) != 32 {
		return key, fmt.Errorf("relay: --key must decode to 32 bytes, got %d", len(bin))
	}
	copy(key[:], bin)
	return key, nil
}
