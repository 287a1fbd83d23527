// Package runner parses the fte relay's command-line surface into a
// validated Options value, the way alterx's internal/runner turns its own
// flag set into an Options before any work starts.
package runner

import (
	"fmt"
	"net/netip"
	"os"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/levels"

	"github.com/coregx/fte/relay"
)

// Options is the parsed form of every fte flag, before translation into a
// relay.RelayConfig.
type Options struct {
	Mode             string
	ClientIP         string
	ClientPort       int
	ServerIP         string
	ServerPort       int
	UpstreamFormat   string
	DownstreamFormat string
	Release          string
	Key              string
	CatalogDir       string
	PIDFile          string
	Quiet            bool
	Stop             bool
	Estimate         string
}

// ParseFlags builds Options from os.Args, fatally logging and exiting on a
// parse error or an out-of-range mode the way alterx's ParseFlags does.
func ParseFlags() *Options {
	opts := &Options{}
	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription(`Wraps a TCP stream in a format-transforming covertext so it matches a regular language instead of looking like the protocol it actually carries.`)

	flagSet.CreateGroup("mode", "Mode",
		flagSet.StringVarP(&opts.Mode, "mode", "m", "client", "relay mode (client, server)"),
		flagSet.BoolVar(&opts.Stop, "stop", false, "stop the relay process recorded in --pidfile and exit"),
	)

	flagSet.CreateGroup("endpoints", "Endpoints",
		flagSet.StringVar(&opts.ClientIP, "client_ip", "127.0.0.1", "client-side listen/dial address"),
		flagSet.IntVar(&opts.ClientPort, "client_port", 8079, "client-side listen/dial port"),
		flagSet.StringVar(&opts.ServerIP, "server_ip", "127.0.0.1", "server-side listen/dial address"),
		flagSet.IntVar(&opts.ServerPort, "server_port", 8080, "server-side listen/dial port"),
	)

	flagSet.CreateGroup("format", "Format",
		flagSet.StringVarP(&opts.UpstreamFormat, "upstream-format", "uf", "", "covertext format name the client sends under"),
		flagSet.StringVarP(&opts.DownstreamFormat, "downstream-format", "df", "", "covertext format name the server sends under"),
		flagSet.StringVar(&opts.Release, "release", "", "catalog release identifier"),
		flagSet.StringVar(&opts.CatalogDir, "catalog-dir", "formats", "directory holding <release>.json catalog files"),
		flagSet.StringVar(&opts.Key, "key", "", "64 hex character K1||K2 key pair"),
	)

	flagSet.CreateGroup("process", "Process",
		flagSet.StringVar(&opts.PIDFile, "pidfile", "", "path to write/read the relay's PID file"),
		flagSet.BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress informational logging"),
		flagSet.StringVar(&opts.Estimate, "estimate", "", "print capacity estimate for a catalog format name and exit"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("could not parse flags: %s\n", err)
	}

	if opts.Quiet {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}

	if opts.Estimate != "" {
		return opts
	}
	if opts.Stop {
		return opts
	}

	if opts.Mode != "client" && opts.Mode != "server" {
		gologger.Fatal().Msgf("invalid mode: %s (must be 'client' or 'server')", opts.Mode)
	}
	if opts.UpstreamFormat == "" || opts.DownstreamFormat == "" {
		gologger.Fatal().Msgf("--upstream-format and --downstream-format are required")
	}
	if opts.Key == "" {
		gologger.Fatal().Msgf("--key is required")
	}

	return opts
}

// ToRelayConfig translates parsed flags into the value relay.New consumes,
// resolving the client/server address pair and the K1||K2 key.
func (o *Options) ToRelayConfig() (relay.RelayConfig, error) {
	key, err := relay.ParseKey(o.Key)
	if err != nil {
		return relay.RelayConfig{}, err
	}

	clientAddr, err := addrPort(o.ClientIP, o.ClientPort)
	if err != nil {
		return relay.RelayConfig{}, fmt.Errorf("runner: client address: %w", err)
	}
	serverAddr, err := addrPort(o.ServerIP, o.ServerPort)
	if err != nil {
		return relay.RelayConfig{}, fmt.Errorf("runner: server address: %w", err)
	}

	return relay.RelayConfig{
		Mode:             o.Mode,
		ClientAddr:       clientAddr,
		ServerAddr:       serverAddr,
		UpstreamFormat:   o.UpstreamFormat,
		DownstreamFormat: o.DownstreamFormat,
		Release:          o.Release,
		Key:              key,
		Quiet:            o.Quiet,
	}, nil
}

func addrPort(ip string, port int) (netip.AddrPort, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return netip.AddrPort{}, err
	}
	if port < 0 || port > 65535 {
		return netip.AddrPort{}, fmt.Errorf("port %d out of range", port)
	}
	return netip.AddrPortFrom(addr, uint16(port)), nil
}

// CatalogPath resolves the catalog file this release loads from, joining
// CatalogDir with "<release>.json" the way fteproxy locates its format
// definitions relative to a configured formats directory.
func (o *Options) CatalogPath() string {
	return o.CatalogDir + string(os.PathSeparator) + o.Release + ".json"
}
