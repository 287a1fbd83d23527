package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/projectdiscovery/gologger"

	"github.com/coregx/fte/catalog"
	"github.com/coregx/fte/encoder"
	"github.com/coregx/fte/internal/runner"
	"github.com/coregx/fte/relay"
)

func main() {
	opts := runner.ParseFlags()

	if opts.Stop {
		if err := doStop(opts); err != nil {
			gologger.Fatal().Msgf("fte: stop: %v", err)
		}
		return
	}

	cat, err := catalog.Load(opts.CatalogPath())
	if err != nil {
		gologger.Fatal().Msgf("fte: loading catalog: %v", err)
	}

	if opts.Estimate != "" {
		if err := doEstimate(cat, opts.Estimate); err != nil {
			gologger.Fatal().Msgf("fte: estimate: %v", err)
		}
		return
	}

	cfg, err := opts.ToRelayConfig()
	if err != nil {
		gologger.Fatal().Msgf("fte: %v", err)
	}

	var pidFile relay.PIDFile
	if opts.PIDFile != "" {
		pidFile = relay.PIDFile{Path: opts.PIDFile}
		if err := pidFile.Write(); err != nil {
			gologger.Warning().Msgf("fte: failed to write pid file: %v", err)
		}
		defer pidFile.Remove()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	r := relay.New(cfg, cat)
	if err := r.ListenAndServe(ctx); err != nil {
		gologger.Fatal().Msgf("fte: %v", err)
	}
}

func doStop(opts *runner.Options) error {
	if opts.PIDFile == "" {
		return fmt.Errorf("--pidfile is required with --stop")
	}
	pidFile := relay.PIDFile{Path: opts.PIDFile}
	pid, err := pidFile.ReadPID()
	if err != nil {
		return err
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := proc.Signal(syscall.SIGINT); err != nil {
		return fmt.Errorf("signaling pid %d: %w", pid, err)
	}
	return pidFile.Remove()
}

// doEstimate prints the ranked prefix length (max_len) and the per-cell
// payload capacity in bytes for name, mirroring fte/encoder.py's
// getCapacity() debug helper.
func doEstimate(cat *catalog.Catalog, name string) error {
	def, err := cat.Get(name)
	if err != nil {
		return err
	}
	enc, err := buildEstimateEncoder(def)
	if err != nil {
		return err
	}
	gologger.Info().Msgf("format %q: max_len=%d capacity_bytes=%d", name, enc.MaxLen(), enc.CapacityBytes())
	return nil
}

// buildEstimateEncoder compiles def's language under a throwaway key:
// capacity and max_len depend only on the regex and fixed slice, not on key
// material, so estimation never needs the real AE keys.
func buildEstimateEncoder(def catalog.FormatDef) (*encoder.Encoder, error) {
	return encoder.New(def.Regex, def.FixedSlice, make([]byte, 16))
}
