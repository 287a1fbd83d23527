package negotiate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coregx/fte/ae"
	"github.com/coregx/fte/catalog"
	"github.com/coregx/fte/encoder"
	"github.com/coregx/fte/record"
)

// DefaultTimeout is the wall-clock budget a server allows itself to find a
// matching format before giving up.
const DefaultTimeout = 5 * time.Second

const requestSuffix = "-request"
const responseSuffix = "-response"

// Bound is the outcome of a successful Server.Bind: the format pair name
// and the two ends a server needs to keep talking to the client.
type Bound struct {
	Name    string
	Decoder *record.Decoder // bound to "<name>-request"; the negotiate cell is already consumed
	Encoder *record.Encoder // bound to "<name>-response"; ready to send replies
}

// Server probes a catalog's request-side formats against a client's first
// bytes until one decodes a valid NegotiateCell.
type Server struct {
	Catalog *catalog.Catalog
	K1, K2  []byte
	Timeout time.Duration
}

func (s *Server) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return DefaultTimeout
}

// Bind tries each "<name>-request" catalog entry against data (the
// client's first bytes) until one produces a valid NegotiateCell naming a
// known format pair, binding the server's encoder/decoder to that pair.
// It gives up with ErrNegotiateTimeout once ctx (or the server's own
// default deadline) expires with no successful decode, and also as soon as
// every candidate has been tried without one.
func (s *Server) Bind(ctx context.Context, data []byte) (*Bound, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	cipher, err := ae.New(s.K1, s.K2)
	if err != nil {
		return nil, err
	}

	for name, def := range s.Catalog.Formats {
		if err := ctx.Err(); err != nil {
			return nil, ErrNegotiateTimeout
		}
		base, ok := strings.CutSuffix(name, requestSuffix)
		if !ok {
			continue
		}

		reqEnc, err := encoder.New(def.Regex, def.FixedSlice, s.K1)
		if err != nil {
			continue
		}
		dec := record.NewDecoder(reqEnc, cipher)
		dec.Push(data)

		plaintext, err := dec.PopOne()
		if err != nil || len(plaintext) != CellLen {
			continue
		}
		_, language, err := DecodeCell(plaintext)
		if err != nil || language != name {
			continue
		}

		respName := base + responseSuffix
		respDef, err := s.Catalog.Get(respName)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, respName)
		}
		respEnc, err := encoder.New(respDef.Regex, respDef.FixedSlice, s.K1)
		if err != nil {
			return nil, err
		}

		return &Bound{
			Name:    base,
			Decoder: dec,
			Encoder: record.NewEncoder(respEnc, cipher),
		}, nil
	}

	return nil, ErrNegotiateTimeout
}
