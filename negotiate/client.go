package negotiate

import (
	"github.com/coregx/fte/ae"
	"github.com/coregx/fte/encoder"
	"github.com/coregx/fte/record"
)

// Greet builds the covertext for a client's first send when negotiating
// format discovery: a NegotiateCell naming the "<name>-request"/
// "<name>-response" pair, encoded under the request-side format.
func Greet(requestEnc *encoder.Encoder, cipher *ae.Cipher, release, name string) ([]byte, error) {
	cell, err := EncodeCell(release, name+requestSuffix)
	if err != nil {
		return nil, err
	}
	enc := record.NewEncoder(requestEnc, cipher)
	enc.Push(cell)
	return enc.Pop()
}
