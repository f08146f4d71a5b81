package elgamal

import (
	"fmt"
	"io"
	"math/big"

	"github.com/fxamacker/cbor/v2"

	"github.com/smallyu/go-cryptolab/internal/crypto/curves"
)

// Valid returns true if the ciphertext passes basic validation: both
// components must be present and lie on curve c.
func (ct *Ciphertext) Valid(c *curves.Curve) bool {
	if ct == nil || c == nil {
		return false
	}
	return c.IsOnCurve(ct.C1) && c.IsOnCurve(ct.C2)
}

// plainCiphertext has the fields of Ciphertext without its methods, so cbor
// does not recurse into MarshalBinary/UnmarshalBinary.
type plainCiphertext Ciphertext

func (ct *Ciphertext) MarshalBinary() ([]byte, error) {
	return cbor.Marshal((*plainCiphertext)(ct))
}

func (ct *Ciphertext) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		return io.ErrShortBuffer
	}
	var p plainCiphertext
	if err := cbor.Unmarshal(data, &p); err != nil {
		return err
	}
	*ct = Ciphertext(p)
	return nil
}

// Trace lists the intermediate points of one encryption, for display.
type Trace struct {
	KG           curves.Point `json:"kG"`
	KQ           curves.Point `json:"kP"`
	MessagePoint curves.Point `json:"message_point"`
	C1           curves.Point `json:"C1"`
	C2           curves.Point `json:"C2"`
}

// Trace encodes m and encrypts it under nonce k, recording every step.
func (pub *PublicKey) Trace(m, k *big.Int) *Trace {
	c := pub.Params.Curve
	kG := c.ScalarMult(k, pub.Params.G)
	kQ := c.ScalarMult(k, pub.Q)
	point := EncodeMessage(c, m)
	return &Trace{
		KG:           kG,
		KQ:           kQ,
		MessagePoint: point,
		C1:           kG,
		C2:           c.Add(kQ, point),
	}
}

// TraceMessage is Trace with a nonce drawn from random.
func (pub *PublicKey) TraceMessage(random io.Reader, m *big.Int) (*Trace, error) {
	if err := pub.Params.Validate(); err != nil {
		return nil, err
	}
	k, err := randScalar(random, pub.Params.N)
	if err != nil {
		return nil, fmt.Errorf("elgamal: draw nonce: %w", err)
	}
	return pub.Trace(m, k), nil
}

// Ciphertext returns the (C1, C2) pair recorded by the trace.
func (t *Trace) Ciphertext() *Ciphertext {
	return &Ciphertext{C1: t.C1, C2: t.C2}
}
