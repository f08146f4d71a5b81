// Package elgamal implements Elgamal-style encryption over the curves engine.
//
// A ciphertext is the pair (C1, C2) = (k·G, k·Q + M) for a public key Q and an
// ephemeral nonce k drawn from [1, n-1]. Two entry points exist: Encrypt masks
// an arbitrary point, EncryptMessage first encodes an integer as a point with
// EncodeMessage.
//
// The group order n is a declared parameter and is never derived from the
// curve. With the demonstration curve it is 19, although the generator has
// order 18.
package elgamal

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/smallyu/go-cryptolab/internal/crypto/curves"
	"github.com/smallyu/go-cryptolab/pkg/cryptolab"
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// Params holds the curve, generator and declared order shared by a keypair.
type Params struct {
	Curve *curves.Curve
	G     curves.Point
	N     *big.Int
}

// DefaultParams returns the demonstration parameters:
// y² = x³ + 7 mod 17, G = (15, 13), n = 19.
func DefaultParams() *Params {
	return &Params{
		Curve: curves.Demo(),
		G:     curves.NewPointInt64(cryptolab.DefaultGx, cryptolab.DefaultGy),
		N:     big.NewInt(cryptolab.DefaultOrder),
	}
}

// Secp256k1Params returns parameters over the secp256k1 field with its base
// point and true order.
func Secp256k1Params() *Params {
	c, g, n := curves.Secp256k1()
	return &Params{Curve: c, G: g, N: n}
}

// Validate checks that the parameters can be used for key generation and
// encryption. It does not check that G lies on the curve.
func (p *Params) Validate() error {
	if p == nil || p.Curve == nil {
		return cryptolab.NewParamError("curve", "is required", nil)
	}
	if p.G.IsInfinity() {
		return cryptolab.NewParamError("generator", "must be an affine point", nil)
	}
	if p.N == nil || p.N.Cmp(two) < 0 {
		return cryptolab.NewParamError("order", "must be at least 2", nil)
	}
	return nil
}

// PublicKey is Q = d·G.
type PublicKey struct {
	Params *Params
	Q      curves.Point
}

// PrivateKey holds the secret scalar d in [1, n-1].
type PrivateKey struct {
	PublicKey
	D *big.Int
}

// Ciphertext is the pair (C1, C2).
type Ciphertext struct {
	// C1 = k·G
	C1 curves.Point `json:"C1" cbor:"1,keyasint"`
	// C2 = k·Q + M
	C2 curves.Point `json:"C2" cbor:"2,keyasint"`
}

// randScalar draws a scalar uniformly from [1, n-1].
func randScalar(random io.Reader, n *big.Int) (*big.Int, error) {
	k, err := rand.Int(random, new(big.Int).Sub(n, one))
	if err != nil {
		return nil, err
	}
	return k.Add(k, one), nil
}

// GenerateKey draws d uniformly from [1, n-1] and computes Q = d·G.
func GenerateKey(random io.Reader, params *Params) (*PrivateKey, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	d, err := randScalar(random, params.N)
	if err != nil {
		return nil, fmt.Errorf("elgamal: draw private key: %w", err)
	}
	return NewPrivateKey(params, d), nil
}

// NewPrivateKey derives the keypair for a given secret scalar d.
func NewPrivateKey(params *Params, d *big.Int) *PrivateKey {
	return &PrivateKey{
		PublicKey: PublicKey{
			Params: params,
			Q:      params.Curve.ScalarMult(d, params.G),
		},
		D: new(big.Int).Set(d),
	}
}

// Encrypt masks the point m with a fresh nonce drawn from random.
func (pub *PublicKey) Encrypt(random io.Reader, m curves.Point) (*Ciphertext, error) {
	if err := pub.Params.Validate(); err != nil {
		return nil, err
	}
	k, err := randScalar(random, pub.Params.N)
	if err != nil {
		return nil, fmt.Errorf("elgamal: draw nonce: %w", err)
	}
	return pub.EncryptWithNonce(m, k), nil
}

// EncryptWithNonce returns (k·G, k·Q + m). The caller is responsible for never
// reusing k.
func (pub *PublicKey) EncryptWithNonce(m curves.Point, k *big.Int) *Ciphertext {
	c := pub.Params.Curve
	return &Ciphertext{
		C1: c.ScalarMult(k, pub.Params.G),
		C2: c.Add(c.ScalarMult(k, pub.Q), m),
	}
}

// EncodeMessage maps an integer m to the point (m, (m³ + b) mod p).
//
// This is a demonstration encoding, not a secure one: the result is usually
// not on the curve, and decryption recovers m only when it is.
func EncodeMessage(c *curves.Curve, m *big.Int) curves.Point {
	y := new(big.Int).Mul(m, m)
	y.Mul(y, m)
	y.Add(y, c.B())
	y.Mod(y, c.P())
	return curves.NewPoint(m, y)
}

// EncryptMessage encodes m with EncodeMessage and encrypts the resulting
// point. The encoded point is returned alongside the ciphertext.
func (pub *PublicKey) EncryptMessage(random io.Reader, m *big.Int) (*Ciphertext, curves.Point, error) {
	if err := pub.Params.Validate(); err != nil {
		return nil, curves.Point{}, err
	}
	point := EncodeMessage(pub.Params.Curve, m)
	ct, err := pub.Encrypt(random, point)
	if err != nil {
		return nil, curves.Point{}, err
	}
	return ct, point, nil
}

// Decrypt returns C2 - d·C1. The result is the point at infinity when the
// ciphertext masked the identity or was not produced for this key; callers
// must check for it.
func (priv *PrivateKey) Decrypt(ct *Ciphertext) curves.Point {
	c := priv.Params.Curve
	s := c.ScalarMult(priv.D, ct.C1)
	return c.Add(ct.C2, c.Negate(s))
}

// DecryptMessage decrypts ct and returns the x coordinate of the recovered
// point. ok is false when decryption yields the point at infinity.
func (priv *PrivateKey) DecryptMessage(ct *Ciphertext) (*big.Int, bool) {
	x, _, ok := priv.Decrypt(ct).Coords()
	return x, ok
}
