// Package rsa implements textbook RSA: key generation from Miller-Rabin
// probable primes, and raw modular-exponentiation encryption.
//
// There is no padding. A message must be an integer in [0, n); larger values
// are silently reduced mod n and cannot be recovered.
package rsa

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/smallyu/go-cryptolab/internal/crypto/modarith"
	"github.com/smallyu/go-cryptolab/pkg/cryptolab"
)

var (
	one = big.NewInt(1)
)

// PublicKey is the pair (e, n).
type PublicKey struct {
	E *big.Int // public exponent, always 65537
	N *big.Int // modulus n = p * q
}

// PrivateKey is the pair (d, n). The prime factors are kept for DecryptCRT.
type PrivateKey struct {
	PublicKey
	D      *big.Int    // e^-1 mod (p-1)(q-1)
	Primes [2]*big.Int // p, q
}

// Options bounds the randomized searches performed during key generation.
type Options struct {
	// Rounds is the number of Miller-Rabin rounds per candidate.
	Rounds int
	// MaxPrimeAttempts caps the candidates drawn for a single prime.
	MaxPrimeAttempts int
	// MaxKeyAttempts caps how many prime pairs are tried before giving up.
	MaxKeyAttempts int
	// MaxBits is the largest modulus size accepted.
	MaxBits int
}

// DefaultOptions returns the options used by GenerateKey and GeneratePrime.
func DefaultOptions() Options {
	return Options{
		Rounds:           cryptolab.DefaultMRRounds,
		MaxPrimeAttempts: 100000,
		MaxKeyAttempts:   64,
		MaxBits:          4096,
	}
}

// GenerateKey generates an RSA keypair whose modulus is the product of two
// bits/2-bit primes, using the default options.
func GenerateKey(random io.Reader, bits int) (*PrivateKey, error) {
	return DefaultOptions().GenerateKey(random, bits)
}

// GenerateKey generates an RSA keypair. When e = 65537 has no inverse modulo
// φ(n) the primes are discarded and new ones drawn, up to MaxKeyAttempts times.
func (o Options) GenerateKey(random io.Reader, bits int) (*PrivateKey, error) {
	if bits < cryptolab.MinRSABits {
		return nil, cryptolab.NewParamError("bits", fmt.Sprintf("must be at least %d", cryptolab.MinRSABits), nil)
	}
	if o.MaxBits > 0 && bits > o.MaxBits {
		return nil, cryptolab.NewParamError("bits", fmt.Sprintf("must be at most %d", o.MaxBits), nil)
	}

	e := big.NewInt(cryptolab.PublicExponent)
	var lastErr error

	for attempt := 0; attempt < o.MaxKeyAttempts; attempt++ {
		// 1. Choose two distinct primes p and q
		p, err := o.GeneratePrime(random, bits/2)
		if err != nil {
			return nil, err
		}
		q, err := o.GeneratePrime(random, bits/2)
		if err != nil {
			return nil, err
		}
		if p.Cmp(q) == 0 {
			continue
		}

		// 2. Compute n = p * q and φ = (p-1)(q-1)
		n := new(big.Int).Mul(p, q)
		phi := new(big.Int).Mul(new(big.Int).Sub(p, one), new(big.Int).Sub(q, one))

		// 3. Compute d = e^-1 mod φ
		d, err := modarith.ModInverse(e, phi)
		if errors.Is(err, cryptolab.ErrNonInvertible) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}

		return &PrivateKey{
			PublicKey: PublicKey{
				E: new(big.Int).Set(e),
				N: n,
			},
			D:      d,
			Primes: [2]*big.Int{p, q},
		}, nil
	}

	if lastErr == nil {
		lastErr = errors.New("no distinct prime pair found")
	}
	return nil, fmt.Errorf("rsa: %d attempts: %w: %w", o.MaxKeyAttempts, cryptolab.ErrKeyGeneration, lastErr)
}

// Encrypt returns m^e mod n. m must be non-negative; values of n or more
// are reduced mod n first.
func (pub *PublicKey) Encrypt(m *big.Int) (*big.Int, error) {
	if m == nil || m.Sign() < 0 {
		return nil, cryptolab.NewParamError("message", "must be a non-negative integer", nil)
	}
	if err := pub.Validate(); err != nil {
		return nil, err
	}
	return modarith.ModPow(m, pub.E, pub.N)
}

// Decrypt returns c^d mod n.
func (priv *PrivateKey) Decrypt(c *big.Int) (*big.Int, error) {
	if c == nil || c.Sign() < 0 {
		return nil, cryptolab.NewParamError("ciphertext", "must be a non-negative integer", nil)
	}
	if priv.D == nil {
		return nil, cryptolab.NewParamError("d", "is required", nil)
	}
	if priv.N == nil || priv.N.Cmp(one) <= 0 {
		return nil, cryptolab.NewParamError("n", "must be greater than 1", nil)
	}
	return modarith.ModPow(c, priv.D, priv.N)
}

// Validate checks the public key is usable for encryption.
func (pub *PublicKey) Validate() error {
	if pub.E == nil || pub.E.Sign() <= 0 {
		return cryptolab.NewParamError("e", "must be a positive integer", nil)
	}
	if pub.N == nil || pub.N.Cmp(one) <= 0 {
		return cryptolab.NewParamError("n", "must be greater than 1", nil)
	}
	return nil
}
