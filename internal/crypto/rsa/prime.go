package rsa

import (
	"fmt"
	"io"
	"math/big"

	"github.com/smallyu/go-cryptolab/internal/crypto/modarith"
	"github.com/smallyu/go-cryptolab/pkg/cryptolab"
)

// GeneratePrime returns a probable prime of exactly the given bit length,
// using the default options.
func GeneratePrime(random io.Reader, bits int) (*big.Int, error) {
	return DefaultOptions().GeneratePrime(random, bits)
}

// GeneratePrime draws random integers of the requested bit length until one
// passes the Miller-Rabin test. It fails with cryptolab.ErrKeyGeneration after
// MaxPrimeAttempts candidates.
func (o Options) GeneratePrime(random io.Reader, bits int) (*big.Int, error) {
	if bits < 2 {
		return nil, cryptolab.NewParamError("bits", "a prime needs at least 2 bits", nil)
	}

	buf := make([]byte, (bits+7)/8)
	// Bits above the requested length in the leading byte.
	excess := uint(len(buf)*8 - bits)

	for attempt := 0; attempt < o.MaxPrimeAttempts; attempt++ {
		if _, err := io.ReadFull(random, buf); err != nil {
			return nil, fmt.Errorf("rsa: read candidate: %w", err)
		}
		buf[0] &= byte(0xff >> excess)
		// Force the top bit so the candidate has exactly `bits` bits.
		buf[0] |= byte(0x80 >> excess)

		candidate := new(big.Int).SetBytes(buf)
		if candidate.Cmp(one) <= 0 {
			continue
		}
		ok, err := modarith.IsProbablyPrime(random, candidate, o.Rounds)
		if err != nil {
			return nil, err
		}
		if ok {
			return candidate, nil
		}
	}
	return nil, fmt.Errorf("rsa: no %d-bit prime after %d candidates: %w",
		bits, o.MaxPrimeAttempts, cryptolab.ErrKeyGeneration)
}
