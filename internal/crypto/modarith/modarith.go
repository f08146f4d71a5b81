// Package modarith implements the integer arithmetic shared by the curve
// engine and the RSA module: modular inverse, modular exponentiation and the
// Miller-Rabin probable-prime test.
//
// Every result is normalized into [0, |m|-1], whatever the sign of the
// inputs. None of these routines are constant-time.
package modarith

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/smallyu/go-cryptolab/pkg/cryptolab"
)

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
	two  = big.NewInt(2)
)

// smallPrimes are used for trial division before Miller-Rabin.
var smallPrimes = []int64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}

// mod returns a mod |m| in [0, |m|-1]. m must be non-zero.
func mod(a, m *big.Int) *big.Int {
	abs := new(big.Int).Abs(m)
	// big.Int.Mod is Euclidean: the result is already non-negative.
	return new(big.Int).Mod(a, abs)
}

// ModInverse returns the unique x in [0, |m|-1] with a·x ≡ 1 (mod m).
// It returns cryptolab.ErrNonInvertible when gcd(a, m) ≠ 1 or m is zero.
func ModInverse(a, m *big.Int) (*big.Int, error) {
	if m.Sign() == 0 {
		return nil, fmt.Errorf("modarith: inverse modulo zero: %w", cryptolab.ErrNonInvertible)
	}
	mAbs := new(big.Int).Abs(m)
	aRed := new(big.Int).Mod(a, mAbs)

	// Extended Euclid: gcd = x·aRed + y·mAbs.
	x := new(big.Int)
	gcd := new(big.Int).GCD(x, nil, aRed, mAbs)
	if gcd.Cmp(one) != 0 {
		return nil, fmt.Errorf("modarith: gcd(%s, %s) = %s: %w", a, m, gcd, cryptolab.ErrNonInvertible)
	}
	return x.Mod(x, mAbs), nil
}

// ModPow returns base^exponent mod |modulus| by left-to-right square-and-multiply.
//
// A zero exponent yields 1 mod |modulus|, so the result is 0 when |modulus| is 1.
// A negative exponent raises the inverse of base, and fails with
// cryptolab.ErrNonInvertible when that inverse does not exist.
func ModPow(base, exponent, modulus *big.Int) (*big.Int, error) {
	if modulus.Sign() == 0 {
		return nil, cryptolab.NewParamError("modulus", "must be non-zero", nil)
	}
	m := new(big.Int).Abs(modulus)
	b := new(big.Int).Mod(base, m)
	e := new(big.Int).Set(exponent)
	if e.Sign() < 0 {
		inv, err := ModInverse(b, m)
		if err != nil {
			return nil, err
		}
		b = inv
		e.Neg(e)
	}

	result := new(big.Int).Mod(one, m)
	for i := e.BitLen() - 1; i >= 0; i-- {
		result.Mul(result, result)
		result.Mod(result, m)
		if e.Bit(i) == 1 {
			result.Mul(result, b)
			result.Mod(result, m)
		}
	}
	return result, nil
}

// IsProbablyPrime reports whether n is prime using trial division by the
// primes up to 29 followed by `rounds` Miller-Rabin rounds with witnesses
// drawn from random. A composite survives with probability at most 4^-rounds.
func IsProbablyPrime(random io.Reader, n *big.Int, rounds int) (bool, error) {
	if rounds < 1 {
		return false, cryptolab.NewParamError("rounds", "must be at least 1", nil)
	}
	if n.Cmp(two) < 0 {
		return false, nil
	}

	r := new(big.Int)
	for _, sp := range smallPrimes {
		p := big.NewInt(sp)
		if r.Mod(n, p).Sign() == 0 {
			return n.Cmp(p) == 0, nil
		}
	}

	// n - 1 = d·2^s with d odd.
	nMinus1 := new(big.Int).Sub(n, one)
	s := nMinus1.TrailingZeroBits()
	d := new(big.Int).Rsh(nMinus1, s)

	// Witnesses are uniform in [2, n-2]: rand.Int gives [0, n-3).
	span := new(big.Int).Sub(n, big.NewInt(3))

	for i := 0; i < rounds; i++ {
		a, err := rand.Int(random, span)
		if err != nil {
			return false, fmt.Errorf("modarith: draw witness: %w", err)
		}
		a.Add(a, two)

		x, err := ModPow(a, d, n)
		if err != nil {
			return false, err
		}
		if x.Cmp(one) == 0 || x.Cmp(nMinus1) == 0 {
			continue
		}

		witness := true
		for j := uint(1); j < s; j++ {
			x.Mul(x, x)
			x.Mod(x, n)
			if x.Cmp(nMinus1) == 0 {
				witness = false
				break
			}
		}
		if witness {
			return false, nil
		}
	}
	return true, nil
}

// IsZero reports whether a ≡ 0 (mod m).
func IsZero(a, m *big.Int) bool {
	return mod(a, m).Cmp(zero) == 0
}
