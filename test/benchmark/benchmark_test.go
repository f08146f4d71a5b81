package benchmark

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"testing"

	"github.com/smallyu/go-cryptolab/internal/crypto/curves"
	"github.com/smallyu/go-cryptolab/internal/crypto/elgamal"
	"github.com/smallyu/go-cryptolab/internal/crypto/modarith"
	"github.com/smallyu/go-cryptolab/internal/crypto/rsa"
)

func BenchmarkScalarMultDemo(b *testing.B) {
	c := curves.Demo()
	g := curves.NewPointInt64(15, 13)
	k := big.NewInt(13)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.ScalarMult(k, g)
	}
}

func BenchmarkScalarMultSecp256k1(b *testing.B) {
	c, g, n := curves.Secp256k1()
	k, err := rand.Int(rand.Reader, n)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.ScalarMult(k, g)
	}
}

func BenchmarkPoints(b *testing.B) {
	c, err := curves.NewInt64(0, 7, 4093)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Points()
	}
}

func BenchmarkElgamalRoundTripSecp256k1(b *testing.B) {
	params := elgamal.Secp256k1Params()
	priv, err := elgamal.GenerateKey(rand.Reader, params)
	if err != nil {
		b.Fatal(err)
	}
	m := params.Curve.ScalarMult(big.NewInt(42), params.G)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ct, err := priv.Encrypt(rand.Reader, m)
		if err != nil {
			b.Fatal(err)
		}
		priv.Decrypt(ct)
	}
}

func BenchmarkIsProbablyPrime(b *testing.B) {
	// 2^127 - 1
	p := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := modarith.IsProbablyPrime(rand.Reader, p, 5); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRSAGenerateKey(b *testing.B) {
	for _, bits := range []int{64, 512} {
		b.Run(fmt.Sprintf("%dbit", bits), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := rsa.GenerateKey(rand.Reader, bits); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRSADecrypt(b *testing.B) {
	priv, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		b.Fatal(err)
	}
	c, err := priv.Encrypt(big.NewInt(12345))
	if err != nil {
		b.Fatal(err)
	}

	b.Run("plain", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := priv.Decrypt(c); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("crt", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := priv.DecryptCRT(c); err != nil {
				b.Fatal(err)
			}
		}
	})
}
