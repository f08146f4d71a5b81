// Package curves implements the group law of short Weierstrass curves
// y² = x³ + a·x + b over a prime field F_p, in affine coordinates.
//
// The engine never panics on caller input: points that are not on the curve
// are accepted (the result is then meaningless), and every place where an
// inverse is required checks invertibility explicitly and falls back to the
// point at infinity.
package curves

import (
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/smallyu/go-cryptolab/internal/crypto/modarith"
	"github.com/smallyu/go-cryptolab/pkg/cryptolab"
)

var (
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

// Curve is the immutable triple (a, b, p). Primality of p is the caller's
// responsibility and is not checked.
type Curve struct {
	a, b, p *big.Int
}

// New returns the curve y² = x³ + a·x + b (mod p). a and b are reduced mod p.
// p must be at least 2.
func New(a, b, p *big.Int) (*Curve, error) {
	if a == nil || b == nil || p == nil {
		return nil, cryptolab.NewParamError("curve", "a, b and p are required", nil)
	}
	if p.Cmp(two) < 0 {
		return nil, cryptolab.NewParamError("p", "modulus must be at least 2", nil)
	}
	mod := new(big.Int).Set(p)
	return &Curve{
		a: new(big.Int).Mod(a, mod),
		b: new(big.Int).Mod(b, mod),
		p: mod,
	}, nil
}

// NewInt64 is a convenience wrapper around New.
func NewInt64(a, b, p int64) (*Curve, error) {
	return New(big.NewInt(a), big.NewInt(b), big.NewInt(p))
}

// Demo returns the demonstration curve y² = x³ + 7 over F_17.
func Demo() *Curve {
	c, _ := NewInt64(cryptolab.DefaultA, cryptolab.DefaultB, cryptolab.DefaultP)
	return c
}

// Secp256k1 returns y² = x³ + 7 over the secp256k1 field together with its
// base point and order. It exists to run the affine engine on a large modulus;
// it is not a standards-compliant secp256k1 implementation.
func Secp256k1() (*Curve, Point, *big.Int) {
	params := secp256k1.S256().Params()
	c, _ := New(big.NewInt(0), params.B, params.P)
	return c, NewPoint(params.Gx, params.Gy), new(big.Int).Set(params.N)
}

func (c *Curve) A() *big.Int { return new(big.Int).Set(c.a) }
func (c *Curve) B() *big.Int { return new(big.Int).Set(c.b) }
func (c *Curve) P() *big.Int { return new(big.Int).Set(c.p) }

// Equation returns a human readable form of the curve.
func (c *Curve) Equation() string {
	return fmt.Sprintf("y² = x³ + %sx + %s mod %s", c.a, c.b, c.p)
}

func (c *Curve) String() string {
	return c.Equation()
}

// polynomial returns x³ + a·x + b mod p.
func (c *Curve) polynomial(x *big.Int) *big.Int {
	x3 := new(big.Int).Mul(x, x)
	x3.Mul(x3, x)
	ax := new(big.Int).Mul(c.a, x)
	x3.Add(x3, ax)
	x3.Add(x3, c.b)
	return x3.Mod(x3, c.p)
}

// reduce returns v mod p in [0, p-1].
func (c *Curve) reduce(v *big.Int) *big.Int {
	return new(big.Int).Mod(v, c.p)
}

// invert returns v⁻¹ mod p. ok is false when v has no inverse, which for a
// prime p only happens when v ≡ 0.
func (c *Curve) invert(v *big.Int) (*big.Int, bool) {
	inv, err := modarith.ModInverse(v, c.p)
	if err != nil {
		return nil, false
	}
	return inv, true
}

// IsOnCurve reports whether pt satisfies the curve equation.
// The point at infinity is always on the curve.
func (c *Curve) IsOnCurve(pt Point) bool {
	if pt.IsInfinity() {
		return true
	}
	y2 := new(big.Int).Mul(pt.y, pt.y)
	y2.Mod(y2, c.p)
	return y2.Cmp(c.polynomial(pt.x)) == 0
}

// Negate returns -pt = (x, -y mod p).
func (c *Curve) Negate(pt Point) Point {
	if pt.IsInfinity() {
		return Infinity()
	}
	ny := new(big.Int).Neg(pt.y)
	return Point{affine: true, x: new(big.Int).Set(pt.x), y: ny.Mod(ny, c.p)}
}

// Add returns p1 + p2.
func (c *Curve) Add(p1, p2 Point) Point {
	if p1.IsInfinity() {
		return p2
	}
	if p2.IsInfinity() {
		return p1
	}

	x1, y1 := c.reduce(p1.x), c.reduce(p1.y)
	x2, y2 := c.reduce(p2.x), c.reduce(p2.y)

	if x1.Cmp(x2) == 0 {
		if y1.Cmp(y2) != 0 {
			// p2 = -p1
			return Infinity()
		}
		return c.Double(p1)
	}

	dx := new(big.Int).Sub(x2, x1)
	inv, ok := c.invert(dx)
	if !ok {
		return Infinity()
	}

	// s = (y2 - y1) / (x2 - x1)
	s := new(big.Int).Sub(y2, y1)
	s.Mul(s, inv)
	s.Mod(s, c.p)

	// x3 = s² - x1 - x2
	x3 := new(big.Int).Mul(s, s)
	x3.Sub(x3, x1)
	x3.Sub(x3, x2)
	x3.Mod(x3, c.p)

	// y3 = s(x1 - x3) - y1
	y3 := new(big.Int).Sub(x1, x3)
	y3.Mul(y3, s)
	y3.Sub(y3, y1)
	y3.Mod(y3, c.p)

	return Point{affine: true, x: x3, y: y3}
}

// Double returns 2·pt. Points with y ≡ 0 have order two and double to infinity.
func (c *Curve) Double(pt Point) Point {
	if pt.IsInfinity() {
		return Infinity()
	}

	x, y := c.reduce(pt.x), c.reduce(pt.y)

	twoY := new(big.Int).Mul(two, y)
	inv, ok := c.invert(twoY)
	if !ok {
		return Infinity()
	}

	// s = (3x² + a) / 2y
	s := new(big.Int).Mul(x, x)
	s.Mul(s, three)
	s.Add(s, c.a)
	s.Mul(s, inv)
	s.Mod(s, c.p)

	// x3 = s² - 2x
	x3 := new(big.Int).Mul(s, s)
	x3.Sub(x3, new(big.Int).Mul(two, x))
	x3.Mod(x3, c.p)

	// y3 = s(x - x3) - y
	y3 := new(big.Int).Sub(x, x3)
	y3.Mul(y3, s)
	y3.Sub(y3, y)
	y3.Mod(y3, c.p)

	return Point{affine: true, x: x3, y: y3}
}

// ScalarMult returns k·pt using double-and-add over the bits of k, least
// significant first, in O(log k) group operations.
//
// A scalar that is a multiple of the field modulus p yields infinity, as does
// the point at infinity. A negative scalar multiplies the negated point.
func (c *Curve) ScalarMult(k *big.Int, pt Point) Point {
	if pt.IsInfinity() || modarith.IsZero(k, c.p) {
		return Infinity()
	}
	if k.Sign() < 0 {
		return c.ScalarMult(new(big.Int).Neg(k), c.Negate(pt))
	}

	result := Infinity()
	addend := pt
	for i := 0; i < k.BitLen(); i++ {
		if k.Bit(i) == 1 {
			result = c.Add(result, addend)
		}
		addend = c.Double(addend)
	}
	return result
}

// Points enumerates every affine point of the curve, ordered by x then y.
// The point at infinity is not included.
//
// Enumeration is quadratic in p and only meant for small demonstration
// moduli; callers must bound p themselves.
func (c *Curve) Points() []Point {
	var points []Point

	// Tabulate y² mod p once; the scan over x then only compares.
	squares := make([]*big.Int, 0)
	for y := big.NewInt(0); y.Cmp(c.p) < 0; y.Add(y, big.NewInt(1)) {
		sq := new(big.Int).Mul(y, y)
		squares = append(squares, sq.Mod(sq, c.p))
	}

	for x := big.NewInt(0); x.Cmp(c.p) < 0; x.Add(x, big.NewInt(1)) {
		rhs := c.polynomial(x)
		for y, sq := range squares {
			if sq.Cmp(rhs) == 0 {
				points = append(points, Point{affine: true, x: new(big.Int).Set(x), y: big.NewInt(int64(y))})
			}
		}
	}
	return points
}
