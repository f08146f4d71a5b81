package curves

import (
	"crypto/rand"
	"errors"
	"math/big"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallyu/go-cryptolab/pkg/cryptolab"
)

var generator = NewPointInt64(15, 13)

// affinePoints returns all affine points of the demo curve.
func affinePoints(t *testing.T) []Point {
	t.Helper()
	pts := Demo().Points()
	require.Len(t, pts, 17)
	return pts
}

func TestNew(t *testing.T) {
	c, err := NewInt64(-1, 24, 17)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(16), c.A())
	assert.Equal(t, big.NewInt(7), c.B())
	assert.Equal(t, big.NewInt(17), c.P())
	assert.Equal(t, "y² = x³ + 16x + 7 mod 17", c.Equation())

	for _, p := range []int64{1, 0, -17} {
		_, err := NewInt64(0, 7, p)
		assert.True(t, errors.Is(err, cryptolab.ErrInvalidParameters), "p=%d", p)
	}

	_, err = New(nil, big.NewInt(7), big.NewInt(17))
	assert.True(t, errors.Is(err, cryptolab.ErrInvalidParameters))
}

func TestIsOnCurve(t *testing.T) {
	c := Demo()
	assert.True(t, c.IsOnCurve(Infinity()))
	assert.True(t, c.IsOnCurve(generator))
	assert.True(t, c.IsOnCurve(NewPointInt64(3, 0)))
	assert.False(t, c.IsOnCurve(NewPointInt64(15, 12)))
	assert.False(t, c.IsOnCurve(NewPointInt64(0, 0)))
}

func TestNegate(t *testing.T) {
	c := Demo()
	assert.True(t, c.Negate(Infinity()).IsInfinity())
	assertPoint(t, NewPointInt64(15, 4), c.Negate(generator))
	assertPoint(t, NewPointInt64(3, 0), c.Negate(NewPointInt64(3, 0)))

	// Out-of-range y is normalized rather than left negative.
	neg := c.Negate(NewPointInt64(1, 22))
	_, y, ok := neg.Coords()
	require.True(t, ok)
	assert.Equal(t, big.NewInt(12), y)
}

func TestIdentity(t *testing.T) {
	c := Demo()
	for _, p := range affinePoints(t) {
		assert.True(t, p.Equal(c.Add(Infinity(), p)), "∞ + %s", p)
		assert.True(t, p.Equal(c.Add(p, Infinity())), "%s + ∞", p)
	}
	assert.True(t, c.Add(Infinity(), Infinity()).IsInfinity())
}

func TestInverse(t *testing.T) {
	c := Demo()
	for _, p := range affinePoints(t) {
		assert.True(t, c.Add(p, c.Negate(p)).IsInfinity(), "%s + -%s", p, p)
	}
}

func TestDoublingConsistency(t *testing.T) {
	c := Demo()
	for _, p := range append(affinePoints(t), Infinity()) {
		assert.True(t, c.Double(p).Equal(c.Add(p, p)), "%s", p)
	}
}

func TestClosure(t *testing.T) {
	c := Demo()
	pts := affinePoints(t)
	for _, p := range pts {
		for _, q := range pts {
			assert.True(t, c.IsOnCurve(c.Add(p, q)), "%s + %s", p, q)
		}
	}
}

func TestAddKnownValues(t *testing.T) {
	c := Demo()
	assertPoint(t, NewPointInt64(2, 10), c.Double(generator))
	assertPoint(t, NewPointInt64(8, 3), c.Add(generator, NewPointInt64(2, 10)))
	assertPoint(t, NewPointInt64(8, 3), c.Add(NewPointInt64(2, 10), generator))

	// (3, 0) has order two.
	assert.True(t, c.Double(NewPointInt64(3, 0)).IsInfinity())
}

func TestScalarMult(t *testing.T) {
	c := Demo()
	want := map[int64]Point{
		1:  NewPointInt64(15, 13),
		2:  NewPointInt64(2, 10),
		3:  NewPointInt64(8, 3),
		4:  NewPointInt64(12, 1),
		5:  NewPointInt64(6, 6),
		8:  NewPointInt64(1, 12),
		9:  NewPointInt64(3, 0),
		10: NewPointInt64(1, 5),
		16: NewPointInt64(2, 7),
		19: NewPointInt64(15, 13),
	}
	for k, p := range want {
		assertPoint(t, p, c.ScalarMult(big.NewInt(k), generator), "k=%d", k)
	}

	// Multiples of the field modulus collapse to infinity.
	assert.True(t, c.ScalarMult(big.NewInt(0), generator).IsInfinity())
	assert.True(t, c.ScalarMult(big.NewInt(17), generator).IsInfinity())
	assert.True(t, c.ScalarMult(big.NewInt(-34), generator).IsInfinity())
	assert.True(t, c.ScalarMult(big.NewInt(5), Infinity()).IsInfinity())
}

func TestScalarMultLinearity(t *testing.T) {
	c := Demo()
	for k1 := int64(1); k1 <= 8; k1++ {
		for k2 := int64(1); k2 <= 8; k2++ {
			sum := c.ScalarMult(big.NewInt(k1+k2), generator)
			parts := c.Add(c.ScalarMult(big.NewInt(k1), generator), c.ScalarMult(big.NewInt(k2), generator))
			assert.True(t, sum.Equal(parts), "k1=%d k2=%d", k1, k2)
		}
	}
}

func TestScalarMultNegative(t *testing.T) {
	c := Demo()
	for _, p := range affinePoints(t) {
		for _, k := range []int64{1, 2, 3, 5, 11} {
			lhs := c.ScalarMult(big.NewInt(-k), p)
			rhs := c.ScalarMult(big.NewInt(k), c.Negate(p))
			assert.True(t, lhs.Equal(rhs), "k=%d P=%s", k, p)
		}
	}
	assertPoint(t, NewPointInt64(5, 8), c.ScalarMult(big.NewInt(-3), NewPointInt64(1, 5)))
}

func TestPointsEnumeration(t *testing.T) {
	c := Demo()
	pts := c.Points()

	count := 0
	for x := int64(0); x < 17; x++ {
		for y := int64(0); y < 17; y++ {
			if (y*y)%17 == (x*x*x+7)%17 {
				count++
			}
		}
	}
	assert.Equal(t, count, len(pts))

	for i, p := range pts {
		assert.True(t, c.IsOnCurve(p), "%s", p)
		if i == 0 {
			continue
		}
		px, py, _ := pts[i-1].Coords()
		x, y, _ := p.Coords()
		ordered := px.Cmp(x) < 0 || (px.Cmp(x) == 0 && py.Cmp(y) < 0)
		assert.True(t, ordered, "%s before %s", pts[i-1], p)
	}
	assertPoint(t, NewPointInt64(1, 5), pts[0])
	assertPoint(t, NewPointInt64(15, 13), pts[len(pts)-1])
}

func TestNonPrimeModulus(t *testing.T) {
	c, err := NewInt64(1, 1, 15)
	require.NoError(t, err)

	// x2 - x1 = 3 shares a factor with 15.
	assert.True(t, c.Add(NewPointInt64(1, 1), NewPointInt64(4, 2)).IsInfinity())
	// 2y = 10 shares a factor with 15.
	assert.True(t, c.Double(NewPointInt64(2, 5)).IsInfinity())

	assert.NotPanics(t, func() {
		c.ScalarMult(big.NewInt(123), NewPointInt64(7, 11))
	})
}

func TestOffCurveInputsDoNotPanic(t *testing.T) {
	c := Demo()
	offCurve := []Point{NewPointInt64(0, 0), NewPointInt64(-5, 40), NewPointInt64(100, -3)}
	assert.NotPanics(t, func() {
		for _, p := range offCurve {
			c.Double(p)
			c.Negate(p)
			c.ScalarMult(big.NewInt(-77), p)
			for _, q := range offCurve {
				c.Add(p, q)
			}
		}
	})
}

func TestSecp256k1CrossCheck(t *testing.T) {
	c, g, n := Secp256k1()
	require.True(t, c.IsOnCurve(g))
	ref := secp256k1.S256()

	for i := 0; i < 8; i++ {
		k, err := rand.Int(rand.Reader, n)
		require.NoError(t, err)

		got := c.ScalarMult(k, g)
		wantX, wantY := ref.ScalarBaseMult(k.Bytes())
		x, y, ok := got.Coords()
		require.True(t, ok)
		assert.Zero(t, wantX.Cmp(x))
		assert.Zero(t, wantY.Cmp(y))

		sum := c.Add(got, g)
		sumX, sumY := ref.Add(wantX, wantY, ref.Params().Gx, ref.Params().Gy)
		assertPoint(t, NewPoint(sumX, sumY), sum)
	}

	// n·G is the identity.
	assert.True(t, c.ScalarMult(n, g).IsInfinity())
}

// assertPoint compares points by value; big.Int internals differ between
// equal numbers, so assert.Equal cannot be used directly.
func assertPoint(t *testing.T, want, got Point, msgAndArgs ...interface{}) {
	t.Helper()
	if !want.Equal(got) {
		assert.Fail(t, "points differ: want "+want.String()+", got "+got.String(), msgAndArgs...)
	}
}
