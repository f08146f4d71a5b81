package curves

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"

	"github.com/smallyu/go-cryptolab/pkg/cryptolab"
)

// Point is either the point at infinity or an affine pair (x, y).
// The zero value is the point at infinity.
//
// Points are immutable: constructors and accessors copy their coordinates.
type Point struct {
	affine bool
	x, y   *big.Int
}

// Infinity returns the identity element of the group.
func Infinity() Point {
	return Point{}
}

// NewPoint returns the affine point (x, y). The coordinates are not reduced
// and the point is not checked against any curve.
func NewPoint(x, y *big.Int) Point {
	return Point{
		affine: true,
		x:      new(big.Int).Set(x),
		y:      new(big.Int).Set(y),
	}
}

// NewPointInt64 is a convenience wrapper around NewPoint.
func NewPointInt64(x, y int64) Point {
	return Point{affine: true, x: big.NewInt(x), y: big.NewInt(y)}
}

// IsInfinity reports whether p is the point at infinity.
func (p Point) IsInfinity() bool {
	return !p.affine
}

// Coords returns copies of the affine coordinates. ok is false for the point
// at infinity, in which case x and y are nil.
func (p Point) Coords() (x, y *big.Int, ok bool) {
	if !p.affine {
		return nil, nil, false
	}
	return new(big.Int).Set(p.x), new(big.Int).Set(p.y), true
}

// Equal reports whether p and q are the same point with identical coordinates.
func (p Point) Equal(q Point) bool {
	if p.affine != q.affine {
		return false
	}
	if !p.affine {
		return true
	}
	return p.x.Cmp(q.x) == 0 && p.y.Cmp(q.y) == 0
}

func (p Point) String() string {
	if !p.affine {
		return "∞"
	}
	return fmt.Sprintf("(%s, %s)", p.x, p.y)
}

// coordinates returns the wire form: nil for infinity, [x, y] otherwise.
func (p Point) coordinates() []*big.Int {
	if !p.affine {
		return nil
	}
	return []*big.Int{p.x, p.y}
}

func pointFromCoordinates(coords []*big.Int) (Point, error) {
	if coords == nil {
		return Infinity(), nil
	}
	if len(coords) != 2 || coords[0] == nil || coords[1] == nil {
		return Point{}, cryptolab.NewParamError("point", "expected null or a pair of integers", nil)
	}
	return NewPoint(coords[0], coords[1]), nil
}

// MarshalJSON encodes infinity as null and an affine point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.coordinates())
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var coords []*big.Int
	if err := json.Unmarshal(data, &coords); err != nil {
		return cryptolab.NewParamError("point", "expected null or a pair of integers", err)
	}
	pt, err := pointFromCoordinates(coords)
	if err != nil {
		return err
	}
	*p = pt
	return nil
}

// MarshalCBOR mirrors MarshalJSON: null for infinity, a two element array otherwise.
func (p Point) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(p.coordinates())
}

func (p *Point) UnmarshalCBOR(data []byte) error {
	var coords []*big.Int
	if err := cbor.Unmarshal(data, &coords); err != nil {
		return cryptolab.NewParamError("point", "expected null or a pair of integers", err)
	}
	pt, err := pointFromCoordinates(coords)
	if err != nil {
		return err
	}
	*p = pt
	return nil
}
