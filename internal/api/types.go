package api

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/smallyu/go-cryptolab/internal/crypto/curves"
	"github.com/smallyu/go-cryptolab/internal/crypto/elgamal"
	"github.com/smallyu/go-cryptolab/pkg/cryptolab"
)

// Int is an integer request field. It accepts a JSON number or a decimal
// string, and a CBOR integer, bignum or text string.
type Int big.Int

// NewInt returns x as an Int.
func NewInt(x int64) *Int { return (*Int)(big.NewInt(x)) }

// Big returns the value as a *big.Int sharing the same storage.
func (i *Int) Big() *big.Int { return (*big.Int)(i) }

func (i *Int) setString(s string) error {
	if _, ok := i.Big().SetString(strings.TrimSpace(s), 10); !ok {
		return cryptolab.NewParamError("integer", fmt.Sprintf("cannot parse %q", s), nil)
	}
	return nil
}

func (i *Int) MarshalJSON() ([]byte, error) { return i.Big().MarshalJSON() }

func (i *Int) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return i.setString(s)
	}
	return i.setString(string(data))
}

func (i *Int) MarshalCBOR() ([]byte, error) { return cbor.Marshal(i.Big()) }

func (i *Int) UnmarshalCBOR(data []byte) error {
	var b big.Int
	if err := cbor.Unmarshal(data, &b); err == nil {
		i.Big().Set(&b)
		return nil
	}
	var s string
	if err := cbor.Unmarshal(data, &s); err != nil {
		return cryptolab.NewParamError("integer", "expected an integer", err)
	}
	return i.setString(s)
}

// Envelope carries the success flag present on every response.
type Envelope struct {
	Success bool `json:"success"`
}

func (e *Envelope) succeed() { e.Success = true }

// ErrorResponse is the body of every rejected request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// CurveParams selects the curve for a request. Omitted fields fall back to
// the configured demonstration curve.
type CurveParams struct {
	A         *Int          `json:"a,omitempty"`
	B         *Int          `json:"b,omitempty"`
	P         *Int          `json:"p,omitempty"`
	N         *Int          `json:"n,omitempty"`
	Generator *curves.Point `json:"generator,omitempty"`
}

// CurveInfo describes a curve in a response.
type CurveInfo struct {
	A        *big.Int `json:"a"`
	B        *big.Int `json:"b"`
	P        *big.Int `json:"p"`
	N        *big.Int `json:"n"`
	Equation string   `json:"equation"`
}

func curveInfo(params *elgamal.Params) CurveInfo {
	return CurveInfo{
		A:        params.Curve.A(),
		B:        params.Curve.B(),
		P:        params.Curve.P(),
		N:        new(big.Int).Set(params.N),
		Equation: params.Curve.Equation(),
	}
}

type GenerateKeysRequest struct {
	CurveParams
}

type GenerateKeysResponse struct {
	Envelope
	PrivateKey  *big.Int       `json:"private_key"`
	PublicKey   curves.Point   `json:"public_key"`
	CurvePoints []curves.Point `json:"curve_points,omitempty"`
	Generator   curves.Point   `json:"generator"`
	CurveParams CurveInfo      `json:"curve_params"`
}

type EncryptRequest struct {
	CurveParams
	PublicKey *curves.Point `json:"public_key"`
	Message   *Int          `json:"message"`
}

type EncryptResponse struct {
	Envelope
	C1                 curves.Point   `json:"C1"`
	C2                 curves.Point   `json:"C2"`
	MessagePoint       curves.Point   `json:"message_point"`
	IntermediatePoints *elgamal.Trace `json:"intermediate_points"`
	// Ciphertext is the binary encoding of (C1, C2), accepted back by
	// /api/ecc/decrypt.
	Ciphertext []byte `json:"ciphertext"`
}

type EncryptPointRequest struct {
	CurveParams
	PublicKey *curves.Point `json:"public_key"`
	Point     *curves.Point `json:"point"`
}

type CiphertextResponse struct {
	Envelope
	C1         curves.Point `json:"C1"`
	C2         curves.Point `json:"C2"`
	Ciphertext []byte       `json:"ciphertext"`
}

type DecryptRequest struct {
	CurveParams
	PrivateKey *Int          `json:"private_key"`
	C1         *curves.Point `json:"C1"`
	C2         *curves.Point `json:"C2"`
	// Ciphertext replaces C1 and C2 when set.
	Ciphertext []byte `json:"ciphertext,omitempty"`
}

type DecryptResponse struct {
	Envelope
	// Decrypted is the x coordinate of the recovered point, or null when
	// decryption yields the point at infinity.
	Decrypted *big.Int     `json:"decrypted"`
	Point     curves.Point `json:"point"`
	// OnCurve reports whether both ciphertext points lie on the curve.
	OnCurve bool `json:"on_curve"`
}

type CurveResponse struct {
	Envelope
	CurvePoints []curves.Point `json:"curve_points"`
	Generator   curves.Point   `json:"generator"`
	CurveParams CurveInfo      `json:"curve_params"`
}

type AddPointsRequest struct {
	CurveParams
	Point1 *curves.Point `json:"point1"`
	Point2 *curves.Point `json:"point2"`
}

type AddPointsResponse struct {
	Envelope
	Point1 curves.Point `json:"point1"`
	Point2 curves.Point `json:"point2"`
	Result curves.Point `json:"result"`
}

type DoublePointRequest struct {
	CurveParams
	Point *curves.Point `json:"point"`
}

type DoublePointResponse struct {
	Envelope
	Point  curves.Point `json:"point"`
	Result curves.Point `json:"result"`
}

type MultiplyPointRequest struct {
	CurveParams
	K     *Int          `json:"k"`
	Point *curves.Point `json:"point"`
}

type MultiplyPointResponse struct {
	Envelope
	K      *big.Int     `json:"k"`
	Point  curves.Point `json:"point"`
	Result curves.Point `json:"result"`
}

type CalculateCurveRequest struct {
	CurveParams
}

type CalculateCurveResponse struct {
	Envelope
	Points      []curves.Point `json:"points"`
	Equation    string         `json:"equation"`
	TotalPoints int            `json:"total_points"`
}

// PointOperationRequest drives /api/calculate_point_operations. Operation is
// one of add, double or multiply and defaults to add.
type PointOperationRequest struct {
	CurveParams
	Point1    *curves.Point `json:"point1"`
	Point2    *curves.Point `json:"point2"`
	Operation string        `json:"operation"`
	K         *Int          `json:"k"`
}

type PointOperationResponse struct {
	Envelope
	Result    curves.Point `json:"result"`
	Operation string       `json:"operation"`
}

type RSAGenerateKeysRequest struct {
	Bits *int `json:"bits,omitempty"`
}

// RSAGenerateKeysResponse carries the keys as [e, n] and [d, n] pairs.
type RSAGenerateKeysResponse struct {
	Envelope
	PublicKey  [2]*big.Int `json:"public_key"`
	PrivateKey [2]*big.Int `json:"private_key"`
	Primes     [2]*big.Int `json:"primes"`
}

type RSAEncryptRequest struct {
	Message   *Int   `json:"message"`
	PublicKey []*Int `json:"public_key"`
}

type RSAEncryptResponse struct {
	Envelope
	Encrypted *big.Int `json:"encrypted"`
}

// RSADecryptRequest decrypts with [d, n]. When both prime factors are given
// the CRT path is used.
type RSADecryptRequest struct {
	Ciphertext *Int   `json:"ciphertext"`
	PrivateKey []*Int `json:"private_key"`
	Primes     []*Int `json:"primes,omitempty"`
}

type RSADecryptResponse struct {
	Envelope
	Decrypted *big.Int `json:"decrypted"`
}
