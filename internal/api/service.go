// Package api exposes the curve, Elgamal and RSA operations over HTTP.
//
// Service holds the transport independent request handlers; Handler routes
// them with chi and negotiates JSON or CBOR; Server wraps the router with
// the common middleware, health probes and graceful shutdown.
package api

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/smallyu/go-cryptolab/internal/config"
	"github.com/smallyu/go-cryptolab/internal/crypto/curves"
	"github.com/smallyu/go-cryptolab/internal/crypto/elgamal"
	"github.com/smallyu/go-cryptolab/internal/crypto/rsa"
	"github.com/smallyu/go-cryptolab/pkg/cryptolab"
)

// Service implements every API operation on decoded requests.
type Service struct {
	defaults *elgamal.Params
	rsaOpts  rsa.Options
	rsaBits  int
	maxEnum  *big.Int
	maxBits  int
	random   io.Reader
}

// NewService builds a Service from a validated configuration. A nil random
// source means crypto/rand.Reader.
func NewService(cfg *config.Config, random io.Reader) (*Service, error) {
	params, err := cfg.Curve.Params()
	if err != nil {
		return nil, fmt.Errorf("api: default curve: %w", err)
	}
	if random == nil {
		random = rand.Reader
	}
	return &Service{
		defaults: params,
		rsaOpts:  cfg.RSA.Options(),
		rsaBits:  cfg.RSA.DefaultBits,
		maxEnum:  big.NewInt(cfg.Limits.MaxEnumerationModulus),
		maxBits:  cfg.Limits.MaxOperandBits,
		random:   random,
	}, nil
}

// params resolves the request curve, filling gaps from the defaults.
func (s *Service) params(cp CurveParams) (*elgamal.Params, error) {
	if cp.A == nil && cp.B == nil && cp.P == nil && cp.N == nil && cp.Generator == nil {
		return s.defaults, nil
	}
	if err := s.bounded(map[string]*Int{"a": cp.A, "b": cp.B, "p": cp.P, "n": cp.N}); err != nil {
		return nil, err
	}

	a, b, p := s.defaults.Curve.A(), s.defaults.Curve.B(), s.defaults.Curve.P()
	if cp.A != nil {
		a = cp.A.Big()
	}
	if cp.B != nil {
		b = cp.B.Big()
	}
	if cp.P != nil {
		p = cp.P.Big()
	}
	curve, err := curves.New(a, b, p)
	if err != nil {
		return nil, err
	}

	params := &elgamal.Params{Curve: curve, G: s.defaults.G, N: s.defaults.N}
	if cp.Generator != nil {
		params.G = *cp.Generator
	}
	if cp.N != nil {
		params.N = cp.N.Big()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if !curve.IsOnCurve(params.G) {
		return nil, cryptolab.NewParamError("generator", fmt.Sprintf("%s is not on %s", params.G, curve), nil)
	}
	return params, nil
}

// points enumerates the curve, refusing moduli above the configured limit.
func (s *Service) points(c *curves.Curve) ([]curves.Point, error) {
	if c.P().Cmp(s.maxEnum) > 0 {
		return nil, cryptolab.NewParamError("p", fmt.Sprintf("enumeration is limited to p <= %s", s.maxEnum), nil)
	}
	return c.Points(), nil
}

func (s *Service) enumerable(c *curves.Curve) bool {
	return c.P().Cmp(s.maxEnum) <= 0
}

// bounded rejects integers longer than the configured operand size. Nil
// values are skipped.
func (s *Service) bounded(values map[string]*Int) error {
	for name, v := range values {
		if v != nil && v.Big().BitLen() > s.maxBits {
			return cryptolab.NewParamError(name, fmt.Sprintf("exceeds %d bits", s.maxBits), nil)
		}
	}
	return nil
}

// required returns the value of a mandatory integer field.
func (s *Service) required(v *Int, name string) (*big.Int, error) {
	if v == nil {
		return nil, cryptolab.NewParamError(name, "is required", nil)
	}
	if err := s.bounded(map[string]*Int{name: v}); err != nil {
		return nil, err
	}
	return v.Big(), nil
}

// operand treats an absent point as the point at infinity.
func operand(p *curves.Point) curves.Point {
	if p == nil {
		return curves.Infinity()
	}
	return *p
}

func (s *Service) publicKey(params *elgamal.Params, q *curves.Point) (*elgamal.PublicKey, error) {
	if q == nil || q.IsInfinity() {
		return nil, cryptolab.NewParamError("public_key", "must be an affine point", nil)
	}
	return &elgamal.PublicKey{Params: params, Q: *q}, nil
}

// GenerateKeys draws an Elgamal keypair. Curve points are listed only when
// the modulus is small enough to enumerate.
func (s *Service) GenerateKeys(req *GenerateKeysRequest) (*GenerateKeysResponse, error) {
	params, err := s.params(req.CurveParams)
	if err != nil {
		return nil, err
	}
	priv, err := elgamal.GenerateKey(s.random, params)
	if err != nil {
		return nil, err
	}

	resp := &GenerateKeysResponse{
		PrivateKey:  priv.D,
		PublicKey:   priv.Q,
		Generator:   params.G,
		CurveParams: curveInfo(params),
	}
	if s.enumerable(params.Curve) {
		resp.CurvePoints = params.Curve.Points()
	}
	return resp, nil
}

// Encrypt encodes an integer message as a point and encrypts it, returning
// the intermediate points of the same encryption.
func (s *Service) Encrypt(req *EncryptRequest) (*EncryptResponse, error) {
	params, err := s.params(req.CurveParams)
	if err != nil {
		return nil, err
	}
	pub, err := s.publicKey(params, req.PublicKey)
	if err != nil {
		return nil, err
	}
	m, err := s.required(req.Message, "message")
	if err != nil {
		return nil, err
	}

	trace, err := pub.TraceMessage(s.random, m)
	if err != nil {
		return nil, err
	}
	raw, err := trace.Ciphertext().MarshalBinary()
	if err != nil {
		return nil, err
	}
	return &EncryptResponse{
		C1:                 trace.C1,
		C2:                 trace.C2,
		MessagePoint:       trace.MessagePoint,
		IntermediatePoints: trace,
		Ciphertext:         raw,
	}, nil
}

// EncryptPoint encrypts a caller supplied point.
func (s *Service) EncryptPoint(req *EncryptPointRequest) (*CiphertextResponse, error) {
	params, err := s.params(req.CurveParams)
	if err != nil {
		return nil, err
	}
	pub, err := s.publicKey(params, req.PublicKey)
	if err != nil {
		return nil, err
	}
	ct, err := pub.Encrypt(s.random, operand(req.Point))
	if err != nil {
		return nil, err
	}
	raw, err := ct.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return &CiphertextResponse{C1: ct.C1, C2: ct.C2, Ciphertext: raw}, nil
}

// Decrypt recovers the masked point and its x coordinate.
func (s *Service) Decrypt(req *DecryptRequest) (*DecryptResponse, error) {
	params, err := s.params(req.CurveParams)
	if err != nil {
		return nil, err
	}
	d, err := s.required(req.PrivateKey, "private_key")
	if err != nil {
		return nil, err
	}

	ct := &elgamal.Ciphertext{C1: operand(req.C1), C2: operand(req.C2)}
	if len(req.Ciphertext) > 0 {
		if req.C1 != nil || req.C2 != nil {
			return nil, cryptolab.NewParamError("ciphertext", "cannot be combined with C1 and C2", nil)
		}
		if err := ct.UnmarshalBinary(req.Ciphertext); err != nil {
			return nil, cryptolab.NewParamError("ciphertext", "is not a valid encoding", err)
		}
	}

	priv := &elgamal.PrivateKey{PublicKey: elgamal.PublicKey{Params: params}, D: d}
	pt := priv.Decrypt(ct)

	resp := &DecryptResponse{Point: pt, OnCurve: ct.Valid(params.Curve)}
	if x, _, ok := pt.Coords(); ok {
		resp.Decrypted = x
	}
	return resp, nil
}

// Curve lists the points of the request curve.
func (s *Service) Curve(req *CurveParams) (*CurveResponse, error) {
	params, err := s.params(*req)
	if err != nil {
		return nil, err
	}
	points, err := s.points(params.Curve)
	if err != nil {
		return nil, err
	}
	return &CurveResponse{
		CurvePoints: points,
		Generator:   params.G,
		CurveParams: curveInfo(params),
	}, nil
}

// curveOnly resolves a, b and p without touching the generator, for the
// raw arithmetic routes.
func (s *Service) curveOnly(cp CurveParams) (*curves.Curve, error) {
	return s.curve(cp.A, cp.B, cp.P)
}

func (s *Service) curve(a, b, p *Int) (*curves.Curve, error) {
	if err := s.bounded(map[string]*Int{"a": a, "b": b, "p": p}); err != nil {
		return nil, err
	}
	ca, cb, cp := s.defaults.Curve.A(), s.defaults.Curve.B(), s.defaults.Curve.P()
	if a != nil {
		ca = a.Big()
	}
	if b != nil {
		cb = b.Big()
	}
	if p != nil {
		cp = p.Big()
	}
	return curves.New(ca, cb, cp)
}

// AddPoints returns point1 + point2.
func (s *Service) AddPoints(req *AddPointsRequest) (*AddPointsResponse, error) {
	c, err := s.curveOnly(req.CurveParams)
	if err != nil {
		return nil, err
	}
	p1, p2 := operand(req.Point1), operand(req.Point2)
	return &AddPointsResponse{Point1: p1, Point2: p2, Result: c.Add(p1, p2)}, nil
}

// DoublePoint returns 2·point.
func (s *Service) DoublePoint(req *DoublePointRequest) (*DoublePointResponse, error) {
	c, err := s.curveOnly(req.CurveParams)
	if err != nil {
		return nil, err
	}
	pt := operand(req.Point)
	return &DoublePointResponse{Point: pt, Result: c.Double(pt)}, nil
}

// MultiplyPoint returns k·point.
func (s *Service) MultiplyPoint(req *MultiplyPointRequest) (*MultiplyPointResponse, error) {
	c, err := s.curveOnly(req.CurveParams)
	if err != nil {
		return nil, err
	}
	k, err := s.required(req.K, "k")
	if err != nil {
		return nil, err
	}
	pt := operand(req.Point)
	return &MultiplyPointResponse{K: k, Point: pt, Result: c.ScalarMult(k, pt)}, nil
}

// CalculateCurve lists the points of y² = x³ + ax + b mod p.
func (s *Service) CalculateCurve(req *CalculateCurveRequest) (*CalculateCurveResponse, error) {
	c, err := s.curveOnly(req.CurveParams)
	if err != nil {
		return nil, err
	}
	points, err := s.points(c)
	if err != nil {
		return nil, err
	}
	return &CalculateCurveResponse{
		Points:      points,
		Equation:    c.Equation(),
		TotalPoints: len(points),
	}, nil
}

// PointOperation applies add, double or multiply. Absent points default to
// (0, 0) and an absent k to 2.
func (s *Service) PointOperation(req *PointOperationRequest) (*PointOperationResponse, error) {
	c, err := s.curveOnly(req.CurveParams)
	if err != nil {
		return nil, err
	}
	origin := curves.NewPointInt64(0, 0)
	p1, p2 := origin, origin
	if req.Point1 != nil {
		p1 = *req.Point1
	}
	if req.Point2 != nil {
		p2 = *req.Point2
	}

	op := req.Operation
	if op == "" {
		op = "add"
	}

	var result curves.Point
	switch op {
	case "add":
		result = c.Add(p1, p2)
	case "double":
		result = c.Double(p1)
	case "multiply":
		k := big.NewInt(2)
		if req.K != nil {
			var err error
			if k, err = s.required(req.K, "k"); err != nil {
				return nil, err
			}
		}
		result = c.ScalarMult(k, p1)
	default:
		return nil, cryptolab.NewParamError("operation", fmt.Sprintf("unknown operation %q", op), nil)
	}
	return &PointOperationResponse{Result: result, Operation: op}, nil
}

// RSAGenerateKeys generates a textbook RSA keypair of the requested size.
func (s *Service) RSAGenerateKeys(req *RSAGenerateKeysRequest) (*RSAGenerateKeysResponse, error) {
	bits := s.rsaBits
	if req.Bits != nil {
		bits = *req.Bits
	}
	priv, err := s.rsaOpts.GenerateKey(s.random, bits)
	if err != nil {
		return nil, err
	}
	return &RSAGenerateKeysResponse{
		PublicKey:  [2]*big.Int{priv.E, priv.N},
		PrivateKey: [2]*big.Int{priv.D, priv.N},
		Primes:     priv.Primes,
	}, nil
}

// pair unpacks an [exponent, modulus] key.
func (s *Service) pair(key []*Int, name string) (*big.Int, *big.Int, error) {
	if len(key) != 2 || key[0] == nil || key[1] == nil {
		return nil, nil, cryptolab.NewParamError(name, "expected [exponent, modulus]", nil)
	}
	if err := s.bounded(map[string]*Int{name + "[0]": key[0], name + "[1]": key[1]}); err != nil {
		return nil, nil, err
	}
	return key[0].Big(), key[1].Big(), nil
}

// RSAEncrypt returns message^e mod n.
func (s *Service) RSAEncrypt(req *RSAEncryptRequest) (*RSAEncryptResponse, error) {
	m, err := s.required(req.Message, "message")
	if err != nil {
		return nil, err
	}
	e, n, err := s.pair(req.PublicKey, "public_key")
	if err != nil {
		return nil, err
	}
	pub := &rsa.PublicKey{E: e, N: n}
	c, err := pub.Encrypt(m)
	if err != nil {
		return nil, err
	}
	return &RSAEncryptResponse{Encrypted: c}, nil
}

// RSADecrypt returns ciphertext^d mod n.
func (s *Service) RSADecrypt(req *RSADecryptRequest) (*RSADecryptResponse, error) {
	c, err := s.required(req.Ciphertext, "ciphertext")
	if err != nil {
		return nil, err
	}
	d, n, err := s.pair(req.PrivateKey, "private_key")
	if err != nil {
		return nil, err
	}
	priv := &rsa.PrivateKey{PublicKey: rsa.PublicKey{N: n}, D: d}

	var m *big.Int
	switch len(req.Primes) {
	case 0:
		m, err = priv.Decrypt(c)
	case 2:
		p, q := req.Primes[0], req.Primes[1]
		if err := s.bounded(map[string]*Int{"primes[0]": p, "primes[1]": q}); err != nil {
			return nil, err
		}
		if p == nil || q == nil || new(big.Int).Mul(p.Big(), q.Big()).Cmp(n) != 0 {
			return nil, cryptolab.NewParamError("primes", "must multiply to the modulus", nil)
		}
		priv.Primes = [2]*big.Int{p.Big(), q.Big()}
		m, err = priv.DecryptCRT(c)
	default:
		return nil, cryptolab.NewParamError("primes", "expected [p, q]", nil)
	}
	if err != nil {
		return nil, err
	}
	return &RSADecryptResponse{Decrypted: m}, nil
}
