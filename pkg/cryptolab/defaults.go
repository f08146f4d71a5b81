package cryptolab

// Demonstration parameters used whenever a caller leaves them unspecified:
// the curve y² = x³ + 7 over F_17 with generator (15, 13) and declared order 19.
//
// The declared order is a fixed constant, not the order of the generator
// (which is 18 on this curve). It is kept as-is because it determines the
// range private keys and nonces are drawn from.
const (
	DefaultA     = 0
	DefaultB     = 7
	DefaultP     = 17
	DefaultGx    = 15
	DefaultGy    = 13
	DefaultOrder = 19
)

// RSA parameters.
const (
	PublicExponent  = 65537
	DefaultRSABits  = 64
	MinRSABits      = 8
	DefaultMRRounds = 5
)
