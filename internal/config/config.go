// Package config loads the cryptolab server configuration.
//
// A YAML file is layered over Default; command-line flags are applied by the
// caller afterwards. Validate must pass before the configuration is used.
//
//	server:
//	  listen_addr: ":5000"
//	  read_timeout: 15s
//	  write_timeout: 15s
//	  shutdown_timeout: 10s
//	log:
//	  level: info
//	  format: text
//	curve:
//	  a: 0
//	  b: 7
//	  p: 17
//	  gx: 15
//	  gy: 13
//	  n: 19
//	rsa:
//	  default_bits: 64
//	  max_bits: 2048
//	  prime_rounds: 5
//	  max_prime_attempts: 100000
//	  max_key_attempts: 64
//	limits:
//	  max_enumeration_modulus: 4096
//	  max_operand_bits: 8192
package config

import (
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/smallyu/go-cryptolab/internal/crypto/curves"
	"github.com/smallyu/go-cryptolab/internal/crypto/elgamal"
	"github.com/smallyu/go-cryptolab/internal/crypto/rsa"
	"github.com/smallyu/go-cryptolab/pkg/cryptolab"
)

// Config is the complete server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Curve  CurveConfig  `yaml:"curve"`
	RSA    RSAConfig    `yaml:"rsa"`
	Limits LimitsConfig `yaml:"limits"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn or error
	Format string `yaml:"format"` // text or json
}

// CurveConfig is the curve used when a request omits its own parameters.
type CurveConfig struct {
	A  int64 `yaml:"a"`
	B  int64 `yaml:"b"`
	P  int64 `yaml:"p"`
	Gx int64 `yaml:"gx"`
	Gy int64 `yaml:"gy"`
	N  int64 `yaml:"n"`
}

// RSAConfig bounds RSA key generation.
type RSAConfig struct {
	DefaultBits      int `yaml:"default_bits"`
	MaxBits          int `yaml:"max_bits"`
	PrimeRounds      int `yaml:"prime_rounds"`
	MaxPrimeAttempts int `yaml:"max_prime_attempts"`
	MaxKeyAttempts   int `yaml:"max_key_attempts"`
}

// LimitsConfig caps work done per request.
type LimitsConfig struct {
	// MaxEnumerationModulus is the largest p for which every curve point is listed.
	MaxEnumerationModulus int64 `yaml:"max_enumeration_modulus"`
	// MaxOperandBits caps the bit length of every integer in a request.
	MaxOperandBits int `yaml:"max_operand_bits"`
}

// Default returns the built-in configuration.
func Default() *Config {
	opts := rsa.DefaultOptions()
	return &Config{
		Server: ServerConfig{
			ListenAddr:      ":5000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Curve: CurveConfig{
			A:  cryptolab.DefaultA,
			B:  cryptolab.DefaultB,
			P:  cryptolab.DefaultP,
			Gx: cryptolab.DefaultGx,
			Gy: cryptolab.DefaultGy,
			N:  cryptolab.DefaultOrder,
		},
		RSA: RSAConfig{
			DefaultBits:      cryptolab.DefaultRSABits,
			MaxBits:          2048,
			PrimeRounds:      opts.Rounds,
			MaxPrimeAttempts: opts.MaxPrimeAttempts,
			MaxKeyAttempts:   opts.MaxKeyAttempts,
		},
		Limits: LimitsConfig{
			MaxEnumerationModulus: 4096,
			MaxOperandBits:        8192,
		},
	}
}

// Load reads a YAML file on top of Default and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr is required")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("config: server timeouts must be positive")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log.format %q", c.Log.Format)
	}

	params, err := c.Curve.Params()
	if err != nil {
		return fmt.Errorf("config: curve: %w", err)
	}
	if !params.Curve.IsOnCurve(params.G) {
		return fmt.Errorf("config: curve: generator %s is not on %s", params.G, params.Curve)
	}

	if c.RSA.DefaultBits < cryptolab.MinRSABits {
		return fmt.Errorf("config: rsa.default_bits must be at least %d", cryptolab.MinRSABits)
	}
	if c.RSA.MaxBits < c.RSA.DefaultBits {
		return fmt.Errorf("config: rsa.max_bits %d is below rsa.default_bits %d", c.RSA.MaxBits, c.RSA.DefaultBits)
	}
	if c.RSA.PrimeRounds < 1 || c.RSA.MaxPrimeAttempts < 1 || c.RSA.MaxKeyAttempts < 1 {
		return fmt.Errorf("config: rsa rounds and attempt limits must be at least 1")
	}
	if c.Limits.MaxEnumerationModulus < 2 {
		return fmt.Errorf("config: limits.max_enumeration_modulus must be at least 2")
	}
	if c.Limits.MaxOperandBits < c.RSA.MaxBits {
		return fmt.Errorf("config: limits.max_operand_bits %d is below rsa.max_bits %d", c.Limits.MaxOperandBits, c.RSA.MaxBits)
	}
	return nil
}

// Params builds the Elgamal parameters described by the curve section.
func (c CurveConfig) Params() (*elgamal.Params, error) {
	curve, err := curves.NewInt64(c.A, c.B, c.P)
	if err != nil {
		return nil, err
	}
	params := &elgamal.Params{
		Curve: curve,
		G:     curves.NewPointInt64(c.Gx, c.Gy),
		N:     big.NewInt(c.N),
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

// Options converts the rsa section into key generation options.
func (c RSAConfig) Options() rsa.Options {
	return rsa.Options{
		Rounds:           c.PrimeRounds,
		MaxPrimeAttempts: c.MaxPrimeAttempts,
		MaxKeyAttempts:   c.MaxKeyAttempts,
		MaxBits:          c.MaxBits,
	}
}

// ParseLevel maps a level name to its slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("config: unknown log.level %q", level)
}

// NewLogger builds the slog logger described by the log section.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch c.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("config: unknown log.format %q", c.Format)
	}
	return slog.New(handler), nil
}
