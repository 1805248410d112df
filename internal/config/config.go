// Package config reads search settings from the environment, after loading
// a .env file when one is present.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"lfsrcrack/internal/lfsr"
	"lfsrcrack/internal/util"
)

type Config struct {
	Width            lfsr.Width
	Ciphertext       []byte
	Initial          uint64
	Workers          int
	ProgressInterval time.Duration
	DatabaseURL      string
	HTTPAddr         string
	JWTSecret        string
	LogLevel         string
	LogFormat        string
}

// DefaultCiphertext returns a fresh copy of the sample ciphertext for w.
func DefaultCiphertext(w lfsr.Width) []byte {
	if w == lfsr.Width8 {
		return []byte{
			0x2B, 0xFC, 0x8E, 0x2B, 0x35, 0x61, 0xC0, 0x4F,
			0xBB, 0xC7, 0x3F, 0xA4, 0x3D, 0x5D, 0x96, 0x54,
			0x0D, 0x0A, 0xA0, 0x08, 0xB3, 0x09, 0x24, 0xCE,
			0x47, 0xDA, 0x0E, 0xC6, 0x75, 0x30, 0xD3,
		}
	}
	return []byte{
		0x9E, 0x1C, 0xE2, 0xC2, 0xF6, 0xFB, 0xFE, 0x19,
		0x86, 0x37, 0xE6, 0xF1, 0x0B, 0x95, 0x7D, 0xDD,
		0x50, 0xA7, 0x87, 0x41, 0x77, 0xA5, 0x1E,
	}
}

// DefaultInitial is the register value the sample ciphertext for w was
// produced from.
func DefaultInitial(w lfsr.Width) uint64 {
	if w == lfsr.Width8 {
		return 0x42
	}
	return 0x8080808080808080
}

// Load reads .env (if any) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults for unset keys. It
// only reports malformed values; callers apply their own overrides and then
// call Validate.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Width:            lfsr.Width64,
		Workers:          runtime.NumCPU(),
		ProgressInterval: time.Second,
		DatabaseURL:      getenv("DATABASE_URL"),
		HTTPAddr:         getenv("HTTP_ADDR"),
		JWTSecret:        getenv("JWT_SECRET"),
		LogLevel:         getenv("LOG_LEVEL"),
		LogFormat:        getenv("LOG_FORMAT"),
	}

	if s := getenv("LFSR_WIDTH"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Config{}, fmt.Errorf("LFSR_WIDTH: %w", err)
		}
		if cfg.Width, err = lfsr.ParseWidth(n); err != nil {
			return Config{}, fmt.Errorf("LFSR_WIDTH: %w", err)
		}
	}

	cfg.Ciphertext = DefaultCiphertext(cfg.Width)
	if s := getenv("LFSR_CIPHERTEXT"); s != "" {
		ct, err := util.ParseHexBytes(s)
		if err != nil {
			return Config{}, fmt.Errorf("LFSR_CIPHERTEXT: %w", err)
		}
		cfg.Ciphertext = ct
	}

	cfg.Initial = DefaultInitial(cfg.Width)
	if s := getenv("LFSR_INITIAL"); s != "" {
		v, err := util.ParseUint(s)
		if err != nil {
			return Config{}, fmt.Errorf("LFSR_INITIAL: %w", err)
		}
		cfg.Initial = v
	}

	if s := getenv("LFSR_WORKERS"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Config{}, fmt.Errorf("LFSR_WORKERS: %w", err)
		}
		cfg.Workers = n
	}

	if s := getenv("LFSR_PROGRESS_INTERVAL"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return Config{}, fmt.Errorf("LFSR_PROGRESS_INTERVAL: %w", err)
		}
		cfg.ProgressInterval = d
	}

	return cfg, nil
}

// ValidateCipher checks the register settings shared by every command.
func (c Config) ValidateCipher() error {
	if err := c.Width.Validate(); err != nil {
		return err
	}
	if len(c.Ciphertext) == 0 {
		return lfsr.ErrEmptyCiphertext
	}
	if !c.Width.Contains(c.Initial) {
		return fmt.Errorf("initial value %#x does not fit in %d bits", c.Initial, uint(c.Width))
	}
	return nil
}

// Validate checks everything a search needs.
func (c Config) Validate() error {
	if err := c.ValidateCipher(); err != nil {
		return err
	}
	if c.Workers <= 0 {
		return fmt.Errorf("worker count must be positive, got %d", c.Workers)
	}
	if c.ProgressInterval <= 0 {
		return fmt.Errorf("progress interval must be positive, got %s", c.ProgressInterval)
	}
	return nil
}
