package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lfsrcrack/internal/config"
	"lfsrcrack/internal/lfsr"
	"lfsrcrack/internal/util"
)

// cipherFlags override the width, ciphertext and initial value from the
// environment.
type cipherFlags struct {
	width      int
	ciphertext string
	initial    string
}

func (f *cipherFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.width, "width", 64, "register width in bits (8 or 64)")
	cmd.Flags().StringVar(&f.ciphertext, "ciphertext", "", "ciphertext as hex")
	cmd.Flags().StringVar(&f.initial, "initial", "", "initial register value")
}

// load reads the environment and applies any flags the user set. Changing
// the width without a ciphertext or initial value switches to that width's
// sample defaults. The result is not validated; commands validate once their
// own overrides are in place.
func (f *cipherFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("width") {
		w, err := lfsr.ParseWidth(f.width)
		if err != nil {
			return cfg, err
		}
		if w != cfg.Width {
			cfg.Width = w
			cfg.Ciphertext = config.DefaultCiphertext(w)
			cfg.Initial = config.DefaultInitial(w)
		}
	}
	if f.ciphertext != "" {
		if cfg.Ciphertext, err = util.ParseHexBytes(f.ciphertext); err != nil {
			return cfg, fmt.Errorf("--ciphertext: %w", err)
		}
	}
	if f.initial != "" {
		if cfg.Initial, err = util.ParseUint(f.initial); err != nil {
			return cfg, fmt.Errorf("--initial: %w", err)
		}
	}
	return cfg, nil
}
