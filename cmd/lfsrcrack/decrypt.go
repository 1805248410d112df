package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lfsrcrack/internal/lfsr"
	"lfsrcrack/internal/util"
)

func newDecryptCmd() *cobra.Command {
	var (
		f    cipherFlags
		taps string
	)
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt the ciphertext with one tap configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			if err := cfg.ValidateCipher(); err != nil {
				return err
			}
			t, err := util.ParseUint(taps)
			if err != nil {
				return fmt.Errorf("--taps: %w", err)
			}
			if !cfg.Width.Contains(t) {
				return fmt.Errorf("--taps %#x does not fit in %d bits", t, uint(cfg.Width))
			}
			full := lfsr.Apply(cfg.Width, cfg.Ciphertext, cfg.Initial, t)
			_, ok := lfsr.Decrypt(cfg.Width, cfg.Ciphertext, cfg.Initial, t, nil)
			fmt.Fprintf(cmd.OutOrStdout(), "plaintext: %s\nprintable: %t\n", util.Quote(full), ok)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&taps, "taps", "", "tap mask, e.g. 0x1d or 0b00011101")
	_ = cmd.MarkFlagRequired("taps")
	return cmd
}

func newEncryptCmd() *cobra.Command {
	var (
		f    cipherFlags
		taps string
		text string
	)
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Produce the ciphertext of a plaintext under one tap configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			if err := cfg.ValidateCipher(); err != nil {
				return err
			}
			t, err := util.ParseUint(taps)
			if err != nil {
				return fmt.Errorf("--taps: %w", err)
			}
			if !cfg.Width.Contains(t) {
				return fmt.Errorf("--taps %#x does not fit in %d bits", t, uint(cfg.Width))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%x\n", lfsr.Apply(cfg.Width, []byte(text), cfg.Initial, t))
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&taps, "taps", "", "tap mask")
	cmd.Flags().StringVar(&text, "text", "", "plaintext to encrypt")
	_ = cmd.MarkFlagRequired("taps")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}
