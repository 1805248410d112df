package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "lfsrcrack",
		Short:        "Recover the tap configuration of an LFSR stream cipher by exhaustive search",
		SilenceUsage: true,
	}
	root.AddCommand(newSearchCmd(), newDecryptCmd(), newEncryptCmd(), newTokenCmd())
	return root
}
