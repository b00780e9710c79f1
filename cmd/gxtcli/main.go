// Package main provides the CLI entry point for the gxtcli token adapter.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set at build time via ldflags.
	Version = "dev"

	verbose bool
	logFmt  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "gxtcli",
		Short:   "gxtcli - create, verify, and decrypt GXT tokens",
		Version: Version,
		Long: `gxtcli is a thin command-line adapter around the gxt token
library: it generates keys, builds ID cards and encrypted messages, and
verifies or decrypts tokens handed to it on the command line or stdin.

It has no contract with the core beyond the pure operations the gxt
package exposes; all file I/O, prompting, and styled output lives here.`,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable structured debug logging")
	rootCmd.PersistentFlags().StringVar(&logFmt, "log-format", "text", "log format for --verbose: text or json")

	rootCmd.AddGroup(&cobra.Group{ID: "keys", Title: "Keys:"})
	rootCmd.AddGroup(&cobra.Group{ID: "build", Title: "Build Tokens:"})
	rootCmd.AddGroup(&cobra.Group{ID: "read", Title: "Read Tokens:"})

	keygen := keygenCmd()
	keygen.GroupID = "keys"
	rootCmd.AddCommand(keygen)

	id := idCmd()
	id.GroupID = "build"
	rootCmd.AddCommand(id)

	send := sendCmd()
	send.GroupID = "build"
	rootCmd.AddCommand(send)

	verify := verifyCmd()
	verify.GroupID = "read"
	rootCmd.AddCommand(verify)

	decrypt := decryptCmd()
	decrypt.GroupID = "read"
	rootCmd.AddCommand(decrypt)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
