package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "verdant",
		Short: "Declarative UI reconciliation for Go",
		Long: `Verdant reconciles declarative description trees against live
UI trees: minimal patches, keyed list reordering, hydration of
server-rendered markup, and component error boundaries.

The serve command runs a demo application that exercises the
whole pipeline end to end: SSR, websocket patch streaming, and
coalesced re-renders.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
