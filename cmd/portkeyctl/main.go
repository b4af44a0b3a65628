// Command portkeyctl is a reference CLI over the server/client packages,
// grounded on vango-go-vango's cmd/vango root command (a bare cobra.Command
// wired up with subcommand constructors).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "portkeyctl",
		Short:         "Drive a portkey Coded-handshake server or client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		dialCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "portkeyctl: %s\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("portkeyctl %s (%s)\n", version, commit)
		},
	}
}
