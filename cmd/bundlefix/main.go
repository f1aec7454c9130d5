package main

import (
	"fmt"
	"os"

	"github.com/makutaku/bundlefix/internal/cli"
	"github.com/makutaku/bundlefix/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bundlefix",
	Short: "A CLI tool for post-processing packaged Electron/NW.js Windows apps",
	Long: `Bundlefix post-processes desktop packager output. It validates an Electron
or NW.js Windows application zip, repairs the executable's icon and version
metadata, rewrites the archive in place, and can compile a Windows installer
from the corrected bundle.`,
	Version: version.GetVersionString(),
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")

	// Add subcommands
	rootCmd.AddCommand(cli.NewProcessCommand())
	rootCmd.AddCommand(cli.NewInspectCommand())
	rootCmd.AddCommand(cli.NewCheckUpdateCommand())
	rootCmd.AddCommand(cli.NewVersionCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
