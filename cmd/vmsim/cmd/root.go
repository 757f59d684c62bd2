// Package cmd provides the command-line interface of vmsim.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vmsim",
	Short: "vmsim simulates the virtual memory of an educational machine.",
	Long: `vmsim simulates the virtual memory of an educational machine. It ` +
		`translates the addresses of an access trace through a TLB and a ` +
		`four-level page table, swapping pages in and out of a small ` +
		`physical memory. Settings are read from VMSIM_* environment ` +
		`variables and an optional .env file; flags take precedence.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("env", ".env",
		"The file to load VMSIM_* settings from. It may be absent.")
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It exits through atexit so that recordings are flushed.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
