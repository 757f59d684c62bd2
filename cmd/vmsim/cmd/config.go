package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := loadOptions(cmd.Flags())
		if err != nil {
			return err
		}

		return printConfig(cmd.OutOrStdout(), opts)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	addFlags(configCmd.Flags())
}

func printConfig(out io.Writer, o options) error {
	cfg, err := o.config()
	if err != nil {
		return err
	}

	if _, err := o.victimFinder(); err != nil {
		return err
	}

	fmt.Fprintf(out, "page size:       %d bytes\n", cfg.PageSize())
	fmt.Fprintf(out, "level bits:      %v\n", cfg.LevelBits)
	fmt.Fprintf(out, "virtual bits:    %d\n", cfg.VirtualBits())
	fmt.Fprintf(out, "frames:          %d\n", cfg.NumFrames)
	fmt.Fprintf(out, "tlb:             %t\n", o.TLB)
	fmt.Fprintf(out, "tlb sets:        %d (index %d bits, tag %d bits)\n",
		cfg.NumSets(), cfg.TLBIndexBits, cfg.TLBTagBits)
	fmt.Fprintf(out, "tlb lines:       %d\n", cfg.TLBLinesPerSet)
	fmt.Fprintf(out, "policy:          %s\n", o.Policy)
	fmt.Fprintf(out, "swap:            %s\n", o.Swap)
	fmt.Fprintf(out, "seed:            %d\n", o.Seed)

	return nil
}
