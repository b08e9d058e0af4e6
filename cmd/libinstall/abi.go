package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var abiCmd = &cobra.Command{
	Use:   "abi",
	Short: "Show the detected ABI facts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		det, err := detector(opts.detector)
		if err != nil {
			return err
		}
		profile, err := det.Detect(cmd.Context())
		if err != nil {
			return fmt.Errorf("detect abi: %w", err)
		}
		report := newABIReport(profile)
		return render(cmd.OutOrStdout(), opts.output, report, func(w io.Writer) error {
			fmt.Fprintf(w, "Running ABI:    %s\n", report.RunningABI)
			fmt.Fprintf(w, "x86 family:     %s\n", yesNo(report.IsX86))
			fmt.Fprintf(w, "64-bit support: %s\n", yesNo(report.Supports64Bit))
			_, err := fmt.Fprintf(w, "Segments:       %s\n", joinSegments(report))
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(abiCmd)
}
