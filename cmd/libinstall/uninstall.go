package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove installed libraries or files",
}

var uninstallLibCmd = &cobra.Command{
	Use:   "lib",
	Short: "Remove the installed library directories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := newInstaller(cmd.Context())
		if err != nil {
			return err
		}
		if err := inst.UninstallLibrary(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "removed library directories")
		return nil
	},
}

var uninstallFilesCmd = &cobra.Command{
	Use:   "files <name>...",
	Short: "Remove installed files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := newInstaller(cmd.Context())
		if err != nil {
			return err
		}
		if err := inst.UninstallFiles(cmd.Context(), args...); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d file(s)\n", len(args))
		return nil
	},
}

func init() {
	uninstallCmd.AddCommand(uninstallLibCmd, uninstallFilesCmd)
	rootCmd.AddCommand(uninstallCmd)
}
