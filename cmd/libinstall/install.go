package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install a library or files",
}

var installLibCmd = &cobra.Command{
	Use:   "lib <name>",
	Short: "Install lib/<abi>/<name> for every supported architecture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := newInstaller(cmd.Context())
		if err != nil {
			return err
		}
		if err := inst.InstallLibrary(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "installed %s\n", args[0])
		return nil
	},
}

var installLinkerCmd = &cobra.Command{
	Use:   "linker <module> <sdk>",
	Short: "Install the linker module lib<module>-<sdk>.so",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sdk, err := strconv.Atoi(args[1])
		if err != nil || sdk <= 0 {
			return fmt.Errorf("invalid sdk level %q", args[1])
		}
		inst, err := newInstaller(cmd.Context())
		if err != nil {
			return err
		}
		if err := inst.InstallLinkerLibrary(cmd.Context(), args[0], sdk); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "installed linker module %s for sdk %d\n", args[0], sdk)
		return nil
	},
}

var installFilesCmd = &cobra.Command{
	Use:   "files <name>...",
	Short: "Install assets/<name> files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := newInstaller(cmd.Context())
		if err != nil {
			return err
		}
		if err := inst.InstallFiles(cmd.Context(), args...); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "installed %d file(s)\n", len(args))
		return nil
	},
}

func init() {
	installCmd.AddCommand(installLibCmd, installLinkerCmd, installFilesCmd)
	rootCmd.AddCommand(installCmd)
}
