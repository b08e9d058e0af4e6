// Command libinstall installs native libraries and files from a package
// archive into protected locations through the hookinstall helper.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ZebulonRouseFrantzich/libinstall/internal/installer"
)

// Version will be set at build time via -ldflags
var Version = "v0.1.0"

// Exit codes by error kind.
const (
	exitError     = 1
	exitConfig    = 2
	exitIO        = 3
	exitPrivilege = 4
	exitExecution = 5
	exitBusy      = 6
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, installer.ErrConfiguration):
		return exitConfig
	case errors.Is(err, installer.ErrIO):
		return exitIO
	case errors.Is(err, installer.ErrPrivilegeUnavailable):
		return exitPrivilege
	case errors.Is(err, installer.ErrExecution):
		return exitExecution
	case errors.Is(err, installer.ErrBusy):
		return exitBusy
	default:
		return exitError
	}
}
