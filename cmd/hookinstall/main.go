// Command hookinstall is the privileged helper. It is staged from the
// package archive and run by libinstall, normally through su.
package main

import (
	"os"

	"github.com/ZebulonRouseFrantzich/libinstall/internal/helper"
)

func main() {
	os.Exit(helper.Run(os.Args[1:], os.Stdout))
}
