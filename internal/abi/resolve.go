package abi

import (
	"fmt"
	"strings"
)

// Resolve derives a Profile from the platform-reported ABI lists.
//
//   - supported32 is the list of supported 32-bit ABIs
//   - supported is the full list of supported ABIs
//   - cpuABIs are the raw CPU ABI strings the platform reports for the
//     running process (primary and secondary)
//
// Resolve never fails. With no usable signal it reports an ARM, 32-bit
// device.
func Resolve(supported32, supported, cpuABIs []string) Profile {
	p := Profile{
		IsX86:         anyContains(supported32, x86Marker),
		Supports64Bit: anyContains(supported, bit64Marker),
	}

	if p.IsX86 {
		p.Path32, p.Path64 = ABIX86, ABIX86_64
	} else {
		p.Path32, p.Path64 = ABIArmV7, ABIArm64
	}

	if p.Supports64Bit && anyContains(cpuABIs, bit64Marker) {
		p.RunningABI = p.Path64
	} else {
		p.RunningABI = p.Path32
	}

	return p
}

// LinkerModuleName returns the file name of the linker library built for a
// given platform SDK level: lib<module>-<sdk>.so.
func LinkerModuleName(module string, sdk int) string {
	return fmt.Sprintf("lib%s-%d.so", module, sdk)
}

func anyContains(values []string, marker string) bool {
	for _, v := range values {
		if strings.Contains(v, marker) {
			return true
		}
	}
	return false
}
