// Package abi resolves the instruction-set family and bitness of the device
// that payloads are installed on, and the canonical directory segments used
// for the 32-bit and 64-bit payload variants.
//
// A Profile is computed once by an explicit Resolve or Detector call and then
// passed by value to every component that needs it. Nothing in this package
// keeps process-wide state.
package abi

import "context"

// Canonical ABI names. These double as the path segments used inside the
// package archive (lib/<abi>/...) and under the staging and destination roots.
const (
	ABIX86      = "x86"
	ABIX86_64   = "x86_64"
	ABIArmV7    = "armeabi-v7a"
	ABIArm64    = "arm64-v8a"
	ABIArmeabi  = "armeabi"
	x86Marker   = "x86"
	bit64Marker = "64"
)

// Profile describes the ABI facts of the running device.
type Profile struct {
	IsX86         bool   // device belongs to the x86 family
	Supports64Bit bool   // some supported ABI is 64-bit
	RunningABI    string // ABI of the running process, e.g. "arm64-v8a"
	Path32        string // 32-bit segment: "x86" or "armeabi-v7a"
	Path64        string // 64-bit segment: "x86_64" or "arm64-v8a"
}

// Is64Bit reports whether the running ABI is a 64-bit one.
func (p Profile) Is64Bit() bool {
	return p.RunningABI == ABIX86_64 || p.RunningABI == ABIArm64
}

// Segments returns the path segments payloads are staged and installed
// under, 32-bit first. The 64-bit segment is only present when the device
// supports 64-bit code.
func (p Profile) Segments() []string {
	if p.Supports64Bit {
		return []string{p.Path32, p.Path64}
	}
	return []string{p.Path32}
}

// Detector produces a Profile for the device.
type Detector interface {
	Detect(ctx context.Context) (Profile, error)
}
