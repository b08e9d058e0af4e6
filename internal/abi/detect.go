package abi

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// Android system properties carrying the ABI lists.
const (
	PropABIList32 = "ro.product.cpu.abilist32"
	PropABIList   = "ro.product.cpu.abilist"
	PropCPUABI    = "ro.product.cpu.abi"
	PropCPUABI2   = "ro.product.cpu.abi2"
)

// PropertyReader returns the value of a single system property. An unset
// property is returned as an empty string, not an error.
type PropertyReader func(ctx context.Context, key string) (string, error)

// PropertyDetector resolves a Profile from Android system properties.
type PropertyDetector struct {
	read PropertyReader
}

// NewPropertyDetector creates a detector backed by the getprop tool.
func NewPropertyDetector() *PropertyDetector {
	return &PropertyDetector{read: getprop}
}

// NewPropertyDetectorWithReader creates a detector backed by a custom
// property source.
func NewPropertyDetectorWithReader(read PropertyReader) *PropertyDetector {
	return &PropertyDetector{read: read}
}

// Detect reads the ABI properties and resolves them.
func (d *PropertyDetector) Detect(ctx context.Context) (Profile, error) {
	values := make(map[string]string, 4)
	for _, key := range []string{PropABIList32, PropABIList, PropCPUABI, PropCPUABI2} {
		v, err := d.read(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				return Profile{}, fmt.Errorf("abi detection cancelled: %w", ctx.Err())
			}
			return Profile{}, fmt.Errorf("read property %s: %w", key, err)
		}
		values[key] = strings.TrimSpace(v)
	}

	return Resolve(
		splitList(values[PropABIList32]),
		splitList(values[PropABIList]),
		nonEmpty(values[PropCPUABI], values[PropCPUABI2]),
	), nil
}

func getprop(ctx context.Context, key string) (string, error) {
	out, err := exec.CommandContext(ctx, "getprop", key).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// HostDetector resolves a Profile for the machine this process runs on. It
// is used off-device, where no Android properties exist.
type HostDetector struct{}

// NewHostDetector creates a host detector.
func NewHostDetector() *HostDetector {
	return &HostDetector{}
}

// Detect maps the kernel architecture reported by gopsutil onto Android ABI
// lists. If the kernel architecture cannot be read, the Go runtime
// architecture is used instead.
func (d *HostDetector) Detect(ctx context.Context) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, fmt.Errorf("abi detection cancelled: %w", err)
	}
	arch, err := host.KernelArch()
	if err != nil || arch == "" {
		arch = runtime.GOARCH
	}

	lists, err := hostABILists(arch)
	if err != nil {
		return Profile{}, err
	}
	return Resolve(lists.supported32, lists.supported, lists.cpu), nil
}

type abiLists struct {
	supported32 []string
	supported   []string
	cpu         []string
}

// hostABILists maps kernel (uname -m) and GOARCH architecture names onto the
// ABI lists an Android device of that architecture would report.
func hostABILists(arch string) (abiLists, error) {
	switch strings.ToLower(strings.TrimSpace(arch)) {
	case "x86_64", "amd64":
		return abiLists{
			supported32: []string{ABIX86},
			supported:   []string{ABIX86_64, ABIX86},
			cpu:         []string{ABIX86_64},
		}, nil
	case "i386", "i686", "x86", "386":
		return abiLists{
			supported32: []string{ABIX86},
			supported:   []string{ABIX86},
			cpu:         []string{ABIX86},
		}, nil
	case "aarch64", "arm64", "armv8l":
		return abiLists{
			supported32: []string{ABIArmV7, ABIArmeabi},
			supported:   []string{ABIArm64, ABIArmV7, ABIArmeabi},
			cpu:         []string{ABIArm64},
		}, nil
	case "arm", "armv7l", "armv7", "armv6l":
		return abiLists{
			supported32: []string{ABIArmV7, ABIArmeabi},
			supported:   []string{ABIArmV7, ABIArmeabi},
			cpu:         []string{ABIArmV7},
		}, nil
	default:
		return abiLists{}, fmt.Errorf("unsupported architecture: %s", arch)
	}
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
