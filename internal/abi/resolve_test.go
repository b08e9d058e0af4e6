package abi

import (
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		supported32 []string
		supported   []string
		cpuABIs     []string
		want        Profile
	}{
		{
			name:        "arm64_device_running_64bit",
			supported32: []string{"armeabi-v7a", "armeabi"},
			supported:   []string{"arm64-v8a", "armeabi-v7a", "armeabi"},
			cpuABIs:     []string{"arm64-v8a"},
			want: Profile{
				IsX86: false, Supports64Bit: true, RunningABI: ABIArm64,
				Path32: ABIArmV7, Path64: ABIArm64,
			},
		},
		{
			name:        "arm64_device_running_32bit_process",
			supported32: []string{"armeabi-v7a", "armeabi"},
			supported:   []string{"arm64-v8a", "armeabi-v7a", "armeabi"},
			cpuABIs:     []string{"armeabi-v7a", "armeabi"},
			want: Profile{
				IsX86: false, Supports64Bit: true, RunningABI: ABIArmV7,
				Path32: ABIArmV7, Path64: ABIArm64,
			},
		},
		{
			name:        "x86_64_emulator",
			supported32: []string{"x86"},
			supported:   []string{"x86_64", "x86"},
			cpuABIs:     []string{"x86_64"},
			want: Profile{
				IsX86: true, Supports64Bit: true, RunningABI: ABIX86_64,
				Path32: ABIX86, Path64: ABIX86_64,
			},
		},
		{
			name:        "x86_32bit_only",
			supported32: []string{"x86"},
			supported:   []string{"x86"},
			cpuABIs:     []string{"x86"},
			want: Profile{
				IsX86: true, Supports64Bit: false, RunningABI: ABIX86,
				Path32: ABIX86, Path64: ABIX86_64,
			},
		},
		{
			name:        "cpu_reports_64_but_device_does_not",
			supported32: []string{"armeabi-v7a"},
			supported:   []string{"armeabi-v7a"},
			cpuABIs:     []string{"arm64-v8a"},
			want: Profile{
				IsX86: false, Supports64Bit: false, RunningABI: ABIArmV7,
				Path32: ABIArmV7, Path64: ABIArm64,
			},
		},
		{
			name:        "secondary_cpu_abi_is_64bit",
			supported32: []string{"armeabi-v7a"},
			supported:   []string{"arm64-v8a", "armeabi-v7a"},
			cpuABIs:     []string{"armeabi-v7a", "arm64-v8a"},
			want: Profile{
				IsX86: false, Supports64Bit: true, RunningABI: ABIArm64,
				Path32: ABIArmV7, Path64: ABIArm64,
			},
		},
		{
			name: "no_signal_defaults_to_arm32",
			want: Profile{
				IsX86: false, Supports64Bit: false, RunningABI: ABIArmV7,
				Path32: ABIArmV7, Path64: ABIArm64,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.supported32, tt.supported, tt.cpuABIs)
			if got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	lists := [][]string{
		nil,
		{"x86"},
		{"armeabi-v7a"},
		{"x86_64", "x86"},
		{"arm64-v8a", "armeabi-v7a"},
	}

	for _, s32 := range lists {
		for _, s := range lists {
			for _, cpu := range lists {
				first := Resolve(s32, s, cpu)
				second := Resolve(s32, s, cpu)
				if first != second {
					t.Fatalf("Resolve(%v, %v, %v) not deterministic: %+v vs %+v", s32, s, cpu, first, second)
				}

				// Path segments always come from the same family.
				if first.IsX86 && (first.Path32 != ABIX86 || first.Path64 != ABIX86_64) {
					t.Errorf("x86 profile has mixed segments: %+v", first)
				}
				if !first.IsX86 && (first.Path32 != ABIArmV7 || first.Path64 != ABIArm64) {
					t.Errorf("arm profile has mixed segments: %+v", first)
				}
			}
		}
	}
}

func TestProfile_Segments(t *testing.T) {
	p := Profile{Path32: ABIArmV7, Path64: ABIArm64}
	if got := p.Segments(); len(got) != 1 || got[0] != ABIArmV7 {
		t.Errorf("Segments() = %v, want [%s]", got, ABIArmV7)
	}

	p.Supports64Bit = true
	if got := p.Segments(); len(got) != 2 || got[1] != ABIArm64 {
		t.Errorf("Segments() = %v, want [%s %s]", got, ABIArmV7, ABIArm64)
	}
}

func TestLinkerModuleName(t *testing.T) {
	if got := LinkerModuleName("fakelinker", 30); got != "libfakelinker-30.so" {
		t.Errorf("LinkerModuleName() = %q, want %q", got, "libfakelinker-30.so")
	}
}
