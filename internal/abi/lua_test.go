package abi

import (
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestInjectTable(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	InjectTable(L, Resolve([]string{"x86"}, []string{"x86_64", "x86"}, []string{"x86_64"}))

	code := `
		result = {
			running = abi.running,
			path32 = abi.path32,
			is_x86 = abi.is_x86,
			is_64bit = abi.is_64bit,
		}
	`
	if err := L.DoString(code); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	result := L.GetGlobal("result").(*lua.LTable)
	if got := result.RawGetString("running").String(); got != ABIX86_64 {
		t.Errorf("abi.running = %s, want %s", got, ABIX86_64)
	}
	if got := result.RawGetString("path32").String(); got != ABIX86 {
		t.Errorf("abi.path32 = %s, want %s", got, ABIX86)
	}
	if result.RawGetString("is_x86") != lua.LTrue {
		t.Error("abi.is_x86 should be true")
	}
	if result.RawGetString("is_64bit") != lua.LTrue {
		t.Error("abi.is_64bit should be true")
	}
}

func TestInjectTable_ReadOnly(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	InjectTable(L, Profile{Path32: ABIArmV7, Path64: ABIArm64, RunningABI: ABIArmV7})

	err := L.DoString(`abi.running = "x86"`)
	if err == nil {
		t.Fatal("expected error writing to abi table")
	}
	if !strings.Contains(err.Error(), "read-only") {
		t.Errorf("error = %v, want read-only error", err)
	}
}
