package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZebulonRouseFrantzich/libinstall/internal/abi"
)

var (
	x86Only = abi.Profile{IsX86: true, RunningABI: abi.ABIX86, Path32: abi.ABIX86, Path64: abi.ABIX86_64}
	x86Both = abi.Profile{IsX86: true, Supports64Bit: true, RunningABI: abi.ABIX86_64, Path32: abi.ABIX86, Path64: abi.ABIX86_64}
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIsLibraryInstalled(t *testing.T) {
	tests := []struct {
		name    string
		profile abi.Profile
		present []string
		want    bool
	}{
		{"32-bit present", x86Only, []string{"x86/libhook.so"}, true},
		{"32-bit absent", x86Only, nil, false},
		{"64-bit device needs both", x86Both, []string{"x86/libhook.so"}, false},
		{"64-bit device only 64", x86Both, []string{"x86_64/libhook.so"}, false},
		{"64-bit device both", x86Both, []string{"x86/libhook.so", "x86_64/libhook.so"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for _, p := range tt.present {
				touch(t, filepath.Join(root, p))
			}

			q := New(root, tt.profile)
			if got := q.IsLibraryInstalled("libhook.so"); got != tt.want {
				t.Errorf("IsLibraryInstalled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAreFilesInstalled(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.json"))
	touch(t, filepath.Join(root, "rules", "b.txt"))
	q := New(root, x86Only)

	tests := []struct {
		names []string
		want  bool
	}{
		{[]string{"a.json"}, true},
		{[]string{"a.json", "rules/b.txt"}, true},
		{[]string{"a.json", "missing.txt"}, false},
		{[]string{"missing.txt"}, false},
		{[]string{"../a.json"}, false},
		{[]string{"/etc/hostname"}, false},
		{nil, true},
	}

	for _, tt := range tests {
		if got := q.AreFilesInstalled(tt.names...); got != tt.want {
			t.Errorf("AreFilesInstalled(%q) = %v, want %v", tt.names, got, tt.want)
		}
	}

	if !q.IsFileInstalled("rules/b.txt") {
		t.Error("IsFileInstalled(rules/b.txt) = false, want true")
	}
}

func TestEmptyConfigPath(t *testing.T) {
	// Relative paths would otherwise resolve against the working directory.
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "x86", "libhook.so"))
	// Equivalent of t.Chdir (Go 1.24+) for the Go 1.21 toolchain.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	q := New("", x86Only)
	if q.IsLibraryInstalled("libhook.so") {
		t.Error("IsLibraryInstalled() with empty config path = true")
	}
	if q.AreFilesInstalled() {
		t.Error("AreFilesInstalled() with empty config path = true")
	}
}

func TestInvalidLibraryName(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "x86", "sub", "lib.so"))

	q := New(root, x86Only)
	for _, name := range []string{"", "sub/lib.so"} {
		if q.IsLibraryInstalled(name) {
			t.Errorf("IsLibraryInstalled(%q) = true", name)
		}
	}
}
