// Package testutil provides utilities for testing libinstall in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Env holds the isolated directories created for one test.
type Env struct {
	Root       string // temp root
	CacheDir   string // staging directory
	ConfigPath string // destination root (not created)
	Archive    string // package archive path (not created)
}

// SetupTestEnv creates isolated test directories for each test and points
// the LIBINSTALL_* environment variables at them, so tests never touch a
// real device layout or the user's configuration.
//
// The cleanup is handled by t.TempDir().
func SetupTestEnv(t *testing.T) *Env {
	t.Helper()

	tmpDir := t.TempDir()
	env := &Env{
		Root:       tmpDir,
		CacheDir:   filepath.Join(tmpDir, "cache"),
		ConfigPath: filepath.Join(tmpDir, "data", "hook"),
		Archive:    filepath.Join(tmpDir, "app.apk"),
	}

	t.Setenv("LIBINSTALL_CONFIG", filepath.Join(tmpDir, "config", "libinstall.lua"))
	t.Setenv("LIBINSTALL_CACHE_DIR", env.CacheDir)
	t.Setenv("LIBINSTALL_TEST_MODE", "1")

	for _, dir := range []string{filepath.Join(tmpDir, "config"), env.CacheDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return env
}
