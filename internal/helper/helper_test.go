package helper

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type labelCall struct{ path, label string }

// newTestHelper returns a Helper whose label writes are recorded. Labels are
// only written when withSELinux is set.
func newTestHelper(t *testing.T, withSELinux bool) (*Helper, *[]labelCall) {
	t.Helper()
	mount := filepath.Join(t.TempDir(), "selinux")
	if withSELinux {
		require.NoError(t, os.Mkdir(mount, 0o755))
	}
	var calls []labelCall
	h := &Helper{
		selinuxMount: mount,
		setLabel: func(path, label string) error {
			calls = append(calls, labelCall{path, label})
			return nil
		},
	}
	return h, &calls
}

func owner() (string, string) {
	return strconv.Itoa(os.Getuid()), strconv.Itoa(os.Getgid())
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestCopyLibrary(t *testing.T) {
	h, labels := newTestHelper(t, false)
	cache := t.TempDir()
	base := filepath.Join(t.TempDir(), "hook")
	src32 := writeSource(t, cache, "armeabi-v7a/libhook.so", "arm32")
	src64 := writeSource(t, cache, "arm64-v8a/libhook.so", "arm64")
	uid, gid := owner()

	var out bytes.Buffer
	code := h.Run([]string{
		OpCopy, uid, gid, TypeLib, "u:object_r:system_file:s0", base,
		filepath.Join(base, "armeabi-v7a"), src32,
		filepath.Join(base, "arm64-v8a"), src64,
	}, &out)

	require.Equal(t, ExitOK, code, out.String())
	assert.Empty(t, out.String())
	assert.Empty(t, *labels)

	for seg, want := range map[string]string{"armeabi-v7a": "arm32", "arm64-v8a": "arm64"} {
		dst := filepath.Join(base, seg, "libhook.so")
		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, want, string(data))

		info, err := os.Stat(dst)
		require.NoError(t, err)
		assert.Equal(t, libMode, info.Mode().Perm())
	}
}

func TestCopyFilesSetsModeAndLabel(t *testing.T) {
	h, labels := newTestHelper(t, true)
	cache := t.TempDir()
	base := filepath.Join(t.TempDir(), "hook")
	src := writeSource(t, cache, "rules/extra.txt", "rules")
	uid, gid := owner()

	var out bytes.Buffer
	code := h.Run([]string{
		OpCopy, uid, gid, TypeFile, "u:object_r:system_data_file:s0", base,
		filepath.Join(base, "rules"), src,
	}, &out)
	require.Equal(t, ExitOK, code, out.String())

	dst := filepath.Join(base, "rules", "extra.txt")
	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, fileMode, info.Mode().Perm())
	assert.Equal(t, []labelCall{{dst, "u:object_r:system_data_file:s0"}}, *labels)
}

func TestCopyOverwritesExisting(t *testing.T) {
	h, _ := newTestHelper(t, false)
	cache := t.TempDir()
	base := t.TempDir()
	src := writeSource(t, cache, "conf.json", "new")
	writeSource(t, base, "conf.json", "old content that is longer")
	uid, gid := owner()

	var out bytes.Buffer
	code := h.Run([]string{OpCopy, uid, gid, TypeFile, "l", base, base, src}, &out)
	require.Equal(t, ExitOK, code, out.String())

	data, err := os.ReadFile(filepath.Join(base, "conf.json"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestCopyFailures(t *testing.T) {
	uid, gid := owner()
	cache := t.TempDir()
	src := writeSource(t, cache, "libhook.so", "x")

	notDir := writeSource(t, t.TempDir(), "blocker", "x")

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no args", nil, ExitUsage},
		{"unknown op", []string{"move", "a"}, ExitUsage},
		{"missing pair", []string{OpCopy, uid, gid, TypeLib, "l", "/tmp"}, ExitUsage},
		{"odd pair", []string{OpCopy, uid, gid, TypeLib, "l", "/tmp", "/tmp", src, "/tmp"}, ExitUsage},
		{"bad uid", []string{OpCopy, "root", gid, TypeLib, "l", "/tmp", "/tmp", src}, ExitUsage},
		{"negative gid", []string{OpCopy, uid, "-1", TypeLib, "l", "/tmp", "/tmp", src}, ExitUsage},
		{"bad type", []string{OpCopy, uid, gid, "exe", "l", "/tmp", "/tmp", src}, ExitUsage},
		{"missing source", []string{OpCopy, uid, gid, TypeLib, "l", t.TempDir(), t.TempDir(), filepath.Join(cache, "missing.so")}, ExitCopy},
		{"base is a file", []string{OpCopy, uid, gid, TypeLib, "l", notDir, t.TempDir(), src}, ExitCreateDir},
		{"remove nothing", []string{OpRemove}, ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHelper(t, false)
			var out bytes.Buffer

			code := h.Run(tt.args, &out)

			assert.Equal(t, tt.code, code)
			lines := bytes.Split(bytes.TrimRight(out.Bytes(), "\n"), []byte("\n"))
			assert.Len(t, lines, 1)
			assert.NotEmpty(t, lines[0])
		})
	}
}

func TestRemove(t *testing.T) {
	h, _ := newTestHelper(t, false)
	root := t.TempDir()
	writeSource(t, root, "x86/libhook.so", "x")
	writeSource(t, root, "x86/nested/deep.so", "x")
	file := writeSource(t, root, "conf.json", "x")
	keep := writeSource(t, root, "keep.txt", "x")

	var out bytes.Buffer
	code := h.Run([]string{
		OpRemove,
		filepath.Join(root, "x86"),
		file,
		filepath.Join(root, "missing"),
	}, &out)

	require.Equal(t, ExitOK, code, out.String())
	assert.Empty(t, out.String())
	assert.NoDirExists(t, filepath.Join(root, "x86"))
	assert.NoFileExists(t, file)
	assert.FileExists(t, keep)
}

func TestRemoveSymlinkLeavesTarget(t *testing.T) {
	h, _ := newTestHelper(t, false)
	root := t.TempDir()
	target := writeSource(t, root, "target/lib.so", "x")
	link := filepath.Join(root, "link")
	require.NoError(t, os.Symlink(filepath.Dir(target), link))

	var out bytes.Buffer
	require.Equal(t, ExitOK, h.Run([]string{OpRemove, link}, &out), out.String())

	assert.FileExists(t, target)
	_, err := os.Lstat(link)
	assert.True(t, os.IsNotExist(err))
}

func TestCreateDirMakesParents(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "a", "b", "c")

	require.NoError(t, createDir(dir, os.Getuid(), os.Getgid()))
	assert.DirExists(t, dir)
	require.NoError(t, createDir(dir, os.Getuid(), os.Getgid()))
}

func TestWithSELinuxMountDisablesLabels(t *testing.T) {
	h := New(WithSELinuxMount(filepath.Join(t.TempDir(), "missing")))
	called := false
	h.setLabel = func(string, string) error {
		called = true
		return nil
	}

	require.NoError(t, h.label(filepath.Join(t.TempDir(), "x"), "l"))
	assert.False(t, called)
}
