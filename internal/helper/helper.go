// Package helper implements the privileged side of the install protocol: it
// runs as its own executable, usually as root, and copies staged payloads
// into place or removes them.
//
// The helper prints nothing on success. On failure it prints a single line
// and exits non-zero; callers treat any output as a failure report.
package helper

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Protocol keywords.
const (
	OpCopy   = "copy"
	OpRemove = "remove"
	TypeLib  = "lib"
	TypeFile = "file"
)

// Exit codes.
const (
	ExitOK = iota
	ExitUsage
	ExitCreateDir
	ExitCopy
	ExitChmod
	ExitChown
	ExitLabel
	ExitRemove
)

// SELinuxMount is probed before writing security labels; labels are only
// written when it exists.
const SELinuxMount = "/sys/fs/selinux"

// LabelXattr is the extended attribute holding a file's security label.
const LabelXattr = "security.selinux"

const (
	libMode  os.FileMode = 0o755
	fileMode os.FileMode = 0o644
	dirMode  os.FileMode = 0o755
)

var errUsage = errors.New("usage: copy <uid> <gid> lib|file <label> <baseDir> (<dstDir> <src>)+ | remove <path>+")

// opError carries the exit code for a failed step.
type opError struct {
	code int
	err  error
}

func (e *opError) Error() string { return e.err.Error() }
func (e *opError) Unwrap() error { return e.err }

func fail(code int, format string, args ...any) error {
	return &opError{code: code, err: fmt.Errorf(format, args...)}
}

// Helper executes protocol commands.
type Helper struct {
	selinuxMount string
	setLabel     func(path, label string) error
}

// Option configures a Helper.
type Option func(*Helper)

// WithSELinuxMount changes the path probed for label support. Pointing it
// at a missing path disables label writes.
func WithSELinuxMount(path string) Option {
	return func(h *Helper) {
		h.selinuxMount = path
	}
}

// New returns a Helper using the host's label support.
func New(opts ...Option) *Helper {
	h := &Helper{selinuxMount: SELinuxMount, setLabel: setLabel}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes one protocol command with the default Helper.
func Run(args []string, out io.Writer) int {
	return New().Run(args, out)
}

// Run executes args (without the program name) and returns the exit code.
// Failures are reported as one line on out.
func (h *Helper) Run(args []string, out io.Writer) int {
	var err error
	switch {
	case len(args) == 0:
		err = &opError{code: ExitUsage, err: errUsage}
	case args[0] == OpCopy:
		err = h.copyCmd(args[1:])
	case args[0] == OpRemove:
		err = h.removeCmd(args[1:])
	default:
		err = fail(ExitUsage, "unknown operation %q", args[0])
	}
	if err == nil {
		return ExitOK
	}

	fmt.Fprintln(out, err.Error())
	var oe *opError
	if errors.As(err, &oe) {
		return oe.code
	}
	return ExitUsage
}

type copyRequest struct {
	uid, gid int
	lib      bool
	label    string
	baseDir  string
	pairs    [][2]string // dstDir, src
}

func parseCopy(args []string) (copyRequest, error) {
	var req copyRequest
	if len(args) < 7 || (len(args)-5)%2 != 0 {
		return req, &opError{code: ExitUsage, err: errUsage}
	}

	uid, err := strconv.Atoi(args[0])
	if err != nil || uid < 0 {
		return req, fail(ExitUsage, "invalid uid %q", args[0])
	}
	gid, err := strconv.Atoi(args[1])
	if err != nil || gid < 0 {
		return req, fail(ExitUsage, "invalid gid %q", args[1])
	}

	switch args[2] {
	case TypeLib:
		req.lib = true
	case TypeFile:
	default:
		return req, fail(ExitUsage, "invalid file type %q", args[2])
	}

	req.uid, req.gid = uid, gid
	req.label = args[3]
	req.baseDir = args[4]
	for i := 5; i < len(args); i += 2 {
		req.pairs = append(req.pairs, [2]string{args[i], args[i+1]})
	}
	return req, nil
}

func (h *Helper) copyCmd(args []string) error {
	req, err := parseCopy(args)
	if err != nil {
		return err
	}

	if err := createDir(req.baseDir, req.uid, req.gid); err != nil {
		return err
	}

	mode := fileMode
	if req.lib {
		mode = libMode
	}

	for _, pair := range req.pairs {
		dstDir, src := pair[0], pair[1]
		if err := createDir(dstDir, req.uid, req.gid); err != nil {
			return err
		}

		dst := filepath.Join(dstDir, filepath.Base(src))
		if err := copyFile(dst, src); err != nil {
			return err
		}
		if err := os.Chmod(dst, mode); err != nil {
			return fail(ExitChmod, "chmod %s: %v", dst, err)
		}
		if err := os.Chown(dst, req.uid, req.gid); err != nil {
			return fail(ExitChown, "chown %s: %v", dst, err)
		}
		if err := h.label(dst, req.label); err != nil {
			return fail(ExitLabel, "set label on %s: %v", dst, err)
		}
	}
	return nil
}

func (h *Helper) label(path, label string) error {
	if _, err := os.Stat(h.selinuxMount); err != nil {
		return nil
	}
	return h.setLabel(path, label)
}

// createDir creates dir and any missing parents, handing each newly created
// directory to uid:gid.
func createDir(dir string, uid, gid int) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fail(ExitCreateDir, "create directory %s: not a directory", dir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fail(ExitCreateDir, "create directory %s: %v", dir, err)
	}

	if parent := filepath.Dir(dir); parent != dir {
		if err := createDir(parent, uid, gid); err != nil {
			return err
		}
	}

	if err := os.Mkdir(dir, dirMode); err != nil && !os.IsExist(err) {
		return fail(ExitCreateDir, "create directory %s: %v", dir, err)
	}
	if err := os.Chown(dir, uid, gid); err != nil {
		return fail(ExitChown, "chown %s: %v", dir, err)
	}
	return nil
}

// copyFile writes src to a temporary file next to dst and renames it into
// place, so a library mapped by a running process is replaced rather than
// rewritten underneath it.
func copyFile(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return fail(ExitCopy, "copy %s: %v", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return fail(ExitCopy, "copy %s: %v", src, err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fail(ExitCopy, "copy %s: %v", src, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fail(ExitCopy, "copy %s: %v", src, err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return fail(ExitCopy, "copy %s: %v", src, err)
	}
	return nil
}

func (h *Helper) removeCmd(paths []string) error {
	if len(paths) == 0 {
		return &opError{code: ExitUsage, err: errUsage}
	}

	for _, p := range paths {
		info, err := os.Lstat(p)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fail(ExitRemove, "remove %s: %v", p, err)
		}

		if info.IsDir() {
			err = os.RemoveAll(p)
		} else {
			err = os.Remove(p)
		}
		if err != nil {
			return fail(ExitRemove, "remove %s: %v", p, err)
		}
	}
	return nil
}
