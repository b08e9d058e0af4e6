//go:build linux

package helper

import "golang.org/x/sys/unix"

// setLabel writes the security label. The value is stored without a
// trailing NUL.
func setLabel(path, label string) error {
	return unix.Setxattr(path, LabelXattr, []byte(label), 0)
}
