//go:build !linux

package helper

// setLabel is a no-op where security labels are not supported.
func setLabel(path, label string) error {
	return nil
}
