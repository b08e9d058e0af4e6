// Package state answers whether payloads are present at their installed
// locations. Answers come from the filesystem only; no helper process is
// involved and no error is ever returned.
package state

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ZebulonRouseFrantzich/libinstall/internal/abi"
)

// Query checks installed payloads under ConfigPath.
type Query struct {
	ConfigPath string
	Profile    abi.Profile
}

// New creates a Query.
func New(configPath string, profile abi.Profile) Query {
	return Query{ConfigPath: configPath, Profile: profile}
}

// LibraryPaths returns where a library is installed, 32-bit first.
func (q Query) LibraryPaths(name string) []string {
	segs := q.Profile.Segments()
	paths := make([]string, len(segs))
	for i, seg := range segs {
		paths[i] = filepath.Join(q.ConfigPath, seg, name)
	}
	return paths
}

// IsLibraryInstalled reports whether the library exists for the 32-bit
// architecture and, on 64-bit capable devices, for the 64-bit one too.
func (q Query) IsLibraryInstalled(name string) bool {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return false
	}
	return q.allExist(q.LibraryPaths(name))
}

// IsFileInstalled reports whether one plain file exists.
func (q Query) IsFileInstalled(name string) bool {
	return q.AreFilesInstalled(name)
}

// AreFilesInstalled reports whether every named plain file exists. An empty
// list is vacuously installed.
func (q Query) AreFilesInstalled(names ...string) bool {
	paths := make([]string, 0, len(names))
	for _, name := range names {
		p, ok := q.filePath(name)
		if !ok {
			return false
		}
		paths = append(paths, p)
	}
	return q.allExist(paths)
}

func (q Query) filePath(name string) (string, bool) {
	if name == "" || filepath.IsAbs(name) {
		return "", false
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.Join(q.ConfigPath, clean), true
}

func (q Query) allExist(paths []string) bool {
	if strings.TrimSpace(q.ConfigPath) == "" {
		return false
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}
