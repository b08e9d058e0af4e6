// Package command builds the argument vectors passed to the privileged
// helper. Commands are argv arrays handed straight to a process-spawn
// primitive; they are never flattened into a shell line, so paths and labels
// need no quoting.
//
// Protocol:
//
//	<helper> copy <uid> <gid> lib  <label> <baseDir> <dstDir32> <src32> [<dstDir64> <src64>]
//	<helper> copy <uid> <gid> file <label> <baseDir> (<dstDir> <src>)+
//	<helper> remove <path>+
//
// The helper copies each <src> to <dstDir>/<basename(src)>.
package command

import (
	"strconv"
	"strings"
)

// Kind identifies the helper operation a Command performs.
type Kind string

const (
	KindCopyLibrary Kind = "copy-library"
	KindCopyFiles   Kind = "copy-files"
	KindRemovePaths Kind = "remove-paths"
)

// Protocol keywords.
const (
	OpCopy   = "copy"
	OpRemove = "remove"
	TypeLib  = "lib"
	TypeFile = "file"
)

// Command is one immutable helper invocation.
type Command struct {
	kind Kind
	args []string
}

// Kind returns the operation kind.
func (c Command) Kind() Kind {
	return c.kind
}

// Args returns a copy of the argument vector, helper path first.
func (c Command) Args() []string {
	return append([]string(nil), c.args...)
}

// String renders the command for logs. Arguments containing whitespace or
// quotes are quoted.
func (c Command) String() string {
	parts := make([]string, len(c.args))
	for i, a := range c.args {
		if a == "" || strings.ContainsAny(a, " \t\n\"'\\") {
			parts[i] = strconv.Quote(a)
		} else {
			parts[i] = a
		}
	}
	return strings.Join(parts, " ")
}
