// Package payload stages native payloads out of an application package
// archive into a writable cache directory, ready to be handed to the
// privileged helper.
//
// # Staging layout
//
//	<cache>/<abi segment>/<payload name>   architecture-specific libraries
//	<cache>/<file name>                    plain files
//	<cache>/<helper name>                  the privileged helper itself
//
// # Archive layout
//
//	lib/<abi segment>/<payload name>       libraries, one copy per ABI
//	assets/<running abi>/<helper name>     the helper, built per ABI
//	assets/<file name>                     plain files
//
// Any archive entry may instead be stored xz-compressed under the same name
// with an ".xz" suffix; it is decompressed while staging.
//
// # Errors
//
// Every failure is an I/O failure (errors.Is(err, ErrIO)). The more specific
// ErrCreateDir, ErrEntryNotFound, ErrCopy and ErrSetExecutable let callers
// tell the conditions apart.
package payload
