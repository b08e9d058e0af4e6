// Package config holds the installation configuration shared by every
// installer operation: the destination root, file ownership, security
// labels, the helper executable name and how the helper is executed.
//
// # Immutability
//
// A Config is a plain value. It is produced by Default, by a Builder, or by
// parsing a Lua configuration file, and it is passed into each installer
// operation. Nothing in this package holds process-wide mutable state, so
// concurrent operations never observe each other's settings.
//
// # Deferred validation
//
// Setters never fail. An empty ConfigPath is only reported when an
// operation needs it (RequireConfigPath), with an error wrapping
// ErrConfiguration.
//
// # Lua configuration files
//
// Configuration files are Lua scripts evaluated in a sandboxed gopher-lua VM.
// They assign a global "libinstall" table and may consult the read-only
// "abi" table describing the device:
//
//	libinstall = {
//	  config_path = "/data/local/tmp/hook",
//	  cache_dir   = "/data/local/tmp/cache",
//	  owner  = { uid = 1000, gid = 1000 },
//	  labels = { lib = "u:object_r:system_file:s0" },
//	  helper = { name = "hookinstall", sha256 = "..." },
//	  elevated = true,
//	  escalation = { "su", "0" },
//	  timeout = 30,
//	}
//
// Unset fields keep their defaults. The sandbox removes os, io, debug and
// every code-loading function, and evaluation is bounded by the caller's
// context.
package config
