package config

import "time"

// Defaults applied by Default.
const (
	DefaultLibLabel   = "u:object_r:system_file:s0"
	DefaultFileLabel  = "u:object_r:system_data_file:s0"
	DefaultHelperName = "hookinstall"
	DefaultTimeout    = 60 * time.Second
)

// DefaultEscalation is the argv prefix used to run a command with root
// privilege.
var DefaultEscalation = []string{"su", "0"}

// Resource limits for config files.
const (
	MaxConfigSize   = 1 << 20 // 1MB
	MaxLabelLength  = 256
	MaxHelperLength = 128
)

// Lua schema field names and globals
const (
	luaGlobalLibinstall = "libinstall"
	luaFieldConfigPath  = "config_path"
	luaFieldCacheDir    = "cache_dir"
	luaFieldOwner       = "owner"
	luaFieldUID         = "uid"
	luaFieldGID         = "gid"
	luaFieldLabels      = "labels"
	luaFieldLib         = "lib"
	luaFieldFile        = "file"
	luaFieldHelper      = "helper"
	luaFieldName        = "name"
	luaFieldSHA256      = "sha256"
	luaFieldKeyring     = "keyring"
	luaFieldElevated    = "elevated"
	luaFieldEscalation  = "escalation"
	luaFieldTimeout     = "timeout"
)
