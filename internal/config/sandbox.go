package config

import (
	lua "github.com/yuin/gopher-lua"
)

// VM limits for config evaluation.
const (
	luaCallStackSize = 256
	luaRegistrySize  = 8 * 1024
)

// blockedGlobals are removed from every config VM:
//   - os and io give process and filesystem access
//   - require, dofile, loadfile, load, loadstring load external code
//   - debug, getmetatable, setmetatable, rawset, rawget could bypass the
//     read-only abi table
//   - collectgarbage and module have no place in a declarative config
var blockedGlobals = []string{
	"os", "io", "debug",
	"require", "dofile", "loadfile", "load", "loadstring", "module",
	"getmetatable", "setmetatable", "rawset", "rawget", "rawequal",
	"collectgarbage", "getfenv", "setfenv",
}

// sandboxLuaVM strips every global that could reach outside the VM.
// string, table and math stay available.
func sandboxLuaVM(L *lua.LState) {
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
}

// newSandboxedVM creates a size-limited, sandboxed Lua VM for config
// evaluation.
func newSandboxedVM() *lua.LState {
	L := lua.NewState(lua.Options{
		CallStackSize: luaCallStackSize,
		RegistrySize:  luaRegistrySize,
	})
	sandboxLuaVM(L)
	return L
}
