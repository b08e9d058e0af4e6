package abi

import (
	lua "github.com/yuin/gopher-lua"
)

// InjectTable exposes a Profile to Lua configuration code as a read-only
// global table named "abi".
func InjectTable(L *lua.LState, p Profile) {
	t := L.NewTable()

	L.SetField(t, "running", lua.LString(p.RunningABI))
	L.SetField(t, "path32", lua.LString(p.Path32))
	L.SetField(t, "path64", lua.LString(p.Path64))
	L.SetField(t, "is_x86", lua.LBool(p.IsX86))
	L.SetField(t, "is_arm", lua.LBool(!p.IsX86))
	L.SetField(t, "supports_64bit", lua.LBool(p.Supports64Bit))
	L.SetField(t, "is_64bit", lua.LBool(p.Is64Bit()))

	L.SetGlobal("abi", makeReadOnly(L, t))
}

// makeReadOnly wraps table in an empty proxy whose metatable forwards reads
// and rejects writes.
func makeReadOnly(L *lua.LState, table *lua.LTable) *lua.LTable {
	mt := L.NewTable()
	L.SetField(mt, "__index", table)
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("abi table is read-only and cannot be modified")
		return 0
	}))
	L.SetField(mt, "__metatable", lua.LString("protected"))

	proxy := L.NewTable()
	L.SetMetatable(proxy, mt)
	return proxy
}
