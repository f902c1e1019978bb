package scripting

import (
	"slices"

	lua "github.com/yuin/gopher-lua"
)

// toLValue converts a decoded JSON value into a Lua value. Objects become
// tables with string keys and arrays become 1-based sequence tables.
// Unsupported Go types convert to nil.
func toLValue(L *lua.LState, v any) lua.LValue {
	switch v := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(v)
	case float64:
		return lua.LNumber(v)
	case int:
		return lua.LNumber(v)
	case string:
		return lua.LString(v)
	case []any:
		tbl := L.CreateTable(len(v), 0)
		for _, elem := range v {
			tbl.Append(toLValue(L, elem))
		}
		return tbl
	case map[string]any:
		tbl := L.CreateTable(0, len(v))
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			tbl.RawSetString(k, toLValue(L, v[k]))
		}
		return tbl
	default:
		return lua.LNil
	}
}
