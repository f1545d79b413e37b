package variable

import (
	"context"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// LuaTimeout bounds the evaluation of a LUA variable.
var LuaTimeout = 2 * time.Second

// evalLua runs chunk in a sandboxed state and returns its first result as
// text. The chunk sees filename() and line() for the edited file.
func evalLua(chunk string, env Env) (string, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Base opens file loaders; the sandbox has no file system.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	L.SetGlobal("filename", L.NewFunction(func(L *lua.LState) int {
		name := ""
		if env != nil {
			name = env.Filename()
		}
		L.Push(lua.LString(name))
		return 1
	}))
	L.SetGlobal("line", L.NewFunction(func(L *lua.LState) int {
		line := 0
		if env != nil {
			line = env.Line()
		}
		L.Push(lua.LNumber(line))
		return 1
	}))

	ctx, cancel := context.WithTimeout(context.Background(), LuaTimeout)
	defer cancel()
	L.SetContext(ctx)

	// Opening the libraries leaves their tables on the stack.
	L.SetTop(0)
	if err := L.DoString(chunk); err != nil {
		return "", fmt.Errorf("%w: %v", ErrLua, err)
	}

	if L.GetTop() == 0 {
		return "", nil
	}
	result := L.Get(1)
	if result == lua.LNil {
		return "", nil
	}
	return result.String(), nil
}
