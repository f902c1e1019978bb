package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// PredicatePrefix marks a Lua global function as a predicate: the function
// special_isRanged is exposed as the predicate "isRanged".
const PredicatePrefix = "special_"

// Manager owns one sandboxed LState holding predicate scripts.
//
// Manager is safe for concurrent use. The LState is single-threaded, so
// every call into Lua is serialized by mu.
type Manager struct {
	mu     sync.Mutex
	state  *lua.LState
	cancel context.CancelFunc
	limit  int
	logger *zap.Logger
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a non-nil Manager.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		panic("scripting.NewManager: precondition violated: logger must be non-nil")
	}
	return &Manager{logger: logger}
}

// Load creates a sandboxed VM, registers all engine.* modules, then executes
// every *.lua file in scriptDir in lexicographic order. A successful Load
// replaces any previously loaded VM.
//
// Precondition: scriptDir must be a readable directory; instLimit >= 0.
// Postcondition: The VM is registered; returns error on Lua load failure.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	m.closeLocked()
	m.state = L
	m.cancel = cancel
	m.limit = instLimit
	m.mu.Unlock()

	m.logger.Info("scripting: loaded predicate scripts",
		zap.String("dir", scriptDir),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// Predicates returns the sorted names of every loaded predicate, without
// the PredicatePrefix.
//
// Postcondition: Returns nil when nothing is loaded.
func (m *Manager) Predicates() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil
	}

	var names []string
	m.state.G.Global.ForEach(func(k, v lua.LValue) {
		key, ok := k.(lua.LString)
		if !ok || v.Type() != lua.LTFunction {
			return
		}
		if name, found := strings.CutPrefix(string(key), PredicatePrefix); found && name != "" {
			names = append(names, name)
		}
	})
	sort.Strings(names)
	return names
}

// CallPredicate calls the Lua function PredicatePrefix+name with arg
// converted to a table and returns the truthiness of its first result.
// Missing predicates, Lua runtime errors and exhausted instruction budgets
// yield false; errors are logged at Warn level and never propagated.
//
// Precondition: arg holds only decoded JSON values.
func (m *Manager) CallPredicate(name string, arg map[string]any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return false
	}
	L := m.state

	fn := L.GetGlobal(PredicatePrefix + name)
	if fn.Type() != lua.LTFunction {
		m.logger.Debug("scripting: predicate not defined", zap.String("predicate", name))
		return false
	}

	cancel := resetBudget(L, m.limit)
	defer cancel()

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, toLValue(L, arg)); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("predicate", name),
			zap.Error(err),
		)
		return false
	}

	ret := L.Get(-1)
	L.Pop(1)
	return lua.LVAsBool(ret)
}

// Close releases the loaded VM. The Manager may be loaded again afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

func (m *Manager) closeLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
}
