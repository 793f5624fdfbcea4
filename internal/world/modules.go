package world

import (
	"github.com/mkalland/simworld/internal/iface"
)

type loadedModule struct {
	mod  iface.Module
	args string
}

// LoadModule runs a module's entry point and, on success, hooks it into
// the simulation step. The return value is the module's exit code; the
// module stays loaded only when it returns zero.
func (e *Environment) LoadModule(m iface.Module, args string) int {
	if m == nil {
		return -1
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	ret := m.Main(e, args)
	if ret != 0 {
		logger.Warn("module rejected load", "type", m.TypeName(), "code", ret)
		return ret
	}
	e.modules = append(e.modules, &loadedModule{mod: m, args: args})
	return 0
}

// RemoveModule unloads a module, invoking its Destroy hook. It reports
// whether the module was loaded.
func (e *Environment) RemoveModule(m iface.Module) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, lm := range e.modules {
		if lm.mod == m {
			e.modules = append(e.modules[:i], e.modules[i+1:]...)
			m.Destroy()
			return true
		}
	}
	return false
}

// ModulesHandle pins the module instances returned by LoadedModules: the
// snapshot stays valid for as long as the handle is referenced, even if
// modules are removed from the environment afterwards. Release is
// idempotent and optional.
type ModulesHandle struct {
	mods []iface.Module
}

// Release drops the pinned references.
func (h *ModulesHandle) Release() {
	if h != nil {
		h.mods = nil
	}
}

// LoadedModules returns the currently loaded modules in load order, along
// with a handle pinning the returned instances.
func (e *Environment) LoadedModules() ([]iface.Module, *ModulesHandle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]iface.Module, len(e.modules))
	for i, lm := range e.modules {
		out[i] = lm.mod
	}
	return out, &ModulesHandle{mods: out}
}
