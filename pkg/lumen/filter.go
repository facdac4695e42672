package lumen

import (
	"sync"

	"github.com/wayneeseguin/lumen/internal/utils"
)

// MainModule is the module name that is enabled in every new module table.
const MainModule = "main"

// ModuleState is the explicit enablement of a module.
type ModuleState int

const (
	// ModuleUnset means the decision is inherited from a prefix or the default.
	ModuleUnset ModuleState = iota
	// ModuleEnabled lets messages from the module through.
	ModuleEnabled
	// ModuleDisabled drops messages from the module.
	ModuleDisabled
)

// String returns the state name.
func (s ModuleState) String() string {
	switch s {
	case ModuleEnabled:
		return "enabled"
	case ModuleDisabled:
		return "disabled"
	default:
		return "unset"
	}
}

// moduleTable records which modules may log. A module path is checked
// against its prefixes from the most to the least specific; the first
// explicit entry decides, otherwise the table default applies.
//
// Decisions are cached per module. The cache is only written while mu is
// read-locked and only cleared while mu is write-locked, so a cached
// decision is never older than the last change.
type moduleTable struct {
	mu             sync.RWMutex
	entries        map[string]ModuleState
	defaultEnabled bool
	cache          sync.Map // module -> bool
}

func newModuleTable() *moduleTable {
	return &moduleTable{
		entries:        map[string]ModuleState{MainModule: ModuleEnabled},
		defaultEnabled: true,
	}
}

func (t *moduleTable) enabled(module string) bool {
	if v, ok := t.cache.Load(module); ok {
		return v.(bool)
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	decision := t.defaultEnabled
	for _, prefix := range utils.ModulePrefixes(module) {
		if state, ok := t.entries[prefix]; ok && state != ModuleUnset {
			decision = state == ModuleEnabled
			break
		}
	}
	t.cache.Store(module, decision)
	return decision
}

// set applies state to the given modules. Without modules every known
// entry and the default are set.
func (t *moduleTable) set(state ModuleState, modules ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(modules) == 0 {
		for m := range t.entries {
			t.entries[m] = state
		}
		t.defaultEnabled = state != ModuleDisabled
	}
	for _, m := range modules {
		t.entries[m] = state
	}
	t.cache.Clear()
}

func (t *moduleTable) state(module string) ModuleState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entries[module]
}

func (t *moduleTable) snapshot() map[string]ModuleState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]ModuleState, len(t.entries))
	for m, s := range t.entries {
		out[m] = s
	}
	return out
}

func (t *moduleTable) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = map[string]ModuleState{MainModule: ModuleEnabled}
	t.defaultEnabled = true
	t.cache.Clear()
}

// Enable marks modules as enabled. Without arguments every module is
// enabled, including modules never mentioned before.
func (e *Environment) Enable(modules ...string) {
	e.modules.set(ModuleEnabled, modules...)
}

// Disable marks modules as disabled. Without arguments every module is
// disabled, including modules never mentioned before.
func (e *Environment) Disable(modules ...string) {
	e.modules.set(ModuleDisabled, modules...)
}

// Unset removes the explicit state of modules so they inherit again.
func (e *Environment) Unset(modules ...string) {
	if len(modules) == 0 {
		return
	}
	e.modules.set(ModuleUnset, modules...)
}

// ModuleState returns the explicit state recorded for module.
func (e *Environment) ModuleState(module string) ModuleState {
	return e.modules.state(module)
}

// ModuleEnabled reports whether messages from module pass the module filter.
func (e *Environment) ModuleEnabled(module string) bool {
	return e.modules.enabled(module)
}

// Modules returns a copy of the explicit module states.
func (e *Environment) Modules() map[string]ModuleState {
	return e.modules.snapshot()
}
