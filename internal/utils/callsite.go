package utils

import (
	"runtime"
	"strings"
	"sync"

	"github.com/wayneeseguin/lumen/pkg/types"
)

var callSites sync.Map // uintptr -> types.CallSite

// CallerPC returns the program counter of the function skip frames above
// the caller of CallerPC. skip 0 identifies the caller itself.
func CallerPC(skip int) uintptr {
	var pcs [1]uintptr
	// runtime.Callers counts itself and CallerPC
	if runtime.Callers(skip+2, pcs[:]) == 0 {
		return 0
	}
	return pcs[0]
}

// ResolveCallSite converts a program counter obtained from CallerPC into a
// call site. Results are cached per program counter.
func ResolveCallSite(pc uintptr) types.CallSite {
	if pc == 0 {
		return types.CallSite{Module: "unknown", Function: "unknown"}
	}
	if cs, ok := callSites.Load(pc); ok {
		return cs.(types.CallSite)
	}

	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	module, function := SplitFunctionName(frame.Function)
	cs := types.CallSite{Module: module, Function: function, Line: frame.Line}
	callSites.Store(pc, cs)
	return cs
}

// SplitFunctionName splits a fully qualified function name such as
// "github.com/acme/app/server.(*Server).Start" into its package import
// path and the function name inside the package.
func SplitFunctionName(name string) (module, function string) {
	if name == "" {
		return "unknown", "unknown"
	}
	slash := strings.LastIndexByte(name, '/')
	dot := strings.IndexByte(name[slash+1:], '.')
	if dot < 0 {
		return name, ""
	}
	dot += slash + 1
	// the linker escapes dots in the last path element, e.g. "yaml%2ev3"
	return strings.ReplaceAll(name[:dot], "%2e", "."), name[dot+1:]
}

// ModulePrefixes decomposes a module path into its prefixes, most specific
// first. Both "/" and "." separate components, so "a/b.c" yields
// "a/b.c", "a/b" and "a".
func ModulePrefixes(module string) []string {
	if module == "" {
		return nil
	}
	prefixes := []string{module}
	for i := len(module) - 1; i > 0; i-- {
		if module[i] == '/' || module[i] == '.' {
			prefixes = append(prefixes, module[:i])
		}
	}
	return prefixes
}
