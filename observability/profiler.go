package observability

// References:
// https://github.com/DataDog/dd-trace-go/blob/main/profiler/profiler.go#L118

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
)

type ProfileType int8

const (
	CPUProfile ProfileType = iota
	MemProfile
)

// StartProfile opens path and begins writing a CPU or heap profile to it,
// returning a callback that stops and closes the profile. Intended for a
// binary's startup, guarded by a command-line flag.
func StartProfile(typ ProfileType, path string) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("observability: create profile file: %w", err)
	}

	switch typ {
	case CPUProfile:
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("observability: start cpu profile: %w", err)
		}
		return func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}, nil
	case MemProfile:
		return func() {
			runtime.GC()
			_ = pprof.WriteHeapProfile(f)
			_ = f.Close()
		}, nil
	default:
		_ = f.Close()
		return nil, fmt.Errorf("observability: unknown profile type %d", typ)
	}
}
