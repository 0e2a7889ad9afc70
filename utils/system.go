package utils

import (
	"fmt"
	"math"
	"runtime"
)

// MemUsage is a snapshot of the heap in MiB
type MemUsage struct {
	Alloc, TotalAlloc, Sys uint64
	NumGC                  uint32
}

func GetMemUsage() (mu MemUsage) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	const MiB = 1 << 20
	return MemUsage{
		Alloc:      m.Alloc / MiB,
		TotalAlloc: m.TotalAlloc / MiB,
		Sys:        m.Sys / MiB,
		NumGC:      m.NumGC,
	}
}

func (mu MemUsage) String() string {
	return fmt.Sprintf("Alloc = %v MiB TotalAlloc = %v MiB Sys = %v MiB NumGC = %v",
		mu.Alloc, mu.TotalAlloc, mu.Sys, mu.NumGC)
}

// IsNan reports whether a scalar, a slice or the values of a linear system hold a NaN
func IsNan(A any) bool {
	switch v := A.(type) {
	case float64:
		return math.IsNaN(v)
	case []float64:
		for _, f := range v {
			if math.IsNaN(f) {
				return true
			}
		}
	case *BlockVector:
		return IsNan(v.data)
	case *BlockSparse:
		return IsNan(v.data)
	}
	return false
}
