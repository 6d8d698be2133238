package dsvparse

import (
	"sync/atomic"

	"github.com/klauspost/cpuid/v2"
	"golang.org/x/sys/cpu"
)

// scanWidth identifies which scanner implementation a Parser dispatches
// to. The four variants form a closed set selected once at construction
// (§4.1/§9 "dynamic dispatch for SIMD"); there is no per-byte dispatch.
type scanWidth uint32

const (
	widthUnknown scanWidth = iota
	width512
	width256
	width128
	widthScalar
)

func (w scanWidth) String() string {
	switch w {
	case width512:
		return "512-bit"
	case width256:
		return "256-bit"
	case width128:
		return "128-bit"
	case widthScalar:
		return "scalar"
	default:
		return "unknown"
	}
}

// featureBit mirrors scanWidth into the Stats.SIMDFeaturesUsed bitmask.
func (w scanWidth) featureBit() uint32 {
	switch w {
	case width512:
		return 1 << 2
	case width256:
		return 1 << 1
	case width128:
		return 1 << 0
	default:
		return 0
	}
}

// capabilitySnapshot is the process-wide, once-initialized cache of
// detected scanner width. Per §5, this is the only global mutable state
// the core uses; it is published with a CAS and read thereafter with a
// plain atomic load (seq-cst on both sides, which satisfies the weaker
// acquire/release requirement from §5/§9).
var capabilitySnapshot atomic.Uint32

// detectCapability returns the best available scanner width for this
// process, computing and publishing it on first call and returning the
// cached value on every subsequent call.
func detectCapability() scanWidth {
	if w := scanWidth(capabilitySnapshot.Load()); w != widthUnknown {
		return w
	}
	w := computeCapability()
	capabilitySnapshot.CompareAndSwap(uint32(widthUnknown), uint32(w))
	return scanWidth(capabilitySnapshot.Load())
}

// computeCapability performs the actual CPU-feature probing. Separated
// from detectCapability so tests can call it directly without touching
// the shared snapshot.
func computeCapability() scanWidth {
	if has512BitScanner() {
		return width512
	}
	// github.com/klauspost/cpuid/v2 gives a richer feature/cache-line
	// picture than golang.org/x/sys/cpu alone; it is consulted here to
	// decide whether the 4-uint64-lane (256-bit-equivalent) SWAR scanner
	// is worth its larger unrolled loop body versus the simpler
	// 2-uint64-lane (128-bit-equivalent) one.
	if cpuid.CPU.X64Level() >= 2 || cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD {
		return width256
	}
	return width128
}

// has512BitScanner reports whether the 512-bit archsimd scanner
// (scanner_simd_amd64.go, built only under goexperiment.simd && amd64)
// is compiled into this binary and the CPU actually supports the
// AVX-512 feature set it requires. On any other build, this is the
// always-false stub in scanner_simd_stub.go.
