//go:build goexperiment.simd && amd64

package dsvparse

import (
	"math/bits"
	"simd/archsimd"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// =============================================================================
// 512-bit-class scanner (AVX-512 via Go's experimental simd/archsimd)
// =============================================================================
//
// NOTE: simd/archsimd is an experimental package gated behind
// GOEXPERIMENT=simd (see https://go.dev/doc/go1.26 and the archsimd
// proposal, https://github.com/golang/go/issues/73787). It is AMD64-only
// today. archsimd.Int8x32.Equal().ToBits() lowers to VPMOVB2M, which
// requires AVX-512BW and raises SIGILL without it — so this file's use of
// archsimd is always gated by an explicit golang.org/x/sys/cpu check
// before any archsimd call runs (has512BitScanner below), never by the
// build tag alone.
//
// Two Int8x32 (256-bit) lanes are combined to cover one 64-byte window,
// matching the 512-bit lane width the specification calls for.

const simd512ChunkSize = 64
const simd512HalfChunk = 32

func has512BitScanner() bool {
	return cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW && cpu.X86.HasAVX512VL
}

// findNext512 scans data for the first occurrence of any byte in t,
// 64 bytes at a time, using two 256-bit archsimd compares per window.
func findNext512(data []byte, t targetSet) (int, scanKind) {
	n := len(data)
	i := 0
	for i+simd512ChunkSize <= n {
		mask := generateHitMask512(data[i:i+simd512ChunkSize], t)
		if mask != 0 {
			return i + bits.TrailingZeros64(mask), kindAt(data, i+bits.TrailingZeros64(mask), t)
		}
		i += simd512ChunkSize
	}
	// Tail shorter than one window: pad into a stack buffer so the same
	// compare path runs, then mask off bits beyond the real data.
	if i < n {
		var padded [simd512ChunkSize]byte
		copy(padded[:], data[i:])
		mask := generateHitMask512(padded[:], t)
		validBits := n - i
		if validBits < simd512ChunkSize {
			mask &= (uint64(1) << uint(validBits)) - 1
		}
		if mask != 0 {
			pos := i + bits.TrailingZeros64(mask)
			return pos, kindAt(data, pos, t)
		}
	}
	return n, scanNone
}

// generateHitMask512 returns a 64-bit mask with a bit set at every
// position in data (len == simd512ChunkSize) that equals any of the four
// target bytes.
func generateHitMask512(data []byte, t targetSet) uint64 {
	delimCmp := archsimd.BroadcastInt8x32(int8(t.delim))
	quoteCmp := archsimd.BroadcastInt8x32(int8(t.quote))
	crCmp := archsimd.BroadcastInt8x32('\r')
	nlCmp := archsimd.BroadcastInt8x32('\n')

	low := archsimd.LoadInt8x32((*[simd512HalfChunk]int8)(unsafe.Pointer(&data[0])))
	lowMask := low.Equal(delimCmp).ToBits() | low.Equal(quoteCmp).ToBits() |
		low.Equal(crCmp).ToBits() | low.Equal(nlCmp).ToBits()

	high := archsimd.LoadInt8x32((*[simd512HalfChunk]int8)(unsafe.Pointer(&data[simd512HalfChunk])))
	highMask := high.Equal(delimCmp).ToBits() | high.Equal(quoteCmp).ToBits() |
		high.Equal(crCmp).ToBits() | high.Equal(nlCmp).ToBits()

	return uint64(lowMask) | (uint64(highMask) << uint(simd512HalfChunk))
}
