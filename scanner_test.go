package dsvparse

import (
	"strings"
	"testing"
)

var scannerTargets = targetSet{delim: ',', quote: '"'}

// referenceImpls lists every scanner that is portable (i.e. does not
// require goexperiment.simd && amd64), so this test runs the same on
// every platform/toolchain.
var referenceImpls = map[string]findNextFunc{
	"scalar": findNextScalar,
	"swar256": findNextSWAR256,
	"swar128": findNextSWAR128,
}

func TestScanners_AgreeWithScalar(t *testing.T) {
	cases := []string{
		"",
		"a",
		",",
		"\"",
		"\r",
		"\n",
		"no special bytes at all here",
		"short,one",
		strings.Repeat("x", 31) + ",",
		strings.Repeat("x", 32) + ",",
		strings.Repeat("x", 33) + ",",
		strings.Repeat("x", 63) + "\"",
		strings.Repeat("x", 64) + "\"",
		strings.Repeat("x", 65) + "\"",
		strings.Repeat("a,", 100),
		strings.Repeat("x", 200) + "\r\n" + strings.Repeat("y", 200),
	}
	for _, data := range cases {
		wantOffset, wantKind := findNextScalar([]byte(data), scannerTargets)
		for name, impl := range referenceImpls {
			gotOffset, gotKind := impl([]byte(data), scannerTargets)
			if gotOffset != wantOffset || gotKind != wantKind {
				t.Errorf("%s(%q) = (%d, %v), want (%d, %v)", name, data, gotOffset, gotKind, wantOffset, wantKind)
			}
		}
	}
}

func TestScanners_FindEveryTargetKind(t *testing.T) {
	for _, tc := range []struct {
		b    byte
		kind scanKind
	}{
		{',', scanDelim},
		{'"', scanQuote},
		{'\r', scanCR},
		{'\n', scanLF},
	} {
		data := append([]byte(strings.Repeat("z", 40)), tc.b)
		for name, impl := range referenceImpls {
			offset, kind := impl(data, scannerTargets)
			if offset != 40 || kind != tc.kind {
				t.Errorf("%s: find(%q) = (%d, %v), want (40, %v)", name, tc.b, offset, kind, tc.kind)
			}
		}
	}
}

func TestScanners_NoHitReturnsLenAndScanNone(t *testing.T) {
	data := []byte(strings.Repeat("abcdefgh", 20))
	for name, impl := range referenceImpls {
		offset, kind := impl(data, scannerTargets)
		if kind != scanNone || offset != len(data) {
			t.Errorf("%s: find(no-hit) = (%d, %v), want (%d, scanNone)", name, offset, kind, len(data))
		}
	}
}

func TestKindAt(t *testing.T) {
	data := []byte(`a,b"c` + "\r\n")
	tests := []struct {
		pos  int
		want scanKind
	}{
		{1, scanDelim},
		{3, scanQuote},
		{5, scanCR},
		{6, scanLF},
	}
	for _, tt := range tests {
		if got := kindAt(data, tt.pos, scannerTargets); got != tt.want {
			t.Errorf("kindAt(%d) = %v, want %v", tt.pos, got, tt.want)
		}
	}
}

func TestNewScannerFor_SelectsExpectedImpl(t *testing.T) {
	data := []byte(strings.Repeat("q", 50) + ",")
	for _, w := range []scanWidth{width256, width128, widthScalar} {
		fn := newScannerFor(w)
		offset, kind := fn(data, scannerTargets)
		if kind != scanDelim || offset != 50 {
			t.Errorf("newScannerFor(%v) disagreed with scalar reference: (%d, %v)", w, offset, kind)
		}
	}
}

func TestComputeCapability_ReturnsAUsableWidth(t *testing.T) {
	w := computeCapability()
	switch w {
	case width512, width256, width128:
	default:
		t.Errorf("computeCapability() = %v, want one of width512/width256/width128", w)
	}
}

func TestDetectCapability_CachesAcrossCalls(t *testing.T) {
	first := detectCapability()
	second := detectCapability()
	if first != second {
		t.Errorf("detectCapability() not stable across calls: %v then %v", first, second)
	}
}
