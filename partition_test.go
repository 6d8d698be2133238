package dsvparse

import (
	"strings"
	"testing"
)

func TestSplitOnRecordBoundary_SkipsQuotedNewline(t *testing.T) {
	data := []byte("a,b\n\"quoted\nvalue\",c\nd,e\n")
	// hint lands inside the quoted multi-line field.
	hint := strings.Index(string(data), "quoted")
	got := SplitOnRecordBoundary(data, '"', hint)
	want := strings.Index(string(data), "d,e\n")
	if got != want {
		t.Fatalf("SplitOnRecordBoundary = %d, want %d (%q)", got, want, data[got:])
	}
}

func TestSplitOnRecordBoundary_SimpleUnquotedLine(t *testing.T) {
	data := []byte("a,b\nc,d\ne,f\n")
	got := SplitOnRecordBoundary(data, '"', 4) // hint at start of "c,d"
	want := len("a,b\nc,d\n")
	if got != want {
		t.Fatalf("SplitOnRecordBoundary = %d, want %d", got, want)
	}
}

func TestSplitOnRecordBoundary_NoNewlineAfterHint(t *testing.T) {
	data := []byte("a,b,c")
	if got := SplitOnRecordBoundary(data, '"', 2); got != len(data) {
		t.Fatalf("SplitOnRecordBoundary = %d, want %d", got, len(data))
	}
}

func TestSplitOnRecordBoundary_HintPastEnd(t *testing.T) {
	data := []byte("a,b\n")
	if got := SplitOnRecordBoundary(data, '"', 100); got != len(data) {
		t.Fatalf("SplitOnRecordBoundary = %d, want %d", got, len(data))
	}
}

func TestSplitOnRecordBoundary_ThenParseEachHalfIndependently(t *testing.T) {
	data := []byte("a,b\n\"x\ny\",c\nd,e\n")
	boundary := SplitOnRecordBoundary(data, '"', 0)
	left, right := data[:boundary], data[boundary:]

	var got [][]string
	collect := func(r Row) error {
		var vals []string
		for _, f := range r.Fields {
			vals = append(vals, string(f.Data))
		}
		got = append(got, vals)
		return nil
	}
	for _, chunk := range [][]byte{left, right} {
		p, err := New(DefaultOptions())
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		p.SetRowCallback(collect)
		if err := p.ParseBuffer(chunk, true); err != nil {
			t.Fatalf("ParseBuffer: %v", err)
		}
	}
	want := [][]string{{"a", "b"}, {"x\ny", "c"}, {"d", "e"}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if len(got[i]) != len(want[i]) {
			t.Fatalf("row %d: got %v, want %v", i, got[i], want[i])
		}
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Fatalf("row %d field %d: got %q, want %q", i, j, got[i][j], want[i][j])
			}
		}
	}
}
