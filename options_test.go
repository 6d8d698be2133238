package dsvparse

import "testing"

func TestDefaultOptions_Validate(t *testing.T) {
	if err := DefaultOptions().validate(); err != nil {
		t.Fatalf("default options should validate, got %v", err)
	}
}

func TestWithDefaults_FillsZeroValues(t *testing.T) {
	opts := ParseOptions{}.withDefaults()
	if opts.Delimiter != DefaultDelimiter {
		t.Errorf("Delimiter = %q, want %q", opts.Delimiter, DefaultDelimiter)
	}
	if opts.Quote != DefaultQuote {
		t.Errorf("Quote = %q, want %q", opts.Quote, DefaultQuote)
	}
	if opts.MaxFieldSize != DefaultMaxFieldSize {
		t.Errorf("MaxFieldSize = %d, want %d", opts.MaxFieldSize, DefaultMaxFieldSize)
	}
	if opts.MaxRowSize != DefaultMaxRowSize {
		t.Errorf("MaxRowSize = %d, want %d", opts.MaxRowSize, DefaultMaxRowSize)
	}
	if opts.BufferSize != DefaultBufferSize {
		t.Errorf("BufferSize = %d, want %d", opts.BufferSize, DefaultBufferSize)
	}
}

func TestWithDefaults_PreservesExplicitNonZeroChoices(t *testing.T) {
	opts := ParseOptions{Delimiter: '\t', Quote: '\'', MaxFieldSize: 10, MaxRowSize: 20, BufferSize: 128}.withDefaults()
	if opts.Delimiter != '\t' || opts.Quote != '\'' || opts.MaxFieldSize != 10 || opts.MaxRowSize != 20 || opts.BufferSize != 128 {
		t.Fatalf("withDefaults overwrote an explicit choice: %+v", opts)
	}
}

func TestValidate_RejectsInvalidCombinations(t *testing.T) {
	tests := []struct {
		name string
		opts ParseOptions
	}{
		{"delimiter equals quote", ParseOptions{Delimiter: ',', Quote: ',', MaxFieldSize: 1, MaxRowSize: 1}},
		{"delimiter is CR", ParseOptions{Delimiter: '\r', Quote: '"', MaxFieldSize: 1, MaxRowSize: 1}},
		{"delimiter is LF", ParseOptions{Delimiter: '\n', Quote: '"', MaxFieldSize: 1, MaxRowSize: 1}},
		{"quote is CR", ParseOptions{Delimiter: ',', Quote: '\r', MaxFieldSize: 1, MaxRowSize: 1}},
		{"zero max field size", ParseOptions{Delimiter: ',', Quote: '"', MaxFieldSize: 0, MaxRowSize: 1}},
		{"row size smaller than field size", ParseOptions{Delimiter: ',', Quote: '"', MaxFieldSize: 10, MaxRowSize: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.validate(); err == nil {
				t.Fatalf("expected validation error for %+v", tt.opts)
			} else if CodeOf(err) != StatusInvalidArguments {
				t.Fatalf("expected StatusInvalidArguments, got %v", CodeOf(err))
			}
		})
	}
}

func TestNew_RejectsInvalidOptions(t *testing.T) {
	_, err := New(ParseOptions{Delimiter: ',', Quote: ','})
	if err == nil {
		t.Fatal("expected New to reject delimiter == quote")
	}
}
