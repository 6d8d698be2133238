package dsvparse

// Field is one parsed value. Data borrows either the input buffer
// (unquoted fields) or the parser's quoted arena (quoted fields, and
// unquoted fields of a row that spans a ParseBuffer call); it is
// valid only for the duration of the row callback that receives it — a
// caller that needs to retain a field past that call must copy it first.
// Retaining a Field.Data slice beyond the callback's return is undefined
// behavior: the next ParseBuffer call is free to overwrite the arena or
// the caller's own input buffer.
type Field struct {
	Data   []byte
	Quoted bool
}

// Size returns the field's content length. Kept as a method rather than a
// stored field since len(Data) can never disagree with it.
func (f Field) Size() int { return len(f.Data) }

// Row is one emitted record. Fields and their Data slices share Row's
// lifetime: both are valid only until the row callback returns.
type Row struct {
	Fields     []Field
	NumFields  int
	RowNumber  uint64
	ByteOffset int64
}
