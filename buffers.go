package dsvparse

import "github.com/klauspost/cpuid/v2"

// growthFactor is the geometric growth factor for C2 buffers: 1.5 rather
// than 2, to reduce steady-state waste per §4.2.
const growthFactor = 1.5

// cacheLineSize is read once from cpuid so growable buffers can be
// aligned up to the host's actual cache-line boundary rather than a
// hardcoded guess; cpuid.CPU.Cache.Line is 0 on platforms it can't
// introspect, so a conservative default is used instead.
var cacheLineSize = detectCacheLineSize()

func detectCacheLineSize() int {
	if line := cpuid.CPU.Cache.Line; line > 0 {
		return line
	}
	return 64
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	rem := n % align
	if rem == 0 {
		return n
	}
	return n + (align - rem)
}

// memAccountant keeps a running total of the bytes by which a Parser's
// buffers have grown past their initial capacities, checked against
// MaxMemoryBytes (0 = unbounded): a growth that would take the total past
// the limit fails before any allocation attempt. The initial capacities
// allocated by New are not counted, and Parser.Reset sets the total back
// to zero while the buffers keep their grown capacity.
type memAccountant struct {
	limit uint64 // 0 = unbounded
	used  uint64
}

// reserve checks whether growing by delta bytes would exceed the limit,
// and if not, commits it to the running total. It performs the check
// before any buffer is actually grown, so a rejected reservation leaves
// no partially-modified state visible to the caller (§4.2 "Failure").
func (m *memAccountant) reserve(delta uint64) error {
	if m.limit != 0 && m.used+delta > m.limit {
		return &ParseErr{Code: StatusOutOfMemory, Err: errOutOfMemory}
	}
	m.used += delta
	return nil
}

func (m *memAccountant) release(delta uint64) {
	if delta > m.used {
		m.used = 0
		return
	}
	m.used -= delta
}

var errOutOfMemory = errOutOfMemoryType{}

type errOutOfMemoryType struct{}

func (errOutOfMemoryType) Error() string { return "allocation would exceed max_memory_bytes" }

// byteArena is a growable, cache-line-aligned byte buffer used for the
// quoted-field arena and the unparsed/field_scratch carry-over buffers.
// It never shrinks; Reset only truncates the logical length so the
// backing storage is reused across rows/chunks.
type byteArena struct {
	buf   []byte
	acct  *memAccountant
}

func newByteArena(initialCap int, acct *memAccountant) *byteArena {
	aligned := alignUp(initialCap, cacheLineSize)
	return &byteArena{buf: make([]byte, 0, aligned), acct: acct}
}

// growTo ensures cap(buf) >= minCap, applying the ×1.5 growth policy and
// the memory cap check. It is a no-op if the arena is already large
// enough.
func (a *byteArena) growTo(minCap int) error {
	if cap(a.buf) >= minCap {
		return nil
	}
	newCap := cap(a.buf)
	if newCap == 0 {
		newCap = cacheLineSize
	}
	for newCap < minCap {
		newCap = alignUp(int(float64(newCap)*growthFactor), cacheLineSize)
	}
	delta := uint64(newCap - cap(a.buf))
	if a.acct != nil {
		if err := a.acct.reserve(delta); err != nil {
			return err
		}
	}
	grown := make([]byte, len(a.buf), newCap)
	copy(grown, a.buf)
	a.buf = grown
	return nil
}

// ensure grows the arena so that len(buf)+additional <= cap(buf),
// applying the ×1.5 growth policy and the memory cap check. It returns
// the offset at which additional bytes may be written.
func (a *byteArena) ensure(additional int) (offset int, err error) {
	offset = len(a.buf)
	if err := a.growTo(offset + additional); err != nil {
		return offset, err
	}
	return offset, nil
}

// retain replaces the arena's logical content with tail, shifting it to
// the front of the backing array. tail may itself alias the arena's own
// backing storage (the common chunk-boundary carry-over case, where tail
// is a suffix of the arena's current content): copy is memmove-safe
// under overlap, so this is correct regardless of aliasing.
func (a *byteArena) retain(tail []byte) error {
	if err := a.growTo(len(tail)); err != nil {
		return err
	}
	n := copy(a.buf[:cap(a.buf)], tail)
	a.buf = a.buf[:n]
	return nil
}

// append copies data into the arena, growing as needed, and returns the
// slice of the arena's backing array that now holds it (stable until the
// arena is next grown or reset).
func (a *byteArena) append(data []byte) ([]byte, error) {
	offset, err := a.ensure(len(data))
	if err != nil {
		return nil, err
	}
	a.buf = a.buf[:offset+len(data)]
	copy(a.buf[offset:], data)
	return a.buf[offset : offset+len(data)], nil
}

// reset truncates the arena to zero length, retaining its backing
// storage for reuse.
func (a *byteArena) reset() {
	a.buf = a.buf[:0]
}

// len returns the arena's current logical length.
func (a *byteArena) len() int { return len(a.buf) }

// cap returns the arena's current backing capacity.
func (a *byteArena) cap() int { return cap(a.buf) }

// fieldVec is the amortized-growth field-descriptor vector
// (ParserState.fields_vec). It is cleared (not shrunk) at each row
// emission, per §3.
type fieldVec struct {
	fields []Field
	acct   *memAccountant
}

func newFieldVec(initialCap int, acct *memAccountant) *fieldVec {
	return &fieldVec{fields: make([]Field, 0, initialCap), acct: acct}
}

func (v *fieldVec) append(f Field) error {
	if len(v.fields) == cap(v.fields) {
		newCap := cap(v.fields)
		if newCap == 0 {
			newCap = initialFieldCapacity
		} else {
			newCap = int(float64(newCap) * growthFactor)
		}
		delta := uint64(newCap-cap(v.fields)) * fieldDescriptorSize
		if v.acct != nil {
			if err := v.acct.reserve(delta); err != nil {
				return err
			}
		}
		grown := make([]Field, len(v.fields), newCap)
		copy(grown, v.fields)
		v.fields = grown
	}
	v.fields = append(v.fields, f)
	return nil
}

func (v *fieldVec) reset() {
	v.fields = v.fields[:0]
}

// fieldDescriptorSize approximates the in-memory size of one Field, for
// memory accounting of fieldVec growth (a slice header plus the bool).
const fieldDescriptorSize = 32
