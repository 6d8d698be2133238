package dsvparse

import "time"

// Stats is the statistics surface returned by Parser.Stats, per the
// specification's external interfaces section.
type Stats struct {
	TotalBytesProcessed uint64
	TotalRowsParsed     uint64
	TotalFieldsParsed   uint64
	ParseTimeNs         uint64
	ThroughputMBPS      float64
	SIMDFeaturesUsed    uint32
	PeakMemoryBytes     uint64
	SIMDOps             uint64
	ScalarFallbacks     uint64
	AvgFieldSize        float64
	AvgRowSize          float64
	// InstanceID is this Parser's UUID, stamped at construction so logs
	// from many concurrently-running parsers (one per input partition,
	// per §5) can be correlated back to a single instance.
	InstanceID string
}

// parserStats holds the live counters updated on the parser's hot paths.
// All fields are accessed only from the owning Parser's goroutine except
// where noted; they are plain (non-atomic) because the specification's
// concurrency model guarantees single-threaded access per parser (§5) —
// the capability snapshot in capability.go is the only value that needs
// atomics, since it is the sole piece of process-wide shared state.
type parserStats struct {
	totalBytesProcessed uint64
	totalRowsParsed     uint64
	totalFieldsParsed   uint64
	simdOps             uint64
	scalarFallbacks     uint64
	peakMemoryBytes     uint64
	sumFieldSize        uint64
	sumRowSize          uint64
	startTime           time.Time
	simdFeaturesUsed    uint32
}

func (s *parserStats) reset() {
	*s = parserStats{startTime: time.Now(), simdFeaturesUsed: s.simdFeaturesUsed}
}

func (s *parserStats) recordField(size int) {
	s.totalFieldsParsed++
	s.sumFieldSize += uint64(size)
}

func (s *parserStats) recordRow(rowByteSize int) {
	s.totalRowsParsed++
	s.sumRowSize += uint64(rowByteSize)
}

func (s *parserStats) recordMemory(inUse uint64) {
	if inUse > s.peakMemoryBytes {
		s.peakMemoryBytes = inUse
	}
}

func (s *parserStats) snapshot(instanceID string) Stats {
	elapsed := time.Since(s.startTime)
	st := Stats{
		TotalBytesProcessed: s.totalBytesProcessed,
		TotalRowsParsed:     s.totalRowsParsed,
		TotalFieldsParsed:   s.totalFieldsParsed,
		ParseTimeNs:         uint64(elapsed.Nanoseconds()),
		SIMDFeaturesUsed:    s.simdFeaturesUsed,
		PeakMemoryBytes:     s.peakMemoryBytes,
		SIMDOps:             s.simdOps,
		ScalarFallbacks:     s.scalarFallbacks,
		InstanceID:          instanceID,
	}
	if elapsed > 0 {
		st.ThroughputMBPS = (float64(s.totalBytesProcessed) / (1024 * 1024)) / elapsed.Seconds()
	}
	if s.totalFieldsParsed > 0 {
		st.AvgFieldSize = float64(s.sumFieldSize) / float64(s.totalFieldsParsed)
	}
	if s.totalRowsParsed > 0 {
		st.AvgRowSize = float64(s.sumRowSize) / float64(s.totalRowsParsed)
	}
	return st
}
