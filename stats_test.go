package dsvparse

import "testing"

func TestParserStats_SnapshotDerivedMetrics(t *testing.T) {
	var s parserStats
	s.reset()
	s.recordField(4)
	s.recordField(6)
	s.recordRow(10)
	s.recordRow(20)
	s.recordMemory(100)
	s.recordMemory(50)
	s.totalBytesProcessed = 1024

	snap := s.snapshot("instance-1")
	if snap.InstanceID != "instance-1" {
		t.Errorf("InstanceID = %q, want %q", snap.InstanceID, "instance-1")
	}
	if snap.TotalFieldsParsed != 2 {
		t.Errorf("TotalFieldsParsed = %d, want 2", snap.TotalFieldsParsed)
	}
	if snap.AvgFieldSize != 5 {
		t.Errorf("AvgFieldSize = %v, want 5", snap.AvgFieldSize)
	}
	if snap.TotalRowsParsed != 2 {
		t.Errorf("TotalRowsParsed = %d, want 2", snap.TotalRowsParsed)
	}
	if snap.AvgRowSize != 15 {
		t.Errorf("AvgRowSize = %v, want 15", snap.AvgRowSize)
	}
	// recordMemory must track the high-water mark, not the latest value.
	if snap.PeakMemoryBytes != 100 {
		t.Errorf("PeakMemoryBytes = %d, want 100 (must be the peak, not latest)", snap.PeakMemoryBytes)
	}
}

func TestParserStats_SnapshotWithNoActivity(t *testing.T) {
	var s parserStats
	s.reset()
	snap := s.snapshot("idle")
	if snap.AvgFieldSize != 0 || snap.AvgRowSize != 0 {
		t.Errorf("averages over zero counts must be 0, got field=%v row=%v", snap.AvgFieldSize, snap.AvgRowSize)
	}
	if snap.TotalBytesProcessed != 0 {
		t.Errorf("TotalBytesProcessed = %d, want 0", snap.TotalBytesProcessed)
	}
}

func TestParserStats_ResetPreservesSIMDFeatureSnapshot(t *testing.T) {
	var s parserStats
	s.simdFeaturesUsed = 0xFF
	s.recordField(10)
	s.reset()
	if s.simdFeaturesUsed != 0xFF {
		t.Errorf("reset must preserve simdFeaturesUsed, got %x", s.simdFeaturesUsed)
	}
	if s.totalFieldsParsed != 0 {
		t.Errorf("reset must clear counters, totalFieldsParsed = %d", s.totalFieldsParsed)
	}
}

func TestParser_Stats_ReportsInstanceIDAndCounts(t *testing.T) {
	p, err := New(DefaultOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.ParseString("a,b,c\nd,e,f\n"); err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	st := p.Stats()
	if st.InstanceID == "" {
		t.Fatal("Stats().InstanceID must not be empty")
	}
	if st.TotalRowsParsed != 2 {
		t.Errorf("TotalRowsParsed = %d, want 2", st.TotalRowsParsed)
	}
	if st.TotalFieldsParsed != 6 {
		t.Errorf("TotalFieldsParsed = %d, want 6", st.TotalFieldsParsed)
	}
}
