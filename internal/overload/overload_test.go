package overload

import (
	"testing"
	"time"
)

// TestRequestCount_Empty verifies that RequestCount returns 0 when no
// requests have been recorded within the time window.
func TestRequestCount_Empty(t *testing.T) {
	Reset()
	if n := RequestCount(1 * time.Minute); n != 0 {
		t.Errorf("RequestCount() = %d, want 0", n)
	}
}

func TestRecordServed_AndRequestCount(t *testing.T) {
	Reset()
	RecordServed()
	RecordServed()
	if n := RequestCount(1 * time.Minute); n != 2 {
		t.Errorf("RequestCount() = %d, want 2", n)
	}
}

// TestRequestCount_ExpiresOutsideWindow verifies that RequestCount excludes
// requests that occurred outside the specified time window.
func TestRequestCount_ExpiresOutsideWindow(t *testing.T) {
	Reset()
	RecordServed()
	if n := RequestCount(1 * time.Nanosecond); n != 0 {
		t.Errorf("RequestCount(1ns) = %d, want 0 (request outside window)", n)
	}
}

// TestRecordDenial_AndCount verifies that RecordDenial correctly increments
// denial count tracked by DenialCount.
func TestRecordDenial_AndCount(t *testing.T) {
	Reset()
	RecordDenial()
	RecordDenial()
	if n := DenialCount(1 * time.Minute); n != 2 {
		t.Errorf("DenialCount() = %d, want 2", n)
	}
}

func TestThreshold(t *testing.T) {
	if got := Threshold(10, 10*time.Second, 50); got != 50 {
		t.Errorf("Threshold(10, 10s, 50) = %v, want 50", got)
	}
}

func TestIsOverloaded(t *testing.T) {
	Reset()
	for i := 0; i < 6; i++ {
		RecordServed()
	}
	if !IsOverloaded(1, 10*time.Second, 50) {
		t.Error("IsOverloaded() = false with 6 requests over threshold 5, want true")
	}
	if IsOverloaded(10, 10*time.Second, 50) {
		t.Error("IsOverloaded() = true with 6 requests under threshold 50, want false")
	}
	if IsOverloaded(0, 10*time.Second, 50) {
		t.Error("IsOverloaded() = true with rate limiting disabled, want false")
	}
}

// TestReset_ClearsBoth verifies that Reset clears both request counts
// and denial counts simultaneously.
func TestReset_ClearsBoth(t *testing.T) {
	Reset()
	RecordServed()
	RecordDenial()
	Reset()
	if n := RequestCount(1 * time.Minute); n != 0 {
		t.Errorf("After Reset, RequestCount() = %d, want 0", n)
	}
	if n := DenialCount(1 * time.Minute); n != 0 {
		t.Errorf("After Reset, DenialCount() = %d, want 0", n)
	}
}
