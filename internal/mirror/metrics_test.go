package mirror

import (
	"testing"
	"time"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()

	m.RecordAcquire(2 * time.Millisecond)
	m.RecordCapture()
	m.RecordAcquire(3 * time.Millisecond)
	m.RecordCapture()
	m.RecordAcquire(100 * time.Microsecond)
	m.RecordTimeout()
	m.RecordCompose(500 * time.Microsecond)
	m.RecordPresent(1 * time.Millisecond)
	m.RecordRecovery()
	m.RecordShapeUpdate()
	m.RecordDecodeError()

	snap := m.Snapshot()
	if snap.FramesCaptured != 2 {
		t.Errorf("FramesCaptured = %d, want 2", snap.FramesCaptured)
	}
	if snap.FramesPresented != 1 {
		t.Errorf("FramesPresented = %d, want 1", snap.FramesPresented)
	}
	if snap.Timeouts != 1 {
		t.Errorf("Timeouts = %d, want 1", snap.Timeouts)
	}
	if snap.Recoveries != 1 {
		t.Errorf("Recoveries = %d, want 1", snap.Recoveries)
	}
	if snap.ShapeUpdates != 1 {
		t.Errorf("ShapeUpdates = %d, want 1", snap.ShapeUpdates)
	}
	if snap.DecodeErrors != 1 {
		t.Errorf("DecodeErrors = %d, want 1", snap.DecodeErrors)
	}
	if snap.AcquireMs != 0.1 {
		t.Errorf("AcquireMs = %v, want 0.1 (latest poll)", snap.AcquireMs)
	}
	if snap.ComposeMs != 0.5 {
		t.Errorf("ComposeMs = %v, want 0.5", snap.ComposeMs)
	}
	if snap.PresentMs != 1.0 {
		t.Errorf("PresentMs = %v, want 1", snap.PresentMs)
	}
	if snap.Uptime <= 0 {
		t.Errorf("Uptime = %v, want positive", snap.Uptime)
	}
}

func TestMetricsSnapshotZeroValue(t *testing.T) {
	snap := NewMetrics().Snapshot()
	if snap.FramesCaptured != 0 || snap.CaptureFPS != 0 {
		t.Fatalf("unexpected non-zero snapshot: %+v", snap)
	}
}
