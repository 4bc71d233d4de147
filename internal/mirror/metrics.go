package mirror

import (
	"sync"
	"time"
)

// Metrics tracks real-time performance data for a mirroring session.
type Metrics struct {
	mu sync.RWMutex

	FramesCaptured  uint64
	FramesPresented uint64
	Timeouts        uint64
	Recoveries      uint64
	ShapeUpdates    uint64
	DecodeErrors    uint64

	LastAcquireTime time.Duration
	LastComposeTime time.Duration
	LastPresentTime time.Duration

	startTime time.Time
}

// NewMetrics returns a zeroed metrics collector with its uptime clock
// started.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordAcquire stores the latency of the latest acquire poll,
// whatever its outcome.
func (m *Metrics) RecordAcquire(d time.Duration) {
	m.mu.Lock()
	m.LastAcquireTime = d
	m.mu.Unlock()
}

// RecordCapture counts a frame that actually arrived. Timeout and
// access-lost polls are tracked separately.
func (m *Metrics) RecordCapture() {
	m.mu.Lock()
	m.FramesCaptured++
	m.mu.Unlock()
}

func (m *Metrics) RecordTimeout() {
	m.mu.Lock()
	m.Timeouts++
	m.mu.Unlock()
}

func (m *Metrics) RecordCompose(d time.Duration) {
	m.mu.Lock()
	m.LastComposeTime = d
	m.mu.Unlock()
}

func (m *Metrics) RecordPresent(d time.Duration) {
	m.mu.Lock()
	m.FramesPresented++
	m.LastPresentTime = d
	m.mu.Unlock()
}

func (m *Metrics) RecordRecovery() {
	m.mu.Lock()
	m.Recoveries++
	m.mu.Unlock()
}

func (m *Metrics) RecordShapeUpdate() {
	m.mu.Lock()
	m.ShapeUpdates++
	m.mu.Unlock()
}

func (m *Metrics) RecordDecodeError() {
	m.mu.Lock()
	m.DecodeErrors++
	m.mu.Unlock()
}

// MetricsSnapshot is a point-in-time copy of metrics for logging.
type MetricsSnapshot struct {
	FramesCaptured  uint64
	FramesPresented uint64
	Timeouts        uint64
	Recoveries      uint64
	ShapeUpdates    uint64
	DecodeErrors    uint64
	AcquireMs       float64
	ComposeMs       float64
	PresentMs       float64
	CaptureFPS      float64
	Uptime          time.Duration
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	uptime := time.Since(m.startTime)
	fps := float64(0)
	if uptime.Seconds() > 0 {
		fps = float64(m.FramesCaptured) / uptime.Seconds()
	}

	return MetricsSnapshot{
		FramesCaptured:  m.FramesCaptured,
		FramesPresented: m.FramesPresented,
		Timeouts:        m.Timeouts,
		Recoveries:      m.Recoveries,
		ShapeUpdates:    m.ShapeUpdates,
		DecodeErrors:    m.DecodeErrors,
		AcquireMs:       float64(m.LastAcquireTime.Microseconds()) / 1000.0,
		ComposeMs:       float64(m.LastComposeTime.Microseconds()) / 1000.0,
		PresentMs:       float64(m.LastPresentTime.Microseconds()) / 1000.0,
		CaptureFPS:      fps,
		Uptime:          uptime,
	}
}
