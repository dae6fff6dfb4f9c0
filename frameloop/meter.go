package frameloop

import (
	"sync"
	"time"
)

// DefaultMeterWindow is the number of intervals a Meter averages over.
const DefaultMeterWindow = 60

// Meter measures the achieved callback rate over a sliding window of
// intervals, plus a once-per-second counter for overlays and logs.
type Meter struct {
	mu sync.Mutex

	last      time.Time
	intervals []time.Duration
	next      int
	filled    int
	sum       time.Duration
	marks     uint64

	secStart time.Time
	secCount int
	perSec   int
}

// NewMeter creates a meter averaging over the last window intervals. A
// non-positive window uses DefaultMeterWindow.
func NewMeter(window int) *Meter {
	if window <= 0 {
		window = DefaultMeterWindow
	}
	return &Meter{intervals: make([]time.Duration, window)}
}

// Mark records one callback invocation at t.
func (m *Meter) Mark(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.marks++
	if m.secStart.IsZero() {
		m.secStart = t
	}
	if t.Sub(m.secStart) >= time.Second {
		m.perSec = m.secCount
		m.secCount = 0
		m.secStart = t
	}
	m.secCount++

	if m.last.IsZero() {
		m.last = t
		return
	}
	d := t.Sub(m.last)
	m.last = t
	if d < 0 {
		return
	}

	if m.filled == len(m.intervals) {
		m.sum -= m.intervals[m.next]
	} else {
		m.filled++
	}
	m.intervals[m.next] = d
	m.sum += d
	m.next = (m.next + 1) % len(m.intervals)
}

// Average returns the mean interval between marks in the window, or zero
// before two marks were recorded.
func (m *Meter) Average() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.filled == 0 {
		return 0
	}
	return m.sum / time.Duration(m.filled)
}

// FPS returns the rate implied by Average.
func (m *Meter) FPS() float64 {
	avg := m.Average()
	if avg <= 0 {
		return 0
	}
	return float64(time.Second) / float64(avg)
}

// LastSecond returns the number of marks counted in the last completed
// one-second window.
func (m *Meter) LastSecond() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.perSec
}

// Count returns the total number of marks.
func (m *Meter) Count() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.marks
}

// Reset clears all recorded marks.
func (m *Meter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.intervals)
	m.last = time.Time{}
	m.next, m.filled, m.sum, m.marks = 0, 0, 0, 0
	m.secStart = time.Time{}
	m.secCount, m.perSec = 0, 0
}
