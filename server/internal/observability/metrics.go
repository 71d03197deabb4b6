package observability

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Operation names recorded by the scheduling core.
const (
	OpAvailability = "availability"
	OpCheck        = "check"
	OpBook         = "book"
	OpAgentRun     = "agent_run"
)

// Metrics collects in-process counters for tour operations.
type Metrics struct {
	mu sync.Mutex

	requestTotal   atomic.Int64
	calendarErrors atomic.Int64
	bookings       atomic.Int64
	streamEvents   atomic.Int64

	operations map[string]*OperationMetrics
}

// OperationMetrics holds counters for one operation.
type OperationMetrics struct {
	mu sync.Mutex

	requests       atomic.Int64
	calendarErrors atomic.Int64
	totalDuration  atomic.Int64 // milliseconds
	rejections     map[string]int64
}

// NewMetrics creates an empty metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		operations: make(map[string]*OperationMetrics),
	}
}

var globalMetrics = NewMetrics()

// GlobalMetrics returns the process-wide metrics instance.
func GlobalMetrics() *Metrics {
	return globalMetrics
}

// RecordRequest counts one invocation of op.
func (m *Metrics) RecordRequest(op string) {
	m.requestTotal.Add(1)
	m.operation(op).requests.Add(1)
}

// RecordRejection counts a policy or conflict rejection of op.
func (m *Metrics) RecordRejection(op, reason string) {
	om := m.operation(op)
	om.mu.Lock()
	om.rejections[reason]++
	om.mu.Unlock()
}

// RecordCalendarError counts a failed calendar read or write during op.
func (m *Metrics) RecordCalendarError(op string) {
	m.calendarErrors.Add(1)
	m.operation(op).calendarErrors.Add(1)
}

// RecordBooking counts a committed booking.
func (m *Metrics) RecordBooking() {
	m.bookings.Add(1)
}

// RecordDuration adds the elapsed time of one op invocation.
func (m *Metrics) RecordDuration(op string, d time.Duration) {
	m.operation(op).totalDuration.Add(d.Milliseconds())
}

// RecordStreamEvent counts one event written to an agent stream.
func (m *Metrics) RecordStreamEvent() {
	m.streamEvents.Add(1)
}

func (m *Metrics) operation(op string) *OperationMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	om, ok := m.operations[op]
	if !ok {
		om = &OperationMetrics{rejections: make(map[string]int64)}
		m.operations[op] = om
	}
	return om
}

// Reset clears all counters.
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.calendarErrors.Store(0)
	m.bookings.Store(0)
	m.streamEvents.Store(0)

	m.mu.Lock()
	m.operations = make(map[string]*OperationMetrics)
	m.mu.Unlock()
}

// Snapshot returns a point-in-time copy of all counters.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	ops := make(map[string]*OperationMetrics, len(m.operations))
	for name, om := range m.operations {
		ops[name] = om
	}
	m.mu.Unlock()

	snapshots := make(map[string]*OperationSnapshot, len(ops))
	for name, om := range ops {
		om.mu.Lock()
		rejections := make(map[string]int64, len(om.rejections))
		for reason, n := range om.rejections {
			rejections[reason] = n
		}
		om.mu.Unlock()

		requests := om.requests.Load()
		var avg int64
		if requests > 0 {
			avg = om.totalDuration.Load() / requests
		}
		snapshots[name] = &OperationSnapshot{
			Requests:          requests,
			CalendarErrors:    om.calendarErrors.Load(),
			Rejections:        rejections,
			AverageDurationMs: avg,
		}
	}

	return &MetricsSnapshot{
		RequestTotal:   m.requestTotal.Load(),
		CalendarErrors: m.calendarErrors.Load(),
		Bookings:       m.bookings.Load(),
		StreamEvents:   m.streamEvents.Load(),
		Operations:     snapshots,
	}
}

// MetricsSnapshot is a point-in-time view of Metrics.
type MetricsSnapshot struct {
	RequestTotal   int64                         `json:"requestTotal"`
	CalendarErrors int64                         `json:"calendarErrors"`
	Bookings       int64                         `json:"bookings"`
	StreamEvents   int64                         `json:"streamEvents"`
	Operations     map[string]*OperationSnapshot `json:"operations"`
}

// OperationSnapshot is a point-in-time view of one operation's counters.
type OperationSnapshot struct {
	Requests          int64            `json:"requests"`
	CalendarErrors    int64            `json:"calendarErrors"`
	Rejections        map[string]int64 `json:"rejections"`
	AverageDurationMs int64            `json:"averageDurationMs"`
}

// OperationNames returns the recorded operation names in sorted order.
func (s *MetricsSnapshot) OperationNames() []string {
	names := make([]string, 0, len(s.Operations))
	for name := range s.Operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RejectionTotal sums rejections across all operations.
func (s *MetricsSnapshot) RejectionTotal() int64 {
	var total int64
	for _, op := range s.Operations {
		for _, n := range op.Rejections {
			total += n
		}
	}
	return total
}
