package performance

import (
	"sync"
	"time"

	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/logging"
)

// OperationStats aggregates completed markers for one operation.
type OperationStats struct {
	Count    int           `json:"count"`
	Failures int           `json:"failures"`
	Slow     int           `json:"slow"`
	Total    time.Duration `json:"total"`
	Max      time.Duration `json:"max"`
}

// Average returns the mean duration.
func (s OperationStats) Average() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Tracker aggregates markers by operation. It is safe for concurrent use.
type Tracker struct {
	mu      sync.RWMutex
	ops     map[string]*OperationStats
	slow    time.Duration
	logger  *logging.ChanneledLogger
	started time.Time
}

// NewTracker creates a tracker. Operations slower than slow are logged.
func NewTracker(slow time.Duration, logger *logging.ChanneledLogger) *Tracker {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Tracker{
		ops:     make(map[string]*OperationStats),
		slow:    slow,
		logger:  logger,
		started: time.Now(),
	}
}

// StartOperation creates a new performance marker for an operation
func (t *Tracker) StartOperation(operation, visitorID string) *Marker {
	return &Marker{
		Operation: operation,
		VisitorID: visitorID,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
		Success:   true, // Assume success until proven otherwise
		tracker:   t,
	}
}

func (t *Tracker) record(m *Marker) {
	slow := t.slow > 0 && m.Duration > t.slow

	t.mu.Lock()
	s, ok := t.ops[m.Operation]
	if !ok {
		s = &OperationStats{}
		t.ops[m.Operation] = s
	}
	s.Count++
	s.Total += m.Duration
	if m.Duration > s.Max {
		s.Max = m.Duration
	}
	if !m.Success {
		s.Failures++
	}
	if slow {
		s.Slow++
	}
	t.mu.Unlock()

	if slow {
		t.logger.HTTP().Warn("Slow operation",
			"operation", m.Operation,
			"duration", m.Duration,
			"visitorId", logging.SanitizeVisitorID(m.VisitorID),
			"success", m.Success)
	}
}

// Stats returns a copy of the per-operation statistics.
func (t *Tracker) Stats() map[string]OperationStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]OperationStats, len(t.ops))
	for op, s := range t.ops {
		out[op] = *s
	}
	return out
}

// Uptime returns how long the tracker has been running.
func (t *Tracker) Uptime() time.Duration {
	return time.Since(t.started)
}
