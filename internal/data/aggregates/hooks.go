package aggregates

import (
	"strings"
	"time"

	"github.com/yungbote/journey-backend/internal/observability"
)

// Hooks receives one signal per aggregate write. Conflicts and retryable
// failures are reported in addition to the operation outcome.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetryable(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetryable(string)                            {}

type metricsHooks struct {
	metrics *observability.Metrics
}

// NewObservabilityHooks reports aggregate writes to m. A nil m yields hooks
// that drop everything.
func NewObservabilityHooks(m *observability.Metrics) Hooks {
	if m == nil {
		return noopHooks{}
	}
	return metricsHooks{metrics: m}
}

func (h metricsHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.metrics.ObserveAggregateOperation(opLabel(name), strings.TrimSpace(status), dur)
}

func (h metricsHooks) IncConflict(name string) {
	h.metrics.IncAggregateConflict(opLabel(name))
}

func (h metricsHooks) IncRetryable(name string) {
	h.metrics.IncAggregateRetryable(opLabel(name))
}

// opLabel keeps the operation label set closed: names are lowercased and
// blanks collapse to "unknown".
func opLabel(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "unknown"
	}
	return name
}
