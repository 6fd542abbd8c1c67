package observability

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/journey-backend/internal/platform/envutil"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

const namespace = "journey"

type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	aggregateOps       *prometheus.CounterVec
	aggregateLatency   *prometheus.HistogramVec
	aggregateConflicts *prometheus.CounterVec
	aggregateRetryable *prometheus.CounterVec

	daysCompleted prometheus.Counter
	tasksToggled  *prometheus.CounterVec
	progressInits prometheus.Counter
	authEvents    *prometheus.CounterVec
	notifications *prometheus.CounterVec
	sseClients    prometheus.Gauge
	redisUp       prometheus.Gauge
	redisPingSecs prometheus.Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Enabled reports METRICS_ENABLED.
func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false, nil)
}

func Current() *Metrics {
	return instance
}

// Init builds the process-wide metrics once. Returns nil when metrics are disabled.
func Init(log *logger.Logger) *Metrics {
	initOnce.Do(func() {
		if !Enabled() {
			return
		}
		instance = NewMetrics()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

// NewMetrics registers every collector on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "api_requests_total", Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "api_request_duration_seconds", Help: "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "api_inflight_requests", Help: "HTTP requests being served.",
		}),
		aggregateOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "aggregate_operations_total", Help: "Aggregate writes by operation and outcome.",
		}, []string{"operation", "status"}),
		aggregateLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "aggregate_operation_duration_seconds", Help: "Aggregate write latency.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation"}),
		aggregateConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "aggregate_conflicts_total", Help: "Lost compare-and-set writes.",
		}, []string{"operation"}),
		aggregateRetryable: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "aggregate_retryable_total", Help: "Transient aggregate failures.",
		}, []string{"operation"}),
		daysCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "days_completed_total", Help: "Successful day completions.",
		}),
		tasksToggled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "tasks_toggled_total", Help: "Task toggles by category and new state.",
		}, []string{"category", "completed"}),
		progressInits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "progress_initialized_total", Help: "Progress records created.",
		}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "auth_events_total", Help: "Identity events by kind and outcome.",
		}, []string{"event", "outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "notifications_total", Help: "Notifications pushed by level.",
		}, []string{"level"}),
		sseClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "sse_clients", Help: "Connected SSE clients.",
		}),
		redisUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "redis_up", Help: "1 when the notification bus answers PING.",
		}),
		redisPingSecs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "redis_ping_seconds", Help: "Last PING round trip.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.aggregateOps, m.aggregateLatency, m.aggregateConflicts, m.aggregateRetryable,
		m.daysCompleted, m.tasksToggled, m.progressInits,
		m.authEvents, m.notifications, m.sseClients,
		m.redisUp, m.redisPingSecs,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAggregateOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.WithLabelValues(op, status).Inc()
	m.aggregateLatency.WithLabelValues(op).Observe(dur.Seconds())
}

func (m *Metrics) IncAggregateConflict(op string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.WithLabelValues(op).Inc()
}

func (m *Metrics) IncAggregateRetryable(op string) {
	if m == nil {
		return
	}
	m.aggregateRetryable.WithLabelValues(op).Inc()
}

func (m *Metrics) IncDayCompleted() {
	if m == nil {
		return
	}
	m.daysCompleted.Inc()
}

func (m *Metrics) IncTaskToggled(category string, completed bool) {
	if m == nil {
		return
	}
	m.tasksToggled.WithLabelValues(category, strconv.FormatBool(completed)).Inc()
}

func (m *Metrics) IncProgressInit() {
	if m == nil {
		return
	}
	m.progressInits.Inc()
}

func (m *Metrics) IncAuthEvent(event, outcome string) {
	if m == nil {
		return
	}
	m.authEvents.WithLabelValues(strings.TrimSpace(event), strings.TrimSpace(outcome)).Inc()
}

func (m *Metrics) IncNotification(level string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(level).Inc()
}

func (m *Metrics) SetSSEClients(n int) {
	if m == nil {
		return
	}
	m.sseClients.Set(float64(n))
}

// RegisterDBStats exposes database/sql pool statistics.
func (m *Metrics) RegisterDBStats(log *logger.Logger, db *gorm.DB, dbName string) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("metrics: db stats unavailable", "error", err)
		}
		return
	}
	if err := m.registry.Register(collectors.NewDBStatsCollector(sqlDB, dbName)); err != nil && log != nil {
		log.Warn("metrics: db stats collector not registered", "error", err)
	}
}

// StartRedisCollector pings the notification bus until ctx ends.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client) {
	if m == nil || rdb == nil {
		return
	}
	interval := envutil.Seconds("METRICS_SCRAPE_INTERVAL_SECONDS", 15*time.Second, nil)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPingSecs.Set(time.Since(start).Seconds())
			}
		}
	}()
}
