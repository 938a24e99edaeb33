package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "branch_appointments"

// Metrics набор prometheus-коллекторов сервиса.
// Все методы безопасны для nil-получателя: при выключенных метриках передаётся nil.
type Metrics struct {
	service string

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueryDuration *prometheus.HistogramVec
	dbConnections   *prometheus.GaugeVec

	slotTransitions        *prometheus.CounterVec
	occRetries             *prometheus.CounterVec
	appointmentTransitions *prometheus.CounterVec
	slotsGenerated         *prometheus.CounterVec
	sweepAppointments      *prometheus.CounterVec
	jobRuns                *prometheus.CounterVec
}

// New создает метрики и регистрирует их в prometheus.DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает метрики в указанном реестре (используется в тестах)
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		service: serviceName,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Count of HTTP requests by method, route and status code.",
			},
			[]string{"service", "method", "route", "code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"service", "method", "route"},
		),
		dbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "Database query latency by operation and status.",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"service", "operation", "status"},
		),
		dbConnections: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections",
				Help:      "Database pool connections by state.",
			},
			[]string{"service", "state"},
		),
		slotTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "slot_transitions_total",
				Help:      "Count of slot actions by outcome.",
			},
			[]string{"action", "outcome"},
		),
		occRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "occ_retries_total",
				Help:      "Count of optimistic concurrency retries by operation.",
			},
			[]string{"operation"},
		),
		appointmentTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "appointment_transitions_total",
				Help:      "Count of appointment transitions by outcome.",
			},
			[]string{"transition", "outcome"},
		),
		slotsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "slots_generated_total",
				Help:      "Count of slots emitted by the generator per day type.",
			},
			[]string{"day_type"},
		),
		sweepAppointments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "no_show_sweep_appointments_total",
				Help:      "Count of appointments seen by the no-show sweep by result.",
			},
			[]string{"result"},
		),
		jobRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "job_runs_total",
				Help:      "Count of background job runs by status.",
			},
			[]string{"job", "status"},
		),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.dbQueryDuration,
		m.dbConnections,
		m.slotTransitions,
		m.occRetries,
		m.appointmentTransitions,
		m.slotsGenerated,
		m.sweepAppointments,
		m.jobRuns,
	)

	return m
}

// ObserveHTTPRequest учитывает HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, route, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(m.service, method, route, code).Inc()
	m.httpRequestDuration.WithLabelValues(m.service, method, route).Observe(d.Seconds())
}

// ObserveDBQuery учитывает запрос к БД
func (m *Metrics) ObserveDBQuery(operation, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(m.service, operation, status).Observe(d.Seconds())
}

// SetDBConnections выставляет размер пула соединений по состояниям
func (m *Metrics) SetDBConnections(open, inUse, idle int) {
	if m == nil {
		return
	}
	m.dbConnections.WithLabelValues(m.service, "open").Set(float64(open))
	m.dbConnections.WithLabelValues(m.service, "in_use").Set(float64(inUse))
	m.dbConnections.WithLabelValues(m.service, "idle").Set(float64(idle))
}

func (m *Metrics) IncSlotTransition(action, outcome string) {
	if m == nil {
		return
	}
	m.slotTransitions.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) IncOCCRetry(operation string) {
	if m == nil {
		return
	}
	m.occRetries.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncAppointmentTransition(transition, outcome string) {
	if m == nil {
		return
	}
	m.appointmentTransitions.WithLabelValues(transition, outcome).Inc()
}

func (m *Metrics) AddSlotsGenerated(dayType string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.slotsGenerated.WithLabelValues(dayType).Add(float64(n))
}

func (m *Metrics) AddSweepAppointments(result string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sweepAppointments.WithLabelValues(result).Add(float64(n))
}

func (m *Metrics) IncJobRun(job, status string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, status).Inc()
}
