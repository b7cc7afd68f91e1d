package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics набор prometheus-коллекторов сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	BookingsCreated     *prometheus.CounterVec
	BookingDecisions    *prometheus.CounterVec
	PartialSeries       prometheus.Counter
	ReservationConflict prometheus.Counter
	SlotsGenerated      prometheus.Histogram

	StoreOperationDuration *prometheus.HistogramVec
	StoreErrors            *prometheus.CounterVec
	RealtimeClients        prometheus.Gauge

	reg prometheus.Registerer
}

// New создает и регистрирует метрики в default registry
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает метрики в указанном registry (используется в тестах)
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		BookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_created_total",
			Help:        "Pending booking records created from the public booking page",
			ConstLabels: constLabels,
		}, []string{"kind"}),

		BookingDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_decisions_total",
			Help:        "Practitioner decisions on pending bookings",
			ConstLabels: constLabels,
		}, []string{"decision"}),

		PartialSeries: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "booking_partial_series_total",
			Help:        "Recurring series that were only partially persisted",
			ConstLabels: constLabels,
		}),

		ReservationConflict: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "booking_reservation_conflicts_total",
			Help:        "Bookings refused because another booking reserved the same range first",
			ConstLabels: constLabels,
		}),

		SlotsGenerated: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "slots_generated",
			Help:        "Number of candidate slots returned per public query",
			ConstLabels: constLabels,
			Buckets:     []float64{0, 10, 25, 50, 100, 200},
		}),

		StoreOperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "store_operation_duration_seconds",
			Help:        "Document store operation duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"operation"}),

		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "store_errors_total",
			Help:        "Failed document store operations",
			ConstLabels: constLabels,
		}, []string{"operation"}),

		RealtimeClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "realtime_clients",
			Help:        "Connected websocket clients watching appointments",
			ConstLabels: constLabels,
		}),
	}

	m.reg = reg
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BookingsCreated,
		m.BookingDecisions,
		m.PartialSeries,
		m.ReservationConflict,
		m.SlotsGenerated,
		m.StoreOperationDuration,
		m.StoreErrors,
		m.RealtimeClients,
	)

	return m
}

// RegisterDB публикует статистику connection pool (go_sql_* метрики)
func (m *Metrics) RegisterDB(db *sql.DB, dbName string) error {
	if m == nil {
		return nil
	}
	return m.reg.Register(collectors.NewDBStatsCollector(db, dbName))
}

// BookingCreated увеличивает счетчик созданных заявок
func (m *Metrics) BookingCreated(kind string, n int) {
	if m == nil {
		return
	}
	m.BookingsCreated.WithLabelValues(kind).Add(float64(n))
}

// Decision фиксирует решение практикующего (approved / rejected)
func (m *Metrics) Decision(decision string) {
	if m == nil {
		return
	}
	m.BookingDecisions.WithLabelValues(decision).Inc()
}

// PartialSeriesFailure фиксирует частично сохраненную серию
func (m *Metrics) PartialSeriesFailure() {
	if m == nil {
		return
	}
	m.PartialSeries.Inc()
}

// ReservationConflictHit фиксирует отказ из-за занятого диапазона
func (m *Metrics) ReservationConflictHit() {
	if m == nil {
		return
	}
	m.ReservationConflict.Inc()
}

// ObserveSlots фиксирует количество сгенерированных слотов
func (m *Metrics) ObserveSlots(n int) {
	if m == nil {
		return
	}
	m.SlotsGenerated.Observe(float64(n))
}

// ObserveStore фиксирует длительность и результат операции с хранилищем
func (m *Metrics) ObserveStore(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.StoreOperationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	if err != nil {
		m.StoreErrors.WithLabelValues(operation).Inc()
	}
}

// RealtimeClientsDelta изменяет число подключенных websocket-клиентов
func (m *Metrics) RealtimeClientsDelta(delta int) {
	if m == nil {
		return
	}
	m.RealtimeClients.Add(float64(delta))
}
