package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	ledgerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escrow_ledger_operations_total",
			Help: "Total number of wallet ledger operations",
		},
		[]string{"operation", "result"},
	)

	jobTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escrow_job_transitions_total",
			Help: "Total number of job status transitions",
		},
		[]string{"status"},
	)

	dispatchNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escrow_dispatch_notifications_total",
			Help: "Matched freelancers notified about new jobs",
		},
		[]string{"result"},
	)

	notificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escrow_notification_failures_total",
			Help: "Suppressed notification delivery failures",
		},
		[]string{"event"},
	)

	wsSlowClients = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "escrow_ws_slow_clients_total",
			Help: "WebSocket connections closed because their send buffer was full",
		},
	)

	recoveredPanics = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "escrow_recovered_panics_total",
			Help: "Panics recovered in background goroutines",
		},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "escrow_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"method", "route", "status"},
	)
)

// LedgerOperation учитывает операцию кошелька.
func LedgerOperation(operation string, err error) {
	ledgerOperations.WithLabelValues(operation, result(err)).Inc()
}

// JobTransition учитывает переход заказа в новый статус.
func JobTransition(status string) {
	jobTransitions.WithLabelValues(status).Inc()
}

// DispatchNotification учитывает доставку уведомления о подходящем заказе.
func DispatchNotification(err error) {
	dispatchNotifications.WithLabelValues(result(err)).Inc()
}

// NotificationFailure учитывает подавленную ошибку доставки.
func NotificationFailure(event string) {
	notificationFailures.WithLabelValues(event).Inc()
}

// WSSlowClient учитывает закрытое медленное соединение.
func WSSlowClient() {
	wsSlowClients.Inc()
}

// RecoveredPanic учитывает перехваченную panic фоновой задачи.
func RecoveredPanic() {
	recoveredPanics.Inc()
}

// ObserveHTTP записывает длительность HTTP-запроса.
func ObserveHTTP(method, route, status string, elapsed time.Duration) {
	httpRequestDuration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
