package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks API latency by matched route.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "yogitrack_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
			Buckets: []float64{
				0.001, // 1ms
				0.005, // 5ms
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
			},
		},
		[]string{"method", "route", "status"},
	)

	// LedgerOperations counts committed balance-changing operations.
	LedgerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yogitrack_ledger_operations_total",
			Help: "Balance-changing operations committed, by operation",
		},
		[]string{"operation"},
	)

	// LedgerClamps counts floors and caps that changed a value.
	LedgerClamps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yogitrack_ledger_clamps_total",
			Help: "Ledger values clamped at a floor or cap, by operation and field",
		},
		[]string{"operation", "field"},
	)

	SkippedAttendees = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yogitrack_attendees_skipped_total",
			Help: "Attendees dropped because their customer record does not exist",
		},
	)
)

func RecordLedgerOperation(op string) {
	LedgerOperations.WithLabelValues(op).Inc()
}

func RecordClamp(op, field string) {
	LedgerClamps.WithLabelValues(op, field).Inc()
}

// Middleware observes RequestDuration for every request.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		RequestDuration.
			WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}
