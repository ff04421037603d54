package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"accounts-service/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Sign-in counter
	SignInCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "accounts_sign_in_total",
			Help: "Total number of sign-in attempts",
		},
	)

	// Sign-up counter
	SignUpCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "accounts_sign_up_total",
			Help: "Total number of sign-up attempts",
		},
	)

	// Password flow counter
	PasswordFlowCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_password_flow_total",
			Help: "Total number of password flow operations",
		},
		[]string{"operation"}, // "forgot", "reset", "change"
	)

	// Email verification counter
	EmailVerifyCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "accounts_email_verify_total",
			Help: "Total number of email verification attempts",
		},
	)

	// Account operation counter
	AccountOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_account_operations_total",
			Help: "Total number of account operations",
		},
		[]string{"operation"}, // "access", "update", "delete"
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // "account_not_found", "invalid_password", "invalid_token" etc.
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "accounts_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "accounts_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Active sessions
	ActiveSessionsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "accounts_active_sessions",
			Help: "Number of currently active sessions",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "accounts_info",
			Help: "Information about the accounts service",
		},
		[]string{"version", "environment"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(SignInCounter)
	prometheus.MustRegister(SignUpCounter)
	prometheus.MustRegister(PasswordFlowCounter)
	prometheus.MustRegister(EmailVerifyCounter)
	prometheus.MustRegister(AccountOperationCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(ActiveSessionsGauge)
	prometheus.MustRegister(InfoGauge)
}

// InitMetrics sets the service info gauge from configuration
func InitMetrics(cfg *config.Config) {
	InfoGauge.With(prometheus.Labels{
		"version":     "1.0.0",
		"environment": cfg.Server.Env,
	}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Execute the request handler
			err := next(c)

			// Record request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			// Record metrics
			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// IncreaseActiveSessions increments the active sessions gauge
func IncreaseActiveSessions() {
	ActiveSessionsGauge.Inc()
}

// DecreaseActiveSessions decrements the active sessions gauge
func DecreaseActiveSessions() {
	ActiveSessionsGauge.Dec()
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordAccountOperation records an account operation by name
func RecordAccountOperation(operation string) {
	AccountOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordPasswordFlow records a password flow operation by name
func RecordPasswordFlow(operation string) {
	PasswordFlowCounter.With(prometheus.Labels{"operation": operation}).Inc()
}
