package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "platform_"

	// ResultSuccess labels a successful operation.
	ResultSuccess = "success"
	// ResultError labels a failed operation.
	ResultError = "error"
	// ResultPartial labels a billing run with partner-level failures.
	ResultPartial = "partial"
)

// Webhook outcome labels.
const (
	WebhookOutcomeIgnored  = "ignored"
	WebhookOutcomePaid     = "paid"
	WebhookOutcomeNoop     = "noop"
	WebhookOutcomeNotFound = "not_found"
	WebhookOutcomeError    = "error"
)

var (
	registerOnce sync.Once

	billingRunTotal   *prometheus.CounterVec
	billingRunLatency *prometheus.HistogramVec
	invoicesCreated   prometheus.Counter
	partnersSkipped   prometheus.Counter

	webhookTotal   *prometheus.CounterVec
	webhookLatency *prometheus.HistogramVec

	gatewayRequests *prometheus.CounterVec
	gatewayLatency  *prometheus.HistogramVec
)

// Init registers billing and reconciliation metrics.
func Init() {
	registerOnce.Do(func() {
		billingRunTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "billing_runs_total",
				Help: "Total billing runs by result",
			},
			[]string{"result"},
		)
		billingRunLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "billing_run_seconds",
				Help:    "Billing run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		invoicesCreated = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "billing_invoices_created_total",
				Help: "Total invoices created by billing runs",
			},
		)
		partnersSkipped = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "billing_partners_skipped_total",
				Help: "Total partners skipped (window not due or zero fees)",
			},
		)

		webhookTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "payment_webhooks_total",
				Help: "Total payment webhooks by outcome",
			},
			[]string{"outcome"},
		)
		webhookLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "payment_webhook_seconds",
				Help:    "Payment webhook handling duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		)

		gatewayRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "gateway_requests_total",
				Help: "Total payment gateway requests by operation and result",
			},
			[]string{"operation", "result"},
		)
		gatewayLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "gateway_request_seconds",
				Help:    "Payment gateway request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		)

		prometheus.MustRegister(
			billingRunTotal,
			billingRunLatency,
			invoicesCreated,
			partnersSkipped,
			webhookTotal,
			webhookLatency,
			gatewayRequests,
			gatewayLatency,
		)
	})
}

// ObserveBillingRun records one billing run.
func ObserveBillingRun(result string, invoiced, skipped int, d time.Duration) {
	if billingRunTotal == nil {
		return
	}
	billingRunTotal.WithLabelValues(result).Inc()
	billingRunLatency.WithLabelValues(result).Observe(d.Seconds())
	invoicesCreated.Add(float64(invoiced))
	partnersSkipped.Add(float64(skipped))
}

// ObserveWebhook records one webhook handling outcome.
func ObserveWebhook(outcome string, d time.Duration) {
	if webhookTotal == nil {
		return
	}
	webhookTotal.WithLabelValues(outcome).Inc()
	webhookLatency.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveGatewayRequest records one gateway call.
func ObserveGatewayRequest(operation, result string, d time.Duration) {
	if gatewayRequests == nil {
		return
	}
	gatewayRequests.WithLabelValues(operation, result).Inc()
	gatewayLatency.WithLabelValues(operation).Observe(d.Seconds())
}
