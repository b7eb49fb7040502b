package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// BillingMetrics tracks the invoice generation workflow.
type BillingMetrics struct {
	invoicesComposed  *prometheus.CounterVec
	lineItemsRejected *prometheus.CounterVec
	notifyAttempts    *prometheus.CounterVec
	outboxBacklog     prometheus.Gauge
}

var (
	billingMetricsOnce sync.Once
	billingMetrics     *BillingMetrics
)

// Billing returns the process-wide billing metrics, registering them on
// first use.
func Billing(serviceName string) *BillingMetrics {
	billingMetricsOnce.Do(func() {
		billingMetrics = newBillingMetrics(prometheus.DefaultRegisterer, serviceName)
	})
	return billingMetrics
}

// ResetBillingMetricsForTest clears the singleton between test registries.
func ResetBillingMetricsForTest() {
	billingMetricsOnce = sync.Once{}
	billingMetrics = nil
}

func newBillingMetrics(registerer prometheus.Registerer, serviceName string) *BillingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	serviceName = strings.TrimSpace(serviceName)
	if serviceName == "" {
		serviceName = "invopond"
	}
	constLabels := prometheus.Labels{"service": serviceName}

	invoicesComposed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "invopond_invoices_composed_total",
			Help:        "Invoices composed, by result.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // created | rejected | failed
	)
	lineItemsRejected := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "invopond_line_items_rejected_total",
			Help:        "Line item requests rejected during build, by reason.",
			ConstLabels: constLabels,
		},
		[]string{"reason"},
	)
	notifyAttempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "invopond_notifications_total",
			Help:        "Post-compose notification attempts, by result.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // sent | failed | skipped
	)
	outboxBacklog := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "invopond_billing_events_backlog",
		Help:        "Billing events awaiting relay.",
		ConstLabels: constLabels,
	})

	registerer.MustRegister(invoicesComposed, lineItemsRejected, notifyAttempts, outboxBacklog)

	return &BillingMetrics{
		invoicesComposed:  invoicesComposed,
		lineItemsRejected: lineItemsRejected,
		notifyAttempts:    notifyAttempts,
		outboxBacklog:     outboxBacklog,
	}
}

func (m *BillingMetrics) IncInvoiceComposed(result string) {
	if m == nil {
		return
	}
	m.invoicesComposed.WithLabelValues(result).Inc()
}

func (m *BillingMetrics) IncLineItemRejected(reason string) {
	if m == nil {
		return
	}
	m.lineItemsRejected.WithLabelValues(reason).Inc()
}

func (m *BillingMetrics) IncNotify(result string) {
	if m == nil {
		return
	}
	m.notifyAttempts.WithLabelValues(result).Inc()
}

func (m *BillingMetrics) SetOutboxBacklog(value int) {
	if m == nil {
		return
	}
	m.outboxBacklog.Set(float64(value))
}
