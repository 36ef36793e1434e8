// Package metrics exposes prometheus counters for billing operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

type Metrics struct {
	invoicesIssued      prometheus.Counter
	billingTransitions  *prometheus.CounterVec
	transactionsApplied prometheus.Counter
}

func New() (*Metrics, error) {
	m := &Metrics{
		invoicesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "predialis",
			Name:      "invoices_issued_total",
			Help:      "Invoices issued and persisted as billings.",
		}),
		billingTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "predialis",
			Name:      "billing_status_transitions_total",
			Help:      "Billing status transitions by target status.",
		}, []string{"status"}),
		transactionsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "predialis",
			Name:      "transactions_applied_total",
			Help:      "Completed transactions applied to account balances.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.invoicesIssued,
		m.billingTransitions,
		m.transactionsApplied,
	} {
		if err := prometheus.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}

	return m, nil
}

func (m *Metrics) RecordInvoiceIssued() {
	if m == nil {
		return
	}
	m.invoicesIssued.Inc()
}

func (m *Metrics) RecordBillingTransition(status string) {
	if m == nil {
		return
	}
	m.billingTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordTransactionApplied() {
	if m == nil {
		return
	}
	m.transactionsApplied.Inc()
}

var Module = fx.Module("observability.metrics",
	fx.Provide(New),
)
