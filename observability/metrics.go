package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"payvault/core/events"
)

type ledgerMetrics struct {
	payments      *prometheus.CounterVec
	contributions prometheus.Counter
	rewards       *prometheus.CounterVec
	refunds       prometheus.Counter
	withdrawals   prometheus.Counter
	deposits      prometheus.Counter
	finalizations *prometheus.CounterVec
}

var (
	ledgerMetricsOnce sync.Once
	ledgerRegistry    *ledgerMetrics
)

func sharedMetrics() *ledgerMetrics {
	ledgerMetricsOnce.Do(func() {
		ledgerRegistry = &ledgerMetrics{
			payments: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "payvault",
				Subsystem: "payroll",
				Name:      "payments_total",
				Help:      "Count of successful payday claims segmented by asset.",
			}, []string{"asset"}),
			contributions: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "payvault",
				Subsystem: "campaign",
				Name:      "contributions_total",
				Help:      "Count of accepted campaign contributions.",
			}),
			rewards: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "payvault",
				Subsystem: "campaign",
				Name:      "rewards_total",
				Help:      "Count of campaign reward disbursements segmented by asset.",
			}, []string{"asset"}),
			refunds: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "payvault",
				Subsystem: "campaign",
				Name:      "refunds_total",
				Help:      "Count of campaign contributor refunds.",
			}),
			withdrawals: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "payvault",
				Subsystem: "reserve",
				Name:      "withdrawals_total",
				Help:      "Count of owner reserve withdrawals.",
			}),
			deposits: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "payvault",
				Subsystem: "reserve",
				Name:      "deposits_total",
				Help:      "Count of direct reserve deposits.",
			}),
			finalizations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "payvault",
				Subsystem: "campaign",
				Name:      "finalizations_total",
				Help:      "Count of campaign finalizations segmented by outcome.",
			}, []string{"outcome"}),
		}
		prometheus.MustRegister(
			ledgerRegistry.payments,
			ledgerRegistry.contributions,
			ledgerRegistry.rewards,
			ledgerRegistry.refunds,
			ledgerRegistry.withdrawals,
			ledgerRegistry.deposits,
			ledgerRegistry.finalizations,
		)
	})
	return ledgerRegistry
}

// EventRecorder is an events.Emitter that feeds the prometheus counters from
// committed ledger events. It can be chained in front of another sink.
type EventRecorder struct {
	metrics *ledgerMetrics
	next    events.Emitter
}

// NewEventRecorder creates a recorder forwarding to next after counting.
// Passing nil discards events after counting.
func NewEventRecorder(next events.Emitter) *EventRecorder {
	if next == nil {
		next = events.NoopEmitter{}
	}
	return &EventRecorder{metrics: sharedMetrics(), next: next}
}

// Emit implements the events.Emitter interface.
func (r *EventRecorder) Emit(e events.Event) {
	if r == nil || e == nil {
		return
	}
	switch evt := e.(type) {
	case events.PaymentMade:
		r.metrics.payments.WithLabelValues(evt.Symbol).Inc()
	case events.CampaignContributed:
		r.metrics.contributions.Inc()
	case events.CampaignRewardPaid:
		r.metrics.rewards.WithLabelValues(evt.Symbol).Inc()
	case events.CampaignRefunded:
		r.metrics.refunds.Inc()
	case events.ReserveWithdrawn:
		r.metrics.withdrawals.Inc()
	case events.ReserveDeposited:
		r.metrics.deposits.Inc()
	case events.CampaignFinalized:
		outcome := "failure"
		if evt.Succeeded {
			outcome = "success"
		}
		r.metrics.finalizations.WithLabelValues(outcome).Inc()
	}
	r.next.Emit(e)
}
