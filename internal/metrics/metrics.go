package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DomainsTransitioned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nametracker",
		Name:      "domains_transitioned_total",
		Help:      "Domains moved from pending_delete to deleted.",
	})
	DomainsChecked = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nametracker",
		Name:      "domains_checked_total",
		Help:      "Per-domain availability check outcomes.",
	}, []string{"result"})
	DomainsArchived = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nametracker",
		Name:      "domains_archived_total",
		Help:      "Domains copied to the archive and removed.",
	})
	ProviderCalls = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nametracker",
		Name:      "provider_calls_total",
		Help:      "Bulk availability calls issued to the provider.",
	})
	ProviderFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nametracker",
		Name:      "provider_failures_total",
		Help:      "Provider calls that exhausted all retry attempts.",
	})
	IdeasRefreshed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nametracker",
		Name:      "ideas_refreshed_total",
		Help:      "Idea-of-the-day rows written because the winner changed.",
	})
	JobSkippedLocked = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nametracker",
		Name:      "job_skipped_locked_total",
		Help:      "Job invocations skipped because the lock was held.",
	}, []string{"job"})
)

// Init registers collectors; call once from server startup.
func Init() {
	prometheus.MustRegister(
		DomainsTransitioned,
		DomainsChecked,
		DomainsArchived,
		ProviderCalls,
		ProviderFailures,
		IdeasRefreshed,
		JobSkippedLocked,
	)
}
