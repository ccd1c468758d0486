package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics captures alert engine health signals: sweep throughput, job
// failures, and the volume of alerts and escalations produced.
type Metrics struct {
	jobRuns          *prometheus.CounterVec
	jobErrors        *prometheus.CounterVec
	jobDuration      *prometheus.HistogramVec
	alertsCreated    *prometheus.CounterVec
	escalationsFired *prometheus.CounterVec
	notifyFailures   prometheus.Counter
}

// New registers the engine instruments on the given registerer.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "glucoguard_scheduler_job_runs_total",
		Help: "Scheduler job runs by name.",
	}, []string{"job"})
	jobErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "glucoguard_scheduler_job_errors_total",
		Help: "Scheduler job failures by name.",
	}, []string{"job"})
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "glucoguard_scheduler_job_duration_seconds",
		Help:    "Scheduler job latency to protect the alert freshness window.",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"job"})
	alertsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "glucoguard_alerts_created_total",
		Help: "Alerts created by severity.",
	}, []string{"severity"})
	escalationsFired := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "glucoguard_escalations_fired_total",
		Help: "Escalation events fired by tier.",
	}, []string{"tier"})
	notifyFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "glucoguard_notification_failures_total",
		Help: "Outbound notification delivery failures.",
	})

	registerer.MustRegister(
		jobRuns,
		jobErrors,
		jobDuration,
		alertsCreated,
		escalationsFired,
		notifyFailures,
	)

	return &Metrics{
		jobRuns:          jobRuns,
		jobErrors:        jobErrors,
		jobDuration:      jobDuration,
		alertsCreated:    alertsCreated,
		escalationsFired: escalationsFired,
		notifyFailures:   notifyFailures,
	}
}

// IncJobRun increments the run counter for a scheduler job.
func (m *Metrics) IncJobRun(job string) {
	if m == nil || m.jobRuns == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

// IncJobError increments the failure counter for a scheduler job.
func (m *Metrics) IncJobError(job string) {
	if m == nil || m.jobErrors == nil {
		return
	}
	m.jobErrors.WithLabelValues(job).Inc()
}

// ObserveJobDuration records scheduler job latency in seconds.
func (m *Metrics) ObserveJobDuration(job string, duration time.Duration) {
	if m == nil || m.jobDuration == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
}

// IncAlertCreated increments the alert counter for a severity.
func (m *Metrics) IncAlertCreated(severity string) {
	if m == nil || m.alertsCreated == nil {
		return
	}
	m.alertsCreated.WithLabelValues(severity).Inc()
}

// IncEscalationFired increments the escalation counter for a tier.
func (m *Metrics) IncEscalationFired(tier string) {
	if m == nil || m.escalationsFired == nil {
		return
	}
	m.escalationsFired.WithLabelValues(tier).Inc()
}

// IncNotifyFailure increments the delivery failure counter.
func (m *Metrics) IncNotifyFailure() {
	if m == nil || m.notifyFailures == nil {
		return
	}
	m.notifyFailures.Inc()
}
