package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics agrupa los colectores Prometheus del bot.
// Un *Metrics nil es valido y descarta todas las observaciones.
type Metrics struct {
	EventsHandled   *prometheus.CounterVec
	HandlerPanics   prometheus.Counter
	WhoisLookups    *prometheus.CounterVec
	DomainsAdded    *prometheus.CounterVec
	RemindersSent   prometheus.Counter
	RemindersFailed prometheus.Counter
	SweepDuration   prometheus.Histogram
}

// New crea y registra las metricas en reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsHandled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "domain_bot_events_handled_total",
			Help: "Inbound events handled, by kind",
		}, []string{"kind"}),
		HandlerPanics: factory.NewCounter(prometheus.CounterOpts{
			Name: "domain_bot_handler_panics_total",
			Help: "Event handler panics recovered",
		}),
		WhoisLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "domain_bot_whois_lookups_total",
			Help: "WHOIS lookups, by result",
		}, []string{"result"}),
		DomainsAdded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "domain_bot_domain_add_total",
			Help: "Domain add attempts, by outcome",
		}, []string{"outcome"}),
		RemindersSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "domain_bot_reminders_sent_total",
			Help: "Expiry reminders delivered",
		}),
		RemindersFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "domain_bot_reminders_failed_total",
			Help: "Expiry reminders that could not be delivered",
		}),
		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "domain_bot_reminder_sweep_duration_seconds",
			Help:    "Duration of a reminder sweep",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncEvent(kind string) {
	if m == nil {
		return
	}
	m.EventsHandled.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncPanic() {
	if m == nil {
		return
	}
	m.HandlerPanics.Inc()
}

func (m *Metrics) IncWhois(result string) {
	if m == nil {
		return
	}
	m.WhoisLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) IncDomainAdd(outcome string) {
	if m == nil {
		return
	}
	m.DomainsAdded.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncReminder(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.RemindersSent.Inc()
		return
	}
	m.RemindersFailed.Inc()
}

func (m *Metrics) ObserveSweep(seconds float64) {
	if m == nil {
		return
	}
	m.SweepDuration.Observe(seconds)
}
